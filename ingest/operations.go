// Copyright 2025 Loam Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package ingest

import (
	"fmt"
	"sync"

	"github.com/loamlabs/loam/core"
)

// operationState is the registry's view of one run.
type operationState struct {
	op     core.Operation
	cancel func()
}

// OperationRegistry tracks in-flight and recently finished bulk runs by
// operation ID. Operations are ephemeral: the registry holds no durable
// state and restarting the process forgets every run, while the manifest
// still knows which items completed.
type OperationRegistry struct {
	mu  sync.Mutex
	ops map[string]*operationState
}

// NewOperationRegistry creates an empty registry.
func NewOperationRegistry() *OperationRegistry {
	return &OperationRegistry{ops: make(map[string]*operationState)}
}

// Register claims an operation ID for a new run. The cancel function stops
// the run when the operation is removed. Returns ErrOperationExists if the
// ID is already claimed by a run that has not been removed.
func (r *OperationRegistry) Register(id string, cancel func()) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.ops[id]; ok {
		return fmt.Errorf("%w: %s", ErrOperationExists, id)
	}
	r.ops[id] = &operationState{
		op:     core.Operation{ID: id, Status: core.OperationStarting},
		cancel: cancel,
	}
	return nil
}

// Update replaces the stored snapshot for an operation. Unknown IDs are
// ignored so a finishing run cannot race a concurrent Remove.
func (r *OperationRegistry) Update(op core.Operation) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if state, ok := r.ops[op.ID]; ok {
		state.op = op
	}
}

// Get returns the latest snapshot for an operation.
func (r *OperationRegistry) Get(id string) (core.Operation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	state, ok := r.ops[id]
	if !ok {
		return core.Operation{}, fmt.Errorf("%w: %s", ErrOperationNotFound, id)
	}
	return state.op, nil
}

// Cancel stops a running operation without forgetting its snapshot.
func (r *OperationRegistry) Cancel(id string) {
	r.mu.Lock()
	state, ok := r.ops[id]
	r.mu.Unlock()

	if ok && state.cancel != nil {
		state.cancel()
	}
}

// Remove cancels and forgets an operation.
func (r *OperationRegistry) Remove(id string) {
	r.mu.Lock()
	state, ok := r.ops[id]
	if ok {
		delete(r.ops, id)
	}
	r.mu.Unlock()

	if ok && state.cancel != nil {
		state.cancel()
	}
}

// List returns snapshots of every known operation.
func (r *OperationRegistry) List() []core.Operation {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]core.Operation, 0, len(r.ops))
	for _, state := range r.ops {
		out = append(out, state.op)
	}
	return out
}
