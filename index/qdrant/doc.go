// Package qdrant implements index.VectorIndex over the Qdrant gRPC API.
package qdrant
