package ingest

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/loamlabs/loam/extract"
)

// EnumerateDir recursively lists files under root whose extension has a
// registered extractor, returning them as pipeline items with absolute,
// normalized paths in walk order. File contents are never opened here, so
// memory stays bounded even for tens of thousands of candidates.
//
// typeFilter restricts the result to the given type hints (e.g. "pdf");
// empty means every supported format.
func EnumerateDir(root string, registry *extract.Registry, typeFilter ...string) ([]Item, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrRootNotFound, root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrRootNotFound, root)
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRootNotFound, err)
	}

	wanted := make(map[string]bool, len(typeFilter))
	for _, t := range typeFilter {
		wanted[strings.TrimPrefix(strings.ToLower(t), ".")] = true
	}

	var items []Item
	err = filepath.WalkDir(abs, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return nil
		}

		hint := extract.TypeHintForPath(path)
		if !registry.Supports(hint) {
			return nil
		}
		if len(wanted) > 0 && !wanted[hint] {
			return nil
		}

		items = append(items, NewFileItem(filepath.Clean(path)))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: walking %s: %w", ErrRootNotFound, abs, err)
	}

	return items, nil
}
