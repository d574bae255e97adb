// Package itemdir provides a file-backed item directory for deployments
// where the host's live catalogue is exported to JSON. The resolver treats
// it like any other directory: lookup by ref, search by name.
package itemdir

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/forgelight/crucible/internal/domain"
)

// FileDirectory loads item snapshots from a JSON file on first use and
// serves lookups from memory. Call Reload after the file changes.
type FileDirectory struct {
	path string

	mu     sync.RWMutex
	byRef  map[string]domain.ItemSnapshot
	loaded bool
}

// NewFileDirectory creates a directory backed by the given JSON file. The
// file holds a flat array of item snapshots.
func NewFileDirectory(path string) *FileDirectory {
	return &FileDirectory{
		path:  path,
		byRef: make(map[string]domain.ItemSnapshot),
	}
}

func (d *FileDirectory) ensureLoaded() error {
	d.mu.RLock()
	loaded := d.loaded
	d.mu.RUnlock()
	if loaded {
		return nil
	}
	return d.Reload()
}

// Reload re-reads the catalogue file, replacing the in-memory index.
func (d *FileDirectory) Reload() error {
	data, err := os.ReadFile(d.path)
	if err != nil {
		return fmt.Errorf("failed to read item catalogue: %w", err)
	}

	var items []domain.ItemSnapshot
	if err := json.Unmarshal(data, &items); err != nil {
		return fmt.Errorf("failed to parse item catalogue: %w", err)
	}

	byRef := make(map[string]domain.ItemSnapshot, len(items))
	for _, item := range items {
		if item.Ref == "" {
			return fmt.Errorf("item catalogue entry %q has no ref", item.Name)
		}
		byRef[item.Ref] = item
	}

	d.mu.Lock()
	d.byRef = byRef
	d.loaded = true
	d.mu.Unlock()
	return nil
}

// Lookup returns the snapshot stored under ref.
func (d *FileDirectory) Lookup(ctx context.Context, ref string) (*domain.ItemSnapshot, error) {
	if err := d.ensureLoaded(); err != nil {
		return nil, err
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	item, ok := d.byRef[ref]
	if !ok {
		return nil, fmt.Errorf("%w: ref %q", domain.ErrItemNotFound, ref)
	}
	return &item, nil
}

// SearchByName returns every item whose name contains the query,
// case-insensitively. The resolver picks the best candidate itself.
func (d *FileDirectory) SearchByName(ctx context.Context, name string) ([]domain.ItemSnapshot, error) {
	if err := d.ensureLoaded(); err != nil {
		return nil, err
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	query := strings.ToLower(name)
	var matches []domain.ItemSnapshot
	for _, item := range d.byRef {
		if strings.Contains(strings.ToLower(item.Name), query) {
			matches = append(matches, item)
		}
	}
	return matches, nil
}
