package persona

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// Registry is the durable persona store, keyed by persona name.
type Registry interface {
	Get(name string) (Persona, error)
	Put(p Persona) error
	Names() ([]string, error)
}

// FileRegistry persists the registry as a JSON map on disk. A single mutex
// serializes the read-modify-write of Put so concurrent creates cannot lose
// each other's updates.
type FileRegistry struct {
	path string
	mu   sync.Mutex
}

func NewFileRegistry(path string) *FileRegistry {
	return &FileRegistry{path: path}
}

func (r *FileRegistry) Get(name string) (Persona, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	personas, err := r.load()
	if err != nil {
		return Persona{}, err
	}
	p, ok := personas[name]
	if !ok {
		return Persona{}, fmt.Errorf("get %q: %w", name, ErrNotFound)
	}
	return p, nil
}

// Put stores a persona, overwriting any existing entry with the same name.
func (r *FileRegistry) Put(p Persona) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	personas, err := r.load()
	if err != nil {
		return err
	}
	personas[p.Name] = p
	return r.save(personas)
}

func (r *FileRegistry) Names() ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	personas, err := r.load()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(personas))
	for name := range personas {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (r *FileRegistry) load() (map[string]Persona, error) {
	data, err := os.ReadFile(r.path)
	if os.IsNotExist(err) {
		return map[string]Persona{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read registry: %w", err)
	}
	personas := map[string]Persona{}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &personas); err != nil {
			return nil, fmt.Errorf("parse registry: %w", err)
		}
	}
	return personas, nil
}

func (r *FileRegistry) save(personas map[string]Persona) error {
	data, err := json.MarshalIndent(personas, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal registry: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return fmt.Errorf("write registry: %w", err)
	}
	if err := os.WriteFile(r.path, data, 0o644); err != nil {
		return fmt.Errorf("write registry: %w", err)
	}
	return nil
}
