package order

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// fileDocument is the on-disk shape of the store, matching the flat JSON
// document the storefront's previous backend wrote.
type fileDocument struct {
	Orders []Order `json:"orders"`
}

type fileRepository struct {
	mu     sync.Mutex
	path   string
	orders map[string]Order
}

// NewFileRepository opens (or creates) a JSON-file-backed order store at path.
// The whole document is held in memory and rewritten on every save.
func NewFileRepository(path string) (Repository, error) {
	repo := &fileRepository{
		path:   path,
		orders: make(map[string]Order),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return repo, nil
		}
		return nil, fmt.Errorf("repository: failed to read order store %s: %w", path, err)
	}

	var doc fileDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("repository: failed to parse order store %s: %w", path, err)
	}
	for _, o := range doc.Orders {
		repo.orders[o.ID] = o
	}

	return repo, nil
}

func (r *fileRepository) Save(ctx context.Context, o *Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	prev, existed := r.orders[o.ID]
	r.orders[o.ID] = *o

	if err := r.flush(); err != nil {
		// Keep the in-memory view consistent with the file on failure.
		if existed {
			r.orders[o.ID] = prev
		} else {
			delete(r.orders, o.ID)
		}
		return fmt.Errorf("repository: failed to persist order %s: %w", o.ID, err)
	}

	return nil
}

func (r *fileRepository) GetByID(ctx context.Context, id string) (*Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.orders[id]
	if !ok {
		return nil, ErrOrderNotFound
	}

	return &o, nil
}

func (r *fileRepository) List(ctx context.Context) ([]Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	orders := make([]Order, 0, len(r.orders))
	for _, o := range r.orders {
		orders = append(orders, o)
	}

	return orders, nil
}

// flush rewrites the backing file atomically. Callers must hold r.mu.
func (r *fileRepository) flush() error {
	doc := fileDocument{Orders: make([]Order, 0, len(r.orders))}
	for _, o := range r.orders {
		doc.Orders = append(doc.Orders, o)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal order store: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(r.path), "orders-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), r.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to replace order store: %w", err)
	}

	return nil
}
