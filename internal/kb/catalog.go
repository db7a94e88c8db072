package kb

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/leadforge/leadforge/internal/domain"
)

// Catalog persists document metadata as a JSON array on disk.
// Writes go through a temp file and atomic rename.
type Catalog struct {
	mu   sync.RWMutex
	path string
	docs []domain.Document
}

// NewCatalog loads (or initializes) the catalog at the given file path.
// A corrupted file is logged and treated as an empty catalog; the corrupt
// content survives on disk until the next successful write.
func NewCatalog(path string) (*Catalog, error) {
	c := &Catalog{path: path}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return c, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read document catalog: %w", err)
	}

	if len(data) > 0 {
		if err := json.Unmarshal(data, &c.docs); err != nil {
			log.Printf("kb: %v at %s, starting empty: %v", domain.ErrCorruptStore, path, err)
			c.docs = nil
		}
	}
	return c, nil
}

// Add appends a document and persists the catalog.
func (c *Catalog) Add(doc domain.Document) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.docs = append(c.docs, doc)
	if err := c.persist(); err != nil {
		c.docs = c.docs[:len(c.docs)-1]
		return err
	}
	return nil
}

// Get returns the document with the given id.
func (c *Catalog) Get(id string) (*domain.Document, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for i := range c.docs {
		if c.docs[i].ID == id {
			doc := c.docs[i]
			return &doc, nil
		}
	}
	return nil, domain.ErrDocumentNotFound
}

// Remove deletes the document with the given id and persists the catalog.
func (c *Catalog) Remove(id string) (*domain.Document, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.docs {
		if c.docs[i].ID == id {
			removed := c.docs[i]
			previous := c.docs
			c.docs = append(append([]domain.Document{}, c.docs[:i]...), c.docs[i+1:]...)
			if err := c.persist(); err != nil {
				c.docs = previous
				return nil, err
			}
			return &removed, nil
		}
	}
	return nil, domain.ErrDocumentNotFound
}

// List returns all documents in insertion order.
func (c *Catalog) List() []domain.Document {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]domain.Document, len(c.docs))
	copy(out, c.docs)
	return out
}

// persist writes the catalog to disk atomically. Caller must hold the lock.
func (c *Catalog) persist() error {
	data, err := json.MarshalIndent(c.docs, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode document catalog: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("failed to create catalog directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(c.path), ".catalog-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp catalog file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write document catalog: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp catalog file: %w", err)
	}

	if err := os.Rename(tmpName, c.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace document catalog: %w", err)
	}
	return nil
}
