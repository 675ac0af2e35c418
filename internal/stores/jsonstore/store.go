// Package jsonstore keeps the storefront state in a single JSON document on
// disk. Every mutation rewrites the whole file.
package jsonstore

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"storefront/pkg/apperr"
)

// Store serialises writers behind a per-document lock. Readers share the
// lock so they never observe a document between Load and Save of a writer.
type Store struct {
	path   string
	mu     sync.RWMutex
	lastID atomic.Int64
}

// New returns a Store backed by the file at path. Call Init before use.
func New(path string) *Store {
	return &Store{path: path}
}

// Path is the backing file.
func (s *Store) Path() string {
	return s.path
}

// Init creates the default document when the file does not exist yet and
// primes the id generator from the ids already stored.
func (s *Store) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := os.Stat(s.path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		if err := s.save(ctx, DefaultDocument()); err != nil {
			return err
		}
		slog.Info("store initialized with default document", slog.String("path", s.path))
	case err != nil:
		return apperr.Newf(apperr.ErrStoreUnavailable, "stat store %s: %v", s.path, err)
	}

	doc, err := s.load(ctx)
	if err != nil {
		return err
	}
	var maxID int64
	for _, c := range doc.Customers {
		maxID = max(maxID, c.ID)
	}
	for _, o := range doc.Orders {
		maxID = max(maxID, o.ID)
	}
	s.lastID.Store(maxID)
	return nil
}

// Load reads the full document.
func (s *Store) Load(ctx context.Context) (*Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.load(ctx)
}

// Save replaces the full document.
func (s *Store) Save(ctx context.Context, doc *Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(ctx, doc)
}

// View runs fn against a freshly loaded document. Changes fn makes are
// discarded.
func (s *Store) View(ctx context.Context, fn func(*Document) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, err := s.load(ctx)
	if err != nil {
		return err
	}
	return fn(doc)
}

// Update loads the document, runs fn and saves the result, all under the
// writer lock. When fn returns an error nothing is written, so a rejected
// mutation leaves the file exactly as it was.
func (s *Store) Update(ctx context.Context, fn func(*Document) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load(ctx)
	if err != nil {
		return err
	}
	if err := fn(doc); err != nil {
		return err
	}
	return s.save(ctx, doc)
}

// NextID returns a time derived id, strictly greater than any id handed out
// before by this Store.
func (s *Store) NextID() int64 {
	for {
		prev := s.lastID.Load()
		id := time.Now().UnixMilli()
		if id <= prev {
			id = prev + 1
		}
		if s.lastID.CompareAndSwap(prev, id) {
			return id
		}
	}
}

func (s *Store) load(ctx context.Context) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, apperr.Newf(apperr.ErrStoreUnavailable, "read store %s: %v", s.path, err)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, apperr.Newf(apperr.ErrStoreUnavailable, "decode store %s: %v", s.path, err)
	}
	doc.normalize()
	return &doc, nil
}

// save writes to a temp file in the target directory and renames it over
// the store, so a concurrent reader sees either the old or the new file.
func (s *Store) save(ctx context.Context, doc *Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	doc.normalize()
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return apperr.Newf(apperr.ErrStoreUnavailable, "encode store: %v", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return apperr.Newf(apperr.ErrStoreUnavailable, "create store dir %s: %v", dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*")
	if err != nil {
		return apperr.Newf(apperr.ErrStoreUnavailable, "create temp file: %v", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return apperr.Newf(apperr.ErrStoreUnavailable, "write temp file: %v", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return apperr.Newf(apperr.ErrStoreUnavailable, "sync temp file: %v", err)
	}
	if err := tmp.Close(); err != nil {
		return apperr.Newf(apperr.ErrStoreUnavailable, "close temp file: %v", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return apperr.Newf(apperr.ErrStoreUnavailable, "replace store %s: %v", s.path, err)
	}
	return nil
}
