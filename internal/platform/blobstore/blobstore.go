// Package blobstore stores generated billing documents: invoice PDFs,
// receipts, and report exports. It defines the Store interface and an
// in-memory implementation suitable for development and tests.
package blobstore

import (
	"bytes"
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrDocumentNotFound = errors.New("document not found")
	ErrDocumentTooLarge = errors.New("document exceeds maximum allowed size")
	ErrMissingFileName  = errors.New("file name is required")
	ErrInvalidCategory  = errors.New("invalid document category")
)

// MaxDocumentSize caps stored documents at 25 MB.
const MaxDocumentSize = 25 * 1024 * 1024

// AllowedCategories lists valid document category values.
var AllowedCategories = map[string]bool{
	"invoice":        true,
	"receipt":        true,
	"revenue-report": true,
	"claim-form":     true,
}

// DocumentMetadata describes a stored billing document.
type DocumentMetadata struct {
	ID          string    `json:"id"`
	FileName    string    `json:"file_name"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	InvoiceID   string    `json:"invoice_id,omitempty"`
	Category    string    `json:"category"`
	Hash        string    `json:"hash"`
	CreatedAt   time.Time `json:"created_at"`
	CreatedBy   string    `json:"created_by"`
}

// Store is the contract for billing document storage backends.
type Store interface {
	Put(ctx context.Context, meta DocumentMetadata, content io.Reader) (*DocumentMetadata, error)
	Get(ctx context.Context, id string) (io.ReadCloser, *DocumentMetadata, error)
	Delete(ctx context.Context, id string) error
	ListByInvoice(ctx context.Context, invoiceID string) ([]*DocumentMetadata, error)
}

type storedDocument struct {
	metadata DocumentMetadata
	content  []byte
}

// MemoryStore is a thread-safe, in-memory Store.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string]*storedDocument
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string]*storedDocument)}
}

// Put validates inputs, reads the content, computes a SHA-256 hash, and
// stores the document in memory.
func (s *MemoryStore) Put(_ context.Context, meta DocumentMetadata, content io.Reader) (*DocumentMetadata, error) {
	if meta.FileName == "" {
		return nil, ErrMissingFileName
	}
	if !AllowedCategories[meta.Category] {
		return nil, fmt.Errorf("%w: %q", ErrInvalidCategory, meta.Category)
	}

	data, err := io.ReadAll(io.LimitReader(content, MaxDocumentSize+1))
	if err != nil {
		return nil, fmt.Errorf("reading content: %w", err)
	}
	if int64(len(data)) > MaxDocumentSize {
		return nil, ErrDocumentTooLarge
	}

	h := sha256.Sum256(data)

	meta.ID = uuid.New().String()
	meta.Size = int64(len(data))
	meta.Hash = fmt.Sprintf("%x", h)
	meta.CreatedAt = time.Now().UTC()

	s.mu.Lock()
	s.docs[meta.ID] = &storedDocument{metadata: meta, content: data}
	s.mu.Unlock()

	out := meta
	return &out, nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (io.ReadCloser, *DocumentMetadata, error) {
	s.mu.RLock()
	doc, ok := s.docs[id]
	s.mu.RUnlock()

	if !ok {
		return nil, nil, ErrDocumentNotFound
	}

	meta := doc.metadata
	return io.NopCloser(bytes.NewReader(doc.content)), &meta, nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.docs[id]; !ok {
		return ErrDocumentNotFound
	}
	delete(s.docs, id)
	return nil
}

// ListByInvoice returns documents attached to the given invoice, newest first.
func (s *MemoryStore) ListByInvoice(_ context.Context, invoiceID string) ([]*DocumentMetadata, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []*DocumentMetadata
	for _, d := range s.docs {
		if d.metadata.InvoiceID != invoiceID {
			continue
		}
		m := d.metadata
		matched = append(matched, &m)
	}

	for i := 0; i < len(matched); i++ {
		for j := i + 1; j < len(matched); j++ {
			if matched[j].CreatedAt.After(matched[i].CreatedAt) {
				matched[i], matched[j] = matched[j], matched[i]
			}
		}
	}
	return matched, nil
}
