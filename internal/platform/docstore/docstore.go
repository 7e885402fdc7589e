// Package docstore stores the documents attached to exam records: scans,
// signed consent forms, lab report PDFs. The domain only ever keeps the
// opaque reference a Put returns; tampering shows up as a hash mismatch on
// Get.
package docstore

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
	ErrNotFound           = errors.New("document not found")
	ErrFileTooLarge       = errors.New("file exceeds maximum allowed size")
	ErrInvalidContentType = errors.New("content type is not allowed")
	ErrMissingFileName    = errors.New("file name is required")
)

// MaxFileSize is the maximum allowed document size in bytes (50 MB).
const MaxFileSize = 50 * 1024 * 1024

// AllowedContentTypes lists the MIME types the clinic stations upload:
// imaging, audiogram exports and report PDFs.
var AllowedContentTypes = map[string]bool{
	"image/png":         true,
	"image/jpeg":        true,
	"image/dicom":       true,
	"application/dicom": true,
	"application/pdf":   true,
	"text/plain":        true,
}

// Document describes a stored attachment.
type Document struct {
	Ref         string    `json:"ref"`
	FileName    string    `json:"file_name"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	Hash        string    `json:"hash"`
	CreatedAt   time.Time `json:"created_at"`
}

// Store is the contract document backends implement. Put returns the opaque
// reference the exam record keeps.
type Store interface {
	Put(ctx context.Context, data []byte, contentType, fileName string) (string, error)
	Get(ctx context.Context, ref string) (io.ReadCloser, *Document, error)
	Delete(ctx context.Context, ref string) error
}

// validate applies the shared upload constraints.
func validate(data []byte, contentType, fileName string) error {
	if fileName == "" {
		return ErrMissingFileName
	}
	if int64(len(data)) > MaxFileSize {
		return ErrFileTooLarge
	}
	if !AllowedContentTypes[contentType] {
		return fmt.Errorf("%w: %s", ErrInvalidContentType, contentType)
	}
	return nil
}

type storedDoc struct {
	meta    Document
	content []byte
}

// Memory is a thread-safe in-memory Store for testing and development.
type Memory struct {
	mu   sync.RWMutex
	docs map[string]*storedDoc
}

func NewMemory() *Memory {
	return &Memory{docs: make(map[string]*storedDoc)}
}

func (s *Memory) Put(_ context.Context, data []byte, contentType, fileName string) (string, error) {
	if err := validate(data, contentType, fileName); err != nil {
		return "", err
	}

	h := sha256.Sum256(data)
	meta := Document{
		Ref:         uuid.New().String(),
		FileName:    fileName,
		ContentType: contentType,
		Size:        int64(len(data)),
		Hash:        fmt.Sprintf("%x", h),
		CreatedAt:   time.Now().UTC(),
	}

	cp := make([]byte, len(data))
	copy(cp, data)

	s.mu.Lock()
	s.docs[meta.Ref] = &storedDoc{meta: meta, content: cp}
	s.mu.Unlock()

	return meta.Ref, nil
}

func (s *Memory) Get(_ context.Context, ref string) (io.ReadCloser, *Document, error) {
	s.mu.RLock()
	doc, ok := s.docs[ref]
	s.mu.RUnlock()

	if !ok {
		return nil, nil, ErrNotFound
	}

	meta := doc.meta
	return io.NopCloser(bytes.NewReader(doc.content)), &meta, nil
}

func (s *Memory) Delete(_ context.Context, ref string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.docs[ref]; !ok {
		return ErrNotFound
	}
	delete(s.docs, ref)
	return nil
}
