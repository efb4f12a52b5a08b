// Package storage receives rendered invoices produced outside a request,
// such as the artifacts of a download-all run.
package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/abdulrafium/GreenVerse-Frontend-sub000/internal/invoice"
)

// Sink takes ownership of a rendered invoice
type Sink interface {
	Deliver(ctx context.Context, artifact *invoice.Artifact) error
}

// DirSink writes artifacts into a directory under their contract filename.
// A later artifact with the same name replaces the earlier one.
type DirSink struct {
	dir string
}

// NewDirSink creates dir if needed
func NewDirSink(dir string) (*DirSink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir %s: %w", dir, err)
	}
	return &DirSink{dir: dir}, nil
}

// Dir returns the target directory
func (s *DirSink) Dir() string {
	return s.dir
}

// Deliver writes the artifact atomically (temp file + rename)
func (s *DirSink) Deliver(ctx context.Context, a *invoice.Artifact) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	target := filepath.Join(s.dir, filepath.Base(a.Filename))
	tmp, err := os.CreateTemp(s.dir, ".invoice-*")
	if err != nil {
		return fmt.Errorf("write %s: %w", target, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(a.Content); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write %s: %w", target, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write %s: %w", target, err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return fmt.Errorf("write %s: %w", target, err)
	}
	return nil
}

// MemorySink keeps delivered artifacts in memory, in delivery order
type MemorySink struct {
	mu        sync.Mutex
	artifacts []*invoice.Artifact
}

// NewMemorySink creates an empty in-memory sink
func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

func (s *MemorySink) Deliver(_ context.Context, a *invoice.Artifact) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.artifacts = append(s.artifacts, a)
	return nil
}

// Artifacts returns a copy of everything delivered so far
func (s *MemorySink) Artifacts() []*invoice.Artifact {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*invoice.Artifact(nil), s.artifacts...)
}
