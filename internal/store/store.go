// Package store is the façade over the note graph engine. It owns the
// in-memory note map, drives the parser, writer, and linker, and persists the
// graph atomically back to a single text file.
//
// A Store is single-threaded and does no internal locking: callers that run
// concurrently (HTTP handlers, the watcher daemon) must serialize access, for
// example through the noteservice wrapper. The backing file is assumed to
// have a single writer; two processes racing the atomic rename can clobber
// each other, which is a documented limit rather than something this layer
// papers over.
package store

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/codemark/codemark/internal/apperr"
	"github.com/codemark/codemark/internal/linker"
	"github.com/codemark/codemark/internal/models"
	"github.com/codemark/codemark/internal/noteid"
	"github.com/codemark/codemark/internal/parser"
	"github.com/codemark/codemark/internal/writer"
)

// maxIDAttempts bounds generator retries before AddNote gives up.
const maxIDAttempts = 1000

// Store owns the in-memory note graph for one notes file.
type Store struct {
	path       string
	generateID noteid.Generator
	autoSave   bool

	root   *models.ProjectRoot
	notes  map[string]*models.Note
	linker *linker.Linker

	// Diagnostics from the most recent load, kept for query consumers.
	parseErrors   []parser.Diagnostic
	parseWarnings []parser.Diagnostic
}

// Option is a functional option for configuring a Store.
type Option func(*Store)

// WithGenerator injects a note id generator. The default is noteid.New.
func WithGenerator(gen noteid.Generator) Option {
	return func(s *Store) {
		if gen != nil {
			s.generateID = gen
		}
	}
}

// WithAutoSave controls whether mutations persist immediately. Enabled by
// default; callers that batch mutations disable it and call Save explicitly.
func WithAutoSave(on bool) Option {
	return func(s *Store) {
		s.autoSave = on
	}
}

// New creates a Store for the notes file at path. Call Load before use.
func New(path string, opts ...Option) *Store {
	s := &Store{
		path:       path,
		generateID: noteid.New,
		autoSave:   true,
		notes:      make(map[string]*models.Note),
		linker:     linker.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// Load reads and parses the backing file, adopting its graph. A missing file
// is not an error: the store resets to an empty graph for first runs.
func (s *Store) Load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.root = nil
			s.notes = make(map[string]*models.Note)
			s.linker.RebuildAll(nil)
			s.parseErrors = nil
			s.parseWarnings = nil
			return nil
		}
		return fmt.Errorf("store: read %s: %w", s.path, err)
	}

	res := parser.Parse(string(data))
	s.root = res.ProjectRoot
	s.notes = res.Notes
	s.parseErrors = res.Errors
	s.parseWarnings = res.Warnings
	s.linker.RebuildAll(res.TopLevel)
	s.refreshBacklinkFields()
	return nil
}

// Reload is an explicit refresh for callers that disabled auto-save or
// expect external edits to the backing file.
func (s *Store) Reload() error {
	return s.Load()
}

// Save renders the graph canonically and atomically replaces the backing
// file: full text to a temporary sibling, fsync, then rename.
func (s *Store) Save() error {
	top := make([]*models.Note, 0, len(s.notes))
	for _, n := range s.notes {
		if n.Properties.Parent == "" {
			top = append(top, n)
		}
	}
	text := writer.Write(s.root, top, writer.Options{SortNotes: true})
	return atomicWrite(s.path, []byte(text))
}

// persist saves when auto-save is enabled.
func (s *Store) persist() error {
	if !s.autoSave {
		return nil
	}
	return s.Save()
}

// atomicWrite writes data to a temp file in the target's directory and
// renames it over path, so a crash mid-write never leaves a torn file.
func atomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("store: mkdir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".codemark-tmp-*")
	if err != nil {
		return fmt.Errorf("store: create temp: %w", err)
	}
	tmpName := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("store: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("store: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("store: close temp: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("store: rename: %w", err)
	}
	success = true
	return nil
}

// newID returns the caller-supplied id if it does not collide, otherwise
// generated candidates until one is unique, failing with ErrIDExhausted
// after maxIDAttempts tries.
func (s *Store) newID(supplied string) (string, error) {
	if supplied != "" {
		if _, taken := s.notes[supplied]; !taken {
			return supplied, nil
		}
	}
	for i := 0; i < maxIDAttempts; i++ {
		id := s.generateID()
		if _, taken := s.notes[id]; !taken {
			return id, nil
		}
	}
	return "", fmt.Errorf("store: generate id after %d attempts: %w", maxIDAttempts, apperr.ErrIDExhausted)
}
