// Package noteservice wraps the store behind a mutex so that concurrent
// adapters (HTTP handlers, the scanner daemon, the MCP server) call into the
// single-threaded engine one operation at a time. The store itself does no
// locking; this layer is the serialization point documented in the engine's
// concurrency model.
package noteservice

import (
	"context"
	"sync"

	"github.com/codemark/codemark/internal/models"
	"github.com/codemark/codemark/internal/store"
)

// Service serializes access to one Store.
type Service struct {
	mu sync.Mutex
	st *store.Store
}

// New creates a Service over st.
func New(st *store.Store) *Service {
	return &Service{st: st}
}

// GetNote returns the note with the given id, or nil.
func (s *Service) GetNote(_ context.Context, id string) *models.Note {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.GetNote(id)
}

// GetNoteByPath returns the note with the given displayPath, or nil.
func (s *Service) GetNoteByPath(_ context.Context, displayPath string) *models.Note {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.GetNoteByPath(displayPath)
}

// GetAllNotes returns every note sorted by id.
func (s *Service) GetAllNotes(_ context.Context) []*models.Note {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.GetAllNotes()
}

// GetNotesInFile returns the notes attached to a file path.
func (s *Service) GetNotesInFile(_ context.Context, file string) []*models.Note {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.GetNotesInFile(file)
}

// GetChildren returns the children of a note.
func (s *Service) GetChildren(_ context.Context, id string) []*models.Note {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.GetChildren(id)
}

// GetBacklinks returns the notes linking to id.
func (s *Service) GetBacklinks(_ context.Context, id string) []*models.Note {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.GetBacklinks(id)
}

// GetOrphans returns top-level notes with no links in either direction.
func (s *Service) GetOrphans(_ context.Context) []*models.Note {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.GetOrphans()
}

// GetPopular returns the most-linked notes.
func (s *Service) GetPopular(_ context.Context, limit int) []*models.Note {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.GetPopular(limit)
}

// GetRelated walks the link graph around id up to depth hops.
func (s *Service) GetRelated(_ context.Context, id string, depth int) []store.RelatedNote {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.GetRelated(id, depth)
}

// Search scores notes against the query.
func (s *Service) Search(_ context.Context, query string, limit int) []store.SearchResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.Search(query, limit)
}

// LinkGraph returns a snapshot of the link graph.
func (s *Service) LinkGraph(_ context.Context) models.Graph {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.LinkGraph()
}

// GetProjectRoot returns the project root, or nil for an empty store.
func (s *Service) GetProjectRoot(_ context.Context) *models.ProjectRoot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.GetProjectRoot()
}

// AddNote creates a note.
func (s *Service) AddNote(_ context.Context, file, content string, opts store.AddOptions) (*models.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.AddNote(file, content, opts)
}

// UpdateNote replaces a note's content.
func (s *Service) UpdateNote(_ context.Context, id, content string) (*models.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.UpdateNote(id, content)
}

// DeleteNote removes a note and its descendants.
func (s *Service) DeleteNote(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.DeleteNote(id)
}

// MoveNote reattaches a note to a new file and line.
func (s *Service) MoveNote(_ context.Context, id, newFile string, newLine int) (*models.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.MoveNote(id, newFile, newLine)
}

// Reload re-reads the backing file, discarding in-memory state.
func (s *Service) Reload(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.Reload()
}

// Save persists the graph for callers running with auto-save disabled.
func (s *Service) Save(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.Save()
}
