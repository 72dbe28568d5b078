package store

import (
	"sort"

	"github.com/codemark/codemark/internal/models"
	"github.com/codemark/codemark/internal/parser"
)

// GetProjectRoot returns the project root, or nil for an empty store.
func (s *Store) GetProjectRoot() *models.ProjectRoot {
	return s.root
}

// Diagnostics returns the parse errors and warnings from the last load.
func (s *Store) Diagnostics() (errors, warnings []parser.Diagnostic) {
	return s.parseErrors, s.parseWarnings
}

// GetNote returns the note with the given id, or nil.
func (s *Store) GetNote(id string) *models.Note {
	return s.notes[id]
}

// GetNoteByPath returns the note whose displayPath matches, or nil.
func (s *Store) GetNoteByPath(displayPath string) *models.Note {
	for _, n := range s.notes {
		if n.DisplayPath == displayPath {
			return n
		}
	}
	return nil
}

// GetAllNotes returns every note (nested included), sorted by id for
// deterministic iteration.
func (s *Store) GetAllNotes() []*models.Note {
	out := make([]*models.Note, 0, len(s.notes))
	for _, n := range s.notes {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// GetNotesInFile returns the notes attached to a file path, sorted by line
// number then id.
func (s *Store) GetNotesInFile(file string) []*models.Note {
	var out []*models.Note
	for _, n := range s.notes {
		if n.Properties.File == file {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Properties.Line != out[j].Properties.Line {
			return out[i].Properties.Line < out[j].Properties.Line
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// GetChildren returns the child notes of id, or nil if absent or childless.
func (s *Store) GetChildren(id string) []*models.Note {
	n := s.notes[id]
	if n == nil {
		return nil
	}
	return n.Children
}

// GetBacklinks returns the notes that link to id.
func (s *Store) GetBacklinks(id string) []*models.Note {
	var out []*models.Note
	for _, source := range s.linker.BackwardLinks(id) {
		if n := s.notes[source]; n != nil {
			out = append(out, n)
		}
	}
	return out
}

// GetOrphans returns top-level notes with no incoming and no outgoing links,
// sorted by id.
func (s *Store) GetOrphans() []*models.Note {
	var out []*models.Note
	for _, n := range s.notes {
		if n.Properties.Parent != "" {
			continue
		}
		if len(s.linker.ForwardLinks(n.ID)) == 0 && s.linker.BacklinkCount(n.ID) == 0 {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// GetPopular returns up to limit notes with at least one backlink, most
// linked first. Ties break by id.
func (s *Store) GetPopular(limit int) []*models.Note {
	var out []*models.Note
	for _, n := range s.notes {
		if s.linker.BacklinkCount(n.ID) > 0 {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		ci, cj := s.linker.BacklinkCount(out[i].ID), s.linker.BacklinkCount(out[j].ID)
		if ci != cj {
			return ci > cj
		}
		return out[i].ID < out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// RelatedNote is one hop result from GetRelated.
type RelatedNote struct {
	Note      *models.Note `json:"note"`
	Direction string       `json:"direction"` // "outgoing" or "incoming"
	Depth     int          `json:"depth"`
}

// GetRelated walks the link graph breadth-first from id, up to depth hops,
// once along outgoing edges and once along incoming edges. Both walks share
// one visited set, so a note reached in one direction is not revisited in
// the other. The starting note itself is excluded.
func (s *Store) GetRelated(id string, depth int) []RelatedNote {
	if s.notes[id] == nil {
		return nil
	}
	if depth <= 0 {
		depth = 1
	}

	visited := map[string]struct{}{id: {}}
	var out []RelatedNote

	walk := func(direction string, neighbors func(string) []string) {
		frontier := []string{id}
		for d := 1; d <= depth && len(frontier) > 0; d++ {
			var next []string
			for _, cur := range frontier {
				for _, nb := range neighbors(cur) {
					if _, seen := visited[nb]; seen {
						continue
					}
					visited[nb] = struct{}{}
					if n := s.notes[nb]; n != nil {
						out = append(out, RelatedNote{Note: n, Direction: direction, Depth: d})
						next = append(next, nb)
					}
				}
			}
			frontier = next
		}
	}

	walk("outgoing", s.linker.ForwardLinks)
	walk("incoming", s.linker.BackwardLinks)
	return out
}

// LinkGraph returns a snapshot of the link graph.
func (s *Store) LinkGraph() models.Graph {
	return s.linker.Graph()
}

// GetForwardLinks returns the ids the note links to.
func (s *Store) GetForwardLinks(id string) []string {
	return s.linker.ForwardLinks(id)
}

// GetBacklinkCount returns the number of notes linking to id.
func (s *Store) GetBacklinkCount(id string) int {
	return s.linker.BacklinkCount(id)
}
