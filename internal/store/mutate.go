package store

import (
	"fmt"
	"strings"
	"time"

	"github.com/codemark/codemark/internal/apperr"
	"github.com/codemark/codemark/internal/models"
	"github.com/codemark/codemark/internal/parser"
)

// AddOptions carries the optional parameters of AddNote.
type AddOptions struct {
	// ParentID nests the new note under an existing note.
	ParentID string
	// NoteID requests a specific id; on collision a generated id is used.
	NoteID string
	// Line records the source line the note is attached to.
	Line int

	Author  string
	Created string // YYYY-MM-DD, defaults to today
	Type    string
	Tags    []string
	Related []string
}

// AddNote creates a note attached to file with the given content (newline
// separated, stored at indent 0) and persists if auto-save is on.
func (s *Store) AddNote(file, content string, opts AddOptions) (*models.Note, error) {
	var parent *models.Note
	if opts.ParentID != "" {
		parent = s.notes[opts.ParentID]
		if parent == nil {
			return nil, fmt.Errorf("store: add note under %s: %w", opts.ParentID, apperr.ErrNotFound)
		}
	}

	id, err := s.newID(opts.NoteID)
	if err != nil {
		return nil, err
	}

	author := opts.Author
	if author == "" {
		author = "human"
	}
	created := opts.Created
	if created == "" {
		created = time.Now().Format("2006-01-02")
	}

	n := &models.Note{
		ID: id,
		Properties: models.Properties{
			File:    file,
			Line:    opts.Line,
			Author:  author,
			Created: created,
			Type:    opts.Type,
			Tags:    opts.Tags,
			Related: opts.Related,
		},
		Content: contentLines(content),
	}

	parentHash := ""
	if parent != nil {
		n.Properties.Parent = parent.ID
		parentHash = parent.Hash()
	}
	n.DisplayPath = models.ComputeDisplayPath(file, parentHash, n.Hash())

	s.notes[id] = n
	if parent != nil {
		parent.Children = append(parent.Children, n)
	}

	s.linker.UpdateForNote(n, "")
	s.refreshBacklinkFields()
	if err := s.persist(); err != nil {
		return nil, err
	}
	return n, nil
}

// UpdateNote replaces the content of an existing note.
func (s *Store) UpdateNote(id, content string) (*models.Note, error) {
	n := s.notes[id]
	if n == nil {
		return nil, fmt.Errorf("store: update %s: %w", id, apperr.ErrNotFound)
	}

	oldContent := n.ContentText()
	n.Content = contentLines(content)

	s.linker.UpdateForNote(n, oldContent)
	s.refreshBacklinkFields()
	if err := s.persist(); err != nil {
		return nil, err
	}
	return n, nil
}

// DeleteNote removes a note and, depth-first, all of its descendants:
// children are deleted before the parent's own link cleanup so no edge ever
// targets a removed note.
func (s *Store) DeleteNote(id string) error {
	n := s.notes[id]
	if n == nil {
		return fmt.Errorf("store: delete %s: %w", id, apperr.ErrNotFound)
	}

	s.deleteRecursive(n)

	// Detach from the parent's child list, if nested.
	if pid := n.Properties.Parent; pid != "" {
		if parent := s.notes[pid]; parent != nil {
			kept := parent.Children[:0]
			for _, c := range parent.Children {
				if c.ID != id {
					kept = append(kept, c)
				}
			}
			parent.Children = kept
		}
	}

	s.refreshBacklinkFields()
	return s.persist()
}

// deleteRecursive removes n's subtree from the map and the link graph,
// children first. It walks a copy of the child list since removal mutates
// the structure being walked.
func (s *Store) deleteRecursive(n *models.Note) {
	children := make([]*models.Note, len(n.Children))
	copy(children, n.Children)
	for _, c := range children {
		s.deleteRecursive(c)
	}
	s.linker.RemoveNote(n.ID)
	delete(s.notes, n.ID)
}

// MoveNote reattaches a note to a new file (and optionally a new line) and
// recomputes displayPath for the note and every descendant. Children inherit
// the new file; the link graph is untouched.
func (s *Store) MoveNote(id, newFile string, newLine int) (*models.Note, error) {
	n := s.notes[id]
	if n == nil {
		return nil, fmt.Errorf("store: move %s: %w", id, apperr.ErrNotFound)
	}

	n.Properties.File = newFile
	if newLine > 0 {
		n.Properties.Line = newLine
	}

	parentHash := ""
	if pid := n.Properties.Parent; pid != "" {
		if parent := s.notes[pid]; parent != nil {
			parentHash = parent.Hash()
		}
	}
	n.DisplayPath = models.ComputeDisplayPath(newFile, parentHash, n.Hash())
	for _, c := range n.Children {
		moveSubtree(c, newFile, n.Hash())
	}

	if err := s.persist(); err != nil {
		return nil, err
	}
	return n, nil
}

func moveSubtree(n *models.Note, file, parentHash string) {
	n.Properties.File = file
	n.DisplayPath = models.ComputeDisplayPath(file, parentHash, n.Hash())
	for _, c := range n.Children {
		moveSubtree(c, file, n.Hash())
	}
}

// refreshBacklinkFields recomputes the derived backlink fields of every note
// from linker state. Notes with zero backlinks get the fields removed
// entirely, so field presence is itself meaningful to consumers.
func (s *Store) refreshBacklinkFields() {
	for id, n := range s.notes {
		back := s.linker.BackwardLinks(id)
		if len(back) == 0 {
			n.Properties.BacklinkCount = 0
			n.Properties.Backlinks = nil
			continue
		}
		n.Properties.BacklinkCount = len(back)
		n.Properties.Backlinks = append([]string(nil), back...)
	}
}

// contentLines splits raw content into indent-0 lines with extracted refs.
func contentLines(content string) []models.ContentLine {
	if content == "" {
		return nil
	}
	raw := strings.Split(content, "\n")
	out := make([]models.ContentLine, 0, len(raw))
	for _, text := range raw {
		out = append(out, models.ContentLine{
			Indent: 0,
			Text:   text,
			Refs:   parser.ExtractRefs(text),
		})
	}
	return out
}
