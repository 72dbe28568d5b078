// Package scanner is the daemon side of Codemark: it scans source files for
// note markers and feeds the resulting mutations into the note service one
// at a time. The engine never learns why a mutation happened.
package scanner

import (
	"context"
	"log/slog"
	"regexp"
	"strings"

	"github.com/codemark/codemark/internal/noteservice"
	"github.com/codemark/codemark/internal/store"
)

var (
	// idMarkerRe finds references to existing notes inside source comments,
	// e.g. "// [[cm.abc123]]". A match re-anchors the note to the marker's
	// current file and line.
	idMarkerRe = regexp.MustCompile(`\[\[(cm\.[a-z0-9]+)\]\]`)
	// newMarkerRe finds creation markers, e.g. "// note: fix this later".
	// The captured text becomes the new note's content.
	newMarkerRe = regexp.MustCompile(`(?://|#|--|;)\s*note:\s*(.+)$`)
)

// Result summarizes one file scan.
type Result struct {
	Created int
	Moved   int
}

// Scanner drives marker extraction against the note service.
type Scanner struct {
	svc    *noteservice.Service
	logger *slog.Logger
}

// New creates a Scanner.
func New(svc *noteservice.Service, logger *slog.Logger) *Scanner {
	return &Scanner{svc: svc, logger: logger}
}

// ProcessFile scans data (the content of the source file at relPath) for
// markers. Id markers reposition the referenced note to the marker's file
// and line; creation markers add a new note unless a note with the same
// first content line already exists in the file, which keeps repeated scans
// of an unchanged file idempotent.
func (sc *Scanner) ProcessFile(ctx context.Context, relPath string, data []byte) (Result, error) {
	var res Result

	existing := make(map[string]struct{})
	for _, n := range sc.svc.GetNotesInFile(ctx, relPath) {
		existing[n.FirstContentText()] = struct{}{}
	}

	for i, line := range strings.Split(string(data), "\n") {
		lineNo := i + 1

		for _, m := range idMarkerRe.FindAllStringSubmatch(line, -1) {
			id := m[1]
			n := sc.svc.GetNote(ctx, id)
			if n == nil {
				continue
			}
			if n.Properties.File == relPath && n.Properties.Line == lineNo {
				continue
			}
			if _, err := sc.svc.MoveNote(ctx, id, relPath, lineNo); err != nil {
				return res, err
			}
			sc.logger.Debug("scanner: moved note",
				slog.String("id", id),
				slog.String("file", relPath),
				slog.Int("line", lineNo))
			res.Moved++
		}

		if m := newMarkerRe.FindStringSubmatch(line); m != nil {
			text := strings.TrimSpace(m[1])
			if text == "" {
				continue
			}
			if _, dup := existing[text]; dup {
				continue
			}
			n, err := sc.svc.AddNote(ctx, relPath, text, store.AddOptions{Line: lineNo})
			if err != nil {
				return res, err
			}
			existing[text] = struct{}{}
			sc.logger.Debug("scanner: created note",
				slog.String("id", n.ID),
				slog.String("file", relPath),
				slog.Int("line", lineNo))
			res.Created++
		}
	}

	return res, nil
}
