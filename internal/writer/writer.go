// Package writer serializes a note graph back into the canonical
// bullet/indent dialect. It is the inverse of the parser's current-dialect
// scan: parse(Write(root, notes)) reproduces the same ids, properties, and
// content lines, though not necessarily byte-identical text.
package writer

import (
	"sort"
	"strconv"
	"strings"

	"github.com/codemark/codemark/internal/models"
	"github.com/codemark/codemark/internal/parser"
)

// summaryLen bounds the title preview appended to a note's title bullet.
const summaryLen = 60

// Options control serialization.
type Options struct {
	// SortNotes orders top-level notes by file path, then by id. Without it
	// the input order is kept (grouping by file still applies).
	SortNotes bool
}

// Write renders the project root and the given notes as canonical text.
// Only top-level notes (no parent) are emitted directly; children are
// rendered inline under their parents. Output is trimmed and terminated with
// exactly one trailing newline.
func Write(root *models.ProjectRoot, notes []*models.Note, opts Options) string {
	var b strings.Builder

	writeProjectHeader(&b, root)

	top := make([]*models.Note, 0, len(notes))
	for _, n := range notes {
		if n.Properties.Parent == "" {
			top = append(top, n)
		}
	}
	if opts.SortNotes {
		sort.SliceStable(top, func(i, j int) bool {
			if top[i].Properties.File != top[j].Properties.File {
				return top[i].Properties.File < top[j].Properties.File
			}
			return top[i].ID < top[j].ID
		})
	}

	// Group by file, preserving first-seen file order.
	var files []string
	byFile := make(map[string][]*models.Note)
	for _, n := range top {
		f := n.Properties.File
		if _, ok := byFile[f]; !ok {
			files = append(files, f)
		}
		byFile[f] = append(byFile[f], n)
	}

	for _, f := range files {
		b.WriteString("- ## " + f + "\n")
		for _, n := range byFile[f] {
			writeNote(&b, n, 1)
		}
	}

	return strings.TrimRight(b.String(), "\n") + "\n"
}

func writeProjectHeader(b *strings.Builder, root *models.ProjectRoot) {
	if root == nil {
		b.WriteString("- # Notes\n")
		return
	}
	b.WriteString("- # " + root.Name + "\n")
	if root.Created != "" {
		b.WriteString("  - created:: " + root.Created + "\n")
	}
	for _, line := range root.Content {
		b.WriteString(indent(1+line.Indent) + "- " + escapeContent(line.Text) + "\n")
	}
}

// escapeContent guards content lines whose text would otherwise open a note
// block on reload. A leading backslash neutralizes the title pattern; the
// parser strips it.
func escapeContent(text string) string {
	if parser.MatchesNoteTitle(text) {
		return `\` + text
	}
	return text
}

// writeNote emits a note's title bullet (with a truncated first-line
// summary), its metadata bullet, its content bullets, and its children at
// one additional level.
func writeNote(b *strings.Builder, n *models.Note, level int) {
	title := "[[" + n.ID + "]]"
	if summary := truncate(n.FirstContentText(), summaryLen); summary != "" {
		title += " " + summary
	}
	b.WriteString(indent(level) + "- " + title + "\n")

	if meta := metaLine(n); meta != "" {
		b.WriteString(indent(level+1) + "- " + meta + "\n")
	}

	for _, line := range n.Content {
		b.WriteString(indent(level+1+line.Indent) + "- " + escapeContent(line.Text) + "\n")
	}

	for _, child := range n.Children {
		writeNote(b, child, level+1)
	}
}

// metaLine renders "author · date[ · line N]". The date may be empty for
// title-only notes; the parser accepts that form back.
func metaLine(n *models.Note) string {
	p := n.Properties
	if p.Author == "" && p.Created == "" && p.Line == 0 {
		return ""
	}
	author := p.Author
	if author == "" {
		author = "human"
	}
	s := author + " ·"
	if p.Created != "" {
		s += " " + p.Created
	}
	if p.Line > 0 {
		s += " · line " + strconv.Itoa(p.Line)
	}
	return s
}

func indent(level int) string {
	return strings.Repeat("  ", level)
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
