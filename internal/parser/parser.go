// Package parser recovers a structured note graph from the bullet-indented
// notes file. Two dialects are recognized: the current bullet/indent dialect
// (canonical, also produced by the writer) and the legacy "key:: value"
// attribute dialect (read-only).
//
// Parsing is a pure function of the input text. Structural problems are
// reported as diagnostics on the result, never as errors or panics.
package parser

import (
	"strings"
	"time"

	"github.com/codemark/codemark/internal/models"
)

// Dialect identifies which textual format a notes file uses.
type Dialect int

const (
	// DialectCurrent is the bullet/indent dialect with "- ## file" headers.
	DialectCurrent Dialect = iota
	// DialectLegacy is the key-value dialect with "id:: cm.x" attribute lines.
	DialectLegacy
)

// Diagnostic codes.
const (
	CodeDuplicateID     = "duplicate_id"
	CodeOrphanReference = "orphan_reference"
)

// Diagnostic describes one structural problem found in the source text.
type Diagnostic struct {
	Code   string `json:"code"`
	NoteID string `json:"note_id"`
	Detail string `json:"detail,omitempty"`
}

// Result is the output of Parse: a best-effort note graph plus diagnostics.
type Result struct {
	Dialect     Dialect
	ProjectRoot *models.ProjectRoot
	// Notes maps every note id (nested notes included) to its note.
	Notes map[string]*models.Note
	// TopLevel preserves the parse order of notes without a parent.
	TopLevel []*models.Note
	// Forward and Backward are exact inverses: b in Forward[a] iff a in Backward[b].
	Forward  map[string][]string
	Backward map[string][]string
	Errors   []Diagnostic
	Warnings []Diagnostic
}

// Parse recovers a note graph from raw text. It never fails: malformed
// structure degrades to diagnostics and a partial graph.
func Parse(text string) *Result {
	lines := strings.Split(text, "\n")
	dialect := DetectDialect(lines)

	var (
		root     *models.ProjectRoot
		topLevel []*models.Note
	)
	switch dialect {
	case DialectLegacy:
		root, topLevel = parseLegacy(lines)
	default:
		root, topLevel = parseCurrent(lines)
	}

	if root == nil {
		// Synthesize so downstream code can rely on project metadata existing.
		root = &models.ProjectRoot{
			ID:      models.ProjectRootID,
			Name:    "Project",
			Created: time.Now().Format("2006-01-02"),
		}
	}

	res := &Result{
		Dialect:     dialect,
		ProjectRoot: root,
		TopLevel:    topLevel,
	}
	res.finalize()
	return res
}

// DetectDialect applies the format heuristic: any "- ## file" header means
// current; otherwise any "id::" attribute line means legacy; ambiguous input
// defaults to current.
func DetectDialect(lines []string) Dialect {
	hasIDAttr := false
	for _, line := range lines {
		txt, isBullet := bulletText(line)
		if isBullet && strings.HasPrefix(txt, "## ") {
			return DialectCurrent
		}
		if attrKey, _, ok := splitAttr(line); ok && attrKey == "id" {
			hasIDAttr = true
		}
	}
	if hasIDAttr {
		return DialectLegacy
	}
	return DialectCurrent
}

// finalize flattens the parsed forest into the id map, detects duplicate ids
// (first occurrence wins) and builds the link maps from explicit related
// properties plus content-line references. Duplicate occurrences are pruned
// from the forest along with their subtrees, so queries over child lists and
// later saves see only the surviving notes. Edges whose target is unknown
// stay in the maps but raise an orphan_reference warning.
func (r *Result) finalize() {
	r.Notes = make(map[string]*models.Note)
	r.Forward = make(map[string][]string)
	r.Backward = make(map[string][]string)

	var ordered []*models.Note
	var adopt func(n *models.Note) bool
	adopt = func(n *models.Note) bool {
		if _, dup := r.Notes[n.ID]; dup {
			r.Errors = append(r.Errors, Diagnostic{
				Code:   CodeDuplicateID,
				NoteID: n.ID,
				Detail: "note id declared more than once",
			})
			return false
		}
		r.Notes[n.ID] = n
		ordered = append(ordered, n)
		kept := n.Children[:0]
		for _, c := range n.Children {
			if adopt(c) {
				kept = append(kept, c)
			}
		}
		n.Children = kept
		return true
	}

	keptTop := r.TopLevel[:0]
	for _, top := range r.TopLevel {
		if adopt(top) {
			keptTop = append(keptTop, top)
		}
	}
	r.TopLevel = keptTop

	for _, n := range ordered {
		for _, target := range noteRefSet(n) {
			addEdge(r.Forward, r.Backward, n.ID, target)
		}
	}

	for _, n := range ordered {
		for _, target := range r.Forward[n.ID] {
			if _, ok := r.Notes[target]; !ok {
				r.Warnings = append(r.Warnings, Diagnostic{
					Code:   CodeOrphanReference,
					NoteID: target,
					Detail: "referenced from " + n.ID + " but not defined",
				})
			}
		}
	}
}

// noteRefSet is the union of a note's explicit related list and every
// reference embedded in its content lines, deduplicated in encounter order.
// Self references are kept; the linker treats them like any other edge.
func noteRefSet(n *models.Note) []string {
	seen := make(map[string]struct{})
	var out []string
	add := func(id string) {
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	for _, id := range n.Properties.Related {
		add(id)
	}
	for _, line := range n.Content {
		for _, id := range line.Refs {
			add(id)
		}
	}
	return out
}

func addEdge(forward, backward map[string][]string, from, to string) {
	if !containsString(forward[from], to) {
		forward[from] = append(forward[from], to)
	}
	if !containsString(backward[to], from) {
		backward[to] = append(backward[to], from)
	}
}

func containsString(s []string, v string) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}
