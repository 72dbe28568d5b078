// Package models defines the domain types for Codemark.
package models

import "strings"

// ProjectRootID is the fixed id of the singleton project root.
const ProjectRootID = "project-root"

// ContentLine is one line of note content with its indent relative to the
// note's base level. Refs holds the note ids referenced from Text, extracted
// once when the line is built or replaced.
type ContentLine struct {
	Indent int      `json:"indent"`
	Text   string   `json:"text"`
	Refs   []string `json:"refs,omitempty"`
}

// Properties holds the stored and derived attributes of a note.
//
// BacklinkCount and Backlinks are caches of linker state. They are recomputed
// after every mutation and must never be set by hand; absence of the fields
// means the note has no incoming links.
type Properties struct {
	File    string   `json:"file,omitempty"`
	Line    int      `json:"line,omitempty"`
	Author  string   `json:"author"`
	Created string   `json:"created"` // YYYY-MM-DD
	Parent  string   `json:"parent,omitempty"`
	Related []string `json:"related,omitempty"`
	Type    string   `json:"type,omitempty"`
	Tags    []string `json:"tags,omitempty"`

	BacklinkCount int      `json:"backlink_count,omitempty"`
	Backlinks     []string `json:"backlinks,omitempty"`
}

// Note is an annotation attached to a location in a source file. Children are
// exclusively owned by the parent; a child's Properties.Parent always equals
// the owning parent's id.
type Note struct {
	ID          string        `json:"id"`
	Properties  Properties    `json:"properties"`
	Content     []ContentLine `json:"content"`
	Children    []*Note       `json:"children,omitempty"`
	DisplayPath string        `json:"display_path"`
}

// Hash returns the id with the "cm." prefix stripped.
func (n *Note) Hash() string {
	return strings.TrimPrefix(n.ID, "cm.")
}

// ComputeDisplayPath derives the display path for a note: "file/hash" for
// top-level notes, "file/parentHash/hash" for children. parentHash is empty
// for top-level notes.
func ComputeDisplayPath(file, parentHash, hash string) string {
	if parentHash == "" {
		return file + "/" + hash
	}
	return file + "/" + parentHash + "/" + hash
}

// FirstContentText returns the text of the first content line, or "".
func (n *Note) FirstContentText() string {
	if len(n.Content) == 0 {
		return ""
	}
	return n.Content[0].Text
}

// ContentText joins all content line texts with newlines. Used as the
// baseline snapshot for incremental link updates.
func (n *Note) ContentText() string {
	parts := make([]string, len(n.Content))
	for i, l := range n.Content {
		parts[i] = l.Text
	}
	return strings.Join(parts, "\n")
}

// Walk calls fn for n and every descendant, depth-first, parents before
// children. fn must not mutate the child lists being walked.
func (n *Note) Walk(fn func(*Note)) {
	fn(n)
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// ProjectRoot is the singleton metadata node for the whole note collection.
type ProjectRoot struct {
	ID      string        `json:"id"` // always ProjectRootID
	Name    string        `json:"name"`
	Created string        `json:"created"`
	Content []ContentLine `json:"content,omitempty"`
}

// GraphNode is a node in the link graph snapshot.
type GraphNode struct {
	ID string `json:"id"`
}

// GraphEdge is a directed edge in the link graph snapshot.
type GraphEdge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Graph is a point-in-time snapshot of the link graph for visualization and
// export consumers.
type Graph struct {
	Nodes []GraphNode `json:"nodes"`
	Edges []GraphEdge `json:"edges"`
}
