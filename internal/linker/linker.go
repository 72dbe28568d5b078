// Package linker maintains the bidirectional link index between notes.
//
// A Linker is owned by exactly one store instance and does no I/O. After
// every mutating call the forward and backward maps are exact inverses:
// b is in Forward(a) iff a is in Backward(b).
package linker

import (
	"github.com/codemark/codemark/internal/models"
	"github.com/codemark/codemark/internal/parser"
)

// Linker holds the forward/backward adjacency maps and the set of known ids.
type Linker struct {
	forward  map[string][]string
	backward map[string][]string
	known    map[string]struct{}
}

// New returns an empty Linker.
func New() *Linker {
	l := &Linker{}
	l.reset()
	return l
}

func (l *Linker) reset() {
	l.forward = make(map[string][]string)
	l.backward = make(map[string][]string)
	l.known = make(map[string]struct{})
}

// RebuildAll clears all state and recomputes the full adjacency from the
// given forest (children included transitively). Used on load and reload;
// incremental updates go through UpdateForNote.
func (l *Linker) RebuildAll(notes []*models.Note) {
	l.reset()
	for _, top := range notes {
		top.Walk(func(n *models.Note) {
			l.known[n.ID] = struct{}{}
		})
	}
	for _, top := range notes {
		top.Walk(func(n *models.Note) {
			for _, target := range refSet(n) {
				l.addEdge(n.ID, target)
			}
		})
	}
}

// UpdateForNote reconciles the edges of one note after a content change. The
// new reference set comes from the note's current in-memory state; the old
// set is parsed from oldContent (the pre-mutation content text, "" for a
// freshly added note). Returns the deduplicated union of target ids whose
// backward sets were touched, so callers can recompute derived fields for
// just those notes.
func (l *Linker) UpdateForNote(n *models.Note, oldContent string) []string {
	l.known[n.ID] = struct{}{}

	oldSet := make(map[string]struct{})
	for _, id := range parser.ExtractRefs(oldContent) {
		oldSet[id] = struct{}{}
	}
	newSet := make(map[string]struct{})
	for _, id := range refSet(n) {
		newSet[id] = struct{}{}
	}

	affected := make(map[string]struct{})
	for id := range oldSet {
		if _, keep := newSet[id]; !keep {
			l.removeEdge(n.ID, id)
			affected[id] = struct{}{}
		}
	}
	for id := range newSet {
		if _, had := oldSet[id]; !had {
			l.addEdge(n.ID, id)
			affected[id] = struct{}{}
		}
	}
	return setToSlice(affected)
}

// RemoveNote drops every edge from and to id and forgets the id entirely.
// Returns the union of its former forward and backward neighbors.
func (l *Linker) RemoveNote(id string) []string {
	affected := make(map[string]struct{})
	for _, target := range l.forward[id] {
		affected[target] = struct{}{}
		l.backward[target] = removeString(l.backward[target], id)
		if len(l.backward[target]) == 0 {
			delete(l.backward, target)
		}
	}
	for _, source := range l.backward[id] {
		affected[source] = struct{}{}
		l.forward[source] = removeString(l.forward[source], id)
		if len(l.forward[source]) == 0 {
			delete(l.forward, source)
		}
	}
	delete(l.forward, id)
	delete(l.backward, id)
	delete(l.known, id)
	return setToSlice(affected)
}

// ForwardLinks returns the outgoing neighbors of id. The slice is shared;
// callers must not mutate it.
func (l *Linker) ForwardLinks(id string) []string {
	return l.forward[id]
}

// BackwardLinks returns the incoming neighbors of id.
func (l *Linker) BackwardLinks(id string) []string {
	return l.backward[id]
}

// BacklinkCount returns the number of notes linking to id.
func (l *Linker) BacklinkCount(id string) int {
	return len(l.backward[id])
}

// Graph returns a snapshot of all known nodes and forward edges for
// visualization and export consumers.
func (l *Linker) Graph() models.Graph {
	g := models.Graph{
		Nodes: make([]models.GraphNode, 0, len(l.known)),
		Edges: []models.GraphEdge{},
	}
	for id := range l.known {
		g.Nodes = append(g.Nodes, models.GraphNode{ID: id})
	}
	for from, targets := range l.forward {
		for _, to := range targets {
			g.Edges = append(g.Edges, models.GraphEdge{From: from, To: to})
		}
	}
	return g
}

// refSet is the union of a note's explicit related list and the references
// in its content lines.
func refSet(n *models.Note) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, id := range n.Properties.Related {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	for _, line := range n.Content {
		for _, id := range line.Refs {
			if _, ok := seen[id]; !ok {
				seen[id] = struct{}{}
				out = append(out, id)
			}
		}
	}
	return out
}

func (l *Linker) addEdge(from, to string) {
	if !containsString(l.forward[from], to) {
		l.forward[from] = append(l.forward[from], to)
	}
	if !containsString(l.backward[to], from) {
		l.backward[to] = append(l.backward[to], from)
	}
}

func (l *Linker) removeEdge(from, to string) {
	l.forward[from] = removeString(l.forward[from], to)
	if len(l.forward[from]) == 0 {
		delete(l.forward, from)
	}
	l.backward[to] = removeString(l.backward[to], from)
	if len(l.backward[to]) == 0 {
		delete(l.backward, to)
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

func removeString(s []string, v string) []string {
	out := s[:0]
	for _, x := range s {
		if x != v {
			out = append(out, x)
		}
	}
	return out
}

func setToSlice(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	return out
}
