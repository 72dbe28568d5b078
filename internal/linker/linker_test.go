package linker

import (
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/codemark/codemark/internal/models"
	"github.com/codemark/codemark/internal/parser"
)

func note(id string, content ...string) *models.Note {
	n := &models.Note{ID: id, Properties: models.Properties{Author: "human"}}
	for _, text := range content {
		n.Content = append(n.Content, models.ContentLine{Text: text, Refs: parser.ExtractRefs(text)})
	}
	return n
}

func sorted(s []string) []string {
	out := append([]string(nil), s...)
	sort.Strings(out)
	return out
}

// checkInverse asserts that forward and backward are exact inverses.
func checkInverse(t *testing.T, l *Linker) {
	t.Helper()
	for from, targets := range l.forward {
		for _, to := range targets {
			if !containsString(l.backward[to], from) {
				t.Errorf("edge %s->%s in forward but not backward", from, to)
			}
		}
	}
	for to, sources := range l.backward {
		for _, from := range sources {
			if !containsString(l.forward[from], to) {
				t.Errorf("edge %s->%s in backward but not forward", from, to)
			}
		}
	}
}

func TestRebuildAll(t *testing.T) {
	a := note("cm.aaa111", "see [[cm.bbb222]] and [[cm.ccc333]]")
	b := note("cm.bbb222", "see [[cm.ccc333]]")
	c := note("cm.ccc333", "no refs")
	child := note("cm.ddd444", "back to [[cm.aaa111]]")
	child.Properties.Parent = c.ID
	c.Children = []*models.Note{child}

	l := New()
	l.RebuildAll([]*models.Note{a, b, c})

	if got := sorted(l.ForwardLinks("cm.aaa111")); !cmp.Equal(got, []string{"cm.bbb222", "cm.ccc333"}) {
		t.Errorf("forward(aaa) = %v", got)
	}
	if got := sorted(l.BackwardLinks("cm.ccc333")); !cmp.Equal(got, []string{"cm.aaa111", "cm.bbb222"}) {
		t.Errorf("backward(ccc) = %v", got)
	}
	// Nested notes participate.
	if got := l.BackwardLinks("cm.aaa111"); len(got) != 1 || got[0] != "cm.ddd444" {
		t.Errorf("backward(aaa) = %v", got)
	}
	if l.BacklinkCount("cm.ccc333") != 2 {
		t.Errorf("backlinkCount(ccc) = %d", l.BacklinkCount("cm.ccc333"))
	}
	checkInverse(t, l)
}

func TestUpdateForNote_AddAndRemove(t *testing.T) {
	l := New()
	a := note("cm.aaa111", "see [[cm.bbb222]]")
	l.UpdateForNote(a, "")

	if got := l.BackwardLinks("cm.bbb222"); len(got) != 1 || got[0] != "cm.aaa111" {
		t.Fatalf("backward(bbb) = %v", got)
	}

	// Rewrite content: drop bbb, add ccc.
	old := a.ContentText()
	a.Content = []models.ContentLine{{Text: "now [[cm.ccc333]]", Refs: parser.ExtractRefs("now [[cm.ccc333]]")}}
	affected := l.UpdateForNote(a, old)

	if got := sorted(affected); !cmp.Equal(got, []string{"cm.bbb222", "cm.ccc333"}) {
		t.Errorf("affected = %v", got)
	}
	if got := l.BackwardLinks("cm.bbb222"); got != nil {
		t.Errorf("backward(bbb) = %v, want empty", got)
	}
	if got := l.BackwardLinks("cm.ccc333"); len(got) != 1 || got[0] != "cm.aaa111" {
		t.Errorf("backward(ccc) = %v", got)
	}
	checkInverse(t, l)
}

func TestUpdateForNote_UnchangedRefsNoOp(t *testing.T) {
	l := New()
	a := note("cm.aaa111", "see [[cm.bbb222]]")
	l.UpdateForNote(a, "")

	old := a.ContentText()
	a.Content = []models.ContentLine{{Text: "reworded, still [[cm.bbb222]]", Refs: []string{"cm.bbb222"}}}
	if affected := l.UpdateForNote(a, old); len(affected) != 0 {
		t.Errorf("affected = %v, want none", affected)
	}
	checkInverse(t, l)
}

func TestUpdateForNote_RelatedSurvivesContentRewrite(t *testing.T) {
	// An edge declared only through the related property must not be removed
	// when the content (which never mentioned it) changes.
	l := New()
	a := note("cm.aaa111", "plain text")
	a.Properties.Related = []string{"cm.bbb222"}
	l.UpdateForNote(a, "")

	old := a.ContentText()
	a.Content = []models.ContentLine{{Text: "still plain"}}
	l.UpdateForNote(a, old)

	if got := l.ForwardLinks("cm.aaa111"); len(got) != 1 || got[0] != "cm.bbb222" {
		t.Errorf("forward(aaa) = %v, want related edge kept", got)
	}
	checkInverse(t, l)
}

func TestRemoveNote(t *testing.T) {
	l := New()
	a := note("cm.aaa111", "see [[cm.bbb222]]")
	b := note("cm.bbb222", "back [[cm.aaa111]] and [[cm.ccc333]]")
	c := note("cm.ccc333")
	l.RebuildAll([]*models.Note{a, b, c})

	affected := l.RemoveNote("cm.bbb222")
	if got := sorted(affected); !cmp.Equal(got, []string{"cm.aaa111", "cm.ccc333"}) {
		t.Errorf("affected = %v", got)
	}
	if got := l.ForwardLinks("cm.aaa111"); got != nil {
		t.Errorf("forward(aaa) = %v, want empty", got)
	}
	if got := l.BackwardLinks("cm.ccc333"); got != nil {
		t.Errorf("backward(ccc) = %v, want empty", got)
	}
	if l.BacklinkCount("cm.bbb222") != 0 {
		t.Error("removed note still has backlinks")
	}
	checkInverse(t, l)
}

func TestGraph(t *testing.T) {
	l := New()
	a := note("cm.aaa111", "see [[cm.bbb222]]")
	b := note("cm.bbb222")
	l.RebuildAll([]*models.Note{a, b})

	g := l.Graph()
	if len(g.Nodes) != 2 {
		t.Errorf("nodes = %v", g.Nodes)
	}
	if len(g.Edges) != 1 || g.Edges[0] != (models.GraphEdge{From: "cm.aaa111", To: "cm.bbb222"}) {
		t.Errorf("edges = %v", g.Edges)
	}
}

func TestDuplicateRefsCollapse(t *testing.T) {
	l := New()
	a := note("cm.aaa111", "see [[cm.bbb222]]", "again [[cm.bbb222]]")
	l.UpdateForNote(a, "")

	if got := l.ForwardLinks("cm.aaa111"); len(got) != 1 {
		t.Errorf("forward(aaa) = %v, want single edge", got)
	}
	if l.BacklinkCount("cm.bbb222") != 1 {
		t.Errorf("backlinkCount = %d", l.BacklinkCount("cm.bbb222"))
	}
}
