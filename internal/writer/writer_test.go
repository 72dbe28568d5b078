package writer

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/codemark/codemark/internal/models"
	"github.com/codemark/codemark/internal/parser"
)

func note(id, file, author, created string, line int, content ...string) *models.Note {
	n := &models.Note{
		ID: id,
		Properties: models.Properties{
			File:    file,
			Author:  author,
			Created: created,
			Line:    line,
		},
	}
	for _, text := range content {
		n.Content = append(n.Content, models.ContentLine{Text: text, Refs: parser.ExtractRefs(text)})
	}
	n.DisplayPath = models.ComputeDisplayPath(file, "", n.Hash())
	return n
}

func TestWrite_Layout(t *testing.T) {
	root := &models.ProjectRoot{ID: models.ProjectRootID, Name: "Demo", Created: "2024-01-01"}
	notes := []*models.Note{
		note("cm.aaa111", "src/a.ts", "human", "2024-12-01", 10, "first note body"),
		note("cm.bbb222", "src/a.ts", "alice", "2024-12-02", 0, "second note body"),
	}

	got := Write(root, notes, Options{})
	want := strings.Join([]string{
		"- # Demo",
		"  - created:: 2024-01-01",
		"- ## src/a.ts",
		"  - [[cm.aaa111]] first note body",
		"    - human · 2024-12-01 · line 10",
		"    - first note body",
		"  - [[cm.bbb222]] second note body",
		"    - alice · 2024-12-02",
		"    - second note body",
		"",
	}, "\n")
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestWrite_SortsAndGroupsByFile(t *testing.T) {
	notes := []*models.Note{
		note("cm.zzz999", "src/b.ts", "human", "2024-12-01", 0, "b note"),
		note("cm.aaa111", "src/a.ts", "human", "2024-12-01", 0, "a note two"),
		note("cm.aaa000", "src/a.ts", "human", "2024-12-01", 0, "a note one"),
	}

	got := Write(nil, notes, Options{SortNotes: true})

	aHeader := strings.Index(got, "- ## src/a.ts")
	bHeader := strings.Index(got, "- ## src/b.ts")
	if aHeader < 0 || bHeader < 0 || aHeader > bHeader {
		t.Fatalf("file header order wrong:\n%s", got)
	}
	if strings.Index(got, "cm.aaa000") > strings.Index(got, "cm.aaa111") {
		t.Errorf("notes within file not sorted by id:\n%s", got)
	}
	if strings.Count(got, "- ## src/a.ts") != 1 {
		t.Errorf("file header duplicated:\n%s", got)
	}
}

func TestWrite_ChildrenInline(t *testing.T) {
	parent := note("cm.par111", "src/a.ts", "human", "2024-12-01", 0, "parent body")
	child := note("cm.chi222", "src/a.ts", "human", "2024-12-02", 0, "child body")
	child.Properties.Parent = parent.ID
	child.DisplayPath = models.ComputeDisplayPath("src/a.ts", parent.Hash(), child.Hash())
	parent.Children = []*models.Note{child}

	// The child appears in the flat slice too; it must not be emitted twice.
	got := Write(nil, []*models.Note{parent, child}, Options{})

	if strings.Count(got, "[[cm.chi222]]") != 1 {
		t.Fatalf("child emitted more than once:\n%s", got)
	}
	if !strings.Contains(got, "    - [[cm.chi222]] child body") {
		t.Errorf("child not nested one level under parent:\n%s", got)
	}
}

func TestWrite_SummaryTruncated(t *testing.T) {
	long := strings.Repeat("x", 100)
	got := Write(nil, []*models.Note{note("cm.lng111", "a.ts", "human", "2024-12-01", 0, long)}, Options{})

	title := "[[cm.lng111]] " + strings.Repeat("x", summaryLen)
	if !strings.Contains(got, title+"\n") {
		t.Errorf("summary not truncated to %d runes:\n%s", summaryLen, got)
	}
}

func TestWrite_NilRoot(t *testing.T) {
	got := Write(nil, nil, Options{})
	if got != "- # Notes\n" {
		t.Errorf("got %q", got)
	}
}

func TestWrite_RefLeadingContentRoundTrip(t *testing.T) {
	// A content line that starts with a bare reference must not be read back
	// as a child title: the target note's content would be lost and the
	// referenced id would be reported as a duplicate.
	target := note("cm.tgt111", "src/a.ts", "human", "2024-12-01", 0, "target body")
	src := note("cm.src111", "src/a.ts", "human", "2024-12-02", 0, "[[cm.tgt111]] check this call")

	text := Write(nil, []*models.Note{target, src}, Options{SortNotes: true})
	res := parser.Parse(text)

	if len(res.Errors) != 0 {
		t.Fatalf("errors = %v", res.Errors)
	}
	got := res.Notes["cm.src111"]
	if got == nil {
		t.Fatal("source note lost")
	}
	if len(got.Children) != 0 {
		t.Fatalf("content parsed as child: %v", got.Children)
	}
	if len(got.Content) != 1 || got.Content[0].Text != "[[cm.tgt111]] check this call" {
		t.Errorf("content = %v", got.Content)
	}
	if len(got.Content[0].Refs) != 1 || got.Content[0].Refs[0] != "cm.tgt111" {
		t.Errorf("refs = %v", got.Content[0].Refs)
	}
	// The escape also covers title-only reference lines.
	bare := note("cm.bare11", "src/b.ts", "human", "2024-12-03", 0, "[[cm.tgt111]]")
	res = parser.Parse(Write(nil, []*models.Note{target, bare}, Options{}))
	if n := res.Notes["cm.bare11"]; n == nil || len(n.Content) != 1 || n.Content[0].Text != "[[cm.tgt111]]" {
		t.Errorf("bare ref content not preserved: %+v", n)
	}
}

func TestWrite_MultiWordAuthorRoundTrip(t *testing.T) {
	n := note("cm.aut111", "src/a.ts", "Jane Doe", "2024-12-01", 4, "body")
	res := parser.Parse(Write(nil, []*models.Note{n}, Options{}))

	got := res.Notes["cm.aut111"]
	if got == nil {
		t.Fatal("note lost")
	}
	if got.Properties.Author != "Jane Doe" {
		t.Errorf("author = %q", got.Properties.Author)
	}
	if got.Properties.Created != "2024-12-01" || got.Properties.Line != 4 {
		t.Errorf("props = %+v", got.Properties)
	}
	if len(got.Content) != 1 || got.Content[0].Text != "body" {
		t.Errorf("content = %v", got.Content)
	}
}

func TestWrite_RoundTrip(t *testing.T) {
	root := &models.ProjectRoot{ID: models.ProjectRootID, Name: "Round", Created: "2024-02-02"}
	parent := note("cm.par111", "src/a.ts", "human", "2024-12-01", 7, "parent body", "see [[cm.solo13]]")
	parent.Content[1].Indent = 1
	child := note("cm.chi222", "src/a.ts", "alice", "2024-12-02", 0, "child body")
	child.Properties.Parent = parent.ID
	child.DisplayPath = models.ComputeDisplayPath("src/a.ts", parent.Hash(), child.Hash())
	parent.Children = []*models.Note{child}
	solo := note("cm.solo13", "src/b.ts", "human", "2024-12-03", 0, "solo body")

	text := Write(root, []*models.Note{parent, solo}, Options{SortNotes: true})
	res := parser.Parse(text)

	if res.Dialect != parser.DialectCurrent {
		t.Fatalf("dialect = %v", res.Dialect)
	}
	if len(res.Errors) != 0 || len(res.Warnings) != 0 {
		t.Fatalf("diagnostics: %v %v", res.Errors, res.Warnings)
	}
	if diff := cmp.Diff(root, res.ProjectRoot); diff != "" {
		t.Errorf("project root mismatch (-want +got):\n%s", diff)
	}
	for _, want := range []*models.Note{parent, child, solo} {
		got, ok := res.Notes[want.ID]
		if !ok {
			t.Fatalf("note %s lost in round trip", want.ID)
		}
		if diff := cmp.Diff(want.Properties, got.Properties); diff != "" {
			t.Errorf("%s properties (-want +got):\n%s", want.ID, diff)
		}
		if diff := cmp.Diff(want.Content, got.Content); diff != "" {
			t.Errorf("%s content (-want +got):\n%s", want.ID, diff)
		}
		if got.DisplayPath != want.DisplayPath {
			t.Errorf("%s displayPath = %q, want %q", want.ID, got.DisplayPath, want.DisplayPath)
		}
	}
}
