package mcpserver

import (
	"context"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/codemark/codemark/internal/noteservice"
	"github.com/codemark/codemark/internal/store"
	"github.com/codemark/codemark/internal/testutil"
)

func testServer(t *testing.T) (*Server, *noteservice.Service) {
	t.Helper()
	st, _ := testutil.TestStore(t)
	svc := noteservice.New(st)
	return New(svc), svc
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args

	// mcp-go has no direct "call tool" test helper, so handlers are invoked
	// directly.
	var result *mcp.CallToolResult
	var err error

	switch name {
	case "search_notes":
		result, err = srv.searchNotes(ctx, req)
	case "get_note":
		result, err = srv.getNote(ctx, req)
	case "add_note":
		result, err = srv.addNote(ctx, req)
	case "update_note":
		result, err = srv.updateNote(ctx, req)
	case "delete_note":
		result, err = srv.deleteNote(ctx, req)
	case "move_note":
		result, err = srv.moveNote(ctx, req)
	case "get_backlinks":
		result, err = srv.getBacklinks(ctx, req)
	case "get_related":
		result, err = srv.getRelated(ctx, req)
	case "link_graph":
		result, err = srv.linkGraph(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}

	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestAddAndGetNote(t *testing.T) {
	srv, svc := testServer(t)

	r := callTool(t, srv, "add_note", map[string]interface{}{
		"file":    "src/a.ts",
		"content": "created over mcp",
		"line":    float64(7),
	})
	if r.IsError {
		t.Fatalf("add_note failed: %s", resultText(r))
	}
	if !strings.Contains(resultText(r), "cm.test00") {
		t.Errorf("result = %s", resultText(r))
	}

	n := svc.GetNote(context.Background(), "cm.test00")
	if n == nil || n.Properties.Line != 7 {
		t.Fatalf("note = %+v", n)
	}

	r = callTool(t, srv, "get_note", map[string]interface{}{"id": "cm.test00"})
	if r.IsError {
		t.Fatalf("get_note failed: %s", resultText(r))
	}
	if !strings.Contains(resultText(r), "created over mcp") {
		t.Errorf("result = %s", resultText(r))
	}
}

func TestAddNote_MissingArgs(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "add_note", map[string]interface{}{"file": "a.ts"})
	if !r.IsError {
		t.Error("expected error for missing content")
	}
}

func TestAddNote_UnknownParent(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "add_note", map[string]interface{}{
		"file":      "a.ts",
		"content":   "body",
		"parent_id": "cm.ghost1",
	})
	if !r.IsError {
		t.Error("expected error for unknown parent")
	}
	if !strings.Contains(resultText(r), "parent not found") {
		t.Errorf("result = %s", resultText(r))
	}
}

func TestGetNote_NotFound(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "get_note", map[string]interface{}{"id": "cm.ghost1"})
	if !r.IsError {
		t.Error("expected error for unknown note")
	}
}

func TestUpdateAndDeleteNote(t *testing.T) {
	srv, svc := testServer(t)
	ctx := context.Background()
	svc.AddNote(ctx, "a.ts", "before", store.AddOptions{NoteID: "cm.note11"})

	r := callTool(t, srv, "update_note", map[string]interface{}{
		"id": "cm.note11", "content": "after",
	})
	if r.IsError {
		t.Fatalf("update_note failed: %s", resultText(r))
	}
	if got := svc.GetNote(ctx, "cm.note11").FirstContentText(); got != "after" {
		t.Errorf("content = %q", got)
	}

	r = callTool(t, srv, "delete_note", map[string]interface{}{"id": "cm.note11"})
	if r.IsError {
		t.Fatalf("delete_note failed: %s", resultText(r))
	}
	if svc.GetNote(ctx, "cm.note11") != nil {
		t.Error("note still present")
	}

	r = callTool(t, srv, "delete_note", map[string]interface{}{"id": "cm.note11"})
	if !r.IsError {
		t.Error("expected error for second delete")
	}
}

func TestMoveNote(t *testing.T) {
	srv, svc := testServer(t)
	ctx := context.Background()
	svc.AddNote(ctx, "old.ts", "movable", store.AddOptions{NoteID: "cm.mov111"})

	r := callTool(t, srv, "move_note", map[string]interface{}{
		"id": "cm.mov111", "file": "new.ts", "line": float64(20),
	})
	if r.IsError {
		t.Fatalf("move_note failed: %s", resultText(r))
	}
	n := svc.GetNote(ctx, "cm.mov111")
	if n.Properties.File != "new.ts" || n.Properties.Line != 20 {
		t.Errorf("note at %s:%d", n.Properties.File, n.Properties.Line)
	}
}

func TestSearchNotes(t *testing.T) {
	srv, svc := testServer(t)
	svc.AddNote(context.Background(), "a.ts", "findable text", store.AddOptions{})

	r := callTool(t, srv, "search_notes", map[string]interface{}{"query": "findable"})
	if r.IsError {
		t.Fatalf("search failed: %s", resultText(r))
	}
	if !strings.Contains(resultText(r), "findable text") {
		t.Errorf("result = %s", resultText(r))
	}
}

func TestBacklinksAndGraph(t *testing.T) {
	srv, svc := testServer(t)
	ctx := context.Background()
	svc.AddNote(ctx, "a.ts", "target", store.AddOptions{NoteID: "cm.target"})
	svc.AddNote(ctx, "a.ts", "see [[cm.target]]", store.AddOptions{NoteID: "cm.source"})

	r := callTool(t, srv, "get_backlinks", map[string]interface{}{"id": "cm.target"})
	if !strings.Contains(resultText(r), "cm.source") {
		t.Errorf("backlinks = %s", resultText(r))
	}

	r = callTool(t, srv, "get_backlinks", map[string]interface{}{"id": "cm.source"})
	if resultText(r) != "no backlinks found" {
		t.Errorf("backlinks = %s", resultText(r))
	}

	r = callTool(t, srv, "get_related", map[string]interface{}{"id": "cm.target"})
	if !strings.Contains(resultText(r), "incoming") {
		t.Errorf("related = %s", resultText(r))
	}

	r = callTool(t, srv, "link_graph", map[string]interface{}{})
	txt := resultText(r)
	if !strings.Contains(txt, "cm.source") || !strings.Contains(txt, "cm.target") {
		t.Errorf("graph = %s", txt)
	}
}

func TestNoteFormatResource(t *testing.T) {
	srv, _ := testServer(t)
	contents, err := srv.readNoteFormatResource(context.Background(), mcp.ReadResourceRequest{})
	if err != nil {
		t.Fatalf("resource: %v", err)
	}
	if len(contents) != 1 {
		t.Fatalf("contents = %d", len(contents))
	}
	tc, ok := contents[0].(mcp.TextResourceContents)
	if !ok || !strings.Contains(tc.Text, "- ## ") {
		t.Errorf("resource contents = %+v", contents[0])
	}
}
