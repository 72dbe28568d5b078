// Package testutil provides shared test helpers for setting up stores.
package testutil

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/codemark/codemark/internal/noteid"
	"github.com/codemark/codemark/internal/store"
)

// TestStore creates a loaded store over a temp notes file with a
// deterministic sequential id generator. Returns the store and the file path.
func TestStore(t *testing.T, opts ...store.Option) (*store.Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "notes.md")
	all := append([]store.Option{store.WithGenerator(SeqGenerator())}, opts...)
	st := store.New(path, all...)
	if err := st.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	return st, path
}

// SeqGenerator returns a generator producing cm.test00, cm.test01, ...
// so tests get stable ids.
func SeqGenerator() noteid.Generator {
	n := 0
	return func() string {
		id := fmt.Sprintf("cm.test%02d", n)
		n++
		return id
	}
}
