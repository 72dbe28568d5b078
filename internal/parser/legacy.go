package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/codemark/codemark/internal/models"
)

// noteStartRe matches a legacy note-start bullet text: a single reference
// with an optional display alias and nothing after it.
var noteStartRe = regexp.MustCompile(`^\[\[(cm\.[a-z0-9]+)(?:\|[^\]]*)?\]\]$`)

// parseLegacy scans the key-value dialect. A "- [[cm.x|display]]" bullet
// opens a note; subsequent "key:: value" lines are attributes; bullet lines
// deeper than the note's own indent are content. A bullet carrying an
// "id:: project-root" attribute recovers the project metadata. Parent
// relationships are declared through "parent::" attributes and resolved into
// child lists after the scan.
func parseLegacy(lines []string) (*models.ProjectRoot, []*models.Note) {
	var (
		root  *models.ProjectRoot
		notes []*models.Note
	)

	i := 0
	for i < len(lines) {
		line := lines[i]
		if strings.TrimSpace(line) == "" {
			i++
			continue
		}
		txt, isBullet := bulletText(line)
		if !isBullet {
			i++
			continue
		}
		baseInd := indentOf(line)

		if m := noteStartRe.FindStringSubmatch(txt); m != nil {
			note, next := parseLegacyNote(lines, i, baseInd, m[1])
			notes = append(notes, note)
			i = next
			continue
		}

		// A non-reference bullet may open the project block.
		if pr, next, ok := parseLegacyProject(lines, i, baseInd, txt); ok {
			root = pr
			i = next
			continue
		}
		i++
	}

	return root, attachLegacyParents(notes)
}

// parseLegacyNote consumes a note's attribute lines and content bullets.
func parseLegacyNote(lines []string, start, baseInd int, id string) (*models.Note, int) {
	note := &models.Note{
		ID: id,
		Properties: models.Properties{
			Author: "human",
		},
	}

	i := start + 1
	// Attribute lines come first, un-bulleted.
	for i < len(lines) {
		line := lines[i]
		if strings.TrimSpace(line) == "" {
			i++
			continue
		}
		if _, isBullet := bulletText(line); isBullet {
			break
		}
		key, val, ok := splitAttr(line)
		if !ok {
			break
		}
		applyLegacyAttr(note, key, val)
		i++
	}

	// Content bullets strictly deeper than the note's own indent.
	for i < len(lines) {
		line := lines[i]
		if strings.TrimSpace(line) == "" {
			i++
			continue
		}
		txt, isBullet := bulletText(line)
		if !isBullet || indentOf(line) <= baseInd {
			break
		}
		rel := indentOf(line) - baseInd - 1
		if rel < 0 {
			rel = 0
		}
		note.Content = append(note.Content, models.ContentLine{
			Indent: rel,
			Text:   txt,
			Refs:   ExtractRefs(txt),
		})
		i++
	}

	note.DisplayPath = models.ComputeDisplayPath(note.Properties.File, "", note.Hash())
	return note, i
}

func applyLegacyAttr(note *models.Note, key, val string) {
	switch key {
	case "id":
		if strings.HasPrefix(val, "cm.") {
			note.ID = val
		}
	case "author":
		note.Properties.Author = val
	case "created":
		note.Properties.Created = val
	case "file":
		note.Properties.File = val
	case "line":
		note.Properties.Line, _ = strconv.Atoi(val)
	case "parent":
		note.Properties.Parent = strings.Trim(val, "[]")
	case "type":
		note.Properties.Type = val
	case "tags":
		note.Properties.Tags = splitList(val)
	case "related":
		if refs := ExtractRefs(val); refs != nil {
			note.Properties.Related = refs
		} else {
			note.Properties.Related = splitList(val)
		}
	}
}

func splitList(val string) []string {
	var out []string
	for _, part := range strings.Split(val, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// parseLegacyProject recognizes a bullet whose attributes declare
// "id:: project-root" and recovers name, created date, and content bullets.
func parseLegacyProject(lines []string, start, baseInd int, title string) (*models.ProjectRoot, int, bool) {
	root := &models.ProjectRoot{ID: models.ProjectRootID, Name: title}

	i := start + 1
	isRoot := false
	for i < len(lines) {
		line := lines[i]
		if strings.TrimSpace(line) == "" {
			i++
			continue
		}
		if _, isBullet := bulletText(line); isBullet {
			break
		}
		key, val, ok := splitAttr(line)
		if !ok {
			break
		}
		switch key {
		case "id":
			isRoot = val == models.ProjectRootID
		case "created":
			root.Created = val
		}
		i++
	}
	if !isRoot {
		return nil, start, false
	}

	for i < len(lines) {
		line := lines[i]
		if strings.TrimSpace(line) == "" {
			i++
			continue
		}
		txt, isBullet := bulletText(line)
		if !isBullet || indentOf(line) <= baseInd {
			break
		}
		rel := indentOf(line) - baseInd - 1
		if rel < 0 {
			rel = 0
		}
		root.Content = append(root.Content, models.ContentLine{
			Indent: rel,
			Text:   txt,
			Refs:   ExtractRefs(txt),
		})
		i++
	}
	return root, i, true
}

// attachLegacyParents resolves "parent::" attributes into child lists and
// returns the remaining top-level notes in scan order. Notes pointing at an
// unknown parent stay top-level with the dangling parent id preserved.
func attachLegacyParents(notes []*models.Note) []*models.Note {
	byID := make(map[string]*models.Note, len(notes))
	for _, n := range notes {
		if _, ok := byID[n.ID]; !ok {
			byID[n.ID] = n
		}
	}

	var topLevel []*models.Note
	for _, n := range notes {
		pid := n.Properties.Parent
		if pid == "" {
			topLevel = append(topLevel, n)
			continue
		}
		parent, ok := byID[pid]
		if !ok || parent == n {
			topLevel = append(topLevel, n)
			continue
		}
		parent.Children = append(parent.Children, n)
		n.DisplayPath = models.ComputeDisplayPath(n.Properties.File, parent.Hash(), n.Hash())
	}
	return topLevel
}
