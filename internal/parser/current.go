package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/codemark/codemark/internal/models"
)

var (
	// noteTitleRe matches a note title bullet text: a leading reference,
	// optionally followed by a summary. The summary is a truncated preview
	// written by the writer and is never read back as content.
	noteTitleRe = regexp.MustCompile(`^\[\[(cm\.[a-z0-9]+)(?:\|[^\]]*)?\]\](?:\s+.*)?$`)
	// metaRe matches a metadata bullet text: "author · date[ · line N]".
	// The date may be absent for title-only notes. The author tag may contain
	// spaces; the non-greedy group stops at the first " ·" separator that
	// leaves a well-formed remainder.
	metaRe = regexp.MustCompile(`^(.+?) ·(?: (\d{4}-\d{2}-\d{2}))?(?: · line (\d+))?$`)
	// attrRe matches a "key:: value" attribute, with or without a bullet.
	attrRe = regexp.MustCompile(`^\s*(?:- )?([a-z_]+):: ?(.*)$`)
)

// MatchesNoteTitle reports whether text would open a note block in the
// current dialect. The writer escapes content lines that match, so a line
// like "[[cm.x]] check this" is not mistaken for a child title on reload.
func MatchesNoteTitle(text string) bool {
	return noteTitleRe.MatchString(text)
}

// unescapeContent strips the writer's escape prefix from a content line.
func unescapeContent(text string) string {
	if strings.HasPrefix(text, `\[[`) {
		return text[1:]
	}
	return text
}

// indentOf returns the indent level of a line at 2 spaces per level.
func indentOf(line string) int {
	n := 0
	for n < len(line) && line[n] == ' ' {
		n++
	}
	return n / 2
}

// bulletText strips the indent and "- " bullet marker, returning the bullet
// body and whether the line is a bullet at all.
func bulletText(line string) (string, bool) {
	trimmed := strings.TrimLeft(line, " ")
	if !strings.HasPrefix(trimmed, "- ") {
		return "", false
	}
	return trimmed[2:], true
}

// splitAttr parses a "key:: value" line.
func splitAttr(line string) (key, value string, ok bool) {
	m := attrRe.FindStringSubmatch(line)
	if m == nil {
		return "", "", false
	}
	return m[1], strings.TrimSpace(m[2]), true
}

// parseCurrent scans the bullet/indent dialect in a single forward pass.
// "- # Name" at indent 0 opens the project block, "- ## path" sets the
// current file context, and a note title bullet at indent >= 1 opens a note
// block parsed by parseNoteBlock.
func parseCurrent(lines []string) (*models.ProjectRoot, []*models.Note) {
	var (
		root     *models.ProjectRoot
		topLevel []*models.Note
		curFile  string
	)

	i := 0
	for i < len(lines) {
		line := lines[i]
		if strings.TrimSpace(line) == "" {
			i++
			continue
		}
		ind := indentOf(line)
		txt, isBullet := bulletText(line)
		if !isBullet {
			i++
			continue
		}

		switch {
		case ind == 0 && strings.HasPrefix(txt, "# ") && !strings.HasPrefix(txt, "## "):
			root = &models.ProjectRoot{ID: models.ProjectRootID, Name: strings.TrimSpace(txt[2:])}
			i = parseProjectBody(lines, i+1, root)

		case ind == 0 && strings.HasPrefix(txt, "## "):
			curFile = strings.TrimSpace(txt[3:])
			i++

		case ind >= 1 && noteTitleRe.MatchString(txt):
			note, next := parseNoteBlock(lines, i, ind, curFile, "")
			topLevel = append(topLevel, note)
			i = next

		default:
			i++
		}
	}
	return root, topLevel
}

// parseProjectBody consumes the nested lines of the project block: a
// "created:: date" attribute or plain content bullets. Returns the index of
// the first line outside the block.
func parseProjectBody(lines []string, start int, root *models.ProjectRoot) int {
	i := start
	for i < len(lines) {
		line := lines[i]
		if strings.TrimSpace(line) == "" {
			i++
			continue
		}
		if indentOf(line) == 0 {
			return i
		}
		txt, isBullet := bulletText(line)
		if !isBullet {
			i++
			continue
		}
		if key, val, ok := splitAttr(txt); ok && key == "created" {
			root.Created = val
			i++
			continue
		}
		rel := indentOf(line) - 1
		if rel < 0 {
			rel = 0
		}
		txt = unescapeContent(txt)
		root.Content = append(root.Content, models.ContentLine{
			Indent: rel,
			Text:   txt,
			Refs:   ExtractRefs(txt),
		})
		i++
	}
	return i
}

// parseNoteBlock parses one note opened by a title bullet at baseInd. Nested
// lines strictly deeper belong to the note: a metadata bullet, a child title
// exactly one level deeper (parsed recursively), or a content bullet with
// indent recorded relative to the note's base. A line at indent <= baseInd
// closes the block. Returns the note and the index after its block.
func parseNoteBlock(lines []string, start, baseInd int, file, parentHash string) (*models.Note, int) {
	titleTxt, _ := bulletText(lines[start])
	id := noteTitleRe.FindStringSubmatch(titleTxt)[1]

	note := &models.Note{
		ID: id,
		Properties: models.Properties{
			File:   file,
			Author: "human",
		},
	}
	note.DisplayPath = models.ComputeDisplayPath(file, parentHash, note.Hash())

	sawMeta := false
	i := start + 1
	for i < len(lines) {
		line := lines[i]
		if strings.TrimSpace(line) == "" {
			i++
			continue
		}
		ind := indentOf(line)
		if ind <= baseInd {
			break
		}
		txt, isBullet := bulletText(line)
		if !isBullet {
			i++
			continue
		}

		if ind == baseInd+1 && noteTitleRe.MatchString(txt) {
			child, next := parseNoteBlock(lines, i, ind, file, note.Hash())
			child.Properties.Parent = note.ID
			note.Children = append(note.Children, child)
			i = next
			continue
		}

		if m := metaRe.FindStringSubmatch(txt); m != nil && !sawMeta {
			sawMeta = true
			note.Properties.Author = m[1]
			note.Properties.Created = m[2]
			if m[3] != "" {
				note.Properties.Line, _ = strconv.Atoi(m[3])
			}
			i++
			continue
		}

		rel := ind - baseInd - 1
		if rel < 0 {
			rel = 0
		}
		txt = unescapeContent(txt)
		note.Content = append(note.Content, models.ContentLine{
			Indent: rel,
			Text:   txt,
			Refs:   ExtractRefs(txt),
		})
		i++
	}
	return note, i
}
