package mcpserver

// NoteFormatContract describes the canonical notes-file dialect for LLM
// consumers that read or edit the file directly.
const NoteFormatContract = `# Codemark Notes File Contract

All notes for a project live in one bullet-indented text file. Indentation is
two spaces per level.

## Structure

` + "```" + `
- # ProjectName
  - created:: 2024-01-01
- ## src/main.ts
  - [[cm.abc123]] optional truncated summary
    - human · 2024-12-01 · line 42
    - content line (any text, may reference [[cm.other1]])
      - deeper content line
    - [[cm.child1]] a child note, one level deeper
      - human · 2024-12-02
      - child content
` + "```" + `

## Rules

1. **Note ids** are ` + "`" + `cm.` + "`" + ` plus six lowercase alphanumerics and must be
   globally unique within the file.
2. **File headers** (` + "`" + `- ## path` + "`" + `) group the notes attached to one source
   file; every note below a header belongs to that file until the next header.
3. **The metadata bullet** directly under a title is ` + "`" + `author · YYYY-MM-DD` + "`" + `,
   optionally followed by ` + "`" + ` · line N` + "`" + `.
4. **References** use ` + "`" + `[[cm.xxxxxx]]` + "`" + ` anywhere in content, with an optional
   display alias: ` + "`" + `[[cm.xxxxxx|label]]` + "`" + `. They become links in the note graph.
5. **The title summary** after the id is a preview of the first content line;
   tools regenerate it and never read it back.
6. **Encoding** is UTF-8 with a trailing newline.

Prefer the engine's tools (add_note, update_note) over hand-editing; they
keep the backlink index consistent and write the file atomically.
`
