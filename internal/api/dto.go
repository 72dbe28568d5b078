package api

// CreateNoteRequest is the request body for creating a note.
type CreateNoteRequest struct {
	File     string   `json:"file"`
	Content  string   `json:"content"`
	ParentID string   `json:"parent_id,omitempty"`
	NoteID   string   `json:"note_id,omitempty"`
	Line     int      `json:"line,omitempty"`
	Author   string   `json:"author,omitempty"`
	Type     string   `json:"type,omitempty"`
	Tags     []string `json:"tags,omitempty"`
	Related  []string `json:"related,omitempty"`
}

// UpdateNoteRequest is the request body for updating a note's content.
type UpdateNoteRequest struct {
	Content string `json:"content"`
}

// MoveNoteRequest is the request body for moving a note.
type MoveNoteRequest struct {
	File string `json:"file"`
	Line int    `json:"line,omitempty"`
}
