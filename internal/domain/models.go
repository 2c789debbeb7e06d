package domain

import "time"

// TextFrame is a single piece of text content inside a quiz.
type TextFrame struct {
	Content string `json:"content"`
}

// Quiz is one top-level unit of an archive, composed of content frames.
type Quiz struct {
	Name      string      `json:"name,omitempty"`
	CreatedAt time.Time   `json:"createdAt"`
	Frames    []TextFrame `json:"frames"`
}

// SessionSnapshot is the serializable form of a build session, used by
// snapshot-persisting stores (Redis) to survive process restarts.
type SessionSnapshot struct {
	ID      string `json:"id"`
	Head    int    `json:"head"`
	Built   bool   `json:"built"`
	Begun   bool   `json:"begun"`
	Quizzes []Quiz `json:"quizzes"`
	Current *Quiz  `json:"current,omitempty"`
}

// ArchiveRecord describes one archive file written to disk.
type ArchiveRecord struct {
	SessionID string    `json:"sessionId"`
	Path      string    `json:"path"`
	QuizCount int       `json:"quizCount"`
	ByteSize  int64     `json:"byteSize"`
	Fallback  bool      `json:"fallback"`
	SavedAt   time.Time `json:"savedAt"`
}
