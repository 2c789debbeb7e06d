package app

import (
	"context"
	"log"

	"practiso-archive-service/internal/build"
	"practiso-archive-service/internal/domain"
)

// SessionRepository abstracts how build sessions are stored (in-memory, Redis).
type SessionRepository interface {
	GetOrCreate(id string) *Session
	Get(id string) (*Session, bool)
	// Save persists the session snapshot after a mutation. Stores without a
	// durable backend treat this as a no-op.
	Save(ctx context.Context, s *Session) error
	Delete(id string)
	All() []*Session
}

// ArchiveCatalog records archives written to disk.
type ArchiveCatalog interface {
	Record(ctx context.Context, rec domain.ArchiveRecord) error
}

// SessionManager contains the tool-facing use cases and the session lifecycle
// orchestration. One manager serves all sessions of a server run.
type SessionManager struct {
	sessions    SessionRepository
	catalog     ArchiveCatalog
	fallbackDir string
}

func NewSessionManager(store SessionRepository, catalog ArchiveCatalog, fallbackDir string) *SessionManager {
	if fallbackDir == "" {
		fallbackDir = "."
	}
	return &SessionManager{sessions: store, catalog: catalog, fallbackDir: fallbackDir}
}

// BeginQuiz starts a new top-level quiz in the named session.
func (m *SessionManager) BeginQuiz(ctx context.Context, sessionID, name string) error {
	session := m.sessions.GetOrCreate(sessionID)
	if err := session.BeginQuiz(name); err != nil {
		return err
	}
	m.persist(ctx, session)
	return nil
}

// EndQuiz closes the current quiz in the named session.
func (m *SessionManager) EndQuiz(ctx context.Context, sessionID string) error {
	session := m.sessions.GetOrCreate(sessionID)
	if err := session.EndQuiz(); err != nil {
		return err
	}
	m.persist(ctx, session)
	return nil
}

// AddText appends text content to the open quiz of the named session.
func (m *SessionManager) AddText(ctx context.Context, sessionID, content string) (build.Level, error) {
	session := m.sessions.GetOrCreate(sessionID)
	head, err := session.AddText(content)
	if err != nil {
		return head, err
	}
	m.persist(ctx, session)
	return head, nil
}

// Save serializes the named session to path and records the archive.
func (m *SessionManager) Save(ctx context.Context, sessionID, path string) (domain.ArchiveRecord, error) {
	session := m.sessions.GetOrCreate(sessionID)
	record, err := session.Save(ctx, path)
	if err != nil {
		return domain.ArchiveRecord{}, err
	}
	m.persist(ctx, session)
	m.record(ctx, record)
	return record, nil
}

// TeardownAll runs the lifecycle orchestration for every live session. It is
// called exactly once, at server shutdown, and never fails: rescue problems
// are logged so the process can still exit cleanly.
func (m *SessionManager) TeardownAll(ctx context.Context) {
	for _, session := range m.sessions.All() {
		result, err := session.Teardown(ctx, m.fallbackDir)
		switch {
		case err != nil:
			log.Printf("session %s: fallback save failed: %v", session.ID(), err)
		case result.Saved:
			log.Printf("session %s: unsaved work rescued to %s", session.ID(), result.Record.Path)
			m.record(ctx, result.Record)
		case result.Discarded:
			log.Printf("Warning: archive was left invalid at %s and was UNSAVED", result.OpenLevel)
		}
		m.sessions.Delete(session.ID())
	}
}

// persist is best-effort: losing a snapshot degrades durability, not the call.
func (m *SessionManager) persist(ctx context.Context, session *Session) {
	if err := m.sessions.Save(ctx, session); err != nil {
		log.Printf("session %s: persist snapshot: %v", session.ID(), err)
	}
}

func (m *SessionManager) record(ctx context.Context, rec domain.ArchiveRecord) {
	if m.catalog == nil {
		return
	}
	if err := m.catalog.Record(ctx, rec); err != nil {
		log.Printf("catalog: record %s: %v", rec.Path, err)
	}
}
