package redis

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"practiso-archive-service/internal/app"
	"practiso-archive-service/internal/domain"
)

// SessionStore is a Redis-backed implementation of app.SessionRepository.
// Notes:
//   - The live builder/tracker pair stays in a local map; Redis holds JSON
//     snapshots so a restarted server can restore in-progress sessions.
//   - Snapshot writes are best-effort: Redis being down degrades durability,
//     not tool calls.
type SessionStore struct {
	client   *redis.Client
	ttl      time.Duration
	mu       sync.RWMutex
	sessions map[string]*app.Session
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{
		client:   client,
		ttl:      ttl,
		sessions: make(map[string]*app.Session),
	}
}

func (s *SessionStore) GetOrCreate(id string) *app.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	if session, ok := s.sessions[id]; ok {
		return session
	}
	session := s.restore(id)
	if session == nil {
		session = app.NewSession(id)
	}
	s.sessions[id] = session
	return session
}

func (s *SessionStore) Get(id string) (*app.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	return session, ok
}

// Save persists the session snapshot as JSON with the configured TTL.
func (s *SessionStore) Save(ctx context.Context, session *app.Session) error {
	raw, err := json.Marshal(session.Snapshot())
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.key(session.ID()), raw, s.ttl).Err()
}

func (s *SessionStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	_ = s.client.Del(context.Background(), s.key(id)).Err()
}

func (s *SessionStore) All() []*app.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sessions := make([]*app.Session, 0, len(s.sessions))
	for _, session := range s.sessions {
		sessions = append(sessions, session)
	}
	return sessions
}

// restore loads a snapshot left behind by a previous run, if any.
func (s *SessionStore) restore(id string) *app.Session {
	raw, err := s.client.Get(context.Background(), s.key(id)).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Printf("redis: load session %s: %v", id, err)
		}
		return nil
	}
	var snap domain.SessionSnapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		log.Printf("redis: decode session %s: %v", id, err)
		return nil
	}
	session, err := app.RestoreSession(snap)
	if err != nil {
		log.Printf("redis: restore session %s: %v", id, err)
		return nil
	}
	return session
}

func (s *SessionStore) key(id string) string {
	return "archive:session:" + id
}
