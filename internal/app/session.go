package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"practiso-archive-service/internal/build"
	"practiso-archive-service/internal/domain"
)

// Session is one builder/tracker pair. Every check-act-mutate sequence runs
// under the session lock so concurrent tool dispatch cannot interleave.
type Session struct {
	id      string
	mu      sync.Mutex
	builder *build.Builder
	tracker *build.Tracker
	clock   func() time.Time
}

func NewSession(id string) *Session {
	return &Session{
		id:      id,
		builder: build.NewBuilder(),
		tracker: build.NewTracker(),
		clock:   time.Now,
	}
}

// NewSessionWithClock is test-only for deterministic timestamps.
func NewSessionWithClock(id string, now func() time.Time) *Session {
	return &Session{
		id:      id,
		builder: build.NewBuilderWithClock(now),
		tracker: build.NewTracker(),
		clock:   now,
	}
}

// RestoreSession rebuilds a session from a persisted snapshot.
func RestoreSession(snap domain.SessionSnapshot) (*Session, error) {
	tracker, err := build.RestoreTracker(build.Level(snap.Head), snap.Built, snap.Begun)
	if err != nil {
		return nil, err
	}
	return &Session{
		id:      snap.ID,
		builder: build.RestoreBuilder(snap.Quizzes, snap.Current),
		tracker: tracker,
		clock:   time.Now,
	}, nil
}

func (s *Session) ID() string { return s.id }

// Snapshot exports the session for persistence.
func (s *Session) Snapshot() domain.SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	quizzes, current := s.builder.Snapshot()
	return domain.SessionSnapshot{
		ID:      s.id,
		Head:    int(s.tracker.Head()),
		Built:   s.tracker.Built(),
		Begun:   !s.tracker.Empty(),
		Quizzes: quizzes,
		Current: current,
	}
}

// BeginQuiz opens a new top-level quiz. Beginning new content after a save
// clears the built flag so another save cycle is possible.
func (s *Session) BeginQuiz(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tracker.Head() != build.LevelRoot {
		return domain.ErrIllegalState
	}
	if err := s.builder.BeginQuiz(name); err != nil {
		return err
	}
	if err := s.tracker.IncreaseLevel(); err != nil {
		return err
	}
	s.tracker.ResetBuilt()
	return nil
}

// EndQuiz closes the current quiz.
func (s *Session) EndQuiz() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tracker.Head() != build.LevelQuiz {
		return domain.ErrIllegalState
	}
	if err := s.builder.EndQuiz(); err != nil {
		return err
	}
	return s.tracker.DecreaseLevel()
}

// AddText appends text content to the open quiz and returns the (unchanged)
// head level so callers can advertise the legal next actions.
func (s *Session) AddText(content string) (build.Level, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	head := s.tracker.Head()
	if head != build.LevelQuiz && head != build.LevelOption {
		return head, domain.ErrIllegalState
	}
	if err := s.builder.AddText(content); err != nil {
		return head, err
	}
	return head, nil
}

// Save validates the target path, serializes the accumulated quizzes and
// writes the gzip-compressed archive to it. Path validation happens before
// any builder call; repeated saves of a valid session are idempotent.
func (s *Session) Save(ctx context.Context, path string) (domain.ArchiveRecord, error) {
	if err := validateTarget(path); err != nil {
		return domain.ArchiveRecord{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tracker.Empty() {
		return domain.ArchiveRecord{}, fmt.Errorf("%w; begin a quiz first", domain.ErrIllegalState)
	}
	if !s.tracker.Valid() {
		return domain.ArchiveRecord{}, fmt.Errorf("%w; end the %s", domain.ErrIllegalState, andClause(levelNames(s.tracker.OpenLevels())))
	}

	record, err := s.writeArchiveLocked(ctx, path, false)
	if err != nil {
		return domain.ArchiveRecord{}, err
	}
	s.tracker.MarkBuilt()
	return record, nil
}

// TeardownResult describes what the lifecycle orchestrator did with a session.
type TeardownResult struct {
	Saved     bool
	Record    domain.ArchiveRecord
	Discarded bool
	OpenLevel build.Level
}

// Teardown inspects the final state and rescues completed-but-unsaved work by
// writing a timestamped fallback archive into dir. An invalid non-empty state
// is reported as discarded; teardown itself never fails the session, so the
// returned error is advisory (the fallback write can still go wrong).
func (s *Session) Teardown(ctx context.Context, dir string) (TeardownResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case s.tracker.Valid() && !s.tracker.Built() && !s.tracker.Empty():
		// The session id keeps rescue paths distinct when several sessions
		// tear down within the same second.
		name := fmt.Sprintf("unsaved_%s_%s%s", pathSafe(s.id), s.clock().Format("20060102_150405"), build.Extension)
		record, err := s.writeArchiveLocked(ctx, filepath.Join(dir, name), true)
		if err != nil {
			return TeardownResult{}, err
		}
		s.tracker.MarkBuilt()
		return TeardownResult{Saved: true, Record: record}, nil
	case !s.tracker.Valid() && !s.tracker.Empty():
		return TeardownResult{Discarded: true, OpenLevel: s.tracker.Head()}, nil
	default:
		// Valid-and-built (clean exit) or nothing ever produced.
		return TeardownResult{}, nil
	}
}

func (s *Session) writeArchiveLocked(ctx context.Context, path string, fallback bool) (domain.ArchiveRecord, error) {
	archive, err := s.builder.Build(ctx)
	if err != nil {
		return domain.ArchiveRecord{}, err
	}
	size, err := archive.WriteFile(path)
	if err != nil {
		return domain.ArchiveRecord{}, err
	}
	return domain.ArchiveRecord{
		SessionID: s.id,
		Path:      path,
		QuizCount: len(archive.Quizzes),
		ByteSize:  size,
		Fallback:  fallback,
		SavedAt:   s.clock(),
	}, nil
}

// validateTarget enforces the save destination rules, each violation a
// distinct wrap of ErrInvalidTarget, before any I/O happens.
func validateTarget(path string) error {
	if !filepath.IsAbs(path) {
		return fmt.Errorf("%w: path is not absolute", domain.ErrInvalidTarget)
	}
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return fmt.Errorf("%w: path is an existing directory", domain.ErrInvalidTarget)
	}
	// A bare `.psarchive` dotfile has no stem; Ext alone would accept it.
	if filepath.Ext(path) != build.Extension || filepath.Base(path) == build.Extension {
		return fmt.Errorf("%w: path doesn't end with `%s`", domain.ErrInvalidTarget, build.Extension)
	}
	return nil
}

// pathSafe reduces an opaque session id to characters that are safe in a
// file name.
func pathSafe(id string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '-'
	}, id)
}

func levelNames(levels []build.Level) []string {
	names := make([]string, len(levels))
	for i, l := range levels {
		names[i] = l.String()
	}
	return names
}

// andClause joins items into a natural-language conjunction:
// "a", "a and b", "x, y and z".
func andClause(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	case 2:
		return items[0] + " and " + items[1]
	}
	return strings.Join(items[:len(items)-2], ", ") + ", " + andClause(items[len(items)-2:])
}
