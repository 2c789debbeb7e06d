package build

import (
	"fmt"

	"practiso-archive-service/internal/domain"
)

// Tracker owns the current nesting level of one build session and the derived
// validity predicates every tool handler consults. It is not safe for
// concurrent use; the owning session serializes access.
type Tracker struct {
	head  Level
	built bool
	begun bool
}

func NewTracker() *Tracker {
	return &Tracker{head: LevelRoot}
}

// RestoreTracker rebuilds a tracker from persisted snapshot fields.
func RestoreTracker(head Level, built, begun bool) (*Tracker, error) {
	if head < LevelRoot || head > LevelOption {
		return nil, fmt.Errorf("%w: head %d out of range", domain.ErrIllegalTransition, int(head))
	}
	return &Tracker{head: head, built: built, begun: begun}, nil
}

// IncreaseLevel moves the head one rank deeper. Callers are expected to have
// checked validity already; the guard here defends against handler bugs.
func (t *Tracker) IncreaseLevel() error {
	if t.head >= LevelOption {
		return fmt.Errorf("%w: already at %s", domain.ErrIllegalTransition, t.head)
	}
	t.head++
	t.begun = true
	return nil
}

// DecreaseLevel moves the head one rank shallower.
func (t *Tracker) DecreaseLevel() error {
	if t.head <= LevelRoot {
		return fmt.Errorf("%w: already at %s", domain.ErrIllegalTransition, t.head)
	}
	t.head--
	return nil
}

func (t *Tracker) Head() Level { return t.head }

// Valid reports that no nested unit is left open.
func (t *Tracker) Valid() bool { return t.head == LevelRoot }

// Empty reports that no quiz was ever begun in this session. A session can be
// valid yet non-empty (quizzes exist to save); Valid and Empty are distinct.
func (t *Tracker) Empty() bool { return !t.begun }

// Built reports that the accumulated structure has been serialized and saved.
func (t *Tracker) Built() bool { return t.built }

func (t *Tracker) MarkBuilt() { t.built = true }

// ResetBuilt clears the built flag when new content-producing operations begin
// after a save, allowing another save cycle in the same session.
func (t *Tracker) ResetBuilt() { t.built = false }

// OpenLevels lists the currently open levels, deepest first. Used to compose
// the remediation hint telling the caller what to close before saving.
func (t *Tracker) OpenLevels() []Level {
	levels := make([]Level, 0, int(t.head))
	for l := t.head; l > LevelRoot; l-- {
		levels = append(levels, l)
	}
	return levels
}
