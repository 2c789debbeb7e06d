package build

import (
	"context"
	"errors"
	"time"

	"practiso-archive-service/internal/domain"
)

// Builder accumulates quizzes for one session and materializes them into an
// Archive. Like the tracker, it relies on the owning session for locking.
type Builder struct {
	quizzes []domain.Quiz
	current *domain.Quiz
	clock   func() time.Time
}

func NewBuilder() *Builder {
	return &Builder{clock: time.Now}
}

// NewBuilderWithClock is test-only for deterministic timestamps.
func NewBuilderWithClock(now func() time.Time) *Builder {
	return &Builder{clock: now}
}

// RestoreBuilder rebuilds a builder from persisted snapshot fields.
func RestoreBuilder(quizzes []domain.Quiz, current *domain.Quiz) *Builder {
	b := NewBuilder()
	b.quizzes = append(b.quizzes, quizzes...)
	if current != nil {
		copied := *current
		b.current = &copied
	}
	return b
}

// BeginQuiz opens a new top-level quiz. name may be empty.
func (b *Builder) BeginQuiz(name string) error {
	if b.current != nil {
		return errors.New("builder: quiz already open")
	}
	b.current = &domain.Quiz{Name: name, CreatedAt: b.clock()}
	return nil
}

// AddText appends a text frame to the open quiz.
func (b *Builder) AddText(content string) error {
	if b.current == nil {
		return errors.New("builder: no open quiz")
	}
	b.current.Frames = append(b.current.Frames, domain.TextFrame{Content: content})
	return nil
}

// EndQuiz closes the open quiz, making future content go to a separate one.
func (b *Builder) EndQuiz() error {
	if b.current == nil {
		return errors.New("builder: no open quiz")
	}
	b.quizzes = append(b.quizzes, *b.current)
	b.current = nil
	return nil
}

// Build materializes the accumulated quizzes into an Archive. The builder
// keeps its state so a later Build re-serializes the same content.
func (b *Builder) Build(ctx context.Context) (Archive, error) {
	if err := ctx.Err(); err != nil {
		return Archive{}, err
	}
	quizzes := make([]domain.Quiz, len(b.quizzes))
	copy(quizzes, b.quizzes)
	return Archive{CreatedAt: b.clock(), Quizzes: quizzes}, nil
}

// QuizCount reports how many quizzes have been closed so far.
func (b *Builder) QuizCount() int { return len(b.quizzes) }

// Snapshot exports the builder state for persistence.
func (b *Builder) Snapshot() ([]domain.Quiz, *domain.Quiz) {
	quizzes := make([]domain.Quiz, len(b.quizzes))
	copy(quizzes, b.quizzes)
	if b.current == nil {
		return quizzes, nil
	}
	copied := *b.current
	return quizzes, &copied
}
