package build

import (
	"bytes"
	"compress/gzip"
	"context"
	"io"
	"strings"
	"testing"
	"time"
)

func fixedClock() func() time.Time {
	at := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	return func() time.Time { return at }
}

func TestBuilderRoundTrip(t *testing.T) {
	builder := NewBuilderWithClock(fixedClock())

	if err := builder.BeginQuiz("Geography"); err != nil {
		t.Fatalf("begin quiz: %v", err)
	}
	if err := builder.AddText("What is the capital of Peru?"); err != nil {
		t.Fatalf("add text: %v", err)
	}
	if err := builder.EndQuiz(); err != nil {
		t.Fatalf("end quiz: %v", err)
	}
	if builder.QuizCount() != 1 {
		t.Fatalf("expected one quiz, got %d", builder.QuizCount())
	}

	archive, err := builder.Build(context.Background())
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	var buf bytes.Buffer
	if _, err := archive.WriteTo(&buf); err != nil {
		t.Fatalf("write archive: %v", err)
	}

	zr, err := gzip.NewReader(&buf)
	if err != nil {
		t.Fatalf("archive is not gzip: %v", err)
	}
	raw, err := io.ReadAll(zr)
	if err != nil {
		t.Fatalf("decompress: %v", err)
	}

	doc := string(raw)
	if !strings.Contains(doc, "What is the capital of Peru?") {
		t.Fatalf("serialized archive missing content: %s", doc)
	}
	if !strings.Contains(doc, `name="Geography"`) {
		t.Fatalf("serialized archive missing quiz name: %s", doc)
	}
	if !strings.Contains(doc, "<archive") || !strings.Contains(doc, "<frames>") {
		t.Fatalf("unexpected document shape: %s", doc)
	}
}

func TestBuilderGuardsMisuse(t *testing.T) {
	builder := NewBuilder()

	if err := builder.AddText("orphan"); err == nil {
		t.Fatalf("expected error adding text with no open quiz")
	}
	if err := builder.EndQuiz(); err == nil {
		t.Fatalf("expected error ending with no open quiz")
	}
	if err := builder.BeginQuiz(""); err != nil {
		t.Fatalf("begin quiz: %v", err)
	}
	if err := builder.BeginQuiz("second"); err == nil {
		t.Fatalf("expected error opening a second quiz")
	}
}

func TestBuilderRebuildsSameContent(t *testing.T) {
	builder := NewBuilderWithClock(fixedClock())
	_ = builder.BeginQuiz("q")
	_ = builder.AddText("frame")
	_ = builder.EndQuiz()

	first, err := builder.Build(context.Background())
	if err != nil {
		t.Fatalf("first build: %v", err)
	}
	second, err := builder.Build(context.Background())
	if err != nil {
		t.Fatalf("second build: %v", err)
	}

	a, _ := first.Bytes()
	b, _ := second.Bytes()
	if !bytes.Equal(a, b) {
		t.Fatalf("re-serialization differs:\n%s\n%s", a, b)
	}
}

func TestBuilderSnapshotRestore(t *testing.T) {
	builder := NewBuilder()
	_ = builder.BeginQuiz("done")
	_ = builder.AddText("closed content")
	_ = builder.EndQuiz()
	_ = builder.BeginQuiz("open")
	_ = builder.AddText("pending content")

	quizzes, current := builder.Snapshot()
	if len(quizzes) != 1 || current == nil {
		t.Fatalf("snapshot mismatch: quizzes=%d current=%v", len(quizzes), current)
	}

	restored := RestoreBuilder(quizzes, current)
	if restored.QuizCount() != 1 {
		t.Fatalf("restored quiz count %d", restored.QuizCount())
	}
	if err := restored.AddText("more"); err != nil {
		t.Fatalf("restored builder must keep the open quiz: %v", err)
	}

	// Mutating the restored builder must not leak into the snapshot source.
	if len(current.Frames) != 1 {
		t.Fatalf("snapshot aliasing: %v", current.Frames)
	}
}
