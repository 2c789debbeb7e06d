package build

import "fmt"

// Level is a nesting depth in the archive under construction. Levels form a
// strict total order (root < quiz < option); the integer rank alone decides
// legal ancestry.
type Level int

const (
	LevelRoot Level = iota
	LevelQuiz
	LevelOption
)

func (l Level) String() string {
	switch l {
	case LevelRoot:
		return "root"
	case LevelQuiz:
		return "quiz"
	case LevelOption:
		return "option"
	}
	return fmt.Sprintf("level(%d)", int(l))
}
