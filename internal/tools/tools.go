// Package tools defines the logical AI capabilities offered to end users.
//
// DESIGN: A Tool is one fixed identifier (summarize, quiz, tutor,
// study-planner, flashcards). Each tool has:
//   - a parameter bag (Params) consumed by the prompt builder
//   - a payload shape (SummaryResult, QuizResult, ...) produced by the parser
//
// FILES:
//   - tools.go:      Tool identifiers and lookup
//   - invocation.go: Invocation, Params, Attachment, validation
//   - result.go:     Result and per-tool payloads
package tools

import (
	"errors"
	"fmt"
	"strings"
)

// Tool identifies one AI capability.
type Tool string

const (
	ToolSummarize    Tool = "summarize"
	ToolQuiz         Tool = "quiz"
	ToolTutor        Tool = "tutor"
	ToolStudyPlanner Tool = "study-planner"
	ToolFlashcards   Tool = "flashcards"
)

// ErrUnsupportedTool is returned for any identifier outside the fixed set.
var ErrUnsupportedTool = errors.New("unsupported tool")

// All returns every supported tool in a stable order.
func All() []Tool {
	return []Tool{ToolSummarize, ToolQuiz, ToolTutor, ToolStudyPlanner, ToolFlashcards}
}

// ParseTool resolves a tool identifier. Matching is case-insensitive and
// accepts "study_planner" / "studyplanner" for the planner.
func ParseTool(s string) (Tool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "summarize", "summary":
		return ToolSummarize, nil
	case "quiz":
		return ToolQuiz, nil
	case "tutor":
		return ToolTutor, nil
	case "study-planner", "study_planner", "studyplanner":
		return ToolStudyPlanner, nil
	case "flashcards":
		return ToolFlashcards, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedTool, s)
}

// Valid reports whether t is one of the supported tools.
func (t Tool) Valid() bool {
	for _, known := range All() {
		if t == known {
			return true
		}
	}
	return false
}

// Structured reports whether the tool expects JSON output from the model.
func (t Tool) Structured() bool {
	return t == ToolQuiz || t == ToolStudyPlanner || t == ToolFlashcards
}

// String returns the identifier.
func (t Tool) String() string { return string(t) }
