package tools

import "time"

// Payload is the tool-specific structured output.
type Payload interface {
	Tool() Tool
}

// Result is the outcome of one successful provider (or mock) call.
type Result struct {
	Payload        Payload
	TokensUsed     int
	ProcessingTime time.Duration
	Provider       string

	// Degraded is set when the parser fell back to an empty or raw result
	// because the model output was not valid structured data.
	Degraded bool
}

// ProcessingMs returns the processing time in milliseconds.
func (r *Result) ProcessingMs() int64 {
	return r.ProcessingTime.Milliseconds()
}

// =============================================================================
// PAYLOADS
// =============================================================================

// SummaryResult is the summarize payload.
type SummaryResult struct {
	Summary string `json:"summary"`
}

func (SummaryResult) Tool() Tool { return ToolSummarize }

// TutorResult is the tutor payload.
type TutorResult struct {
	Answer string `json:"answer"`
}

func (TutorResult) Tool() Tool { return ToolTutor }

// Question is one multiple-choice quiz item.
type Question struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correctAnswer"`
	Explanation   string   `json:"explanation,omitempty"`
}

// QuizResult is the quiz payload.
type QuizResult struct {
	Questions []Question `json:"questions"`
}

func (QuizResult) Tool() Tool { return ToolQuiz }

// Flashcard is one front/back card.
type Flashcard struct {
	Front string `json:"front"`
	Back  string `json:"back"`
}

// FlashcardsResult is the flashcards payload.
type FlashcardsResult struct {
	Flashcards []Flashcard `json:"flashcards"`
}

func (FlashcardsResult) Tool() Tool { return ToolFlashcards }

// Session is one entry of a week's daily schedule.
type Session struct {
	Day      string   `json:"day"`
	Subject  string   `json:"subject"`
	Duration string   `json:"duration"`
	Topics   []string `json:"topics"`
}

// Week is one week of a study plan.
type Week struct {
	Week          int       `json:"week"`
	Focus         string    `json:"focus"`
	DailySchedule []Session `json:"dailySchedule"`
}

// StudyPlan is the structured plan returned by the planner.
type StudyPlan struct {
	Weeks []Week `json:"weeks"`
}

// StudyPlanResult is the study-planner payload. StudyPlan holds either a
// *StudyPlan or, when the model output could not be parsed, the raw text.
type StudyPlanResult struct {
	StudyPlan any `json:"studyPlan"`
}

func (StudyPlanResult) Tool() Tool { return ToolStudyPlanner }
