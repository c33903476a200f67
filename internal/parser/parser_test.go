package parser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/compresr/edu-ai-gateway/internal/parser"
	"github.com/compresr/edu-ai-gateway/internal/tools"
)

// =============================================================================
// FREE-TEXT TOOLS
// =============================================================================

func TestParse_SummarizeTrims(t *testing.T) {
	got := parser.Parse(tools.ToolSummarize, "  hello world  ")
	assert.Equal(t, tools.SummaryResult{Summary: "hello world"}, got.Payload)
	assert.False(t, got.Degraded)
}

func TestParse_SummarizeIgnoresJSON(t *testing.T) {
	got := parser.Parse(tools.ToolSummarize, "```json\n{\"a\":1}\n```")
	assert.Equal(t, tools.SummaryResult{Summary: "```json\n{\"a\":1}\n```"}, got.Payload)
}

func TestParse_Tutor(t *testing.T) {
	got := parser.Parse(tools.ToolTutor, "\nBecause of Rayleigh scattering.\n")
	assert.Equal(t, tools.TutorResult{Answer: "Because of Rayleigh scattering."}, got.Payload)
}

// =============================================================================
// CODE FENCES
// =============================================================================

func TestStripCodeFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "json fence", in: "```json\n[1,2]\n```", want: "[1,2]"},
		{name: "bare fence", in: "```\n{\"a\":1}\n```", want: "{\"a\":1}"},
		{name: "single line", in: "```json [1]```", want: "[1]"},
		{name: "no fence", in: "  [1]  ", want: "[1]"},
		{name: "opening only", in: "```json\n[1]", want: "[1]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parser.StripCodeFences(tt.in))
		})
	}
}

// =============================================================================
// QUIZ
// =============================================================================

func TestParse_QuizFenced(t *testing.T) {
	raw := "```json\n[{\"question\":\"Q\",\"options\":[\"a\",\"b\",\"c\",\"d\"],\"correctAnswer\":1}]\n```"

	got := parser.Parse(tools.ToolQuiz, raw)

	require.False(t, got.Degraded)
	quiz, ok := got.Payload.(tools.QuizResult)
	require.True(t, ok)
	require.Len(t, quiz.Questions, 1)
	assert.Equal(t, tools.Question{
		Question:      "Q",
		Options:       []string{"a", "b", "c", "d"},
		CorrectAnswer: 1,
	}, quiz.Questions[0])
}

func TestParse_QuizNotJSON(t *testing.T) {
	got := parser.Parse(tools.ToolQuiz, "not json at all")

	assert.Equal(t, tools.QuizResult{Questions: []tools.Question{}}, got.Payload)
	assert.True(t, got.Degraded)
}

func TestParse_QuizTolerance(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		count   int
		correct int
	}{
		{
			name:    "prose around array",
			raw:     "Here is your quiz:\n[{\"question\":\"Q\",\"options\":[\"a\",\"b\",\"c\",\"d\"],\"correctAnswer\":2}]\nGood luck!",
			count:   1,
			correct: 2,
		},
		{
			name:    "string index",
			raw:     `[{"question":"Q","options":["a","b","c","d"],"correctAnswer":"3"}]`,
			count:   1,
			correct: 3,
		},
		{
			name:  "wrapped in object",
			raw:   `{"questions":[{"question":"Q1","options":["a","b","c","d"],"correctAnswer":0},{"question":"Q2","options":["a","b","c","d"],"correctAnswer":0}]}`,
			count: 2,
		},
		{
			name:  "skips non-object items",
			raw:   `[1, {"question":"Q","options":[],"correctAnswer":0}, "x"]`,
			count: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parser.Parse(tools.ToolQuiz, tt.raw)
			quiz := got.Payload.(tools.QuizResult)
			require.Len(t, quiz.Questions, tt.count)
			assert.Equal(t, tt.correct, quiz.Questions[0].CorrectAnswer)
			assert.False(t, got.Degraded)
		})
	}
}

func TestParse_QuizEmptyArrayIsNotDegraded(t *testing.T) {
	got := parser.Parse(tools.ToolQuiz, "[]")
	assert.Equal(t, tools.QuizResult{Questions: []tools.Question{}}, got.Payload)
	assert.False(t, got.Degraded)
}

func TestParse_NonObjectItemsAreDegraded(t *testing.T) {
	quiz := parser.Parse(tools.ToolQuiz, "[1, 2]")
	assert.Equal(t, tools.QuizResult{Questions: []tools.Question{}}, quiz.Payload)
	assert.True(t, quiz.Degraded)

	cards := parser.Parse(tools.ToolFlashcards, `{"flashcards":["ATP","DNA"]}`)
	assert.Equal(t, tools.FlashcardsResult{Flashcards: []tools.Flashcard{}}, cards.Payload)
	assert.True(t, cards.Degraded)

	mixed := parser.Parse(tools.ToolFlashcards, `[1, {"front":"ATP","back":"Energy"}]`)
	assert.False(t, mixed.Degraded, "one decoded card is a usable result")
	assert.Len(t, mixed.Payload.(tools.FlashcardsResult).Flashcards, 1)
}

func TestParse_QuizTruncatedJSON(t *testing.T) {
	got := parser.Parse(tools.ToolQuiz, `[{"question":"Q","options":["a","b"`)
	assert.Equal(t, tools.QuizResult{Questions: []tools.Question{}}, got.Payload)
	assert.True(t, got.Degraded)
}

// =============================================================================
// FLASHCARDS
// =============================================================================

func TestParse_Flashcards(t *testing.T) {
	got := parser.Parse(tools.ToolFlashcards, "```json\n[{\"front\":\"ATP\",\"back\":\"Energy currency\"},{\"front\":\"DNA\",\"back\":\"Genetic code\"}]\n```")

	require.False(t, got.Degraded)
	cards := got.Payload.(tools.FlashcardsResult)
	assert.Equal(t, []tools.Flashcard{
		{Front: "ATP", Back: "Energy currency"},
		{Front: "DNA", Back: "Genetic code"},
	}, cards.Flashcards)
}

func TestParse_FlashcardsMalformed(t *testing.T) {
	got := parser.Parse(tools.ToolFlashcards, "Sorry, I can't help with that.")
	assert.Equal(t, tools.FlashcardsResult{Flashcards: []tools.Flashcard{}}, got.Payload)
	assert.True(t, got.Degraded)
}

// =============================================================================
// STUDY PLANNER
// =============================================================================

func TestParse_StudyPlan(t *testing.T) {
	raw := "```json\n" + `{"weeks":[{"week":1,"focus":"Foundations","dailySchedule":[{"day":"Monday","subject":"Math","duration":60,"topics":["Algebra","Functions"]}]}]}` + "\n```"

	got := parser.Parse(tools.ToolStudyPlanner, raw)

	require.False(t, got.Degraded)
	result := got.Payload.(tools.StudyPlanResult)
	plan, ok := result.StudyPlan.(*tools.StudyPlan)
	require.True(t, ok)
	require.Len(t, plan.Weeks, 1)
	assert.Equal(t, 1, plan.Weeks[0].Week)
	assert.Equal(t, "Foundations", plan.Weeks[0].Focus)
	require.Len(t, plan.Weeks[0].DailySchedule, 1)
	session := plan.Weeks[0].DailySchedule[0]
	assert.Equal(t, "Monday", session.Day)
	assert.Equal(t, "60", session.Duration, "numeric duration is coerced to a string")
	assert.Equal(t, []string{"Algebra", "Functions"}, session.Topics)
}

func TestParse_StudyPlanMissingWeekNumber(t *testing.T) {
	got := parser.Parse(tools.ToolStudyPlanner, `{"weeks":[{"focus":"a"},{"focus":"b"}]}`)
	plan := got.Payload.(tools.StudyPlanResult).StudyPlan.(*tools.StudyPlan)
	assert.Equal(t, 1, plan.Weeks[0].Week)
	assert.Equal(t, 2, plan.Weeks[1].Week)
}

func TestParse_StudyPlanDegradesToRawText(t *testing.T) {
	got := parser.Parse(tools.ToolStudyPlanner, "  Week 1: study hard.  ")

	assert.True(t, got.Degraded)
	assert.Equal(t, tools.StudyPlanResult{StudyPlan: "Week 1: study hard."}, got.Payload)
}

func TestParse_StudyPlanWithoutWeeks(t *testing.T) {
	got := parser.Parse(tools.ToolStudyPlanner, `{"plan":"none"}`)
	assert.True(t, got.Degraded)
	assert.Equal(t, tools.StudyPlanResult{StudyPlan: `{"plan":"none"}`}, got.Payload)
}
