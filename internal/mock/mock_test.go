package mock_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/compresr/edu-ai-gateway/internal/mock"
	"github.com/compresr/edu-ai-gateway/internal/tools"
)

func TestRespond_PerTool(t *testing.T) {
	for _, tool := range tools.All() {
		t.Run(string(tool), func(t *testing.T) {
			res, err := mock.Respond(&tools.Invocation{Tool: tool, Params: tools.Params{Question: "why?"}})
			require.NoError(t, err)

			assert.Equal(t, mock.ProviderName, res.Provider)
			assert.Equal(t, 0, res.TokensUsed)
			require.NotNil(t, res.Payload)
			assert.Equal(t, tool, res.Payload.Tool())
		})
	}
}

func TestRespond_CannedShapes(t *testing.T) {
	quiz, err := mock.Respond(&tools.Invocation{Tool: tools.ToolQuiz})
	require.NoError(t, err)
	q := quiz.Payload.(tools.QuizResult)
	require.Len(t, q.Questions, 2)
	for _, item := range q.Questions {
		assert.Len(t, item.Options, 4)
		assert.GreaterOrEqual(t, item.CorrectAnswer, 0)
		assert.Less(t, item.CorrectAnswer, 4)
	}

	cards, err := mock.Respond(&tools.Invocation{Tool: tools.ToolFlashcards})
	require.NoError(t, err)
	assert.Len(t, cards.Payload.(tools.FlashcardsResult).Flashcards, 2)

	plan, err := mock.Respond(&tools.Invocation{Tool: tools.ToolStudyPlanner, Params: tools.Params{Subjects: []string{"Math"}}})
	require.NoError(t, err)
	sp, ok := plan.Payload.(tools.StudyPlanResult).StudyPlan.(*tools.StudyPlan)
	require.True(t, ok)
	require.Len(t, sp.Weeks, 1)
	assert.Equal(t, 1, sp.Weeks[0].Week)
	assert.Equal(t, "Math", sp.Weeks[0].DailySchedule[0].Subject)
}

func TestRespond_TutorEchoesQuestion(t *testing.T) {
	res, err := mock.Respond(&tools.Invocation{Tool: tools.ToolTutor, Params: tools.Params{Question: "What is entropy?"}})
	require.NoError(t, err)
	assert.Contains(t, res.Payload.(tools.TutorResult).Answer, "What is entropy?")
}

func TestRespond_Deterministic(t *testing.T) {
	inv := &tools.Invocation{Tool: tools.ToolSummarize, Params: tools.Params{Type: "lecture", Length: "short"}}
	a, err := mock.Respond(inv)
	require.NoError(t, err)
	b, err := mock.Respond(inv)
	require.NoError(t, err)
	assert.Equal(t, a.Payload, b.Payload)
	assert.Contains(t, a.Payload.(tools.SummaryResult).Summary, "short")
}

func TestRespond_UnsupportedTool(t *testing.T) {
	_, err := mock.Respond(&tools.Invocation{Tool: "essay"})
	assert.ErrorIs(t, err, tools.ErrUnsupportedTool)
}
