package prompts_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/compresr/edu-ai-gateway/internal/prompts"
	"github.com/compresr/edu-ai-gateway/internal/tools"
)

func TestBuild_Quiz(t *testing.T) {
	prompt, err := prompts.Build(&tools.Invocation{
		Tool:   tools.ToolQuiz,
		Params: tools.Params{NumQuestions: 5, Difficulty: "medium", Text: "Photosynthesis converts light into chemical energy."},
	})
	require.NoError(t, err)

	assert.Contains(t, prompt, "exactly 5")
	assert.Contains(t, prompt, "medium")
	assert.Contains(t, prompt, "exactly 4")
	assert.Contains(t, prompt, "Photosynthesis")
	assert.True(t, strings.HasSuffix(prompt, "Return ONLY a valid JSON array with no extra text."))
}

func TestBuild_QuizDefaults(t *testing.T) {
	prompt, err := prompts.Build(&tools.Invocation{Tool: tools.ToolQuiz, Params: tools.Params{Text: "x"}})
	require.NoError(t, err)

	assert.Contains(t, prompt, "exactly 5")
	assert.Contains(t, prompt, "medium difficulty")
}

func TestBuild_Summarize(t *testing.T) {
	tests := []struct {
		name   string
		params tools.Params
		want   []string
	}{
		{
			name:   "defaults",
			params: tools.Params{Text: "Cells are the unit of life."},
			want:   []string{"medium summary", "general content", "Cells are the unit of life."},
		},
		{
			name:   "short science",
			params: tools.Params{Text: "t", Length: "short", Type: "science"},
			want:   []string{"short summary", "science content", "2-3 sentences"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prompt, err := prompts.Build(&tools.Invocation{Tool: tools.ToolSummarize, Params: tt.params})
			require.NoError(t, err)
			for _, w := range tt.want {
				assert.Contains(t, prompt, w)
			}
		})
	}
}

func TestBuild_ContentPrecedence(t *testing.T) {
	t.Run("explicit text wins", func(t *testing.T) {
		prompt, err := prompts.Build(&tools.Invocation{
			Tool:          tools.ToolSummarize,
			Params:        tools.Params{Text: "explicit"},
			ExtractedText: "extracted",
		})
		require.NoError(t, err)
		assert.Contains(t, prompt, "explicit")
		assert.NotContains(t, prompt, "extracted")
	})

	t.Run("extracted text used when text empty", func(t *testing.T) {
		prompt, err := prompts.Build(&tools.Invocation{
			Tool:          tools.ToolFlashcards,
			ExtractedText: "from the pdf",
		})
		require.NoError(t, err)
		assert.Contains(t, prompt, "from the pdf")
	})

	t.Run("empty when neither", func(t *testing.T) {
		prompt, err := prompts.Build(&tools.Invocation{Tool: tools.ToolSummarize})
		require.NoError(t, err)
		assert.True(t, strings.HasSuffix(prompt, "Content:\n"))
	})
}

func TestBuild_Tutor(t *testing.T) {
	prompt, err := prompts.Build(&tools.Invocation{
		Tool:   tools.ToolTutor,
		Params: tools.Params{Question: "Why is the sky blue?", Context: "Physics class"},
	})
	require.NoError(t, err)
	assert.Contains(t, prompt, "Why is the sky blue?")
	assert.Contains(t, prompt, "Physics class")
	assert.NotContains(t, prompt, "JSON")

	prompt, err = prompts.Build(&tools.Invocation{Tool: tools.ToolTutor, Params: tools.Params{Question: "q"}})
	require.NoError(t, err)
	assert.NotContains(t, prompt, "Context:")
}

func TestBuild_StudyPlanner(t *testing.T) {
	prompt, err := prompts.Build(&tools.Invocation{
		Tool: tools.ToolStudyPlanner,
		Params: tools.Params{
			Subjects:      []string{"Math", "Biology"},
			TimeAvailable: "10 hours",
			Goals:         "pass finals",
		},
	})
	require.NoError(t, err)
	for _, w := range []string{"Math, Biology", "10 hours", "pass finals", "\"weeks\"", "\"dailySchedule\"", "ONLY a valid JSON object"} {
		assert.Contains(t, prompt, w)
	}
}

func TestBuild_Flashcards(t *testing.T) {
	prompt, err := prompts.Build(&tools.Invocation{
		Tool:   tools.ToolFlashcards,
		Params: tools.Params{Text: "Mitochondria", NumCards: 8},
	})
	require.NoError(t, err)
	assert.Contains(t, prompt, "exactly 8")
	assert.Contains(t, prompt, "\"front\"")
	assert.Contains(t, prompt, "\"back\"")
	assert.True(t, strings.HasSuffix(prompt, "JSON array with no extra text."))
}

func TestBuild_Deterministic(t *testing.T) {
	inv := &tools.Invocation{Tool: tools.ToolQuiz, Params: tools.Params{Text: "abc", NumQuestions: 3}}
	a, _ := prompts.Build(inv)
	b, _ := prompts.Build(inv)
	assert.Equal(t, a, b)
}

func TestBuild_UnsupportedTool(t *testing.T) {
	_, err := prompts.Build(&tools.Invocation{Tool: "essay"})
	assert.ErrorIs(t, err, tools.ErrUnsupportedTool)
}
