package tools_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/compresr/edu-ai-gateway/internal/tools"
)

func TestValidate_CountBounds(t *testing.T) {
	tests := []struct {
		name    string
		inv     tools.Invocation
		wantErr bool
	}{
		{name: "quiz default count", inv: tools.Invocation{Tool: tools.ToolQuiz, Params: tools.Params{Text: "x"}}},
		{name: "quiz at max", inv: tools.Invocation{Tool: tools.ToolQuiz, Params: tools.Params{Text: "x", NumQuestions: tools.MaxNumQuestions}}},
		{name: "quiz over max", inv: tools.Invocation{Tool: tools.ToolQuiz, Params: tools.Params{Text: "x", NumQuestions: tools.MaxNumQuestions + 1}}, wantErr: true},
		{name: "quiz negative", inv: tools.Invocation{Tool: tools.ToolQuiz, Params: tools.Params{Text: "x", NumQuestions: -1}}, wantErr: true},
		{name: "cards at max", inv: tools.Invocation{Tool: tools.ToolFlashcards, Params: tools.Params{Text: "x", NumCards: tools.MaxNumCards}}},
		{name: "cards over max", inv: tools.Invocation{Tool: tools.ToolFlashcards, Params: tools.Params{Text: "x", NumCards: 1000000}}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.inv.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, tools.ErrInvalidParams)
				return
			}
			assert.NoError(t, err)
		})
	}
}
