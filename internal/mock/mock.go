// Package mock provides the offline responder used when every provider failed.
//
// DESIGN: Payloads are fixed per tool and derived only from the invocation.
// Nothing here touches the network; tokens are always zero.
package mock

import (
	"fmt"
	"strings"
	"time"

	"github.com/compresr/edu-ai-gateway/internal/tools"
)

// ProviderName is the sentinel provider name carried by mock results.
const ProviderName = "mock"

// Respond returns a canned result for the invocation's tool.
func Respond(inv *tools.Invocation) (*tools.Result, error) {
	start := time.Now()

	payload, err := payloadFor(inv)
	if err != nil {
		return nil, err
	}

	return &tools.Result{
		Payload:        payload,
		TokensUsed:     0,
		ProcessingTime: time.Since(start),
		Provider:       ProviderName,
	}, nil
}

func payloadFor(inv *tools.Invocation) (tools.Payload, error) {
	switch inv.Tool {
	case tools.ToolSummarize:
		return summary(inv), nil
	case tools.ToolQuiz:
		return quiz(), nil
	case tools.ToolTutor:
		return tutor(inv), nil
	case tools.ToolStudyPlanner:
		return studyPlan(inv), nil
	case tools.ToolFlashcards:
		return flashcards(), nil
	default:
		return nil, fmt.Errorf("%w: %q", tools.ErrUnsupportedTool, inv.Tool)
	}
}

func summary(inv *tools.Invocation) tools.SummaryResult {
	kind := inv.Params.Type
	if kind == "" {
		kind = tools.DefaultCategory
	}
	length := inv.Params.Length
	if length == "" {
		length = tools.DefaultLength
	}
	return tools.SummaryResult{
		Summary: fmt.Sprintf("This is a %s summary of the provided %s content. "+
			"AI services are currently unavailable, so this placeholder was generated offline.", length, kind),
	}
}

func quiz() tools.QuizResult {
	return tools.QuizResult{
		Questions: []tools.Question{
			{
				Question:      "What is the primary purpose of spaced repetition?",
				Options:       []string{"Speed reading", "Long-term retention", "Note taking", "Group study"},
				CorrectAnswer: 1,
				Explanation:   "Reviewing material at increasing intervals strengthens long-term memory.",
			},
			{
				Question:      "Which technique involves explaining a concept in simple terms?",
				Options:       []string{"Feynman technique", "Pomodoro", "Mind mapping", "Highlighting"},
				CorrectAnswer: 0,
				Explanation:   "The Feynman technique exposes gaps by teaching the idea simply.",
			},
		},
	}
}

func tutor(inv *tools.Invocation) tools.TutorResult {
	return tools.TutorResult{
		Answer: fmt.Sprintf("You asked: %q. AI tutoring is currently unavailable. "+
			"Try breaking the question into smaller parts and reviewing your course notes.", inv.Params.Question),
	}
}

func studyPlan(inv *tools.Invocation) tools.StudyPlanResult {
	subjects := inv.Params.Subjects
	if len(subjects) == 0 {
		subjects = []string{tools.DefaultCategory}
	}

	days := []string{"Monday", "Wednesday", "Friday"}
	schedule := make([]tools.Session, 0, len(days))
	for i, day := range days {
		subject := subjects[i%len(subjects)]
		schedule = append(schedule, tools.Session{
			Day:      day,
			Subject:  subject,
			Duration: "1 hour",
			Topics:   []string{"Review fundamentals of " + subject},
		})
	}

	return tools.StudyPlanResult{
		StudyPlan: &tools.StudyPlan{
			Weeks: []tools.Week{{
				Week:          1,
				Focus:         "Foundations: " + strings.Join(subjects, ", "),
				DailySchedule: schedule,
			}},
		},
	}
}

func flashcards() tools.FlashcardsResult {
	return tools.FlashcardsResult{
		Flashcards: []tools.Flashcard{
			{Front: "What is active recall?", Back: "Retrieving information from memory without looking at the source."},
			{Front: "What is interleaving?", Back: "Mixing different topics or problem types within one study session."},
		},
	}
}
