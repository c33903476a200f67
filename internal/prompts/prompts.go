// Package prompts turns a tool invocation into a single natural-language prompt.
//
// DESIGN: Build is pure and deterministic. Prompts are provider-independent;
// structured tools end with an explicit "return ONLY JSON" instruction so the
// parser has a chance at the raw text.
package prompts

import (
	"fmt"
	"strings"

	"github.com/compresr/edu-ai-gateway/internal/tools"
)

// Build returns the prompt for an invocation.
// Returns tools.ErrUnsupportedTool for unknown tools.
func Build(inv *tools.Invocation) (string, error) {
	switch inv.Tool {
	case tools.ToolSummarize:
		return summarize(inv), nil
	case tools.ToolQuiz:
		return quiz(inv), nil
	case tools.ToolTutor:
		return tutor(inv), nil
	case tools.ToolStudyPlanner:
		return studyPlanner(inv), nil
	case tools.ToolFlashcards:
		return flashcards(inv), nil
	}
	return "", fmt.Errorf("%w: %q", tools.ErrUnsupportedTool, inv.Tool)
}

func summarize(inv *tools.Invocation) string {
	length := orDefault(inv.Params.Length, tools.DefaultLength)
	category := orDefault(inv.Params.Type, tools.DefaultCategory)

	var b strings.Builder
	fmt.Fprintf(&b, "Summarize the following %s content.\n", category)
	fmt.Fprintf(&b, "Write a %s summary (%s).\n", length, lengthGuide(length))
	b.WriteString("Focus on the key ideas a student needs to remember.\n\n")
	b.WriteString("Content:\n")
	b.WriteString(inv.Content())
	return b.String()
}

func lengthGuide(length string) string {
	switch length {
	case "short":
		return "2-3 sentences"
	case "long":
		return "several detailed paragraphs"
	default:
		return "one or two paragraphs"
	}
}

func quiz(inv *tools.Invocation) string {
	n := orDefaultInt(inv.Params.NumQuestions, tools.DefaultNumQuestions)
	difficulty := orDefault(inv.Params.Difficulty, tools.DefaultDifficulty)

	var b strings.Builder
	fmt.Fprintf(&b, "Generate exactly %d multiple-choice questions at %s difficulty based on the content below.\n", n, difficulty)
	b.WriteString("Each item must have a \"question\" string, an \"options\" array of exactly 4 strings, ")
	b.WriteString("and a \"correctAnswer\" field holding the zero-based index of the correct option.\n")
	b.WriteString("Format: [{\"question\": \"...\", \"options\": [\"...\", \"...\", \"...\", \"...\"], \"correctAnswer\": 0}]\n\n")
	b.WriteString("Content:\n")
	b.WriteString(inv.Content())
	b.WriteString("\n\nReturn ONLY a valid JSON array with no extra text.")
	return b.String()
}

func tutor(inv *tools.Invocation) string {
	var b strings.Builder
	b.WriteString("You are a patient, encouraging tutor. Explain clearly and step by step, ")
	b.WriteString("using examples where they help.\n\n")
	if ctx := strings.TrimSpace(inv.Params.Context); ctx != "" {
		b.WriteString("Context:\n")
		b.WriteString(ctx)
		b.WriteString("\n\n")
	}
	b.WriteString("Question: ")
	b.WriteString(inv.Params.Question)
	return b.String()
}

func studyPlanner(inv *tools.Invocation) string {
	p := inv.Params

	var b strings.Builder
	b.WriteString("Create a personalized study plan.\n")
	fmt.Fprintf(&b, "Subjects: %s\n", strings.Join(p.Subjects, ", "))
	fmt.Fprintf(&b, "Time available per week: %s\n", orDefault(p.TimeAvailable, "not specified"))
	if goals := strings.TrimSpace(p.Goals); goals != "" {
		fmt.Fprintf(&b, "Goals: %s\n", goals)
	}
	b.WriteString("\nReturn a JSON object with a \"weeks\" array. Each week has a \"week\" number, ")
	b.WriteString("a \"focus\" string, and a \"dailySchedule\" array of entries with ")
	b.WriteString("\"day\", \"subject\", \"duration\", and \"topics\" (array of strings).\n")
	b.WriteString("Format: {\"weeks\": [{\"week\": 1, \"focus\": \"...\", \"dailySchedule\": [{\"day\": \"Monday\", \"subject\": \"...\", \"duration\": \"1 hour\", \"topics\": [\"...\"]}]}]}\n\n")
	b.WriteString("Return ONLY a valid JSON object with no extra text.")
	return b.String()
}

func flashcards(inv *tools.Invocation) string {
	n := orDefaultInt(inv.Params.NumCards, tools.DefaultNumCards)

	var b strings.Builder
	fmt.Fprintf(&b, "Create exactly %d flashcards from the content below.\n", n)
	b.WriteString("Each card must have a \"front\" string (term or question) and a \"back\" string (definition or answer).\n")
	b.WriteString("Format: [{\"front\": \"...\", \"back\": \"...\"}]\n\n")
	b.WriteString("Content:\n")
	b.WriteString(inv.Content())
	b.WriteString("\n\nReturn ONLY a valid JSON array with no extra text.")
	return b.String()
}

func orDefault(v, def string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return def
}

func orDefaultInt(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}
