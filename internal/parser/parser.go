// Package parser turns raw model text into tool payloads.
//
// DESIGN: Parse never fails. Malformed structured output is absorbed here so
// the dispatcher does not treat a successful-but-sloppy provider call as a
// provider failure:
//   - summarize, tutor:   trimmed text wrapped in the payload field
//   - quiz, flashcards:   JSON array, degrading to an empty array
//   - study-planner:      JSON object, degrading to the raw trimmed text
//
// Fields are read with gjson so numbers-as-strings ("1") and strings-as-numbers
// are coerced instead of rejecting the whole document.
package parser

import (
	"strings"

	"github.com/tidwall/gjson"

	"github.com/compresr/edu-ai-gateway/internal/tools"
)

// Parsed is the parser output.
type Parsed struct {
	Payload tools.Payload
	// Degraded is true when the structured output could not be parsed.
	Degraded bool
}

// Parse converts raw model text into the tool's payload.
func Parse(tool tools.Tool, raw string) Parsed {
	switch tool {
	case tools.ToolSummarize:
		return Parsed{Payload: tools.SummaryResult{Summary: strings.TrimSpace(raw)}}
	case tools.ToolTutor:
		return Parsed{Payload: tools.TutorResult{Answer: strings.TrimSpace(raw)}}
	case tools.ToolQuiz:
		return parseQuiz(raw)
	case tools.ToolFlashcards:
		return parseFlashcards(raw)
	case tools.ToolStudyPlanner:
		return parseStudyPlan(raw)
	}
	return Parsed{Payload: tools.SummaryResult{Summary: strings.TrimSpace(raw)}, Degraded: true}
}

// StripCodeFences removes a leading ```json / ``` marker and a trailing ```.
func StripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		// Drop the language tag on the opening fence line, if any.
		if nl := strings.IndexByte(s, '\n'); nl >= 0 && !strings.ContainsAny(s[:nl], "[{") {
			s = s[nl+1:]
		} else {
			s = strings.TrimPrefix(s, "json")
		}
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// locateJSON returns the JSON document in raw, tolerating prose around it.
// open is '[' or '{'.
func locateJSON(raw string, open, close byte) (gjson.Result, bool) {
	s := StripCodeFences(raw)
	if gjson.Valid(s) {
		return gjson.Parse(s), true
	}

	start := strings.IndexByte(s, open)
	end := strings.LastIndexByte(s, close)
	if start < 0 || end <= start {
		return gjson.Result{}, false
	}
	s = s[start : end+1]
	if !gjson.Valid(s) {
		return gjson.Result{}, false
	}
	return gjson.Parse(s), true
}

// items returns the array of items, accepting either a bare array or an
// object wrapping it under one of the given keys.
func items(doc gjson.Result, wrappers ...string) ([]gjson.Result, bool) {
	if doc.IsArray() {
		return doc.Array(), true
	}
	if doc.IsObject() {
		for _, key := range wrappers {
			if v := doc.Get(key); v.IsArray() {
				return v.Array(), true
			}
		}
	}
	return nil, false
}

func parseQuiz(raw string) Parsed {
	empty := Parsed{Payload: tools.QuizResult{Questions: []tools.Question{}}, Degraded: true}

	doc, ok := locateJSON(raw, '[', ']')
	if !ok {
		if doc, ok = locateJSON(raw, '{', '}'); !ok {
			return empty
		}
	}
	list, ok := items(doc, "questions", "quiz")
	if !ok {
		return empty
	}

	questions := make([]tools.Question, 0, len(list))
	for _, item := range list {
		if !item.IsObject() {
			continue
		}
		q := tools.Question{
			Question:      item.Get("question").String(),
			Options:       stringArray(item.Get("options")),
			CorrectAnswer: int(item.Get("correctAnswer").Int()),
			Explanation:   item.Get("explanation").String(),
		}
		if q.Options == nil {
			q.Options = []string{}
		}
		questions = append(questions, q)
	}
	return Parsed{Payload: tools.QuizResult{Questions: questions}, Degraded: len(list) > 0 && len(questions) == 0}
}

func parseFlashcards(raw string) Parsed {
	empty := Parsed{Payload: tools.FlashcardsResult{Flashcards: []tools.Flashcard{}}, Degraded: true}

	doc, ok := locateJSON(raw, '[', ']')
	if !ok {
		if doc, ok = locateJSON(raw, '{', '}'); !ok {
			return empty
		}
	}
	list, ok := items(doc, "flashcards", "cards")
	if !ok {
		return empty
	}

	cards := make([]tools.Flashcard, 0, len(list))
	for _, item := range list {
		if !item.IsObject() {
			continue
		}
		cards = append(cards, tools.Flashcard{
			Front: item.Get("front").String(),
			Back:  item.Get("back").String(),
		})
	}
	return Parsed{Payload: tools.FlashcardsResult{Flashcards: cards}, Degraded: len(list) > 0 && len(cards) == 0}
}

func parseStudyPlan(raw string) Parsed {
	trimmed := strings.TrimSpace(raw)
	degraded := Parsed{Payload: tools.StudyPlanResult{StudyPlan: trimmed}, Degraded: true}

	doc, ok := locateJSON(raw, '{', '}')
	if !ok || !doc.IsObject() {
		return degraded
	}
	weeks := doc.Get("weeks")
	if !weeks.IsArray() {
		if nested := doc.Get("studyPlan.weeks"); nested.IsArray() {
			weeks = nested
		} else {
			return degraded
		}
	}

	plan := &tools.StudyPlan{Weeks: []tools.Week{}}
	for i, w := range weeks.Array() {
		week := tools.Week{
			Week:          int(w.Get("week").Int()),
			Focus:         w.Get("focus").String(),
			DailySchedule: []tools.Session{},
		}
		if week.Week == 0 {
			week.Week = i + 1
		}
		w.Get("dailySchedule").ForEach(func(_, s gjson.Result) bool {
			week.DailySchedule = append(week.DailySchedule, tools.Session{
				Day:      s.Get("day").String(),
				Subject:  s.Get("subject").String(),
				Duration: s.Get("duration").String(),
				Topics:   stringArray(s.Get("topics")),
			})
			return true
		})
		plan.Weeks = append(plan.Weeks, week)
	}
	return Parsed{Payload: tools.StudyPlanResult{StudyPlan: plan}}
}

func stringArray(v gjson.Result) []string {
	if !v.IsArray() {
		return nil
	}
	arr := v.Array()
	out := make([]string, 0, len(arr))
	for _, el := range arr {
		out = append(out, el.String())
	}
	return out
}
