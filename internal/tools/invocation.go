package tools

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidParams is returned when a parameter bag is missing required input.
var ErrInvalidParams = errors.New("invalid parameters")

// Default parameter values applied by the prompt builder.
const (
	DefaultLength       = "medium"
	DefaultCategory     = "general"
	DefaultDifficulty   = "medium"
	DefaultNumQuestions = 5
	DefaultNumCards     = 10

	MaxNumQuestions = 50
	MaxNumCards     = 100
)

// Params is the union of all tool parameter bags.
// Each tool reads only the fields it needs:
//   - summarize:     Text, Type, Length
//   - quiz:          Text, NumQuestions, Difficulty
//   - tutor:         Question, Context
//   - study-planner: Subjects, TimeAvailable, Goals
//   - flashcards:    Text, NumCards
type Params struct {
	Text          string   `json:"text,omitempty"`
	Type          string   `json:"type,omitempty"`
	Length        string   `json:"length,omitempty"`
	NumQuestions  int      `json:"numQuestions,omitempty"`
	Difficulty    string   `json:"difficulty,omitempty"`
	Question      string   `json:"question,omitempty"`
	Context       string   `json:"context,omitempty"`
	Subjects      []string `json:"subjects,omitempty"`
	TimeAvailable string   `json:"timeAvailable,omitempty"`
	Goals         string   `json:"goals,omitempty"`
	NumCards      int      `json:"numCards,omitempty"`
}

// Attachment is binary content forwarded to providers that accept it.
type Attachment struct {
	Data     []byte
	MIMEType string
}

// IsImage reports whether the attachment is an image.
func (a *Attachment) IsImage() bool {
	return a != nil && strings.HasPrefix(strings.ToLower(a.MIMEType), "image/")
}

// Base64 returns the standard base64 encoding of the data.
func (a *Attachment) Base64() string {
	return base64.StdEncoding.EncodeToString(a.Data)
}

// DataURI returns the attachment as a data: URI.
func (a *Attachment) DataURI() string {
	return fmt.Sprintf("data:%s;base64,%s", a.MIMEType, a.Base64())
}

// Invocation is one request for a tool, created per request.
type Invocation struct {
	Tool   Tool
	Params Params

	// Attachment is optional binary content (image, PDF, ...).
	Attachment *Attachment

	// ExtractedText is text previously extracted from the attachment.
	// When present it replaces the binary content: providers receive text only.
	ExtractedText string

	// UserID is empty for anonymous callers.
	UserID string
}

// ForwardedAttachment returns the attachment to send upstream, or nil when
// extracted text stands in for it.
func (inv *Invocation) ForwardedAttachment() *Attachment {
	if inv.Attachment == nil || len(inv.Attachment.Data) == 0 {
		return nil
	}
	if strings.TrimSpace(inv.ExtractedText) != "" {
		return nil
	}
	return inv.Attachment
}

// Content returns the source material for content-driven tools.
// Precedence: explicit text, then extracted document text, then empty.
func (inv *Invocation) Content() string {
	if strings.TrimSpace(inv.Params.Text) != "" {
		return inv.Params.Text
	}
	if strings.TrimSpace(inv.ExtractedText) != "" {
		return inv.ExtractedText
	}
	return ""
}

// Validate checks that the parameter bag carries what the tool requires.
func (inv *Invocation) Validate() error {
	if !inv.Tool.Valid() {
		return fmt.Errorf("%w: %q", ErrUnsupportedTool, inv.Tool)
	}

	p := inv.Params
	switch inv.Tool {
	case ToolSummarize:
		if inv.Content() == "" && inv.ForwardedAttachment() == nil {
			return fmt.Errorf("%w: summarize requires text or a file", ErrInvalidParams)
		}
	case ToolQuiz:
		if inv.Content() == "" {
			return fmt.Errorf("%w: quiz requires text", ErrInvalidParams)
		}
		if p.NumQuestions < 0 {
			return fmt.Errorf("%w: numQuestions must be positive", ErrInvalidParams)
		}
		if p.NumQuestions > MaxNumQuestions {
			return fmt.Errorf("%w: numQuestions must be at most %d", ErrInvalidParams, MaxNumQuestions)
		}
	case ToolTutor:
		if strings.TrimSpace(p.Question) == "" {
			return fmt.Errorf("%w: tutor requires a question", ErrInvalidParams)
		}
	case ToolStudyPlanner:
		if len(p.Subjects) == 0 {
			return fmt.Errorf("%w: study-planner requires subjects", ErrInvalidParams)
		}
	case ToolFlashcards:
		if inv.Content() == "" {
			return fmt.Errorf("%w: flashcards requires text", ErrInvalidParams)
		}
		if p.NumCards < 0 {
			return fmt.Errorf("%w: numCards must be positive", ErrInvalidParams)
		}
		if p.NumCards > MaxNumCards {
			return fmt.Errorf("%w: numCards must be at most %d", ErrInvalidParams, MaxNumCards)
		}
	}
	return nil
}
