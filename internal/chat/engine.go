// Package chat runs the scripted design conversation that turns five
// answers into a synthesized image prompt and a palette.
package chat

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/jumanahhhh/moodboard-gen/internal/llm"
	"github.com/jumanahhhh/moodboard-gen/internal/palette"
	"github.com/jumanahhhh/moodboard-gen/internal/prompts"
)

// questions is the fixed conversation script. The first entry opens
// every session.
var questions = []string{
	"Welcome to Moodscape! I'll help you create a beautiful mood board. What kind of mood or atmosphere are you looking to create?",
	"Are there any specific colors or color schemes you're drawn to?",
	"What kind of textures or materials inspire you?",
	"Is there a particular style or aesthetic you're interested in?",
	"Are there any specific elements or objects you'd like to include?",
}

const completionMessage = "Perfect! Based on your vision, I've crafted a unique mood board concept. I've generated a color palette and font suggestions that capture the essence of your ideas."

const errorMessage = "I apologize, but I encountered an error while processing your response. This might be due to the API being temporarily unavailable. Please try again in a moment."

var (
	// ErrEmptyAnswer is returned when a submitted answer is blank after
	// trimming. The session state is unchanged.
	ErrEmptyAnswer = errors.New("answer must not be empty")

	// ErrBusy is returned when a submission arrives while a previous
	// one is still being processed.
	ErrBusy = errors.New("a previous answer is still being processed")
)

// Message is one turn in the conversation. The completion message
// carries the derived palette.
type Message struct {
	Role    string           `json:"role"`
	Content string           `json:"content"`
	Palette *palette.Palette `json:"palette,omitempty"`
}

// Result reports the outcome of an answer submission.
type Result struct {
	Messages  []Message        `json:"messages"`
	Completed bool             `json:"completed"`
	Prompt    string           `json:"prompt,omitempty"`
	Palette   *palette.Palette `json:"palette,omitempty"`
}

// Engine walks one session through the question script, accumulating
// extracted keywords until the final prompt is synthesized.
type Engine struct {
	llm      llm.Client
	palettes palette.Service
	logger   *zap.Logger

	mu        sync.Mutex
	busy      bool
	messages  []Message
	keywords  []string
	index     int
	completed bool
	prompt    string
	palette   palette.Palette
}

// NewEngine starts a session with the opening question already posted.
func NewEngine(client llm.Client, palettes palette.Service, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		llm:      client,
		palettes: palettes,
		logger:   logger,
		messages: []Message{{Role: "assistant", Content: questions[0]}},
	}
}

// Messages returns a copy of the transcript so far.
func (e *Engine) Messages() []Message {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Message, len(e.messages))
	copy(out, e.messages)
	return out
}

// Completed reports whether the script has finished, with the final
// prompt and palette when it has.
func (e *Engine) Completed() (bool, string, palette.Palette) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.completed, e.prompt, e.palette
}

// SubmitAnswer records an answer, extracts its keywords, and either
// advances to the next question or, after the final answer, synthesizes
// the image prompt and derives the palette. Collaborator failures post
// an apology message and leave the question index and keyword set
// untouched so the answer can be resubmitted.
func (e *Engine) SubmitAnswer(ctx context.Context, text string) (Result, error) {
	if strings.TrimSpace(text) == "" {
		return Result{}, ErrEmptyAnswer
	}

	e.mu.Lock()
	if e.busy {
		e.mu.Unlock()
		return Result{}, ErrBusy
	}
	if e.completed {
		e.mu.Unlock()
		return e.result(), nil
	}
	e.busy = true
	e.messages = append(e.messages, Message{Role: "user", Content: text})
	keywords := make([]string, len(e.keywords))
	copy(keywords, e.keywords)
	index := e.index
	e.mu.Unlock()

	outcome, err := e.process(ctx, text, keywords, index)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.busy = false
	if err != nil {
		e.logger.Warn("answer processing failed", zap.Int("question", index), zap.Error(err))
		e.messages = append(e.messages, Message{Role: "assistant", Content: errorMessage})
		return e.result(), nil
	}
	e.keywords = outcome.keywords
	if outcome.done {
		e.completed = true
		e.prompt = outcome.prompt
		e.palette = outcome.palette
		p := outcome.palette
		e.messages = append(e.messages, Message{Role: "assistant", Content: completionMessage, Palette: &p})
	} else {
		e.index = index + 1
		e.messages = append(e.messages, Message{Role: "assistant", Content: questions[index+1]})
	}
	return e.result(), nil
}

type processOutcome struct {
	keywords []string
	done     bool
	prompt   string
	palette  palette.Palette
}

func (e *Engine) process(ctx context.Context, text string, keywords []string, index int) (processOutcome, error) {
	raw, err := llm.Complete(ctx, e.llm, prompts.KeywordExtraction(text))
	if err != nil {
		return processOutcome{}, err
	}
	keywords = append(keywords, splitKeywords(raw)...)

	if index < len(questions)-1 {
		return processOutcome{keywords: keywords}, nil
	}

	synthesized, err := llm.Complete(ctx, e.llm, prompts.PromptSynthesis(keywords))
	if err != nil {
		return processOutcome{}, err
	}
	prompt := prompts.Truncate(synthesized)

	derived, err := e.palettes.Derive(ctx, strings.Join(keywords, " "))
	if err != nil {
		return processOutcome{}, err
	}
	return processOutcome{keywords: keywords, done: true, prompt: prompt, palette: derived}, nil
}

// result assumes e.mu is held.
func (e *Engine) result() Result {
	out := Result{
		Messages:  make([]Message, len(e.messages)),
		Completed: e.completed,
		Prompt:    e.prompt,
	}
	copy(out.Messages, e.messages)
	if e.completed {
		p := e.palette
		out.Palette = &p
	}
	return out
}

// splitKeywords parses a comma-separated keyword list. Duplicates are
// kept so repeated themes weigh into the synthesized prompt.
func splitKeywords(raw string) []string {
	parts := strings.Split(raw, ",")
	keywords := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			keywords = append(keywords, trimmed)
		}
	}
	return keywords
}
