// Package assistant answers client questions and summarizes articles with Gemini.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

const DefaultModel = "gemini-2.5-flash"

// MaxMessage caps inbound chat messages in runes.
const MaxMessage = 4000

var (
	ErrNotConfigured = errors.New("assistant: api key not configured")
	ErrEmptyMessage  = errors.New("assistant: empty message")
	ErrEmptyReply    = errors.New("assistant: model returned no text")
)

const chatInstruction = `You are the GEM Enterprise client assistant. GEM Enterprise offers
cybersecurity, financial and asset recovery, and real estate services. Answer briefly and
point clients to the relevant bot command (/book, /submitcase, /kyc, /track_wallet,
/scan_network, /property_list) when one fits. Never ask for passwords or private keys.`

const summaryInstruction = `Summarize the article in at most %d characters of plain text.
No markdown, no preamble.`

// Generator produces text for a system instruction and a prompt.
type Generator interface {
	Generate(ctx context.Context, instruction, prompt string) (string, error)
}

// GenAIGenerator calls the Gemini API.
type GenAIGenerator struct {
	client *genai.Client
	model  string
}

func NewGenAIGenerator(ctx context.Context, apiKey, model string) (*GenAIGenerator, error) {
	if apiKey == "" {
		return nil, ErrNotConfigured
	}
	if model == "" {
		model = DefaultModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &GenAIGenerator{client: client, model: model}, nil
}

func (g *GenAIGenerator) Generate(ctx context.Context, instruction, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(instruction, genai.RoleUser),
	})
	if err != nil {
		return "", fmt.Errorf("GenAI generate failed: %w", err)
	}
	return resp.Text(), nil
}

type Assistant struct {
	gen    Generator
	logger *zap.Logger
}

// New returns an assistant. A nil generator yields an assistant that reports
// ErrNotConfigured.
func New(gen Generator, logger *zap.Logger) *Assistant {
	return &Assistant{gen: gen, logger: logger}
}

func (a *Assistant) Configured() bool { return a != nil && a.gen != nil }

// Chat answers one client message.
func (a *Assistant) Chat(ctx context.Context, message string) (string, error) {
	if !a.Configured() {
		return "", ErrNotConfigured
	}
	message = strings.TrimSpace(message)
	if message == "" {
		return "", ErrEmptyMessage
	}
	if utf8.RuneCountInString(message) > MaxMessage {
		message = string([]rune(message)[:MaxMessage])
	}
	reply, err := a.gen.Generate(ctx, chatInstruction, message)
	if err != nil {
		a.logger.Warn("assistant chat failed", zap.Error(err))
		return "", err
	}
	reply = strings.TrimSpace(reply)
	if reply == "" {
		return "", ErrEmptyReply
	}
	return reply, nil
}

// Summarize asks the model for a summary of at most maxRunes runes.
func (a *Assistant) Summarize(ctx context.Context, text string, maxRunes int) (string, error) {
	if !a.Configured() {
		return "", ErrNotConfigured
	}
	summary, err := a.gen.Generate(ctx, fmt.Sprintf(summaryInstruction, maxRunes), text)
	if err != nil {
		return "", err
	}
	summary = strings.TrimSpace(summary)
	if summary == "" {
		return "", ErrEmptyReply
	}
	if utf8.RuneCountInString(summary) > maxRunes {
		summary = string([]rune(summary)[:maxRunes])
	}
	return summary, nil
}
