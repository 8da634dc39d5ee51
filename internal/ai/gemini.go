// Package ai adapts Google Gemini to the receipt extraction and question
// answering ports.
package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"spesa/internal/core"
	applog "spesa/internal/log"
)

// DefaultModel is used when no model name is configured.
const DefaultModel = "gemini-1.5-flash"

var errNoContent = errors.New("no content generated")

// Gemini implements ports.ReceiptExtractor and ports.QuestionAnswerer.
type Gemini struct {
	client *genai.Client
	model  string
	logger *applog.Logger
	now    func() time.Time
}

func NewGemini(ctx context.Context, apiKey, model string, logger *applog.Logger) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	if model == "" {
		model = DefaultModel
	}
	if logger == nil {
		logger = applog.Discard()
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &Gemini{
		client: client,
		model:  model,
		logger: logger.WithComponent(applog.ComponentAI),
		now:    time.Now,
	}, nil
}

func (g *Gemini) Close() error {
	return g.client.Close()
}

// ExtractReceipt sends the receipt photo with the category list and parses
// the JSON reply.
func (g *Gemini) ExtractReceipt(ctx context.Context, image []byte, mimeType string, categories []string) (core.PurchaseBatch, error) {
	prompt, err := receiptPrompt(categories, g.now())
	if err != nil {
		return core.PurchaseBatch{}, fmt.Errorf("render receipt prompt: %w", err)
	}

	m := g.client.GenerativeModel(g.model)
	m.SetTemperature(0.1)
	m.ResponseMIMEType = "application/json"

	start := time.Now()
	resp, err := m.GenerateContent(ctx, genai.ImageData(imageFormat(mimeType), image), genai.Text(prompt))
	if err != nil {
		return core.PurchaseBatch{}, fmt.Errorf("failed to generate content: %w", err)
	}
	text, err := responseText(resp)
	if err != nil {
		return core.PurchaseBatch{}, err
	}

	batch, err := parseReceiptJSON(text)
	if err != nil {
		return core.PurchaseBatch{}, err
	}
	g.logger.InfoContext(ctx, "Receipt extracted",
		applog.FieldOperation, applog.OpScan,
		applog.FieldItems, len(batch.Items),
		applog.FieldDuration, time.Since(start).Milliseconds())
	return batch, nil
}

// Answer asks the model a free-form question grounded on the given overview
// and purchase rows.
func (g *Gemini) Answer(ctx context.Context, question, contextText string, rows []core.PurchaseRow) (string, error) {
	prompt, err := answerPrompt(question, contextText, rows)
	if err != nil {
		return "", fmt.Errorf("render answer prompt: %w", err)
	}

	m := g.client.GenerativeModel(g.model)
	m.SetTemperature(0.4)

	start := time.Now()
	resp, err := m.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}
	text, err := responseText(resp)
	if err != nil {
		return "", err
	}
	g.logger.InfoContext(ctx, "Question answered",
		applog.FieldOperation, applog.OpAsk,
		applog.FieldDuration, time.Since(start).Milliseconds())
	return strings.TrimSpace(text), nil
}

// responseText concatenates the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errNoContent
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	if b.Len() == 0 {
		return "", errNoContent
	}
	return b.String(), nil
}

// imageFormat maps a MIME type to the short format genai.ImageData expects.
func imageFormat(mimeType string) string {
	format := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(mimeType)), "image/")
	switch format {
	case "", "jpg":
		return "jpeg"
	default:
		return format
	}
}
