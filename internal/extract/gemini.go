// Package extract turns free-text purchase notes into itemized line items
// using the Gemini API.
package extract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"fincontrol/internal/core"
	"fincontrol/internal/ports"

	gl "google.golang.org/api/generativelanguage/v1beta"
	goption "google.golang.org/api/option"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.0-flash"

const promptTemplate = `Analise o seguinte texto de gastos e retorne uma lista JSON de itens. O texto é: "%s". Extraia nome do item, valor numérico e quantidade se houver.
Responda apenas com um array JSON de objetos com as chaves "item" (texto), "amount" (número) e "quantity" (texto, opcional).`

// itemsSchema constrains the model output to the array shape ParseItems
// reads.
var itemsSchema = &gl.Schema{
	Type: "ARRAY",
	Items: &gl.Schema{
		Type: "OBJECT",
		Properties: map[string]gl.Schema{
			"item":     {Type: "STRING"},
			"amount":   {Type: "NUMBER"},
			"quantity": {Type: "STRING"},
		},
		Required: []string{"item", "amount"},
	},
}

// Gemini is an Extractor backed by the Gemini generateContent endpoint.
type Gemini struct {
	svc   *gl.Service
	model string
}

var _ ports.Extractor = (*Gemini)(nil)

// NewGemini creates an extractor authenticated with an API key. Extra client
// options are appended after the key.
func NewGemini(ctx context.Context, apiKey, model string, opts ...goption.ClientOption) (*Gemini, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("missing Gemini API key")
	}
	if strings.TrimSpace(model) == "" {
		model = DefaultModel
	}
	opts = append([]goption.ClientOption{goption.WithAPIKey(apiKey)}, opts...)
	svc, err := gl.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create generative language service: %w", err)
	}
	return &Gemini{svc: svc, model: model}, nil
}

// Extract asks the model for line items describing text.
func (g *Gemini) Extract(ctx context.Context, text string) ([]core.LineItem, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyText
	}

	req := &gl.GenerateContentRequest{
		Contents: []*gl.Content{{
			Role:  "user",
			Parts: []*gl.Part{{Text: fmt.Sprintf(promptTemplate, text)}},
		}},
		GenerationConfig: &gl.GenerationConfig{
			ResponseMimeType: "application/json",
			ResponseSchema:   itemsSchema,
		},
	}

	resp, err := g.svc.Models.GenerateContent(modelResource(g.model), req).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("generate content: %w", err)
	}

	content := responseText(resp)
	if content == "" {
		return nil, ErrNoCandidates
	}

	items, err := ParseItems(content)
	if err != nil {
		slog.WarnContext(ctx, "Unparseable extraction response", "model", g.model, "error", err)
		return nil, err
	}
	slog.InfoContext(ctx, "Line items extracted", "model", g.model, "items", len(items))
	return items, nil
}

func modelResource(model string) string {
	if strings.HasPrefix(model, "models/") {
		return model
	}
	return "models/" + model
}

// responseText concatenates the text parts of the first candidate.
func responseText(resp *gl.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	c := resp.Candidates[0]
	if c == nil || c.Content == nil {
		return ""
	}
	var b strings.Builder
	for _, p := range c.Content.Parts {
		if p != nil {
			b.WriteString(p.Text)
		}
	}
	return strings.TrimSpace(b.String())
}
