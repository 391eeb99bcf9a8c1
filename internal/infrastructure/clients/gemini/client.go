package gemini

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/clinicore/claimgen/internal/domain/providers"
	"github.com/clinicore/claimgen/pkg/config"
	genai "google.golang.org/genai"
)

// Client implements the completion provider on top of the Gemini API.
// It only covers the API call itself; retries and error classification
// belong to the callers.
type Client struct {
	cli     *genai.Client
	model   string
	timeout time.Duration
}

// Ensure Client implements CompletionProvider
var _ providers.CompletionProvider = (*Client)(nil)

// NewClient creates a new Gemini client.
func NewClient(ctx context.Context, cfg *config.GeminiConfig) (*Client, error) {
	if cfg == nil || cfg.APIKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	model := cfg.Model
	if model == "" {
		model = "gemini-2.5-pro"
	}

	cli, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}

	return &Client{cli: cli, model: model, timeout: cfg.Timeout}, nil
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.timeout)
}

// Complete sends a prompt and returns the raw text completion. A response
// with no text candidate yields "" rather than an error so callers can
// apply their malformed-content recovery; errors are transport failures.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	resp, err := c.cli.Models.GenerateContent(ctx, c.model,
		[]*genai.Content{{Parts: []*genai.Part{{Text: prompt}}}},
		nil,
	)
	if err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", nil
	}
	return joinTextParts(resp.Candidates[0].Content.Parts), nil
}

// joinTextParts concatenates every text part of a candidate. The model may
// split one logical answer across parts, so taking only the first would
// truncate it.
func joinTextParts(parts []*genai.Part) string {
	var b strings.Builder
	for _, p := range parts {
		if p != nil {
			b.WriteString(p.Text)
		}
	}
	return b.String()
}

// CompleteStructured asks the model to answer through the given function
// declaration. It returns nil when the response carries no function
// invocation; the caller decides how to degrade.
func (c *Client) CompleteStructured(ctx context.Context, prompt string, schema providers.FunctionSchema) (*providers.FunctionCall, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	resp, err := c.cli.Models.GenerateContent(ctx, c.model,
		[]*genai.Content{{Parts: []*genai.Part{{Text: prompt}}}},
		&genai.GenerateContentConfig{
			Tools: []*genai.Tool{{
				FunctionDeclarations: []*genai.FunctionDeclaration{toFunctionDeclaration(schema)},
			}},
		},
	)
	if err != nil {
		return nil, err
	}

	calls := resp.FunctionCalls()
	if len(calls) == 0 {
		return nil, nil
	}
	return &providers.FunctionCall{Name: calls[0].Name, Args: calls[0].Args}, nil
}

func toFunctionDeclaration(schema providers.FunctionSchema) *genai.FunctionDeclaration {
	properties := make(map[string]*genai.Schema, len(schema.Parameters))
	var required []string

	for _, param := range schema.Parameters {
		switch param.Type {
		case "array":
			properties[param.Name] = &genai.Schema{
				Type:        genai.TypeArray,
				Description: param.Description,
				Items:       &genai.Schema{Type: genai.TypeString},
			}
		default:
			properties[param.Name] = &genai.Schema{
				Type:        genai.TypeString,
				Description: param.Description,
			}
		}
		if param.Required {
			required = append(required, param.Name)
		}
	}

	return &genai.FunctionDeclaration{
		Name:        schema.Name,
		Description: schema.Description,
		Parameters: &genai.Schema{
			Type:       genai.TypeObject,
			Properties: properties,
			Required:   required,
		},
	}
}
