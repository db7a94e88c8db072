package score

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/leadforge/leadforge/internal/domain"
	"github.com/leadforge/leadforge/internal/telemetry"
)

const (
	// DefaultModel is the chat model used for lead analysis.
	DefaultModel = openai.GPT4oMini

	systemPrompt = "You are an expert B2B lead analyst. Always respond with valid JSON."
)

// chatAPI is the subset of the OpenAI client used here.
type chatAPI interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// OpenAIScorer qualifies leads through the OpenAI chat completions API.
type OpenAIScorer struct {
	api   chatAPI
	model string
}

// ScorerOption customizes the OpenAI scorer.
type ScorerOption func(*scorerConfig)

type scorerConfig struct {
	baseURL string
	timeout time.Duration
}

// WithBaseURL overrides the API endpoint, used by tests.
func WithBaseURL(baseURL string) ScorerOption {
	return func(c *scorerConfig) { c.baseURL = baseURL }
}

// WithTimeout bounds each chat completion request. Non-positive values
// leave the client without a deadline.
func WithTimeout(d time.Duration) ScorerOption {
	return func(c *scorerConfig) { c.timeout = d }
}

// NewOpenAIScorer creates a scorer using the given API key.
func NewOpenAIScorer(apiKey string, opts ...ScorerOption) *OpenAIScorer {
	var sc scorerConfig
	for _, opt := range opts {
		opt(&sc)
	}

	cc := openai.DefaultConfig(apiKey)
	if sc.baseURL != "" {
		cc.BaseURL = sc.baseURL
	}
	if sc.timeout > 0 {
		cc.HTTPClient = &http.Client{Timeout: sc.timeout}
	}

	return &OpenAIScorer{
		api:   openai.NewClientWithConfig(cc),
		model: DefaultModel,
	}
}

// Score sends the analysis prompt and validates the JSON response.
func (s *OpenAIScorer) Score(ctx context.Context, in Input) (*domain.ScoreResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "score.openai", telemetry.SpanAttributes{URL: in.URL, Operation: "score"})
	defer span.End()

	resp, err := s.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: buildPrompt(in)},
		},
		Temperature: 0.7,
		MaxTokens:   2000,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		span.SetError(err)
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeExternalCall, "ai scoring request failed", err)
	}

	if len(resp.Choices) == 0 {
		return nil, domain.NewDomainError(domain.ErrCodeExternalCall, "ai scoring returned no choices")
	}

	result, err := domain.ParseScoreResult([]byte(resp.Choices[0].Message.Content))
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	telemetry.AddBreadcrumb(ctx, "score", fmt.Sprintf("scored %s: %d", in.URL, result.LeadScore))
	return result, nil
}

// buildPrompt assembles the analysis prompt, inserting knowledge base
// context between the profile and the scraped content when present.
func buildPrompt(in Input) string {
	profile := in.Profile
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`You are an expert B2B lead qualification analyst. Analyze the following company website content and score it as a potential lead.

USER PROFILE (Your Company):
- Website: %s
- Value Proposition: %s
- Ideal Customer Profile: %s
`, orNA(profile.Website), orNA(profile.ValueProposition), orNA(profile.ICP)))

	if in.RAGContext != "" {
		sb.WriteString(fmt.Sprintf(`
COMPANY KNOWLEDGE BASE (use this to inform your analysis):
%s

`, in.RAGContext))
	}

	sb.WriteString(fmt.Sprintf(`
COMPANY WEBSITE CONTENT (scraped from %s):
%s

Please provide a detailed analysis in the following JSON format:
{
    "lead_score": <integer 0-100>,
    "score_rationale": "<detailed explanation of the score>",
    "company_name": "<extracted company name>",
    "industry": "<identified industry>",
    "key_insights": "<3-5 key insights about the company>",
    "fit_analysis": "<why they are/aren't a good fit for our ICP>",
    "personalized_email": "<draft a personalized outreach email referencing specific content from their website>",
    "sms_draft": "<draft a short SMS message (max 160 chars)>",
    "recommended_action": "<Qualified/Disqualified/Further Research>"
}

Be specific and reference actual content found on their website.`, in.URL, truncateContent(in.Content)))

	return sb.String()
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}
