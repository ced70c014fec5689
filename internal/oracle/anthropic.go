package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/meltforce/liftlog/internal/models"
)

// DefaultModel is used when the config does not name one.
const DefaultModel = "claude-3-5-haiku-20241022"

// Config configures the networked oracle.
type Config struct {
	APIKey        string
	Model         string
	MaxTokens     int64
	Timeout       time.Duration
	RatePerMinute int
	BaseURL       string // overrides the API endpoint; used by tests
}

// Anthropic is the networked oracle backed by the Anthropic Messages API.
// Each call is a single attempt bounded by the configured timeout.
type Anthropic struct {
	client    anthropic.Client
	model     string
	maxTokens int64
	timeout   time.Duration
	log       *slog.Logger
}

// Compile-time check: Anthropic satisfies Oracle.
var _ Oracle = (*Anthropic)(nil)

// NewAnthropic creates a networked oracle. SDK-level retries are disabled.
func NewAnthropic(cfg Config, log *slog.Logger) *Anthropic {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	return &Anthropic{
		client:    anthropic.NewClient(opts...),
		model:     model,
		maxTokens: maxTokens,
		timeout:   timeout,
		log:       log,
	}
}

// New returns the oracle for cfg: Unavailable without an API key, otherwise a
// rate-limited Anthropic client.
func New(cfg Config, log *slog.Logger) Oracle {
	if cfg.APIKey == "" {
		return Unavailable{}
	}
	return NewLimited(NewAnthropic(cfg, log), cfg.RatePerMinute)
}

const refineSystem = `You are a strength coach. Given an exercise, its programming and recent sessions,
suggest the next working weight. A deterministic fallback value is provided; you may use it.
Reply with JSON only: {"next": <number>, "rationale": "<one sentence>"}.`

const splitSystem = `You convert a pasted workout split into JSON. Reply with JSON only, shaped as
{"days":[{"name":"PUSH A","exercises":[{"name":"Bench Press","sets":3,"low":8,"high":10}]}]}.
Use upper-case day names. If a rep count is a single number, low and high are equal.`

// Refine asks the model for a next working weight.
func (a *Anthropic) Refine(ctx context.Context, req RefineRequest) (*Refinement, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("oracle: encoding request: %w", err)
	}

	text, err := a.complete(ctx, "refine", refineSystem, string(payload))
	if err != nil {
		return nil, err
	}

	var reply struct {
		Next      any    `json:"next"`
		Rationale string `json:"rationale"`
	}
	if err := decodeReply(text, &reply); err != nil {
		return nil, fmt.Errorf("oracle: refine: %w", err)
	}

	next, ok := reply.Next.(float64)
	if !ok || math.IsNaN(next) || math.IsInf(next, 0) || next < 0 {
		return nil, ErrNoSuggestion
	}
	return &Refinement{Next: next, Rationale: strings.TrimSpace(reply.Rationale)}, nil
}

// ParseSplit asks the model to structure a split the heuristic parser could not read.
func (a *Anthropic) ParseSplit(ctx context.Context, text string) (*models.ParsedSplit, error) {
	reply, err := a.complete(ctx, "split", splitSystem, text)
	if err != nil {
		return nil, err
	}

	var split models.ParsedSplit
	if err := decodeReply(reply, &split); err != nil {
		return nil, fmt.Errorf("oracle: split: %w", err)
	}
	split.Normalize()
	return &split, nil
}

// complete sends one user message and returns the concatenated text blocks.
func (a *Anthropic) complete(ctx context.Context, kind, system, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	start := time.Now()
	resp, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: a.maxTokens,
		System:    []anthropic.TextBlockParam{{Text: system}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("oracle: %s call: %w", kind, err)
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}

	a.log.Debug("oracle call",
		"kind", kind,
		"model", a.model,
		"input_tokens", resp.Usage.InputTokens,
		"output_tokens", resp.Usage.OutputTokens,
		"duration", time.Since(start).String(),
	)
	return text.String(), nil
}
