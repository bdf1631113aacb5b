package analysis

import (
	"context"
	"encoding/json"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/felixgeelhaar/fortify/timeout"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"claimsight/internal/analysis/metrics"
)

// ForgeryInput carries one document as a base64 data URI.
type ForgeryInput struct {
	DocumentDataURI string `json:"documentDataUri"`
}

type ForgeryResult struct {
	ForgerySuspected bool   `json:"forgerySuspected"`
	Reason           string `json:"reason,omitempty"`
}

type RiskInput struct {
	ClaimDetails    string `json:"claimDetails"`
	DocumentResults string `json:"documentResults"`
}

type RiskAssessment struct {
	RiskScore int    `json:"riskScore"`
	RiskLabel string `json:"riskLabel"`
	Rationale string `json:"rationale"`
}

type ExplanationInput struct {
	ClaimDetails     string `json:"claimDetails"`
	RiskScore        int    `json:"riskScore"`
	RiskLabel        string `json:"riskLabel"`
	DocumentAnalysis string `json:"documentAnalysis"`
	ClaimHistory     string `json:"claimHistory"`
}

type Explanation struct {
	Explanation string `json:"explanation"`
}

const defaultCallTimeout = 30 * time.Second

// Gateway runs the three analysis operations against a Model.
// It holds no claim state and never retries.
type Gateway struct {
	model       Model
	callTimeout time.Duration
	logger      *slog.Logger
	metrics     *metrics.Metrics
	tracer      trace.Tracer
}

type Option func(*Gateway)

func WithLogger(logger *slog.Logger) Option {
	return func(g *Gateway) {
		g.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(g *Gateway) {
		g.metrics = m
	}
}

// WithCallTimeout bounds each model call.
func WithCallTimeout(d time.Duration) Option {
	return func(g *Gateway) {
		if d > 0 {
			g.callTimeout = d
		}
	}
}

func NewGateway(model Model, opts ...Option) *Gateway {
	g := &Gateway{
		model:       model,
		callTimeout: defaultCallTimeout,
		logger:      slog.Default(),
		tracer:      otel.Tracer("claimsight/analysis"),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// DetectDocumentForgery asks the model whether one document looks forged.
func (g *Gateway) DetectDocumentForgery(ctx context.Context, in ForgeryInput) (*ForgeryResult, error) {
	mimeType, data, err := ParseDataURI(in.DocumentDataURI)
	if err != nil {
		return nil, invalidInput("documentDataUri", "must be a base64 data URI")
	}

	var out ForgeryResult
	err = g.call(ctx, OpDetectForgery, Request{
		Operation:   OpDetectForgery,
		Prompt:      forgeryPrompt(),
		Input:       map[string]string{"document": "attached", "mimeType": mimeType},
		Attachments: []Attachment{{MIMEType: mimeType, Data: data}},
	}, &out)
	if err != nil {
		return nil, err
	}
	g.metrics.IncrementForgeryVerdict(out.ForgerySuspected)
	return &out, nil
}

// AssessClaimRisk scores a claim from its details and the document report.
func (g *Gateway) AssessClaimRisk(ctx context.Context, in RiskInput) (*RiskAssessment, error) {
	if strings.TrimSpace(in.ClaimDetails) == "" {
		return nil, invalidInput("claimDetails", "is required")
	}
	if strings.TrimSpace(in.DocumentResults) == "" {
		return nil, invalidInput("documentResults", "is required")
	}

	var wire struct {
		RiskScore float64 `json:"riskScore"`
		RiskLabel string  `json:"riskLabel"`
		Rationale string  `json:"rationale"`
	}
	err := g.call(ctx, OpAssessRisk, Request{
		Operation: OpAssessRisk,
		Prompt:    riskPrompt(in),
		Input:     in,
	}, &wire)
	if err != nil {
		return nil, err
	}
	return &RiskAssessment{
		RiskScore: int(math.Round(wire.RiskScore)),
		RiskLabel: wire.RiskLabel,
		Rationale: wire.Rationale,
	}, nil
}

// GetFraudExplanation returns a one-paragraph explanation of a claim's risk.
func (g *Gateway) GetFraudExplanation(ctx context.Context, in ExplanationInput) (*Explanation, error) {
	if strings.TrimSpace(in.ClaimDetails) == "" {
		return nil, invalidInput("claimDetails", "is required")
	}
	if in.RiskScore < 0 || in.RiskScore > 100 {
		return nil, invalidInput("riskScore", "must be between 0 and 100")
	}

	var out Explanation
	err := g.call(ctx, OpExplain, Request{
		Operation: OpExplain,
		Prompt:    explanationPrompt(in),
		Input:     in,
	}, &out)
	if err != nil {
		return nil, err
	}
	out.Explanation = strings.TrimSpace(out.Explanation)
	return &out, nil
}

func (g *Gateway) call(ctx context.Context, op Operation, req Request, out any) error {
	ctx, span := g.tracer.Start(ctx, "analysis."+string(op),
		trace.WithAttributes(attribute.String("analysis.model", g.model.Name())))
	defer span.End()

	start := time.Now()
	limiter := timeout.New[json.RawMessage](timeout.Config{DefaultTimeout: g.callTimeout})
	raw, err := limiter.Execute(ctx, g.callTimeout, func(ctx context.Context) (json.RawMessage, error) {
		return g.model.GenerateJSON(ctx, req)
	})
	if err == nil {
		err = decodeOutput(op, raw, out)
	}
	elapsed := time.Since(start)

	if err != nil {
		g.metrics.ObserveCall(string(op), "error", elapsed)
		span.RecordError(err)
		span.SetStatus(codes.Error, "model call failed")
		g.logger.ErrorContext(ctx, "analysis call failed",
			"operation", op,
			"model", g.model.Name(),
			"duration_ms", elapsed.Milliseconds(),
			"error", err,
		)
		return modelError(op, err)
	}

	g.metrics.ObserveCall(string(op), "ok", elapsed)
	g.logger.DebugContext(ctx, "analysis call completed",
		"operation", op,
		"model", g.model.Name(),
		"duration_ms", elapsed.Milliseconds(),
	)
	return nil
}
