package service

import (
	"context"
	"fmt"
	"strings"

	"claimsight/internal/analysis"
	"claimsight/internal/claims/explain"
	"claimsight/internal/claims/models"
)

const (
	// ExplanationUnavailable replaces the explanation when the model cannot produce one.
	ExplanationUnavailable = "Could not load AI explanation."
	noClaimHistory         = "No significant claim history found."
)

// ExplanationResult is the fraud explanation shown next to a claim.
type ExplanationResult struct {
	Explanation string `json:"explanation"`
	Degraded    bool   `json:"degraded"`
}

// Explain returns a plain-language account of a claim's risk score. Model
// failures degrade to a placeholder instead of failing the request; only an
// unknown claim is an error.
func (s *Service) Explain(ctx context.Context, id string) (*ExplanationResult, error) {
	claim, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	in := explanationInput(claim)
	generate := func(ctx context.Context) (string, error) {
		out, err := s.analyzer.GetFraudExplanation(ctx, in)
		if err != nil {
			return "", err
		}
		return out.Explanation, nil
	}

	var text string
	if s.explainer != nil {
		text, err = s.explainer.Explain(ctx, explain.Key(claim), generate)
	} else {
		text, err = generate(ctx)
	}
	if err != nil {
		s.metrics.IncrementExplanation(true)
		s.logger.WarnContext(ctx, "fraud explanation unavailable",
			"claim_id", claim.ID,
			"error", err,
		)
		return &ExplanationResult{Explanation: ExplanationUnavailable, Degraded: true}, nil
	}

	s.metrics.IncrementExplanation(false)
	return &ExplanationResult{Explanation: text}, nil
}

func explanationInput(claim *models.Claim) analysis.ExplanationInput {
	checks := claim.ForgeryChecks()
	names := make([]string, len(checks))
	for i, c := range checks {
		names[i] = string(c)
	}
	return analysis.ExplanationInput{
		ClaimDetails:     claim.Description,
		RiskScore:        claim.RiskScore,
		RiskLabel:        string(claim.RiskLabel),
		DocumentAnalysis: fmt.Sprintf("Document forgery check: %s", strings.Join(names, ", ")),
		ClaimHistory:     noClaimHistory,
	}
}
