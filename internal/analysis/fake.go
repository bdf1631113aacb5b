package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"claimsight/internal/claims/models"
)

// FakeModel returns deterministic payloads for offline development and tests.
// Its scores follow the same banding the prompt asks the hosted model to use.
type FakeModel struct{}

func NewFakeModel() *FakeModel { return &FakeModel{} }

func (f *FakeModel) Name() string { return "fake" }

var (
	forgeryMarkers = [][]byte{[]byte("FORGED"), []byte("TAMPERED")}
	riskKeywords   = []string{"cash", "stolen", "total loss", "fire", "urgent", "no receipt", "lost"}
	amountPattern  = regexp.MustCompile(`Amount: ([0-9.]+)`)
)

func (f *FakeModel) GenerateJSON(ctx context.Context, req Request) (json.RawMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var obj any
	switch req.Operation {
	case OpDetectForgery:
		obj = fakeForgery(req.Attachments)
	case OpAssessRisk:
		in, ok := req.Input.(RiskInput)
		if !ok {
			return nil, fmt.Errorf("fake model: unexpected input %T", req.Input)
		}
		obj = fakeRisk(in)
	case OpExplain:
		in, ok := req.Input.(ExplanationInput)
		if !ok {
			return nil, fmt.Errorf("fake model: unexpected input %T", req.Input)
		}
		obj = map[string]string{"explanation": fakeExplanation(in)}
	default:
		obj = map[string]any{}
	}
	b, err := json.Marshal(obj)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(b), nil
}

func fakeForgery(attachments []Attachment) ForgeryResult {
	for _, a := range attachments {
		if len(a.Data) == 0 {
			return ForgeryResult{ForgerySuspected: true, Reason: "Document is empty."}
		}
		for _, m := range forgeryMarkers {
			if bytes.Contains(a.Data, m) {
				return ForgeryResult{ForgerySuspected: true, Reason: "Document contains signs of editing."}
			}
		}
	}
	return ForgeryResult{ForgerySuspected: false, Reason: "No signs of tampering found."}
}

func fakeRisk(in RiskInput) RiskAssessment {
	score := 15
	var factors []string

	if m := amountPattern.FindStringSubmatch(in.ClaimDetails); m != nil {
		if amount, err := strconv.ParseFloat(strings.TrimSuffix(m[1], "."), 64); err == nil {
			switch {
			case amount >= 10000:
				score += 30
				factors = append(factors, "a high claim amount")
			case amount >= 5000:
				score += 15
				factors = append(factors, "an elevated claim amount")
			}
		}
	}
	if n := strings.Count(in.DocumentResults, string(models.ForgerySuspected)); n > 0 {
		score += 30 * n
		factors = append(factors, fmt.Sprintf("%d suspected document(s)", n))
	}
	lower := strings.ToLower(in.ClaimDetails)
	for _, kw := range riskKeywords {
		if strings.Contains(lower, kw) {
			score += 10
			factors = append(factors, fmt.Sprintf("the keyword %q", kw))
		}
	}
	score = max(models.MinScore, min(models.MaxScore, score))

	rationale := "No notable risk factors were found."
	if len(factors) > 0 {
		rationale = "Risk driven by " + strings.Join(factors, ", ") + "."
	}
	return RiskAssessment{
		RiskScore: score,
		RiskLabel: string(models.LabelForScore(score)),
		Rationale: rationale,
	}
}

func fakeExplanation(in ExplanationInput) string {
	return fmt.Sprintf(
		"The claim was rated %s risk with a score of %d. %s %s Investigators should weigh these factors against the claim description: %s",
		in.RiskLabel, in.RiskScore, sentence(in.DocumentAnalysis), sentence(in.ClaimHistory), in.ClaimDetails,
	)
}

func sentence(s string) string {
	s = strings.TrimSpace(s)
	if s == "" || strings.HasSuffix(s, ".") {
		return s
	}
	return s + "."
}
