package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"claimsight/internal/claims/models"
	dErrors "claimsight/pkg/domain-errors"
)

// stubModel replays a canned response and counts calls.
type stubModel struct {
	calls   atomic.Int32
	respond func(ctx context.Context, req Request) (json.RawMessage, error)
}

func (s *stubModel) Name() string { return "stub" }

func (s *stubModel) GenerateJSON(ctx context.Context, req Request) (json.RawMessage, error) {
	s.calls.Add(1)
	return s.respond(ctx, req)
}

func replying(body string) *stubModel {
	return &stubModel{respond: func(context.Context, Request) (json.RawMessage, error) {
		return json.RawMessage(body), nil
	}}
}

type GatewaySuite struct {
	suite.Suite
	ctx context.Context
}

func TestGatewaySuite(t *testing.T) {
	suite.Run(t, new(GatewaySuite))
}

func (s *GatewaySuite) SetupTest() {
	s.ctx = context.Background()
}

func (s *GatewaySuite) TestDetectDocumentForgery() {
	s.Run("rejects a malformed data URI without calling the model", func() {
		model := replying(`{"forgerySuspected":false}`)
		gw := NewGateway(model)

		_, err := gw.DetectDocumentForgery(s.ctx, ForgeryInput{DocumentDataURI: "not-a-uri"})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
		s.Equal(int32(0), model.calls.Load())
	})

	s.Run("sends the decoded document as an attachment", func() {
		var got Request
		model := &stubModel{respond: func(_ context.Context, req Request) (json.RawMessage, error) {
			got = req
			return json.RawMessage(`{"forgerySuspected":true,"reason":"cloned signature"}`), nil
		}}
		gw := NewGateway(model)

		res, err := gw.DetectDocumentForgery(s.ctx, ForgeryInput{DocumentDataURI: EncodeDataURI("image/png", []byte("png-bytes"))})
		s.Require().NoError(err)
		s.True(res.ForgerySuspected)
		s.Equal("cloned signature", res.Reason)
		s.Require().Len(got.Attachments, 1)
		s.Equal("image/png", got.Attachments[0].MIMEType)
		s.Equal([]byte("png-bytes"), got.Attachments[0].Data)
	})

	s.Run("reason is optional", func() {
		gw := NewGateway(replying(`{"forgerySuspected":false}`))
		res, err := gw.DetectDocumentForgery(s.ctx, ForgeryInput{DocumentDataURI: EncodeDataURI("text/plain", []byte("x"))})
		s.Require().NoError(err)
		s.False(res.ForgerySuspected)
	})
}

func (s *GatewaySuite) TestAssessClaimRisk() {
	in := RiskInput{ClaimDetails: "Policy: POL-12345, Amount: 1500, Description: broken window", DocumentResults: "No documents were submitted."}

	s.Run("decodes a valid assessment", func() {
		gw := NewGateway(replying(`{"riskScore":72,"riskLabel":"High","rationale":"late report"}`))
		res, err := gw.AssessClaimRisk(s.ctx, in)
		s.Require().NoError(err)
		s.Equal(72, res.RiskScore)
		s.Equal("High", res.RiskLabel)
	})

	s.Run("out of range score is a model error", func() {
		gw := NewGateway(replying(`{"riskScore":150,"riskLabel":"High","rationale":"x"}`))
		_, err := gw.AssessClaimRisk(s.ctx, in)
		var me *ModelError
		s.Require().ErrorAs(err, &me)
		s.Equal(OpAssessRisk, me.Op)
	})

	s.Run("unknown label is a model error", func() {
		gw := NewGateway(replying(`{"riskScore":50,"riskLabel":"Severe","rationale":"x"}`))
		_, err := gw.AssessClaimRisk(s.ctx, in)
		var me *ModelError
		s.ErrorAs(err, &me)
	})

	s.Run("non-JSON output is a model error", func() {
		gw := NewGateway(replying(`I think it is risky`))
		_, err := gw.AssessClaimRisk(s.ctx, in)
		var me *ModelError
		s.ErrorAs(err, &me)
	})

	s.Run("provider failure is a model error wrapping the cause", func() {
		cause := errors.New("quota exceeded")
		gw := NewGateway(&stubModel{respond: func(context.Context, Request) (json.RawMessage, error) {
			return nil, cause
		}})
		_, err := gw.AssessClaimRisk(s.ctx, in)
		var me *ModelError
		s.Require().ErrorAs(err, &me)
		s.ErrorIs(err, cause)
	})

	s.Run("label is not re-checked against the score", func() {
		gw := NewGateway(replying(`{"riskScore":10,"riskLabel":"High","rationale":"x"}`))
		res, err := gw.AssessClaimRisk(s.ctx, in)
		s.Require().NoError(err)
		s.Equal("High", res.RiskLabel)
	})

	s.Run("missing details is a validation error", func() {
		model := replying(`{}`)
		_, err := NewGateway(model).AssessClaimRisk(s.ctx, RiskInput{DocumentResults: "x"})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
		s.Equal(int32(0), model.calls.Load())
	})
}

func (s *GatewaySuite) TestCallTimeout() {
	model := &stubModel{respond: func(ctx context.Context, _ Request) (json.RawMessage, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}}
	gw := NewGateway(model, WithCallTimeout(20*time.Millisecond))

	start := time.Now()
	_, err := gw.GetFraudExplanation(s.ctx, ExplanationInput{ClaimDetails: "x", RiskScore: 10, RiskLabel: "Low"})
	var me *ModelError
	s.Require().ErrorAs(err, &me)
	s.Less(time.Since(start), 2*time.Second)
}

func (s *GatewaySuite) TestGetFraudExplanation() {
	gw := NewGateway(replying(`{"explanation":"  The amount is unusual.  "}`))
	res, err := gw.GetFraudExplanation(s.ctx, ExplanationInput{ClaimDetails: "x", RiskScore: 40, RiskLabel: "Medium"})
	s.Require().NoError(err)
	s.Equal("The amount is unusual.", res.Explanation)

	for _, body := range []string{`{"explanation":""}`, `{"explanation":"   \n\t "}`} {
		_, err = NewGateway(replying(body)).GetFraudExplanation(s.ctx, ExplanationInput{ClaimDetails: "x"})
		var me *ModelError
		s.ErrorAs(err, &me, "blank explanation %q", body)
	}
}

func (s *GatewaySuite) TestFakeModelBanding() {
	gw := NewGateway(NewFakeModel())
	rank := map[string]int{"Low": 0, "Medium": 1, "High": 2}

	type point struct {
		score int
		label string
	}
	var points []point
	for _, amount := range []int{100, 6000, 20000} {
		for _, docs := range []string{"No documents were submitted.", "a.png: Suspected - edited", "a.png: Suspected - x\nb.png: Suspected - y"} {
			details := fmt.Sprintf("Policy: POL-12345, Amount: %d, Description: stolen cash after fire", amount)
			res, err := gw.AssessClaimRisk(s.ctx, RiskInput{ClaimDetails: details, DocumentResults: docs})
			s.Require().NoError(err)
			s.GreaterOrEqual(res.RiskScore, 0)
			s.LessOrEqual(res.RiskScore, 100)
			s.Equal(string(models.LabelForScore(res.RiskScore)), res.RiskLabel)
			points = append(points, point{res.RiskScore, res.RiskLabel})
		}
	}
	for _, a := range points {
		for _, b := range points {
			if a.score < b.score {
				s.LessOrEqual(rank[a.label], rank[b.label])
			}
		}
	}
}

func (s *GatewaySuite) TestRiskPromptCarriesBanding() {
	p := riskPrompt(RiskInput{ClaimDetails: "d", DocumentResults: "r"})
	s.Contains(p, "[PURPOSE]")
	s.Contains(p, "Low for scores 0-39, Medium for 40-69 and High for 70-100")
	s.Contains(p, "Claim Details: d")
}
