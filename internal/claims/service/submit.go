package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"claimsight/internal/activity"
	"claimsight/internal/analysis"
	"claimsight/internal/claims/models"
	"claimsight/internal/documents"
	dErrors "claimsight/pkg/domain-errors"
	"claimsight/pkg/requestcontext"
)

// NoDocumentsSummary stands in for the forgery report when nothing was attached.
const NoDocumentsSummary = "No documents were submitted."

// AssessedDocument is the forgery verdict for one upload, kept in upload order.
type AssessedDocument struct {
	Name         string              `json:"name"`
	ContentType  string              `json:"contentType"`
	ForgeryCheck models.ForgeryCheck `json:"forgeryCheck"`
	Reason       string              `json:"reason,omitempty"`
}

func (d AssessedDocument) line() string {
	return fmt.Sprintf("%s: %s - %s", d.Name, d.ForgeryCheck, d.Reason)
}

// Assessment is the model's view of a claim form before anything is stored.
type Assessment struct {
	Documents      []AssessedDocument `json:"documents"`
	DocumentReport string             `json:"documentReport"`
	RiskScore      int                `json:"riskScore"`
	RiskLabel      models.RiskLabel   `json:"riskLabel"`
	Rationale      string             `json:"rationale,omitempty"`
}

// Submit validates a claim form, analyzes it and stores the new claim.
// Any failure before the final store write leaves nothing behind.
func (s *Service) Submit(ctx context.Context, form models.ClaimForm) (*models.Claim, error) {
	start := time.Now()

	if err := form.Validate(); err != nil {
		s.metrics.ObserveSubmission("invalid", time.Since(start))
		return nil, err
	}

	ctx, span := s.tracer.Start(ctx, "claims.submit")
	defer span.End()
	span.SetAttributes(
		attribute.String("claim.policy_no", form.PolicyNo),
		attribute.Int("claim.documents", len(form.Documents)),
	)

	claim, err := s.submit(ctx, form)
	if err != nil {
		outcome := "error"
		if dErrors.HasCode(err, dErrors.CodeModel) {
			outcome = "model_error"
		}
		s.metrics.ObserveSubmission(outcome, time.Since(start))
		span.RecordError(err)
		span.SetStatus(codes.Error, "claim submission failed")
		s.logger.ErrorContext(ctx, "claim submission failed",
			"policy_no", form.PolicyNo,
			"documents", len(form.Documents),
			"error", err,
		)
		return nil, err
	}

	s.metrics.ObserveSubmission("accepted", time.Since(start))
	span.SetAttributes(attribute.String("claim.id", claim.ID))
	s.logger.InfoContext(ctx, "claim submitted",
		"claim_id", claim.ID,
		"risk_score", claim.RiskScore,
		"risk_label", claim.RiskLabel,
		"documents", len(claim.Documents),
	)
	s.emit(ctx, claim.ID, activity.ActionClaimSubmitted, claim.Claimant.Name, map[string]string{
		"riskScore": strconv.Itoa(claim.RiskScore),
		"riskLabel": string(claim.RiskLabel),
		"documents": strconv.Itoa(len(claim.Documents)),
	})
	return claim, nil
}

// Assess validates a form and runs the forgery checks and risk assessment
// without storing anything.
func (s *Service) Assess(ctx context.Context, form models.ClaimForm) (*Assessment, error) {
	if err := form.Validate(); err != nil {
		return nil, err
	}
	ctx, span := s.tracer.Start(ctx, "claims.assess")
	defer span.End()
	return s.assess(ctx, form)
}

func (s *Service) assess(ctx context.Context, form models.ClaimForm) (*Assessment, error) {
	docs, err := s.checkDocuments(ctx, form.Documents)
	if err != nil {
		return nil, translateAnalysisError(err)
	}

	report := documentReport(docs)
	risk, err := s.analyzer.AssessClaimRisk(ctx, analysis.RiskInput{
		ClaimDetails:    form.ClaimDetails(),
		DocumentResults: report,
	})
	if err != nil {
		return nil, translateAnalysisError(err)
	}
	label, err := models.ParseRiskLabel(risk.RiskLabel)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeModel, "claim analysis failed, please retry")
	}
	return &Assessment{
		Documents:      docs,
		DocumentReport: report,
		RiskScore:      risk.RiskScore,
		RiskLabel:      label,
		Rationale:      risk.Rationale,
	}, nil
}

func (s *Service) submit(ctx context.Context, form models.ClaimForm) (*models.Claim, error) {
	assessment, err := s.assess(ctx, form)
	if err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	id := models.NewClaimID(now)

	docs := make([]models.Document, len(assessment.Documents))
	for i, d := range assessment.Documents {
		url, err := s.documents.Put(ctx, documents.Object{
			ClaimID:     id,
			Index:       i,
			Name:        d.Name,
			ContentType: d.ContentType,
			Content:     form.Documents[i].Content,
		})
		if err != nil {
			return nil, s.abandon(ctx, id, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store claim documents"))
		}
		docs[i] = models.Document{
			Name:         d.Name,
			URL:          url,
			ForgeryCheck: d.ForgeryCheck,
		}
	}

	claimant, err := s.identity.Current(ctx)
	if err != nil {
		return nil, s.abandon(ctx, id, dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve claimant"))
	}
	location, err := s.geo.Current(ctx)
	if err != nil {
		return nil, s.abandon(ctx, id, dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve location"))
	}

	claim, err := models.NewClaim(id, form, assessment.RiskScore, assessment.RiskLabel, docs, claimant, location, now)
	if err != nil {
		// Score and label come from the model; an out-of-band value is a model fault.
		return nil, s.abandon(ctx, id, dErrors.Wrap(err, dErrors.CodeModel, "claim analysis failed, please retry"))
	}

	if err := s.claims.Add(ctx, claim); err != nil {
		return nil, s.abandon(ctx, id, translateStoreError(err, "failed to save claim"))
	}
	return claim, nil
}

// documentRemover is implemented by stores that can drop a claim's files.
type documentRemover interface {
	DeleteClaim(ctx context.Context, claimID string) error
}

const abandonTimeout = 10 * time.Second

// abandon removes attachments already stored for a claim that will not be
// saved, then hands back cause.
func (s *Service) abandon(ctx context.Context, claimID string, cause error) error {
	remover, ok := s.documents.(documentRemover)
	if !ok {
		return cause
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), abandonTimeout)
	defer cancel()
	if err := remover.DeleteClaim(ctx, claimID); err != nil {
		s.logger.WarnContext(ctx, "failed to remove documents of unsaved claim",
			"claim_id", claimID,
			"error", err,
		)
	}
	return cause
}

// checkDocuments runs one forgery check per upload with bounded parallelism.
// The first failure cancels the remaining checks.
func (s *Service) checkDocuments(ctx context.Context, uploads []models.Upload) ([]AssessedDocument, error) {
	checks := make([]AssessedDocument, len(uploads))
	if len(uploads) == 0 {
		return checks, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxConcurrentChecks)

	for i, up := range uploads {
		g.Go(func() error {
			contentType := analysis.DetectMIME(up.Filename, up.Content)
			res, err := s.analyzer.DetectDocumentForgery(gctx, analysis.ForgeryInput{
				DocumentDataURI: analysis.EncodeDataURI(contentType, up.Content),
			})
			if err != nil {
				return err
			}
			checks[i] = AssessedDocument{
				Name:         up.Filename,
				ContentType:  contentType,
				ForgeryCheck: models.ForgeryCheckFor(res.ForgerySuspected),
				Reason:       res.Reason,
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return checks, nil
}

func documentReport(checks []AssessedDocument) string {
	if len(checks) == 0 {
		return NoDocumentsSummary
	}
	lines := make([]string, len(checks))
	for i, c := range checks {
		lines[i] = c.line()
	}
	return strings.Join(lines, "\n")
}
