package service

import (
	"context"
	"errors"
	"time"

	"claimsight/internal/claims/models"
	"claimsight/pkg/platform/sentinel"
)

type demoClaim struct {
	id          string
	policyNo    string
	amount      float64
	description string
	score       int
	status      models.Status
	documents   []models.Document
	age         time.Duration
}

var demoClaims = []demoClaim{
	{
		id:          "CLM-DEMO-0001",
		policyNo:    "POL-20481",
		amount:      1250,
		description: "Rear bumper dented by a reversing delivery van in a supermarket car park.",
		score:       18,
		status:      models.StatusApproved,
		age:         6 * time.Hour,
		documents: []models.Document{
			{Name: "bumper.jpg", URL: "#", ForgeryCheck: models.ForgeryPassed},
		},
	},
	{
		id:          "CLM-DEMO-0002",
		policyNo:    "POL-33917",
		amount:      8700,
		description: "Water damage to kitchen ceiling after an upstairs pipe burst overnight.",
		score:       52,
		status:      models.StatusInvestigation,
		age:         30 * time.Hour,
		documents: []models.Document{
			{Name: "ceiling.png", URL: "#", ForgeryCheck: models.ForgeryPassed},
			{Name: "plumber-invoice.pdf", URL: "#", ForgeryCheck: models.ForgeryPassed},
		},
	},
	{
		id:          "CLM-DEMO-0003",
		policyNo:    "POL-58210",
		amount:      24000,
		description: "Total loss of vehicle reported stolen and later found burned out.",
		score:       86,
		status:      models.StatusPending,
		age:         72 * time.Hour,
		documents: []models.Document{
			{Name: "police-report.pdf", URL: "#", ForgeryCheck: models.ForgerySuspected},
		},
	},
	{
		id:          "CLM-DEMO-0004",
		policyNo:    "POL-77302",
		amount:      430,
		description: "Laptop screen cracked when a bag fell from an overhead train rack.",
		score:       74,
		status:      models.StatusRejected,
		age:         96 * time.Hour,
		documents: []models.Document{
			{Name: "receipt.jpg", URL: "#", ForgeryCheck: models.ForgerySuspected},
		},
	},
	{
		id:          "CLM-DEMO-0005",
		policyNo:    "POL-90125",
		amount:      3100,
		description: "Hail damage to the roof and skylight following a summer storm.",
		score:       35,
		status:      models.StatusPending,
		age:         120 * time.Hour,
	},
}

// SeedDemo loads a fixed set of example claims. They are added oldest first
// so the list reads in demoClaims order. Claims already present are left alone.
func (s *Service) SeedDemo(ctx context.Context, now time.Time) (int, error) {
	claimant, err := s.identity.Current(ctx)
	if err != nil {
		return 0, err
	}
	location, err := s.geo.Current(ctx)
	if err != nil {
		return 0, err
	}

	added := 0
	for i := len(demoClaims) - 1; i >= 0; i-- {
		d := demoClaims[i]
		claim, err := models.NewClaim(d.id, models.ClaimForm{
			PolicyNo:    d.policyNo,
			Amount:      d.amount,
			Description: d.description,
		}, d.score, models.LabelForScore(d.score), d.documents, claimant, location, now.Add(-d.age))
		if err != nil {
			return added, err
		}
		claim.ApplyStatus(d.status)

		if err := s.claims.Add(ctx, claim); err != nil {
			if errors.Is(err, sentinel.ErrConflict) {
				continue
			}
			return added, translateStoreError(err, "failed to seed claim")
		}
		added++
	}
	s.logger.InfoContext(ctx, "demo claims seeded", "added", added)
	return added, nil
}
