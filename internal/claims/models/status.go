package models

import (
	"strings"

	dErrors "claimsight/pkg/domain-errors"
)

// Status is the triage state of a claim.
type Status string

const (
	StatusPending       Status = "Pending"
	StatusInvestigation Status = "Investigation"
	StatusApproved      Status = "Approved"
	StatusRejected      Status = "Rejected"
)

// Statuses lists every triage state in display order.
var Statuses = []Status{StatusPending, StatusInvestigation, StatusApproved, StatusRejected}

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusInvestigation, StatusApproved, StatusRejected:
		return true
	}
	return false
}

func (s Status) String() string { return string(s) }

// ParseStatus accepts a status name in any letter case.
func ParseStatus(raw string) (Status, error) {
	for _, s := range Statuses {
		if strings.EqualFold(strings.TrimSpace(raw), string(s)) {
			return s, nil
		}
	}
	return "", dErrors.Validation("invalid status", map[string]string{
		"status": "must be one of Pending, Investigation, Approved, Rejected",
	})
}

// RiskLabel is the coarse band attached to a risk score.
type RiskLabel string

const (
	RiskLow    RiskLabel = "Low"
	RiskMedium RiskLabel = "Medium"
	RiskHigh   RiskLabel = "High"
)

// RiskLabels lists every band from lowest to highest.
var RiskLabels = []RiskLabel{RiskLow, RiskMedium, RiskHigh}

func (l RiskLabel) IsValid() bool {
	switch l {
	case RiskLow, RiskMedium, RiskHigh:
		return true
	}
	return false
}

// ParseRiskLabel accepts a band name in any letter case.
func ParseRiskLabel(raw string) (RiskLabel, error) {
	for _, l := range RiskLabels {
		if strings.EqualFold(strings.TrimSpace(raw), string(l)) {
			return l, nil
		}
	}
	return "", dErrors.Validation("invalid risk label", map[string]string{
		"risk": "must be one of Low, Medium, High",
	})
}

// Score banding shared by the prompt and the offline model.
const (
	MinScore        = 0
	MaxScore        = 100
	MediumRiskFloor = 40
	HighRiskFloor   = 70
)

// LabelForScore returns the band a score falls in.
func LabelForScore(score int) RiskLabel {
	switch {
	case score >= HighRiskFloor:
		return RiskHigh
	case score >= MediumRiskFloor:
		return RiskMedium
	default:
		return RiskLow
	}
}

// ForgeryCheck is the per-document forgery verdict.
type ForgeryCheck string

const (
	ForgeryPassed    ForgeryCheck = "Passed"
	ForgerySuspected ForgeryCheck = "Suspected"
	ForgeryPending   ForgeryCheck = "Pending"
)

// ForgeryCheckFor maps a model verdict onto the stored check value.
func ForgeryCheckFor(suspected bool) ForgeryCheck {
	if suspected {
		return ForgerySuspected
	}
	return ForgeryPassed
}
