package models

import (
	"math"
	"strings"
	"time"

	dErrors "claimsight/pkg/domain-errors"

	"github.com/oklog/ulid/v2"
)

// ClaimIDPrefix marks claim identifiers.
const ClaimIDPrefix = "CLM-"

// NewClaimID returns a fresh, time-sortable claim identifier.
func NewClaimID(now time.Time) string {
	return ClaimIDPrefix + ulid.MustNew(ulid.Timestamp(now), ulid.DefaultEntropy()).String()
}

// Claim is the aggregate root for a submitted insurance claim.
//
// Invariants:
//   - ID, SubmittedAt, RiskScore, RiskLabel and Documents are fixed at creation
//   - RiskScore is within [0, 100] and RiskLabel is a known band
//   - Status changes only through triage
//   - Comments only grow
type Claim struct {
	ID          string     `json:"id"`
	PolicyNo    string     `json:"policyNo"`
	Amount      float64    `json:"amount"`
	Description string     `json:"description"`
	SubmittedAt time.Time  `json:"submittedAt"`
	Status      Status     `json:"status"`
	RiskScore   int        `json:"riskScore"`
	RiskLabel   RiskLabel  `json:"riskLabel"`
	Documents   []Document `json:"documents"`
	Claimant    Person     `json:"claimant"`
	Location    GeoTag     `json:"location"`
	Comments    []Comment  `json:"comments"`
}

// Document is an attachment reference with its forgery verdict.
type Document struct {
	Name         string       `json:"name"`
	URL          string       `json:"url"`
	ForgeryCheck ForgeryCheck `json:"forgeryCheck"`
}

// Person identifies the claimant or a comment author.
type Person struct {
	Name      string `json:"name"`
	AvatarURL string `json:"avatarUrl"`
}

// GeoTag is where the claim was submitted from.
type GeoTag struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Comment is an investigator note on a claim.
type Comment struct {
	ID        string    `json:"id"`
	Author    string    `json:"author"`
	AvatarURL string    `json:"avatarUrl"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// NewClaim assembles a claim in its initial Pending state.
func NewClaim(
	id string,
	form ClaimForm,
	riskScore int,
	riskLabel RiskLabel,
	documents []Document,
	claimant Person,
	location GeoTag,
	now time.Time,
) (*Claim, error) {
	if !strings.HasPrefix(id, ClaimIDPrefix) || len(id) == len(ClaimIDPrefix) {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "claim id is malformed")
	}
	if riskScore < MinScore || riskScore > MaxScore {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "risk score must be between 0 and 100")
	}
	if !riskLabel.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "risk label is not a known band")
	}
	if form.Amount <= 0 || math.IsNaN(form.Amount) || math.IsInf(form.Amount, 0) {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "amount must be positive")
	}
	docs := make([]Document, len(documents))
	copy(docs, documents)

	return &Claim{
		ID:          id,
		PolicyNo:    form.PolicyNo,
		Amount:      form.Amount,
		Description: form.Description,
		SubmittedAt: now,
		Status:      StatusPending,
		RiskScore:   riskScore,
		RiskLabel:   riskLabel,
		Documents:   docs,
		Claimant:    claimant,
		Location:    location,
		Comments:    []Comment{},
	}, nil
}

// ApplyStatus records a triage transition. Callers validate the target first.
func (c *Claim) ApplyStatus(s Status) {
	c.Status = s
}

// AppendComment adds a note to the end of the discussion.
func (c *Claim) AppendComment(comment Comment) {
	c.Comments = append(c.Comments, comment)
}

// ForgeryChecks returns the verdict of each document in submission order.
func (c *Claim) ForgeryChecks() []ForgeryCheck {
	out := make([]ForgeryCheck, len(c.Documents))
	for i, d := range c.Documents {
		out[i] = d.ForgeryCheck
	}
	return out
}

// Clone returns a deep copy so stored state is never shared with callers.
func (c *Claim) Clone() *Claim {
	if c == nil {
		return nil
	}
	out := *c
	out.Documents = make([]Document, len(c.Documents))
	copy(out.Documents, c.Documents)
	out.Comments = make([]Comment, len(c.Comments))
	copy(out.Comments, c.Comments)
	return &out
}
