package models

import (
	"strings"
	"testing"
	"time"

	dErrors "claimsight/pkg/domain-errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type ModelsSuite struct {
	suite.Suite
	now time.Time
}

func TestModelsSuite(t *testing.T) {
	suite.Run(t, new(ModelsSuite))
}

func (s *ModelsSuite) SetupTest() {
	s.now = time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
}

func (s *ModelsSuite) validForm() ClaimForm {
	return ClaimForm{
		PolicyNo:    "POL-12345",
		Amount:      1500,
		Description: "Car window was broken overnight in parking lot.",
	}
}

func (s *ModelsSuite) TestClaimFormValidate() {
	s.Run("accepts a well-formed submission", func() {
		form := s.validForm()
		form.Description = "   " + form.Description + "  "
		s.Require().NoError(form.Validate())
		s.Equal("Car window was broken overnight in parking lot.", form.Description)
	})

	s.Run("reports every violated field", func() {
		form := ClaimForm{PolicyNo: "POL-12", Amount: 0, Description: "short"}
		err := form.Validate()
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))

		fields := dErrors.FieldsOf(err)
		s.Contains(fields, "policyNo")
		s.Contains(fields, "amount")
		s.Contains(fields, "description")
	})

	s.Run("policy number needs the POL prefix and five digits", func() {
		for _, bad := range []string{"12345", "pol-12345", "POL-1234", "POL-12345X"} {
			form := s.validForm()
			form.PolicyNo = bad
			s.Error(form.Validate(), bad)
		}
		form := s.validForm()
		form.PolicyNo = "POL-1234567"
		s.NoError(form.Validate())
	})

	s.Run("rejects more than five documents", func() {
		form := s.validForm()
		for i := 0; i < MaxDocuments+1; i++ {
			form.Documents = append(form.Documents, Upload{Filename: "a.png", Content: []byte{1}})
		}
		err := form.Validate()
		s.Require().Error(err)
		s.Contains(dErrors.FieldsOf(err), "documents")
	})

	s.Run("rejects documents over 4 MiB", func() {
		form := s.validForm()
		form.Documents = []Upload{{Filename: "big.pdf", Content: make([]byte, MaxDocumentBytes+1)}}
		err := form.Validate()
		s.Require().Error(err)
		s.Contains(dErrors.FieldsOf(err), "documents[0]")
	})
}

func (s *ModelsSuite) TestClaimDetails() {
	s.Equal(
		"Policy: POL-12345, Amount: 1500, Description: Car window was broken overnight in parking lot.",
		s.validForm().ClaimDetails(),
	)
}

func (s *ModelsSuite) TestNewClaim() {
	s.Run("starts pending with empty documents and comments", func() {
		c, err := NewClaim(NewClaimID(s.now), s.validForm(), 72, RiskHigh, nil, Person{Name: "Alex Doe"}, GeoTag{}, s.now)
		s.Require().NoError(err)
		s.Equal(StatusPending, c.Status)
		s.Equal(72, c.RiskScore)
		s.Equal(RiskHigh, c.RiskLabel)
		s.NotNil(c.Documents)
		s.Empty(c.Documents)
		s.NotNil(c.Comments)
		s.True(strings.HasPrefix(c.ID, ClaimIDPrefix))
	})

	s.Run("rejects scores outside the range", func() {
		_, err := NewClaim(NewClaimID(s.now), s.validForm(), 101, RiskHigh, nil, Person{}, GeoTag{}, s.now)
		s.True(dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})

	s.Run("rejects unknown labels", func() {
		_, err := NewClaim(NewClaimID(s.now), s.validForm(), 10, RiskLabel("Severe"), nil, Person{}, GeoTag{}, s.now)
		s.True(dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})
}

func (s *ModelsSuite) TestClone() {
	c, err := NewClaim(NewClaimID(s.now), s.validForm(), 20, RiskLow,
		[]Document{{Name: "a.png", URL: "#", ForgeryCheck: ForgeryPassed}}, Person{}, GeoTag{}, s.now)
	s.Require().NoError(err)

	clone := c.Clone()
	clone.Documents[0].Name = "changed"
	clone.AppendComment(Comment{ID: "1", Text: "note"})

	s.Equal("a.png", c.Documents[0].Name)
	s.Empty(c.Comments)
}

func TestLabelForScore(t *testing.T) {
	cases := map[int]RiskLabel{0: RiskLow, 39: RiskLow, 40: RiskMedium, 69: RiskMedium, 70: RiskHigh, 100: RiskHigh}
	for score, want := range cases {
		assert.Equal(t, want, LabelForScore(score), "score %d", score)
	}

	prev := LabelForScore(0)
	rank := map[RiskLabel]int{RiskLow: 0, RiskMedium: 1, RiskHigh: 2}
	for score := 1; score <= 100; score++ {
		cur := LabelForScore(score)
		require.GreaterOrEqual(t, rank[cur], rank[prev], "label regressed at %d", score)
		prev = cur
	}
}

func TestParseStatus(t *testing.T) {
	st, err := ParseStatus("investigation")
	require.NoError(t, err)
	assert.Equal(t, StatusInvestigation, st)

	_, err = ParseStatus("Closed")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}
