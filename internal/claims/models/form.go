package models

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	dErrors "claimsight/pkg/domain-errors"
)

// Submission limits.
const (
	MaxDocuments         = 5
	MaxDocumentBytes     = 4 << 20
	MinDescriptionLength = 10
)

var policyNoPattern = regexp.MustCompile(`^POL-\d{5,}$`)

// Upload is one document attached to a submission.
type Upload struct {
	Filename string
	Content  []byte
}

// ClaimForm is the investigator-facing submission contract.
type ClaimForm struct {
	PolicyNo    string
	Amount      float64
	Description string
	Documents   []Upload
}

// Validate normalizes the form and reports every violation at once.
func (f *ClaimForm) Validate() error {
	f.PolicyNo = strings.TrimSpace(f.PolicyNo)
	f.Description = strings.TrimSpace(f.Description)

	fields := map[string]string{}
	if !policyNoPattern.MatchString(f.PolicyNo) {
		fields["policyNo"] = "must look like POL-12345"
	}
	if math.IsNaN(f.Amount) || math.IsInf(f.Amount, 0) || f.Amount <= 0 {
		fields["amount"] = "must be a positive amount"
	}
	if utf8.RuneCountInString(f.Description) < MinDescriptionLength {
		fields["description"] = fmt.Sprintf("must be at least %d characters", MinDescriptionLength)
	}
	if len(f.Documents) > MaxDocuments {
		fields["documents"] = fmt.Sprintf("at most %d files may be attached", MaxDocuments)
	}
	for i, d := range f.Documents {
		key := fmt.Sprintf("documents[%d]", i)
		switch {
		case strings.TrimSpace(d.Filename) == "":
			fields[key] = "file name is required"
		case len(d.Content) > MaxDocumentBytes:
			fields[key] = "file exceeds the 4 MiB limit"
		}
	}
	if len(fields) > 0 {
		return dErrors.Validation("invalid claim form", fields)
	}
	return nil
}

// ClaimDetails renders the one-line claim summary sent to the model.
func (f ClaimForm) ClaimDetails() string {
	return fmt.Sprintf("Policy: %s, Amount: %s, Description: %s", f.PolicyNo, FormatAmount(f.Amount), f.Description)
}

// FormatAmount renders an amount without trailing zeros.
func FormatAmount(amount float64) string {
	return strconv.FormatFloat(amount, 'f', -1, 64)
}
