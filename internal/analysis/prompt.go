package analysis

import (
	"fmt"
	"strings"

	"claimsight/internal/claims/models"
)

// promptField describes one key of the expected JSON output.
type promptField struct {
	Name        string
	Type        string
	Required    bool
	Description string
}

// promptSpec renders a sectioned instruction block.
type promptSpec struct {
	Purpose    string
	Background string
	Input      []string
	Output     []promptField
	Rules      []string
}

func (p promptSpec) render() string {
	var b strings.Builder
	section := func(name string) {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString("[" + name + "]\n")
	}

	section("PURPOSE")
	b.WriteString(p.Purpose + "\n")
	if p.Background != "" {
		section("BACKGROUND")
		b.WriteString(p.Background + "\n")
	}
	if len(p.Input) > 0 {
		section("INPUT")
		for _, line := range p.Input {
			b.WriteString(line + "\n")
		}
	}
	section("OUTPUT")
	for _, f := range p.Output {
		req := "optional"
		if f.Required {
			req = "required"
		}
		fmt.Fprintf(&b, "- %s (%s, %s): %s\n", f.Name, f.Type, req, f.Description)
	}
	if len(p.Rules) > 0 {
		section("RULES")
		for _, r := range p.Rules {
			b.WriteString("- " + r + "\n")
		}
	}
	section("OUTPUT_FORMAT")
	b.WriteString("A single JSON object with exactly the fields above. No markdown.\n")
	return b.String()
}

func forgeryPrompt() string {
	return promptSpec{
		Purpose:    "You are a document examiner for an insurance fraud team. Decide whether the attached claim document shows signs of forgery or tampering.",
		Background: "The document is attached inline. It may be a photo, a scanned receipt, an invoice or a report.",
		Output: []promptField{
			{Name: "forgerySuspected", Type: "boolean", Required: true, Description: "true when forgery or tampering is suspected"},
			{Name: "reason", Type: "string", Description: "short justification of the verdict"},
		},
		Rules: []string{
			"Look for inconsistent fonts, cloned regions, mismatched dates or totals, and edited metadata.",
			"Do not speculate beyond what the document shows.",
		},
	}.render()
}

func riskPrompt(in RiskInput) string {
	return promptSpec{
		Purpose: "You are an AI assistant specialized in fraud detection for insurance claims. Analyze the claim details and the document verification results to assess the risk of fraud.",
		Input: []string{
			"Claim Details: " + in.ClaimDetails,
			"Document Verification Results: " + in.DocumentResults,
		},
		Output: []promptField{
			{Name: "riskScore", Type: "integer 0-100", Required: true, Description: "likelihood of fraud"},
			{Name: "riskLabel", Type: "Low|Medium|High", Required: true, Description: "categorical band of the score"},
			{Name: "rationale", Type: "string", Required: true, Description: "the factors behind the assessment"},
		},
		Rules: []string{
			"Consider inconsistencies in the claim, potential forgery and any other relevant information.",
			fmt.Sprintf("Label Low for scores %d-%d, Medium for %d-%d and High for %d-%d.",
				models.MinScore, models.MediumRiskFloor-1,
				models.MediumRiskFloor, models.HighRiskFloor-1,
				models.HighRiskFloor, models.MaxScore),
			"The score, label and rationale must be consistent and well-justified.",
		},
	}.render()
}

func explanationPrompt(in ExplanationInput) string {
	return promptSpec{
		Purpose: "You are an AI assistant specialized in explaining fraud risk assessments for insurance claims. Explain clearly and concisely why the claim received its risk assessment.",
		Input: []string{
			"Claim Details: " + in.ClaimDetails,
			fmt.Sprintf("Risk Score: %d", in.RiskScore),
			"Risk Label: " + in.RiskLabel,
			"Document Analysis: " + in.DocumentAnalysis,
			"Claim History: " + in.ClaimHistory,
		},
		Output: []promptField{
			{Name: "explanation", Type: "string", Required: true, Description: "a single paragraph an investigator can act on"},
		},
		Rules: []string{
			"Focus on the key factors: unusual claim amounts, inconsistencies in the documentation, or a history of suspicious claims.",
			"Write a single paragraph.",
		},
	}.render()
}
