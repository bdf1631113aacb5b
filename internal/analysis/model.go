// Package analysis wraps the hosted model behind three claim-review operations:
// document forgery detection, risk scoring and fraud explanation.
package analysis

import (
	"context"
	"encoding/json"
)

// Operation names a gateway call; it labels prompts, metrics and spans.
type Operation string

const (
	OpDetectForgery Operation = "detect_document_forgery"
	OpAssessRisk    Operation = "assess_claim_risk"
	OpExplain       Operation = "fraud_explanation"
)

// Attachment is binary content sent alongside the prompt.
type Attachment struct {
	MIMEType string
	Data     []byte
}

// Request is one structured-output call to a model.
type Request struct {
	Operation   Operation
	Prompt      string
	Input       any
	Attachments []Attachment
}

// Model generates a JSON document for a prompt.
type Model interface {
	Name() string
	GenerateJSON(ctx context.Context, req Request) (json.RawMessage, error)
}
