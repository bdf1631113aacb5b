package handler

import (
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"claimsight/internal/claims/models"
	dErrors "claimsight/pkg/domain-errors"
	"claimsight/pkg/platform/httputil"
)

// maxUploadBody leaves headroom for form fields and multipart framing.
const maxUploadBody = models.MaxDocuments*models.MaxDocumentBytes + 1<<20

type uploadJSON struct {
	Filename      string `json:"filename"`
	ContentBase64 string `json:"contentBase64"`
}

type submitJSON struct {
	PolicyNo    string       `json:"policyNo"`
	Amount      float64      `json:"amount"`
	Description string       `json:"description"`
	Documents   []uploadJSON `json:"documents"`
}

// decodeSubmission reads a claim form from multipart/form-data or JSON.
// Field rules are left to the service; only transport problems are reported here.
func (h *Handler) decodeSubmission(w http.ResponseWriter, r *http.Request, requestID string) (*models.ClaimForm, bool) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		form, err := readMultipartForm(w, r)
		if err != nil {
			h.logger.WarnContext(r.Context(), "invalid multipart claim submission",
				"request_id", requestID,
				"error", err,
			)
			httputil.WriteError(w, err)
			return nil, false
		}
		return form, true
	}

	req, ok := httputil.DecodeAndPrepare[submitJSON](w, r, h.logger, r.Context(), requestID)
	if !ok {
		return nil, false
	}
	form := &models.ClaimForm{
		PolicyNo:    req.PolicyNo,
		Amount:      req.Amount,
		Description: req.Description,
	}
	fields := map[string]string{}
	for i, d := range req.Documents {
		content, err := base64.StdEncoding.DecodeString(d.ContentBase64)
		if err != nil {
			fields[fmt.Sprintf("documents[%d]", i)] = "content must be base64 encoded"
			continue
		}
		form.Documents = append(form.Documents, models.Upload{Filename: d.Filename, Content: content})
	}
	if len(fields) > 0 {
		httputil.WriteError(w, dErrors.Validation("invalid claim form", fields))
		return nil, false
	}
	return form, true
}

func readMultipartForm(w http.ResponseWriter, r *http.Request) (*models.ClaimForm, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBody)
	if err := r.ParseMultipartForm(maxUploadBody); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid multipart body")
	}

	form := &models.ClaimForm{
		PolicyNo:    r.FormValue("policyNo"),
		Description: r.FormValue("description"),
	}
	if raw := strings.TrimSpace(r.FormValue("amount")); raw != "" {
		amount, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, dErrors.Validation("invalid claim form", map[string]string{"amount": "must be a number"})
		}
		form.Amount = amount
	}

	for _, fh := range r.MultipartForm.File["documents"] {
		content, err := readPart(fh)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeBadRequest, "failed to read uploaded document")
		}
		form.Documents = append(form.Documents, models.Upload{Filename: fh.Filename, Content: content})
	}
	return form, nil
}

// readPart reads at most one byte past the per-file limit so the form
// validation can report oversize files.
func readPart(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(io.LimitReader(f, models.MaxDocumentBytes+1))
}
