package httptransport_test

import (
	"encoding/base64"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"claimsight/internal/activity"
	"claimsight/internal/analysis"
	"claimsight/internal/claims/handler"
	"claimsight/internal/claims/models"
	"claimsight/internal/claims/service"
	"claimsight/internal/claims/store"
	"claimsight/internal/documents"
	"claimsight/internal/identity"
	httptransport "claimsight/internal/transport/http"
	"claimsight/pkg/testutil"
)

type submitted struct {
	ID    string       `json:"id"`
	Claim models.Claim `json:"claim"`
}

type activityFeed struct {
	ClaimID string           `json:"claimId"`
	Events  []activity.Event `json:"events"`
}

func TestClaimReviewFlow(t *testing.T) {
	testutil.Given(t, "a server backed by in-memory stores and the offline model", func(t *testing.T) {
		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		docs := documents.NewInMemory()
		journal := activity.NewPublisher(activity.NewInMemoryStore(), activity.WithLogger(logger))
		defer journal.Close()

		svc := service.New(store.NewInMemory(), analysis.NewGateway(analysis.NewFakeModel(), analysis.WithLogger(logger)),
			service.WithLogger(logger),
			service.WithDocumentStore(docs),
			service.WithIdentity(identity.FromContext{Fallback: identity.NewStatic(identity.DefaultPerson)}),
			service.WithActivityJournal(journal),
		)
		router := httptransport.NewRouter(httptransport.Config{
			Logger: logger,
			Routes: []httptransport.Registrar{handler.New(svc, logger, handler.WithDocumentReader(docs))},
		})

		var claimID string
		photo := []byte("\xff\xd8\xff\xe0 driveway photo")

		testutil.When(t, "an investigator submits a claim with a photo", func(t *testing.T) {
			req := testutil.NewJSONRequest(t, http.MethodPost, "/claims", map[string]any{
				"policyNo":    "POL-40404",
				"amount":      12000,
				"description": "Vehicle stolen from the driveway overnight.",
				"documents": []map[string]string{
					{"filename": "driveway.jpg", "contentBase64": base64.StdEncoding.EncodeToString(photo)},
				},
			})
			rr := testutil.DoRequest(router, req)
			testutil.AssertStatus(t, rr, http.StatusCreated)
			resp := testutil.UnmarshalResponse[submitted](t, rr)
			claimID = resp.ID

			testutil.Then(t, "the claim is scored and pending review", func(t *testing.T) {
				assert.Equal(t, models.StatusPending, resp.Claim.Status)
				assert.Equal(t, 55, resp.Claim.RiskScore)
				assert.Equal(t, models.RiskMedium, resp.Claim.RiskLabel)
				require.Len(t, resp.Claim.Documents, 1)
				assert.Equal(t, models.ForgeryPassed, resp.Claim.Documents[0].ForgeryCheck)
				assert.Equal(t, documents.DownloadPath(claimID, 0), resp.Claim.Documents[0].URL)
			})

			testutil.Then(t, "the photo can be downloaded again", func(t *testing.T) {
				rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, documents.DownloadPath(claimID, 0)))
				testutil.AssertStatusOK(t, rr)
				assert.Equal(t, photo, rr.Body.Bytes())
			})
		})

		testutil.When(t, "a signed-in investigator escalates and comments", func(t *testing.T) {
			req := testutil.NewJSONRequest(t, http.MethodPut, "/claims/"+claimID+"/status", map[string]string{"status": "Investigation"})
			testutil.AssertStatusOK(t, testutil.DoRequest(router, req))

			req = testutil.WithActor(
				testutil.NewJSONRequest(t, http.MethodPost, "/claims/"+claimID+"/comments", map[string]string{"text": "Requested the police report."}),
				"Jordan Lee", "https://placehold.co/64x64.png",
			)
			rr := testutil.DoRequest(router, req)
			testutil.AssertStatusOK(t, rr)
			claim := testutil.UnmarshalResponse[models.Claim](t, rr)

			testutil.Then(t, "the comment carries the investigator's name", func(t *testing.T) {
				require.Len(t, claim.Comments, 1)
				assert.Equal(t, "Jordan Lee", claim.Comments[0].Author)
				assert.Equal(t, models.StatusInvestigation, claim.Status)
			})

			testutil.Then(t, "the activity feed records each step", func(t *testing.T) {
				rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/claims/"+claimID+"/activity"))
				testutil.AssertStatusOK(t, rr)
				feed := testutil.UnmarshalResponse[activityFeed](t, rr)
				require.Len(t, feed.Events, 3)
				assert.Equal(t, activity.ActionClaimSubmitted, feed.Events[0].Action)
				assert.Equal(t, activity.ActionStatusChanged, feed.Events[1].Action)
				assert.Equal(t, activity.ActionCommentAdded, feed.Events[2].Action)
				assert.Equal(t, "Jordan Lee", feed.Events[2].Actor)
			})
		})

		testutil.When(t, "the explanation is requested", func(t *testing.T) {
			rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/claims/"+claimID+"/explanation"))
			testutil.AssertStatusOK(t, rr)
			res := testutil.UnmarshalResponse[service.ExplanationResult](t, rr)

			testutil.Then(t, "it is generated from the claim's risk", func(t *testing.T) {
				assert.False(t, res.Degraded)
				assert.Contains(t, res.Explanation, "rated Medium risk with a score of 55")
			})
		})

		testutil.When(t, "the dashboard is loaded", func(t *testing.T) {
			rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/dashboard/stats"))
			testutil.AssertStatusOK(t, rr)
			stats := testutil.UnmarshalResponse[service.Stats](t, rr)

			testutil.Then(t, "it counts the claim under investigation", func(t *testing.T) {
				assert.Equal(t, 1, stats.Total)
				assert.Equal(t, 1, stats.Investigation)
				assert.Zero(t, stats.HighRisk)
			})
		})
	})
}
