package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"claimsight/internal/activity"
	"claimsight/internal/analysis"
	"claimsight/internal/claims/explain"
	"claimsight/internal/claims/models"
	"claimsight/internal/claims/service/mocks"
	"claimsight/internal/claims/store"
	"claimsight/internal/documents"
	dErrors "claimsight/pkg/domain-errors"
)

type ServiceSuite struct {
	suite.Suite
	ctx      context.Context
	ctrl     *gomock.Controller
	analyzer *mocks.MockAnalyzer
	journal  *mocks.MockActivityJournal
	store    *store.InMemory
	service  *Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.ctrl = gomock.NewController(s.T())
	s.analyzer = mocks.NewMockAnalyzer(s.ctrl)
	s.journal = mocks.NewMockActivityJournal(s.ctrl)
	s.store = store.NewInMemory()
	s.service = New(s.store, s.analyzer,
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithActivityJournal(s.journal),
	)
}

func (s *ServiceSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *ServiceSuite) seedClaim(id string, comments ...models.Comment) *models.Claim {
	claim, err := models.NewClaim(id, models.ClaimForm{
		PolicyNo:    "POL-55555",
		Amount:      900,
		Description: "Scratched door panel in car park",
	}, 30, models.RiskLow, []models.Document{
		{Name: "door.jpg", URL: "#", ForgeryCheck: models.ForgeryPassed},
		{Name: "quote.pdf", URL: "#", ForgeryCheck: models.ForgerySuspected},
	}, models.Person{Name: "Alex Doe"}, models.GeoTag{}, time.Now())
	s.Require().NoError(err)
	for _, c := range comments {
		claim.AppendComment(c)
	}
	s.Require().NoError(s.store.Add(s.ctx, claim))
	return claim
}

// trackedDocuments records which claims stored and removed files.
type trackedDocuments struct {
	*documents.InMemory
	mu       sync.Mutex
	claimIDs []string
	deleted  []string
}

func (d *trackedDocuments) Put(ctx context.Context, obj documents.Object) (string, error) {
	d.mu.Lock()
	if len(d.claimIDs) == 0 || d.claimIDs[len(d.claimIDs)-1] != obj.ClaimID {
		d.claimIDs = append(d.claimIDs, obj.ClaimID)
	}
	d.mu.Unlock()
	return d.InMemory.Put(ctx, obj)
}

func (d *trackedDocuments) DeleteClaim(ctx context.Context, claimID string) error {
	d.mu.Lock()
	d.deleted = append(d.deleted, claimID)
	d.mu.Unlock()
	return d.InMemory.DeleteClaim(ctx, claimID)
}

func exampleForm() models.ClaimForm {
	return models.ClaimForm{
		PolicyNo:    "POL-12345",
		Amount:      1500,
		Description: "Car window was broken overnight in parking lot.",
	}
}

func (s *ServiceSuite) TestSubmit() {
	s.Run("claim without documents uses the sentinel summary", func() {
		s.SetupTest()
		s.analyzer.EXPECT().AssessClaimRisk(gomock.Any(), analysis.RiskInput{
			ClaimDetails:    "Policy: POL-12345, Amount: 1500, Description: Car window was broken overnight in parking lot.",
			DocumentResults: NoDocumentsSummary,
		}).Return(&analysis.RiskAssessment{RiskScore: 72, RiskLabel: "High", Rationale: "stub"}, nil)
		s.journal.EXPECT().Emit(gomock.Any(), gomock.Any()).Do(func(_ context.Context, e activity.Event) {
			s.Equal(activity.ActionClaimSubmitted, e.Action)
			s.Equal("72", e.Details["riskScore"])
		})

		claim, err := s.service.Submit(s.ctx, exampleForm())
		s.Require().NoError(err)

		s.True(strings.HasPrefix(claim.ID, models.ClaimIDPrefix))
		s.Equal(models.StatusPending, claim.Status)
		s.Equal(72, claim.RiskScore)
		s.Equal(models.RiskHigh, claim.RiskLabel)
		s.NotNil(claim.Documents)
		s.Empty(claim.Documents)
		s.NotNil(claim.Comments)
		s.Empty(claim.Comments)
		s.Equal("Alex Doe", claim.Claimant.Name)

		stored, err := s.store.FindByID(s.ctx, claim.ID)
		s.Require().NoError(err)
		s.Equal(claim.RiskScore, stored.RiskScore)
	})

	s.Run("documents keep submission order and feed one report", func() {
		s.SetupTest()
		form := exampleForm()
		form.Documents = []models.Upload{
			{Filename: "a.png", Content: []byte("clean photo")},
			{Filename: "b.pdf", Content: []byte("FORGED invoice")},
			{Filename: "c.jpg", Content: []byte("clean receipt")},
		}
		s.analyzer.EXPECT().DetectDocumentForgery(gomock.Any(), gomock.Any()).Times(3).
			DoAndReturn(func(_ context.Context, in analysis.ForgeryInput) (*analysis.ForgeryResult, error) {
				_, data, err := analysis.ParseDataURI(in.DocumentDataURI)
				s.Require().NoError(err)
				if strings.HasPrefix(string(data), "FORGED") {
					// finish last to prove order does not depend on completion
					time.Sleep(20 * time.Millisecond)
					return &analysis.ForgeryResult{ForgerySuspected: true, Reason: "edited totals"}, nil
				}
				return &analysis.ForgeryResult{Reason: "consistent"}, nil
			})
		s.analyzer.EXPECT().AssessClaimRisk(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, in analysis.RiskInput) (*analysis.RiskAssessment, error) {
				s.Equal("a.png: Passed - consistent\nb.pdf: Suspected - edited totals\nc.jpg: Passed - consistent", in.DocumentResults)
				return &analysis.RiskAssessment{RiskScore: 55, RiskLabel: "Medium"}, nil
			})
		s.journal.EXPECT().Emit(gomock.Any(), gomock.Any())

		claim, err := s.service.Submit(s.ctx, form)
		s.Require().NoError(err)

		s.Require().Len(claim.Documents, 3)
		s.Equal("a.png", claim.Documents[0].Name)
		s.Equal("b.pdf", claim.Documents[1].Name)
		s.Equal("c.jpg", claim.Documents[2].Name)
		s.Equal([]models.ForgeryCheck{models.ForgeryPassed, models.ForgerySuspected, models.ForgeryPassed}, claim.ForgeryChecks())
		for _, d := range claim.Documents {
			s.Equal("#", d.URL)
		}
	})

	s.Run("invalid form never reaches the analyzer", func() {
		s.SetupTest()
		form := exampleForm()
		form.PolicyNo = "12345"
		form.Description = "short"

		_, err := s.service.Submit(s.ctx, form)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
		fields := dErrors.FieldsOf(err)
		s.Contains(fields, "policyNo")
		s.Contains(fields, "description")
	})

	s.Run("forgery check failure stores nothing", func() {
		s.SetupTest()
		form := exampleForm()
		form.Documents = []models.Upload{
			{Filename: "a.png", Content: []byte("one")},
			{Filename: "b.png", Content: []byte("two")},
		}
		s.analyzer.EXPECT().DetectDocumentForgery(gomock.Any(), gomock.Any()).AnyTimes().
			Return(nil, &analysis.ModelError{Op: analysis.OpDetectForgery, Err: errors.New("provider unavailable")})

		_, err := s.service.Submit(s.ctx, form)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeModel))

		all, err := s.store.List(s.ctx)
		s.Require().NoError(err)
		s.Empty(all)
	})

	s.Run("risk assessment failure stores nothing", func() {
		s.SetupTest()
		s.analyzer.EXPECT().AssessClaimRisk(gomock.Any(), gomock.Any()).
			Return(nil, &analysis.ModelError{Op: analysis.OpAssessRisk, Err: errors.New("schema violation")})

		_, err := s.service.Submit(s.ctx, exampleForm())
		s.True(dErrors.HasCode(err, dErrors.CodeModel))

		all, _ := s.store.List(s.ctx)
		s.Empty(all)
	})

	s.Run("unknown risk label is a model fault", func() {
		s.SetupTest()
		s.analyzer.EXPECT().AssessClaimRisk(gomock.Any(), gomock.Any()).
			Return(&analysis.RiskAssessment{RiskScore: 50, RiskLabel: "Severe"}, nil)

		_, err := s.service.Submit(s.ctx, exampleForm())
		s.True(dErrors.HasCode(err, dErrors.CodeModel))
	})

	s.Run("documents of an unsaved claim are removed", func() {
		s.SetupTest()
		docs := &trackedDocuments{InMemory: documents.NewInMemory()}
		who := mocks.NewMockIdentityProvider(s.ctrl)
		who.EXPECT().Current(gomock.Any()).Return(models.Person{}, errors.New("directory offline"))
		s.service = New(s.store, s.analyzer, WithDocumentStore(docs), WithIdentity(who))

		form := exampleForm()
		form.Documents = []models.Upload{
			{Filename: "a.png", Content: []byte("one")},
			{Filename: "b.png", Content: []byte("two")},
		}
		s.analyzer.EXPECT().DetectDocumentForgery(gomock.Any(), gomock.Any()).Times(2).
			Return(&analysis.ForgeryResult{}, nil)
		s.analyzer.EXPECT().AssessClaimRisk(gomock.Any(), gomock.Any()).
			Return(&analysis.RiskAssessment{RiskScore: 20, RiskLabel: "Low"}, nil)

		_, err := s.service.Submit(s.ctx, form)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))

		s.Require().Len(docs.claimIDs, 1)
		s.Equal(docs.claimIDs, docs.deleted)
		for i := range form.Documents {
			_, err := docs.Get(s.ctx, docs.claimIDs[0], i)
			s.ErrorIs(err, documents.ErrNotFound)
		}
		all, err := s.store.List(s.ctx)
		s.Require().NoError(err)
		s.Empty(all)
	})

	s.Run("forgery checks respect the concurrency bound", func() {
		s.SetupTest()
		s.service = New(s.store, s.analyzer, WithMaxConcurrentChecks(2))
		form := exampleForm()
		for i := range models.MaxDocuments {
			form.Documents = append(form.Documents, models.Upload{
				Filename: fmt.Sprintf("doc-%d.png", i),
				Content:  []byte("content"),
			})
		}

		var inFlight, peak int32
		s.analyzer.EXPECT().DetectDocumentForgery(gomock.Any(), gomock.Any()).Times(models.MaxDocuments).
			DoAndReturn(func(context.Context, analysis.ForgeryInput) (*analysis.ForgeryResult, error) {
				n := atomic.AddInt32(&inFlight, 1)
				for {
					p := atomic.LoadInt32(&peak)
					if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
						break
					}
				}
				time.Sleep(10 * time.Millisecond)
				atomic.AddInt32(&inFlight, -1)
				return &analysis.ForgeryResult{}, nil
			})
		s.analyzer.EXPECT().AssessClaimRisk(gomock.Any(), gomock.Any()).
			Return(&analysis.RiskAssessment{RiskScore: 10, RiskLabel: "Low"}, nil)

		_, err := s.service.Submit(s.ctx, form)
		s.Require().NoError(err)
		s.LessOrEqual(atomic.LoadInt32(&peak), int32(2))
	})
}

func (s *ServiceSuite) TestAssess() {
	s.Run("scores a form without storing it", func() {
		s.SetupTest()
		form := exampleForm()
		form.Documents = []models.Upload{{Filename: "window.jpg", Content: []byte("photo")}}
		s.analyzer.EXPECT().DetectDocumentForgery(gomock.Any(), gomock.Any()).
			Return(&analysis.ForgeryResult{ForgerySuspected: true, Reason: "cloned glass"}, nil)
		s.analyzer.EXPECT().AssessClaimRisk(gomock.Any(), gomock.Any()).
			Return(&analysis.RiskAssessment{RiskScore: 81, RiskLabel: "high", Rationale: "suspected photo"}, nil)

		res, err := s.service.Assess(s.ctx, form)
		s.Require().NoError(err)

		s.Equal(81, res.RiskScore)
		s.Equal(models.RiskHigh, res.RiskLabel)
		s.Equal("suspected photo", res.Rationale)
		s.Equal("window.jpg: Suspected - cloned glass", res.DocumentReport)
		s.Require().Len(res.Documents, 1)
		s.Equal(models.ForgerySuspected, res.Documents[0].ForgeryCheck)

		all, err := s.store.List(s.ctx)
		s.Require().NoError(err)
		s.Empty(all)
	})

	s.Run("invalid form never reaches the model", func() {
		s.SetupTest()
		form := exampleForm()
		form.PolicyNo = "12345"

		_, err := s.service.Assess(s.ctx, form)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func (s *ServiceSuite) TestSetStatus() {
	s.Run("new status is visible immediately", func() {
		s.SetupTest()
		claim := s.seedClaim("CLM-STATUS1")
		s.journal.EXPECT().Emit(gomock.Any(), gomock.Any()).Do(func(_ context.Context, e activity.Event) {
			s.Equal(activity.ActionStatusChanged, e.Action)
			s.Equal("Pending", e.Details["from"])
			s.Equal("Approved", e.Details["to"])
		})

		updated, err := s.service.SetStatus(s.ctx, claim.ID, models.StatusApproved)
		s.Require().NoError(err)
		s.Equal(models.StatusApproved, updated.Status)

		stored, err := s.store.FindByID(s.ctx, claim.ID)
		s.Require().NoError(err)
		s.Equal(models.StatusApproved, stored.Status)
	})

	s.Run("every status may follow every other", func() {
		s.SetupTest()
		claim := s.seedClaim("CLM-STATUS2")
		s.journal.EXPECT().Emit(gomock.Any(), gomock.Any()).AnyTimes()

		path := []models.Status{
			models.StatusRejected, models.StatusPending, models.StatusInvestigation,
			models.StatusApproved, models.StatusRejected, models.StatusInvestigation,
		}
		for _, next := range path {
			updated, err := s.service.SetStatus(s.ctx, claim.ID, next)
			s.Require().NoError(err)
			s.Equal(next, updated.Status)
		}
	})

	s.Run("same status is a no-op", func() {
		s.SetupTest()
		claim := s.seedClaim("CLM-STATUS3")

		updated, err := s.service.SetStatus(s.ctx, claim.ID, models.StatusPending)
		s.Require().NoError(err)
		s.Equal(models.StatusPending, updated.Status)
	})

	s.Run("invalid status is rejected", func() {
		s.SetupTest()
		claim := s.seedClaim("CLM-STATUS4")

		_, err := s.service.SetStatus(s.ctx, claim.ID, models.Status("Closed"))
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("unknown claim is not found", func() {
		s.SetupTest()
		_, err := s.service.SetStatus(s.ctx, "CLM-MISSING", models.StatusApproved)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *ServiceSuite) TestAddComment() {
	s.Run("blank text leaves the claim unchanged", func() {
		s.SetupTest()
		claim := s.seedClaim("CLM-COMMENT1")

		updated, err := s.service.AddComment(s.ctx, claim.ID, "   \n\t")
		s.Require().NoError(err)
		s.Empty(updated.Comments)
	})

	s.Run("comment is appended after existing ones", func() {
		s.SetupTest()
		prior := models.Comment{ID: "c-0", Author: "Sam", Text: "first look", Timestamp: time.Now()}
		claim := s.seedClaim("CLM-COMMENT2", prior)
		s.journal.EXPECT().Emit(gomock.Any(), gomock.Any()).Do(func(_ context.Context, e activity.Event) {
			s.Equal(activity.ActionCommentAdded, e.Action)
			s.Equal("Alex Doe", e.Actor)
		})

		updated, err := s.service.AddComment(s.ctx, claim.ID, "  Requested repair invoice. ")
		s.Require().NoError(err)

		s.Require().Len(updated.Comments, 2)
		s.Equal(prior, updated.Comments[0])
		added := updated.Comments[1]
		s.Equal("Requested repair invoice.", added.Text)
		s.Equal("Alex Doe", added.Author)
		s.Equal("https://placehold.co/100x100.png", added.AvatarURL)
		s.NotEmpty(added.ID)
	})

	s.Run("concurrent comments are all kept", func() {
		s.SetupTest()
		s.service = New(s.store, s.analyzer)
		claim := s.seedClaim("CLM-COMMENT3")

		const writers = 20
		var wg sync.WaitGroup
		for i := range writers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := s.service.AddComment(s.ctx, claim.ID, fmt.Sprintf("note %d", i))
				s.NoError(err)
			}()
		}
		wg.Wait()

		stored, err := s.store.FindByID(s.ctx, claim.ID)
		s.Require().NoError(err)
		s.Len(stored.Comments, writers)
	})

	s.Run("unknown claim is not found", func() {
		s.SetupTest()
		_, err := s.service.AddComment(s.ctx, "CLM-MISSING", "hello")
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *ServiceSuite) TestExplain() {
	s.Run("inputs mirror the claim", func() {
		s.SetupTest()
		claim := s.seedClaim("CLM-EXPLAIN1")
		s.analyzer.EXPECT().GetFraudExplanation(gomock.Any(), analysis.ExplanationInput{
			ClaimDetails:     claim.Description,
			RiskScore:        30,
			RiskLabel:        "Low",
			DocumentAnalysis: "Document forgery check: Passed, Suspected",
			ClaimHistory:     "No significant claim history found.",
		}).Return(&analysis.Explanation{Explanation: "Low value, consistent story."}, nil)

		res, err := s.service.Explain(s.ctx, claim.ID)
		s.Require().NoError(err)
		s.Equal("Low value, consistent story.", res.Explanation)
		s.False(res.Degraded)
	})

	s.Run("model failure degrades to a placeholder", func() {
		s.SetupTest()
		claim := s.seedClaim("CLM-EXPLAIN2")
		s.analyzer.EXPECT().GetFraudExplanation(gomock.Any(), gomock.Any()).
			Return(nil, &analysis.ModelError{Op: analysis.OpExplain, Err: errors.New("timeout")})

		res, err := s.service.Explain(s.ctx, claim.ID)
		s.Require().NoError(err)
		s.Equal(ExplanationUnavailable, res.Explanation)
		s.True(res.Degraded)
	})

	s.Run("cache answers by claim id", func() {
		s.SetupTest()
		cache := mocks.NewMockExplanationCache(s.ctrl)
		s.service = New(s.store, s.analyzer, WithExplanationCache(cache))
		claim := s.seedClaim("CLM-EXPLAIN3")
		cache.EXPECT().Explain(gomock.Any(), "CLM-EXPLAIN3", gomock.Any()).Return("from cache", nil)

		res, err := s.service.Explain(s.ctx, claim.ID)
		s.Require().NoError(err)
		s.Equal("from cache", res.Explanation)
	})

	s.Run("triage does not pay for a second explanation", func() {
		s.SetupTest()
		s.service = New(s.store, s.analyzer, WithExplanationCache(explain.New(explain.NewLRU(8, time.Minute))))
		claim := s.seedClaim("CLM-EXPLAIN4")
		s.analyzer.EXPECT().GetFraudExplanation(gomock.Any(), gomock.Any()).
			Return(&analysis.Explanation{Explanation: "Consistent story."}, nil).
			Times(1)

		first, err := s.service.Explain(s.ctx, claim.ID)
		s.Require().NoError(err)
		_, err = s.service.SetStatus(s.ctx, claim.ID, models.StatusInvestigation)
		s.Require().NoError(err)
		_, err = s.service.AddComment(s.ctx, claim.ID, "Asked for the repair quote.")
		s.Require().NoError(err)
		second, err := s.service.Explain(s.ctx, claim.ID)
		s.Require().NoError(err)

		s.Equal(first.Explanation, second.Explanation)
	})

	s.Run("unknown claim is not found", func() {
		s.SetupTest()
		_, err := s.service.Explain(s.ctx, "CLM-MISSING")
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *ServiceSuite) TestListAndStats() {
	s.SetupTest()
	s.service = New(s.store, s.analyzer)
	added, err := s.service.SeedDemo(s.ctx, time.Now())
	s.Require().NoError(err)
	s.Equal(len(demoClaims), added)

	s.Run("list is newest first", func() {
		all, err := s.service.List(s.ctx, ListFilter{})
		s.Require().NoError(err)
		s.Require().Len(all, len(demoClaims))
		s.Equal(demoClaims[0].id, all[0].ID)
		s.Equal(demoClaims[len(demoClaims)-1].id, all[len(all)-1].ID)
	})

	s.Run("filters combine", func() {
		high, err := s.service.List(s.ctx, ListFilter{RiskLabel: models.RiskHigh})
		s.Require().NoError(err)
		s.Len(high, 2)

		pendingHigh, err := s.service.List(s.ctx, ListFilter{Status: models.StatusPending, RiskLabel: models.RiskHigh})
		s.Require().NoError(err)
		s.Require().Len(pendingHigh, 1)
		s.Equal("CLM-DEMO-0003", pendingHigh[0].ID)
	})

	s.Run("stats count statuses and bands", func() {
		st, err := s.service.Stats(s.ctx)
		s.Require().NoError(err)
		s.Equal(5, st.Total)
		s.Equal(2, st.HighRisk)
		s.Equal(1, st.Approved)
		s.Equal(1, st.Rejected)
		s.Equal(2, st.Pending)
		s.Equal(1, st.Investigation)
		s.Equal(map[models.RiskLabel]int{models.RiskLow: 2, models.RiskMedium: 1, models.RiskHigh: 2}, st.Distribution)
	})

	s.Run("seeding again adds nothing", func() {
		again, err := s.service.SeedDemo(s.ctx, time.Now())
		s.Require().NoError(err)
		s.Zero(again)
	})
}

func (s *ServiceSuite) TestActivity() {
	s.SetupTest()
	claim := s.seedClaim("CLM-ACTIVITY1")
	events := []activity.Event{{ID: "e1", ClaimID: claim.ID, Action: activity.ActionClaimSubmitted}}
	s.journal.EXPECT().List(gomock.Any(), claim.ID).Return(events, nil)

	got, err := s.service.Activity(s.ctx, claim.ID)
	s.Require().NoError(err)
	s.Equal(events, got)

	_, err = s.service.Activity(s.ctx, "CLM-MISSING")
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}
