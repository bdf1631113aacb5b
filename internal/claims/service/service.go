package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"claimsight/internal/activity"
	"claimsight/internal/analysis"
	"claimsight/internal/claims/explain"
	"claimsight/internal/claims/metrics"
	"claimsight/internal/claims/models"
	"claimsight/internal/documents"
	"claimsight/internal/identity"
	dErrors "claimsight/pkg/domain-errors"
	"claimsight/pkg/platform/sentinel"
	"claimsight/pkg/requestcontext"
)

// ClaimStore is the owning collection of claim records.
type ClaimStore interface {
	Add(ctx context.Context, claim *models.Claim) error
	Update(ctx context.Context, claim *models.Claim) error
	FindByID(ctx context.Context, id string) (*models.Claim, error)
	List(ctx context.Context) ([]*models.Claim, error)
}

// Analyzer runs the hosted-model operations.
type Analyzer interface {
	DetectDocumentForgery(ctx context.Context, in analysis.ForgeryInput) (*analysis.ForgeryResult, error)
	AssessClaimRisk(ctx context.Context, in analysis.RiskInput) (*analysis.RiskAssessment, error)
	GetFraudExplanation(ctx context.Context, in analysis.ExplanationInput) (*analysis.Explanation, error)
}

type DocumentStore interface {
	Put(ctx context.Context, obj documents.Object) (string, error)
}

type IdentityProvider interface {
	Current(ctx context.Context) (models.Person, error)
}

type GeoTagger interface {
	Current(ctx context.Context) (models.GeoTag, error)
}

// ActivityJournal records claim activity. Emit never fails the caller.
type ActivityJournal interface {
	Emit(ctx context.Context, event activity.Event)
	List(ctx context.Context, claimID string, actions ...activity.Action) ([]activity.Event, error)
}

type ExplanationCache interface {
	Explain(ctx context.Context, key string, generate explain.GenerateFunc) (string, error)
}

const defaultMaxConcurrentChecks = 4

// Service orchestrates claim submission, triage and review.
type Service struct {
	claims    ClaimStore
	analyzer  Analyzer
	documents DocumentStore
	identity  IdentityProvider
	geo       GeoTagger
	journal   ActivityJournal
	explainer ExplanationCache

	maxConcurrentChecks int
	locks               keyedMutex

	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithDocumentStore(store DocumentStore) Option {
	return func(s *Service) {
		s.documents = store
	}
}

func WithIdentity(provider IdentityProvider) Option {
	return func(s *Service) {
		s.identity = provider
	}
}

func WithGeoTagger(geo GeoTagger) Option {
	return func(s *Service) {
		s.geo = geo
	}
}

func WithActivityJournal(journal ActivityJournal) Option {
	return func(s *Service) {
		s.journal = journal
	}
}

func WithExplanationCache(cache ExplanationCache) Option {
	return func(s *Service) {
		s.explainer = cache
	}
}

// WithMaxConcurrentChecks bounds the per-submission forgery fan-out.
func WithMaxConcurrentChecks(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxConcurrentChecks = n
		}
	}
}

// New constructs a Service. Unset collaborators fall back to the mock
// investigator, the fixed geo tag and placeholder document links.
func New(claims ClaimStore, analyzer Analyzer, opts ...Option) *Service {
	s := &Service{
		claims:              claims,
		analyzer:            analyzer,
		documents:           documents.Placeholder{},
		identity:            identity.NewStatic(identity.DefaultPerson),
		geo:                 identity.FixedGeoTagger{Location: identity.DefaultGeoTag},
		maxConcurrentChecks: defaultMaxConcurrentChecks,
		logger:              slog.Default(),
		tracer:              otel.Tracer("claimsight/claims"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns one claim.
func (s *Service) Get(ctx context.Context, id string) (*models.Claim, error) {
	claim, err := s.claims.FindByID(ctx, id)
	if err != nil {
		return nil, translateStoreError(err, "failed to load claim")
	}
	return claim, nil
}

// ListFilter narrows the claims list. Zero values match everything.
type ListFilter struct {
	Status    models.Status
	RiskLabel models.RiskLabel
}

func (f ListFilter) matches(c *models.Claim) bool {
	if f.Status != "" && c.Status != f.Status {
		return false
	}
	if f.RiskLabel != "" && c.RiskLabel != f.RiskLabel {
		return false
	}
	return true
}

// List returns claims newest-first.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]*models.Claim, error) {
	all, err := s.claims.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list claims")
	}
	out := make([]*models.Claim, 0, len(all))
	for _, c := range all {
		if filter.matches(c) {
			out = append(out, c)
		}
	}
	return out, nil
}

// Stats summarizes the claim book for the dashboard.
type Stats struct {
	Total         int                      `json:"totalClaims"`
	HighRisk      int                      `json:"highRiskAlerts"`
	Pending       int                      `json:"pending"`
	Investigation int                      `json:"investigation"`
	Approved      int                      `json:"approved"`
	Rejected      int                      `json:"rejected"`
	Distribution  map[models.RiskLabel]int `json:"riskDistribution"`
}

func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	all, err := s.claims.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list claims")
	}
	st := &Stats{Distribution: make(map[models.RiskLabel]int, len(models.RiskLabels))}
	for _, l := range models.RiskLabels {
		st.Distribution[l] = 0
	}
	for _, c := range all {
		st.Total++
		st.Distribution[c.RiskLabel]++
		if c.RiskLabel == models.RiskHigh {
			st.HighRisk++
		}
		switch c.Status {
		case models.StatusPending:
			st.Pending++
		case models.StatusInvestigation:
			st.Investigation++
		case models.StatusApproved:
			st.Approved++
		case models.StatusRejected:
			st.Rejected++
		}
	}
	return st, nil
}

// Activity returns the journal entries for a known claim.
func (s *Service) Activity(ctx context.Context, id string) ([]activity.Event, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	if s.journal == nil {
		return []activity.Event{}, nil
	}
	events, err := s.journal.List(ctx, id)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load claim activity")
	}
	return events, nil
}

func (s *Service) emit(ctx context.Context, claimID string, action activity.Action, actor string, details map[string]string) {
	if s.journal == nil {
		return
	}
	s.journal.Emit(ctx, activity.Event{
		ClaimID:   claimID,
		Action:    action,
		Actor:     actor,
		RequestID: requestcontext.RequestID(ctx),
		Details:   details,
	})
}

func translateStoreError(err error, message string) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "claim not found")
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.New(dErrors.CodeConflict, "claim id already exists")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, message)
	}
}

// translateAnalysisError keeps caller-facing validation errors and hides
// provider detail behind a retry-able model error.
func translateAnalysisError(err error) error {
	var me *analysis.ModelError
	if errors.As(err, &me) {
		return dErrors.Wrap(err, dErrors.CodeModel, "claim analysis failed, please retry")
	}
	if dErrors.HasCode(err, dErrors.CodeValidation) {
		return err
	}
	return dErrors.Wrap(err, dErrors.CodeModel, "claim analysis failed, please retry")
}

// keyedMutex serializes read-modify-write cycles per claim id.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyedEntry
}

type keyedEntry struct {
	mu   sync.Mutex
	refs int
}

func (k *keyedMutex) Lock(key string) func() {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[string]*keyedEntry)
	}
	e, ok := k.locks[key]
	if !ok {
		e = &keyedEntry{}
		k.locks[key] = e
	}
	e.refs++
	k.mu.Unlock()

	e.mu.Lock()
	return func() {
		e.mu.Unlock()
		k.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
