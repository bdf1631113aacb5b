package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"claimsight/internal/activity"
	"claimsight/internal/claims/models"
	"claimsight/internal/claims/triage"
	dErrors "claimsight/pkg/domain-errors"
	"claimsight/pkg/requestcontext"
)

// SetStatus moves a claim to status. Any status may follow any other;
// setting the current status is accepted and changes nothing.
func (s *Service) SetStatus(ctx context.Context, id string, status models.Status) (*models.Claim, error) {
	if !status.IsValid() {
		return nil, dErrors.Validation("invalid status", map[string]string{
			"status": "must be one of Pending, Investigation, Approved, Rejected",
		})
	}

	unlock := s.locks.Lock(id)
	defer unlock()

	claim, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	from := claim.Status
	if from == status {
		return claim, nil
	}

	to, err := triage.Transition(claim.ID, from, status)
	if err != nil {
		return nil, err
	}
	claim.ApplyStatus(to)
	if err := s.claims.Update(ctx, claim); err != nil {
		return nil, translateStoreError(err, "failed to update claim")
	}

	actor := s.actorName(ctx)
	s.metrics.IncrementStatusTransition(string(from), string(to))
	s.logger.InfoContext(ctx, "claim status changed",
		"claim_id", claim.ID,
		"from", from,
		"to", to,
		"actor", actor,
	)
	s.emit(ctx, claim.ID, activity.ActionStatusChanged, actor, map[string]string{
		"from": string(from),
		"to":   string(to),
	})
	return claim, nil
}

// AddComment appends an investigator note. Blank text is ignored and the
// claim is returned unchanged.
func (s *Service) AddComment(ctx context.Context, id, text string) (*models.Claim, error) {
	text = strings.TrimSpace(text)

	unlock := s.locks.Lock(id)
	defer unlock()

	claim, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if text == "" {
		return claim, nil
	}

	author, err := s.identity.Current(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve comment author")
	}
	comment := models.Comment{
		ID:        uuid.NewString(),
		Author:    author.Name,
		AvatarURL: author.AvatarURL,
		Text:      text,
		Timestamp: requestcontext.Now(ctx),
	}
	claim.AppendComment(comment)
	if err := s.claims.Update(ctx, claim); err != nil {
		return nil, translateStoreError(err, "failed to update claim")
	}

	s.metrics.IncrementComments()
	s.logger.InfoContext(ctx, "claim comment added",
		"claim_id", claim.ID,
		"comment_id", comment.ID,
		"author", comment.Author,
	)
	s.emit(ctx, claim.ID, activity.ActionCommentAdded, comment.Author, map[string]string{
		"commentId": comment.ID,
	})
	return claim, nil
}

func (s *Service) actorName(ctx context.Context) string {
	p, err := s.identity.Current(ctx)
	if err != nil {
		return ""
	}
	return p.Name
}
