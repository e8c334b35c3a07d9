// Package submission drives a listing draft from editing to a persisted
// listing, asking the seller to confirm when only warnings remain.
package submission

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/compraventa/marketplace-service/internal/listing/domain"
	"github.com/google/uuid"
)

type State string

const (
	StateEditing           State = "editing"
	StateValidating        State = "validating"
	StateBlocked           State = "blocked"
	StateNeedsConfirmation State = "needs_confirmation"
	StateAccepted          State = "accepted"
)

var ErrInvalidTransition = errors.New("invalid submission transition")

// Validator checks drafts. It is satisfied by validation.Orchestrator.
type Validator interface {
	ValidateListing(ctx context.Context, d domain.Draft) domain.Verdict
	CheckField(d domain.Draft, field string) []string
}

// Persister turns an accepted draft into a stored listing and returns its ID.
// Persisting the same submission ID twice must yield the same listing.
type Persister interface {
	Persist(ctx context.Context, submissionID, ownerID string, d domain.Draft) (string, error)
}

// Flow is one seller's attempt to publish a listing.
type Flow struct {
	ID        string          `json:"id"`
	OwnerID   string          `json:"owner_id"`
	State     State           `json:"state"`
	Draft     domain.Draft    `json:"draft"`
	Verdict   *domain.Verdict `json:"verdict,omitempty"`
	ListingID string          `json:"listing_id,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func New(ownerID string, d domain.Draft) *Flow {
	now := time.Now().UTC()
	return &Flow{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		State:     StateEditing,
		Draft:     d,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (f *Flow) transitionError(op string) error {
	return fmt.Errorf("%w: %s from %s", ErrInvalidTransition, op, f.State)
}

// Edit replaces the draft and drops any previous verdict.
func (f *Flow) Edit(d domain.Draft) error {
	switch f.State {
	case StateEditing, StateBlocked, StateNeedsConfirmation:
	default:
		return f.transitionError("edit")
	}
	f.Draft = d
	f.Verdict = nil
	f.State = StateEditing
	f.touch()
	return nil
}

// CheckField reports the problems value would have in field. The flow is
// left untouched.
func (f *Flow) CheckField(v Validator, field, value string) []string {
	return v.CheckField(f.Draft.WithField(field, value), field)
}

// Submit validates the current draft from scratch. A clean draft is
// persisted right away; one with only warnings waits for Confirm.
func (f *Flow) Submit(ctx context.Context, v Validator, p Persister) error {
	if f.State != StateEditing && f.State != StateBlocked {
		return f.transitionError("submit")
	}
	f.State = StateValidating
	verdict := v.ValidateListing(ctx, f.Draft)
	f.Verdict = &verdict
	f.touch()

	switch {
	case !verdict.Valid:
		f.State = StateBlocked
		return nil
	case len(verdict.Warnings) > 0:
		f.State = StateNeedsConfirmation
		return nil
	}
	return f.accept(ctx, p, StateEditing)
}

// Confirm accepts a draft whose only findings were warnings.
func (f *Flow) Confirm(ctx context.Context, p Persister) error {
	if f.State != StateNeedsConfirmation {
		return f.transitionError("confirm")
	}
	return f.accept(ctx, p, StateNeedsConfirmation)
}

// Revise returns to editing so the seller can improve the draft.
func (f *Flow) Revise() error {
	if f.State != StateNeedsConfirmation {
		return f.transitionError("revise")
	}
	f.State = StateEditing
	f.Verdict = nil
	f.touch()
	return nil
}

func (f *Flow) accept(ctx context.Context, p Persister, onFailure State) error {
	id, err := p.Persist(ctx, f.ID, f.OwnerID, f.Draft)
	if err != nil {
		f.State = onFailure
		f.touch()
		return fmt.Errorf("persist submission %s: %w", f.ID, err)
	}
	f.ListingID = id
	f.State = StateAccepted
	f.touch()
	return nil
}

func (f *Flow) touch() { f.UpdatedAt = time.Now().UTC() }

// Clone returns a deep copy of f.
func (f *Flow) Clone() *Flow {
	c := *f
	if f.Verdict != nil {
		v := *f.Verdict
		v.Errors = append([]domain.FieldError(nil), f.Verdict.Errors...)
		v.Warnings = append([]string(nil), f.Verdict.Warnings...)
		c.Verdict = &v
	}
	if f.Draft.Images != nil {
		c.Draft.Images = append([]domain.Image(nil), f.Draft.Images...)
	}
	return &c
}
