package validation

import (
	"context"
	"fmt"

	"github.com/compraventa/marketplace-service/internal/listing/domain"
	"github.com/compraventa/marketplace-service/internal/location"
	"github.com/compraventa/marketplace-service/internal/moderation"
	"github.com/compraventa/marketplace-service/internal/platform/logger"
	"go.uber.org/zap"
)

const MsgShortDescription = "La descripción es muy corta. Una descripción más detallada ayuda a los compradores."

// Verdict outcomes reported to the Recorder.
const (
	OutcomeValid    = "valid"
	OutcomeWarnings = "warnings"
	OutcomeBlocked  = "blocked"
)

// Recorder receives validation outcomes for monitoring.
type Recorder interface {
	RecordVerdict(outcome string)
	RecordProfanity(field string)
	RecordImageRejection(reason string)
}

type nopRecorder struct{}

func (nopRecorder) RecordVerdict(string)        {}
func (nopRecorder) RecordProfanity(string)      {}
func (nopRecorder) RecordImageRejection(string) {}

var textFieldLabels = map[string]string{
	domain.FieldTitle:       "Título",
	domain.FieldDescription: "Descripción",
}

// Orchestrator combines the profanity matcher, field validators and media
// validator into one verdict. It never mutates the draft.
type Orchestrator struct {
	checker  moderation.Checker
	fields   *FieldValidator
	media    *MediaValidator
	recorder Recorder
	logger   *logger.Logger
}

func NewOrchestrator(checker moderation.Checker, dir location.Directory, media *MediaValidator, rec Recorder, log *logger.Logger) *Orchestrator {
	if rec == nil {
		rec = nopRecorder{}
	}
	return &Orchestrator{
		checker:  checker,
		fields:   NewFieldValidator(dir),
		media:    media,
		recorder: rec,
		logger:   log.Named("ValidationOrchestrator"),
	}
}

// ValidateListing produces a fresh verdict for d. Errors are ordered by field
// declaration; a text field's profanity error follows its format error, and
// image errors come last in attachment order.
func (o *Orchestrator) ValidateListing(ctx context.Context, d domain.Draft) domain.Verdict {
	errs := make([]domain.FieldError, 0)

	// Image decoding is the only slow step; start it before the text checks.
	mediaDone := make(chan []MediaResult, 1)
	go func() { mediaDone <- o.media.ValidateAll(ctx, d.Images) }()

	for _, field := range domain.FieldOrder {
		if msg := o.fields.Check(d, field); msg != "" {
			errs = append(errs, domain.FieldError{Field: field, Message: msg})
		}
		if msg := o.profanity(field, d.FieldValue(field)); msg != "" {
			errs = append(errs, domain.FieldError{Field: field, Message: msg})
		}
	}

	for i, res := range <-mediaDone {
		if res.Valid {
			continue
		}
		o.recorder.RecordImageRejection(res.Reason)
		errs = append(errs, domain.FieldError{
			Field:   domain.FieldImages,
			Message: fmt.Sprintf("Imagen %d: %s", i+1, res.Message),
		})
	}

	v := domain.Verdict{
		Valid:    len(errs) == 0,
		Errors:   errs,
		Warnings: Warnings(d),
	}

	outcome := OutcomeValid
	switch {
	case !v.Valid:
		outcome = OutcomeBlocked
	case len(v.Warnings) > 0:
		outcome = OutcomeWarnings
	}
	o.recorder.RecordVerdict(outcome)
	o.logger.Debug("Listing validated",
		zap.String("outcome", outcome),
		zap.Int("errors", len(v.Errors)),
		zap.Int("warnings", len(v.Warnings)),
		zap.Int("images", len(d.Images)))
	return v
}

// CheckField gives live feedback for a single field: its format error and,
// for title and description, its profanity error.
func (o *Orchestrator) CheckField(d domain.Draft, field string) []string {
	var out []string
	if msg := o.fields.Check(d, field); msg != "" {
		out = append(out, msg)
	}
	if msg := o.profanity(field, d.FieldValue(field)); msg != "" {
		out = append(out, msg)
	}
	return out
}

func (o *Orchestrator) profanity(field, text string) string {
	label, ok := textFieldLabels[field]
	if !ok {
		return ""
	}
	res := o.checker.CheckText(text)
	if res.Valid {
		return ""
	}
	o.recorder.RecordProfanity(field)
	return label + ": " + res.Message
}

// Warnings computes the advisory warnings of d independently of any error.
func Warnings(d domain.Draft) []string {
	out := make([]string, 0, 1)
	if runeLen(d.Description) < RecommendedDescriptionLength {
		out = append(out, MsgShortDescription)
	}
	return out
}
