package validation

import (
	"context"
	"testing"

	"github.com/compraventa/marketplace-service/internal/listing/domain"
	"github.com/compraventa/marketplace-service/internal/location"
	"github.com/compraventa/marketplace-service/internal/moderation"
	"github.com/compraventa/marketplace-service/internal/platform/logger"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockRecorder struct {
	mock.Mock
}

func (m *mockRecorder) RecordVerdict(outcome string)       { m.Called(outcome) }
func (m *mockRecorder) RecordProfanity(field string)       { m.Called(field) }
func (m *mockRecorder) RecordImageRejection(reason string) { m.Called(reason) }

const longDescription = "Bicicleta de montaña rodado 29, cuadro de aluminio, frenos a disco hidráulicos."

func newOrchestrator(t *testing.T, rec Recorder) *Orchestrator {
	t.Helper()
	log := logger.NewNop()
	matcher, err := moderation.FromWordlist(moderation.DefaultWordlist(), log)
	require.NoError(t, err)
	return NewOrchestrator(matcher, location.Default(), NewMediaValidator(nil, log), rec, log)
}

func validDraft(t *testing.T) domain.Draft {
	t.Helper()
	return domain.Draft{
		Title:       "Bicicleta rodado 29",
		Description: longDescription,
		Price:       "$ 350.000",
		Category:    "Deportes",
		Condition:   "Muy bueno",
		Province:    "Buenos Aires",
		City:        "La Plata",
		PostalCode:  "1900",
		Images:      []domain.Image{jpegImage(t, "frente.jpg", 64<<10)},
	}
}

func TestValidateListingCleanDraftWithThreeImages(t *testing.T) {
	o := newOrchestrator(t, nil)
	d := validDraft(t)
	d.Images = []domain.Image{
		jpegImage(t, "1.jpg", 2<<20),
		jpegImage(t, "2.jpg", 3<<20),
		jpegImage(t, "3.jpg", 1<<20),
	}

	v := o.ValidateListing(context.Background(), d)

	assert.True(t, v.Valid)
	assert.Empty(t, v.Errors)
	assert.Empty(t, v.Warnings)
}

func TestValidateListingShortDescriptionWarns(t *testing.T) {
	o := newOrchestrator(t, nil)
	d := validDraft(t)
	d.Description = "Excelente estado, sin uso"
	require.Len(t, []rune(d.Description), 25)

	v := o.ValidateListing(context.Background(), d)

	assert.True(t, v.Valid)
	assert.Empty(t, v.Errors)
	assert.Equal(t, []string{MsgShortDescription}, v.Warnings)
}

func TestValidateListingShortTitleBlocks(t *testing.T) {
	o := newOrchestrator(t, nil)
	d := validDraft(t)
	d.Title = "Hi"

	v := o.ValidateListing(context.Background(), d)

	assert.False(t, v.Valid)
	assert.Equal(t, []domain.FieldError{
		{Field: domain.FieldTitle, Message: "El título debe tener al menos 5 caracteres"},
	}, v.Errors)
}

func TestValidateListingProfanityInDescription(t *testing.T) {
	rec := &mockRecorder{}
	rec.On("RecordProfanity", domain.FieldDescription).Once()
	rec.On("RecordVerdict", OutcomeBlocked).Once()
	o := newOrchestrator(t, rec)

	d := validDraft(t)
	d.Description = "Vendo la bici porque el vendedor anterior era un idiota"

	v := o.ValidateListing(context.Background(), d)

	assert.False(t, v.Valid)
	require.Len(t, v.Errors, 1)
	assert.Equal(t, domain.FieldDescription, v.Errors[0].Field)
	assert.Contains(t, v.Errors[0].Message, "Descripción: ")
	assert.Contains(t, v.Errors[0].Message, "idiota")
	rec.AssertExpectations(t)
}

func TestValidateListingEmptyTextFieldsInDeclarationOrder(t *testing.T) {
	o := newOrchestrator(t, nil)
	d := validDraft(t)
	d.Title = ""
	d.Description = ""

	v := o.ValidateListing(context.Background(), d)

	assert.False(t, v.Valid)
	require.Len(t, v.Errors, 2)
	assert.Equal(t, domain.FieldError{Field: domain.FieldTitle, Message: "El título es obligatorio"}, v.Errors[0])
	assert.Equal(t, domain.FieldError{Field: domain.FieldDescription, Message: "La descripción es obligatoria"}, v.Errors[1])
	assert.Equal(t, []string{MsgShortDescription}, v.Warnings)
}

func TestValidateListingImageErrorsFollowAttachmentOrder(t *testing.T) {
	rec := &mockRecorder{}
	rec.On("RecordImageRejection", ReasonType).Once()
	rec.On("RecordImageRejection", ReasonDecode).Once()
	rec.On("RecordVerdict", OutcomeBlocked).Once()
	o := newOrchestrator(t, rec)

	d := validDraft(t)
	d.Images = []domain.Image{
		jpegImage(t, "ok.jpg", 0),
		{Name: "doc.pdf", ContentType: "application/pdf", Data: []byte("%PDF-1.4")},
		pngImage(t, "ok.png"),
		{Name: "broken.png", ContentType: "image/png", Data: []byte("broken")},
	}

	v := o.ValidateListing(context.Background(), d)

	assert.Equal(t, []string{
		"Imagen 2: " + MsgImageType,
		"Imagen 4: " + MsgImageInvalid,
	}, v.Messages())
	rec.AssertExpectations(t)
}

func TestValidateListingIsIdempotent(t *testing.T) {
	o := newOrchestrator(t, nil)
	d := validDraft(t)
	d.Title = "Hi"
	d.Description = "sos un boludo"
	d.Price = "gratis"
	before := d

	first := o.ValidateListing(context.Background(), d)
	second := o.ValidateListing(context.Background(), d)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("verdicts differ (-first +second):\n%s", diff)
	}
	assert.Equal(t, before, d)
}

func TestValidateListingProfanityFollowsFormatError(t *testing.T) {
	o := newOrchestrator(t, nil)
	d := validDraft(t)
	d.Title = "tonto"
	d.Description = "sos un boludo"

	v := o.ValidateListing(context.Background(), d)

	fields := make([]string, 0, len(v.Errors))
	for _, e := range v.Errors {
		fields = append(fields, e.Field)
	}
	assert.Equal(t, []string{domain.FieldTitle, domain.FieldDescription, domain.FieldDescription}, fields)
	assert.Equal(t, "La descripción debe tener al menos 20 caracteres", v.Errors[1].Message)
	assert.Contains(t, v.Errors[2].Message, "boludo")
}

func TestCheckField(t *testing.T) {
	o := newOrchestrator(t, nil)
	d := validDraft(t)

	assert.Empty(t, o.CheckField(d, domain.FieldTitle))

	d.Title = "puto"
	msgs := o.CheckField(d, domain.FieldTitle)
	require.Len(t, msgs, 2)
	assert.Equal(t, "El título debe tener al menos 5 caracteres", msgs[0])
	assert.Contains(t, msgs[1], "Título: ")

	d.PostalCode = "12"
	assert.Equal(t, []string{"El código postal debe tener entre 4 y 8 dígitos"}, o.CheckField(d, domain.FieldPostalCode))
}
