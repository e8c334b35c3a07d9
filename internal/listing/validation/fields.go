// Package validation holds the pure listing validators and the orchestrator
// that combines them into a single verdict.
package validation

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/compraventa/marketplace-service/internal/listing/domain"
	"github.com/compraventa/marketplace-service/internal/location"
)

const (
	TitleMinLength       = 5
	TitleMaxLength       = 100
	DescriptionMinLength = 20
	DescriptionMaxLength = 2000
	// RecommendedDescriptionLength is the length below which a warning is
	// raised even though the description is accepted.
	RecommendedDescriptionLength = 50
	MaxPrice                     = 999_999_999
	MinImages                    = 1
	MaxImages                    = 10
)

var postalCodePattern = regexp.MustCompile(`^\d{4,8}$`)

func runeLen(s string) int { return utf8.RuneCountInString(strings.TrimSpace(s)) }

func ValidateTitle(title string) string {
	switch n := runeLen(title); {
	case n == 0:
		return "El título es obligatorio"
	case n < TitleMinLength:
		return "El título debe tener al menos 5 caracteres"
	case n > TitleMaxLength:
		return "El título no puede exceder los 100 caracteres"
	}
	return ""
}

func ValidateDescription(description string) string {
	switch n := runeLen(description); {
	case n == 0:
		return "La descripción es obligatoria"
	case n < DescriptionMinLength:
		return "La descripción debe tener al menos 20 caracteres"
	case n > DescriptionMaxLength:
		return "La descripción no puede exceder los 2000 caracteres"
	}
	return ""
}

func ValidatePrice(price string) string {
	if strings.TrimSpace(price) == "" {
		return "El precio es obligatorio"
	}
	v, err := domain.ParsePrice(price)
	if err != nil {
		return "El precio debe ser un número válido"
	}
	if v <= 0 {
		return "El precio debe ser mayor a 0"
	}
	if v > MaxPrice {
		return "El precio es demasiado alto"
	}
	return ""
}

func ValidateCategory(category string) string {
	if strings.TrimSpace(category) == "" {
		return "La categoría es obligatoria"
	}
	if !domain.IsCategory(category) {
		return "La categoría seleccionada no es válida"
	}
	return ""
}

func ValidateCondition(condition string) string {
	if strings.TrimSpace(condition) == "" {
		return "El estado del producto es obligatorio"
	}
	if !domain.IsCondition(condition) {
		return "El estado seleccionado no es válido"
	}
	return ""
}

func ValidateProvince(dir location.Directory, province string) string {
	if strings.TrimSpace(province) == "" {
		return "La provincia es obligatoria"
	}
	if _, ok := dir.Province(province); !ok {
		return "La provincia seleccionada no es válida"
	}
	return ""
}

// ValidateCity checks the city against the chosen province. Membership is
// only checked once the province itself is known.
func ValidateCity(dir location.Directory, province, city string) string {
	if strings.TrimSpace(city) == "" {
		return "La ciudad es obligatoria"
	}
	if _, ok := dir.Province(province); !ok {
		return ""
	}
	if _, ok := dir.City(province, city); !ok {
		return "La ciudad no pertenece a la provincia seleccionada"
	}
	return ""
}

func ValidatePostalCode(postalCode string) string {
	pc := strings.TrimSpace(postalCode)
	if pc == "" {
		return "El código postal es obligatorio"
	}
	if !postalCodePattern.MatchString(pc) {
		return "El código postal debe tener entre 4 y 8 dígitos"
	}
	return ""
}

func ValidateImageCount(images []domain.Image) string {
	if len(images) < MinImages {
		return "Debes subir al menos una foto del producto"
	}
	if len(images) > MaxImages {
		return "No puedes subir más de 10 fotos"
	}
	return ""
}

// FieldValidator runs the per-field rules that need the location directory.
type FieldValidator struct {
	dir location.Directory
}

func NewFieldValidator(dir location.Directory) *FieldValidator {
	return &FieldValidator{dir: dir}
}

// Check returns the format error for one field of d, or "".
func (v *FieldValidator) Check(d domain.Draft, field string) string {
	switch field {
	case domain.FieldTitle:
		return ValidateTitle(d.Title)
	case domain.FieldDescription:
		return ValidateDescription(d.Description)
	case domain.FieldPrice:
		return ValidatePrice(d.Price)
	case domain.FieldCategory:
		return ValidateCategory(d.Category)
	case domain.FieldCondition:
		return ValidateCondition(d.Condition)
	case domain.FieldProvince:
		return ValidateProvince(v.dir, d.Province)
	case domain.FieldCity:
		return ValidateCity(v.dir, d.Province, d.City)
	case domain.FieldPostalCode:
		return ValidatePostalCode(d.PostalCode)
	case domain.FieldImages:
		return ValidateImageCount(d.Images)
	}
	return ""
}

// Validate returns every format error of d in field declaration order.
func (v *FieldValidator) Validate(d domain.Draft) []domain.FieldError {
	var out []domain.FieldError
	for _, field := range domain.FieldOrder {
		if msg := v.Check(d, field); msg != "" {
			out = append(out, domain.FieldError{Field: field, Message: msg})
		}
	}
	return out
}
