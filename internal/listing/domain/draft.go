package domain

// Field names in declaration order. Verdict errors are reported in this order.
const (
	FieldTitle       = "title"
	FieldDescription = "description"
	FieldPrice       = "price"
	FieldCategory    = "category"
	FieldCondition   = "condition"
	FieldProvince    = "province"
	FieldCity        = "city"
	FieldPostalCode  = "postal_code"
	FieldImages      = "images"
)

// FieldOrder lists every draft field in declaration order.
var FieldOrder = []string{
	FieldTitle,
	FieldDescription,
	FieldPrice,
	FieldCategory,
	FieldCondition,
	FieldProvince,
	FieldCity,
	FieldPostalCode,
	FieldImages,
}

// Image is an attached file as received from the client.
type Image struct {
	Name        string `json:"name"`
	ContentType string `json:"content_type"`
	Data        []byte `json:"data"`
}

func (i Image) Size() int64 { return int64(len(i.Data)) }

// Draft is the unpersisted form state of a listing being created.
type Draft struct {
	Title       string  `json:"title" yaml:"title"`
	Description string  `json:"description" yaml:"description"`
	Price       string  `json:"price" yaml:"price"`
	Category    string  `json:"category" yaml:"category"`
	Condition   string  `json:"condition" yaml:"condition"`
	Province    string  `json:"province" yaml:"province"`
	City        string  `json:"city" yaml:"city"`
	PostalCode  string  `json:"postal_code" yaml:"postal_code"`
	Images      []Image `json:"images,omitempty" yaml:"-"`
}

// FieldValue returns the raw value of a text field, or "" for unknown names.
func (d Draft) FieldValue(field string) string {
	switch field {
	case FieldTitle:
		return d.Title
	case FieldDescription:
		return d.Description
	case FieldPrice:
		return d.Price
	case FieldCategory:
		return d.Category
	case FieldCondition:
		return d.Condition
	case FieldProvince:
		return d.Province
	case FieldCity:
		return d.City
	case FieldPostalCode:
		return d.PostalCode
	}
	return ""
}

// WithField returns a copy of d with a text field replaced. Unknown fields
// leave the copy unchanged.
func (d Draft) WithField(field, value string) Draft {
	switch field {
	case FieldTitle:
		d.Title = value
	case FieldDescription:
		d.Description = value
	case FieldPrice:
		d.Price = value
	case FieldCategory:
		d.Category = value
	case FieldCondition:
		d.Condition = value
	case FieldProvince:
		d.Province = value
	case FieldCity:
		d.City = value
	case FieldPostalCode:
		d.PostalCode = value
	}
	return d
}

// IsField reports whether name is a known draft field.
func IsField(name string) bool {
	for _, f := range FieldOrder {
		if f == name {
			return true
		}
	}
	return false
}

// FieldError is one blocking problem attached to a field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Verdict is the outcome of validating a draft. It is never persisted.
type Verdict struct {
	Valid    bool         `json:"valid"`
	Errors   []FieldError `json:"errors"`
	Warnings []string     `json:"warnings"`
}

// Messages returns the error messages in order.
func (v Verdict) Messages() []string {
	out := make([]string, 0, len(v.Errors))
	for _, e := range v.Errors {
		out = append(out, e.Message)
	}
	return out
}

// ErrorsFor returns the messages attached to field.
func (v Verdict) ErrorsFor(field string) []string {
	var out []string
	for _, e := range v.Errors {
		if e.Field == field {
			out = append(out, e.Message)
		}
	}
	return out
}
