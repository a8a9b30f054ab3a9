package dto

// ProductInput carries the writable product fields for create, advance and
// full updates. Only name and category are validated; the rest is free text.
type ProductInput struct {
	Name                 string   `json:"name"`
	Category             string   `json:"category"`
	Brand                string   `json:"brand"`
	Description          string   `json:"description"`
	Weight               string   `json:"weight"`
	Dimensions           string   `json:"dimensions"`
	Materials            string   `json:"materials"`
	ManufacturingCountry string   `json:"manufacturingCountry"`
	ManufacturingDate    string   `json:"manufacturingDate"`
	Certifications       []string `json:"certifications"`
	ImageURL             string   `json:"imageUrl"`
}

// ProductUpdate is a partial update; nil pointers leave the field untouched.
// ID and owner are never updatable.
type ProductUpdate struct {
	Name                 *string   `json:"name"`
	Category             *string   `json:"category"`
	Brand                *string   `json:"brand"`
	Description          *string   `json:"description"`
	Weight               *string   `json:"weight"`
	Dimensions           *string   `json:"dimensions"`
	Materials            *string   `json:"materials"`
	ManufacturingCountry *string   `json:"manufacturingCountry"`
	ManufacturingDate    *string   `json:"manufacturingDate"`
	Certifications       *[]string `json:"certifications"`
	ImageURL             *string   `json:"imageUrl"`
}

// AnswerInput deliberately decodes into any so the handler can reject
// non-string answers with a field-level validation error.
type AnswerInput struct {
	Answer any `json:"answer"`
}
