package model

import "strings"

// ProductCategories is the closed set of assessable product categories.
// Extending it is a schema change, not a runtime one.
var ProductCategories = []string{
	"agriculture",
	"meat-poultry",
	"dairy",
	"seafood",
	"processed-foods",
	"textiles-clothing",
	"cosmetics-personal-care",
	"animal-feed",
}

func IsValidCategory(category string) bool {
	for _, c := range ProductCategories {
		if c == category {
			return true
		}
	}
	return false
}

// ValidateProductInput checks the required basic-info fields. Everything else
// on the product is free text and passes through unvalidated.
func ValidateProductInput(name, category string) error {
	fields := map[string]string{}
	if trimmed(name) == "" {
		fields["name"] = "product name is required"
	}
	if category == "" {
		fields["category"] = "category is required"
	} else if !IsValidCategory(category) {
		fields["category"] = "unknown category: " + category
	}
	if len(fields) > 0 {
		return &ValidationError{Message: "invalid product data", Fields: fields}
	}
	return nil
}

// ValidateAnswer accepts any decoded JSON value and returns the answer string.
// An empty string is a legal answer; it just counts as unanswered downstream.
func ValidateAnswer(value any) (string, error) {
	s, ok := value.(string)
	if !ok {
		return "", &ValidationError{
			Message: "answer is required",
			Fields:  map[string]string{"answer": "answer must be a string"},
		}
	}
	return s, nil
}

// ClampScore bounds a score to the [0,100] range.
func ClampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func trimmed(s string) string {
	return strings.TrimSpace(s)
}
