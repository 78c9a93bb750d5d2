package entity

import (
	"regexp"
	"strings"
)

// Category is a fixed medical entity category.
type Category string

const (
	CategorySymptom   Category = "symptom"
	CategoryTreatment Category = "treatment"
	CategoryDiagnosis Category = "diagnosis"
	CategoryAnatomy   Category = "anatomy"
)

// Categories lists all entity categories in canonical order.
func Categories() []Category {
	return []Category{CategorySymptom, CategoryTreatment, CategoryDiagnosis, CategoryAnatomy}
}

// Mention is a validated entity with its provider confidence.
type Mention struct {
	Text       string   `json:"text"`
	Category   Category `json:"category"`
	Confidence float64  `json:"confidence"`
}

var (
	wsRe        = regexp.MustCompile(`\s+`)
	edgePunctRe = regexp.MustCompile(`^[^\w\s]+|[^\w\s]+$`)
	digitsRe    = regexp.MustCompile(`^\d+$`)
	punctOnlyRe = regexp.MustCompile(`^[^\w\s]+$`)
)

// Validator filters, deduplicates, and canonicalizes raw entity
// candidates. Pure data hygiene; it never calls a provider.
type Validator struct {
	minLength int
	maxLength int
	stopwords map[string]struct{}
}

// DefaultStopwords returns the function-word list rejected as entities.
func DefaultStopwords() []string {
	return []string{
		"the", "a", "an", "and", "or", "but", "in", "on", "at",
		"to", "for", "of", "with", "by", "from", "as", "is", "was",
		"are", "were", "been", "be", "have", "has", "had", "do",
		"does", "did", "will", "would", "could", "should", "may",
		"might", "must", "can", "this", "that", "these", "those",
	}
}

// NewValidator creates a validator with length bounds and a stopword
// list. Zero bounds fall back to 2 and 100; a nil list falls back to
// DefaultStopwords.
func NewValidator(minLength, maxLength int, stopwords []string) *Validator {
	if minLength <= 0 {
		minLength = 2
	}
	if maxLength <= 0 {
		maxLength = 100
	}
	if stopwords == nil {
		stopwords = DefaultStopwords()
	}
	stops := make(map[string]struct{}, len(stopwords))
	for _, w := range stopwords {
		stops[strings.ToLower(w)] = struct{}{}
	}
	return &Validator{minLength: minLength, maxLength: maxLength, stopwords: stops}
}

// Clean normalizes entity surface text: whitespace collapsed, edge
// punctuation stripped.
func (v *Validator) Clean(s string) string {
	s = strings.TrimSpace(s)
	s = wsRe.ReplaceAllString(s, " ")
	return edgePunctRe.ReplaceAllString(s, "")
}

// Valid reports whether a cleaned entity passes the validation predicate.
func (v *Validator) Valid(s string) bool {
	s = strings.TrimSpace(s)
	if len(s) < v.minLength || len(s) > v.maxLength {
		return false
	}
	if _, stop := v.stopwords[strings.ToLower(s)]; stop {
		return false
	}
	if digitsRe.MatchString(s) || punctOnlyRe.MatchString(s) {
		return false
	}
	return true
}

// Validate cleans, filters, and deduplicates candidates for one
// category. Output preserves first-occurrence order of survivors;
// no survivor's normalized form is a case-insensitive substring of
// another's.
func (v *Validator) Validate(candidates []string) []string {
	// Clean and filter, collapsing case-insensitive exact duplicates
	// to the first-seen surface form.
	seen := make(map[string]struct{})
	var unique []string
	for _, raw := range candidates {
		cleaned := v.Clean(raw)
		if !v.Valid(cleaned) {
			continue
		}
		key := strings.ToLower(cleaned)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, cleaned)
	}

	// Substring pass: drop any entity whose normalized form is a proper
	// substring of another survivor's, keeping the more specific mention.
	out := make([]string, 0, len(unique))
	for i, a := range unique {
		an := strings.ToLower(a)
		dropped := false
		for j, b := range unique {
			if i == j {
				continue
			}
			bn := strings.ToLower(b)
			if an != bn && strings.Contains(bn, an) {
				dropped = true
				break
			}
		}
		if !dropped {
			out = append(out, a)
		}
	}
	return out
}

// ValidateByCategory validates every category list independently.
func (v *Validator) ValidateByCategory(entities map[Category][]string) map[Category][]string {
	validated := make(map[Category][]string, len(entities))
	for cat, list := range entities {
		validated[cat] = v.Validate(list)
	}
	return validated
}
