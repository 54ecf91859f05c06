package inference

import (
	"regexp"
	"strings"

	"github.com/ternarybob/formforge/internal/models"
)

// fieldRule maps a line pattern to a canonical field. Rules are tested in
// declared order and the first match wins.
type fieldRule struct {
	id      string
	label   string
	kind    models.FieldType
	pattern *regexp.Regexp
}

// labelLine matches a header-style line: the keyword, then an optional
// colon or dash, then end of line.
func labelLine(keywords string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)\b(?:` + keywords + `)\s*[:\-]?\s*$`)
}

// heuristicRules is the ordered rule table. More specific keywords come
// before catch-alls so "email address" never lands on the name rule.
var heuristicRules = []fieldRule{
	{id: "email", label: "Email", kind: models.FieldTypeEmail, pattern: labelLine(`e-?mail(?:\s+address)?`)},
	{id: "phone", label: "Phone", kind: models.FieldTypePhone, pattern: labelLine(`phone(?:\s+number)?|mobile|cell`)},
	{id: "date", label: "Date", kind: models.FieldTypeDate, pattern: labelLine(`date(?:\s+of\s+birth)?|dob`)},
	{id: "address", label: "Address", kind: models.FieldTypeTextarea, pattern: labelLine(`address|city|zip(?:\s+code)?|postal\s+code|country`)},
	{id: "company", label: "Company", kind: models.FieldTypeText, pattern: labelLine(`company|organi[sz]ation|employer`)},
	{id: "title", label: "Title", kind: models.FieldTypeText, pattern: labelLine(`(?:job\s+)?title|position`)},
	{id: "name", label: "Name", kind: models.FieldTypeText, pattern: labelLine(`(?:full\s+|first\s+|last\s+)?name`)},
}

// heuristicFallback is the minimal field set returned when no rule matches
// anywhere in the document.
func heuristicFallback() []models.FormField {
	return []models.FormField{
		{ID: "name", Label: "Name", Type: models.FieldTypeText},
		{ID: "email", Label: "Email", Type: models.FieldTypeEmail},
		{ID: "phone", Label: "Phone", Type: models.FieldTypePhone},
	}
}

// inferHeuristic scans the text line by line against the rule table.
// Deterministic: identical text always yields the same fields in first-seen
// order, and a rule that already fired is never added twice. The second
// return is false when no rule matched anywhere, in which case the minimal
// fallback triple is returned.
func inferHeuristic(text string) ([]models.FormField, bool) {
	seen := make(map[string]bool)
	var fields []models.FormField

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		for _, rule := range heuristicRules {
			if !rule.pattern.MatchString(line) {
				continue
			}
			if !seen[rule.id] {
				seen[rule.id] = true
				fields = append(fields, models.FormField{
					ID:    rule.id,
					Label: rule.label,
					Type:  rule.kind,
				})
			}
			break
		}
	}

	if len(fields) == 0 {
		return heuristicFallback(), false
	}
	return fields, true
}
