package dataprocessing

import (
	"regexp"
	"strings"

	"floxcli/pkg/contracts/domain"
)

// CategoryRule maps marker substrings of an upper-cased group name to a category
type CategoryRule struct {
	Markers  []string
	Category domain.Category
}

// CategoryRules is the ordered classification table. The first rule with a
// matching marker wins, so the order resolves names carrying several markers.
var CategoryRules = []CategoryRule{
	{Markers: []string{"LEKTOŘI", "LEKTOR"}, Category: domain.CategoryLecturers},
	{Markers: []string{"STUDIUM"}, Category: domain.CategoryStudyProgram},
	{Markers: []string{"SEMINÁŘ"}, Category: domain.CategorySeminar},
	{Markers: []string{"ADMIN"}, Category: domain.CategoryAdmin},
	{Markers: []string{"ČLEN", "ČLENOVÉ"}, Category: domain.CategoryMembership},
}

// FallbackCategory is assigned when no rule matches
const FallbackCategory = domain.CategoryCourse

var (
	yearRangePattern = regexp.MustCompile(`\d{4}-\d{4}`)
	yearPattern      = regexp.MustCompile(`\d{4}`)
)

// Classify returns the category of a group name using CategoryRules
func Classify(name string) domain.Category {
	return ClassifyWith(name, CategoryRules)
}

// ClassifyWith applies an ordered rule table to name
func ClassifyWith(name string, rules []CategoryRule) domain.Category {
	upper := strings.ToUpper(name)
	for _, rule := range rules {
		for _, marker := range rule.Markers {
			if strings.Contains(upper, marker) {
				return rule.Category
			}
		}
	}
	return FallbackCategory
}

// ExtractYear returns the leftmost YYYY-YYYY range in name, else the leftmost
// four-digit run, else nil. Plausibility is not checked.
func ExtractYear(name string) *string {
	for _, re := range []*regexp.Regexp{yearRangePattern, yearPattern} {
		if m := re.FindString(name); m != "" {
			return &m
		}
	}
	return nil
}
