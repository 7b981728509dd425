// Package filter implements the derived list views of the dashboard:
// date-range and free-text filtering over institution records. Functions
// here are pure; they never mutate their input and preserve its order.
package filter

import (
	"strings"
	"time"

	"github.com/hairscan/hairscan-admin/internal/models"
)

// Criteria narrows an institution listing. Zero-value bounds mean
// unbounded; an empty Search matches everything.
type Criteria struct {
	// RegisteredAfter and RegisteredBefore bound the registration date,
	// inclusive on both ends.
	RegisteredAfter  *time.Time
	RegisteredBefore *time.Time

	Search string
}

// Empty reports whether the criteria match every record
func (c Criteria) Empty() bool {
	return c.RegisteredAfter == nil && c.RegisteredBefore == nil && c.Search == ""
}

// Institutions returns the subset of list matching c, preserving order.
// The result shares elements with the input but never the backing array.
func Institutions(list []*models.Institution, c Criteria) []*models.Institution {
	out := make([]*models.Institution, 0, len(list))
	for _, inst := range list {
		if !MatchesDateRange(inst, c.RegisteredAfter, c.RegisteredBefore) {
			continue
		}
		if !MatchesSearch(inst, c.Search) {
			continue
		}
		out = append(out, inst)
	}
	return out
}

// MatchesDateRange reports whether the institution's registration date
// falls within the inclusive bounds. A record without a registration date
// is excluded as soon as either bound is set.
func MatchesDateRange(inst *models.Institution, after, before *time.Time) bool {
	if after == nil && before == nil {
		return true
	}
	if inst.RegistrationDate.IsZero() {
		return false
	}
	if after != nil && inst.RegistrationDate.Before(*after) {
		return false
	}
	if before != nil && inst.RegistrationDate.After(*before) {
		return false
	}
	return true
}

// MatchesSearch reports whether the institution matches the free-text
// query. Name, category and representative are matched case-insensitively;
// contact channels and the business number are matched as-is.
func MatchesSearch(inst *models.Institution, query string) bool {
	if query == "" {
		return true
	}

	folded := strings.ToLower(query)
	if strings.Contains(strings.ToLower(inst.Name), folded) ||
		strings.Contains(strings.ToLower(string(inst.Category)), folded) ||
		strings.Contains(strings.ToLower(inst.Representative), folded) {
		return true
	}

	return strings.Contains(inst.Phone, query) ||
		strings.Contains(inst.Email, query) ||
		strings.Contains(inst.BusinessNumber, query)
}
