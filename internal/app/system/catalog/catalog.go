// Package catalog filters and sorts the course list for the discovery page.
//
// Apply is pure: it always works from the full list it is given and never
// mutates it, so handlers can recompute the view on every request.
package catalog

import (
	"net/url"
	"sort"
	"strings"

	"github.com/dalemusser/learnhub/internal/app/system/normalize"
	"github.com/dalemusser/learnhub/internal/domain/models"
)

// Price types.
const (
	PriceFree = "free"
	PricePaid = "paid"
)

// Duration buckets, in hours.
const (
	DurationShort  = "short"  // d <= 10
	DurationMedium = "medium" // 10 < d <= 30
	DurationLong   = "long"   // d > 30
)

// Sort keys.
const (
	SortPopular   = "popular"
	SortNewest    = "newest"
	SortPriceLow  = "price_low"
	SortPriceHigh = "price_high"
)

const (
	shortMaxHours  = 10
	mediumMaxHours = 30
)

// Filter is the discovery page selection. Empty strings and "all" mean no
// restriction on that field. Unrecognised price and duration values are
// ignored the same way.
type Filter struct {
	Category  string
	Level     string
	PriceType string
	Duration  string
	Sort      string
	Search    string
}

// ParseFilter reads a Filter from query parameters:
// category, level, price, duration, sort, q.
func ParseFilter(q url.Values) Filter {
	return Filter{
		Category:  normalize.Choice(q.Get("category")),
		Level:     normalize.Choice(q.Get("level")),
		PriceType: normalize.Choice(q.Get("price")),
		Duration:  normalize.Choice(q.Get("duration")),
		Sort:      normalize.Choice(q.Get("sort")),
		Search:    normalize.QueryParam(q.Get("q")),
	}
}

// DurationBucket returns the bucket a course length falls into.
func DurationBucket(hours float64) string {
	switch {
	case hours <= shortMaxHours:
		return DurationShort
	case hours <= mediumMaxHours:
		return DurationMedium
	default:
		return DurationLong
	}
}

// Apply returns the courses that match every predicate in f, ordered by
// f.Sort. The input slice is left untouched.
func Apply(courses []models.Course, f Filter) []models.Course {
	search := strings.ToLower(strings.TrimSpace(f.Search))
	category := normalize.Choice(f.Category)
	level := normalize.Choice(f.Level)
	priceType := normalize.Choice(f.PriceType)
	duration := normalize.Choice(f.Duration)

	out := make([]models.Course, 0, len(courses))
	for _, c := range courses {
		if search != "" && !matchesSearch(c, search) {
			continue
		}
		if category != "" && !strings.EqualFold(strings.TrimSpace(c.Category), category) {
			continue
		}
		if level != "" && !strings.EqualFold(strings.TrimSpace(c.Level), level) {
			continue
		}
		if !matchesPrice(c, priceType) {
			continue
		}
		if !matchesDuration(c, duration) {
			continue
		}
		out = append(out, c)
	}

	sortCourses(out, normalize.Choice(f.Sort))
	return out
}

func matchesSearch(c models.Course, needle string) bool {
	return strings.Contains(strings.ToLower(c.Title), needle) ||
		strings.Contains(strings.ToLower(c.Description), needle)
}

func matchesPrice(c models.Course, priceType string) bool {
	switch priceType {
	case PriceFree:
		return c.IsFree()
	case PricePaid:
		return !c.IsFree()
	default:
		return true
	}
}

func matchesDuration(c models.Course, duration string) bool {
	switch duration {
	case DurationShort, DurationMedium, DurationLong:
		return DurationBucket(c.DurationHours) == duration
	default:
		return true
	}
}

// sortCourses orders in place. Unknown keys keep source order.
func sortCourses(cs []models.Course, key string) {
	var less func(a, b models.Course) bool
	switch key {
	case SortPopular:
		less = func(a, b models.Course) bool { return a.EnrollmentCount > b.EnrollmentCount }
	case SortNewest:
		// zero CreatedAt is treated as the epoch and sorts last
		less = func(a, b models.Course) bool { return a.CreatedAt.After(b.CreatedAt) }
	case SortPriceLow:
		less = func(a, b models.Course) bool { return a.Price < b.Price }
	case SortPriceHigh:
		less = func(a, b models.Course) bool { return a.Price > b.Price }
	default:
		return
	}
	sort.SliceStable(cs, func(i, j int) bool { return less(cs[i], cs[j]) })
}
