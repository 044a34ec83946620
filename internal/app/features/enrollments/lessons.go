// internal/app/features/enrollments/lessons.go
package enrollments

import (
	"math"
	"strconv"
	"strings"

	"github.com/dalemusser/learnhub/internal/domain/models"
)

// TotalLessons counts the topics across all modules of c.
func TotalLessons(c models.Course) int {
	n := 0
	for _, m := range c.Modules {
		n += len(m.Topics)
	}
	return n
}

// ValidLessonKey reports whether key is "<module>.<topic>" naming an
// existing topic of c. Indexes are zero-based.
func ValidLessonKey(c models.Course, key string) bool {
	mod, top, ok := strings.Cut(key, ".")
	if !ok {
		return false
	}
	mi, err := strconv.Atoi(mod)
	if err != nil || mi < 0 || mi >= len(c.Modules) {
		return false
	}
	ti, err := strconv.Atoi(top)
	if err != nil || ti < 0 || ti >= len(c.Modules[mi].Topics) {
		return false
	}
	return strconv.Itoa(mi)+"."+strconv.Itoa(ti) == key
}

// LessonProgress converts completed/total to a percentage rounded to one
// decimal place and capped at 100.
func LessonProgress(completed, total int) float64 {
	if total <= 0 || completed <= 0 {
		return 0
	}
	if completed >= total {
		return 100
	}
	return math.Round(float64(completed)/float64(total)*1000) / 10
}
