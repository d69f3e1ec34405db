package catalog

import "strings"

// TimeBucket selects one of the fixed cooking-time ranges. The stored
// selector codes are part of the persisted filter vocabulary.
type TimeBucket string

const (
	// TimeBucketAny matches every recipe.
	TimeBucketAny TimeBucket = ""
	// TimeBucketShort matches 5 to 10 minutes inclusive.
	TimeBucketShort TimeBucket = "r1"
	// TimeBucketMedium matches 11 to 30 minutes inclusive.
	TimeBucketMedium TimeBucket = "r2"
	// TimeBucketLong matches 31 to 60 minutes inclusive.
	TimeBucketLong TimeBucket = "r3"
	// TimeBucketExtended matches anything over 60 minutes.
	TimeBucketExtended TimeBucket = "r4"
)

// TimeBuckets returns the selectable buckets in display order, starting
// with the match-everything bucket.
func TimeBuckets() []TimeBucket {
	return []TimeBucket{TimeBucketAny, TimeBucketShort, TimeBucketMedium, TimeBucketLong, TimeBucketExtended}
}

// Label returns the human-readable range for the bucket.
func (b TimeBucket) Label() string {
	switch b {
	case TimeBucketShort:
		return "5-10 min"
	case TimeBucketMedium:
		return "11-30 min"
	case TimeBucketLong:
		return "31-60 min"
	case TimeBucketExtended:
		return "60+ min"
	default:
		return "any time"
	}
}

// Matches reports whether a cooking time falls inside the bucket. An
// unknown bucket matches everything, mirroring an unset selector.
func (b TimeBucket) Matches(minutes int) bool {
	switch b {
	case TimeBucketShort:
		return minutes >= 5 && minutes <= 10
	case TimeBucketMedium:
		return minutes >= 11 && minutes <= 30
	case TimeBucketLong:
		return minutes >= 31 && minutes <= 60
	case TimeBucketExtended:
		return minutes > 60
	default:
		return true
	}
}

// Filter holds the five independent criteria the list view filters on. The
// zero value matches every recipe; each set criterion narrows the result.
type Filter struct {
	// NameQuery keeps recipes whose name contains it, ignoring case.
	NameQuery string
	// Time keeps recipes whose cooking time falls in the bucket.
	Time TimeBucket
	// Difficulty keeps recipes with exactly this difficulty.
	Difficulty Difficulty
	// OwnerQuery keeps recipes whose owner name contains it, ignoring case.
	OwnerQuery string
	// MinRating keeps recipes whose effective rating is at least this
	// value (1-5); zero disables the criterion.
	MinRating int
}

// Apply returns the recipes satisfying every set criterion, preserving the
// input order. The input slice is never modified.
func (f Filter) Apply(recipes []Recipe) []Recipe {
	var out []Recipe
	for _, recipe := range recipes {
		if f.matches(recipe) {
			out = append(out, recipe)
		}
	}
	return out
}

func (f Filter) matches(r Recipe) bool {
	if q := strings.ToLower(strings.TrimSpace(f.NameQuery)); q != "" {
		if !strings.Contains(strings.ToLower(r.Name), q) {
			return false
		}
	}
	if !f.Time.Matches(r.TimeMinutes) {
		return false
	}
	if f.Difficulty != "" && r.Difficulty != f.Difficulty {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(f.OwnerQuery)); q != "" {
		if !strings.Contains(strings.ToLower(r.Owner), q) {
			return false
		}
	}
	if f.MinRating > 0 && r.EffectiveRating() < float64(f.MinRating) {
		return false
	}
	return true
}
