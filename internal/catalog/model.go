// Package catalog holds the recipe collection: the record type, the
// persisted catalog operations, the gated mutations, and the filter engine
// the list view runs on.
package catalog

import (
	"errors"
	"net/url"
	"strings"
)

// Difficulty is the enumerated difficulty of a recipe.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
)

// Difficulties returns the selectable difficulties in display order.
func Difficulties() []Difficulty {
	return []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard}
}

// ParseDifficulty matches raw input against the known difficulties,
// ignoring case.
func ParseDifficulty(raw string) (Difficulty, bool) {
	for _, d := range Difficulties() {
		if strings.EqualFold(raw, string(d)) {
			return d, true
		}
	}
	return "", false
}

// Validation and state errors surfaced to the UI. Checks are ordered so a
// mutation fails before any write happens.
var (
	ErrNameRequired        = errors.New("catalog: recipe name is required")
	ErrImageRequired       = errors.New("catalog: image link is required")
	ErrTimeInvalid         = errors.New("catalog: cooking time must be a positive number of minutes")
	ErrDifficultyRequired  = errors.New("catalog: difficulty must be chosen")
	ErrIngredientsRequired = errors.New("catalog: at least one ingredient is required")
	ErrStepsRequired       = errors.New("catalog: at least one step is required")

	ErrNotFound      = errors.New("catalog: recipe not found")
	ErrLoginRequired = errors.New("catalog: sign in first")
	ErrNotAllowed    = errors.New("catalog: only the owner or an admin may do that")
	ErrOwnRecipe     = errors.New("catalog: cannot rate your own recipe")
	ErrAlreadyRated  = errors.New("catalog: recipe already rated")
	ErrInvalidScore  = errors.New("catalog: score must be a whole number from 1 to 5")
)

// Recipe is the persisted record for a single recipe. JSON field names
// match the stored catalog format.
type Recipe struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	ImageURL    string     `json:"img"`
	TimeMinutes int        `json:"time"`
	Difficulty  Difficulty `json:"diff"`
	Ingredients []string   `json:"ingredients"`
	Steps       []string   `json:"steps"`
	Owner       string     `json:"owner"`
	Rating      float64    `json:"rating"`
	RatingCount int        `json:"count"`
}

// EffectiveRating is the rating used for filtering and display: zero until
// the recipe has received at least one score, whatever the stored average
// says.
func (r Recipe) EffectiveRating() float64 {
	if r.RatingCount == 0 {
		return 0
	}
	return r.Rating
}

// DisplayImageURL returns the recipe's image link, or a generated
// placeholder query built from the recipe name when the link is blank.
func (r Recipe) DisplayImageURL(placeholderBase string) string {
	if trimmed := strings.TrimSpace(r.ImageURL); trimmed != "" {
		return trimmed
	}
	return placeholderBase + url.QueryEscape(r.Name)
}

// Draft carries the form fields for a create or edit. Identity and rating
// state never pass through a draft.
type Draft struct {
	Name        string
	ImageURL    string
	TimeMinutes int
	Difficulty  Difficulty
	Ingredients []string
	Steps       []string
}

// Validate runs the ordered field checks and returns the first failure.
func (d Draft) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return ErrNameRequired
	}
	if strings.TrimSpace(d.ImageURL) == "" {
		return ErrImageRequired
	}
	if d.TimeMinutes <= 0 {
		return ErrTimeInvalid
	}
	if _, ok := ParseDifficulty(string(d.Difficulty)); !ok {
		return ErrDifficultyRequired
	}
	if len(d.Ingredients) == 0 {
		return ErrIngredientsRequired
	}
	if len(d.Steps) == 0 {
		return ErrStepsRequired
	}
	return nil
}

// SplitLines turns multi-line form input into a list, trimming each line
// and dropping blanks.
func SplitLines(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
