package catalog

import "testing"

func TestTimeBucketBoundaries(t *testing.T) {
	cases := []struct {
		minutes int
		bucket  TimeBucket
		want    bool
	}{
		{10, TimeBucketShort, true},
		{10, TimeBucketMedium, false},
		{11, TimeBucketMedium, true},
		{11, TimeBucketShort, false},
		{5, TimeBucketShort, true},
		{4, TimeBucketShort, false},
		{30, TimeBucketMedium, true},
		{31, TimeBucketLong, true},
		{60, TimeBucketLong, true},
		{61, TimeBucketLong, false},
		{61, TimeBucketExtended, true},
		{60, TimeBucketExtended, false},
		{4, TimeBucketAny, true},
	}
	for _, tc := range cases {
		if got := tc.bucket.Matches(tc.minutes); got != tc.want {
			t.Errorf("bucket %q with %d minutes: got %v, want %v", tc.bucket, tc.minutes, got, tc.want)
		}
	}
}

func TestUnratedRecipeHasZeroEffectiveRating(t *testing.T) {
	stale := Recipe{Rating: 4.5, RatingCount: 0}
	if got := stale.EffectiveRating(); got != 0 {
		t.Fatalf("expected effective rating 0 for unrated recipe, got %v", got)
	}

	rated := Recipe{Rating: 4.5, RatingCount: 2}
	if got := rated.EffectiveRating(); got != 4.5 {
		t.Fatalf("expected stored rating for rated recipe, got %v", got)
	}
}

func TestMinRatingUsesEffectiveRating(t *testing.T) {
	recipes := []Recipe{
		{ID: "a", Name: "Pad Thai", Rating: 4.5, RatingCount: 0},
		{ID: "b", Name: "Green Curry", Rating: 4.5, RatingCount: 3},
	}

	out := Filter{MinRating: 4}.Apply(recipes)
	if len(out) != 1 || out[0].ID != "b" {
		t.Fatalf("expected only the rated recipe to pass, got %v", out)
	}
}

func TestNameAndOwnerFiltersIgnoreCase(t *testing.T) {
	recipes := []Recipe{
		{ID: "a", Name: "Pad Thai", Owner: "Dana"},
		{ID: "b", Name: "Omelette", Owner: "lee"},
	}

	if out := (Filter{NameQuery: "pad"}).Apply(recipes); len(out) != 1 || out[0].ID != "a" {
		t.Fatalf("name filter failed: %v", out)
	}
	if out := (Filter{OwnerQuery: "DANA"}).Apply(recipes); len(out) != 1 || out[0].ID != "a" {
		t.Fatalf("owner filter failed: %v", out)
	}
}

func TestFiltersApplyConjunctively(t *testing.T) {
	recipes := []Recipe{
		{ID: "a", Name: "Pad Thai", Owner: "dana", TimeMinutes: 20, Difficulty: DifficultyEasy, Rating: 5, RatingCount: 1},
		{ID: "b", Name: "Pad See Ew", Owner: "dana", TimeMinutes: 20, Difficulty: DifficultyHard, Rating: 5, RatingCount: 1},
		{ID: "c", Name: "Pad Thai Deluxe", Owner: "lee", TimeMinutes: 90, Difficulty: DifficultyEasy, Rating: 5, RatingCount: 1},
	}

	filter := Filter{
		NameQuery:  "pad",
		Time:       TimeBucketMedium,
		Difficulty: DifficultyEasy,
		OwnerQuery: "dana",
		MinRating:  4,
	}
	out := filter.Apply(recipes)
	if len(out) != 1 || out[0].ID != "a" {
		t.Fatalf("expected only the recipe passing every filter, got %v", out)
	}
}

func TestFilterPreservesInsertionOrder(t *testing.T) {
	recipes := []Recipe{
		{ID: "1", Name: "Soup A", TimeMinutes: 10},
		{ID: "2", Name: "Soup B", TimeMinutes: 15},
		{ID: "3", Name: "Soup C", TimeMinutes: 8},
	}

	out := Filter{NameQuery: "soup"}.Apply(recipes)
	if len(out) != 3 {
		t.Fatalf("expected all recipes, got %d", len(out))
	}
	for i, id := range []string{"1", "2", "3"} {
		if out[i].ID != id {
			t.Fatalf("expected order preserved, got %v", out)
		}
	}
}

func TestZeroFilterMatchesEverything(t *testing.T) {
	recipes := []Recipe{
		{ID: "a", TimeMinutes: 1},
		{ID: "b", TimeMinutes: 500},
	}
	if out := (Filter{}).Apply(recipes); len(out) != 2 {
		t.Fatalf("zero filter must match everything, got %v", out)
	}
}
