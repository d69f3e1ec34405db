package tui

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/plateup-labs/plateup/internal/catalog"
	"github.com/plateup-labs/plateup/internal/kvstore"
	"github.com/plateup-labs/plateup/internal/ratings"
	"github.com/plateup-labs/plateup/internal/session"
	"github.com/plateup-labs/plateup/internal/users"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to access sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(&kvstore.Entry{}); err != nil {
		t.Fatalf("failed to migrate schema: %v", err)
	}
	store, err := kvstore.NewStore(kvstore.StoreConfig{Database: db})
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	registry, err := users.NewRegistry(users.RegistryConfig{Store: store})
	if err != nil {
		t.Fatalf("failed to create registry: %v", err)
	}
	ratedSets, err := ratings.NewService(ratings.ServiceConfig{Store: store})
	if err != nil {
		t.Fatalf("failed to create rated sets: %v", err)
	}
	catalogService, err := catalog.NewService(catalog.ServiceConfig{
		Store:      store,
		RatedSets:  ratedSets,
		IDProvider: catalog.NewUUIDProvider(),
	})
	if err != nil {
		t.Fatalf("failed to create catalog: %v", err)
	}
	app, err := NewApp(Dependencies{
		Catalog:         catalogService,
		Registry:        registry,
		RatedSets:       ratedSets,
		Session:         session.New(),
		PlaceholderBase: "https://images.example/?q=",
	})
	if err != nil {
		t.Fatalf("failed to create app: %v", err)
	}
	return app
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func signIn(t *testing.T, app *App, name string) {
	t.Helper()
	app.loginInput.SetValue(name)
	app.submitLogin()
	if user, ok := app.sess.CurrentUser(); !ok || user.Name != name {
		t.Fatalf("sign-in as %q failed, status: %s", name, app.statusMsg)
	}
}

func addRecipe(t *testing.T, app *App, owner users.User, name string, minutes int) catalog.Recipe {
	t.Helper()
	recipe, err := app.catalog.Create(context.Background(), owner, catalog.Draft{
		Name:        name,
		ImageURL:    "https://example.com/dish.jpg",
		TimeMinutes: minutes,
		Difficulty:  catalog.DifficultyEasy,
		Ingredients: []string{"salt"},
		Steps:       []string{"season"},
	})
	if err != nil {
		t.Fatalf("seed recipe failed: %v", err)
	}
	app.refresh()
	return recipe
}

func TestLoginByKeystrokes(t *testing.T) {
	app := newTestApp(t)

	app.Update(keyRunes("l"))
	if app.state != stateLogin {
		t.Fatalf("expected login screen, got state %d", app.state)
	}
	app.Update(keyRunes("dana"))
	app.Update(tea.KeyMsg{Type: tea.KeyEnter})

	user, ok := app.sess.CurrentUser()
	if !ok || user.Name != "dana" {
		t.Fatalf("expected signed-in user dana, got %v ok=%v", user, ok)
	}
	if app.state != stateBrowse {
		t.Fatalf("expected return to browse, got state %d", app.state)
	}
	if !strings.Contains(app.statusMsg, "dana") {
		t.Fatalf("expected greeting, got %q", app.statusMsg)
	}
}

func TestBlankLoginRejected(t *testing.T) {
	app := newTestApp(t)

	app.Update(keyRunes("l"))
	app.Update(tea.KeyMsg{Type: tea.KeyEnter})

	if _, ok := app.sess.CurrentUser(); ok {
		t.Fatalf("blank name must not sign in")
	}
	if app.state != stateLogin {
		t.Fatalf("expected to stay on the login screen")
	}
	if app.statusMsg == "" {
		t.Fatalf("expected a validation message")
	}
}

func TestGuestCannotOpenRecipeForm(t *testing.T) {
	app := newTestApp(t)

	app.Update(keyRunes("a"))
	if app.state != stateBrowse {
		t.Fatalf("guests must stay on browse, got state %d", app.state)
	}
	if app.statusMsg == "" {
		t.Fatalf("expected a sign-in prompt message")
	}
}

func TestCreateRecipeThroughForm(t *testing.T) {
	app := newTestApp(t)
	signIn(t, app, "dana")

	app.Update(keyRunes("a"))
	if app.state != stateForm {
		t.Fatalf("expected form screen, got state %d", app.state)
	}

	app.form.name.SetValue("Green Curry")
	app.form.image.SetValue("https://example.com/curry.jpg")
	app.form.minutes.SetValue("35")
	app.form.diffIndex = 2
	app.form.ingredients.SetValue("coconut milk\ncurry paste\n")
	app.form.steps.SetValue("simmer\nserve")
	app.Update(tea.KeyMsg{Type: tea.KeyCtrlS})

	if app.state != stateBrowse {
		t.Fatalf("expected return to browse after save, status %q", app.statusMsg)
	}
	recipes, err := app.catalog.ListAll(context.Background())
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(recipes) != 1 {
		t.Fatalf("expected one recipe, got %d", len(recipes))
	}
	got := recipes[0]
	if got.Name != "Green Curry" || got.TimeMinutes != 35 || got.Owner != "dana" {
		t.Fatalf("unexpected recipe: %+v", got)
	}
	if len(got.Ingredients) != 2 {
		t.Fatalf("expected blank lines dropped, got %v", got.Ingredients)
	}
}

func TestFormValidationMessageShown(t *testing.T) {
	app := newTestApp(t)
	signIn(t, app, "dana")

	app.Update(keyRunes("a"))
	app.Update(tea.KeyMsg{Type: tea.KeyCtrlS})

	if app.state != stateForm {
		t.Fatalf("a failing save must keep the form open")
	}
	if !strings.Contains(app.statusMsg, "name") {
		t.Fatalf("expected the name message first, got %q", app.statusMsg)
	}
}

func TestEditRequiresOwnership(t *testing.T) {
	app := newTestApp(t)
	addRecipe(t, app, users.User{Name: "dana"}, "Pad Thai", 25)

	signIn(t, app, "lee")
	app.Update(keyRunes("e"))

	if app.state != stateBrowse {
		t.Fatalf("a stranger must not reach the edit form")
	}
	if app.statusMsg == "" {
		t.Fatalf("expected an authorization message")
	}
}

func TestRateFlowAndOneShotRule(t *testing.T) {
	app := newTestApp(t)
	recipe := addRecipe(t, app, users.User{Name: "dana"}, "Pad Thai", 25)

	signIn(t, app, "lee")
	app.Update(keyRunes("r"))
	if app.state != stateRate {
		t.Fatalf("expected rate prompt, got state %d (%s)", app.state, app.statusMsg)
	}

	app.Update(keyRunes("5"))
	app.Update(tea.KeyMsg{Type: tea.KeyEnter})

	if app.state != stateBrowse {
		t.Fatalf("expected return to browse, status %q", app.statusMsg)
	}
	updated, err := app.catalog.Get(context.Background(), recipe.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if updated.Rating != 5 || updated.RatingCount != 1 {
		t.Fatalf("unexpected rating state: %+v", updated)
	}

	// The refreshed rated-set now blocks a second attempt at the prompt.
	app.Update(keyRunes("r"))
	if app.state != stateBrowse {
		t.Fatalf("a rated recipe must not reopen the prompt")
	}
	if !strings.Contains(app.statusMsg, "already") {
		t.Fatalf("expected the already-rated message, got %q", app.statusMsg)
	}
}

func TestOwnerCannotRateOwnRecipe(t *testing.T) {
	app := newTestApp(t)
	addRecipe(t, app, users.User{Name: "dana"}, "Pad Thai", 25)

	signIn(t, app, "dana")
	app.Update(keyRunes("r"))

	if app.state != stateBrowse {
		t.Fatalf("the owner must not reach the rate prompt")
	}
	if !strings.Contains(app.statusMsg, "own") {
		t.Fatalf("expected the own-recipe message, got %q", app.statusMsg)
	}
}

func TestInvalidScoreRejectedAtPrompt(t *testing.T) {
	app := newTestApp(t)
	recipe := addRecipe(t, app, users.User{Name: "dana"}, "Pad Thai", 25)

	signIn(t, app, "lee")
	app.Update(keyRunes("r"))
	app.Update(keyRunes("x"))
	app.Update(tea.KeyMsg{Type: tea.KeyEnter})

	if app.state != stateRate {
		t.Fatalf("an invalid score must keep the prompt open")
	}
	updated, err := app.catalog.Get(context.Background(), recipe.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if updated.RatingCount != 0 {
		t.Fatalf("an invalid score must not change state: %+v", updated)
	}
}

func TestDeleteConfirmFlow(t *testing.T) {
	app := newTestApp(t)
	addRecipe(t, app, users.User{Name: "dana"}, "Pad Thai", 25)

	signIn(t, app, "dana")
	app.Update(keyRunes("x"))
	if app.state != stateConfirmDelete {
		t.Fatalf("expected confirmation screen, got state %d", app.state)
	}

	app.Update(keyRunes("n"))
	if recipes, _ := app.catalog.ListAll(context.Background()); len(recipes) != 1 {
		t.Fatalf("declining must keep the recipe")
	}

	app.Update(keyRunes("x"))
	app.Update(keyRunes("y"))
	if recipes, _ := app.catalog.ListAll(context.Background()); len(recipes) != 0 {
		t.Fatalf("confirming must delete the recipe")
	}
}

func TestSearchFilterNarrowsList(t *testing.T) {
	app := newTestApp(t)
	addRecipe(t, app, users.User{Name: "dana"}, "Pad Thai", 25)
	addRecipe(t, app, users.User{Name: "dana"}, "Omelette", 10)

	app.searchInput.SetValue("pad")
	app.refresh()

	if len(app.recipes) != 1 || app.recipes[0].Name != "Pad Thai" {
		t.Fatalf("expected the search filter to narrow the list, got %v", app.recipes)
	}
}

func TestTimeBucketKeyCyclesFilter(t *testing.T) {
	app := newTestApp(t)
	addRecipe(t, app, users.User{Name: "dana"}, "Quick Eggs", 7)
	addRecipe(t, app, users.User{Name: "dana"}, "Slow Roast", 120)

	app.Update(keyRunes("t")) // first bucket: 5-10 minutes
	if len(app.recipes) != 1 || app.recipes[0].Name != "Quick Eggs" {
		t.Fatalf("expected only the quick recipe, got %v", app.recipes)
	}
}

func TestBrowseViewRendersCards(t *testing.T) {
	app := newTestApp(t)
	addRecipe(t, app, users.User{Name: "dana"}, "Pad Thai", 25)
	app.Update(tea.WindowSizeMsg{Width: 100, Height: 40})

	view := app.View()
	if !strings.Contains(view, "Pad Thai") {
		t.Fatalf("expected the card list to show the recipe name")
	}
	if !strings.Contains(view, "not rated yet") {
		t.Fatalf("expected an unrated recipe to render as not rated")
	}
}

func TestPlaceholderImageShownWhenLinkBlank(t *testing.T) {
	app := newTestApp(t)
	recipe := catalog.Recipe{Name: "Pad Thai", ImageURL: ""}
	if got := recipe.DisplayImageURL(app.placeholderBase); got != "https://images.example/?q=Pad+Thai" {
		t.Fatalf("unexpected placeholder url: %s", got)
	}
}
