// Package tui is the terminal presentation layer. It follows the
// bubbletea model/update/view loop: every key press produces a message,
// the message runs a mutation or changes session state, and the view is
// re-rendered from the filtered catalog.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/plateup-labs/plateup/internal/catalog"
	"github.com/plateup-labs/plateup/internal/ratings"
	"github.com/plateup-labs/plateup/internal/session"
	"github.com/plateup-labs/plateup/internal/users"
	"go.uber.org/zap"
)

// appState identifies which screen owns the keyboard.
type appState int

const (
	stateBrowse        appState = iota // filter bar + card list
	stateLogin                         // username prompt
	stateForm                          // add/edit recipe form
	stateRate                          // score prompt for one recipe
	stateConfirmDelete                 // yes/no before removing a recipe
)

// filterFocus identifies which filter input, if any, is capturing text.
type filterFocus int

const (
	focusNone filterFocus = iota
	focusSearch
	focusOwner
)

// Dependencies wires the services the UI drives.
type Dependencies struct {
	Catalog         *catalog.Service
	Registry        *users.Registry
	RatedSets       *ratings.Service
	Session         *session.Session
	PlaceholderBase string
	Logger          *zap.Logger
}

// App is the root bubbletea model. It holds all UI state: the active
// screen, the filter criteria, the filtered catalog snapshot, and the
// input components of whichever prompt is open.
type App struct {
	ctx       context.Context
	catalog   *catalog.Service
	registry  *users.Registry
	ratedSets *ratings.Service
	sess      *session.Session
	logger    *zap.Logger

	placeholderBase string

	state  appState
	width  int
	height int

	// Browse screen.
	searchInput textinput.Model
	ownerInput  textinput.Model
	timeIndex   int // index into catalog.TimeBuckets()
	diffIndex   int // 0 = any, otherwise catalog.Difficulties()[diffIndex-1]
	minRating   int // 0 = any
	focus       filterFocus
	recipes     []catalog.Recipe
	ratedIDs    map[string]bool
	cursor      int

	// Prompts.
	loginInput textinput.Model
	form       recipeForm
	rateInput  textinput.Model
	rateTarget catalog.Recipe
	deleteID   string

	statusMsg string
}

// NewApp constructs the root model and loads the initial catalog snapshot.
func NewApp(deps Dependencies) (*App, error) {
	if deps.Catalog == nil || deps.Registry == nil || deps.RatedSets == nil || deps.Session == nil {
		return nil, errors.New("tui: catalog, registry, rated sets, and session are required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	search := textinput.New()
	search.Placeholder = "search recipes"
	search.CharLimit = 80

	owner := textinput.New()
	owner.Placeholder = "filter by cook"
	owner.CharLimit = 80

	login := textinput.New()
	login.Placeholder = "your display name"
	login.CharLimit = 80

	rate := textinput.New()
	rate.Placeholder = "1-5"
	rate.CharLimit = 1

	app := &App{
		ctx:             context.Background(),
		catalog:         deps.Catalog,
		registry:        deps.Registry,
		ratedSets:       deps.RatedSets,
		sess:            deps.Session,
		logger:          logger,
		placeholderBase: deps.PlaceholderBase,
		searchInput:     search,
		ownerInput:      owner,
		loginInput:      login,
		form:            newRecipeForm(),
		rateInput:       rate,
		ratedIDs:        map[string]bool{},
	}
	app.refresh()
	return app, nil
}

// Init satisfies tea.Model.
func (a *App) Init() tea.Cmd {
	return textinput.Blink
}

// Update satisfies tea.Model and dispatches to the active screen.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		switch a.state {
		case stateLogin:
			return a.updateLogin(msg)
		case stateForm:
			return a.updateForm(msg)
		case stateRate:
			return a.updateRate(msg)
		case stateConfirmDelete:
			return a.updateConfirmDelete(msg)
		default:
			return a.updateBrowse(msg)
		}
	}
	return a, nil
}

func (a *App) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// A focused filter input swallows everything except navigation out.
	if a.focus != focusNone {
		switch msg.String() {
		case "esc", "enter":
			a.setFocus(focusNone)
			return a, nil
		case "tab":
			a.cycleFocus()
			return a, nil
		}
		cmd := a.updateFocusedFilter(msg)
		a.refresh()
		return a, cmd
	}

	switch msg.String() {
	case "q":
		return a, tea.Quit
	case "tab", "/":
		a.cycleFocus()
		return a, nil
	case "esc":
		a.statusMsg = ""
		return a, nil
	case "up", "k":
		if a.cursor > 0 {
			a.cursor--
		}
		return a, nil
	case "down", "j":
		if a.cursor < len(a.recipes)-1 {
			a.cursor++
		}
		return a, nil
	case "t":
		a.timeIndex = (a.timeIndex + 1) % len(catalog.TimeBuckets())
		a.refresh()
		return a, nil
	case "f":
		a.diffIndex = (a.diffIndex + 1) % (len(catalog.Difficulties()) + 1)
		a.refresh()
		return a, nil
	case "g":
		a.minRating = (a.minRating + 1) % 6
		a.refresh()
		return a, nil
	case "c":
		a.searchInput.SetValue("")
		a.ownerInput.SetValue("")
		a.timeIndex = 0
		a.diffIndex = 0
		a.minRating = 0
		a.refresh()
		return a, nil
	case "l":
		return a.toggleLogin()
	case "a":
		return a.openCreateForm()
	case "e":
		return a.openEditForm()
	case "x":
		return a.openDeleteConfirm()
	case "r":
		return a.openRatePrompt()
	}
	return a, nil
}

func (a *App) updateLogin(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.state = stateBrowse
		return a, nil
	case "enter":
		return a.submitLogin()
	}
	var cmd tea.Cmd
	a.loginInput, cmd = a.loginInput.Update(msg)
	return a, cmd
}

func (a *App) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.closeForm()
		return a, nil
	case "ctrl+s":
		return a.submitForm()
	case "tab":
		a.form.nextField()
		return a, nil
	case "shift+tab":
		a.form.prevField()
		return a, nil
	}
	cmd := a.form.update(msg)
	return a, cmd
}

func (a *App) updateRate(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		// Abandoning the prompt leaves every record untouched.
		a.state = stateBrowse
		return a, nil
	case "enter":
		return a.submitRate()
	}
	var cmd tea.Cmd
	a.rateInput, cmd = a.rateInput.Update(msg)
	return a, cmd
}

func (a *App) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y", "enter":
		return a.confirmDelete()
	case "n", "N", "esc":
		a.deleteID = ""
		a.state = stateBrowse
		return a, nil
	}
	return a, nil
}

func (a *App) toggleLogin() (tea.Model, tea.Cmd) {
	if _, ok := a.sess.CurrentUser(); ok {
		a.sess.Logout()
		a.statusMsg = "Signed out."
		a.refresh()
		return a, nil
	}
	a.loginInput.SetValue("")
	a.state = stateLogin
	return a, a.loginInput.Focus()
}

func (a *App) submitLogin() (tea.Model, tea.Cmd) {
	user, err := a.registry.Register(a.ctx, a.loginInput.Value())
	if err != nil {
		a.statusMsg = messageFor(err)
		if !errors.Is(err, users.ErrEmptyName) {
			a.logger.Error("login failed", zap.Error(err))
		}
		return a, nil
	}
	a.sess.Login(user)
	a.state = stateBrowse
	a.statusMsg = fmt.Sprintf("Welcome, %s!", user.Name)
	a.refresh()
	return a, nil
}

func (a *App) openCreateForm() (tea.Model, tea.Cmd) {
	if _, ok := a.sess.CurrentUser(); !ok {
		a.statusMsg = messageFor(catalog.ErrLoginRequired)
		return a, nil
	}
	a.form = newRecipeForm()
	a.sess.EndEdit()
	a.state = stateForm
	return a, a.form.focusCurrent()
}

func (a *App) openEditForm() (tea.Model, tea.Cmd) {
	recipe, ok := a.selectedRecipe()
	if !ok {
		return a, nil
	}
	actor, ok := a.sess.CurrentUser()
	if !ok {
		a.statusMsg = messageFor(catalog.ErrLoginRequired)
		return a, nil
	}
	if !catalog.CanModify(actor, recipe) {
		a.statusMsg = messageFor(catalog.ErrNotAllowed)
		return a, nil
	}
	a.form = newRecipeForm()
	a.form.load(recipe)
	a.sess.BeginEdit(recipe.ID)
	a.state = stateForm
	return a, a.form.focusCurrent()
}

func (a *App) closeForm() {
	a.sess.EndEdit()
	a.state = stateBrowse
}

func (a *App) submitForm() (tea.Model, tea.Cmd) {
	actor, ok := a.sess.CurrentUser()
	if !ok {
		a.statusMsg = messageFor(catalog.ErrLoginRequired)
		a.closeForm()
		return a, nil
	}

	draft := a.form.draft()
	var err error
	if editID, editing := a.sess.EditTarget(); editing {
		_, err = a.catalog.Edit(a.ctx, actor, editID, draft)
	} else {
		_, err = a.catalog.Create(a.ctx, actor, draft)
	}
	if err != nil {
		a.statusMsg = messageFor(err)
		return a, nil
	}

	a.statusMsg = "Recipe saved."
	a.closeForm()
	a.refresh()
	return a, nil
}

func (a *App) openDeleteConfirm() (tea.Model, tea.Cmd) {
	recipe, ok := a.selectedRecipe()
	if !ok {
		return a, nil
	}
	actor, ok := a.sess.CurrentUser()
	if !ok {
		a.statusMsg = messageFor(catalog.ErrLoginRequired)
		return a, nil
	}
	if !catalog.CanModify(actor, recipe) {
		a.statusMsg = messageFor(catalog.ErrNotAllowed)
		return a, nil
	}
	a.deleteID = recipe.ID
	a.state = stateConfirmDelete
	return a, nil
}

func (a *App) confirmDelete() (tea.Model, tea.Cmd) {
	actor, _ := a.sess.CurrentUser()
	if err := a.catalog.Delete(a.ctx, actor, a.deleteID); err != nil {
		a.statusMsg = messageFor(err)
	} else {
		a.statusMsg = "Recipe deleted."
	}
	a.deleteID = ""
	a.state = stateBrowse
	a.refresh()
	return a, nil
}

func (a *App) openRatePrompt() (tea.Model, tea.Cmd) {
	recipe, ok := a.selectedRecipe()
	if !ok {
		return a, nil
	}
	actor, ok := a.sess.CurrentUser()
	if !ok {
		a.statusMsg = messageFor(catalog.ErrLoginRequired)
		return a, nil
	}
	if recipe.Owner == actor.Name {
		a.statusMsg = messageFor(catalog.ErrOwnRecipe)
		return a, nil
	}
	if a.ratedIDs[recipe.ID] {
		a.statusMsg = messageFor(catalog.ErrAlreadyRated)
		return a, nil
	}
	a.rateTarget = recipe
	a.rateInput.SetValue("")
	a.state = stateRate
	return a, a.rateInput.Focus()
}

func (a *App) submitRate() (tea.Model, tea.Cmd) {
	actor, _ := a.sess.CurrentUser()
	score, err := strconv.Atoi(a.rateInput.Value())
	if err != nil {
		a.statusMsg = messageFor(catalog.ErrInvalidScore)
		return a, nil
	}
	if _, err := a.catalog.Rate(a.ctx, actor, a.rateTarget.ID, score); err != nil {
		a.statusMsg = messageFor(err)
		if isInternal(err) {
			a.logger.Error("rating failed", zap.Error(err), zap.String("recipe_id", a.rateTarget.ID))
		}
		a.state = stateBrowse
		return a, nil
	}
	a.statusMsg = "Thanks for rating!"
	a.state = stateBrowse
	a.refresh()
	return a, nil
}

func (a *App) setFocus(focus filterFocus) {
	a.focus = focus
	a.searchInput.Blur()
	a.ownerInput.Blur()
	switch focus {
	case focusSearch:
		a.searchInput.Focus()
	case focusOwner:
		a.ownerInput.Focus()
	}
}

func (a *App) cycleFocus() {
	switch a.focus {
	case focusNone:
		a.setFocus(focusSearch)
	case focusSearch:
		a.setFocus(focusOwner)
	default:
		a.setFocus(focusNone)
	}
}

func (a *App) updateFocusedFilter(msg tea.KeyMsg) tea.Cmd {
	var cmd tea.Cmd
	switch a.focus {
	case focusSearch:
		a.searchInput, cmd = a.searchInput.Update(msg)
	case focusOwner:
		a.ownerInput, cmd = a.ownerInput.Update(msg)
	}
	return cmd
}

// currentFilter assembles the filter criteria from the UI controls.
func (a *App) currentFilter() catalog.Filter {
	filter := catalog.Filter{
		NameQuery:  a.searchInput.Value(),
		Time:       catalog.TimeBuckets()[a.timeIndex],
		OwnerQuery: a.ownerInput.Value(),
		MinRating:  a.minRating,
	}
	if a.diffIndex > 0 {
		filter.Difficulty = catalog.Difficulties()[a.diffIndex-1]
	}
	return filter
}

// refresh re-reads the catalog, reapplies the filter, and reloads the
// current user's rated-set. Called after every mutation and filter change.
func (a *App) refresh() {
	all, err := a.catalog.ListAll(a.ctx)
	if err != nil {
		a.logger.Error("catalog read failed", zap.Error(err))
		a.statusMsg = messageFor(err)
		return
	}
	a.recipes = a.currentFilter().Apply(all)

	a.ratedIDs = map[string]bool{}
	if user, ok := a.sess.CurrentUser(); ok {
		ids, err := a.ratedSets.List(a.ctx, user.Name)
		if err != nil {
			a.logger.Error("rated-set read failed", zap.Error(err), zap.String("user", user.Name))
		}
		for _, id := range ids {
			a.ratedIDs[id] = true
		}
	}

	if a.cursor >= len(a.recipes) {
		a.cursor = len(a.recipes) - 1
	}
	if a.cursor < 0 {
		a.cursor = 0
	}
}

func (a *App) selectedRecipe() (catalog.Recipe, bool) {
	if len(a.recipes) == 0 || a.cursor >= len(a.recipes) {
		return catalog.Recipe{}, false
	}
	return a.recipes[a.cursor], true
}

// messageFor maps a service error to the line shown in the status bar.
func messageFor(err error) string {
	switch {
	case errors.Is(err, users.ErrEmptyName):
		return "Please enter a username."
	case errors.Is(err, catalog.ErrNameRequired):
		return "Please enter the recipe name."
	case errors.Is(err, catalog.ErrImageRequired):
		return "Please enter an image link."
	case errors.Is(err, catalog.ErrTimeInvalid):
		return "Cooking time must be a number greater than 0."
	case errors.Is(err, catalog.ErrDifficultyRequired):
		return "Please choose a difficulty."
	case errors.Is(err, catalog.ErrIngredientsRequired):
		return "Add at least one ingredient."
	case errors.Is(err, catalog.ErrStepsRequired):
		return "Add at least one step."
	case errors.Is(err, catalog.ErrLoginRequired):
		return "Sign in before doing that."
	case errors.Is(err, catalog.ErrNotAllowed):
		return "You can only change your own recipes."
	case errors.Is(err, catalog.ErrOwnRecipe):
		return "You cannot rate your own recipe."
	case errors.Is(err, catalog.ErrAlreadyRated):
		return "You already rated this recipe."
	case errors.Is(err, catalog.ErrInvalidScore):
		return "Enter a whole score from 1 to 5."
	case errors.Is(err, catalog.ErrNotFound):
		return "That recipe no longer exists."
	default:
		return "Something went wrong; check the log file."
	}
}

// isInternal reports whether the error is not one of the expected
// user-facing conditions.
func isInternal(err error) bool {
	for _, known := range []error{
		users.ErrEmptyName,
		catalog.ErrNameRequired, catalog.ErrImageRequired, catalog.ErrTimeInvalid,
		catalog.ErrDifficultyRequired, catalog.ErrIngredientsRequired, catalog.ErrStepsRequired,
		catalog.ErrLoginRequired, catalog.ErrNotAllowed, catalog.ErrOwnRecipe,
		catalog.ErrAlreadyRated, catalog.ErrInvalidScore, catalog.ErrNotFound,
	} {
		if errors.Is(err, known) {
			return false
		}
	}
	return true
}
