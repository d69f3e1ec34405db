package tui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/plateup-labs/plateup/internal/catalog"
)

// formField indexes the form inputs in traversal order.
type formField int

const (
	fieldName formField = iota
	fieldImage
	fieldMinutes
	fieldDifficulty
	fieldIngredients
	fieldSteps
	fieldCount
)

// recipeForm is the add/edit form: three line inputs, a cycled difficulty
// selector, and two multi-line areas. One ingredient or step per line.
type recipeForm struct {
	name        textinput.Model
	image       textinput.Model
	minutes     textinput.Model
	diffIndex   int // 0 = not chosen, otherwise catalog.Difficulties()[diffIndex-1]
	ingredients textarea.Model
	steps       textarea.Model
	focus       formField
}

func newRecipeForm() recipeForm {
	name := textinput.New()
	name.Placeholder = "recipe name"
	name.CharLimit = 120

	image := textinput.New()
	image.Placeholder = "image link"
	image.CharLimit = 512

	minutes := textinput.New()
	minutes.Placeholder = "cooking time, minutes"
	minutes.CharLimit = 4

	ingredients := textarea.New()
	ingredients.Placeholder = "one ingredient per line"
	ingredients.SetHeight(4)

	steps := textarea.New()
	steps.Placeholder = "one step per line"
	steps.SetHeight(4)

	return recipeForm{
		name:        name,
		image:       image,
		minutes:     minutes,
		ingredients: ingredients,
		steps:       steps,
	}
}

// load fills the form from an existing recipe for editing.
func (f *recipeForm) load(r catalog.Recipe) {
	f.name.SetValue(r.Name)
	f.image.SetValue(r.ImageURL)
	f.minutes.SetValue(strconv.Itoa(r.TimeMinutes))
	for i, d := range catalog.Difficulties() {
		if d == r.Difficulty {
			f.diffIndex = i + 1
		}
	}
	f.ingredients.SetValue(strings.Join(r.Ingredients, "\n"))
	f.steps.SetValue(strings.Join(r.Steps, "\n"))
}

// draft assembles the form values. A minutes field that does not parse as
// an integer becomes zero, which validation rejects with the time message.
func (f *recipeForm) draft() catalog.Draft {
	minutes, err := strconv.Atoi(strings.TrimSpace(f.minutes.Value()))
	if err != nil {
		minutes = 0
	}
	draft := catalog.Draft{
		Name:        f.name.Value(),
		ImageURL:    f.image.Value(),
		TimeMinutes: minutes,
		Ingredients: catalog.SplitLines(f.ingredients.Value()),
		Steps:       catalog.SplitLines(f.steps.Value()),
	}
	if f.diffIndex > 0 {
		draft.Difficulty = catalog.Difficulties()[f.diffIndex-1]
	}
	return draft
}

func (f *recipeForm) nextField() {
	f.focus = (f.focus + 1) % fieldCount
	f.focusCurrent()
}

func (f *recipeForm) prevField() {
	f.focus = (f.focus + fieldCount - 1) % fieldCount
	f.focusCurrent()
}

// focusCurrent moves keyboard focus to the active field and blurs the rest.
func (f *recipeForm) focusCurrent() tea.Cmd {
	f.name.Blur()
	f.image.Blur()
	f.minutes.Blur()
	f.ingredients.Blur()
	f.steps.Blur()
	switch f.focus {
	case fieldName:
		return f.name.Focus()
	case fieldImage:
		return f.image.Focus()
	case fieldMinutes:
		return f.minutes.Focus()
	case fieldIngredients:
		return f.ingredients.Focus()
	case fieldSteps:
		return f.steps.Focus()
	}
	return nil
}

// update routes a key press to the focused field. Enter advances on the
// single-line fields; inside a text area it inserts a newline as usual.
func (f *recipeForm) update(msg tea.KeyMsg) tea.Cmd {
	key := msg.String()

	if f.focus == fieldDifficulty {
		switch key {
		case "left", "h":
			f.diffIndex = (f.diffIndex + len(catalog.Difficulties())) % (len(catalog.Difficulties()) + 1)
		case "right", "l", " ", "enter":
			f.diffIndex = (f.diffIndex + 1) % (len(catalog.Difficulties()) + 1)
		}
		return nil
	}

	if key == "enter" && f.focus != fieldIngredients && f.focus != fieldSteps {
		f.nextField()
		return nil
	}

	var cmd tea.Cmd
	switch f.focus {
	case fieldName:
		f.name, cmd = f.name.Update(msg)
	case fieldImage:
		f.image, cmd = f.image.Update(msg)
	case fieldMinutes:
		f.minutes, cmd = f.minutes.Update(msg)
	case fieldIngredients:
		f.ingredients, cmd = f.ingredients.Update(msg)
	case fieldSteps:
		f.steps, cmd = f.steps.Update(msg)
	}
	return cmd
}

// difficultyLabel names the current selector position.
func (f *recipeForm) difficultyLabel() string {
	if f.diffIndex == 0 {
		return "choose..."
	}
	return string(catalog.Difficulties()[f.diffIndex-1])
}
