package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/plateup-labs/plateup/internal/catalog"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#F2A65A"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888"))

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#5B8DEF"))

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444444")).
			Padding(0, 1)

	selectedCardStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("#F2A65A")).
				Padding(0, 1)

	badgeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#7BC96F"))

	promptBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#5B8DEF")).
			Padding(1, 2)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#AAAAAA"))
)

// View satisfies tea.Model.
func (a *App) View() string {
	switch a.state {
	case stateLogin:
		return a.renderLogin()
	case stateForm:
		return a.renderForm()
	case stateRate:
		return a.renderRate()
	case stateConfirmDelete:
		return a.renderConfirmDelete()
	default:
		return a.renderBrowse()
	}
}

func (a *App) renderBrowse() string {
	sections := []string{
		a.renderHeader(),
		a.renderFilterBar(),
		a.renderCards(),
	}
	if a.statusMsg != "" {
		sections = append(sections, statusStyle.Render(a.statusMsg))
	}
	sections = append(sections, a.renderHelp())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (a *App) renderHeader() string {
	who := "signed out - press l to sign in"
	if user, ok := a.sess.CurrentUser(); ok {
		who = fmt.Sprintf("signed in as %s", user.Name)
		if user.IsAdmin() {
			who += " (admin)"
		}
	}
	return titleStyle.Render("plateup") + "  " + dimStyle.Render(who)
}

func (a *App) renderFilterBar() string {
	diff := "any difficulty"
	if a.diffIndex > 0 {
		diff = string(catalog.Difficulties()[a.diffIndex-1])
	}
	rating := "any rating"
	if a.minRating > 0 {
		rating = fmt.Sprintf("%d+ stars", a.minRating)
	}
	bucket := catalog.TimeBuckets()[a.timeIndex]

	parts := []string{
		fmt.Sprintf("search: %s", a.searchInput.View()),
		fmt.Sprintf("cook: %s", a.ownerInput.View()),
		fmt.Sprintf("[t] %s", bucket.Label()),
		fmt.Sprintf("[f] %s", diff),
		fmt.Sprintf("[g] %s", rating),
	}
	return labelStyle.Render(strings.Join(parts, "   "))
}

func (a *App) renderCards() string {
	if len(a.recipes) == 0 {
		return dimStyle.Render("\nNo recipes match. Press a to add one.\n")
	}
	cards := make([]string, 0, len(a.recipes))
	for i, recipe := range a.recipes {
		cards = append(cards, a.renderCard(recipe, i == a.cursor))
	}
	return lipgloss.JoinVertical(lipgloss.Left, cards...)
}

func (a *App) renderCard(r catalog.Recipe, selected bool) string {
	rating := "not rated yet"
	if r.RatingCount > 0 {
		rating = fmt.Sprintf("%.1f stars (%d)", r.EffectiveRating(), r.RatingCount)
	}

	var badges []string
	if user, ok := a.sess.CurrentUser(); ok {
		if catalog.CanModify(user, r) {
			badges = append(badges, badgeStyle.Render("[mine]"))
		}
		if a.ratedIDs[r.ID] {
			badges = append(badges, badgeStyle.Render("[rated]"))
		}
	}

	header := titleStyle.Render(r.Name)
	if len(badges) > 0 {
		header += " " + strings.Join(badges, " ")
	}

	lines := []string{
		header,
		dimStyle.Render(fmt.Sprintf("by %s - %d min - %s - %s", r.Owner, r.TimeMinutes, r.Difficulty, rating)),
		fmt.Sprintf("ingredients: %s", strings.Join(r.Ingredients, ", ")),
		fmt.Sprintf("steps: %s", strings.Join(r.Steps, ". ")),
		dimStyle.Render(r.DisplayImageURL(a.placeholderBase)),
	}

	style := cardStyle
	if selected {
		style = selectedCardStyle
	}
	width := a.width - 4
	if width < 40 {
		width = 76
	}
	return style.Width(width).Render(strings.Join(lines, "\n"))
}

func (a *App) renderHelp() string {
	return dimStyle.Render("up/down move - tab filters - a add - e edit - x delete - r rate - l sign in/out - c clear filters - q quit")
}

func (a *App) renderLogin() string {
	body := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Sign in"),
		"",
		a.loginInput.View(),
		"",
		dimStyle.Render("enter to sign in - esc to cancel"),
	)
	return promptBoxStyle.Render(body)
}

func (a *App) renderForm() string {
	heading := "Add recipe"
	if _, editing := a.sess.EditTarget(); editing {
		heading = "Edit recipe"
	}

	field := func(f formField, label, view string) string {
		marker := "  "
		if a.form.focus == f {
			marker = "> "
		}
		return marker + labelStyle.Render(label) + " " + view
	}

	body := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(heading),
		"",
		field(fieldName, "name:      ", a.form.name.View()),
		field(fieldImage, "image:     ", a.form.image.View()),
		field(fieldMinutes, "minutes:   ", a.form.minutes.View()),
		field(fieldDifficulty, "difficulty:", a.form.difficultyLabel()),
		field(fieldIngredients, "ingredients", ""),
		a.form.ingredients.View(),
		field(fieldSteps, "steps", ""),
		a.form.steps.View(),
		"",
		statusStyle.Render(a.statusMsg),
		dimStyle.Render("tab next field - ctrl+s save - esc cancel"),
	)
	return promptBoxStyle.Render(body)
}

func (a *App) renderRate() string {
	body := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(fmt.Sprintf("Rate %q", a.rateTarget.Name)),
		"",
		"score (1-5): "+a.rateInput.View(),
		"",
		statusStyle.Render(a.statusMsg),
		dimStyle.Render("enter to submit - esc to cancel"),
	)
	return promptBoxStyle.Render(body)
}

func (a *App) renderConfirmDelete() string {
	body := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Delete this recipe?"),
		"",
		dimStyle.Render("y to delete - n to keep it"),
	)
	return promptBoxStyle.Render(body)
}
