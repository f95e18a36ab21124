package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// List styles.
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// SubstitutionItem is one proposed substitution presented for review.
type SubstitutionItem struct {
	OldName string
	NewName string
	Version string
	Apply   bool
}

// ReviewModel is the bubbletea model for interactively choosing which
// substitutions a migrate run should apply. All items start selected.
type ReviewModel struct {
	Items     []SubstitutionItem
	Cursor    int
	Confirmed bool
}

// NewReviewModel creates a review model with every substitution selected.
func NewReviewModel(items []SubstitutionItem) ReviewModel {
	for i := range items {
		items[i].Apply = true
	}
	return ReviewModel{Items: items}
}

func (m ReviewModel) Init() tea.Cmd {
	return nil
}

func (m ReviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.Confirmed = false
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
			}
		case "down", "j":
			if m.Cursor < len(m.Items)-1 {
				m.Cursor++
			}
		case " ":
			if len(m.Items) > 0 {
				m.Items[m.Cursor].Apply = !m.Items[m.Cursor].Apply
			}
		case "a":
			for i := range m.Items {
				m.Items[i].Apply = true
			}
		case "n":
			for i := range m.Items {
				m.Items[i].Apply = false
			}
		case "enter":
			m.Confirmed = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m ReviewModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Review Substitutions"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("arrows: navigate  space: toggle  a: all  n: none  enter: apply  q: abort"))
	b.WriteString("\n\n")

	for i, item := range m.Items {
		cursor := "  "
		if i == m.Cursor {
			cursor = "> "
		}

		check := "[ ]"
		if item.Apply {
			check = "[" + StyleSuccess.Render("x") + "]"
		}

		line := fmt.Sprintf("%s%s %s %s %s %s", cursor, check,
			item.OldName, iconArrow, item.NewName, listDimStyle.Render(item.Version))

		if i == m.Cursor {
			b.WriteString(listSelectedStyle.Render(line))
		} else if item.Apply {
			b.WriteString(listNormalStyle.Render(line))
		} else {
			b.WriteString(listDimStyle.Render(line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  %d of %d selected", m.selectedCount(), len(m.Items))))

	return b.String()
}

func (m ReviewModel) selectedCount() int {
	count := 0
	for _, item := range m.Items {
		if item.Apply {
			count++
		}
	}
	return count
}

// Selected returns the substitutions left enabled, or nil when the review
// was aborted.
func (m ReviewModel) Selected() []SubstitutionItem {
	if !m.Confirmed {
		return nil
	}
	var out []SubstitutionItem
	for _, item := range m.Items {
		if item.Apply {
			out = append(out, item)
		}
	}
	return out
}
