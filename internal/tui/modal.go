package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// confirmChoice is the outcome of a closed modal.
type confirmChoice int

const (
	choiceNone confirmChoice = iota
	choiceCancel
	choiceConfirm
)

// confirmModal asks before ending a session early.
type confirmModal struct {
	open      bool
	completed int
	total     int
	// focused is true when "Yes, End Session" is selected.
	focused bool
}

// Open shows the modal for a session with completed of total rounds done.
// Cancel is selected initially.
func (c *confirmModal) Open(completed, total int) {
	c.open = true
	c.completed = completed
	c.total = total
	c.focused = false
}

// Close hides the modal.
func (c *confirmModal) Close() {
	c.open = false
	c.focused = false
}

// IsOpen returns true if the modal is open.
func (c *confirmModal) IsOpen() bool {
	return c.open
}

// HandleKey processes a key while the modal is open and returns the choice
// made, if any. The modal closes once a choice is made.
func (c *confirmModal) HandleKey(msg tea.KeyMsg) confirmChoice {
	switch msg.String() {
	case "esc", "n", "q":
		c.Close()
		return choiceCancel

	case "y":
		c.Close()
		return choiceConfirm

	case "left", "right", "tab", "shift+tab", "h", "l":
		c.focused = !c.focused
		return choiceNone

	case "enter", " ":
		confirmed := c.focused
		c.Close()
		if confirmed {
			return choiceConfirm
		}
		return choiceCancel
	}

	return choiceNone
}

// Message returns the confirmation question.
func (c *confirmModal) Message() string {
	return fmt.Sprintf("Are you sure you want to end this session? You've completed %d of %d rounds.",
		c.completed, c.total)
}

// View renders the modal at most width columns wide.
func (c *confirmModal) View(width int) string {
	if !c.open {
		return ""
	}

	modalWidth := min(56, max(30, width-4))

	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("205")).
		Render("End Session Early?")

	body := lipgloss.NewStyle().
		Width(modalWidth - 6).
		Render(c.Message())

	button := lipgloss.NewStyle().Padding(0, 1)
	selected := button.
		Bold(true).
		Foreground(lipgloss.Color("255")).
		Background(lipgloss.Color("63"))

	cancel, confirm := selected.Render("Cancel"), button.Render("Yes, End Session")
	if c.focused {
		cancel, confirm = button.Render("Cancel"), selected.Render("Yes, End Session")
	}
	buttons := lipgloss.JoinHorizontal(lipgloss.Top, cancel, "  ", confirm)

	hint := styles.Footer.Render("[←/→] choose  [enter] select  [y/n]")

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("205")).
		Padding(1, 2).
		Width(modalWidth).
		Render(lipgloss.JoinVertical(lipgloss.Left, title, "", body, "", buttons, "", hint))
}
