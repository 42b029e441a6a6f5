package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
)

type helpSection struct {
	title    string
	bindings []key.Binding
}

func (m Model) helpSections() []helpSection {
	k := m.keys
	return []helpSection{
		{"Global", []key.Binding{k.Catalog, k.Chats, k.Back, k.Login, k.Logout, k.Theme, k.Help, k.Quit}},
		{"Catalog", []key.Binding{k.Up, k.Down, k.Open, k.Search, k.Dates, k.Price, k.MoreGuest, k.LessGuest, k.Apply}},
		{"Facets", []key.Binding{k.Sort, k.Type, k.Term, k.NextPage, k.PrevPage, k.Refresh, k.Reset}},
		{"Listing", []key.Binding{k.Contact, k.Book, k.Close}},
	}
}

// renderHelp draws the key reference as a centered modal.
func (m Model) renderHelp() string {
	styles := m.theme.Styles()
	var b strings.Builder
	b.WriteString(styles.Title.Render("Keys"))
	b.WriteString("\n")
	for _, section := range m.helpSections() {
		b.WriteString("\n")
		b.WriteString(styles.AccentText.Bold(true).Render(section.title))
		b.WriteString("\n")
		for _, binding := range section.bindings {
			h := binding.Help()
			fmt.Fprintf(&b, "  %s %s\n", styles.Text.Render(fmt.Sprintf("%-8s", h.Key)), styles.MutedText.Render(h.Desc))
		}
	}
	b.WriteString("\n")
	b.WriteString(styles.FaintText.Render("? or esc to close"))

	modal := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(m.theme.BorderFocus)).
		Padding(1, 2).
		Render(b.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal)
}
