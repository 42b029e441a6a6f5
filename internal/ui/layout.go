package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/rentme/internal/action"
	"github.com/five82/rentme/internal/chat"
)

func (m Model) renderHeader() string {
	styles := m.theme.Styles()
	parts := []string{styles.Title.Render("rentme")}

	tabs := []struct {
		label  string
		active bool
	}{
		{"1 catalog", m.screen == screenCatalog},
		{"2 chats", m.screen == screenChats || m.screen == screenThread},
	}
	for _, tab := range tabs {
		if tab.active {
			parts = append(parts, styles.AccentText.Bold(true).Render(tab.label))
		} else {
			parts = append(parts, styles.MutedText.Render(tab.label))
		}
	}
	if chat.HasUnread(m.inbox) {
		parts = append(parts, styles.StatusStyle("unread").Render("new messages"))
	}

	who := styles.FaintText.Render("signed out · L to sign in")
	if u := m.currentUser(); u != nil {
		who = styles.Text.Render(firstNonEmpty(u.Name, u.Email))
	} else if m.opts.Auth.Authenticated() {
		who = styles.Text.Render("signed in")
	}

	left := strings.Join(parts, "  ")
	gap := max(m.width-lipgloss.Width(left)-lipgloss.Width(who)-2, 1)
	return styles.Header.Width(m.width).Render(left + strings.Repeat(" ", gap) + who)
}

func (m Model) renderFooter() string {
	styles := m.theme.Styles()
	if m.mode != inputNone && m.screen == screenCatalog {
		return styles.Footer.Width(m.width).Render(m.input.View() + styles.FaintText.Render("  enter apply · esc cancel"))
	}
	if m.notice != "" {
		style := styles.SuccessText
		if m.noticeErr {
			style = styles.DangerText
		}
		return styles.Footer.Width(m.width).Render(style.Render(m.notice))
	}
	var hints string
	switch m.screen {
	case screenCatalog:
		if m.opts.Preview.Open() {
			hints = "c contact · b book · esc close · ? help"
		} else {
			hints = "j/k move · enter open · / city · d dates · $ price · s sort · t type · m term · n/p page · ? help"
		}
	case screenChats:
		hints = "j/k move · enter open · r refresh · ? help"
	case screenThread:
		hints = "enter send · esc back to chats"
	case screenLogin:
		hints = "enter next · esc cancel"
	default:
		hints = "1 catalog · 2 chats · ? help · q quit"
	}
	return styles.Footer.Width(m.width).Render(hints)
}

func (m Model) renderLogin() string {
	styles := m.theme.Styles()
	lines := []string{
		styles.Title.Render("Sign in"),
		styles.MutedText.Render("This page needs an account. Sign in to continue."),
		"",
	}
	if m.loginEmail != "" && m.mode == inputPassword {
		lines = append(lines, styles.Text.Render("email: "+m.loginEmail))
	}
	if m.mode == inputEmail || m.mode == inputPassword {
		lines = append(lines, styles.Input.Render(m.input.View()))
	} else {
		lines = append(lines, styles.FaintText.Render("press enter to start"))
	}
	return lipgloss.NewStyle().Padding(1, 2).Render(strings.Join(lines, "\n"))
}

// commandFor maps routes without a screen to the CLI command serving them.
func commandFor(path string) string {
	switch {
	case path == action.BookingsRoute:
		return "rentme bookings"
	case strings.HasPrefix(path, "/host/bookings"):
		return "rentme host bookings"
	case strings.HasPrefix(path, "/host"):
		return "rentme host listings"
	case strings.HasPrefix(path, "/admin"):
		return "rentme admin users"
	}
	return ""
}

func (m Model) renderElsewhere() string {
	styles := m.theme.Styles()
	if cmd := commandFor(m.loc.Pathname); cmd != "" {
		return styles.MutedText.Render("Run ") + styles.AccentText.Render(cmd) +
			styles.MutedText.Render(" from a shell for this page. Press 1 for the catalog.")
	}
	return styles.MutedText.Render("Nothing to show here. Press 1 for the catalog.")
}
