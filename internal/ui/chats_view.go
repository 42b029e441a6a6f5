package ui

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/rentme/internal/action"
	"github.com/five82/rentme/internal/api"
	"github.com/five82/rentme/internal/router"
	"github.com/five82/rentme/internal/state"
)

func (m *Model) handleChatsKey(msg tea.KeyMsg) tea.Cmd {
	items := m.inbox.Data.Items
	switch {
	case key.Matches(msg, m.keys.Up):
		m.chatCursor = clamp(m.chatCursor-1, len(items))
	case key.Matches(msg, m.keys.Down):
		m.chatCursor = clamp(m.chatCursor+1, len(items))
	case key.Matches(msg, m.keys.Open):
		if m.chatCursor < len(items) {
			m.opts.Router.Navigate(action.ChatPath(items[m.chatCursor].ID), router.NavigateOptions{})
		}
	case key.Matches(msg, m.keys.Refresh):
		m.opts.Inbox.Refresh()
	}
	return nil
}

func (m Model) renderChats(height int) string {
	styles := m.theme.Styles()
	lines := []string{styles.Title.Render("Conversations"), ""}

	snap := m.inbox
	switch {
	case snap.Phase == state.PhaseError && !snap.HasData:
		return strings.Join(append(lines, styles.DangerText.Render(api.Describe(snap.LastError))), "\n")
	case !snap.HasData:
		return strings.Join(append(lines, styles.MutedText.Render("Loading conversations...")), "\n")
	case len(snap.Data.Items) == 0:
		return strings.Join(append(lines, styles.MutedText.Render("No conversations yet.")), "\n")
	}

	rows := max(height-len(lines), 1)
	start := 0
	if m.chatCursor >= rows {
		start = m.chatCursor - rows + 1
	}
	items := snap.Data.Items
	for i := start; i < len(items) && i < start+rows; i++ {
		conv := items[i]
		marker := "  "
		if conv.HasUnread {
			marker = styles.StatusStyle("unread").Render("•") + " "
		}
		row := fmt.Sprintf("%-20s %s", truncate(formatTimestamp(conv.LastMessageAt), 20), truncate(conv.LastMessageText, 60))
		if i == m.chatCursor {
			lines = append(lines, marker+styles.Selected.Render(row))
			continue
		}
		lines = append(lines, marker+styles.Text.Render(row))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderThread() string {
	styles := m.theme.Styles()
	title := styles.Title.Render("Conversation")
	if m.thread != nil {
		title += styles.FaintText.Render("  " + m.thread.ID())
	}
	status := ""
	switch {
	case m.messages.Phase == state.PhaseError:
		status = styles.DangerText.Render(api.Describe(m.messages.LastError))
	case !m.messages.HasData:
		status = styles.MutedText.Render("Loading messages...")
	case len(m.messages.Data.Items) == 0:
		status = styles.MutedText.Render("No messages yet. Say hello.")
	}
	parts := []string{title}
	if status != "" {
		parts = append(parts, status)
	}
	parts = append(parts, m.messagesVP.View())
	if m.mode == inputCompose {
		parts = append(parts, styles.Input.Render(m.input.View()))
	} else {
		parts = append(parts, styles.FaintText.Render("enter to write"))
	}
	return strings.Join(parts, "\n")
}

// renderMessages lays messages out oldest first. The API returns the
// newest first.
func (m Model) renderMessages() string {
	styles := m.theme.Styles()
	var me string
	if u := m.currentUser(); u != nil {
		me = u.ID
	}
	items := slices.Clone(m.messages.Data.Items)
	slices.Reverse(items)
	lines := make([]string, 0, len(items))
	for _, msg := range items {
		who := styles.AccentText.Render("them")
		if me != "" && msg.SenderID == me {
			who = styles.SuccessText.Render("you")
		}
		lines = append(lines, fmt.Sprintf("%s %s %s", styles.FaintText.Render(formatTimestamp(msg.CreatedAt)), who, msg.Text))
	}
	return strings.Join(lines, "\n")
}
