package ui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/five82/rentme/internal/action"
	"github.com/five82/rentme/internal/api"
	"github.com/five82/rentme/internal/catalog"
	"github.com/five82/rentme/internal/chat"
	"github.com/five82/rentme/internal/overlay"
	"github.com/five82/rentme/internal/prefs"
	"github.com/five82/rentme/internal/router"
	"github.com/five82/rentme/internal/session"
	"github.com/five82/rentme/internal/state"
)

const defaultRefreshInterval = 250 * time.Millisecond

// Client is the part of the API the screens call directly.
type Client interface {
	action.Conversations
	action.Bookings
}

// Options configure the UI.
type Options struct {
	Context context.Context
	Router  *router.Memory
	Catalog *catalog.Controller
	Preview *overlay.Overlay[api.ListingOverview]
	Inbox   *chat.Inbox
	// OpenThread builds a disabled thread poller for a conversation.
	OpenThread func(conversationID string) *chat.Thread
	Actions    *action.Runner
	Client     Client
	Auth       *session.Authenticator
	Prefs      prefs.Prefs
	PrefsPath  string
	Logger     zerolog.Logger

	// RefreshInterval paces how often controller snapshots are re-read.
	RefreshInterval time.Duration
}

type screen int

const (
	screenCatalog screen = iota
	screenChats
	screenThread
	screenLogin
	screenOther
)

type inputMode int

const (
	inputNone inputMode = iota
	inputCity
	inputPrice
	inputDates
	inputCompose
	inputEmail
	inputPassword
)

// Model is the Bubble Tea model for the rentme client.
type Model struct {
	opts  Options
	ctx   context.Context
	keys  keyMap
	theme Theme

	width    int
	height   int
	showHelp bool

	loc         router.Location
	screen      screen
	lastCatalog string
	inboxOn     bool
	thread      *chat.Thread

	listings state.Snapshot[api.ListingCatalog]
	detail   state.Snapshot[api.ListingOverview]
	inbox    state.Snapshot[api.ConversationList]
	messages state.Snapshot[api.ChatMessageList]

	cursor     int
	chatCursor int

	input      textinput.Model
	mode       inputMode
	loginEmail string
	messagesVP viewport.Model

	notice    string
	noticeErr bool
}

// New creates a new UI model.
func New(opts Options) Model {
	if opts.Context == nil {
		opts.Context = context.Background()
	}
	if opts.RefreshInterval <= 0 {
		opts.RefreshInterval = defaultRefreshInterval
	}
	ti := textinput.New()
	ti.CharLimit = 500
	m := Model{
		opts:        opts,
		ctx:         opts.Context,
		keys:        DefaultKeyMap(),
		theme:       GetTheme(opts.Prefs.Theme),
		input:       ti,
		messagesVP:  viewport.New(80, 10),
		lastCatalog: catalog.DefaultPath,
	}
	m.syncRoute()
	m.refresh()
	return m
}

// tickMsg triggers a snapshot refresh.
type tickMsg time.Time

// actionDoneMsg reports the outcome of a user action.
type actionDoneMsg struct {
	notice string
	err    error
}

// loginDoneMsg reports a sign in attempt.
type loginDoneMsg struct {
	err error
}

// sentMsg reports a sent chat message.
type sentMsg struct {
	err error
}

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(tea.EnterAltScreen, textinput.Blink, tickCmd(m.opts.RefreshInterval))
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		cmd := m.handleKey(msg)
		m.syncRoute()
		m.refresh()
		return m, cmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.messagesVP.Width = max(msg.Width-4, 20)
		m.messagesVP.Height = max(msg.Height-8, 3)
		m.refresh()
		return m, nil

	case tickMsg:
		m.syncRoute()
		m.refresh()
		return m, tickCmd(m.opts.RefreshInterval)

	case actionDoneMsg:
		m.report(msg.notice, msg.err)
		m.syncRoute()
		m.refresh()
		return m, nil

	case loginDoneMsg:
		if msg.err != nil {
			m.report("", msg.err)
			m.beginInput(inputEmail, m.loginEmail)
			return m, nil
		}
		m.report("Signed in", nil)
		m.opts.Router.Navigate(action.RedirectTarget(m.loc), router.NavigateOptions{Replace: true})
		m.syncRoute()
		m.refresh()
		return m, nil

	case sentMsg:
		if msg.err != nil {
			m.report("", msg.err)
		}
		return m, nil
	}

	if m.mode != inputNone {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

// report sets the footer notice.
func (m *Model) report(notice string, err error) {
	if err != nil {
		if desc := api.Describe(err); desc != "" {
			m.notice, m.noticeErr = desc, true
			return
		}
		if !api.IsCancelled(err) {
			m.notice, m.noticeErr = err.Error(), true
		}
		return
	}
	m.notice, m.noticeErr = notice, false
}

// syncRoute applies route guards and mounts the pollers the current
// location needs.
func (m *Model) syncRoute() {
	authed := m.opts.Auth.Authenticated()
	loc := m.opts.Router.Location()
	if loc.Pathname == "/" || loc.Pathname == "" {
		m.opts.Router.Navigate(catalog.DefaultPath, router.NavigateOptions{Replace: true})
		loc = m.opts.Router.Location()
	}
	if target := action.Guard(loc, authed); target != "" {
		m.opts.Router.Navigate(target, router.NavigateOptions{Replace: true})
		loc = m.opts.Router.Location()
	}

	if authed != m.inboxOn {
		m.opts.Inbox.SetEnabled(m.ctx, authed)
		m.inboxOn = authed
	}

	convID, inThread := action.ConversationFromPath(loc.Pathname)
	if m.thread != nil && (!inThread || m.thread.ID() != convID) {
		m.thread.Close()
		m.thread = nil
	}
	if inThread && authed && m.thread == nil && m.opts.OpenThread != nil {
		m.thread = m.opts.OpenThread(convID)
		m.thread.Enable(m.ctx)
	}

	if loc.String() == m.loc.String() {
		return
	}
	prev := m.screen
	m.loc = loc
	m.screen = screenFor(loc)
	if m.screen == screenCatalog {
		m.lastCatalog = loc.WithoutParam(overlay.DefaultParam)
	}
	if m.screen != prev {
		m.endInput()
		m.cursor, m.chatCursor = 0, 0
		switch m.screen {
		case screenThread:
			m.beginInput(inputCompose, "")
		case screenLogin:
			if authed {
				m.opts.Router.Navigate(action.RedirectTarget(loc), router.NavigateOptions{Replace: true})
				m.syncRoute()
				return
			}
			m.beginInput(inputEmail, "")
		}
	}
}

func screenFor(loc router.Location) screen {
	switch {
	case loc.Pathname == catalog.DefaultPath:
		return screenCatalog
	case loc.Pathname == action.ChatsRoute:
		return screenChats
	case loc.Pathname == action.LoginRoute:
		return screenLogin
	}
	if _, ok := action.ConversationFromPath(loc.Pathname); ok {
		return screenThread
	}
	return screenOther
}

// refresh re-reads controller snapshots.
func (m *Model) refresh() {
	m.listings = m.opts.Catalog.Snapshot()
	m.detail = m.opts.Preview.Detail()
	m.inbox = m.opts.Inbox.Snapshot()
	if m.thread != nil {
		m.messages = m.thread.Snapshot()
	} else {
		m.messages = state.Snapshot[api.ChatMessageList]{}
	}
	m.cursor = clamp(m.cursor, len(m.listings.Data.Items))
	m.chatCursor = clamp(m.chatCursor, len(m.inbox.Data.Items))
	if m.screen == screenThread {
		atBottom := m.messagesVP.AtBottom()
		m.messagesVP.SetContent(m.renderMessages())
		if atBottom {
			m.messagesVP.GotoBottom()
		}
	}
}

func clamp(i, n int) int {
	if n == 0 || i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

func (m *Model) beginInput(mode inputMode, value string) {
	m.mode = mode
	m.input.Reset()
	m.input.SetValue(value)
	m.input.CursorEnd()
	m.input.EchoMode = textinput.EchoNormal
	switch mode {
	case inputCity:
		m.input.Prompt = "city: "
		m.input.Placeholder = "any city"
	case inputPrice:
		m.input.Prompt = "price: "
		m.input.Placeholder = "min-max, e.g. 50-200"
	case inputDates:
		m.input.Prompt = "dates: "
		m.input.Placeholder = "YYYY-MM-DD YYYY-MM-DD"
	case inputCompose:
		m.input.Prompt = "> "
		m.input.Placeholder = "write a message"
	case inputEmail:
		m.input.Prompt = "email: "
		m.input.Placeholder = "you@example.com"
	case inputPassword:
		m.input.Prompt = "password: "
		m.input.Placeholder = ""
		m.input.EchoMode = textinput.EchoPassword
	}
	m.input.Focus()
}

func (m *Model) endInput() {
	m.mode = inputNone
	m.input.Blur()
	m.input.Reset()
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if msg.String() == "ctrl+c" {
		return tea.Quit
	}
	if m.showHelp {
		if key.Matches(msg, m.keys.Help) || key.Matches(msg, m.keys.Close) || key.Matches(msg, m.keys.Quit) {
			m.showHelp = false
		}
		return nil
	}
	if m.mode != inputNone {
		return m.handleInputKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return nil
	case key.Matches(msg, m.keys.Theme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.savePrefs()
		return nil
	case key.Matches(msg, m.keys.Back):
		m.opts.Router.Back()
		return nil
	case key.Matches(msg, m.keys.Catalog):
		m.opts.Router.Navigate(m.lastCatalog, router.NavigateOptions{})
		return nil
	case key.Matches(msg, m.keys.Chats):
		m.opts.Router.Navigate(action.ChatsRoute, router.NavigateOptions{})
		return nil
	case key.Matches(msg, m.keys.Login):
		if !m.opts.Auth.Authenticated() {
			m.opts.Router.Navigate(action.LoginPath(m.loc), router.NavigateOptions{})
		}
		return nil
	case key.Matches(msg, m.keys.Logout):
		return m.logoutCmd()
	}

	switch m.screen {
	case screenCatalog:
		return m.handleCatalogKey(msg)
	case screenChats:
		return m.handleChatsKey(msg)
	case screenThread:
		if key.Matches(msg, m.keys.Open) {
			m.beginInput(inputCompose, "")
		}
	case screenLogin:
		if key.Matches(msg, m.keys.Open) {
			m.beginInput(inputEmail, m.loginEmail)
		}
	}
	return nil
}

func (m *Model) handleInputKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEsc:
		mode := m.mode
		m.endInput()
		if mode == inputCompose {
			m.opts.Router.Navigate(action.ChatsRoute, router.NavigateOptions{})
		}
		return nil
	case tea.KeyEnter:
		return m.commitInput()
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return cmd
}

func (m *Model) commitInput() tea.Cmd {
	value := m.input.Value()
	mode := m.mode
	switch mode {
	case inputCity, inputPrice, inputDates:
		m.endInput()
		return m.commitFilter(mode, value)
	case inputCompose:
		m.input.Reset()
		return m.sendCmd(value)
	case inputEmail:
		m.loginEmail = value
		m.beginInput(inputPassword, "")
		return nil
	case inputPassword:
		m.endInput()
		return m.loginCmd(m.loginEmail, value)
	}
	return nil
}

// savePrefs persists the theme and the last catalog query.
func (m Model) savePrefs() {
	if m.opts.PrefsPath == "" {
		return
	}
	p := m.opts.Prefs
	p.Theme = m.theme.Name
	p.LastCatalogQuery = strings.TrimPrefix(router.Parse(m.lastCatalog).Search, "?")
	if err := prefs.Save(m.opts.PrefsPath, p); err != nil {
		m.opts.Logger.Warn().Err(err).Msg("save prefs failed")
	}
}

func (m Model) currentUser() *api.UserProfile {
	if !m.opts.Auth.Authenticated() {
		return nil
	}
	if u, ok := m.opts.Auth.User(); ok {
		return &u
	}
	return nil
}

func (m Model) loginCmd(email, password string) tea.Cmd {
	ctx, auth := m.ctx, m.opts.Auth
	return func() tea.Msg {
		_, err := auth.Login(ctx, email, password)
		return loginDoneMsg{err: err}
	}
}

func (m Model) logoutCmd() tea.Cmd {
	if !m.opts.Auth.Authenticated() {
		return nil
	}
	ctx, auth := m.ctx, m.opts.Auth
	return func() tea.Msg {
		return actionDoneMsg{notice: "Signed out", err: auth.Logout(ctx)}
	}
}

func (m Model) sendCmd(text string) tea.Cmd {
	thread, ctx := m.thread, m.ctx
	if thread == nil {
		return nil
	}
	return func() tea.Msg {
		_, err := thread.Send(ctx, text)
		return sentMsg{err: err}
	}
}

// View implements tea.Model.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	header := m.renderHeader()
	footer := m.renderFooter()
	bodyHeight := max(m.height-lipgloss.Height(header)-lipgloss.Height(footer), 1)

	var body string
	switch m.screen {
	case screenCatalog:
		body = m.renderCatalog(bodyHeight)
	case screenChats:
		body = m.renderChats(bodyHeight)
	case screenThread:
		body = m.renderThread()
	case screenLogin:
		body = m.renderLogin()
	default:
		body = m.renderElsewhere()
	}
	body = lipgloss.NewStyle().Height(bodyHeight).MaxHeight(bodyHeight).Width(m.width).Render(body)

	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}

// Run starts the UI and blocks until the user quits.
func Run(opts Options) error {
	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(m.ctx))
	final, err := p.Run()
	if fm, ok := final.(Model); ok {
		if fm.thread != nil {
			fm.thread.Close()
		}
		fm.savePrefs()
	}
	return err
}
