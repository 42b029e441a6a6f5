package ui

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/rentme/internal/action"
	"github.com/five82/rentme/internal/api"
	"github.com/five82/rentme/internal/catalog"
	"github.com/five82/rentme/internal/chat"
	"github.com/five82/rentme/internal/overlay"
	"github.com/five82/rentme/internal/prefs"
	"github.com/five82/rentme/internal/router"
	"github.com/five82/rentme/internal/session"
)

// backend answers every endpoint the UI reaches with canned data.
type backend struct {
	mu       sync.Mutex
	queries  []string
	threads  []string
	bookings []api.CreateBookingRequest
}

func (b *backend) ListListings(_ context.Context, q string) (api.ListingCatalog, error) {
	b.mu.Lock()
	b.queries = append(b.queries, q)
	b.mu.Unlock()
	return api.ListingCatalog{
		Items: []api.ListingRecord{
			{ID: "l1", HostID: "h1", Title: "Loft by the river", City: "Brno", NightlyRateCents: 9900},
			{ID: "l2", HostID: "u1", Title: "My own flat", City: "Brno", NightlyRateCents: 5000},
		},
		Meta: api.CatalogMeta{Total: 2, Count: 2, Limit: 20},
	}, nil
}

func (b *backend) ListingOverview(_ context.Context, id string) (api.ListingOverview, error) {
	return api.ListingOverview{Listing: api.ListingRecord{ID: id, HostID: "h1", Title: "Loft by the river"}}, nil
}

func (b *backend) ListChats(context.Context, api.PageQuery) (api.ConversationList, error) {
	return api.ConversationList{Items: []api.Conversation{{ID: "c1", HasUnread: true, LastMessageText: "hi"}}}, nil
}

func (b *backend) ListMessages(_ context.Context, id string, _ api.PageQuery) (api.ChatMessageList, error) {
	return api.ChatMessageList{Items: []api.ChatMessage{{ID: "m1", ConversationID: id, Text: "hi"}}}, nil
}

func (b *backend) SendMessage(_ context.Context, id, text string) (api.ChatMessage, error) {
	return api.ChatMessage{ID: "m2", ConversationID: id, Text: text}, nil
}

func (b *backend) MarkChatRead(context.Context, string, string) error { return nil }

func (b *backend) CreateListingConversation(_ context.Context, listingID string) (api.Conversation, error) {
	return api.Conversation{ID: "conv-" + listingID}, nil
}

func (b *backend) CreateBooking(_ context.Context, req api.CreateBookingRequest) (api.CreateBookingResponse, error) {
	b.mu.Lock()
	b.bookings = append(b.bookings, req)
	b.mu.Unlock()
	return api.CreateBookingResponse{BookingID: "bk-1"}, nil
}

func (b *backend) Login(_ context.Context, req api.LoginRequest) (api.AuthResponse, error) {
	if req.Password != "secret" {
		return api.AuthResponse{}, &api.Error{Kind: api.KindAuthRequired, Status: 401}
	}
	return api.AuthResponse{Token: "tok", User: api.UserProfile{ID: "u1", Email: req.Email, Name: "Ada"}}, nil
}

func (b *backend) Register(context.Context, api.RegisterRequest) (api.AuthResponse, error) {
	return api.AuthResponse{}, nil
}

func (b *backend) Logout(context.Context) error { return nil }

func (b *backend) CurrentUser(context.Context) (api.UserProfile, error) {
	return api.UserProfile{ID: "u1", Name: "Ada"}, nil
}

type fixture struct {
	backend *backend
	router  *router.Memory
	session *session.Session
	opts    Options
}

func newFixture(t *testing.T, start string, token string) *fixture {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	b := &backend{}
	r := router.NewMemory(start)
	s, err := session.Open(filepath.Join(t.TempDir(), "session.toml"))
	require.NoError(t, err)
	if token != "" {
		require.NoError(t, s.Set(token))
	}
	log := zerolog.Nop()

	cat := catalog.New(b, r, catalog.Options{Logger: log})
	cat.Start(ctx)
	t.Cleanup(cat.Stop)
	preview := overlay.New(r, b.ListingOverview, overlay.Options{Logger: log})
	t.Cleanup(preview.Attach(ctx))
	inbox := chat.NewInbox(b, time.Hour, log)
	t.Cleanup(inbox.Disable)
	tracker := chat.NewTracker(b, log, nil)

	f := &fixture{backend: b, router: r, session: s}
	f.opts = Options{
		Context: ctx,
		Router:  r,
		Catalog: cat,
		Preview: preview,
		Inbox:   inbox,
		OpenThread: func(id string) *chat.Thread {
			b.mu.Lock()
			b.threads = append(b.threads, id)
			b.mu.Unlock()
			return chat.NewThread(b, id, time.Hour, tracker, log)
		},
		Actions:   action.NewRunner(r, log),
		Client:    b,
		Auth:      session.NewAuthenticator(b, s, log),
		Prefs:     prefs.Prefs{Theme: "Nightfox"},
		PrefsPath: filepath.Join(t.TempDir(), "prefs.toml"),
		Logger:    log,
	}
	return f
}

func press(t *testing.T, m Model, keys ...string) (Model, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		next, c := m.Update(msg)
		m, cmd = next.(Model), c
	}
	return m, cmd
}

func TestSortKeyWritesURL(t *testing.T) {
	f := newFixture(t, "/catalog", "")
	m := New(f.opts)

	m, _ = press(t, m, "s")
	assert.Equal(t, "?page=1&limit=20&sort=price_desc", f.router.Location().Search)
}

func TestCityInputAppliesOnEnter(t *testing.T) {
	f := newFixture(t, "/catalog", "")
	m := New(f.opts)

	m, _ = press(t, m, "/", "Brno")
	assert.Equal(t, inputCity, m.mode)
	assert.Equal(t, "?page=1&limit=20&sort=price_asc", f.router.Location().Search, "typing must not touch the URL")

	m, _ = press(t, m, "enter")
	assert.Equal(t, inputNone, m.mode)
	assert.Equal(t, "?city=Brno&page=1&limit=20&sort=price_asc", f.router.Location().Search)
}

func TestGuestsAreStagedUntilApply(t *testing.T) {
	f := newFixture(t, "/catalog", "")
	m := New(f.opts)

	m, _ = press(t, m, "+", "+")
	assert.Equal(t, 2, f.opts.Catalog.Form().Guests)
	assert.Equal(t, 0, f.opts.Catalog.Filter().Guests)

	m, _ = press(t, m, "a")
	assert.Equal(t, "?min_guests=2&page=1&limit=20&sort=price_asc", f.router.Location().Search)
}

func TestProtectedRouteRedirectsToLogin(t *testing.T) {
	f := newFixture(t, "/me/chats", "")
	m := New(f.opts)

	loc := f.router.Location()
	assert.Equal(t, action.LoginRoute, loc.Pathname)
	assert.Equal(t, "/me/chats", loc.Param("redirect"))
	assert.Equal(t, screenLogin, m.screen)
	assert.Equal(t, inputEmail, m.mode)
	assert.False(t, f.opts.Inbox.Enabled())
}

func TestLoginReturnsToRedirect(t *testing.T) {
	f := newFixture(t, "/me/chats", "")
	m := New(f.opts)

	m, _ = press(t, m, "ada@example.com", "enter")
	require.Equal(t, inputPassword, m.mode)
	m, cmd := press(t, m, "secret", "enter")
	require.NotNil(t, cmd)

	next, _ := m.Update(cmd())
	m = next.(Model)
	assert.Equal(t, "/me/chats", f.router.Location().Pathname)
	assert.Equal(t, screenChats, m.screen)
	assert.True(t, f.session.Authenticated())
	assert.True(t, f.opts.Inbox.Enabled())
}

func TestLoginWithoutRedirectLandsOnCatalog(t *testing.T) {
	f := newFixture(t, "/login", "")
	m := New(f.opts)

	m, _ = press(t, m, "ada@example.com", "enter")
	m, cmd := press(t, m, "secret", "enter")
	require.NotNil(t, cmd)

	next, _ := m.Update(cmd())
	m = next.(Model)
	assert.Equal(t, "/catalog", f.router.Location().Pathname)
	assert.Equal(t, screenCatalog, m.screen)
}

func TestLoginFailureShowsNoticeAndRestarts(t *testing.T) {
	f := newFixture(t, "/login?redirect=%2Fme%2Fchats", "")
	m := New(f.opts)

	m, _ = press(t, m, "ada@example.com", "enter")
	m, cmd := press(t, m, "wrong", "enter")
	require.NotNil(t, cmd)

	next, _ := m.Update(cmd())
	m = next.(Model)
	assert.True(t, m.noticeErr)
	assert.Equal(t, inputEmail, m.mode)
	assert.Equal(t, action.LoginRoute, f.router.Location().Pathname)
}

func TestThreadMountsWithRouteAndClosesOnLeave(t *testing.T) {
	f := newFixture(t, "/me/chats", "tok")
	m := New(f.opts)
	assert.True(t, f.opts.Inbox.Enabled())

	f.router.Navigate(action.ChatPath("c1"), router.NavigateOptions{})
	next, _ := m.Update(tickMsg(time.Now()))
	m = next.(Model)
	require.NotNil(t, m.thread)
	assert.Equal(t, "c1", m.thread.ID())
	assert.True(t, m.thread.Enabled())
	assert.Equal(t, inputCompose, m.mode)

	thread := m.thread
	m, _ = press(t, m, "esc")
	assert.Equal(t, action.ChatsRoute, f.router.Location().Pathname)
	assert.Nil(t, m.thread)
	assert.False(t, thread.Enabled())
}

func TestContactHostNavigatesToConversation(t *testing.T) {
	f := newFixture(t, "/catalog?listing_id=l1", "tok")
	m := New(f.opts)
	require.Eventually(t, func() bool {
		return f.opts.Preview.Detail().HasData
	}, 2*time.Second, 10*time.Millisecond)
	m.refresh()

	_, cmd := press(t, m, "c")
	require.NotNil(t, cmd)
	msg := cmd().(actionDoneMsg)
	require.NoError(t, msg.err)
	assert.Equal(t, action.ChatPath("conv-l1"), f.router.Location().Pathname)
}

func TestBookNeedsDates(t *testing.T) {
	f := newFixture(t, "/catalog?listing_id=l1", "tok")
	m := New(f.opts)

	_, cmd := press(t, m, "b")
	require.NotNil(t, cmd)
	msg := cmd().(actionDoneMsg)
	assert.ErrorIs(t, msg.err, errNeedDates)
	assert.Empty(t, f.backend.bookings)
}

func TestBookUsesAcceptedFilter(t *testing.T) {
	f := newFixture(t, "/catalog?check_in=2026-11-01&check_out=2026-11-04&min_guests=3&listing_id=l1", "tok")
	m := New(f.opts)

	_, cmd := press(t, m, "b")
	require.NotNil(t, cmd)
	msg := cmd().(actionDoneMsg)
	require.NoError(t, msg.err)
	assert.Equal(t, "Booking bk-1 requested", msg.notice)
	require.Len(t, f.backend.bookings, 1)
	assert.Equal(t, api.CreateBookingRequest{ListingID: "l1", CheckIn: "2026-11-01", CheckOut: "2026-11-04", Guests: 3}, f.backend.bookings[0])
}

func TestThemeCycleSavesPrefs(t *testing.T) {
	f := newFixture(t, "/catalog?city=Brno", "")
	m := New(f.opts)

	m, _ = press(t, m, "T")
	assert.Equal(t, "Kanagawa", m.theme.Name)

	saved, err := prefs.Load(f.opts.PrefsPath)
	require.NoError(t, err)
	assert.Equal(t, "Kanagawa", saved.Theme)
	assert.Equal(t, "city=Brno", saved.LastCatalogQuery)
}

func TestRoutesWithoutScreenPointToCommands(t *testing.T) {
	f := newFixture(t, "/me/bookings", "tok")
	m := New(f.opts)
	assert.Equal(t, screenOther, m.screen)
	assert.Contains(t, m.renderElsewhere(), "rentme bookings")

	assert.Equal(t, "rentme host bookings", commandFor("/host/bookings"))
	assert.Equal(t, "rentme host listings", commandFor("/host/listings/new"))
	assert.Equal(t, "rentme admin users", commandFor("/admin/metrics"))
	assert.Empty(t, commandFor("/nowhere"))
}
