package action

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/rentme/internal/api"
	"github.com/five82/rentme/internal/router"
)

type fakeConversations struct {
	calls int
	conv  api.Conversation
	err   error
}

func (f *fakeConversations) CreateListingConversation(context.Context, string) (api.Conversation, error) {
	f.calls++
	return f.conv, f.err
}

type fakeBookings struct {
	err error
	req api.CreateBookingRequest
}

func (f *fakeBookings) CreateBooking(_ context.Context, req api.CreateBookingRequest) (api.CreateBookingResponse, error) {
	f.req = req
	if f.err != nil {
		return api.CreateBookingResponse{}, f.err
	}
	return api.CreateBookingResponse{BookingID: "b-1"}, nil
}

func TestDoRedirectsOnAuthErrors(t *testing.T) {
	for _, kind := range []api.Kind{api.KindAuthRequired, api.KindForbidden} {
		r := router.NewMemory("/catalog?city=Prague&listing_id=l1")
		runner := NewRunner(r, zerolog.Nop())

		err := runner.Do(context.Background(), "x", func(context.Context) error {
			return &api.Error{Kind: kind}
		})
		require.Error(t, err)
		assert.Equal(t, "/login", r.Location().Pathname)
		assert.Equal(t, "/catalog?city=Prague&listing_id=l1", r.Location().Param("redirect"))
		assert.Equal(t, "/catalog?city=Prague&listing_id=l1", RedirectTarget(r.Location()))
	}
}

func TestDoReturnsOtherErrorsInline(t *testing.T) {
	r := router.NewMemory("/catalog")
	runner := NewRunner(r, zerolog.Nop())
	boom := &api.Error{Kind: api.KindConflict, Status: 409}

	err := runner.Do(context.Background(), "x", func(context.Context) error { return boom })
	require.ErrorIs(t, err, boom)
	assert.Equal(t, "/catalog", r.Location().String())
}

func TestDoSwallowsCancellation(t *testing.T) {
	r := router.NewMemory("/catalog")
	runner := NewRunner(r, zerolog.Nop())
	err := runner.Do(context.Background(), "x", func(context.Context) error { return context.Canceled })
	assert.NoError(t, err)
}

func TestContactHostNavigatesToChat(t *testing.T) {
	r := router.NewMemory("/catalog")
	runner := NewRunner(r, zerolog.Nop())
	convs := &fakeConversations{conv: api.Conversation{ID: "c 1"}}

	err := runner.ContactHost(context.Background(), convs, api.ListingRecord{ID: "l1", HostID: "h1"}, &api.UserProfile{ID: "g1"})
	require.NoError(t, err)
	assert.Equal(t, "/me/chats/c%201", r.Location().Pathname)

	id, ok := ConversationFromPath(r.Location().Pathname)
	require.True(t, ok)
	assert.Equal(t, "c 1", id)
}

func TestContactHostRejectsOwnListing(t *testing.T) {
	r := router.NewMemory("/catalog")
	runner := NewRunner(r, zerolog.Nop())
	convs := &fakeConversations{}

	err := runner.ContactHost(context.Background(), convs, api.ListingRecord{ID: "l1", HostID: "h1"}, &api.UserProfile{ID: "h1"})
	require.ErrorIs(t, err, ErrOwnListing)
	assert.Zero(t, convs.calls)
}

func TestContactHostSignedOutRedirects(t *testing.T) {
	r := router.NewMemory("/catalog?page=2")
	runner := NewRunner(r, zerolog.Nop())
	convs := &fakeConversations{err: &api.Error{Kind: api.KindAuthRequired, Status: 401}}

	err := runner.ContactHost(context.Background(), convs, api.ListingRecord{ID: "l1"}, nil)
	require.Error(t, err)
	assert.Equal(t, LoginRoute+"?redirect=%2Fcatalog%3Fpage%3D2", r.Location().String())
}

func TestBook(t *testing.T) {
	r := router.NewMemory("/catalog")
	runner := NewRunner(r, zerolog.Nop())
	bookings := &fakeBookings{}

	id, err := runner.Book(context.Background(), bookings, api.CreateBookingRequest{ListingID: "l1", Guests: 2})
	require.NoError(t, err)
	assert.Equal(t, "b-1", id)
	assert.Equal(t, 2, bookings.req.Guests)

	bookings.err = errors.New("sold out")
	_, err = runner.Book(context.Background(), bookings, api.CreateBookingRequest{})
	require.EqualError(t, err, "sold out")
}

func TestRedirectTargetRejectsExternal(t *testing.T) {
	cases := map[string]string{
		"/login":                             "/catalog",
		"/login?redirect=https://evil.test": DefaultAfterAuth,
		"/login?redirect=//evil.test":       DefaultAfterAuth,
		"/login?redirect=%2Fme%2Fchats":     "/me/chats",
	}
	for path, want := range cases {
		assert.Equal(t, want, RedirectTarget(router.Parse(path)), path)
	}
}

func TestGuard(t *testing.T) {
	assert.Empty(t, Guard(router.Parse("/catalog"), false))
	assert.Empty(t, Guard(router.Parse("/me/chats"), true))
	assert.Equal(t, "/login?redirect=%2Fme%2Fchats%2F9", Guard(router.Parse("/me/chats/9"), false))
	assert.False(t, Protected("/media"))
	assert.True(t, Protected("/host/listings"))
}

func TestConversationFromPath(t *testing.T) {
	_, ok := ConversationFromPath("/me/chats")
	assert.False(t, ok)
	_, ok = ConversationFromPath("/me/chats/a/b")
	assert.False(t, ok)
	id, ok := ConversationFromPath(ChatPath("42"))
	require.True(t, ok)
	assert.Equal(t, "42", id)
}
