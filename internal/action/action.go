// Package action runs user-initiated operations. Unlike background polls,
// an authorization failure here sends the user to the login screen with a
// return path.
package action

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"github.com/rs/zerolog"

	"github.com/five82/rentme/internal/api"
	"github.com/five82/rentme/internal/router"
)

// Route paths shared by actions and screens.
const (
	LoginRoute       = "/login"
	CatalogRoute     = "/catalog"
	ChatsRoute       = "/me/chats"
	BookingsRoute    = "/me/bookings"
	DefaultAfterAuth = CatalogRoute
)

// ErrOwnListing is returned when a host tries to contact themselves.
var ErrOwnListing = errors.New("this listing is yours")

// Runner executes actions against a router.
type Runner struct {
	router router.Router
	log    zerolog.Logger
}

// NewRunner returns a Runner that redirects through r.
func NewRunner(r router.Router, log zerolog.Logger) *Runner {
	return &Runner{router: r, log: log}
}

// Do runs fn. Cancellation is swallowed. AuthRequired and Forbidden
// navigate to the login route preserving the current location; the error
// is still returned so the caller can show a short notice. Other errors
// are returned untouched for inline display.
func (r *Runner) Do(ctx context.Context, name string, fn func(context.Context) error) error {
	err := fn(ctx)
	switch {
	case err == nil:
		return nil
	case api.IsCancelled(err):
		return nil
	case api.IsAuth(err):
		target := LoginPath(r.router.Location())
		r.log.Info().Str("action", name).Str("redirect", target).Msg("action requires sign in")
		r.router.Navigate(target, router.NavigateOptions{})
		return err
	default:
		r.log.Warn().Err(err).Str("action", name).Msg("action failed")
		return err
	}
}

// Conversations opens chats on behalf of the user.
type Conversations interface {
	CreateListingConversation(ctx context.Context, listingID string) (api.Conversation, error)
}

// ContactHost opens (or reuses) the conversation about listing and
// navigates to it. user may be nil when signed out.
func (r *Runner) ContactHost(ctx context.Context, client Conversations, listing api.ListingRecord, user *api.UserProfile) error {
	if user != nil && listing.HostID != "" && listing.HostID == user.ID {
		return ErrOwnListing
	}
	return r.Do(ctx, "contact host", func(ctx context.Context) error {
		conv, err := client.CreateListingConversation(ctx, listing.ID)
		if err != nil {
			return err
		}
		r.router.Navigate(ChatPath(conv.ID), router.NavigateOptions{})
		return nil
	})
}

// Bookings creates guest bookings.
type Bookings interface {
	CreateBooking(ctx context.Context, req api.CreateBookingRequest) (api.CreateBookingResponse, error)
}

// Book creates a booking and returns its id.
func (r *Runner) Book(ctx context.Context, client Bookings, req api.CreateBookingRequest) (string, error) {
	var id string
	err := r.Do(ctx, "create booking", func(ctx context.Context) error {
		resp, err := client.CreateBooking(ctx, req)
		if err != nil {
			return err
		}
		id = resp.BookingID
		return nil
	})
	return id, err
}

// LoginPath builds the login route returning to loc after sign in.
func LoginPath(loc router.Location) string {
	return LoginRoute + "?redirect=" + url.QueryEscape(loc.String())
}

// RedirectTarget returns where to go after signing in from loc. Only
// in-app paths are honoured.
func RedirectTarget(loc router.Location) string {
	target := loc.Param("redirect")
	if !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") {
		return DefaultAfterAuth
	}
	return target
}

// ChatPath is the route of one conversation.
func ChatPath(conversationID string) string {
	return ChatsRoute + "/" + url.PathEscape(conversationID)
}

// ConversationFromPath extracts the id from a ChatPath route.
func ConversationFromPath(pathname string) (string, bool) {
	rest, ok := strings.CutPrefix(pathname, ChatsRoute+"/")
	if !ok || rest == "" || strings.Contains(rest, "/") {
		return "", false
	}
	id, err := url.PathUnescape(rest)
	if err != nil {
		return "", false
	}
	return id, true
}

// Protected reports whether pathname needs a signed-in user.
func Protected(pathname string) bool {
	for _, prefix := range []string{"/me", "/host", "/admin"} {
		if pathname == prefix || strings.HasPrefix(pathname, prefix+"/") {
			return true
		}
	}
	return false
}

// Guard returns the login redirect for a protected location when signed
// out, and "" otherwise.
func Guard(loc router.Location, authenticated bool) string {
	if authenticated || !Protected(loc.Pathname) {
		return ""
	}
	return LoginPath(loc)
}
