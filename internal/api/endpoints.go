package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// ListListings fetches a catalog page. rawQuery is the canonical encoded
// filter query, passed through untouched.
func (c *Client) ListListings(ctx context.Context, rawQuery string) (ListingCatalog, error) {
	var payload ListingCatalog
	if err := c.getRaw(ctx, "/listings", strings.TrimPrefix(rawQuery, "?"), &payload); err != nil {
		return ListingCatalog{}, err
	}
	return payload, nil
}

// overviewWindow is how far ahead availability is requested.
const overviewWindow = 45 * 24 * time.Hour

// ListingOverview fetches the detail shown in the preview overlay.
func (c *Client) ListingOverview(ctx context.Context, listingID string) (ListingOverview, error) {
	if strings.TrimSpace(listingID) == "" {
		return ListingOverview{}, fmt.Errorf("listing id required")
	}
	from := time.Now().UTC()
	values := url.Values{}
	values.Set("from", from.Format(time.DateOnly))
	values.Set("to", from.Add(overviewWindow).Format(time.DateOnly))
	var payload ListingOverview
	if err := c.get(ctx, "/listings/"+url.PathEscape(listingID)+"/overview", values, &payload); err != nil {
		return ListingOverview{}, err
	}
	return payload, nil
}

// ListingReviews fetches published reviews for a listing.
func (c *Client) ListingReviews(ctx context.Context, listingID string, limit, offset int) (ReviewCollection, error) {
	values := url.Values{}
	if limit > 0 {
		values.Set("limit", strconv.Itoa(limit))
	}
	if offset > 0 {
		values.Set("offset", strconv.Itoa(offset))
	}
	var payload ReviewCollection
	if err := c.get(ctx, "/listings/"+url.PathEscape(listingID)+"/reviews", values, &payload); err != nil {
		return ReviewCollection{}, err
	}
	return payload, nil
}

// SubmitReview posts a review for a completed booking.
func (c *Client) SubmitReview(ctx context.Context, bookingID string, rating int, text string) (Review, error) {
	if rating < 1 || rating > 5 {
		return Review{}, fmt.Errorf("rating must be between 1 and 5")
	}
	body := struct {
		Rating int    `json:"rating"`
		Text   string `json:"text,omitempty"`
	}{Rating: rating, Text: strings.TrimSpace(text)}
	var payload Review
	if err := c.send(ctx, http.MethodPost, "/bookings/"+url.PathEscape(bookingID)+"/review", body, &payload); err != nil {
		return Review{}, err
	}
	return payload, nil
}

// CreateBooking requests a stay.
func (c *Client) CreateBooking(ctx context.Context, req CreateBookingRequest) (CreateBookingResponse, error) {
	var payload CreateBookingResponse
	if err := c.send(ctx, http.MethodPost, "/bookings", req, &payload); err != nil {
		return CreateBookingResponse{}, err
	}
	return payload, nil
}

// MyBookings lists the signed-in guest's bookings.
func (c *Client) MyBookings(ctx context.Context) (GuestBookingCollection, error) {
	var payload GuestBookingCollection
	if err := c.get(ctx, "/me/bookings", nil, &payload); err != nil {
		return GuestBookingCollection{}, err
	}
	return payload, nil
}

// ListChats fetches the signed-in user's conversations.
func (c *Client) ListChats(ctx context.Context, page PageQuery) (ConversationList, error) {
	var payload ConversationList
	if err := c.get(ctx, "/me/chats", page.values(), &payload); err != nil {
		return ConversationList{}, err
	}
	return payload, nil
}

// ListMessages fetches a conversation's messages, newest first.
func (c *Client) ListMessages(ctx context.Context, conversationID string, page PageQuery) (ChatMessageList, error) {
	if strings.TrimSpace(conversationID) == "" {
		return ChatMessageList{}, fmt.Errorf("conversation id required")
	}
	var payload ChatMessageList
	if err := c.get(ctx, "/chats/"+url.PathEscape(conversationID)+"/messages", page.values(), &payload); err != nil {
		return ChatMessageList{}, err
	}
	return payload, nil
}

// SendMessage posts a message to a conversation.
func (c *Client) SendMessage(ctx context.Context, conversationID, text string) (ChatMessage, error) {
	body := struct {
		Text string `json:"text"`
	}{Text: text}
	var payload ChatMessage
	if err := c.send(ctx, http.MethodPost, "/chats/"+url.PathEscape(conversationID)+"/messages", body, &payload); err != nil {
		return ChatMessage{}, err
	}
	return payload, nil
}

// MarkChatRead acknowledges messages up to lastReadMessageID.
func (c *Client) MarkChatRead(ctx context.Context, conversationID, lastReadMessageID string) error {
	body := map[string]string{}
	if lastReadMessageID != "" {
		body["last_read_message_id"] = lastReadMessageID
	}
	return c.send(ctx, http.MethodPost, "/chats/"+url.PathEscape(conversationID)+"/read", body, nil)
}

// CreateDirectConversation opens (or reuses) a chat with another user.
func (c *Client) CreateDirectConversation(ctx context.Context, userID string) (Conversation, error) {
	body := map[string]string{"user_id": userID}
	var payload Conversation
	if err := c.send(ctx, http.MethodPost, "/chats", body, &payload); err != nil {
		return Conversation{}, err
	}
	return payload, nil
}

// CreateListingConversation opens (or reuses) a chat with a listing's host.
func (c *Client) CreateListingConversation(ctx context.Context, listingID string) (Conversation, error) {
	var payload Conversation
	if err := c.send(ctx, http.MethodPost, "/listings/"+url.PathEscape(listingID)+"/chat", struct{}{}, &payload); err != nil {
		return Conversation{}, err
	}
	return payload, nil
}

// Register creates an account.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (AuthResponse, error) {
	var payload AuthResponse
	if err := c.send(ctx, http.MethodPost, "/auth/register", req, &payload); err != nil {
		return AuthResponse{}, err
	}
	return payload, nil
}

// Login exchanges credentials for a token.
func (c *Client) Login(ctx context.Context, req LoginRequest) (AuthResponse, error) {
	var payload AuthResponse
	if err := c.send(ctx, http.MethodPost, "/auth/login", req, &payload); err != nil {
		return AuthResponse{}, err
	}
	return payload, nil
}

// Logout revokes the current token server-side.
func (c *Client) Logout(ctx context.Context) error {
	return c.send(ctx, http.MethodPost, "/auth/logout", nil, nil)
}

// CurrentUser fetches the signed-in profile.
func (c *Client) CurrentUser(ctx context.Context) (UserProfile, error) {
	var payload UserProfile
	if err := c.get(ctx, "/auth/me", nil, &payload); err != nil {
		return UserProfile{}, err
	}
	return payload, nil
}

// ListHostListings fetches the host's own listings.
func (c *Client) ListHostListings(ctx context.Context, query HostListingQuery) (HostListingCatalog, error) {
	values := url.Values{}
	if status := strings.TrimSpace(query.Status); status != "" {
		values.Set("status", status)
	}
	if query.Limit > 0 {
		values.Set("limit", strconv.Itoa(query.Limit))
	}
	if query.Offset > 0 {
		values.Set("offset", strconv.Itoa(query.Offset))
	}
	var payload HostListingCatalog
	if err := c.get(ctx, "/host/listings", values, &payload); err != nil {
		return HostListingCatalog{}, err
	}
	return payload, nil
}

// HostListing fetches one host listing.
func (c *Client) HostListing(ctx context.Context, listingID string) (HostListing, error) {
	var payload HostListing
	if err := c.get(ctx, "/host/listings/"+url.PathEscape(listingID), nil, &payload); err != nil {
		return HostListing{}, err
	}
	return payload, nil
}

// CreateHostListing creates a draft listing.
func (c *Client) CreateHostListing(ctx context.Context, body HostListingPayload) (HostListing, error) {
	var payload HostListing
	if err := c.send(ctx, http.MethodPost, "/host/listings", body, &payload); err != nil {
		return HostListing{}, err
	}
	return payload, nil
}

// UpdateHostListing replaces a listing's editable fields.
func (c *Client) UpdateHostListing(ctx context.Context, listingID string, body HostListingPayload) (HostListing, error) {
	var payload HostListing
	if err := c.send(ctx, http.MethodPut, "/host/listings/"+url.PathEscape(listingID), body, &payload); err != nil {
		return HostListing{}, err
	}
	return payload, nil
}

// PublishHostListing makes a listing visible in the catalog.
func (c *Client) PublishHostListing(ctx context.Context, listingID string) (HostListing, error) {
	return c.hostListingTransition(ctx, listingID, "publish")
}

// UnpublishHostListing hides a listing from the catalog.
func (c *Client) UnpublishHostListing(ctx context.Context, listingID string) (HostListing, error) {
	return c.hostListingTransition(ctx, listingID, "unpublish")
}

func (c *Client) hostListingTransition(ctx context.Context, listingID, action string) (HostListing, error) {
	var payload HostListing
	if err := c.send(ctx, http.MethodPost, "/host/listings/"+url.PathEscape(listingID)+"/"+action, nil, &payload); err != nil {
		return HostListing{}, err
	}
	return payload, nil
}

// RequestPriceSuggestion asks the pricing model for a rate.
func (c *Client) RequestPriceSuggestion(ctx context.Context, listingID string, req PriceSuggestionRequest) (PriceSuggestion, error) {
	var payload PriceSuggestion
	if err := c.send(ctx, http.MethodPost, "/host/listings/"+url.PathEscape(listingID)+"/price-suggestion", req, &payload); err != nil {
		return PriceSuggestion{}, err
	}
	return payload, nil
}

// UploadListingPhoto uploads one photo as multipart form data.
func (c *Client) UploadListingPhoto(ctx context.Context, listingID, filename string, content io.Reader) (PhotoUpload, error) {
	if content == nil {
		return PhotoUpload{}, fmt.Errorf("photo content required")
	}
	var payload PhotoUpload
	if err := c.upload(ctx, "/host/listings/"+url.PathEscape(listingID)+"/photos", "file", filename, content, &payload); err != nil {
		return PhotoUpload{}, err
	}
	return payload, nil
}

// HostBookings lists bookings on the host's listings.
func (c *Client) HostBookings(ctx context.Context, status string) (HostBookingCollection, error) {
	values := url.Values{}
	if s := strings.TrimSpace(status); s != "" {
		values.Set("status", s)
	}
	var payload HostBookingCollection
	if err := c.get(ctx, "/host/bookings", values, &payload); err != nil {
		return HostBookingCollection{}, err
	}
	return payload, nil
}

// ConfirmHostBooking accepts a pending booking.
func (c *Client) ConfirmHostBooking(ctx context.Context, bookingID string) (BookingDecision, error) {
	var payload BookingDecision
	if err := c.send(ctx, http.MethodPost, "/host/bookings/"+url.PathEscape(bookingID)+"/confirm", struct{}{}, &payload); err != nil {
		return BookingDecision{}, err
	}
	return payload, nil
}

// DeclineHostBooking rejects a pending booking.
func (c *Client) DeclineHostBooking(ctx context.Context, bookingID, reason string) (BookingDecision, error) {
	body := map[string]string{}
	if r := strings.TrimSpace(reason); r != "" {
		body["reason"] = r
	}
	var payload BookingDecision
	if err := c.send(ctx, http.MethodPost, "/host/bookings/"+url.PathEscape(bookingID)+"/decline", body, &payload); err != nil {
		return BookingDecision{}, err
	}
	return payload, nil
}

// AdminUsers lists users for the admin console.
func (c *Client) AdminUsers(ctx context.Context, query AdminUserQuery) (UserList, error) {
	values := url.Values{}
	if q := strings.TrimSpace(query.Query); q != "" {
		values.Set("query", q)
	}
	if query.Limit > 0 {
		values.Set("limit", strconv.Itoa(query.Limit))
	}
	if query.Offset > 0 {
		values.Set("offset", strconv.Itoa(query.Offset))
	}
	var payload UserList
	if err := c.get(ctx, "/admin/users", values, &payload); err != nil {
		return UserList{}, err
	}
	return payload, nil
}

// MLMetrics fetches pricing model accuracy for the admin console.
func (c *Client) MLMetrics(ctx context.Context) (MLMetrics, error) {
	var payload MLMetrics
	if err := c.get(ctx, "/admin/ml/metrics", nil, &payload); err != nil {
		return MLMetrics{}, err
	}
	return payload, nil
}

func (p PageQuery) values() url.Values {
	values := url.Values{}
	if cursor := strings.TrimSpace(p.Cursor); cursor != "" {
		values.Set("cursor", cursor)
	}
	if p.Limit > 0 {
		values.Set("limit", strconv.Itoa(p.Limit))
	}
	return values
}
