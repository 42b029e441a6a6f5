package api

// ListingCatalog mirrors GET /listings.
type ListingCatalog struct {
	Items   []ListingRecord `json:"items"`
	Filters CatalogFilters  `json:"filters"`
	Meta    CatalogMeta     `json:"meta"`
}

// IDs lists the ids of the catalog page in display order.
func (c ListingCatalog) IDs() []string {
	ids := make([]string, 0, len(c.Items))
	for _, item := range c.Items {
		ids = append(ids, item.ID)
	}
	return ids
}

// ListingRecord is one catalog card.
type ListingRecord struct {
	ID               string   `json:"id"`
	HostID           string   `json:"host_id"`
	Title            string   `json:"title"`
	City             string   `json:"city"`
	Country          string   `json:"country"`
	AddressLine      string   `json:"address_line"`
	PropertyType     string   `json:"property_type"`
	RentalTerm       string   `json:"rental_term"`
	PriceUnit        string   `json:"price_unit"`
	GuestsLimit      int      `json:"guests_limit"`
	MinNights        int      `json:"min_nights"`
	MaxNights        int      `json:"max_nights"`
	NightlyRateCents int64    `json:"nightly_rate_cents"`
	Bedrooms         int      `json:"bedrooms"`
	Bathrooms        int      `json:"bathrooms"`
	AreaSqM          float64  `json:"area_sq_m"`
	Tags             []string `json:"tags"`
	Amenities        []string `json:"amenities"`
	Highlights       []string `json:"highlights"`
	ThumbnailURL     string   `json:"thumbnail_url"`
	Rating           float64  `json:"rating"`
	AvailableFrom    string   `json:"available_from"`
	State            string   `json:"state"`
}

// CatalogFilters echoes the filters the server applied.
type CatalogFilters struct {
	City          string   `json:"city"`
	Country       string   `json:"country"`
	Tags          []string `json:"tags"`
	Amenities     []string `json:"amenities"`
	MinGuests     int      `json:"min_guests"`
	PriceMinCents int64    `json:"price_min_cents"`
	PriceMaxCents int64    `json:"price_max_cents"`
}

// CatalogMeta carries pagination details.
type CatalogMeta struct {
	Total  int    `json:"total"`
	Count  int    `json:"count"`
	Limit  int    `json:"limit"`
	Offset int    `json:"offset"`
	Sort   string `json:"sort"`
}

// ListingOverview mirrors GET /listings/{id}/overview.
type ListingOverview struct {
	Listing      ListingRecord      `json:"listing"`
	Description  string             `json:"description"`
	HouseRules   []string           `json:"house_rules"`
	Photos       []string           `json:"photos"`
	Availability []AvailabilityDay  `json:"availability"`
	Reviews      ReviewCollection   `json:"reviews"`
	Price        *PriceQuote        `json:"price,omitempty"`
	Host         *UserProfileSample `json:"host,omitempty"`
}

// AvailabilityDay reports whether a single date is bookable.
type AvailabilityDay struct {
	Date      string `json:"date"`
	Available bool   `json:"available"`
}

// PriceQuote is an indicative price for a stay window.
type PriceQuote struct {
	Total    Money  `json:"total"`
	Unit     string `json:"unit"`
	CheckIn  string `json:"check_in"`
	CheckOut string `json:"check_out"`
}

// UserProfileSample is the public part of a user profile.
type UserProfileSample struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Money is an amount in minor units.
type Money struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// Review is a guest review.
type Review struct {
	ID        string `json:"id"`
	BookingID string `json:"booking_id"`
	ListingID string `json:"listing_id"`
	AuthorID  string `json:"author_id"`
	Rating    int    `json:"rating"`
	Text      string `json:"text,omitempty"`
	CreatedAt string `json:"created_at"`
}

// ReviewCollection mirrors /listings/{id}/reviews.
type ReviewCollection struct {
	Items []Review `json:"items"`
	Total int      `json:"total"`
}

// Conversation describes chat metadata.
type Conversation struct {
	ID                  string   `json:"id"`
	ListingID           string   `json:"listing_id,omitempty"`
	Participants        []string `json:"participants"`
	CreatedAt           string   `json:"created_at"`
	LastMessageAt       string   `json:"last_message_at,omitempty"`
	LastMessageID       string   `json:"last_message_id,omitempty"`
	LastMessageSenderID string   `json:"last_message_sender_id,omitempty"`
	LastMessageText     string   `json:"last_message_text,omitempty"`
	HasUnread           bool     `json:"has_unread,omitempty"`
}

// ConversationList is a page of conversations.
type ConversationList struct {
	Items      []Conversation `json:"items"`
	NextCursor string         `json:"next_cursor,omitempty"`
}

// ChatMessage is a single message.
type ChatMessage struct {
	ID             string `json:"id"`
	ConversationID string `json:"conversation_id"`
	SenderID       string `json:"sender_id"`
	Text           string `json:"text"`
	CreatedAt      string `json:"created_at"`
}

// ChatMessageList is a page of messages, newest first.
type ChatMessageList struct {
	Items      []ChatMessage `json:"items"`
	NextCursor string        `json:"next_cursor,omitempty"`
}

// PageQuery is a cursor page request.
type PageQuery struct {
	Cursor string
	Limit  int
}

// BookingListingSnapshot is the listing as captured on a booking.
type BookingListingSnapshot struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	AddressLine1 string `json:"address_line1"`
	City         string `json:"city"`
	Region       string `json:"region"`
	Country      string `json:"country"`
	ThumbnailURL string `json:"thumbnail_url"`
}

// GuestBooking is a booking from the guest's side.
type GuestBooking struct {
	ID              string                 `json:"id"`
	Listing         BookingListingSnapshot `json:"listing"`
	CheckIn         string                 `json:"check_in"`
	CheckOut        string                 `json:"check_out"`
	Guests          int                    `json:"guests"`
	Months          int                    `json:"months,omitempty"`
	PriceUnit       string                 `json:"price_unit,omitempty"`
	Status          string                 `json:"status"`
	Total           Money                  `json:"total"`
	CreatedAt       string                 `json:"created_at"`
	ReviewSubmitted bool                   `json:"review_submitted,omitempty"`
	CanReview       bool                   `json:"can_review,omitempty"`
}

// GuestBookingCollection mirrors /me/bookings.
type GuestBookingCollection struct {
	Items []GuestBooking `json:"items"`
}

// HostBooking is a booking from the host's side.
type HostBooking struct {
	ID        string                 `json:"id"`
	Listing   BookingListingSnapshot `json:"listing"`
	GuestID   string                 `json:"guest_id"`
	CheckIn   string                 `json:"check_in"`
	CheckOut  string                 `json:"check_out"`
	Guests    int                    `json:"guests"`
	Months    int                    `json:"months,omitempty"`
	PriceUnit string                 `json:"price_unit,omitempty"`
	Status    string                 `json:"status"`
	Total     Money                  `json:"total"`
	CreatedAt string                 `json:"created_at"`
}

// HostBookingCollection mirrors /host/bookings.
type HostBookingCollection struct {
	Items []HostBooking `json:"items"`
}

// BookingDecision is returned by confirm/decline.
type BookingDecision struct {
	BookingID string `json:"booking_id"`
	Status    string `json:"status"`
}

// CreateBookingRequest is the POST /bookings payload.
type CreateBookingRequest struct {
	ListingID string `json:"listing_id"`
	CheckIn   string `json:"check_in"`
	CheckOut  string `json:"check_out"`
	Guests    int    `json:"guests"`
}

// CreateBookingResponse carries the new booking id.
type CreateBookingResponse struct {
	BookingID string `json:"booking_id"`
}

// UserProfile is the signed-in user.
type UserProfile struct {
	ID        string   `json:"id"`
	Email     string   `json:"email"`
	Name      string   `json:"name"`
	Roles     []string `json:"roles"`
	Blocked   bool     `json:"blocked,omitempty"`
	CreatedAt string   `json:"created_at"`
	UpdatedAt string   `json:"updated_at"`
}

// HasRole reports whether the user carries role.
func (u UserProfile) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// AuthResponse is returned by login and registration.
type AuthResponse struct {
	User  UserProfile `json:"user"`
	Token string      `json:"token"`
}

// LoginRequest is the POST /auth/login payload.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest is the POST /auth/register payload.
type RegisterRequest struct {
	Email      string `json:"email"`
	Name       string `json:"name"`
	Password   string `json:"password"`
	WantToHost bool   `json:"want_to_host,omitempty"`
}

// Address is a listing address.
type Address struct {
	Line1   string  `json:"line1"`
	Line2   string  `json:"line2,omitempty"`
	City    string  `json:"city"`
	Region  string  `json:"region"`
	Country string  `json:"country"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

// HostListingPayload is the create/update body for host listings.
type HostListingPayload struct {
	Title                string   `json:"title"`
	Description          string   `json:"description"`
	PropertyType         string   `json:"property_type"`
	RentalTerm           string   `json:"rental_term"`
	Address              Address  `json:"address"`
	Amenities            []string `json:"amenities"`
	HouseRules           []string `json:"house_rules"`
	Tags                 []string `json:"tags"`
	Highlights           []string `json:"highlights"`
	ThumbnailURL         string   `json:"thumbnail_url,omitempty"`
	CancellationPolicyID string   `json:"cancellation_policy_id,omitempty"`
	GuestsLimit          int      `json:"guests_limit"`
	MinNights            int      `json:"min_nights"`
	MaxNights            int      `json:"max_nights"`
	RateRub              int64    `json:"rate_rub"`
	Bedrooms             int      `json:"bedrooms"`
	Bathrooms            int      `json:"bathrooms"`
	Floor                int      `json:"floor"`
	FloorsTotal          int      `json:"floors_total"`
	RenovationScore      int      `json:"renovation_score"`
	BuildingAgeYears     int      `json:"building_age_years"`
	AreaSqM              float64  `json:"area_sq_m"`
	AvailableFrom        string   `json:"available_from,omitempty"`
	Photos               []string `json:"photos"`
	TravelMinutes        int      `json:"travel_minutes"`
	TravelMode           string   `json:"travel_mode"`
}

// HostListing is a host-owned listing with its lifecycle status.
type HostListing struct {
	HostListingPayload
	ID        string `json:"id"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// HostListingCatalog mirrors GET /host/listings.
type HostListingCatalog struct {
	Items []HostListing `json:"items"`
	Meta  CatalogMeta   `json:"meta"`
}

// HostListingQuery filters GET /host/listings.
type HostListingQuery struct {
	Status string
	Limit  int
	Offset int
}

// PriceSuggestionRequest asks for a suggested rate.
type PriceSuggestionRequest struct {
	CheckIn  string `json:"check_in,omitempty"`
	CheckOut string `json:"check_out,omitempty"`
	Guests   int    `json:"guests,omitempty"`
}

// PriceSuggestion is the model-suggested rate.
type PriceSuggestion struct {
	ListingID      string `json:"listing_id"`
	SuggestedRub   int64  `json:"suggested_rub"`
	LowerBoundRub  int64  `json:"lower_bound_rub"`
	UpperBoundRub  int64  `json:"upper_bound_rub"`
	CurrentRateRub int64  `json:"current_rate_rub"`
}

// PhotoUpload is returned by the photo upload endpoint.
type PhotoUpload struct {
	URL string `json:"url"`
}

// UserList mirrors GET /admin/users.
type UserList struct {
	Items []UserProfile `json:"items"`
	Total int           `json:"total"`
}

// AdminUserQuery filters GET /admin/users.
type AdminUserQuery struct {
	Query  string
	Limit  int
	Offset int
}

// ModelMetrics describes one pricing model's accuracy.
type ModelMetrics struct {
	MAE       float64 `json:"mae"`
	RMSE      float64 `json:"rmse"`
	TrainSize int     `json:"train_size"`
	TestSize  int     `json:"test_size"`
}

// MLMetrics mirrors GET /admin/ml/metrics.
type MLMetrics struct {
	ShortTerm ModelMetrics `json:"short_term"`
	LongTerm  ModelMetrics `json:"long_term"`
}
