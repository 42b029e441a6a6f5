package chat

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/five82/rentme/internal/api"
)

// Marker acknowledges messages as read on the server.
type Marker interface {
	MarkChatRead(ctx context.Context, conversationID, lastReadMessageID string) error
}

// Tracker remembers the last message id acknowledged per conversation and
// issues at most one mark-read call for each newly observed id.
type Tracker struct {
	marker   Marker
	log      zerolog.Logger
	onMarked func(conversationID string)

	mu   sync.Mutex
	last map[string]string
}

// NewTracker returns a Tracker. onMarked, when set, runs after every
// successful mark-read so unread badges can resync.
func NewTracker(marker Marker, log zerolog.Logger, onMarked func(conversationID string)) *Tracker {
	return &Tracker{
		marker:   marker,
		log:      log,
		onMarked: onMarked,
		last:     make(map[string]string),
	}
}

// Observe records newestID for the conversation. When it differs from the
// last acknowledged id the marker advances first and then one mark-read is
// sent. Failures are logged and never retried.
func (t *Tracker) Observe(ctx context.Context, conversationID, newestID string) {
	if conversationID == "" || newestID == "" {
		return
	}
	t.mu.Lock()
	if t.last[conversationID] == newestID {
		t.mu.Unlock()
		return
	}
	t.last[conversationID] = newestID
	t.mu.Unlock()

	if err := t.marker.MarkChatRead(ctx, conversationID, newestID); err != nil {
		if !api.IsCancelled(err) {
			t.log.Warn().Err(err).
				Str("conversation_id", conversationID).
				Str("message_id", newestID).
				Msg("mark read failed")
		}
		return
	}
	t.log.Debug().Str("conversation_id", conversationID).Str("message_id", newestID).Msg("marked read")
	if t.onMarked != nil {
		t.onMarked(conversationID)
	}
}

// Last returns the last acknowledged id for the conversation.
func (t *Tracker) Last(conversationID string) (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	id, ok := t.last[conversationID]
	return id, ok
}

// Forget drops the cursor so a reopened thread starts fresh.
func (t *Tracker) Forget(conversationID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.last, conversationID)
}

// NewestMessageID returns the id of the newest message in a newest-first
// list, or "" for an empty list.
func NewestMessageID(list api.ChatMessageList) string {
	if len(list.Items) == 0 {
		return ""
	}
	return list.Items[0].ID
}
