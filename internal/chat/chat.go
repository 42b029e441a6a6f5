// Package chat wires the conversation list and a single thread to pollers
// and acknowledges newly seen messages.
package chat

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/five82/rentme/internal/api"
	"github.com/five82/rentme/internal/poll"
	"github.com/five82/rentme/internal/state"
)

const (
	DefaultInboxInterval  = 8 * time.Second
	DefaultThreadInterval = 7 * time.Second
	ThreadPageSize        = 50
)

// ErrEmptyMessage is returned by Send for blank input.
var ErrEmptyMessage = errors.New("message is empty")

// API is the subset of the client used by chat screens.
type API interface {
	Marker
	ListChats(ctx context.Context, page api.PageQuery) (api.ConversationList, error)
	ListMessages(ctx context.Context, conversationID string, page api.PageQuery) (api.ChatMessageList, error)
	SendMessage(ctx context.Context, conversationID, text string) (api.ChatMessage, error)
}

// Inbox polls the conversation list.
type Inbox struct {
	*poll.Poller[api.ConversationList]
}

// NewInbox returns a disabled Inbox polling every interval.
func NewInbox(client API, interval time.Duration, log zerolog.Logger) *Inbox {
	if interval <= 0 {
		interval = DefaultInboxInterval
	}
	fetch := func(ctx context.Context) (api.ConversationList, error) {
		return client.ListChats(ctx, api.PageQuery{})
	}
	return &Inbox{Poller: poll.New("chats", interval, fetch,
		poll.WithLogger[api.ConversationList](log),
		poll.WithClone(cloneConversations),
	)}
}

// HasUnread reports whether the latest list has an unread conversation.
func (i *Inbox) HasUnread() bool {
	return HasUnread(i.Snapshot())
}

// HasUnread reports whether snap holds a conversation with unread messages.
func HasUnread(snap state.Snapshot[api.ConversationList]) bool {
	for _, c := range snap.Data.Items {
		if c.HasUnread {
			return true
		}
	}
	return false
}

// Thread polls one conversation's messages and acknowledges the newest.
type Thread struct {
	*poll.Poller[api.ChatMessageList]

	id      string
	client  API
	tracker *Tracker
}

// NewThread returns a disabled Thread for conversationID.
func NewThread(client API, conversationID string, interval time.Duration, tracker *Tracker, log zerolog.Logger) *Thread {
	if interval <= 0 {
		interval = DefaultThreadInterval
	}
	t := &Thread{id: conversationID, client: client, tracker: tracker}
	fetch := func(ctx context.Context) (api.ChatMessageList, error) {
		return client.ListMessages(ctx, conversationID, api.PageQuery{Limit: ThreadPageSize})
	}
	opts := []poll.Option[api.ChatMessageList]{
		poll.WithLogger[api.ChatMessageList](log.With().Str("conversation_id", conversationID).Logger()),
		poll.WithClone(cloneMessages),
	}
	if tracker != nil {
		opts = append(opts, poll.WithOnSuccess(func(ctx context.Context, list api.ChatMessageList) {
			tracker.Observe(ctx, conversationID, NewestMessageID(list))
		}))
	}
	t.Poller = poll.New("thread", interval, fetch, opts...)
	return t
}

// ID returns the conversation id.
func (t *Thread) ID() string { return t.id }

// Send posts text and refreshes the thread.
func (t *Thread) Send(ctx context.Context, text string) (api.ChatMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return api.ChatMessage{}, ErrEmptyMessage
	}
	msg, err := t.client.SendMessage(ctx, t.id, text)
	if err != nil {
		return api.ChatMessage{}, err
	}
	t.Refresh()
	return msg, nil
}

// Close stops polling and forgets the read cursor.
func (t *Thread) Close() {
	t.Disable()
	if t.tracker != nil {
		t.tracker.Forget(t.id)
	}
}

func cloneConversations(l api.ConversationList) api.ConversationList {
	l.Items = state.CloneSlice(l.Items)
	return l
}

func cloneMessages(l api.ChatMessageList) api.ChatMessageList {
	l.Items = state.CloneSlice(l.Items)
	return l
}
