// Package app is the composition root of the rentme client.
//
// Setup loads the config, opens the log file, restores the stored session
// and builds the API client. A 401 from any call clears the session, which
// in turn stops the chat pollers and sends protected screens to /login.
//
// Run wires the controllers to one in-memory router and hands them to the
// UI:
//
//	router.Memory ── catalog.Controller ── ListListings
//	       │                 └─ Reconcile ─┐
//	       ├──────── overlay.Overlay ──────┘ ListingOverview
//	       └──────── ui.Model ── chat.Inbox / chat.Thread ── ListChats, ListMessages
//	                                 └─ chat.Tracker ── MarkChatRead
//
// Fatal errors (returned from Setup or Run):
//   - invalid config file
//   - unusable API base URL
//   - log file or session file that cannot be opened
//
// Everything else (network failures, rejected requests) is logged and
// shown in the screen that issued the request.
package app
