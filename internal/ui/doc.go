// Package ui provides the terminal client for rentme.
//
// The UI is a Bubble Tea program. It does not own any remote state: the
// catalog controller, the listing preview overlay and the chat pollers do.
// On every tick the Model re-reads their snapshots and re-renders, the same
// way for every screen.
//
// # Screens
//
// The router location picks the screen:
//
//   - /catalog: listing catalog with filters, paging and a listing preview
//   - /me/chats: conversation list with unread markers
//   - /me/chats/{id}: one conversation with a compose line
//   - /login: email and password prompt, returning to ?redirect= afterwards
//
// Protected locations redirect to /login while signed out. The chat list
// poller runs while a session exists; a thread poller runs only while its
// conversation is on screen.
//
// # Preferences
//
// The theme (T to cycle) and the last catalog query are written to the
// preferences file and restored on the next launch.
package ui
