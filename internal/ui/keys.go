package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all key bindings.
type keyMap struct {
	Quit  key.Binding
	Help  key.Binding
	Theme key.Binding
	Back  key.Binding

	Up    key.Binding
	Down  key.Binding
	Open  key.Binding
	Close key.Binding

	Search    key.Binding
	Price     key.Binding
	Dates     key.Binding
	MoreGuest key.Binding
	LessGuest key.Binding
	Apply     key.Binding
	Sort      key.Binding
	Type      key.Binding
	Term      key.Binding
	NextPage  key.Binding
	PrevPage  key.Binding
	Refresh   key.Binding
	Reset     key.Binding

	Contact key.Binding
	Book    key.Binding

	Catalog key.Binding
	Chats   key.Binding
	Login   key.Binding
	Logout  key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() keyMap {
	return keyMap{
		Quit:  key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Help:  key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Theme: key.NewBinding(key.WithKeys("T"), key.WithHelp("T", "theme")),
		Back:  key.NewBinding(key.WithKeys("backspace"), key.WithHelp("bksp", "back")),

		Up:    key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k", "up")),
		Down:  key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j", "down")),
		Open:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
		Close: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close")),

		Search:    key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "city")),
		Price:     key.NewBinding(key.WithKeys("$"), key.WithHelp("$", "price range")),
		Dates:     key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "dates")),
		MoreGuest: key.NewBinding(key.WithKeys("+"), key.WithHelp("+", "more guests")),
		LessGuest: key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "fewer guests")),
		Apply:     key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "apply filters")),
		Sort:      key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sort")),
		Type:      key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "property type")),
		Term:      key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "rental term")),
		NextPage:  key.NewBinding(key.WithKeys("n", "right"), key.WithHelp("n", "next page")),
		PrevPage:  key.NewBinding(key.WithKeys("p", "left"), key.WithHelp("p", "prev page")),
		Refresh:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Reset:     key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "reset filters")),

		Contact: key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "contact host")),
		Book:    key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "book")),

		Catalog: key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "catalog")),
		Chats:   key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "chats")),
		Login:   key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "sign in")),
		Logout:  key.NewBinding(key.WithKeys("O"), key.WithHelp("O", "sign out")),
	}
}
