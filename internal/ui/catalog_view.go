package ui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/rentme/internal/api"
	"github.com/five82/rentme/internal/catalog"
	"github.com/five82/rentme/internal/query"
	"github.com/five82/rentme/internal/state"
)

var errNeedDates = errors.New("set check-in and check-out dates first (press d)")

func (m *Model) handleCatalogKey(msg tea.KeyMsg) tea.Cmd {
	c := m.opts.Catalog
	if m.opts.Preview.Open() {
		switch {
		case key.Matches(msg, m.keys.Close):
			m.opts.Preview.Close()
		case key.Matches(msg, m.keys.Contact):
			return m.contactCmd()
		case key.Matches(msg, m.keys.Book):
			return m.bookCmd()
		}
		return nil
	}

	items := m.listings.Data.Items
	switch {
	case key.Matches(msg, m.keys.Up):
		m.cursor = clamp(m.cursor-1, len(items))
	case key.Matches(msg, m.keys.Down):
		m.cursor = clamp(m.cursor+1, len(items))
	case key.Matches(msg, m.keys.Open):
		if m.cursor < len(items) {
			m.opts.Preview.Select(m.ctx, items[m.cursor].ID)
		}
	case key.Matches(msg, m.keys.Search):
		m.beginInput(inputCity, c.Form().City)
	case key.Matches(msg, m.keys.Price):
		m.beginInput(inputPrice, formatRange(c.Form()))
	case key.Matches(msg, m.keys.Dates):
		f := c.Form()
		m.beginInput(inputDates, strings.TrimSpace(f.CheckIn+" "+f.CheckOut))
	case key.Matches(msg, m.keys.MoreGuest):
		c.Stage(func(f *query.FilterState) { f.Guests++ })
	case key.Matches(msg, m.keys.LessGuest):
		c.Stage(func(f *query.FilterState) {
			if f.Guests > 0 {
				f.Guests--
			}
		})
	case key.Matches(msg, m.keys.Apply):
		c.Submit()
	case key.Matches(msg, m.keys.Sort):
		c.SetSort(query.Next(query.Sorts, c.Filter().Sort))
	case key.Matches(msg, m.keys.Type):
		c.SetPropertyType(query.Next(query.PropertyTypes, c.Filter().PropertyType))
	case key.Matches(msg, m.keys.Term):
		c.SetRentalTerm(query.Next(query.RentalTerms, c.Filter().RentalTerm))
	case key.Matches(msg, m.keys.NextPage):
		f := c.Filter()
		if f.Page < catalog.TotalPages(m.listings.Data.Meta) {
			c.ChangePage(f.Page + 1)
		}
	case key.Matches(msg, m.keys.PrevPage):
		if f := c.Filter(); f.Page > 1 {
			c.ChangePage(f.Page - 1)
		}
	case key.Matches(msg, m.keys.Refresh):
		c.Refresh()
	case key.Matches(msg, m.keys.Reset):
		c.Reset()
	}
	return nil
}

// commitFilter stages a typed filter value and submits the form.
func (m *Model) commitFilter(mode inputMode, value string) tea.Cmd {
	value = strings.TrimSpace(value)
	var edit func(*query.FilterState)
	switch mode {
	case inputCity:
		edit = func(f *query.FilterState) { f.City = value }
	case inputPrice:
		lo, hi, err := parseRange(value)
		if err != nil {
			m.report("", err)
			return nil
		}
		edit = func(f *query.FilterState) { f.PriceMin, f.PriceMax = lo, hi }
	case inputDates:
		in, out, _ := strings.Cut(strings.Join(strings.Fields(value), " "), " ")
		edit = func(f *query.FilterState) { f.CheckIn, f.CheckOut = in, out }
	default:
		return nil
	}
	m.opts.Catalog.Stage(edit)
	m.opts.Catalog.Submit()
	return nil
}

// parseRange reads "min-max", "min-" or "-max". Blank clears both.
func parseRange(value string) (int, int, error) {
	if value == "" {
		return 0, 0, nil
	}
	loRaw, hiRaw, _ := strings.Cut(value, "-")
	read := func(s string) (int, error) {
		s = strings.TrimSpace(s)
		if s == "" {
			return 0, nil
		}
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("invalid price %q", s)
		}
		return n, nil
	}
	lo, err := read(loRaw)
	if err != nil {
		return 0, 0, err
	}
	hi, err := read(hiRaw)
	if err != nil {
		return 0, 0, err
	}
	if hi > 0 && lo > hi {
		lo, hi = hi, lo
	}
	return lo, hi, nil
}

func formatRange(f query.FilterState) string {
	if f.PriceMin == 0 && f.PriceMax == 0 {
		return ""
	}
	var b strings.Builder
	if f.PriceMin > 0 {
		b.WriteString(strconv.Itoa(f.PriceMin))
	}
	b.WriteString("-")
	if f.PriceMax > 0 {
		b.WriteString(strconv.Itoa(f.PriceMax))
	}
	return b.String()
}

// previewListing returns the selected listing, falling back to a bare id
// while neither the detail nor the list has loaded.
func (m Model) previewListing() (api.ListingRecord, bool) {
	id := m.opts.Preview.Selected()
	if id == "" {
		return api.ListingRecord{}, false
	}
	if m.detail.HasData && m.detail.Data.Listing.ID == id {
		return m.detail.Data.Listing, true
	}
	for _, item := range m.listings.Data.Items {
		if item.ID == id {
			return item, true
		}
	}
	return api.ListingRecord{ID: id}, true
}

func (m Model) contactCmd() tea.Cmd {
	listing, ok := m.previewListing()
	if !ok {
		return nil
	}
	ctx, runner, client, user := m.ctx, m.opts.Actions, m.opts.Client, m.currentUser()
	return func() tea.Msg {
		err := runner.ContactHost(ctx, client, listing, user)
		return actionDoneMsg{err: err}
	}
}

func (m Model) bookCmd() tea.Cmd {
	listing, ok := m.previewListing()
	if !ok {
		return nil
	}
	f := m.opts.Catalog.Filter()
	if f.CheckIn == "" || f.CheckOut == "" {
		return func() tea.Msg { return actionDoneMsg{err: errNeedDates} }
	}
	req := api.CreateBookingRequest{
		ListingID: listing.ID,
		CheckIn:   f.CheckIn,
		CheckOut:  f.CheckOut,
		Guests:    max(f.Guests, 1),
	}
	ctx, runner, client := m.ctx, m.opts.Actions, m.opts.Client
	return func() tea.Msg {
		id, err := runner.Book(ctx, client, req)
		if err != nil {
			return actionDoneMsg{err: err}
		}
		return actionDoneMsg{notice: "Booking " + id + " requested"}
	}
}

func (m Model) renderCatalog(height int) string {
	styles := m.theme.Styles()
	c := m.opts.Catalog
	filter, form := c.Filter(), c.Form()

	lines := []string{m.renderFilterBar(filter)}
	if form != filter {
		lines = append(lines, styles.WarningText.Render("staged: "+describeFilter(form)+"  (a to apply)"))
	}
	lines = append(lines, "")

	if m.opts.Preview.Open() {
		lines = append(lines, m.renderPreview())
		return strings.Join(lines, "\n")
	}

	switch {
	case m.listings.Phase == state.PhaseLoading && !m.listings.HasData:
		lines = append(lines, styles.MutedText.Render("Loading listings..."))
	case m.listings.Phase == state.PhaseError:
		lines = append(lines, styles.DangerText.Render(api.Describe(m.listings.LastError)))
	case m.listings.HasData && len(m.listings.Data.Items) == 0:
		lines = append(lines, styles.MutedText.Render("No listings match these filters."))
	default:
		rows := max(height-len(lines)-1, 1)
		start := 0
		if m.cursor >= rows {
			start = m.cursor - rows + 1
		}
		items := m.listings.Data.Items
		for i := start; i < len(items) && i < start+rows; i++ {
			lines = append(lines, m.renderListingRow(items[i], i == m.cursor))
		}
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderFilterBar(f query.FilterState) string {
	styles := m.theme.Styles()
	meta := m.listings.Data.Meta
	page := fmt.Sprintf("page %d/%d", f.Page, max(catalog.TotalPages(meta), 1))
	parts := []string{
		styles.Title.Render("Catalog"),
		styles.Text.Render(describeFilter(f)),
		styles.MutedText.Render(page),
		styles.MutedText.Render(fmt.Sprintf("%d results", meta.Total)),
	}
	if m.listings.Phase == state.PhaseLoading {
		parts = append(parts, styles.AccentText.Render("loading"))
	}
	return strings.Join(parts, "  ")
}

func describeFilter(f query.FilterState) string {
	parts := []string{"sort " + string(f.Sort)}
	if f.City != "" {
		parts = append(parts, "city "+f.City)
	}
	if f.CheckIn != "" || f.CheckOut != "" {
		parts = append(parts, "dates "+f.CheckIn+".."+f.CheckOut)
	}
	if f.Guests > 0 {
		parts = append(parts, fmt.Sprintf("guests %d", f.Guests))
	}
	if r := formatRange(f); r != "" {
		parts = append(parts, "price "+r)
	}
	if f.PropertyType != query.PropertyAny {
		parts = append(parts, string(f.PropertyType))
	}
	if f.RentalTerm != query.TermAny {
		parts = append(parts, string(f.RentalTerm))
	}
	return strings.Join(parts, " · ")
}

func (m Model) renderListingRow(l api.ListingRecord, selected bool) string {
	styles := m.theme.Styles()
	row := fmt.Sprintf("%-32s %-14s %12s  %s  %s",
		truncate(l.Title, 32),
		truncate(l.City, 14),
		formatRate(l.NightlyRateCents, l.PriceUnit),
		formatRating(l.Rating),
		l.PropertyType,
	)
	if selected {
		return styles.Selected.Width(max(m.width, lipgloss.Width(row))).Render("› " + row)
	}
	return styles.Text.Render("  " + row)
}

func (m Model) renderPreview() string {
	styles := m.theme.Styles()
	width := max(m.width-4, 20)
	switch {
	case m.detail.Phase == state.PhaseError:
		return styles.Panel.Width(width).Render(styles.DangerText.Render(api.Describe(m.detail.LastError)) +
			"\n" + styles.FaintText.Render("esc close"))
	case !m.detail.HasData:
		return styles.Panel.Width(width).Render(styles.MutedText.Render("Loading listing..."))
	}

	d := m.detail.Data
	l := d.Listing
	lines := []string{
		styles.Title.Render(l.Title),
		styles.MutedText.Render(strings.Join(nonEmpty(l.City, l.Country, l.PropertyType, l.RentalTerm), " · ")),
		fmt.Sprintf("%s  %s  up to %d guests  %d bd / %d ba",
			formatRate(l.NightlyRateCents, l.PriceUnit), formatRating(l.Rating), l.GuestsLimit, l.Bedrooms, l.Bathrooms),
	}
	if d.Price != nil {
		lines = append(lines, styles.SuccessText.Render(fmt.Sprintf("Total %s for %s..%s",
			formatMoney(d.Price.Total), d.Price.CheckIn, d.Price.CheckOut)))
	}
	if d.Host != nil && d.Host.Name != "" {
		lines = append(lines, styles.Text.Render("Host: "+d.Host.Name))
	}
	if d.Description != "" {
		lines = append(lines, "", lipgloss.NewStyle().Width(width-2).Render(d.Description))
	}
	if len(l.Amenities) > 0 {
		lines = append(lines, "", styles.AccentText.Render("Amenities: ")+strings.Join(l.Amenities, ", "))
	}
	if len(d.HouseRules) > 0 {
		lines = append(lines, styles.AccentText.Render("House rules: ")+strings.Join(d.HouseRules, "; "))
	}
	lines = append(lines, styles.MutedText.Render(fmt.Sprintf("%d reviews", d.Reviews.Total)))
	if m.detail.Phase == state.PhaseLoading {
		lines = append(lines, styles.AccentText.Render("refreshing"))
	}
	lines = append(lines, "", styles.FaintText.Render("c contact host · b book · esc close"))
	return styles.Panel.Width(width).Render(strings.Join(lines, "\n"))
}
