package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/mmcdole/marquee/internal/catalog"
	"github.com/mmcdole/marquee/internal/domain"
	"github.com/mmcdole/marquee/internal/search"
	"github.com/mmcdole/marquee/internal/session"
	"github.com/mmcdole/marquee/internal/tui/styles"
	"github.com/mmcdole/marquee/internal/wishlist"
)

// View identifies the active screen
type View int

const (
	ViewSearch View = iota
	ViewBrowse
	ViewWishlist
)

// browseFeeds is the feed rotation for the browse view
var browseFeeds = []domain.FeedID{
	domain.FeedNowPlaying,
	domain.FeedPopularMovies,
	domain.FeedTopRatedMovies,
	domain.FeedUpcoming,
	domain.FeedAiringToday,
	domain.FeedPopularTV,
	domain.FeedTopRatedTV,
	domain.FeedOnTheAirTV,
}

var feedTitles = map[domain.FeedID]string{
	domain.FeedNowPlaying:     "Now Playing",
	domain.FeedPopularMovies:  "Popular Movies",
	domain.FeedTopRatedMovies: "Top Rated Movies",
	domain.FeedUpcoming:       "Upcoming",
	domain.FeedAiringToday:    "Airing Today",
	domain.FeedPopularTV:      "Popular TV",
	domain.FeedTopRatedTV:     "Top Rated TV",
	domain.FeedOnTheAirTV:     "On The Air",
}

// wishlistSortOrder is the rotation for the 's' key
var wishlistSortOrder = []domain.SortKey{
	domain.SortByAddedAt,
	domain.SortByTitle,
	domain.SortByRating,
}

// Model is the main Bubble Tea model for the application
type Model struct {
	keys   KeyMap
	logger *slog.Logger

	// Services
	agg  *search.Aggregator
	wl   *wishlist.Service
	cat  *catalog.Service
	repo domain.MetadataRepository
	sess *session.Service
	obs  *ChannelObserver

	// Layout
	width  int
	height int

	// Active view
	view View

	// Search view
	input        textinput.Model
	spin         spinner.Model
	snap         domain.SearchSnapshot
	searchCursor int

	// Browse view
	feedIdx      int
	feedPage     *domain.SearchPage
	feedCache    bool
	feedErr      string
	feedLoading  bool
	browseCursor int

	// Wishlist view
	wlKind     domain.MediaKind
	wlSortIdx  int
	wlCursor   int
	filter     textinput.Model
	filtering  bool
	filterText string

	// Detail overlay
	detailText string
	showDetail bool

	err string
}

// NewModel creates the top-level TUI model.
func NewModel(agg *search.Aggregator, wl *wishlist.Service, cat *catalog.Service, repo domain.MetadataRepository, sess *session.Service, obs *ChannelObserver, logger *slog.Logger) Model {
	if logger == nil {
		logger = slog.Default()
	}

	input := textinput.New()
	input.Placeholder = "Search movies, TV shows, people..."
	input.Prompt = "🔍 "
	input.Focus()

	filter := textinput.New()
	filter.Placeholder = "Filter wishlist..."
	filter.Prompt = "/ "

	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = styles.AccentStyle

	return Model{
		keys:   DefaultKeyMap(),
		logger: logger,
		agg:    agg,
		wl:     wl,
		cat:    cat,
		repo:   repo,
		sess:   sess,
		obs:    obs,
		input:  input,
		filter: filter,
		spin:   spin,
		wlKind: domain.MediaKindMovie,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		m.spin.Tick,
		waitForSearchUpdate(m.obs),
		loadFeed(m.cat, browseFeeds[0], 1),
	)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case SearchUpdatedMsg:
		m.snap = msg.Snapshot
		if m.searchCursor >= len(m.snap.Results) {
			m.searchCursor = 0
		}
		return m, waitForSearchUpdate(m.obs)

	case FeedLoadedMsg:
		m.feedLoading = false
		if msg.Err != nil && msg.Page == nil {
			m.feedErr = fmt.Sprintf("Failed to load %s: %v", feedTitles[msg.Feed], msg.Err)
			return m, nil
		}
		m.feedErr = ""
		m.feedPage = msg.Page
		m.feedCache = msg.FromCache
		m.browseCursor = 0
		return m, nil

	case MovieDetailsMsg:
		m.detailText = renderMovieDetails(msg.Details)
		m.showDetail = true
		return m, nil

	case SeriesDetailsMsg:
		m.detailText = renderSeriesDetails(msg.Details)
		m.showDetail = true
		return m, nil

	case WishlistSavedMsg:
		if e := m.wl.Err(); e != "" {
			m.err = e
		}
		return m, nil

	case ErrMsg:
		m.err = msg.Error()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		return m, tea.Quit
	}

	if m.showDetail {
		if key.Matches(msg, m.keys.Escape) || key.Matches(msg, m.keys.Enter) {
			m.showDetail = false
		}
		return m, nil
	}

	// View switching
	switch {
	case key.Matches(msg, m.keys.SearchView):
		m.view = ViewSearch
		m.input.Focus()
		return m, nil
	case key.Matches(msg, m.keys.BrowseView):
		m.view = ViewBrowse
		m.input.Blur()
		return m, nil
	case key.Matches(msg, m.keys.WishlistView):
		m.view = ViewWishlist
		m.input.Blur()
		return m, nil
	}

	switch m.view {
	case ViewSearch:
		return m.handleSearchKey(msg)
	case ViewBrowse:
		return m.handleBrowseKey(msg)
	default:
		return m.handleWishlistKey(msg)
	}
}

// === Search view ===

func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.searchCursor > 0 {
			m.searchCursor--
		}
		return m, nil

	case key.Matches(msg, m.keys.Down):
		if m.searchCursor < len(m.snap.Results)-1 {
			m.searchCursor++
		}
		return m, nil

	case key.Matches(msg, m.keys.PageDown):
		go m.agg.LoadMore(context.Background())
		return m, nil

	case key.Matches(msg, m.keys.Enter):
		query := strings.TrimSpace(m.input.Value())
		if query != "" {
			go m.agg.Search(context.Background(), query, 1)
		}
		return m, nil

	case key.Matches(msg, m.keys.CycleType):
		next := nextResultType(m.snap.Type)
		go m.agg.ChangeResultType(context.Background(), next)
		return m, nil

	case key.Matches(msg, m.keys.Toggle):
		return m.toggleSelected(m.selectedSearchResult())

	case key.Matches(msg, m.keys.Details):
		return m, m.detailsFor(m.selectedSearchResult())

	case key.Matches(msg, m.keys.Escape):
		m.input.SetValue("")
		m.agg.SetQuery("")
		return m, nil
	}

	// Everything else feeds the input, which drives the debounced query
	var cmd tea.Cmd
	prev := m.input.Value()
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() != prev {
		m.agg.SetQuery(m.input.Value())
	}
	return m, cmd
}

func nextResultType(t domain.ResultType) domain.ResultType {
	switch t {
	case domain.ResultTypeAll:
		return domain.ResultTypeMovie
	case domain.ResultTypeMovie:
		return domain.ResultTypeTV
	case domain.ResultTypeTV:
		return domain.ResultTypePerson
	default:
		return domain.ResultTypeAll
	}
}

func (m Model) selectedSearchResult() *domain.SearchResult {
	if m.searchCursor < 0 || m.searchCursor >= len(m.snap.Results) {
		return nil
	}
	r := m.snap.Results[m.searchCursor]
	return &r
}

// === Browse view ===

func (m Model) handleBrowseKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	results := m.browseResults()

	switch {
	case key.Matches(msg, m.keys.Up):
		if m.browseCursor > 0 {
			m.browseCursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.browseCursor < len(results)-1 {
			m.browseCursor++
		}
	case key.Matches(msg, m.keys.NextFeed):
		m.feedIdx = (m.feedIdx + 1) % len(browseFeeds)
		m.feedLoading = true
		return m, loadFeed(m.cat, browseFeeds[m.feedIdx], 1)
	case key.Matches(msg, m.keys.PrevFeed):
		m.feedIdx = (m.feedIdx - 1 + len(browseFeeds)) % len(browseFeeds)
		m.feedLoading = true
		return m, loadFeed(m.cat, browseFeeds[m.feedIdx], 1)
	case key.Matches(msg, m.keys.Enter):
		// Retry is user-initiated: re-request the active feed
		if m.feedErr != "" {
			m.feedLoading = true
			return m, loadFeed(m.cat, browseFeeds[m.feedIdx], 1)
		}
	case key.Matches(msg, m.keys.Toggle):
		if m.browseCursor < len(results) {
			r := results[m.browseCursor]
			return m.toggleSelected(&r)
		}
	case key.Matches(msg, m.keys.Details):
		if m.browseCursor < len(results) {
			r := results[m.browseCursor]
			return m, m.detailsFor(&r)
		}
	}
	return m, nil
}

func (m Model) browseResults() []domain.SearchResult {
	if m.feedPage == nil {
		return nil
	}
	return m.feedPage.Results
}

// === Wishlist view ===

func (m Model) handleWishlistKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.filtering {
		switch {
		case key.Matches(msg, m.keys.Escape):
			m.filtering = false
			m.filter.SetValue("")
			m.filterText = ""
			m.filter.Blur()
			return m, nil
		case key.Matches(msg, m.keys.Enter):
			m.filtering = false
			m.filter.Blur()
			return m, nil
		}
		var cmd tea.Cmd
		m.filter, cmd = m.filter.Update(msg)
		m.filterText = m.filter.Value()
		return m, cmd
	}

	items := m.visibleWishlist()

	switch {
	case key.Matches(msg, m.keys.Up):
		if m.wlCursor > 0 {
			m.wlCursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.wlCursor < len(items)-1 {
			m.wlCursor++
		}
	case key.Matches(msg, m.keys.Filter):
		m.filtering = true
		m.filter.Focus()
		return m, textinput.Blink
	case key.Matches(msg, m.keys.Sort):
		m.wlSortIdx = (m.wlSortIdx + 1) % len(wishlistSortOrder)
		m.wl.Sort(m.wlKind, wishlistSortOrder[m.wlSortIdx])
		return m, m.persist()
	case key.Matches(msg, m.keys.Remove):
		if m.wlCursor < len(items) {
			item := items[m.wlCursor]
			if item.Kind == domain.MediaKindMovie {
				m.wl.RemoveMovie(item.ID)
			} else {
				m.wl.RemoveSeries(item.ID)
			}
			if m.wlCursor >= len(items)-1 && m.wlCursor > 0 {
				m.wlCursor--
			}
			return m, m.persist()
		}
	case key.Matches(msg, m.keys.ClearList):
		m.wl.Clear(m.wlKind)
		m.wlCursor = 0
		return m, m.persist()
	case msg.String() == "1":
		m.wlKind = domain.MediaKindMovie
		m.wlCursor = 0
	case msg.String() == "2":
		m.wlKind = domain.MediaKindSeries
		m.wlCursor = 0
	}
	return m, nil
}

// visibleWishlist returns the active collection, fuzzy-filtered when a
// filter is set.
func (m Model) visibleWishlist() []domain.WishlistItem {
	var items []domain.WishlistItem
	if m.wlKind == domain.MediaKindMovie {
		items = m.wl.Movies()
	} else {
		items = m.wl.Series()
	}

	if m.filterText == "" {
		return items
	}

	titles := make([]string, len(items))
	for i, item := range items {
		titles[i] = item.DisplayTitle()
	}
	matches := fuzzy.Find(m.filterText, titles)

	filtered := make([]domain.WishlistItem, len(matches))
	for i, match := range matches {
		filtered[i] = items[match.Index]
	}
	return filtered
}

// === Shared actions ===

func (m Model) toggleSelected(r *domain.SearchResult) (tea.Model, tea.Cmd) {
	if r == nil || r.Kind == domain.MediaKindPerson {
		return m, nil
	}
	item := domain.FromSearchResult(*r)
	if r.Kind == domain.MediaKindMovie {
		m.wl.ToggleMovie(item)
	} else {
		m.wl.ToggleSeries(item)
	}
	return m, m.persist()
}

// persist kicks off a background save for the signed-in user.
func (m Model) persist() tea.Cmd {
	user := m.sess.Current()
	if user == nil {
		return nil
	}
	return saveWishlist(m.wl, user.ID)
}

func (m Model) detailsFor(r *domain.SearchResult) tea.Cmd {
	if r == nil {
		return nil
	}
	switch r.Kind {
	case domain.MediaKindMovie:
		return loadMovieDetails(m.repo, r.ID)
	case domain.MediaKindSeries:
		return loadSeriesDetails(m.repo, r.ID)
	default:
		return nil
	}
}

func renderMovieDetails(d *domain.MovieDetails) string {
	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render(d.Title) + "\n")
	if d.Tagline != "" {
		b.WriteString(styles.SubtitleStyle.Render(d.Tagline) + "\n")
	}
	b.WriteString("\n")
	if d.ReleaseDate != "" {
		b.WriteString(fmt.Sprintf("Released: %s\n", d.ReleaseDate))
	}
	if d.Runtime > 0 {
		b.WriteString(fmt.Sprintf("Runtime: %dm\n", d.Runtime))
	}
	if len(d.Genres) > 0 {
		b.WriteString(fmt.Sprintf("Genres: %s\n", strings.Join(d.Genres, ", ")))
	}
	if d.VoteAverage > 0 {
		b.WriteString(fmt.Sprintf("Rating: %.1f (%d votes)\n", d.VoteAverage, d.VoteCount))
	}
	if d.Overview != "" {
		b.WriteString("\n" + d.Overview + "\n")
	}
	return b.String()
}

func renderSeriesDetails(d *domain.SeriesDetails) string {
	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render(d.Name) + "\n")
	if d.Tagline != "" {
		b.WriteString(styles.SubtitleStyle.Render(d.Tagline) + "\n")
	}
	b.WriteString("\n")
	if d.FirstAirDate != "" {
		b.WriteString(fmt.Sprintf("First aired: %s\n", d.FirstAirDate))
	}
	if d.Seasons > 0 {
		b.WriteString(fmt.Sprintf("Seasons: %d (%d episodes)\n", d.Seasons, d.Episodes))
	}
	if len(d.Genres) > 0 {
		b.WriteString(fmt.Sprintf("Genres: %s\n", strings.Join(d.Genres, ", ")))
	}
	if d.VoteAverage > 0 {
		b.WriteString(fmt.Sprintf("Rating: %.1f (%d votes)\n", d.VoteAverage, d.VoteCount))
	}
	if d.Overview != "" {
		b.WriteString("\n" + d.Overview + "\n")
	}
	return b.String()
}

// === View ===

func (m Model) View() string {
	if m.width == 0 {
		return "loading..."
	}

	if m.showDetail {
		box := styles.ActiveBorder.Width(min(m.width-4, 80)).Padding(1, 2)
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
			box.Render(m.detailText+"\n"+styles.DimStyle.Render("esc to close")))
	}

	var body string
	switch m.view {
	case ViewSearch:
		body = m.viewSearch()
	case ViewBrowse:
		body = m.viewBrowse()
	default:
		body = m.viewWishlist()
	}

	return lipgloss.JoinVertical(lipgloss.Left, m.viewTabs(), body, m.viewFooter())
}

func (m Model) viewTabs() string {
	tabs := []struct {
		view  View
		label string
	}{
		{ViewSearch, "Search"},
		{ViewBrowse, "Browse"},
		{ViewWishlist, fmt.Sprintf("Wishlist (%d)", m.wl.TotalCount())},
	}

	var rendered []string
	for _, t := range tabs {
		if t.view == m.view {
			rendered = append(rendered, styles.ActiveTabStyle.Render(t.label))
		} else {
			rendered = append(rendered, styles.InactiveTabStyle.Render(t.label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

func (m Model) listHeight() int {
	// tabs + input + header + footer
	h := m.height - 6
	if h < 3 {
		h = 3
	}
	return h
}

func (m Model) viewSearch() string {
	var b strings.Builder
	b.WriteString(m.input.View() + "  " + styles.DimStyle.Render("["+string(m.snap.Type)+"]") + "\n")

	if m.snap.Loading {
		b.WriteString(m.spin.View() + " searching...\n")
	}
	if m.snap.Err != "" {
		b.WriteString(styles.ErrorStyle.Render(m.snap.Err) + "  " + styles.DimStyle.Render("(enter to retry)") + "\n")
	}

	if len(m.snap.Results) == 0 && !m.snap.Loading {
		b.WriteString(m.viewSearchEmpty())
		return b.String()
	}

	b.WriteString(m.renderResults(m.snap.Results, m.searchCursor))

	if m.snap.TotalResults > 0 {
		b.WriteString(styles.DimStyle.Render(fmt.Sprintf(
			"\npage %d/%d · %d results · pgdn for more",
			m.snap.Page, m.snap.TotalPages, m.snap.TotalResults)))
	}
	return b.String()
}

func (m Model) viewSearchEmpty() string {
	var b strings.Builder
	if len(m.snap.RecentSearches) > 0 {
		b.WriteString(styles.SubtitleStyle.Render("Recent") + "\n")
		for _, r := range m.snap.RecentSearches {
			b.WriteString("  " + r + "\n")
		}
		b.WriteString("\n")
	}
	b.WriteString(styles.SubtitleStyle.Render("Trending") + "\n")
	for _, t := range m.agg.TrendingSearches() {
		b.WriteString("  " + styles.AccentStyle.Render(t) + "\n")
	}
	return b.String()
}

func (m Model) viewBrowse() string {
	var b strings.Builder

	title := feedTitles[browseFeeds[m.feedIdx]]
	b.WriteString(styles.TitleStyle.Render(title))
	if m.feedCache {
		b.WriteString("  " + styles.DimStyle.Render("(cached)"))
	}
	b.WriteString("\n")

	if m.feedLoading {
		b.WriteString(m.spin.View() + " loading...\n")
		return b.String()
	}
	if m.feedErr != "" {
		b.WriteString(styles.ErrorStyle.Render(m.feedErr) + "  " + styles.DimStyle.Render("(enter to retry)") + "\n")
	}

	b.WriteString(m.renderResults(m.browseResults(), m.browseCursor))
	return b.String()
}

func (m Model) renderResults(results []domain.SearchResult, cursor int) string {
	if len(results) == 0 {
		return styles.DimStyle.Render("  nothing here\n")
	}

	height := m.listHeight()
	start := 0
	if cursor >= height {
		start = cursor - height + 1
	}
	end := min(start+height, len(results))

	var b strings.Builder
	for i := start; i < end; i++ {
		r := results[i]
		line := m.renderResultLine(r)
		if i == cursor {
			line = styles.SelectedStyle.Render("▸ " + line)
		} else {
			line = "  " + line
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}

func (m Model) renderResultLine(r domain.SearchResult) string {
	var kind string
	switch r.Kind {
	case domain.MediaKindMovie:
		kind = styles.MovieChar
	case domain.MediaKindSeries:
		kind = styles.SeriesChar
	default:
		kind = styles.PersonChar
	}

	listed := " "
	switch r.Kind {
	case domain.MediaKindMovie:
		if m.wl.IsMovieListed(r.ID) {
			listed = styles.ListedHeart
		}
	case domain.MediaKindSeries:
		if m.wl.IsSeriesListed(r.ID) {
			listed = styles.ListedHeart
		}
	}

	line := fmt.Sprintf("%s %s %s", kind, listed, r.DisplayTitle())
	if y := r.Year(); y != "" {
		line += " " + styles.DimStyle.Render("("+y+")")
	}
	if r.Kind == domain.MediaKindPerson && len(r.KnownFor) > 0 {
		line += " " + styles.DimStyle.Render("— "+strings.Join(r.KnownFor, ", "))
	} else if r.VoteAverage > 0 {
		line += " " + styles.AccentStyle.Render(fmt.Sprintf("★%.1f", r.VoteAverage))
	}
	return line
}

func (m Model) viewWishlist() string {
	var b strings.Builder

	header := fmt.Sprintf("Movies (%d)", m.wl.MovieCount())
	other := fmt.Sprintf("Series (%d)", m.wl.SeriesCount())
	if m.wlKind == domain.MediaKindSeries {
		header, other = other, header
		b.WriteString(styles.DimStyle.Render("[1] "+other) + "   " + styles.TitleStyle.Render("[2] "+header))
	} else {
		b.WriteString(styles.TitleStyle.Render("[1] "+header) + "   " + styles.DimStyle.Render("[2] "+other))
	}
	b.WriteString("  " + styles.DimStyle.Render("sort: "+string(wishlistSortOrder[m.wlSortIdx])) + "\n")

	if m.filtering || m.filterText != "" {
		b.WriteString(m.filter.View() + "\n")
	}
	if e := m.wl.Err(); e != "" {
		b.WriteString(styles.ErrorStyle.Render(e) + "\n")
	}

	items := m.visibleWishlist()
	if len(items) == 0 {
		b.WriteString(styles.DimStyle.Render("  your wishlist is empty — ctrl+w on any result adds it\n"))
		return b.String()
	}

	height := m.listHeight()
	start := 0
	if m.wlCursor >= height {
		start = m.wlCursor - height + 1
	}
	end := min(start+height, len(items))

	for i := start; i < end; i++ {
		item := items[i]
		line := fmt.Sprintf("%s %s", styles.ListedHeart, item.DisplayTitle())
		if item.VoteAverage > 0 {
			line += " " + styles.AccentStyle.Render(fmt.Sprintf("★%.1f", item.VoteAverage))
		}
		line += " " + styles.DimStyle.Render("added "+item.AddedAt.Format("Jan 2"))
		if i == m.wlCursor {
			line = styles.SelectedStyle.Render("▸ " + line)
		} else {
			line = "  " + line
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}

func (m Model) viewFooter() string {
	var help string
	switch m.view {
	case ViewSearch:
		help = "tab: type · ctrl+w: wishlist · ctrl+d: details · pgdn: more · F1-F3: views · ctrl+c: quit"
	case ViewBrowse:
		help = "[/]: feed · ctrl+w: wishlist · ctrl+d: details · F1-F3: views · ctrl+c: quit"
	default:
		help = "1/2: collection · s: sort · x: remove · /: filter · C: clear · F1-F3: views · ctrl+c: quit"
	}
	if m.err != "" {
		return styles.FooterStyle.Render(styles.ErrorStyle.Render(m.err) + " · " + help)
	}
	return styles.FooterStyle.Render(help)
}
