package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
)

// barWidth is the rendered width of insight percentage bars.
const barWidth = 20

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case DeckView:
		return m.renderDeck()
	case InsightsView:
		return m.renderInsights()
	case TableView:
		return m.renderTable()
	case SummaryView:
		return m.renderSummary()
	default:
		return ""
	}
}

func (m *Model) renderDeck() string {
	title := styles.title.Render("Review Artists")

	card, ok := m.deck.Current()
	if !ok {
		done := styles.ok.Render("✓ All cards reviewed")
		hint := styles.help.Render("press u to undo, tab for other views, q to save & quit")
		return fmt.Sprintf("%s\n%s\n\n%s", title, done, hint)
	}

	image := "no image"
	if card.ImageURL != nil {
		image = *card.ImageURL
	}

	body := fmt.Sprintf("%s\n%s\n\n%s",
		styles.ok.Render(card.ArtistName), styles.help.Render(image), m.cardCounts())

	kept, removed := m.deck.Counts()
	progress := styles.help.Render(fmt.Sprintf("card %d of %d • kept %d • removed %d",
		m.deck.Position()+1, m.deck.Size(), kept, removed))

	helpView := m.help.ShortHelpView([]key.Binding{
		m.keys.remove, m.keys.keep, m.keys.skip, m.keys.undo, m.keys.nextView, m.keys.quit,
	})

	return fmt.Sprintf("%s\n%s\n%s\n\n%s", title, cardStyle.Render(body), progress, helpView)
}

// cardCounts borrows the current card's counts from the artist table; the
// review list and the table share canonical order.
func (m *Model) cardCounts() string {
	pos := m.deck.Position()
	if pos >= len(m.snapshot.ArtistTable) {
		return ""
	}

	row := m.snapshot.ArtistTable[pos]
	return fmt.Sprintf("Songs: %d (%s)\nPlaylists: %d (%s)",
		row.SongCount, formatPercent(row.SongPercent),
		row.PlaylistCount, formatPercent(row.PlaylistPercent))
}

func (m *Model) renderInsights() string {
	titles := [insightPages]string{
		"Top Artists by Songs",
		"Top Artists by Playlists",
		"Top Tracks by Playlist Presence",
	}
	title := styles.title.Render(fmt.Sprintf("%s (%d/%d)", titles[m.page], m.page+1, insightPages))

	helpView := m.help.ShortHelpView([]key.Binding{
		m.keys.prevPage, m.keys.nextPage, m.keys.up, m.keys.down, m.keys.nextView, m.keys.quit,
	})

	return fmt.Sprintf("%s\n%s\n\n%s", title, m.insights.View(), helpView)
}

// insightsContent renders the current ranking page with percentage bars.
func (m *Model) insightsContent() string {
	type line struct {
		name  string
		count string
		pct   float64
	}

	var lines []line
	switch m.page {
	case 0:
		for _, entry := range m.snapshot.TopArtistsBySongs {
			lines = append(lines, line{entry.ArtistName, fmt.Sprintf("%d songs", entry.Value), entry.Percent})
		}
	case 1:
		for _, entry := range m.snapshot.TopArtistsByPlaylists {
			lines = append(lines, line{entry.ArtistName, fmt.Sprintf("in %d playlists", entry.Value), entry.Percent})
		}
	case 2:
		for _, entry := range m.snapshot.TopTracksByPlaylists {
			name := fmt.Sprintf("%s - %s", entry.MainArtistName, entry.TrackName)
			lines = append(lines, line{name, fmt.Sprintf("in %d playlists", entry.PlaylistCount), entry.Percent})
		}
	}

	if len(lines) == 0 {
		return styles.warn.Render("nothing ranked yet; run a scan first")
	}

	var b strings.Builder
	for i, l := range lines {
		fmt.Fprintf(&b, "%d. %-24.24s %s %s (%s)\n",
			i+1, l.name, renderBar(l.pct), l.count, formatPercent(l.pct))
	}

	return b.String()
}

// renderBar draws a fixed-width percentage bar.
func renderBar(percent float64) string {
	filled := int(percent / 100 * barWidth)
	if filled > barWidth {
		filled = barWidth
	}
	if filled < 0 {
		filled = 0
	}

	return styles.barOn.Render(strings.Repeat("█", filled)) +
		styles.barOff.Render(strings.Repeat("░", barWidth-filled))
}

func (m *Model) renderTable() string {
	title := styles.title.Render("Artist Table")

	direction := "↑"
	if m.sortDesc {
		direction = "↓"
	}
	sorted := styles.help.Render(fmt.Sprintf("sorted by %s %s", m.sortCol, direction))

	helpView := m.help.ShortHelpView([]key.Binding{
		m.keys.sort, m.keys.reverse, m.keys.up, m.keys.down, m.keys.nextView, m.keys.quit,
	})

	return fmt.Sprintf("%s\n%s\n%s\n\n%s", title, m.table.View(), sorted, helpView)
}

func (m *Model) renderSummary() string {
	title := styles.title.Render("Review Summary")

	kept, removed := m.deck.Counts()
	reviewed := m.deck.Position()
	skipped := reviewed - kept - removed

	var b strings.Builder
	fmt.Fprintf(&b, "Reviewed %d of %d artists\n\n", reviewed, m.deck.Size())
	fmt.Fprintf(&b, "%s\n", styles.ok.Render(fmt.Sprintf("Kept: %d", kept)))
	fmt.Fprintf(&b, "%s\n", styles.err.Render(fmt.Sprintf("Removed: %d", removed)))
	fmt.Fprintf(&b, "Skipped: %d\n", skipped)
	if remaining := m.deck.Remaining(); remaining > 0 {
		fmt.Fprintf(&b, "Remaining: %d\n", remaining)
	}

	note := styles.help.Render("decisions are saved when you quit")
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.undo, m.keys.nextView, m.keys.quit})

	return fmt.Sprintf("%s\n%s\n%s\n\n%s", title, b.String(), note, helpView)
}

func formatPercent(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64) + "%"
}
