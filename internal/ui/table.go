package ui

import (
	"strconv"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/desertthunder/sift/internal/stats"
)

// artistColumns lays out the sortable artist table.
func artistColumns() []table.Column {
	return []table.Column{
		{Title: "Artist", Width: 24},
		{Title: "Songs", Width: 6},
		{Title: "Song %", Width: 7},
		{Title: "Playlists", Width: 9},
		{Title: "Playlist %", Width: 10},
	}
}

// artistRows converts [stats.ArtistRow] entries to displayable table rows.
func artistRows(rows []stats.ArtistRow) []table.Row {
	out := make([]table.Row, len(rows))
	for i, row := range rows {
		out[i] = table.Row{
			row.ArtistName,
			strconv.Itoa(row.SongCount),
			formatPercent(row.SongPercent),
			strconv.Itoa(row.PlaylistCount),
			formatPercent(row.PlaylistPercent),
		}
	}
	return out
}

func newArtistTable(rows []stats.ArtistRow) table.Model {
	t := table.New(
		table.WithColumns(artistColumns()),
		table.WithRows(artistRows(rows)),
		table.WithFocused(true),
		table.WithHeight(12),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.Bold(true).BorderStyle(lipgloss.NormalBorder()).BorderBottom(true)
	s.Selected = s.Selected.Foreground(lipgloss.Color("#FFFFFF")).Background(lipgloss.Color("#7D56F4"))
	t.SetStyles(s)

	return t
}

// nextSortColumn cycles songs -> playlists -> name -> songs.
func nextSortColumn(column string) string {
	switch column {
	case stats.ColumnSongs:
		return stats.ColumnPlaylists
	case stats.ColumnPlaylists:
		return stats.ColumnName
	default:
		return stats.ColumnSongs
	}
}

// resortTable reorders the model's row copy and refreshes the widget.
func (m *Model) resortTable() {
	stats.SortArtistRows(m.rows, m.sortCol, m.sortDesc)
	m.table.SetRows(artistRows(m.rows))
	m.table.GotoTop()
}
