package ui

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/sift/internal/review"
	"github.com/desertthunder/sift/internal/stats"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	DeckView ViewState = iota
	InsightsView
	TableView
	SummaryView
)

// viewCount bounds the tab cycle.
const viewCount = 4

// insightPages is how many ranking pages the insights view flips through.
const insightPages = 3

// Model represents the review TUI state: the snapshot under review, the deck
// cursor, and the widgets for each view.
//
// The model performs no IO. Callers read the deck back after the program
// exits and persist decisions themselves.
type Model struct {
	view     ViewState
	snapshot *stats.Snapshot
	deck     *review.Deck
	rows     []stats.ArtistRow
	sortCol  string
	sortDesc bool
	page     int
	width    int
	height   int
	insights viewport.Model
	table    table.Model
	help     help.Model
	keys     keyMap
}

// NewModel creates a review TUI over a snapshot and its deck. The deck may
// carry restored verdicts when resuming a saved session; a finished deck
// opens on the summary.
func NewModel(snapshot *stats.Snapshot, deck *review.Deck) *Model {
	rows := make([]stats.ArtistRow, len(snapshot.ArtistTable))
	copy(rows, snapshot.ArtistTable)

	m := &Model{
		view:     DeckView,
		snapshot: snapshot,
		deck:     deck,
		rows:     rows,
		sortCol:  stats.ColumnSongs,
		sortDesc: true,
		insights: viewport.New(0, 0),
		help:     help.New(),
		keys:     newKeyMap(),
	}
	m.table = newArtistTable(rows)

	if deck.Done() {
		m.view = SummaryView
	}

	return m
}

// Deck exposes the deck so the caller can persist decisions after the
// program exits.
func (m *Model) Deck() *review.Deck {
	return m.deck
}

// Init implements tea.Model. The review TUI needs no startup command; all of
// its data arrives through the constructor.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table.SetWidth(msg.Width - 4)
		m.table.SetHeight(max(msg.Height-8, 3))
		m.insights.Width = msg.Width - 4
		m.insights.Height = max(msg.Height-6, 3)
		m.insights.SetContent(m.insightsContent())
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "tab":
			m.view = (m.view + 1) % viewCount
			if m.view == InsightsView {
				m.insights.SetContent(m.insightsContent())
			}
			return m, nil
		}

		switch m.view {
		case DeckView:
			return m.handleDeckKeys(msg)
		case InsightsView:
			return m.handleInsightsKeys(msg)
		case TableView:
			return m.handleTableKeys(msg)
		case SummaryView:
			return m.handleSummaryKeys(msg)
		}
	}

	return m, nil
}

func (m *Model) handleDeckKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "left", "h":
		m.deck.Remove()
	case "right", "l":
		m.deck.Keep()
	case "s":
		m.deck.Skip()
	case "u":
		m.deck.Undo()
	default:
		return m, nil
	}

	if m.deck.Done() {
		m.view = SummaryView
	}

	return m, nil
}

func (m *Model) handleInsightsKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "left", "h":
		m.page = (m.page + insightPages - 1) % insightPages
	case "right", "l":
		m.page = (m.page + 1) % insightPages
	default:
		var cmd tea.Cmd
		m.insights, cmd = m.insights.Update(msg)
		return m, cmd
	}

	m.insights.SetContent(m.insightsContent())
	m.insights.GotoTop()
	return m, nil
}

func (m *Model) handleTableKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "s":
		m.sortCol = nextSortColumn(m.sortCol)
		m.resortTable()
		return m, nil
	case "d":
		m.sortDesc = !m.sortDesc
		m.resortTable()
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// handleSummaryKeys lets the user step back into the deck; undo reopens the
// last decided card.
func (m *Model) handleSummaryKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "u" && m.deck.Undo() {
		m.view = DeckView
	}
	return m, nil
}
