// Package ui implements the interactive review deck using bubbletea's Elm architecture.
//
// The TUI provides four views over one scan snapshot:
//  1. [DeckView] : Swipe through artists card by card (left removes, right keeps)
//  2. [InsightsView] : Page through the top-5 rankings with percentage bars
//  3. [TableView] : Browse the full artist table, sortable by column
//  4. [SummaryView] : Totals of kept, removed, and skipped artists
//
// The [Model] implements bubbletea's standard Init/Update/View pattern over a
// review deck; tab cycles the views, and the deck jumps to the summary once
// the last card is decided.
//
// The model performs no IO. Callers read the deck back after the program
// exits and persist decisions and the progress file themselves, so a resumed
// session is just a restored deck passed to [NewModel].
//
// Keyboard navigation uses vim-style bindings (h/l, j/k, s, u, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
