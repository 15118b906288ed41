// Package review implements the artist review flow: a [Deck] of cards the
// operator swipes through, and a versioned progress file that lets a
// half-finished review resume later. The progress file embeds the scan
// snapshot, so a review session is self-contained.
package review
