package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/sift/internal/models"
	"github.com/desertthunder/sift/internal/review"
	"github.com/desertthunder/sift/internal/shared"
	"github.com/desertthunder/sift/internal/stats"
	"github.com/desertthunder/sift/internal/ui"
	"github.com/urfave/cli/v3"
)

// Review launches the interactive deck over the latest snapshot, or resumes
// a saved session from a progress file.
func (r *Runner) Review(ctx context.Context, cmd *cli.Command) error {
	r.applyVerbosity(cmd)
	if err := r.reloadConfig(cmd); err != nil {
		return err
	}

	resumePath := cmd.String("resume")
	progressPath := cmd.String("progress")
	if progressPath == "" {
		if resumePath != "" {
			progressPath = resumePath
		} else {
			progressPath = "sift_review.json"
		}
	}

	var (
		snapshot *stats.Snapshot
		deck     *review.Deck
		scanID   string
	)

	if resumePath != "" {
		progress, err := review.LoadProgress(resumePath)
		if err != nil {
			return err
		}

		snapshot = progress.Snapshot
		deck = progress.RestoreDeck()
		r.writePlain("Resuming review from %s\n", resumePath)
	} else {
		var (
			scan *models.Scan
			err  error
		)

		snapshot, scan, err = r.resolveSnapshot(cmd.String("input"), cmd.String("scan"))
		if err != nil {
			return err
		}
		if scan != nil {
			scanID = scan.ID()
		}

		deck = review.NewDeck(snapshot)
	}

	if deck.Size() == 0 {
		r.writePlain("Nothing to review: the snapshot has no artists.\n")
		return nil
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/sift-review.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	prev := r.SetLogger(fileLogger)
	defer r.SetLogger(prev)

	model := ui.NewModel(snapshot, deck)
	p := tea.NewProgram(model)

	finalModel, err := p.Run()
	if err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	if m, ok := finalModel.(*ui.Model); ok {
		deck = m.Deck()
	}

	return r.saveReview(snapshot, deck, scanID, progressPath)
}

// saveReview persists the deck's verdicts against the scan they belong to
// and writes the progress file. A resumed session carries no scan id, so
// decisions attach to the newest stored scan when one exists.
func (r *Runner) saveReview(snapshot *stats.Snapshot, deck *review.Deck, scanID, progressPath string) error {
	if scanID == "" {
		if _, err := r.database(); err == nil {
			if scan, err := r.scans.GetLatest(); err == nil && scan != nil {
				scanID = scan.ID()
			}
		}
	}

	decisions := deck.Decisions()

	if scanID != "" && len(decisions) > 0 {
		if _, err := r.database(); err != nil {
			return err
		}

		records := make([]*models.Decision, 0, len(decisions))
		for _, d := range decisions {
			records = append(records, models.NewDecision(0, scanID, d.ArtistID, d.ArtistName, d.Verdict))
		}

		if err := r.decisions.ReplaceForScan(scanID, records); err != nil {
			return fmt.Errorf("failed to store decisions: %w", err)
		}
	}

	if err := review.SaveProgress(progressPath, review.NewProgress(snapshot, deck)); err != nil {
		return err
	}

	kept, removed := deck.Counts()
	r.writePlainln("Reviewed %d of %d artists (kept %d, removed %d)", len(decisions), deck.Size(), kept, removed)
	r.writePlain("✓ Progress saved to %s\n", progressPath)

	return nil
}

// reviewCommand handles the interactive review deck.
func reviewCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "review",
		Usage: "Review your artists card by card",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "resume",
				Usage: "Resume a saved session from a progress file",
			},
			&cli.StringFlag{
				Name:  "progress",
				Usage: "Where to save review progress (default: sift_review.json)",
			},
			&cli.StringFlag{
				Name:  "scan",
				Usage: "Scan ID to review (default: latest)",
			},
			&cli.StringFlag{
				Name:    "input",
				Aliases: []string{"i"},
				Usage:   "Read the snapshot from an exported JSON file",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Enable debug logging",
			},
		},
		Action: r.Review,
	}
}
