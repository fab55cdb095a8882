package cmd

import (
	"fmt"
	"os"
	"time"

	hclog "github.com/hashicorp/go-hclog"
	"github.com/mitchellh/cli"
	"github.com/ryanuber/columnize"
	"github.com/slackpad/media-organizer/core"
)

// History returns a CommandFactory for listing journaled runs.
func History(logger hclog.Logger) cli.CommandFactory {
	return func() (cli.Command, error) {
		return &history{
			logger: logger,
		}, nil
	}
}

type history struct {
	logger hclog.Logger
}

func (c *history) Synopsis() string {
	return "List recorded runs or the files moved by one run"
}

func (c *history) Help() string {
	return `Usage: media-organizer history --journal <FILE> [runID]

Without a run ID, lists every run recorded in the journal. With a run ID,
lists the files that run moved and where they went.

Example:
  media-organizer history --journal ~/.local/share/media-organizer/journal.db
`
}

func (c *history) Run(args []string) int {
	var journalPath string
	fs := newFlagSet("history")
	fs.StringVar(&journalPath, "journal", "", "")
	if err := fs.Parse(args); err != nil {
		c.logger.Error("invalid arguments", "error", err)
		return cli.RunResultHelp
	}
	if journalPath == "" || fs.NArg() > 1 {
		c.logger.Error("history command takes --journal and an optional run ID")
		return cli.RunResultHelp
	}

	journal, err := core.OpenJournalReadOnly(c.logger.Named("journal"), journalPath)
	if err != nil {
		c.logger.Error("failed to open journal", "error", err)
		return 1
	}
	defer journal.Close()

	if fs.NArg() == 1 {
		return c.listMoves(journal, fs.Arg(0))
	}
	return c.listRuns(journal)
}

func (c *history) listRuns(journal *core.Journal) int {
	runs, err := journal.Runs()
	if err != nil {
		c.logger.Error("failed to list runs", "error", err)
		return 1
	}

	rows := []string{"Run|Started|Source|Dry Run|Moved|Skipped|Failed"}
	for _, r := range runs {
		rows = append(rows, fmt.Sprintf("%s|%s|%s|%t|%d|%d|%d",
			r.ID, r.StartedAt.Local().Format(time.DateTime), r.MediaSrc, r.DryRun,
			r.Summary.Moved, r.Summary.Skipped, r.Summary.Failed))
	}
	fmt.Fprintln(os.Stdout, columnize.SimpleFormat(rows))
	return 0
}

func (c *history) listMoves(journal *core.Journal, runID string) int {
	moves, err := journal.Moves(runID)
	if err != nil {
		c.logger.Error("failed to list moves", "run", runID, "error", err)
		return 1
	}

	rows := []string{"Source|Destination|Date|Dated By"}
	for _, m := range moves {
		rows = append(rows, fmt.Sprintf("%s|%s|%s|%s", m.Source, m.Destination, m.Date, m.DateSource))
	}
	fmt.Fprintln(os.Stdout, columnize.SimpleFormat(rows))
	return 0
}
