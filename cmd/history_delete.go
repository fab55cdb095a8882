package cmd

import (
	hclog "github.com/hashicorp/go-hclog"
	"github.com/mitchellh/cli"
	"github.com/slackpad/media-organizer/core"
)

// HistoryDelete returns a CommandFactory for dropping a run from the journal.
func HistoryDelete(logger hclog.Logger) cli.CommandFactory {
	return func() (cli.Command, error) {
		return &historyDelete{
			logger: logger,
		}, nil
	}
}

type historyDelete struct {
	logger hclog.Logger
}

func (c *historyDelete) Synopsis() string {
	return "Delete a run from the journal"
}

func (c *historyDelete) Help() string {
	return `Usage: media-organizer history delete --journal <FILE> <runID>

Removes a run and its move records from the journal. The moved files are not
touched.
`
}

func (c *historyDelete) Run(args []string) int {
	var journalPath string
	fs := newFlagSet("history delete")
	fs.StringVar(&journalPath, "journal", "", "")
	if err := fs.Parse(args); err != nil {
		c.logger.Error("invalid arguments", "error", err)
		return cli.RunResultHelp
	}
	if journalPath == "" || fs.NArg() != 1 {
		c.logger.Error("history delete command takes --journal and a run ID")
		return cli.RunResultHelp
	}
	runID := fs.Arg(0)

	journal, err := core.OpenJournal(c.logger.Named("journal"), journalPath)
	if err != nil {
		c.logger.Error("failed to open journal", "error", err)
		return 1
	}
	defer journal.Close()

	if err := journal.DeleteRun(runID); err != nil {
		c.logger.Error("failed to delete run", "run", runID, "error", err)
		return 1
	}

	c.logger.Info("run deleted", "run", runID)
	return 0
}
