package cmd

import (
	"os"

	hclog "github.com/hashicorp/go-hclog"
	"github.com/mitchellh/cli"
	"github.com/slackpad/media-organizer/core"
)

// Inspect returns a CommandFactory for showing how files would be organized.
func Inspect(logger hclog.Logger) cli.CommandFactory {
	return func() (cli.Command, error) {
		return &inspect{
			logger: logger,
		}, nil
	}
}

type inspect struct {
	logger hclog.Logger
}

func (c *inspect) Synopsis() string {
	return "Show the kind, date and destination of files"
}

func (c *inspect) Help() string {
	return `Usage: media-organizer inspect [--takeout-sidecars] <file>...

Classifies each file, resolves its date and prints the path it would get
relative to its destination root. Nothing is moved and no configuration is
needed.

Example:
  media-organizer inspect IMG-20200407-WA0004.jpg 20200829_205420.mp4
`
}

func (c *inspect) Run(args []string) int {
	var takeoutSidecars bool
	fs := newFlagSet("inspect")
	fs.BoolVar(&takeoutSidecars, "takeout-sidecars", false, "")
	if err := fs.Parse(args); err != nil {
		c.logger.Error("invalid arguments", "error", err)
		return cli.RunResultHelp
	}
	if fs.NArg() == 0 {
		c.logger.Error("inspect command needs at least one file")
		return cli.RunResultHelp
	}

	org := core.NewOrganizer(c.logger.Named("organizer"), core.Options{
		TakeoutSidecars: takeoutSidecars,
	})

	status := 0
	var outcomes []core.Outcome
	for _, path := range fs.Args() {
		info, err := os.Stat(path)
		if err != nil {
			c.logger.Error("failed to read file", "path", path, "error", err)
			status = 1
			continue
		}
		if !info.Mode().IsRegular() {
			c.logger.Error("not a regular file", "path", path)
			status = 1
			continue
		}

		out := org.Inspect(core.NewFileEntry(path))
		if out.Status == core.StatusFailed {
			status = 1
		}
		outcomes = append(outcomes, out)
	}

	if len(outcomes) > 0 {
		core.PrintOutcomes(os.Stdout, outcomes)
	}
	return status
}
