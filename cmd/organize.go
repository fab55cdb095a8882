package cmd

import (
	"context"
	"os"
	"os/signal"

	hclog "github.com/hashicorp/go-hclog"
	"github.com/mattn/go-isatty"
	"github.com/mitchellh/cli"
	"github.com/slackpad/media-organizer/core"
)

// Organize returns a CommandFactory for moving media into the destination trees.
func Organize(logger hclog.Logger) cli.CommandFactory {
	return func() (cli.Command, error) {
		return &organize{
			logger: logger,
		}, nil
	}
}

type organize struct {
	logger hclog.Logger
}

func (c *organize) Synopsis() string {
	return "Move photos and videos into dated folders"
}

func (c *organize) Help() string {
	return `Usage: media-organizer organize [options]

Recursively scans the media source and moves every supported file into its
destination tree:

  photos (.jpg, .jpeg, .JPG): <photos_dst>/<year>/<MM> - <Month>/<name>
  videos (.mp4):              <videos_dst>/<year>/<name>

Photos are dated from their EXIF DateTimeOriginal, falling back to names like
IMG-20200407-WA0004.jpg or IMG_20200407_123456.jpg. Videos are dated from
names like 20200829_205420.mp4 or VID-20200829-WA0001.mp4.

Files that can't be dated, or whose destination already exists, are reported
and left in place. The command exits with status 1 if any file failed.

Options:
` + configFlagsHelp + `
  --no-progress                  Don't show a progress bar.

Example:
  media-organizer organize -m ~/Incoming -p ~/Photos -v ~/Videos --dry-run
`
}

func (c *organize) Run(args []string) int {
	var flags configFlags
	var noProgress bool
	fs := newFlagSet("organize")
	flags.register(fs)
	fs.BoolVar(&noProgress, "no-progress", false, "")
	if err := fs.Parse(args); err != nil {
		c.logger.Error("invalid arguments", "error", err)
		return cli.RunResultHelp
	}
	if fs.NArg() != 0 {
		c.logger.Error("organize command takes no positional arguments")
		return cli.RunResultHelp
	}

	cfg, file, err := flags.load(fs)
	if err != nil {
		c.logger.Error("failed to load configuration", "error", err)
		return 1
	}
	c.logger.SetLevel(hclog.LevelFromString(cfg.LogLevel))
	if file != "" {
		c.logger.Debug("loaded config file", "path", file)
	}

	c.logger.Info("media source", "path", cfg.MediaSrc)
	if cfg.PhotosDst != "" {
		c.logger.Info("photo organizer enabled", "destination", cfg.PhotosDst)
	}
	if cfg.VideosDst != "" {
		c.logger.Info("video organizer enabled", "destination", cfg.VideosDst)
	}
	if cfg.DryRun {
		c.logger.Info("dry run, no files will be moved")
	}

	var journal *core.Journal
	if cfg.Journal != "" {
		journal, err = core.OpenJournal(c.logger.Named("journal"), cfg.Journal)
		if err != nil {
			c.logger.Error("failed to open journal", "error", err)
			return 1
		}
		defer journal.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	opts := core.Options{
		MediaSrc:        cfg.MediaSrc,
		PhotosDst:       cfg.PhotosDst,
		VideosDst:       cfg.VideosDst,
		DryRun:          cfg.DryRun,
		TakeoutSidecars: cfg.TakeoutSidecars,
		Progress:        !noProgress && isTerminal(os.Stderr),
	}
	if journal != nil {
		var runID string
		opts.OnStart = func(r *core.Report) error {
			runID = r.RunID
			return journal.BeginRun(r)
		}
		opts.OnOutcome = func(o core.Outcome) {
			if err := journal.RecordMove(runID, o); err != nil {
				c.logger.Warn("failed to record move in journal", "path", o.Source, "error", err)
			}
		}
	}

	report, err := core.NewOrganizer(c.logger.Named("organizer"), opts).Run(ctx)
	if journal != nil {
		if jerr := journal.FinishRun(report); jerr != nil {
			c.logger.Warn("failed to finish run in journal", "run", report.RunID, "error", jerr)
		}
	}
	core.PrintReport(os.Stdout, report)

	if err != nil {
		c.logger.Error("organize stopped early", "error", err)
		return 1
	}
	if report.Summary.Failed > 0 {
		c.logger.Error("some files could not be organized", "failed", report.Summary.Failed)
		return 1
	}
	return 0
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
