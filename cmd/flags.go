package cmd

import (
	"flag"
	"io"

	"github.com/slackpad/media-organizer/core"
)

// configFlags are the options shared by every command that needs the full
// configuration. Short and long names map to the same value.
type configFlags struct {
	configFile          string
	noDefaultConfigFile bool
	dryRun              bool
	takeoutSidecars     bool
	overrides           core.ConfigOverrides
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func (f *configFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&f.configFile, "config-file", "", "")
	fs.StringVar(&f.configFile, "c", "", "")
	fs.BoolVar(&f.noDefaultConfigFile, "no-load-default-config-file", false, "")
	fs.StringVar(&f.overrides.MediaSrc, "media-src", "", "")
	fs.StringVar(&f.overrides.MediaSrc, "m", "", "")
	fs.StringVar(&f.overrides.PhotosDst, "photos-dst", "", "")
	fs.StringVar(&f.overrides.PhotosDst, "p", "", "")
	fs.StringVar(&f.overrides.VideosDst, "videos-dst", "", "")
	fs.StringVar(&f.overrides.VideosDst, "v", "", "")
	fs.StringVar(&f.overrides.Journal, "journal", "", "")
	fs.StringVar(&f.overrides.LogLevel, "log-level", "", "")
	fs.BoolVar(&f.dryRun, "dry-run", false, "")
	fs.BoolVar(&f.takeoutSidecars, "takeout-sidecars", false, "")
}

// load must be called after fs.Parse. Boolean flags only override the file
// when they were given explicitly, so --dry-run=false beats dry_run = true.
func (f *configFlags) load(fs *flag.FlagSet) (*core.Config, string, error) {
	fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "dry-run":
			f.overrides.DryRun = &f.dryRun
		case "takeout-sidecars":
			f.overrides.TakeoutSidecars = &f.takeoutSidecars
		}
	})
	return core.LoadConfig(f.configFile, !f.noDefaultConfigFile, f.overrides)
}

const configFlagsHelp = `
  -c, --config-file <FILE>       File to load configuration from. Defaults to
                                 media-organizer/config.toml in the user config
                                 directory, e.g. ~/.config on Linux.
  --no-load-default-config-file  Do not load the config file from the default
                                 location.
  -m, --media-src <DIRECTORY>    Source directory with media files to organize.
  -p, --photos-dst <DIRECTORY>   Directory where photos will be moved and organized.
  -v, --videos-dst <DIRECTORY>   Directory where videos will be moved and organized.
  --journal <FILE>               Record the run in this journal database.
  --log-level <LEVEL>            trace, debug, info, warn or error.
  --dry-run                      Report what would be moved without moving.
  --takeout-sidecars             Fall back to Google Takeout JSON sidecars for
                                 photos without a date.`
