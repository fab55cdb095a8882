package cmd

import (
	"fmt"

	hclog "github.com/hashicorp/go-hclog"
	"github.com/mitchellh/cli"
	"github.com/slackpad/media-organizer/core"
)

// ConfigInit returns a CommandFactory for writing a sample configuration file.
func ConfigInit(logger hclog.Logger) cli.CommandFactory {
	return func() (cli.Command, error) {
		return &configInit{
			logger: logger,
		}, nil
	}
}

type configInit struct {
	logger hclog.Logger
}

func (c *configInit) Synopsis() string {
	return "Write a sample configuration file"
}

func (c *configInit) Help() string {
	return `Usage: media-organizer config init [path]

Writes a commented sample configuration file. Without a path the file goes to
the default location that organize reads from. An existing file is never
overwritten.
`
}

func (c *configInit) Run(args []string) int {
	if len(args) > 1 {
		c.logger.Error("config init command takes at most one argument")
		return cli.RunResultHelp
	}

	var path string
	if len(args) == 1 {
		expanded, err := core.ExpandPath(args[0])
		if err != nil {
			c.logger.Error("invalid path", "path", args[0], "error", err)
			return 1
		}
		path = expanded
	} else {
		defaultPath, err := core.DefaultConfigPath()
		if err != nil {
			c.logger.Error("failed to locate default config file", "error", err)
			return 1
		}
		path = defaultPath
	}

	if err := core.CreateSampleConfig(path); err != nil {
		c.logger.Error("failed to write sample config", "error", err)
		return 1
	}

	fmt.Printf("Sample configuration written to %s\n", path)
	return 0
}
