package main

import (
	"os"

	hclog "github.com/hashicorp/go-hclog"
	"github.com/mitchellh/cli"
	orgcmd "github.com/slackpad/media-organizer/cmd"
)

var appName = "media-organizer"
var appVersion = "0.1.0"

func main() {
	logger := hclog.New(&hclog.LoggerOptions{
		Name:  appName,
		Level: hclog.LevelFromString("INFO"),
	})

	c := cli.NewCLI(appName, appVersion)
	c.Args = os.Args[1:]
	c.Commands = map[string]cli.CommandFactory{
		"organize":       orgcmd.Organize(logger),
		"inspect":        orgcmd.Inspect(logger),
		"history":        orgcmd.History(logger),
		"history delete": orgcmd.HistoryDelete(logger),
		"config init":    orgcmd.ConfigInit(logger),
	}

	exitStatus, err := c.Run()
	if err != nil {
		logger.Error(err.Error())
	}

	os.Exit(exitStatus)
}
