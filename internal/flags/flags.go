// Package flags holds the shared urfave/cli plumbing of the gzel commands.
package flags

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

// Flag categories used in help output.
const (
	SequencerCategory = "SEQUENCER"
	BatchCategory     = "BATCHING"
	LoggingCategory   = "LOGGING AND DEBUGGING"
	MiscCategory      = "MISC"
)

func init() {
	cli.HelpFlag.(*cli.BoolFlag).Category = MiscCategory
	cli.VersionFlag.(*cli.BoolFlag).Category = MiscCategory
}

// NewApp creates an app with sane defaults.
func NewApp(gitCommit, usage string) *cli.App {
	app := cli.NewApp()
	app.EnableBashCompletion = true
	app.Version = "1.0.0"
	if gitCommit != "" {
		app.Version += "-" + gitCommit[:8]
	}
	app.Usage = usage
	app.Copyright = "Copyright 2024 The gzel Authors"
	return app
}

// Fatalf formats a message to standard error and exits the program.
func Fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Fatal: "+format+"\n", args...)
	os.Exit(1)
}
