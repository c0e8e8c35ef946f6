// zelkey manages Zelana identities: 64-byte seeds from which the Ed25519
// signing key, the X25519 privacy key and the account id derive.
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/zelana-network/gzel/internal/flags"
)

const defaultKeyfileName = "identity.json"

// Git SHA1 commit hash of the release (set via linker flags).
var gitCommit = ""

var app *cli.App

func init() {
	app = flags.NewApp(gitCommit, "a Zelana identity manager")
	app.Name = "zelkey"
	app.Commands = []*cli.Command{
		commandGenerate,
		commandInspect,
	}
}

// Commonly used command line flags.
var (
	jsonFlag = &cli.BoolFlag{
		Name:  "json",
		Usage: "output JSON instead of human-readable format",
	}
)

func main() {
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
