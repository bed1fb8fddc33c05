/*
Package app contains the neotx CLI application.
*/
package app

import (
	"fmt"
	"os"
	"runtime"

	"github.com/nspcc-dev/neotx/cli/query"
	"github.com/nspcc-dev/neotx/cli/util"
	"github.com/nspcc-dev/neotx/cli/wallet"
	"github.com/nspcc-dev/neotx/pkg/config"
	"github.com/urfave/cli"
)

func versionPrinter(c *cli.Context) {
	_, _ = fmt.Fprintf(c.App.Writer, "NeoTx\nVersion: %s\nGoVersion: %s\n",
		config.Version,
		runtime.Version(),
	)
}

// New creates a neotx instance of [cli.App] with all commands included.
func New() *cli.App {
	cli.VersionPrinter = versionPrinter
	ctl := cli.NewApp()
	ctl.Name = "neotx"
	ctl.Version = config.Version
	ctl.Usage = "Neo N3 transaction builder, validator and sender"
	ctl.ErrWriter = os.Stdout

	ctl.Commands = append(ctl.Commands, wallet.NewCommands()...)
	ctl.Commands = append(ctl.Commands, query.NewCommands()...)
	ctl.Commands = append(ctl.Commands, util.NewCommands()...)
	return ctl
}
