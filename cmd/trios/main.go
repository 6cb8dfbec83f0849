// Command trios boots a teaching kernel: three virtual terminals sharing
// one round-robin scheduler, process table, and read-only filesystem.
package main

import (
	"context"
	"os"

	"github.com/nrolfe/trios/internal/cli"
	"github.com/nrolfe/trios/internal/cli/cmd"
)

var commands = []cli.Command{
	cmd.Run(),
	cmd.Image(),
	cmd.Demo(),
}

func main() {
	result :=
		cli.New(context.Background()).
			WithLogger(os.Stderr).
			WithCommands(commands).
			WithHelp(cmd.Help(commands)).
			Execute(os.Args[1:])

	os.Exit(result)
}
