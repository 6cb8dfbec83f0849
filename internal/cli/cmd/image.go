package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/nrolfe/trios/internal/cli"
	"github.com/nrolfe/trios/internal/log"
	"github.com/nrolfe/trios/internal/monitor"
)

// Image is the command that writes the bundled demo filesystem image to
// disk, for inspection or for passing to "run -image".
//
//	trios image -o trios.img
func Image() cli.Command {
	return new(image)
}

type image struct {
	output string
}

func (image) Description() string {
	return "write the bundled demo filesystem image"
}

func (image) Usage(out io.Writer) error {
	_, err := fmt.Fprintln(out, `image [-o file]

Writes the bundled demo filesystem image, containing one dentry per
builtin program and an RTC device node, to file.`)

	return err
}

func (i *image) FlagSet() *cli.FlagSet {
	fs := flag.NewFlagSet("image", flag.ExitOnError)
	fs.StringVar(&i.output, "o", "trios.img", "output `filename`")

	return fs
}

func (i *image) Run(ctx context.Context, args []string, stdout io.Writer, logger *log.Logger) int {
	if err := os.WriteFile(i.output, monitor.DefaultImage(), 0o644); err != nil {
		logger.Error("writing image", "out", i.output, "err", err)
		return 1
	}

	logger.Info("wrote image", "out", i.output)

	return 0
}
