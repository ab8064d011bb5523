package completion_helper

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"
)

// DefaultFlagComplete prints the subcommands and flags of cmd, one per line, for
// shell completion.
func DefaultFlagComplete(_ context.Context, cmd *cli.Command) {
	writeCompletions(completionWriter(cmd), cmd)
}

func completionWriter(cmd *cli.Command) io.Writer {
	if root := cmd.Root(); root != nil && root.Writer != nil {
		return root.Writer
	}
	return os.Stdout
}

func writeCompletions(w io.Writer, cmd *cli.Command) {
	for _, sub := range cmd.Commands {
		if !sub.Hidden {
			fmt.Fprintln(w, sub.Name)
		}
	}
	for _, f := range cmd.Flags {
		for _, name := range f.Names() {
			if len(name) == 1 {
				fmt.Fprintln(w, "-"+name)
			} else {
				fmt.Fprintln(w, "--"+name)
			}
		}
	}
}
