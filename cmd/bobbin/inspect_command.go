package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"bobbin/internal/aafmodel"
)

const (
	ansiBold  = "\x1b[1m"
	ansiReset = "\x1b[0m"
)

func newInspectCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <container>",
		Short: "Summarize the mobs inside a container",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := aafmodel.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			out := cmd.OutOrStdout()
			writeHeading(out, args[0])

			rows := make([][]string, 0, len(f.Content.Mobs))
			for _, mob := range f.Content.Mobs {
				usage := ""
				if mob.TopLevel {
					usage = "top-level"
				}
				rows = append(rows, []string{
					mob.Kind.String(),
					mob.Name,
					strconv.Itoa(len(mob.Slots)),
					usage,
					string(mob.ID),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Kind", "Name", "Slots", "Usage", "Mob ID"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft, alignLeft},
			))

			fmt.Fprintf(out, "%d mobs, %d essence payloads, %d operation definitions\n",
				len(f.Content.Mobs), len(f.Content.Essence), len(f.Dictionary.Operations))
			return nil
		},
	}
	return cmd
}

func writeHeading(out io.Writer, path string) {
	line := "Container " + path
	if shouldColorize(out) {
		line = ansiBold + line + ansiReset
	}
	fmt.Fprintln(out, line)
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
