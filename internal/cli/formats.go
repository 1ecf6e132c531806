package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lk2023060901/garden-serde/application"
)

func formatsCmd(app *application.Application) *cobra.Command {
	return &cobra.Command{
		Use:   "formats",
		Short: "List supported content types and their aliases",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			formats := app.Mapper().Formats()
			def := app.Mapper().ContentType("")
			for _, ct := range formats.ContentTypes() {
				f, err := formats.Get(ct)
				if err != nil {
					return err
				}
				marker := " "
				if ct == def {
					marker = "*"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %-24s %s\n", marker, ct, strings.Join(f.Aliases(), ", "))
			}
			return nil
		},
	}
}
