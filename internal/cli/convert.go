package cli

import (
	"io"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lk2023060901/garden-serde/application"
	"github.com/lk2023060901/garden-serde/pkg/log"
)

func convertCmd(app *application.Application) *cobra.Command {
	var (
		from, to    string
		input       string
		showMetrics bool
	)

	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Re-encode a document from one format to another",
		Example: "  serdectl convert --from json --to yaml < range.json\n" +
			"  serdectl convert -f yaml -t cbor -i range.yaml > range.cbor",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			in := cmd.InOrStdin()
			if input != "" && input != "-" {
				f, err := os.Open(input)
				if err != nil {
					return errors.Wrap(err, "open input")
				}
				defer f.Close()
				in = f
			}
			data, err := io.ReadAll(in)
			if err != nil {
				return errors.Wrap(err, "read input")
			}

			m := app.Mapper()
			out, err := m.Convert(data, from, to)
			if err != nil {
				return err
			}
			app.Logger().Debug("document converted",
				log.FieldContentType(m.ContentType(to)),
				zap.String("from", m.ContentType(from)),
				zap.Int("inBytes", len(data)),
				zap.Int("outBytes", len(out)))

			if _, err := cmd.OutOrStdout().Write(out); err != nil {
				return errors.Wrap(err, "write output")
			}
			if showMetrics {
				return writeMetrics(cmd.ErrOrStderr(), app)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&from, "from", "f", "json", "input content type or alias")
	cmd.Flags().StringVarP(&to, "to", "t", "", "output content type or alias (defaults to the configured one)")
	cmd.Flags().StringVarP(&input, "in", "i", "", "input file (defaults to stdin)")
	cmd.Flags().BoolVar(&showMetrics, "metrics", false, "print collected metrics to stderr")
	return cmd
}

func writeMetrics(w io.Writer, app *application.Application) error {
	families, err := app.Gatherer().Gather()
	if err != nil {
		return errors.Wrap(err, "gather metrics")
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return errors.Wrap(err, "write metrics")
		}
	}
	return nil
}
