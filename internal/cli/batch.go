package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lk2023060901/garden-serde/application"
	"github.com/lk2023060901/garden-serde/pkg/serde/format"
	"github.com/lk2023060901/garden-serde/pkg/util/conc"
	"github.com/lk2023060901/garden-serde/pkg/util/merr"
)

// extensions maps a canonical content type to the file extension used for
// converted output.
var extensions = map[string]string{
	format.ContentTypeJSON:     ".json",
	format.ContentTypeYAML:     ".yaml",
	format.ContentTypeCBOR:     ".cbor",
	format.ContentTypeProtobuf: ".pb",
}

func batchCmd(app *application.Application) *cobra.Command {
	var (
		from, to string
		outDir   string
		workers  int
	)

	cmd := &cobra.Command{
		Use:     "batch FILE...",
		Short:   "Convert many files concurrently into an output directory",
		Example: "  serdectl batch -f json -t yaml -o out/ a.json b.json",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, files []string) error {
			m := app.Mapper()
			target := m.ContentType(to)
			ext, ok := extensions[target]
			if !ok {
				return errors.Newf("no file extension for content type %q", target)
			}
			targets, err := outputPaths(files, outDir, ext)
			if err != nil {
				return err
			}
			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return errors.Wrap(err, "create output directory")
			}

			pool := conc.NewPool[string](workers, conc.WithConcealPanic(true))
			defer pool.Release()

			futures := make([]*conc.Future[string], 0, len(files))
			for i, file := range files {
				dst := targets[i]
				futures = append(futures, pool.Submit(func() (string, error) {
					data, err := os.ReadFile(file)
					if err != nil {
						return "", errors.Wrapf(err, "read %s", file)
					}
					out, err := m.Convert(data, from, target)
					if err != nil {
						return "", errors.Wrapf(err, "convert %s", file)
					}
					if err := os.WriteFile(dst, out, 0o644); err != nil {
						return "", errors.Wrapf(err, "write %s", dst)
					}
					return dst, nil
				}))
			}

			failed := 0
			for i, f := range futures {
				dst, err := f.Await()
				if err != nil {
					failed++
					app.Logger().Warn("batch conversion failed", zap.String("file", files[i]), zap.Error(err))
					fmt.Fprintf(cmd.ErrOrStderr(), "FAIL %s: %v\n", files[i], err)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s\n", files[i], dst)
			}
			if failed > 0 {
				return errors.Newf("%d of %d conversions failed", failed, len(files))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&from, "from", "f", "json", "input content type or alias")
	cmd.Flags().StringVarP(&to, "to", "t", "", "output content type or alias (defaults to the configured one)")
	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "output directory")
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "number of concurrent conversions (defaults to GOMAXPROCS)")
	return cmd
}

// outputPaths names the converted file of every input. Two inputs that would
// write the same output are rejected before any conversion starts.
func outputPaths(files []string, outDir, ext string) ([]string, error) {
	paths := make([]string, len(files))
	owners := make(map[string]string, len(files))
	for i, file := range files {
		base := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
		dst := filepath.Join(outDir, base+ext)
		if prev, ok := owners[dst]; ok {
			return nil, merr.WrapErrParameterInvalidMsg("%s and %s both convert to %s", prev, file, dst)
		}
		owners[dst] = file
		paths[i] = dst
	}
	return paths, nil
}
