package main

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/cognicore/standoff/internal/cli"
	"github.com/cognicore/standoff/internal/logger"
	"github.com/cognicore/standoff/pkg/standoff/config"
	"github.com/cognicore/standoff/pkg/standoff/split"
)

func main() {
	os.Exit(cli.Execute(newRootCmd()))
}

func newRootCmd() *cobra.Command {
	var (
		cfgFile string
		suffix  string
		dir     string
		mkdir   bool
		verbose bool
	)

	cmd := &cobra.Command{
		Use:     "jnlpbasplit [-s SUFFIX] [-d DIR] [-v] DATAFILE",
		Short:   "Split JNLPBA corpus data into a single document per file",
		Example: "jnlpbasplit -d train/ Genia4ERtask2.iob2",
		Args:    cli.RangeArgs(1, 1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger.SetOutput(cmd.ErrOrStderr())
			logger.SetVerbose(verbose)
			log := logger.GetLogger()

			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("suffix") {
				suffix = cfg.Split.Suffix
			}
			if !cmd.Flags().Changed("directory") {
				dir = cfg.Split.Directory
			}
			if suffix == "" || dir == "" {
				return cli.Usagef("suffix and directory must not be empty")
			}

			if mkdir {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return err
				}
			}

			splitter := split.New(dir, suffix, log)
			n, err := splitter.SplitFile(args[0])
			if err != nil {
				return err
			}

			if verbose {
				fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s documents to %s\n", humanize.Comma(int64(n)), dir)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&cfgFile, "config", "", "YAML configuration file")
	cmd.Flags().StringVarP(&suffix, "suffix", "s", split.DefaultSuffix, "output file suffix")
	cmd.Flags().StringVarP(&dir, "directory", "d", split.DefaultDir, "output directory")
	cmd.Flags().BoolVar(&mkdir, "mkdir", false, "create the output directory if missing")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	return cmd
}
