package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cognicore/standoff/internal/cli"
	"github.com/cognicore/standoff/internal/logger"
	"github.com/cognicore/standoff/pkg/standoff"
	"github.com/cognicore/standoff/pkg/standoff/config"
)

func main() {
	os.Exit(cli.Execute(newRootCmd()))
}

func newRootCmd() *cobra.Command {
	var (
		cfgFile string
		dbPath  string
		verbose bool
	)

	cmd := &cobra.Command{
		Use:   "jnlpba2standoff TEXTFILE BIOFILE [TOKENIDX [BIOIDX]]",
		Short: "Convert BIO tagged tokens into standoff annotations over the original text",
		Example: "jnlpba2standoff 91173312.txt 91173312.conll > 91173312.ann\n" +
			"jnlpba2standoff doc.txt doc.tsv 0 4,5",
		Args: cli.RangeArgs(2, 4),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger.SetOutput(cmd.ErrOrStderr())
			logger.SetVerbose(verbose)
			log := logger.GetLogger()
			ctx := context.Background()

			loader := config.Loader{ConfigPath: cfgFile, DBPath: dbPath, Logger: log}
			comp, err := loader.Load(ctx)
			if err != nil {
				return err
			}
			defer comp.Close()

			tokenIdx, tagIndices, err := cli.Indices(comp, args[2:])
			if err != nil {
				return err
			}
			conv := standoff.NewConverter(standoff.Options{
				Rules:      comp.Rules,
				TokenIndex: tokenIdx,
				Store:      comp.Store,
				Logger:     log,
			})

			ref, err := standoff.ReadText(args[0])
			if err != nil {
				return err
			}
			bioData, err := standoff.ReadText(args[1])
			if err != nil {
				return err
			}

			run, err := conv.NewRun(ctx, args[1], tagIndices)
			if err != nil {
				return err
			}
			ents, err := conv.ConvertDocument(ctx, run, docID(args[0]), ref, bioData)
			if err != nil {
				return err
			}
			return standoff.WriteStandoff(cmd.OutOrStdout(), ents)
		},
	}

	cmd.Flags().StringVar(&cfgFile, "config", "", "YAML configuration file")
	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite database to record the annotations in")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log alignment diagnostics")

	return cmd
}

// docID names a document after its text file without the extension.
func docID(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
