package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/cognicore/standoff/internal/cli"
	"github.com/cognicore/standoff/internal/logger"
	"github.com/cognicore/standoff/pkg/standoff"
	"github.com/cognicore/standoff/pkg/standoff/config"
	"github.com/cognicore/standoff/pkg/standoff/store"
)

func main() {
	os.Exit(cli.Execute(newRootCmd()))
}

type batchOptions struct {
	cfgFile   string
	dbPath    string
	keepGoing bool
	resetIDs  bool
	verbose   bool
}

func newRootCmd() *cobra.Command {
	var opts batchOptions

	cmd := &cobra.Command{
		Use:     "standoff-batch DIR [TOKENIDX [BIOIDX]]",
		Short:   "Convert every BIO file of a directory into a standoff annotation file",
		Example: "standoff-batch --reset-ids --db annotations.db JNLPBA/",
		Args:    cli.RangeArgs(1, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger.SetOutput(cmd.ErrOrStderr())
			logger.SetVerbose(opts.verbose)
			return runBatch(cmd, opts, args)
		},
	}

	cmd.Flags().StringVar(&opts.cfgFile, "config", "", "YAML configuration file")
	cmd.Flags().StringVar(&opts.dbPath, "db", "", "SQLite database to record the annotations in")
	cmd.Flags().BoolVar(&opts.keepGoing, "keep-going", false, "report failing documents and continue")
	cmd.Flags().BoolVar(&opts.resetIDs, "reset-ids", false, "restart entity ids at 1 for every document")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "log alignment diagnostics")

	return cmd
}

type summary struct {
	documents int
	failed    int
	entities  int
}

func runBatch(cmd *cobra.Command, opts batchOptions, args []string) error {
	log := logger.GetLogger()
	ctx := context.Background()
	dir := args[0]

	loader := config.Loader{ConfigPath: opts.cfgFile, DBPath: opts.dbPath, Logger: log}
	comp, err := loader.Load(ctx)
	if err != nil {
		return err
	}
	defer comp.Close()
	cfg := comp.Config

	tokenIdx, tagIndices, err := cli.Indices(comp, args[1:])
	if err != nil {
		return err
	}
	resetIDs := opts.resetIDs || cfg.ID.ResetPerDocument

	ids, err := documentIDs(dir, cfg.Batch.BioSuffix)
	if err != nil {
		return err
	}

	conv := standoff.NewConverter(standoff.Options{
		Rules:      comp.Rules,
		TokenIndex: tokenIdx,
		Store:      comp.Store,
		Logger:     log,
	})

	run, err := conv.NewRun(ctx, dir, tagIndices)
	if err != nil {
		return err
	}

	var sum summary
	for _, id := range ids {
		if resetIDs {
			conv.Counter().Reset()
		}
		n, err := convertOne(ctx, conv, run, dir, id, cfg.Batch)
		if err != nil {
			if !opts.keepGoing {
				return err
			}
			log.WithField("document", id).Errorf("Conversion failed: %v", err)
			sum.failed++
			continue
		}
		log.WithField("document", id).Debugf("Wrote %d entities", n)
		sum.documents++
		sum.entities += n
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "Converted %s documents (%s entities) in run %s\n",
		humanize.Comma(int64(sum.documents)), humanize.Comma(int64(sum.entities)), run.ID)
	if sum.failed > 0 {
		return errors.Errorf("%s of %s documents failed",
			humanize.Comma(int64(sum.failed)), humanize.Comma(int64(len(ids))))
	}
	return nil
}

// documentIDs lists the ids of the <id>.<bioSuffix> files of dir in sorted
// order.
func documentIDs(dir, bioSuffix string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "read directory %s", dir)
	}
	ext := "." + bioSuffix

	files := lo.Filter(entries, func(e os.DirEntry, _ int) bool {
		return !e.IsDir() && strings.HasSuffix(e.Name(), ext) && len(e.Name()) > len(ext)
	})
	return lo.Map(files, func(e os.DirEntry, _ int) string {
		return strings.TrimSuffix(e.Name(), ext)
	}), nil
}

func convertOne(ctx context.Context, conv *standoff.Converter, run store.Run, dir, id string, b config.Batch) (int, error) {
	textPath := filepath.Join(dir, id+"."+b.TextSuffix)
	if _, err := os.Stat(textPath); err != nil {
		return 0, errors.Wrapf(err, "reference text for %s", id)
	}

	ref, err := standoff.ReadText(textPath)
	if err != nil {
		return 0, err
	}
	bioData, err := standoff.ReadText(filepath.Join(dir, id+"."+b.BioSuffix))
	if err != nil {
		return 0, err
	}

	ents, err := conv.ConvertDocument(ctx, run, id, ref, bioData)
	if err != nil {
		return 0, err
	}

	annPath := filepath.Join(dir, id+"."+b.AnnSuffix)
	f, err := os.Create(annPath)
	if err != nil {
		return 0, errors.Wrapf(err, "create %s", annPath)
	}
	if err := standoff.WriteStandoff(f, ents); err != nil {
		f.Close()
		return 0, errors.Wrapf(err, "write %s", annPath)
	}
	return len(ents), f.Close()
}
