package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/inodb/vibe-cava/internal/cache"
	"github.com/inodb/vibe-cava/internal/duckdb"
)

func newIndexCmd() *cobra.Command {
	var (
		outputPath string
		force      bool
	)

	cmd := &cobra.Command{
		Use:   "index [flags] <transcripts.txt[.gz]>",
		Short: "Convert a transcript database to a DuckDB index",
		Long: `Convert a tab-separated transcript database (plain, gzipped or bgzipped)
to a DuckDB index for positional lookups. The index records the size and
modification time of its source and is only rebuilt when the source changes.`,
		Example: `  vibe-cava index ensembl75.txt.gz                 # writes ensembl75.duckdb
  vibe-cava index -o transcripts.duckdb ensembl75.txt.gz
  vibe-cava index --force -o transcripts.duckdb ensembl75.txt.gz`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIndex(cmd.OutOrStdout(), args[0], outputPath, force)
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output DuckDB file (default: input name with .duckdb)")
	cmd.Flags().BoolVar(&force, "force", false, "Rebuild even if the index is up to date")

	return cmd
}

// indexPath derives the default index file name from a database path.
func indexPath(input string) string {
	base := strings.TrimSuffix(input, ".gz")
	base = strings.TrimSuffix(base, ".bgz")
	base = strings.TrimSuffix(base, ".txt")
	return base + ".duckdb"
}

func runIndex(w io.Writer, input, outputPath string, force bool) error {
	logger, err := newLogger(viper.GetBool("verbose"))
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer logger.Sync()

	if outputPath == "" {
		outputPath = indexPath(input)
	}

	fp, err := duckdb.StatFile(input)
	if err != nil {
		return fmt.Errorf("stat transcript database: %w", err)
	}

	store, err := duckdb.Open(outputPath)
	if err != nil {
		return err
	}
	defer store.Close()

	if !force && store.IsCurrent(duckdb.SourceTranscripts, fp) {
		fmt.Fprintf(w, "Index %s is up to date\n", outputPath)
		return nil
	}

	idx, err := cache.LoadIndexFile(input)
	if err != nil {
		return err
	}
	if err := store.ImportTranscripts(idx.Records()); err != nil {
		return fmt.Errorf("import transcripts: %w", err)
	}
	if err := store.SetSource(duckdb.SourceTranscripts, fp); err != nil {
		return err
	}

	logger.Info("indexed transcripts",
		zap.String("input", input),
		zap.String("output", outputPath),
		zap.Int("transcripts", idx.Len()),
		zap.Int("contigs", len(idx.Contigs())))
	fmt.Fprintf(w, "Indexed %d transcripts on %d contigs into %s\n", idx.Len(), len(idx.Contigs()), outputPath)
	return nil
}
