package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/inodb/vibe-cava/internal/datasource/dbsnp"
)

func newDBSNPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dbsnp",
		Short: "Manage the dbSNP database",
	}
	cmd.AddCommand(newDBSNPLoadCmd())
	return cmd
}

func newDBSNPLoadCmd() *cobra.Command {
	var outputPath string

	cmd := &cobra.Command{
		Use:   "load [flags] <dbsnp.tsv[.gz]>",
		Short: "Load a dbSNP file into DuckDB",
		Long: `Load a tab-separated dbSNP file (rsid, chrom, pos, comma-separated alts;
plain, gzipped or bgzipped) into a DuckDB database for 'annotate --dbsnp'.
Existing records are replaced.`,
		Example: `  vibe-cava dbsnp load -o dbsnp.duckdb dbsnp138.tsv.gz
  vibe-cava config set dbsnp dbsnp.duckdb`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDBSNPLoad(cmd.OutOrStdout(), args[0], outputPath)
		},
	}
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output DuckDB file (required)")

	return cmd
}

func runDBSNPLoad(w io.Writer, input, outputPath string) error {
	if outputPath == "" {
		return errors.New("an output database is required (-o)")
	}

	logger, err := newLogger(viper.GetBool("verbose"))
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer logger.Sync()

	store, err := dbsnp.Open(outputPath)
	if err != nil {
		return err
	}
	defer store.Close()

	n, err := store.Load(input)
	if err != nil {
		return fmt.Errorf("load dbsnp: %w", err)
	}

	logger.Info("loaded dbsnp records",
		zap.String("input", input),
		zap.String("output", outputPath),
		zap.Int64("records", n))
	fmt.Fprintf(w, "Loaded %d dbSNP records into %s\n", n, outputPath)
	return nil
}
