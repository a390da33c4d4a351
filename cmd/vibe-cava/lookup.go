package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/inodb/vibe-cava/internal/annotate"
	"github.com/inodb/vibe-cava/internal/duckdb"
)

var lookupColumns = []string{
	"CHROM", "POS", "REF", "ALT",
	annotate.FlagTranscript, annotate.FlagGene, annotate.FlagGeneID, annotate.FlagTrInfo,
	annotate.FlagLoc, annotate.FlagCSN, annotate.FlagProtPos, annotate.FlagProtRef, annotate.FlagProtAlt,
	annotate.FlagClass, annotate.FlagSO, annotate.FlagImpact,
	annotate.FlagAltAnn, annotate.FlagAltClass, annotate.FlagAltSO, annotate.FlagAltFlag,
	"DBSNP",
}

func newLookupCmd() *cobra.Command {
	var (
		storePath string
		gene      string
	)

	cmd := &cobra.Command{
		Use:   "lookup [flags] [chrom:pos:ref:alt]",
		Short: "Look up stored annotations",
		Long: `Print the transcript rows persisted by 'annotate --store', either for one
variant (alleles as written in the VCF) or for every variant of a gene.`,
		Example: `  vibe-cava lookup --store results.duckdb 12:25245350:C:A
  vibe-cava lookup --store results.duckdb --gene KRAS`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if storePath == "" {
				storePath = viper.GetString("store")
			}
			return runLookup(cmd.OutOrStdout(), storePath, gene, args)
		},
	}

	cmd.Flags().StringVar(&storePath, "store", "", "DuckDB result store (default: configured store)")
	cmd.Flags().StringVar(&gene, "gene", "", "Gene symbol to list stored rows for")

	return cmd
}

// parseVariantKey parses "chrom:pos:ref:alt" with alleles as written in the VCF.
func parseVariantKey(s string) (chrom string, pos int64, ref, alt string, err error) {
	parts := strings.Split(s, ":")
	if len(parts) != 4 {
		return "", 0, "", "", fmt.Errorf("invalid variant %q: want chrom:pos:ref:alt", s)
	}
	pos, err = strconv.ParseInt(parts[1], 10, 64)
	if err != nil || pos < 1 {
		return "", 0, "", "", fmt.Errorf("invalid position in %q", s)
	}
	return parts[0], pos, parts[2], parts[3], nil
}

func runLookup(w io.Writer, storePath, gene string, args []string) error {
	if storePath == "" {
		return errors.New("a result store is required (--store)")
	}
	if (gene == "") == (len(args) == 0) {
		return errors.New("give either a variant (chrom:pos:ref:alt) or --gene")
	}

	store, err := duckdb.Open(storePath)
	if err != nil {
		return fmt.Errorf("open result store: %w", err)
	}
	defer store.Close()

	var records []duckdb.AnnotationRecord
	if gene != "" {
		records, err = store.SearchByGene(gene)
	} else {
		chrom, pos, ref, alt, perr := parseVariantKey(args[0])
		if perr != nil {
			return perr
		}
		records, err = store.LookupVariant(chrom, pos, ref, alt)
	}
	if err != nil {
		return err
	}

	return writeRecords(w, records)
}

func writeRecords(w io.Writer, records []duckdb.AnnotationRecord) error {
	bw := bufio.NewWriter(w)
	bw.WriteString(strings.Join(lookupColumns, "\t"))
	bw.WriteByte('\n')
	for _, r := range records {
		row := r.Row
		fields := []string{
			r.Chrom, strconv.FormatInt(r.Pos, 10), r.Ref, r.Alt,
			row.Transcript, row.Gene, row.GeneID, row.TrInfo,
			row.Loc, row.CSN, row.ProtPos, row.ProtRef, row.ProtAlt,
			row.Class, row.SO, row.Impact,
			row.AltAnn, row.AltClass, row.AltSO, row.AltFlag,
			r.DBSNP,
		}
		for i, f := range fields {
			if f == "" {
				fields[i] = "."
			}
		}
		bw.WriteString(strings.Join(fields, "\t"))
		bw.WriteByte('\n')
	}
	return bw.Flush()
}
