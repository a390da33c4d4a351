package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/inodb/vibe-cava/internal/annotate"
	"github.com/inodb/vibe-cava/internal/cache"
	"github.com/inodb/vibe-cava/internal/datasource/dbsnp"
	"github.com/inodb/vibe-cava/internal/duckdb"
	"github.com/inodb/vibe-cava/internal/genome"
	"github.com/inodb/vibe-cava/internal/output"
	"github.com/inodb/vibe-cava/internal/vcf"
)

func newAnnotateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "annotate [flags] <input.vcf>",
		Short: "Annotate variants in a VCF file",
		Long: `Annotate variants in a VCF file (plain or gzipped, '-' for stdin) and
write one tab-delimited line per ALT allele with the transcript flags.`,
		Example: `  vibe-cava annotate --db transcripts.duckdb --reference hg19.fa input.vcf
  vibe-cava annotate --db ensembl75.txt.gz --reference hg19.fa --ontology SO -o out.txt input.vcf.gz
  cat input.vcf | vibe-cava annotate --db transcripts.duckdb --reference hg19.fa -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnnotate(cmd.OutOrStdout(), args[0])
		},
	}

	f := cmd.Flags()
	f.String("db", "", "Transcript database (text, bgzipped, or DuckDB index)")
	f.String("reference", "", "Reference genome FASTA (.fai is used when present)")
	f.String("dbsnp", "", "dbSNP DuckDB database built with 'dbsnp load'")
	f.String("ontology", "BOTH", "Consequence vocabulary: CLASS, SO or BOTH")
	f.Int("ssrange", annotate.DefaultSSRange, "Splice region width in intronic bases")
	f.Bool("givealt", false, "Report the alternative alignment annotation (ALTANN, ALTCLASS, ALTSO)")
	f.Bool("givealtflag", false, "Report ALTFLAG together with --givealt")
	f.String("genelist", "", "File of gene symbols to annotate, one per line")
	f.String("transcriptlist", "", "File of transcript IDs to annotate, one per line")
	f.String("impactdef", annotate.DefaultImpactDef, "Impact levels as '|'-separated groups of CLASS codes (empty disables IMPACT)")
	f.String("codons", "", "Codon table file (default: standard genetic code)")
	f.Int("threads", 0, "Number of worker goroutines (0: number of CPUs)")
	f.String("store", "", "DuckDB database to persist annotation rows in")
	f.Bool("clear-store", false, "Remove previously stored annotation rows before writing (with --store)")
	f.StringP("output", "o", "", "Output file (default: stdout)")

	mustBindFlags(f,
		"db", "reference", "dbsnp", "ontology", "ssrange", "givealt", "givealtflag",
		"genelist", "transcriptlist", "impactdef", "codons", "threads", "store", "clear-store", "output")

	return cmd
}

// optionsFromConfig builds validated annotator options from the merged
// flag, environment and config file values.
func optionsFromConfig() (annotate.Options, error) {
	opts := annotate.DefaultOptions()

	ontology, err := annotate.ParseOntology(viper.GetString("ontology"))
	if err != nil {
		return opts, err
	}
	opts.Ontology = ontology
	opts.SSRange = viper.GetInt("ssrange")
	opts.GiveAlt = viper.GetBool("givealt")
	opts.GiveAltFlag = viper.GetBool("givealtflag")

	if opts.Impact, err = annotate.ParseImpactDef(viper.GetString("impactdef")); err != nil {
		return opts, err
	}
	if opts.GeneList, err = cache.LoadIDList(viper.GetString("genelist")); err != nil {
		return opts, fmt.Errorf("gene list: %w", err)
	}
	if opts.TranscriptList, err = cache.LoadIDList(viper.GetString("transcriptlist")); err != nil {
		return opts, fmt.Errorf("transcript list: %w", err)
	}

	if path := viper.GetString("codons"); path != "" {
		f, err := os.Open(path)
		if err != nil {
			return opts, fmt.Errorf("open codon table: %w", err)
		}
		defer f.Close()
		if opts.Codons, err = annotate.LoadCodonTable(f); err != nil {
			return opts, fmt.Errorf("codon table %s: %w", path, err)
		}
	}

	return opts, opts.Validate()
}

// openTranscriptIndex opens a DuckDB index or loads a text database into
// memory. The returned store is nil for text databases.
func openTranscriptIndex(path string, logger *zap.Logger) (annotate.TranscriptIndex, *duckdb.Store, error) {
	if duckdb.IsDuckDB(path) {
		store, err := duckdb.Open(path)
		if err != nil {
			return nil, nil, err
		}
		n, err := store.TranscriptCount()
		if err != nil {
			store.Close()
			return nil, nil, fmt.Errorf("count transcripts: %w", err)
		}
		if n == 0 {
			store.Close()
			return nil, nil, fmt.Errorf("%s holds no transcripts (build it with 'vibe-cava index')", path)
		}
		logger.Info("opened transcript index", zap.String("path", path), zap.Int("transcripts", n))
		return store, store, nil
	}

	idx, err := cache.LoadIndexFile(path)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("loaded transcript database",
		zap.String("path", path),
		zap.Int("transcripts", idx.Len()),
		zap.Int("contigs", len(idx.Contigs())))
	return idx, nil, nil
}

func runAnnotate(stdout io.Writer, input string) error {
	logger, err := newLogger(viper.GetBool("verbose"))
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer logger.Sync()

	opts, err := optionsFromConfig()
	if err != nil {
		return err
	}

	dbPath := viper.GetString("db")
	refPath := viper.GetString("reference")
	if dbPath == "" {
		return errors.New("a transcript database is required (--db)")
	}
	if refPath == "" {
		return errors.New("a reference genome is required (--reference)")
	}

	index, indexStore, err := openTranscriptIndex(dbPath, logger)
	if err != nil {
		return err
	}
	if indexStore != nil {
		defer indexStore.Close()
	}

	fasta, err := genome.OpenFASTA(refPath)
	if err != nil {
		return err
	}
	defer fasta.Close()
	ref := genome.NewReference(fasta)
	ref.SetLogger(logger)

	ann, err := annotate.NewAnnotator(index, ref, opts)
	if err != nil {
		return err
	}
	ann.SetLogger(logger)

	if path := viper.GetString("dbsnp"); path != "" {
		store, err := dbsnp.Open(path)
		if err != nil {
			return fmt.Errorf("open dbsnp: %w", err)
		}
		defer store.Close()
		if !store.Loaded() {
			logger.Warn("dbsnp database is empty", zap.String("path", path))
		}
		src := dbsnp.NewSource(store)
		src.SetLogger(logger)
		ann.AddSource(src)
	}

	parser, err := vcf.NewParser(input)
	if err != nil {
		return err
	}
	defer parser.Close()

	out := stdout
	if path := viper.GetString("output"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	var writer annotate.AnnotationWriter = output.NewTabWriter(out, ann.Flags(), ann.Sources())
	if path := viper.GetString("store"); path != "" {
		results := indexStore
		if results == nil || results.Path() != path {
			if results, err = duckdb.Open(path); err != nil {
				return fmt.Errorf("open result store: %w", err)
			}
			defer results.Close()
		}
		if viper.GetBool("clear-store") {
			if err := results.ClearAnnotations(); err != nil {
				return fmt.Errorf("clear result store: %w", err)
			}
			logger.Info("cleared stored annotations", zap.String("store", path))
		}
		writer = output.NewStoreWriter(writer, results, output.DefaultBatchSize)
	}

	if err := writer.WriteHeader(); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	return ann.AnnotateAll(parser, writer, viper.GetInt("threads"))
}
