// Package main provides the vibe-cava command-line tool.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Exit codes
const (
	ExitSuccess = 0
	ExitError   = 1
)

// Version information (set at build time)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// configName is the config file base name in the home directory.
const configName = ".vibe-cava"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitError)
	}
	os.Exit(ExitSuccess)
}

func newRootCmd() *cobra.Command {
	var cfgFile string

	root := &cobra.Command{
		Use:   "vibe-cava",
		Short: "Clinical annotation of variants",
		Long: `vibe-cava annotates VCF variants against a transcript database with
CSN nomenclature, variant classes and Sequence Ontology terms.`,
		Example: `  # Build a DuckDB transcript index (one-time setup)
  vibe-cava index -o transcripts.duckdb ensembl75.txt.gz

  # Annotate a VCF file
  vibe-cava annotate --db transcripts.duckdb --reference hg19.fa input.vcf

  # Add dbSNP identifiers
  vibe-cava dbsnp load -o dbsnp.duckdb dbsnp138.tsv.gz
  vibe-cava annotate --db transcripts.duckdb --reference hg19.fa --dbsnp dbsnp.duckdb input.vcf`,
		Version:       fmt.Sprintf("%s (%s) built %s", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(cfgFile)
		},
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/"+configName+".yaml)")
	root.PersistentFlags().BoolP("verbose", "v", false, "Verbose (debug) logging")
	mustBindFlags(root.PersistentFlags(), "verbose")

	root.AddCommand(newAnnotateCmd())
	root.AddCommand(newIndexCmd())
	root.AddCommand(newDBSNPCmd())
	root.AddCommand(newLookupCmd())
	root.AddCommand(newConfigCmd())

	return root
}

// initConfig reads the config file and VIBE_CAVA_* environment variables.
// A missing default config file is not an error.
func initConfig(cfgFile string) error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(home)
		}
		viper.SetConfigName(configName)
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("VIBE_CAVA")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

// mustBindFlags binds each named flag of fs to the viper key of the same
// name. It panics on an unknown flag name.
func mustBindFlags(fs *pflag.FlagSet, names ...string) {
	for _, name := range names {
		flag := fs.Lookup(name)
		if flag == nil {
			panic(fmt.Sprintf("bind flag %q: no such flag", name))
		}
		if err := viper.BindPFlag(name, flag); err != nil {
			panic(fmt.Sprintf("bind flag %q: %v", name, err))
		}
	}
}

// defaultConfigPath returns the config file written by 'config set'.
func defaultConfigPath() (string, error) {
	if cfgFile := viper.ConfigFileUsed(); cfgFile != "" {
		return cfgFile, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, configName+".yaml"), nil
}

// newLogger builds a production logger, or a development logger when verbose.
func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
