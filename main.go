package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/davecgh/go-spew/spew"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"

	"github.com/santiaoqiao/xlbind/excel"
)

// Contact is the record the command line binds rows into.
type Contact struct {
	Name     string
	Email    string
	Phone    string
	Age      int
	Balance  float64
	Verified bool
	Joined   time.Time
}

// options holds the command line flags.
type options struct {
	sheet       string
	row         int
	skip        int
	mappingFlag string
	mappingFile string
	dump        bool
	verbose     bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	rootCmd := &cobra.Command{
		Use:   "xlbind [input.xlsx]",
		Short: "Bind spreadsheet rows to contact records",
		Long: `xlbind reads the rows of a workbook into contact records using a
field name to column index mapping, and prints one record per row.

Fields: ` + strings.Join(excel.SchemaOf[Contact]().Fields(), ", "),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args, opts)
		},
	}

	rootCmd.Flags().StringVar(&opts.sheet, "sheet", "", "Sheet name or [index]; all sheets when empty")
	rootCmd.Flags().IntVar(&opts.row, "row", -1, "Zero-based row index; all rows when negative")
	rootCmd.Flags().IntVar(&opts.skip, "skip", 0, "Non-blank rows to skip at the top of each sheet, e.g. 1 for a header")
	rootCmd.Flags().StringVarP(&opts.mappingFlag, "map", "m", "", "Field mapping, e.g. Name=0,Age=1")
	rootCmd.Flags().StringVar(&opts.mappingFile, "mapping-file", "", "YAML file mapping field names to column indices")
	rootCmd.Flags().BoolVar(&opts.dump, "dump", false, "Dump records with their Go types")
	rootCmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")
	return rootCmd
}

func run(cmd *cobra.Command, args []string, opts *options) error {
	if opts.verbose {
		log.SetLevel(log.TraceLevel)
	}

	mapping, err := loadMapping(opts.mappingFile, opts.mappingFlag)
	if err != nil {
		return err
	}

	cfg := excel.For(excel.SchemaOf[Contact]()).From(args[0]).WithMapping(mapping).SkipRows(opts.skip)
	if cfg, err = selectSheet(cfg, opts.sheet); err != nil {
		return err
	}
	if opts.row >= 0 {
		cfg = cfg.Row(opts.row)
	}

	contacts, err := cfg.Execute()
	if err != nil {
		return fmt.Errorf("binding failed: %w", err)
	}

	out := cmd.OutOrStdout()
	for _, c := range contacts {
		if opts.dump {
			spew.Fdump(out, c)
			continue
		}
		fmt.Fprintf(out, "%v\n", c)
	}
	return nil
}

// selectSheet accepts a sheet name, or an index declared as "[n]"
func selectSheet(cfg excel.Config[Contact], sheet string) (excel.Config[Contact], error) {
	sheet = strings.TrimSpace(sheet)
	if sheet == "" {
		return cfg.AllSheets(), nil
	}
	if sheet[0] == '[' && sheet[len(sheet)-1] == ']' {
		indexStr := strings.TrimSpace(sheet[1 : len(sheet)-1])
		if indexStr == "" {
			// "[]" is the first sheet
			return cfg.Sheet(0), nil
		}
		index, err := strconv.Atoi(indexStr)
		if err != nil {
			return cfg, errors.New("the sheet declared in '[]' is not a number")
		}
		return cfg.Sheet(index), nil
	}
	return cfg.SheetNamed(sheet), nil
}

// loadMapping merges the mapping file with the --map flag, the flag wins.
func loadMapping(mappingFile, mappingFlag string) (excel.FieldMapping, error) {
	mapping := excel.FieldMapping{}
	if mappingFile != "" {
		data, err := os.ReadFile(mappingFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read mapping file: %w", err)
		}
		if err := yaml.Unmarshal(data, &mapping); err != nil {
			return nil, fmt.Errorf("failed to parse mapping file %s: %w", mappingFile, err)
		}
	}
	flagMapping, err := parseMapping(mappingFlag)
	if err != nil {
		return nil, err
	}
	for k, v := range flagMapping {
		mapping[k] = v
	}
	if len(mapping) == 0 {
		return nil, errors.New("a field mapping is required, use --map or --mapping-file")
	}
	log.Debugf("field mapping: %v", mapping)
	return mapping, nil
}

// parseMapping reads "Name=0,Age=1".
func parseMapping(s string) (excel.FieldMapping, error) {
	mapping := excel.FieldMapping{}
	for _, pair := range strings.Split(s, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		name, col, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("invalid mapping %q, want field=index", pair)
		}
		index, err := strconv.Atoi(strings.TrimSpace(col))
		if err != nil {
			return nil, fmt.Errorf("invalid column index in %q", pair)
		}
		mapping[strings.TrimSpace(name)] = index
	}
	return mapping, nil
}
