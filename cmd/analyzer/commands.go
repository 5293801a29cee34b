package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"review_insights/internal/adapters/dataset"
	"review_insights/internal/adapters/observability"
	"review_insights/internal/app"
	"review_insights/internal/domain"
	"review_insights/internal/insights"
	"review_insights/internal/shared"
	mysqlrepo "review_insights/internal/storage/mysql"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "analyzer",
		Short:         "Turn sentiment-labelled reviews into drivers, pain points and recommendations",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newRunCmd(), newTaxonomyCmd())
	return root
}

type runOptions struct {
	input       string
	output      string
	taxonomy    string
	minMentions int
	persist     bool
	comparison  bool
}

type runOutput struct {
	RunID      string              `json:"run_id"`
	Report     domain.Report       `json:"report"`
	Comparison *domain.Comparison  `json:"comparison,omitempty"`
	Stats      *app.NormalizeStats `json:"normalize_stats,omitempty"`
}

func newRunCmd() *cobra.Command {
	var o runOptions
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Analyze a dataset file, or every stored review when --input is empty",
		Long: `Analyze reviews and print the insights report as JSON.

With --input the reviews come from a .json, .csv or .xlsx file. Without it
they are read from MySQL. --persist stores the report in MySQL.`,
		Example: `  analyzer run --input reviews.csv --output insights.json
  analyzer run --persist --min-mentions 3`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runAnalyze(cmd, o)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&o.input, "input", "i", "", "dataset file (.json, .csv, .xlsx)")
	f.StringVarP(&o.output, "output", "o", "", "write the report here instead of stdout")
	f.StringVar(&o.taxonomy, "taxonomy", "", "taxonomy file (.yaml, .toml, .json)")
	f.IntVar(&o.minMentions, "min-mentions", 0, "minimum mentions per category (0 keeps the configured value)")
	f.BoolVar(&o.persist, "persist", false, "store the report in MySQL")
	f.BoolVar(&o.comparison, "comparison", true, "include the cross-entity comparison")
	return cmd
}

func runAnalyze(cmd *cobra.Command, o runOptions) error {
	cfg, err := shared.Load()
	if err != nil {
		return err
	}
	log.Logger = observability.NewCLILogger(cfg.AppEnv)

	if o.taxonomy != "" {
		cfg.TaxonomyPath = o.taxonomy
	}
	if o.minMentions > 0 {
		cfg.MinMentions = o.minMentions
	}
	eng, err := app.NewEngine(cfg)
	if err != nil {
		return err
	}
	norm := app.NewConfiguredNormalizer(cfg)

	ctx := cmd.Context()
	var deps app.AnalysisDeps
	if o.persist || o.input == "" {
		db, err := mysqlrepo.Open(ctx, cfg.MySQLDSN, 15*time.Second)
		if err != nil {
			return err
		}
		defer db.Close()
		repo := mysqlrepo.New(db)
		deps.Repo, deps.Store = repo, repo
	}
	svc := app.NewAnalysisService(eng, norm, deps, cfg.AnalysisWorkers)

	var res app.RunResult
	if o.input == "" {
		res, err = svc.Run(ctx)
	} else {
		raw, lerr := dataset.Load(o.input)
		if lerr != nil {
			return lerr
		}
		rs, st := norm.Normalize(raw)
		if st.Dropped > 0 {
			log.Warn().Int("dropped", st.Dropped).Interface("reasons", st.Reasons).Msg("dropped unusable records")
		}
		res, err = svc.RunReviews(ctx, rs, o.persist)
		res.Stats = &st
	}
	if err != nil {
		return err
	}

	out := runOutput{RunID: res.RunID, Report: res.Report, Stats: res.Stats}
	if o.comparison {
		out.Comparison = &res.Comparison
	}
	return writeJSON(cmd.OutOrStdout(), o.output, out)
}

func writeJSON(stdout io.Writer, path string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	b = append(b, '\n')
	if path == "" {
		_, err = stdout.Write(b)
		return err
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	log.Info().Str("path", path).Msg("report written")
	return nil
}

func newTaxonomyCmd() *cobra.Command {
	var (
		format string
		check  string
	)
	cmd := &cobra.Command{
		Use:   "taxonomy",
		Short: "Print the built-in taxonomy, or validate a taxonomy file with --check",
		RunE: func(cmd *cobra.Command, _ []string) error {
			tax := insights.DefaultTaxonomy()
			if check != "" {
				t, err := insights.LoadTaxonomy(check)
				if err != nil {
					return err
				}
				tax = t
				if format == "" {
					format = strings.TrimPrefix(filepath.Ext(check), ".")
				}
			}
			if format == "" {
				format = "yaml"
			}
			b, err := insights.MarshalTaxonomy(format, tax)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(b)
			return err
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "", "output format: yaml, toml or json")
	cmd.Flags().StringVar(&check, "check", "", "taxonomy file to load and validate")
	return cmd
}
