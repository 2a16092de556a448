package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/k0kubun/pp/v3"
	"github.com/spf13/cobra"

	"github.com/yurifrl/csv2qif/pkg/config"
	"github.com/yurifrl/csv2qif/pkg/executors"
	"github.com/yurifrl/csv2qif/pkg/plan"
	"github.com/yurifrl/csv2qif/pkg/service"
)

const stdinPath = "-"

var (
	cliFilters filters
	dedupe     bool
	outputPath string
	reportTop  int
)

var rootCmd = &cobra.Command{
	Use:           "csv2qif",
	Short:         "Convert bank CSV exports into categorised QIF files",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, _ []string) error {
		// Show help when no subcommand is provided
		return cmd.Help()
	},
}

var convertCmd = &cobra.Command{
	Use:   "convert [flags] <input_path>...",
	Short: "Convert statements (files, directories or - for stdin) to QIF",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, cfg, logger, err := setup(cmd)
		if err != nil {
			return err
		}
		if settings.Format == "" || settings.Account == "" {
			return fmt.Errorf("--format and --account are required")
		}

		res, err := collect(newProcessor(settings, cfg, logger), args, settings)
		if err != nil {
			return err
		}

		out := io.Writer(os.Stdout)
		if outputPath != "" {
			f, err := os.Create(outputPath)
			if err != nil {
				return fmt.Errorf("error creating output file: %w", err)
			}
			defer f.Close()
			out = f
		}

		if err := executors.Write(out, res, settings.OutputFormat); err != nil {
			return err
		}
		logger.Info("converted", "transactions", len(res.Transactions), "alias", res.Alias)
		return nil
	},
}

var reportCmd = &cobra.Command{
	Use:   "report [flags] <input_path>...",
	Short: "Summarise accounts and the most common unclassified descriptions",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, cfg, logger, err := setup(cmd)
		if err != nil {
			return err
		}
		if settings.Format == "" || settings.Account == "" {
			return fmt.Errorf("--format and --account are required")
		}

		res, err := collect(newProcessor(settings, cfg, logger), args, settings)
		if err != nil {
			return err
		}
		executors.BuildReport(res, cfg.Rules, reportTop).Print(os.Stdout)
		return nil
	},
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate the rules document and report overlapping mappings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		settings, cfg, _, err := setup(cmd)
		if err != nil {
			return err
		}

		conflicts := cfg.Rules.Conflicts()
		for _, c := range conflicts {
			fmt.Println(c.String())
		}
		if len(conflicts) > 0 {
			return fmt.Errorf("%s: %d mapping conflict(s)", settings.Config, len(conflicts))
		}
		fmt.Printf("%s: %d format(s), %d categories, no conflicts\n", settings.Config, len(cfg.Formats), len(cfg.Rules.Categories()))
		return nil
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the resolved settings and rules document",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		settings, cfg, _, err := setup(cmd)
		if err != nil {
			return err
		}

		categories := make([]map[string]any, 0, len(cfg.Rules.Categories()))
		for _, c := range cfg.Rules.Categories() {
			rules := make([]string, 0, len(c.Rules))
			for _, r := range c.Rules {
				rules = append(rules, fmt.Sprintf("%s (%s)", r.Literal, r.Kind()))
			}
			categories = append(categories, map[string]any{"account": c.Name, "rules": rules})
		}
		skip := make([]string, 0, len(cfg.Rules.Skip()))
		for _, r := range cfg.Rules.Skip() {
			skip = append(skip, r.Literal)
		}

		pp.Println(settings)
		pp.Println(map[string]any{
			"formats":           cfg.Formats,
			"qif_aliases":       cfg.Aliases,
			"skip_descriptions": skip,
			"skip_currencies":   cfg.SkipCurrencies,
			"mappings":          categories,
		})
		return nil
	},
}

var planCmd = &cobra.Command{
	Use:   "plan <plan_file>",
	Short: "Preview a YAML plan of conversions (dry-run)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		exec, p, err := loadPlan(cmd, args[0])
		if err != nil {
			return err
		}

		fmt.Printf("Plan preview for %s\n", args[0])
		p.Print(os.Stdout)
		fmt.Println()
		_, err = exec.Plan(p)
		return err
	},
}

var applyCmd = &cobra.Command{
	Use:   "apply <plan_file>",
	Short: "Run a YAML plan and write every output file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		exec, p, err := loadPlan(cmd, args[0])
		if err != nil {
			return err
		}
		return exec.Apply(p)
	},
}

func setup(cmd *cobra.Command) (*config.Settings, *config.Config, *log.Logger, error) {
	settings, err := config.Build(cmd.Flags())
	if err != nil {
		return nil, nil, nil, err
	}
	logger := settings.NewLogger("csv2qif")

	cfg, err := config.Load(settings.Config)
	if err != nil {
		return nil, nil, nil, err
	}
	logger.Debug("loaded config", "path", settings.Config, "formats", len(cfg.Formats), "categories", len(cfg.Rules.Categories()))
	return settings, cfg, logger, nil
}

func newProcessor(settings *config.Settings, cfg *config.Config, logger *log.Logger) *service.Processor {
	return service.NewProcessor(cfg, logger, service.Options{
		Workers: settings.Workers,
		Dedupe:  dedupe,
		Filter:  cliFilters.toFilterFunc(),
	})
}

// collect converts a single stdin or path argument directly and a list of
// paths as one batch.
func collect(proc *service.Processor, args []string, settings *config.Settings) (*service.Result, error) {
	if len(args) == 1 {
		if args[0] == stdinPath {
			data, err := io.ReadAll(os.Stdin)
			if err != nil {
				return nil, fmt.Errorf("failed to read stdin: %w", err)
			}
			return proc.Collect(service.StringInput(data), settings.Format, settings.Account)
		}
		return proc.Collect(service.PathInput(args[0]), settings.Format, settings.Account)
	}

	var files []string
	for _, arg := range args {
		resolved, err := service.ResolveInputs(arg)
		if err != nil {
			return nil, err
		}
		files = append(files, resolved...)
	}
	return proc.CollectFiles(files, settings.Format, settings.Account)
}

func loadPlan(cmd *cobra.Command, path string) (*executors.Executor, *plan.Plan, error) {
	p, err := plan.Load(path)
	if err != nil {
		return nil, nil, err
	}
	if p.Config != "" {
		if err := cmd.Flags().Set("config", p.Config); err != nil {
			return nil, nil, err
		}
	}

	settings, cfg, logger, err := setup(cmd)
	if err != nil {
		return nil, nil, err
	}
	exec := executors.New(logger, newProcessor(settings, cfg, logger), cfg.Rules, os.Stdout)
	return exec, p, nil
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "config.yaml", "Rules document (YAML or JSON)")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().IntP("workers", "w", 0, "Files converted in parallel (default: number of CPUs)")
	rootCmd.PersistentFlags().BoolVar(&dedupe, "dedupe", false, "Drop transactions repeated across inputs")

	// Filter flags (global)
	rootCmd.PersistentFlags().Float64Var(&cliFilters.minAmount, "min", 0, "Minimum amount")
	rootCmd.PersistentFlags().Float64Var(&cliFilters.maxAmount, "max", 0, "Maximum amount")
	rootCmd.PersistentFlags().StringVar(&cliFilters.payee, "payee", "", "Filter by payee (case insensitive)")
	rootCmd.PersistentFlags().StringVar(&cliFilters.account, "account-filter", "", "Keep only transactions classified into this account")

	for _, cmd := range []*cobra.Command{convertCmd, reportCmd} {
		cmd.Flags().StringP("format", "f", "", "Format name from the rules document")
		cmd.Flags().StringP("account", "a", "", "qif_aliases key of the statement's account")
	}
	convertCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write to file instead of stdout")
	convertCmd.Flags().String("output-format", config.OutputQIF, "Output format (qif, gnucash)")
	reportCmd.Flags().IntVar(&reportTop, "top", 10, "Number of imbalanced descriptions to list")

	rootCmd.AddCommand(convertCmd, reportCmd, checkCmd, configCmd, planCmd, applyCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
