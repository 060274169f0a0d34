package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/codewithboateng/lexcheck/internal/classifier"
	"github.com/codewithboateng/lexcheck/internal/ir"
	"github.com/codewithboateng/lexcheck/internal/publish"
	"github.com/codewithboateng/lexcheck/internal/rulesdsl"
	"github.com/codewithboateng/lexcheck/internal/shared"
	"github.com/codewithboateng/lexcheck/internal/storage"
	"github.com/codewithboateng/lexcheck/internal/validator"
)

const appName = "lexcheck"

// app carries state shared by every subcommand. It is filled in by the
// root command's PersistentPreRunE.
type app struct {
	configPath string
	dbPath     string
	logLevel   string

	cfg    shared.Config
	logger *slog.Logger
}

func rootCmd() *cobra.Command {
	a := &app{}
	cmd := &cobra.Command{
		Use:   appName,
		Short: "Legal document flaw detector",
		Long: `lexcheck checks legal documents (NDAs, employment, founder and SAFE
agreements) for missing required clauses, risky or vague language and
internal contradictions, and reports whether the document is compliant.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load()
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&a.configPath, "config", "c", "", "Config file path (YAML)")
	pf.StringVar(&a.dbPath, "db", "", "SQLite database path (overrides config)")
	pf.StringVar(&a.logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	cmd.AddCommand(
		analyzeCmd(a),
		reportCmd(a),
		diffCmd(a),
		serveCmd(a),
		watchCmd(a),
		typesCmd(),
		rulesCmd(a),
		userCmd(a),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n", appName, ir.Version)
			},
		},
	)
	return cmd
}

func (a *app) load() error {
	cfg, err := shared.LoadConfig(a.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if a.dbPath != "" {
		cfg.Database.DSN = a.dbPath
	}
	if a.logLevel != "" {
		cfg.Logging.Level = a.logLevel
	}
	a.cfg = cfg
	a.logger = shared.InitLogger(cfg.Logging.Format, cfg.Logging.Level)
	return nil
}

func (a *app) openDB() (*storage.DB, error) {
	db, err := storage.OpenSQLite(a.cfg.Database.DSN)
	if err != nil {
		return nil, err
	}
	if err := db.CreateSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// newClassifier returns nil when no endpoint is configured.
func (a *app) newClassifier() (classifier.Classifier, error) {
	cc := a.cfg.Classifier
	if cc.Endpoint == "" {
		return nil, nil
	}
	rc := classifier.DefaultRetryConfig()
	if cc.MaxAttempts > 0 {
		rc.MaxAttempts = cc.MaxAttempts
	}
	if cc.Backoff > 0 {
		rc.BackoffBase = cc.Backoff
	}
	var c classifier.Classifier = classifier.NewHTTP(cc.Endpoint,
		classifier.WithRetryConfig(rc),
		classifier.WithLogger(a.logger),
	)
	if cc.CacheSize > 0 {
		cached, err := classifier.NewCached(c, cc.CacheSize)
		if err != nil {
			return nil, err
		}
		c = cached
	}
	return c, nil
}

// newValidator wires patterns (built-ins plus extra packs), the classifier
// and, when db is non-nil, waivers.
func (a *app) newValidator(db *storage.DB, extraPacks []string) (*validator.Validator, bool, error) {
	packs := append(append([]string{}, a.cfg.Analysis.RulePacks...), extraPacks...)
	ps, err := rulesdsl.LoadAll(packs...)
	if err != nil {
		return nil, false, err
	}
	c, err := a.newClassifier()
	if err != nil {
		return nil, false, err
	}
	opts := []validator.Option{
		validator.WithPatterns(ps),
		validator.WithClassifierTimeout(a.cfg.Classifier.Timeout),
		validator.WithLogger(a.logger),
	}
	if c != nil {
		opts = append(opts, validator.WithClassifier(c))
	}
	if db != nil {
		opts = append(opts, validator.WithWaivers(db))
	}
	return validator.New(opts...), c != nil, nil
}

// newPublisher connects to NATS when a URL is configured.
func (a *app) newPublisher() (publish.Publisher, error) {
	if a.cfg.NATS.URL == "" {
		return publish.Nop{}, nil
	}
	return publish.Connect(a.cfg.NATS.URL, a.cfg.NATS.Subject, a.logger)
}
