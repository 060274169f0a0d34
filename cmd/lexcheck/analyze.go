package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/codewithboateng/lexcheck/internal/ir"
	"github.com/codewithboateng/lexcheck/internal/parser"
	"github.com/codewithboateng/lexcheck/internal/reporting"
	"github.com/codewithboateng/lexcheck/internal/storage"
	"github.com/codewithboateng/lexcheck/internal/validator"
)

type analyzeOpts struct {
	docType   string
	format    string
	outDir    string
	workers   int
	noStore   bool
	failOn    bool
	rulePacks []string
	endpoint  string
}

func analyzeCmd(a *app) *cobra.Command {
	var o analyzeOpts
	cmd := &cobra.Command{
		Use:   "analyze [paths|globs]...",
		Short: "Validate documents and write reports",
		Long: `Validate every matching document. Arguments may be files, directories
or doublestar globs (contracts/**/*.docx); with no arguments the
analysis.sources list from the config is used.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.analyze(ctx, cmd.OutOrStdout(), args, o)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&o.docType, "type", "t", "", "Document type (NDA, EMPLOYMENT_AGREEMENT, ...); empty = detect")
	f.StringVarP(&o.format, "format", "f", "", "Report format: text, json or html")
	f.StringVarP(&o.outDir, "out", "o", "", "Output directory for json/html reports")
	f.IntVarP(&o.workers, "workers", "w", 0, "Documents validated in parallel")
	f.BoolVar(&o.noStore, "no-store", false, "Do not persist runs to the database")
	f.BoolVar(&o.failOn, "fail-on-noncompliant", false, "Exit with status 20 if any document is non-compliant")
	f.StringSliceVar(&o.rulePacks, "rule-pack", nil, "Extra YAML pattern packs")
	f.StringVar(&o.endpoint, "classifier", "", "Classifier endpoint URL (overrides config)")
	return cmd
}

func (a *app) analyze(ctx context.Context, out io.Writer, args []string, o analyzeOpts) error {
	if len(args) == 0 {
		args = a.cfg.Analysis.Sources
	}
	if len(args) == 0 {
		return errors.New("analyze: no input paths (pass arguments or set analysis.sources)")
	}
	if o.docType == "" {
		o.docType = a.cfg.Analysis.DocumentType
	}
	if o.format == "" {
		o.format = a.cfg.Reporting.Format
	}
	if o.outDir == "" {
		o.outDir = a.cfg.Reporting.OutDir
	}
	if o.workers <= 0 {
		o.workers = a.cfg.Analysis.Workers
	}
	if o.endpoint != "" {
		a.cfg.Classifier.Endpoint = o.endpoint
	}
	switch o.format {
	case "text", "json", "html":
	default:
		return fmt.Errorf("analyze: unknown format %q", o.format)
	}

	paths, err := parser.ResolvePaths(args)
	if err != nil {
		return err
	}

	var db *storage.DB
	if !o.noStore {
		if db, err = a.openDB(); err != nil {
			return err
		}
		defer db.Close()
	}
	v, _, err := a.newValidator(db, o.rulePacks)
	if err != nil {
		return err
	}
	pub, err := a.newPublisher()
	if err != nil {
		return err
	}
	defer pub.Close()

	runs, err := a.validateAll(ctx, v, paths, o.docType, o.workers)
	if err != nil {
		return err
	}

	nonCompliant := 0
	for _, run := range runs {
		if run == nil {
			continue
		}
		if db != nil {
			if err := db.SaveRun(run); err != nil {
				return err
			}
		}
		if err := pub.Publish(ctx, run); err != nil {
			a.logger.Warn("publish failed", "run", run.ID, "error", err)
		}
		if err := writeReport(out, o.format, o.outDir, run); err != nil {
			return err
		}
		if !run.Report.IsCompliant() {
			nonCompliant++
		}
	}
	a.logger.Info("analyze complete", "documents", len(paths), "non_compliant", nonCompliant, "stored", db != nil)

	if o.failOn && nonCompliant > 0 {
		return &exitError{code: exitNonCompliant, msg: fmt.Sprintf("%d non-compliant document(s)", nonCompliant)}
	}
	return nil
}

// validateAll keeps input order in the result. Documents that cannot be
// loaded or are empty are logged and left nil.
func (a *app) validateAll(ctx context.Context, v *validator.Validator, paths []string, docType string, workers int) ([]*ir.Run, error) {
	runs := make([]*ir.Run, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i, p := range paths {
		g.Go(func() error {
			doc, err := parser.Load(p)
			if err != nil {
				a.logger.Warn("skipping document", "path", p, "error", err)
				return nil
			}
			run, err := v.Run(gctx, doc, docType)
			if errors.Is(err, validator.ErrEmptyText) {
				a.logger.Warn("skipping empty document", "path", p)
				return nil
			}
			if err != nil {
				return fmt.Errorf("validate %s: %w", p, err)
			}
			runs[i] = &run
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return runs, nil
}

func writeReport(out io.Writer, format, outDir string, run *ir.Run) error {
	switch format {
	case "json":
		path, err := reporting.WriteJSON(outDir, run)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s  %s\n", run.ID, path)
	case "html":
		path, err := reporting.WriteHTML(outDir, run)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s  %s\n", run.ID, path)
	default:
		if err := reporting.WriteText(out, run); err != nil {
			return err
		}
	}
	return nil
}
