package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/codewithboateng/lexcheck/internal/ir"
	"github.com/codewithboateng/lexcheck/internal/reporting"
	"github.com/codewithboateng/lexcheck/internal/storage"
)

func reportCmd(a *app) *cobra.Command {
	var runID, format, outDir string
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Re-render a stored run",
		RunE: func(cmd *cobra.Command, args []string) error {
			if runID == "" {
				return errors.New("report: --run is required")
			}
			if format == "" {
				format = a.cfg.Reporting.Format
			}
			if outDir == "" {
				outDir = a.cfg.Reporting.OutDir
			}
			db, err := a.openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			run, err := loadRun(db, runID)
			if err != nil {
				return err
			}
			return writeReport(cmd.OutOrStdout(), format, outDir, &run)
		},
	}
	cmd.Flags().StringVar(&runID, "run", "", `Run ID, or "latest"`)
	cmd.Flags().StringVarP(&format, "format", "f", "", "Report format: text, json or html")
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "Output directory for json/html reports")
	return cmd
}

func diffCmd(a *app) *cobra.Command {
	var base, head, outDir string
	cmd := &cobra.Command{
		Use:   "diff",
		Short: "Compare the flaws of two stored runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			if base == "" || head == "" {
				return errors.New("diff: --base and --head are required")
			}
			if outDir == "" {
				outDir = a.cfg.Reporting.OutDir
			}
			db, err := a.openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			br, err := loadRun(db, base)
			if err != nil {
				return err
			}
			hr, err := loadRun(db, head)
			if err != nil {
				return err
			}
			path, err := reporting.WriteDiffJSON(outDir, &br, &hr)
			if err != nil {
				return err
			}
			d := reporting.DiffRuns(&br, &hr)
			fmt.Fprintf(cmd.OutOrStdout(), "new=%d removed=%d changed=%d\n%s\n",
				d.Summary.NewCount, d.Summary.RemovedCount, d.Summary.ChangedCount, path)
			return nil
		},
	}
	cmd.Flags().StringVar(&base, "base", "", "Base run ID")
	cmd.Flags().StringVar(&head, "head", "", "Head run ID")
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "Output directory")
	return cmd
}

func loadRun(db *storage.DB, id string) (ir.Run, error) {
	var (
		run ir.Run
		err error
	)
	if id == "latest" {
		run, err = db.LoadLatestRun()
	} else {
		run, err = db.LoadRun(id)
	}
	if errors.Is(err, storage.ErrNotFound) {
		return ir.Run{}, fmt.Errorf("run %q not found", id)
	}
	return run, err
}
