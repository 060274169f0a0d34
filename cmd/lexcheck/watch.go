package main

import (
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/codewithboateng/lexcheck/internal/parser"
	"github.com/codewithboateng/lexcheck/internal/reporting"
	"github.com/codewithboateng/lexcheck/internal/validator"
	"github.com/codewithboateng/lexcheck/internal/watch"
)

func watchCmd(a *app) *cobra.Command {
	var docType string
	cmd := &cobra.Command{
		Use:   "watch <dirs>...",
		Short: "Re-validate documents as they change",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if docType == "" {
				docType = a.cfg.Analysis.DocumentType
			}

			v, _, err := a.newValidator(nil, nil)
			if err != nil {
				return err
			}
			w, err := watch.New(watch.Config{
				Debounce:   a.cfg.Watch.Debounce,
				Extensions: a.cfg.Watch.Extensions,
			}, a.logger)
			if err != nil {
				return err
			}
			for _, dir := range args {
				if err := w.Add(dir); err != nil {
					return err
				}
			}
			go w.Run(ctx)

			out := cmd.OutOrStdout()
			for ev := range w.Events() {
				if ev.Op == watch.OpRemoved {
					a.logger.Info("document removed", "path", ev.Path)
					continue
				}
				doc, err := parser.Load(ev.Path)
				if err != nil {
					a.logger.Warn("cannot load document", "path", ev.Path, "error", err)
					continue
				}
				run, err := v.Run(ctx, doc, docType)
				if errors.Is(err, validator.ErrEmptyText) {
					continue
				}
				if err != nil {
					if ctx.Err() != nil {
						break
					}
					a.logger.Error("validation failed", "path", ev.Path, "error", err)
					continue
				}
				if err := reporting.WriteText(out, &run); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&docType, "type", "t", "", "Document type; empty = detect")
	return cmd
}
