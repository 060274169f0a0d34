package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/codewithboateng/lexcheck/internal/ir"
	"github.com/codewithboateng/lexcheck/internal/rules"
	"github.com/codewithboateng/lexcheck/internal/rulesdsl"
	"github.com/codewithboateng/lexcheck/internal/security"
	"github.com/codewithboateng/lexcheck/internal/storage"
)

func typesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "List document types and their required clauses",
		RunE: func(cmd *cobra.Command, args []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "TYPE\tLABEL\tREQUIRED CLAUSES")
			for _, t := range ir.DocumentTypes() {
				req := rules.Lookup(string(t.Value))
				ids := make([]string, len(req.Required))
				for i, id := range req.Required {
					ids[i] = string(id)
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\n", t.Value, t.Label, strings.Join(ids, ", "))
			}
			return tw.Flush()
		},
	}
}

func rulesCmd(a *app) *cobra.Command {
	var packs []string
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "List every flaw type the engine can report",
		RunE: func(cmd *cobra.Command, args []string) error {
			ps, err := rulesdsl.LoadAll(append(append([]string{}, a.cfg.Analysis.RulePacks...), packs...)...)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tSEVERITY\tSOURCE\tSUMMARY")
			for _, r := range rules.List(ps) {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.ID, r.Severity, r.Source, r.Summary)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringSliceVar(&packs, "rule-pack", nil, "Extra YAML pattern packs")
	return cmd
}

func userCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage API users",
	}

	var role, password string
	add := &cobra.Command{
		Use:   "add <username>",
		Short: "Create a user (password read from stdin when --password is empty)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			username := strings.TrimSpace(args[0])
			if username == "" {
				return errors.New("user add: username is required")
			}
			if password == "" {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("read password: %w", err)
				}
				password = strings.TrimRight(line, "\r\n")
			}
			hash, err := security.HashPassword(password)
			if err != nil {
				return err
			}

			db, err := a.openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			id, err := db.CreateUser(username, hash, role)
			if err != nil {
				return err
			}
			_ = db.LogAudit("cli", "user:create", username, map[string]any{"role": role})
			fmt.Fprintf(cmd.OutOrStdout(), "created user %s (id %d, role %s)\n", username, id, role)
			return nil
		},
	}
	add.Flags().StringVar(&role, "role", storage.RoleViewer, "Role: admin or viewer")
	add.Flags().StringVar(&password, "password", "", "Password (at least 8 characters)")
	cmd.AddCommand(add)
	return cmd
}
