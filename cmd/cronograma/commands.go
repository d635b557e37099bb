package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nhle/cronograma/internal/app"
	"github.com/nhle/cronograma/internal/gcal"
	"github.com/nhle/cronograma/internal/jobs"
	"github.com/nhle/cronograma/internal/model"
	"github.com/nhle/cronograma/internal/sheet"
	"github.com/nhle/cronograma/internal/store"
)

func importCmd() *cobra.Command {
	var opts sheet.ImportOptions
	var primary bool
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import a CSV or XLSX schedule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup()
			if err != nil {
				return err
			}
			defer e.Close()

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			opts.Type = model.SheetOther
			if primary {
				opts.Type = model.SheetPrimaryPackaging
			}
			opts.Location = e.loc
			saved, err := sheet.Import(cmd.Context(), e.store, filepath.Base(args[0]), f, opts)
			if err != nil {
				return err
			}
			msg := fmt.Sprintf("%s: %d tarefas", saved.Label(), saved.TotalRows)
			if _, err := e.center.AddEvent(cmd.Context(), "Planilha importada", msg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", msg, saved.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.Name, "name", "", "sheet name (default: file name)")
	cmd.Flags().StringVar(&opts.Project, "project", "", "project name")
	cmd.Flags().BoolVar(&primary, "primary", false, "mark as a primary packaging schedule")
	return cmd
}

func exportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export <sheet-id> <file.csv|file.xlsx>",
		Short: "Export the tasks of a sheet",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup()
			if err != nil {
				return err
			}
			defer e.Close()

			sheetID := args[0]
			tasks, err := e.store.GetTasks(cmd.Context(), store.TaskFilter{SheetID: &sheetID})
			if err != nil {
				return err
			}
			if len(tasks) == 0 {
				return fmt.Errorf("sheet %s has no tasks", sheetID)
			}
			if err := sheet.Write(args[1], tasks); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d tarefas exportadas para %s\n", len(tasks), args[1])
			return nil
		},
	}
}

func sweepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Notify overdue tasks once per day",
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := setup()
			if err != nil {
				return err
			}
			defer e.Close()

			n, err := jobs.New(e.store, e.center, e.loc).SweepOverdue(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d tarefas atrasadas notificadas\n", n)
			return nil
		},
	}
}

func digestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "digest",
		Short: "Send the daily digest now",
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := setup()
			if err != nil {
				return err
			}
			defer e.Close()

			n, err := jobs.New(e.store, e.center, e.loc).SendDigest(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n\n%s\n", n.Title, n.Message)
			return nil
		},
	}
}

func gcalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gcal",
		Short: "Google Calendar export",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "auth",
		Short: "Authorize access to Google Calendar",
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := setup()
			if err != nil {
				return err
			}
			defer e.Close()
			if e.vault == nil {
				return fmt.Errorf("keyring unavailable: cannot store the Google token")
			}

			oauthCfg, err := gcal.LoadConfig(e.cfg.GCal.CredentialsFile)
			if err != nil {
				return err
			}
			tok, err := gcal.Authorize(cmd.Context(), oauthCfg, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			if err := gcal.SaveToken(e.vault, tok); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Google Calendar autorizado.")
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "push [sheet-id]",
		Short: "Send events and task deadlines to Google Calendar",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup()
			if err != nil {
				return err
			}
			defer e.Close()
			if e.vault == nil {
				return fmt.Errorf("keyring unavailable: no Google token")
			}

			var sheetID string
			if len(args) == 1 {
				sheetID = args[0]
			}
			res, err := app.PushCalendar(cmd.Context(), e.cfg.GCal, e.vault, e.store, sheetID, e.loc)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d criados, %d atualizados\n", res.Created, res.Updated)
			return nil
		},
	})
	return cmd
}
