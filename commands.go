package main

import (
	"fmt"
	"io"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sadopc/daybook/internal/bootstrap"
	"github.com/sadopc/daybook/internal/config"
	"github.com/sadopc/daybook/internal/export"
	"github.com/sadopc/daybook/internal/logging"
	"github.com/sadopc/daybook/internal/planner"
	"github.com/sadopc/daybook/internal/tui"
	"github.com/sadopc/daybook/internal/views"
)

var version = "dev"

func newRootCommand() *cobra.Command {
	var cfgPath string

	root := &cobra.Command{
		Use:           "daybook",
		Short:         "Tasks, events and streaks in your terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cfgPath)
		},
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", "", "config file (default $XDG_CONFIG_HOME/daybook/config.toml)")

	root.AddCommand(
		newExportCommand(&cfgPath),
		newUpcomingCommand(&cfgPath),
		newVersionCommand(),
	)
	return root
}

func openApp(cfgPath string) (*bootstrap.App, error) {
	return bootstrap.Open(cfgPath, func(c config.Config) (*zap.Logger, error) {
		return logging.New(c.LogFile, c.LogLevel)
	})
}

func runTUI(cfgPath string) error {
	app, err := openApp(cfgPath)
	if err != nil {
		return err
	}
	defer app.Close()

	exportDir, err := os.UserHomeDir()
	if err != nil {
		exportDir = "."
	}

	p := tea.NewProgram(tui.NewApp(tui.Deps{
		Tasks:        app.Tasks,
		Events:       app.Events,
		Account:      app.Account,
		Prefs:        app.Prefs,
		Records:      app.Store,
		UpcomingDays: app.Config.UpcomingDays,
		ExportDir:    exportDir,
		AuthEnabled:  app.Config.Auth.Enabled,
		Now:          time.Now,
	}), tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		app.Log.Error("tui exited", zap.Error(err))
		return err
	}
	return nil
}

func newExportCommand(cfgPath *string) *cobra.Command {
	var format, out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write tasks (and events, for json) to a dated file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := export.Format(format)
			if f != export.FormatCSV && f != export.FormatJSON {
				return fmt.Errorf("unknown format %q (want csv or json)", format)
			}
			app, err := openApp(*cfgPath)
			if err != nil {
				return err
			}
			defer app.Close()

			path, err := export.Write(f, out, app.Tasks.Tasks(), app.Events.Events(), time.Now())
			if err != nil {
				return err
			}
			app.Log.Info("exported", zap.String("path", path), zap.String("format", format))
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", string(export.FormatCSV), "csv or json")
	cmd.Flags().StringVarP(&out, "out", "o", ".", "output directory")
	return cmd
}

func newUpcomingCommand(cfgPath *string) *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "upcoming",
		Short: "List pending tasks due in the next few days",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp(*cfgPath)
			if err != nil {
				return err
			}
			defer app.Close()

			if !cmd.Flags().Changed("days") {
				days = app.Config.UpcomingDays
			}
			printUpcoming(cmd.OutOrStdout(), views.Upcoming(app.Tasks.Tasks(), days, time.Now()))
			return nil
		},
	}
	cmd.Flags().IntVarP(&days, "days", "d", config.DefaultUpcomingDays, "window size in days")
	return cmd
}

func printUpcoming(w io.Writer, tasks []planner.Task) {
	if len(tasks) == 0 {
		fmt.Fprintln(w, "Nothing due.")
		return
	}
	for _, t := range tasks {
		fmt.Fprintf(w, "%s %s  %-6s  %-8s  %s\n", t.DueDate, t.DueTime, t.Priority, t.Subject, t.Title)
	}
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "daybook", version)
		},
	}
}
