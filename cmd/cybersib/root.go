package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/cybersib/cybersib/internal/app"
	"github.com/cybersib/cybersib/internal/buildinfo"
	"github.com/cybersib/cybersib/internal/cli"
	"github.com/cybersib/cybersib/internal/config"
)

// loadConfig is swapped in tests.
var loadConfig = config.Load

type flags struct {
	configFile string
	dataDir    string
	driver     string
	dsn        string
	logLevel   string
	refresh    int
}

// args rebuilds the short-form arguments config.Load understands from the
// flags set on cmd.
func (f *flags) args(cmd *cobra.Command) []string {
	fs := cmd.Flags()
	var args []string
	add := func(name, short, value string) {
		if fs.Changed(name) {
			args = append(args, short, value)
		}
	}
	add("config", "-c", f.configFile)
	add("data-dir", "-d", f.dataDir)
	add("store", "-s", f.driver)
	add("dsn", "-n", f.dsn)
	add("log-level", "-l", f.logLevel)
	add("refresh", "-i", strconv.Itoa(f.refresh))
	return args
}

func newRootCmd() *cobra.Command {
	f := &flags{}

	open := func(cmd *cobra.Command, interactive bool) (*app.App, error) {
		cfg, err := loadConfig(f.args(cmd))
		if err != nil {
			return nil, err
		}
		return app.NewApp(cmd.Context(), cfg, app.Options{Interactive: interactive})
	}

	root := &cobra.Command{
		Use:   "cybersib",
		Short: "CyberSib cyber range terminal client",
		Long: `CyberSib is a training cyber range for information security students.

Run without arguments to start the interactive terminal: sign in, start and
complete labs, track achievements and ranks, and use the simulated shell.`,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := open(cmd, true)
			if err != nil {
				return err
			}
			a.Run(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout())
			return a.Close(context.WithoutCancel(cmd.Context()))
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&f.configFile, "config", "c", "", "config file (JSON or YAML)")
	pf.StringVarP(&f.dataDir, "data-dir", "d", "", "data directory")
	pf.StringVarP(&f.driver, "store", "s", "", "store driver: sqlite, postgres, redis, memory")
	pf.StringVarP(&f.dsn, "dsn", "n", "", "store DSN")
	pf.StringVarP(&f.logLevel, "log-level", "l", "", "log level")
	pf.IntVarP(&f.refresh, "refresh", "i", 0, "status refresh interval in seconds")

	root.AddCommand(newLeaderboardCmd(open), newAuditCmd(open), newVersionCmd())
	return root
}

type opener func(cmd *cobra.Command, interactive bool) (*app.App, error)

func newLeaderboardCmd(open opener) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Print the CTF scoreboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := open(cmd, false)
			if err != nil {
				return err
			}
			defer a.Close(context.WithoutCancel(cmd.Context()))

			fmt.Fprintln(cmd.OutOrStdout(), cli.LeaderboardTable(a.Progress.Leaderboard(limit)).View(cli.DefaultStyles()))
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 10, "number of rows")
	return cmd
}

func newAuditCmd(open opener) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Print the most recent security log entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := open(cmd, false)
			if err != nil {
				return err
			}
			defer a.Close(context.WithoutCancel(cmd.Context()))

			fmt.Fprintln(cmd.OutOrStdout(), cli.AuditTable(a.Store().Logs(limit)).View(cli.DefaultStyles()))
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "number of entries")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			buildinfo.PrintBuildData(cmd.OutOrStdout())
		},
	}
}
