package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/stitchline/stitchline/internal/dashboard"
	"github.com/stitchline/stitchline/internal/session"
)

func newBoardCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "board",
		Short: "Print the hourly production board",
		Long:  "Shows per-slot target, output and efficiency for the open session, plus the running cumulative.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBoard(cmd, configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Stitchline config file")
	return cmd
}

func runBoard(cmd *cobra.Command, configPath string) error {
	out := cmd.OutOrStdout()
	cfg, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}

	sess, err := session.FindOpen(gormDB, cfg.LineID)
	if err != nil {
		return err
	}
	if sess == nil {
		return fmt.Errorf("line %s has no open session", cfg.LineID)
	}

	board, err := dashboard.HourlyBoard(gormDB, sess, time.Now())
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Session %s  Line %s  Style %s  Balance %d\n\n", board.SessionID, board.LineID, board.StyleID, board.Balance)

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SLOT\tTARGET\tOUTPUT\tEFF\tCUMULATIVE\t")
	for _, row := range board.Rows {
		marker := ""
		if row.Current {
			marker = " *"
		}
		fmt.Fprintf(w, "%s-%s%s\t%d\t%d\t%s\t%s\t\n",
			row.Start, row.End, marker, row.Target, row.Output, row.Efficiency, row.Cumulative)
	}
	return w.Flush()
}
