package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/stitchline/stitchline/internal/models"
	"github.com/stitchline/stitchline/internal/notify"
	"github.com/stitchline/stitchline/internal/production"
	"github.com/stitchline/stitchline/internal/session"
)

func newSessionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Shift session lifecycle commands",
	}

	cmd.AddCommand(newSessionStartCmd())
	cmd.AddCommand(newSessionResumeCmd())
	cmd.AddCommand(newSessionEndCmd())
	cmd.AddCommand(newSessionStatusCmd())
	return cmd
}

func newSessionStartCmd() *cobra.Command {
	var (
		configPath   string
		styleID      string
		timeTableID  string
		hourlyTarget int
		supervisorNo string
		credential   string
	)

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start a shift session on this terminal's line",
		Long: `Opens a session on the configured line. Fails when the line already has
an open session; use "sl session resume" or "sl session end" first.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSessionStart(cmd, configPath, styleID, timeTableID, hourlyTarget, supervisorNo, credential)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Stitchline config file")
	cmd.Flags().StringVar(&styleID, "style", "", "style to produce (required)")
	cmd.Flags().StringVar(&timeTableID, "timetable", "", "time table for the shift (required)")
	cmd.Flags().IntVar(&hourlyTarget, "target", 0, "hourly output target (required)")
	cmd.Flags().StringVar(&supervisorNo, "supervisor", "", "supervisor employee number (required)")
	cmd.Flags().StringVar(&credential, "credential", "", "supervisor credential (prompted when omitted)")
	cmd.MarkFlagRequired("style")
	cmd.MarkFlagRequired("timetable")
	cmd.MarkFlagRequired("target")
	cmd.MarkFlagRequired("supervisor")
	return cmd
}

func runSessionStart(cmd *cobra.Command, configPath, styleID, timeTableID string, hourlyTarget int, supervisorNo, credential string) error {
	out := cmd.OutOrStdout()
	cfg, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}

	supervisor, err := verifiedPerson(cmd, cfg, gormDB, models.RoleSupervisor, supervisorNo, credential)
	if err != nil {
		return err
	}

	sess, err := session.Start(gormDB, session.StartOpts{
		LineID:       cfg.LineID,
		SupervisorID: supervisor.ID,
		StyleID:      styleID,
		TimeTableID:  timeTableID,
		HourlyTarget: hourlyTarget,
	})
	if err != nil {
		if errors.Is(err, session.ErrConflict) {
			fmt.Fprintf(out, "Line %s already has an open session.\n", cfg.LineID)
			fmt.Fprintln(out, "Resume it with \"sl session resume\" or end it with \"sl session end\".")
		}
		return err
	}

	fmt.Fprintf(out, "Started session %s on line %s\n", sess.ID, sess.LineID)
	fmt.Fprintf(out, "Style: %s  Time table: %s  Hourly target: %d\n", sess.StyleID, sess.TimeTableID, sess.HourlyTarget)

	announce(cmd, cfg, notify.FormatSessionStarted(sess))
	return nil
}

func newSessionResumeCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "resume",
		Short: "Resume the line's open session",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}
			open, err := session.FindOpen(gormDB, cfg.LineID)
			if err != nil {
				return err
			}
			if open == nil {
				return fmt.Errorf("line %s has no open session — start one with \"sl session start\"", cfg.LineID)
			}
			sess, err := session.Resume(gormDB, open.ID)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Resumed session %s on line %s\n", sess.ID, sess.LineID)
			fmt.Fprintf(out, "Style: %s (%s)  Started: %s\n", sess.Style.Number, sess.StyleID, sess.StartedAt.Format("15:04"))
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Stitchline config file")
	return cmd
}

func newSessionEndCmd() *cobra.Command {
	var (
		configPath   string
		supervisorNo string
		credential   string
	)

	cmd := &cobra.Command{
		Use:   "end",
		Short: "End the line's open session",
		Long:  "Closes the session and every downtime record still open under it.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSessionEnd(cmd, configPath, supervisorNo, credential)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Stitchline config file")
	cmd.Flags().StringVar(&supervisorNo, "supervisor", "", "supervisor employee number (required)")
	cmd.Flags().StringVar(&credential, "credential", "", "supervisor credential (prompted when omitted)")
	cmd.MarkFlagRequired("supervisor")
	return cmd
}

func runSessionEnd(cmd *cobra.Command, configPath, supervisorNo, credential string) error {
	out := cmd.OutOrStdout()
	cfg, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}

	if _, err := verifiedPerson(cmd, cfg, gormDB, models.RoleSupervisor, supervisorNo, credential); err != nil {
		return err
	}

	sess, err := session.FindOpen(gormDB, cfg.LineID)
	if err != nil {
		return err
	}
	if sess == nil {
		return fmt.Errorf("line %s has no open session", cfg.LineID)
	}

	if err := session.End(gormDB, sess); err != nil {
		return err
	}
	fmt.Fprintf(out, "Ended session %s on line %s at %s\n", sess.ID, sess.LineID, sess.EndedAt.Format("15:04"))

	announce(cmd, cfg, notify.FormatSessionEnded(sess))
	return nil
}

func newSessionStatusCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the line's session state",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			sess, err := session.FindOpen(gormDB, cfg.LineID)
			if err != nil {
				return err
			}
			if sess == nil {
				fmt.Fprintf(out, "Line %s is idle — no open session.\n", cfg.LineID)
				return nil
			}

			balance, err := production.Balance(gormDB, sess)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Session %s on line %s\n", sess.ID, sess.LineID)
			fmt.Fprintf(out, "Style: %s  Time table: %s  Hourly target: %d\n", sess.StyleID, sess.TimeTableID, sess.HourlyTarget)
			fmt.Fprintf(out, "Started: %s  Order balance: %d\n", sess.StartedAt.Format("2006-01-02 15:04"), balance)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Stitchline config file")
	return cmd
}
