package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/stitchline/stitchline/internal/attendance"
	"github.com/stitchline/stitchline/internal/notify"
	"github.com/stitchline/stitchline/internal/session"
)

func newAttendanceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "attendance",
		Short: "Late arrival and absence commands",
	}

	cmd.AddCommand(newAttendanceSubmitCmd())
	cmd.AddCommand(newAttendanceReturnCmd())
	cmd.AddCommand(newAttendanceConvertCmd())
	cmd.AddCommand(newAttendanceCloseCmd())
	return cmd
}

func newAttendanceSubmitCmd() *cobra.Command {
	var (
		configPath   string
		kind         string
		employeeID   string
		reason       string
		supervisorNo string
		credential   string
	)

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Record a late arrival or absence",
		RunE: func(cmd *cobra.Command, args []string) error {
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
			cred, err := resolveCredential(cmd, credential, supervisorNo)
			if err != nil {
				return err
			}

			rec, err := attendance.Submit(gormDB, gateFromConfig(cfg, gormDB), attendance.SubmitOpts{
				SessionID:  sess.ID,
				Kind:       kind,
				EmployeeID: employeeID,
				Reason:     reason,
			}, supervisorNo, cred)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Recorded %s %s for employee %s\n", rec.Kind, rec.ID, rec.EmployeeID)
			announce(cmd, cfg, notify.FormatAttendanceSubmitted(rec))
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Stitchline config file")
	cmd.Flags().StringVar(&kind, "kind", "", "late | absent (required)")
	cmd.Flags().StringVar(&employeeID, "employee", "", "employee ID (required)")
	cmd.Flags().StringVar(&reason, "reason", "", "stated reason")
	cmd.Flags().StringVar(&supervisorNo, "supervisor", "", "supervisor employee number (required)")
	cmd.Flags().StringVar(&credential, "credential", "", "supervisor credential (prompted when omitted)")
	cmd.MarkFlagRequired("kind")
	cmd.MarkFlagRequired("employee")
	cmd.MarkFlagRequired("supervisor")
	return cmd
}

func newAttendanceReturnCmd() *cobra.Command {
	var (
		configPath   string
		supervisorNo string
		credential   string
	)

	cmd := &cobra.Command{
		Use:   "return <event-id>",
		Short: "Close a late record: the employee showed up",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}
			cred, err := resolveCredential(cmd, credential, supervisorNo)
			if err != nil {
				return err
			}
			rec, err := attendance.MarkReturned(gormDB, gateFromConfig(cfg, gormDB), args[0], supervisorNo, cred)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Late record %s closed as returned\n", rec.ID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Stitchline config file")
	cmd.Flags().StringVar(&supervisorNo, "supervisor", "", "supervisor employee number (required)")
	cmd.Flags().StringVar(&credential, "credential", "", "supervisor credential (prompted when omitted)")
	cmd.MarkFlagRequired("supervisor")
	return cmd
}

func newAttendanceConvertCmd() *cobra.Command {
	var (
		configPath   string
		supervisorNo string
		credential   string
	)

	cmd := &cobra.Command{
		Use:   "convert <event-id>",
		Short: "Convert a late record into an absence",
		Long: `Closes the late record as "left" and opens a new absence for the same
employee. The late record itself is never mutated into an absence.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}
			cred, err := resolveCredential(cmd, credential, supervisorNo)
			if err != nil {
				return err
			}
			rec, err := attendance.ConvertToAbsent(gormDB, gateFromConfig(cfg, gormDB), args[0], supervisorNo, cred)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Opened absence %s for employee %s\n", rec.ID, rec.EmployeeID)
			announce(cmd, cfg, notify.FormatAttendanceSubmitted(rec))
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Stitchline config file")
	cmd.Flags().StringVar(&supervisorNo, "supervisor", "", "supervisor employee number (required)")
	cmd.Flags().StringVar(&credential, "credential", "", "supervisor credential (prompted when omitted)")
	cmd.MarkFlagRequired("supervisor")
	return cmd
}

func newAttendanceCloseCmd() *cobra.Command {
	var (
		configPath   string
		supervisorNo string
		credential   string
	)

	cmd := &cobra.Command{
		Use:   "close <event-id>",
		Short: "Close an absence record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}
			cred, err := resolveCredential(cmd, credential, supervisorNo)
			if err != nil {
				return err
			}
			rec, err := attendance.Close(gormDB, gateFromConfig(cfg, gormDB), args[0], supervisorNo, cred)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Absence %s closed\n", rec.ID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Stitchline config file")
	cmd.Flags().StringVar(&supervisorNo, "supervisor", "", "supervisor employee number (required)")
	cmd.Flags().StringVar(&credential, "credential", "", "supervisor credential (prompted when omitted)")
	cmd.MarkFlagRequired("supervisor")
	return cmd
}
