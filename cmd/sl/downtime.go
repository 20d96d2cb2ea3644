package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/stitchline/stitchline/internal/downtime"
	"github.com/stitchline/stitchline/internal/models"
	"github.com/stitchline/stitchline/internal/notify"
	"github.com/stitchline/stitchline/internal/session"
)

func newDowntimeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "downtime",
		Short: "Downtime record commands",
	}

	cmd.AddCommand(newDowntimeSubmitCmd())
	cmd.AddCommand(newDowntimeListCmd())
	cmd.AddCommand(newDowntimeAckCmd())
	cmd.AddCommand(newDowntimeResolveCmd())
	cmd.AddCommand(newDowntimeStepCmd())
	return cmd
}

func newDowntimeSubmitCmd() *cobra.Command {
	var (
		configPath   string
		category     string
		reason       string
		machineID    string
		mechanicNo   string
		currentStyle string
		nextStyle    string
		changeTarget int
	)

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Open a downtime record",
		Long: `Opens a downtime record on the current session. Machine downtime needs
--machine; changeovers need --current-style and --next-style; supply and
generic stoppages need --reason.`,
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

			rec, err := downtime.Submit(gormDB, downtime.SubmitOpts{
				SessionID:      sess.ID,
				LineID:         cfg.LineID,
				Category:       category,
				Reason:         reason,
				MachineID:      machineID,
				MechanicNo:     mechanicNo,
				CurrentStyleID: currentStyle,
				NextStyleID:    nextStyle,
				ChangeTarget:   changeTarget,
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Opened %s downtime %s\n", rec.Category, rec.ID)
			announce(cmd, cfg, notify.FormatDowntimeSubmitted(rec))
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Stitchline config file")
	cmd.Flags().StringVar(&category, "category", "", "machine | changeover | supply | generic (required)")
	cmd.Flags().StringVar(&reason, "reason", "", "what stopped the line")
	cmd.Flags().StringVar(&machineID, "machine", "", "machine identifier (machine downtime)")
	cmd.Flags().StringVar(&mechanicNo, "mechanic", "", "pre-selected mechanic employee number (optional)")
	cmd.Flags().StringVar(&currentStyle, "current-style", "", "style being replaced (changeover)")
	cmd.Flags().StringVar(&nextStyle, "next-style", "", "style being set up (changeover)")
	cmd.Flags().IntVar(&changeTarget, "change-target", 0, "target minutes for the changeover")
	cmd.MarkFlagRequired("category")
	return cmd
}

func newDowntimeListCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List open downtime records",
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

			recs, err := downtime.ListOpen(gormDB, sess.ID)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(recs) == 0 {
				fmt.Fprintln(out, "No open downtime.")
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tCATEGORY\tSINCE\tACK\tREASON\t")
			for _, r := range recs {
				ack := "-"
				if r.Category == models.DowntimeMachine {
					ack = "no"
					if r.Acknowledged {
						ack = r.AcknowledgedBy
					}
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t\n",
					r.ID, r.Category, r.StartedAt.Format("15:04"), ack, r.Reason)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Stitchline config file")
	return cmd
}

func newDowntimeAckCmd() *cobra.Command {
	var (
		configPath string
		mechanicNo string
		credential string
	)

	cmd := &cobra.Command{
		Use:   "ack <downtime-id>",
		Short: "Acknowledge a machine downtime as the responding mechanic",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}
			cred, err := resolveCredential(cmd, credential, mechanicNo)
			if err != nil {
				return err
			}
			rec, err := downtime.Acknowledge(gormDB, gateFromConfig(cfg, gormDB), args[0], mechanicNo, cred)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Downtime %s acknowledged by %s\n", rec.ID, rec.AcknowledgedBy)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Stitchline config file")
	cmd.Flags().StringVar(&mechanicNo, "mechanic", "", "mechanic employee number (required)")
	cmd.Flags().StringVar(&credential, "credential", "", "mechanic credential (prompted when omitted)")
	cmd.MarkFlagRequired("mechanic")
	return cmd
}

func newDowntimeResolveCmd() *cobra.Command {
	var (
		configPath   string
		supervisorNo string
		credential   string
	)

	cmd := &cobra.Command{
		Use:   "resolve <downtime-id>",
		Short: "Close a downtime record under supervisor sign-off",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}
			cred, err := resolveCredential(cmd, credential, supervisorNo)
			if err != nil {
				return err
			}
			rec, err := downtime.Resolve(gormDB, gateFromConfig(cfg, gormDB), args[0], supervisorNo, cred)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Downtime %s resolved by %s\n", rec.ID, rec.ResolvedBy)
			announce(cmd, cfg, notify.FormatDowntimeResolved(rec))
			return nil
		},
	}

	cmd.Args = cobra.ExactArgs(1)
	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Stitchline config file")
	cmd.Flags().StringVar(&supervisorNo, "supervisor", "", "supervisor employee number (required)")
	cmd.Flags().StringVar(&credential, "credential", "", "supervisor credential (prompted when omitted)")
	cmd.MarkFlagRequired("supervisor")
	return cmd
}

func newDowntimeStepCmd() *cobra.Command {
	var (
		configPath string
		actorNo    string
		credential string
	)

	cmd := &cobra.Command{
		Use:   "step <downtime-id> <step>",
		Short: "Complete a changeover checklist step",
		Long: fmt.Sprintf(`Marks one checklist step complete. Steps: %s.
The qc_approval step needs a QC sign-off, the rest a supervisor. The
changeover closes automatically when the last step lands.`,
			strings.Join(downtime.ChecklistSteps, ", ")),
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}
			cred, err := resolveCredential(cmd, credential, actorNo)
			if err != nil {
				return err
			}
			rec, err := downtime.CompleteStep(gormDB, gateFromConfig(cfg, gormDB), args[0], args[1], actorNo, cred)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Step %s complete (%d/%d)\n", args[1], len(rec.Steps), len(downtime.ChecklistSteps))
			if rec.Status == models.DowntimeClosed {
				fmt.Fprintf(out, "Changeover %s closed.\n", rec.ID)
				announce(cmd, cfg, notify.FormatDowntimeResolved(rec))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Stitchline config file")
	cmd.Flags().StringVar(&actorNo, "by", "", "employee number signing off (required)")
	cmd.Flags().StringVar(&credential, "credential", "", "credential (prompted when omitted)")
	cmd.MarkFlagRequired("by")
	return cmd
}
