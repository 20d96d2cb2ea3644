package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/stitchline/stitchline/internal/notify"
	"github.com/stitchline/stitchline/internal/quality"
	"github.com/stitchline/stitchline/internal/session"
)

func newQualityCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quality",
		Short: "Reject and rework commands",
	}

	cmd.AddCommand(newQualitySubmitCmd())
	cmd.AddCommand(newQualityDisposeCmd())
	return cmd
}

func newQualitySubmitCmd() *cobra.Command {
	var (
		configPath string
		kind       string
		reason     string
		operation  string
		count      int
		comments   string
		slotID     string
		asProduced bool
		qcNo       string
		credential string
	)

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit a reject or rework under QC attestation",
		Long: `Creates an open quality event. The record does not exist until the QC
verifies; a failed credential writes nothing.`,
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
			cred, err := resolveCredential(cmd, credential, qcNo)
			if err != nil {
				return err
			}

			rec, err := quality.Submit(gormDB, gateFromConfig(cfg, gormDB), quality.SubmitOpts{
				SessionID:          sess.ID,
				Kind:               kind,
				Reason:             reason,
				Operation:          operation,
				Count:              count,
				Comments:           comments,
				SlotID:             slotID,
				RecordedAsProduced: asProduced,
			}, qcNo, cred)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Submitted %s %s (%d unit(s))\n", rec.Kind, rec.ID, rec.Count)
			announce(cmd, cfg, notify.FormatQualitySubmitted(rec))
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Stitchline config file")
	cmd.Flags().StringVar(&kind, "kind", "", "reject | rework (required)")
	cmd.Flags().StringVar(&reason, "reason", "", "defect reason (required)")
	cmd.Flags().StringVar(&operation, "operation", "", "operation where the defect was found")
	cmd.Flags().IntVar(&count, "count", 1, "number of defective units")
	cmd.Flags().StringVar(&comments, "comments", "", "free-text comments")
	cmd.Flags().StringVar(&slotID, "slot", "", "slot the units were posted to (for produced rejects)")
	cmd.Flags().BoolVar(&asProduced, "as-produced", false, "units were already counted as output")
	cmd.Flags().StringVar(&qcNo, "qc", "", "QC employee number (required)")
	cmd.Flags().StringVar(&credential, "credential", "", "QC credential (prompted when omitted)")
	cmd.MarkFlagRequired("kind")
	cmd.MarkFlagRequired("reason")
	cmd.MarkFlagRequired("qc")
	return cmd
}

func newQualityDisposeCmd() *cobra.Command {
	var (
		configPath string
		action     string
		qcNo       string
		credential string
	)

	cmd := &cobra.Command{
		Use:   "dispose <event-id>",
		Short: "Dispose an open quality event",
		Long: `Applies a disposition under QC sign-off. Rejects accept mark_perfect and
close; reworks accept mark_perfect and convert_to_reject. Closing a reject
flagged as produced backs its count out of the slot's output.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}
			cred, err := resolveCredential(cmd, credential, qcNo)
			if err != nil {
				return err
			}

			rec, err := quality.Dispose(gormDB, gateFromConfig(cfg, gormDB), args[0], action, qcNo, cred)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if action == quality.ActionConvertToReject {
				fmt.Fprintf(out, "Converted to reject %s (open, needs its own disposition)\n", rec.ID)
				return nil
			}
			fmt.Fprintf(out, "Event %s is now %s\n", rec.ID, rec.Status)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Stitchline config file")
	cmd.Flags().StringVar(&action, "action", "", "mark_perfect | close | convert_to_reject (required)")
	cmd.Flags().StringVar(&qcNo, "qc", "", "QC employee number (required)")
	cmd.Flags().StringVar(&credential, "credential", "", "QC credential (prompted when omitted)")
	cmd.MarkFlagRequired("action")
	cmd.MarkFlagRequired("qc")
	return cmd
}
