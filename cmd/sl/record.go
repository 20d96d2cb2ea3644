package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/stitchline/stitchline/internal/production"
	"github.com/stitchline/stitchline/internal/registry"
	"github.com/stitchline/stitchline/internal/session"
	"github.com/stitchline/stitchline/internal/timetable"
	"gorm.io/gorm"
)

func newRecordCmd() *cobra.Command {
	var (
		configPath string
		slotID     string
		units      int
	)

	cmd := &cobra.Command{
		Use:   "record",
		Short: "Record produced units against the current slot",
		Long: `Posts produced units to the open session. Without --slot the unit goes
to the slot covering the current wall-clock time; outside shift hours an
explicit --slot is required.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecord(cmd, configPath, slotID, units)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Stitchline config file")
	cmd.Flags().StringVar(&slotID, "slot", "", "slot to post to (default: current slot)")
	cmd.Flags().IntVarP(&units, "units", "n", 1, "number of units to record")

	cmd.AddCommand(newRecordAdjustCmd())
	return cmd
}

func runRecord(cmd *cobra.Command, configPath, slotID string, units int) error {
	out := cmd.OutOrStdout()
	cfg, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}
	if units <= 0 {
		return fmt.Errorf("units must be positive")
	}

	sess, err := session.FindOpen(gormDB, cfg.LineID)
	if err != nil {
		return err
	}
	if sess == nil {
		return fmt.Errorf("line %s has no open session", cfg.LineID)
	}

	if slotID == "" {
		slotID, err = currentSlotID(gormDB, sess.TimeTableID)
		if err != nil {
			return err
		}
	}

	for i := 0; i < units; i++ {
		if err := production.RecordUnit(gormDB, sess, slotID); err != nil {
			return err
		}
	}

	balance, err := production.Balance(gormDB, sess)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Recorded %d unit(s) on slot %s\n", units, slotID)
	fmt.Fprintf(out, "Order balance: %d\n", balance)
	return nil
}

func newRecordAdjustCmd() *cobra.Command {
	var (
		configPath string
		slotID     string
		delta      int
		note       string
	)

	cmd := &cobra.Command{
		Use:   "adjust",
		Short: "Post a correction against a slot",
		Long: `Appends a correction record. Output history stays append-only; the
correction carries a note naming its cause.`,
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
			if err := production.Adjust(gormDB, sess.ID, slotID, delta, note); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Adjusted slot %s by %+d\n", slotID, delta)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Stitchline config file")
	cmd.Flags().StringVar(&slotID, "slot", "", "slot to adjust (required)")
	cmd.Flags().IntVar(&delta, "delta", 0, "signed unit correction (required)")
	cmd.Flags().StringVar(&note, "note", "", "reason for the correction (required)")
	cmd.MarkFlagRequired("slot")
	cmd.MarkFlagRequired("delta")
	cmd.MarkFlagRequired("note")
	return cmd
}

// currentSlotID resolves the slot covering the current wall-clock time.
func currentSlotID(gormDB *gorm.DB, timeTableID string) (string, error) {
	table, err := registry.GetTimeTable(gormDB, timeTableID)
	if err != nil {
		return "", err
	}
	slot := timetable.ActiveSlot(table, time.Now())
	if slot == nil {
		return "", fmt.Errorf("no slot covers the current time — pass --slot explicitly")
	}
	return slot.ID, nil
}
