package dashboard

import (
	"fmt"
	"time"

	"github.com/stitchline/stitchline/internal/downtime"
	"github.com/stitchline/stitchline/internal/efficiency"
	"github.com/stitchline/stitchline/internal/metrics"
	"github.com/stitchline/stitchline/internal/models"
	"github.com/stitchline/stitchline/internal/production"
	"github.com/stitchline/stitchline/internal/registry"
	"github.com/stitchline/stitchline/internal/session"
	"github.com/stitchline/stitchline/internal/timetable"
	"gorm.io/gorm"
)

// BoardRow is one slot of the hourly board.
type BoardRow struct {
	SlotID     string `json:"slot_id"`
	Start      string `json:"start"`
	End        string `json:"end"`
	Target     int    `json:"target"`
	Output     int    `json:"output"`
	Efficiency string `json:"efficiency"`
	Cumulative string `json:"cumulative"`
	Current    bool   `json:"current"`
}

// Board holds the full hourly board for a session.
type Board struct {
	SessionID string     `json:"session_id"`
	LineID    string     `json:"line_id"`
	StyleID   string     `json:"style_id"`
	Balance   int        `json:"balance"`
	Rows      []BoardRow `json:"rows"`
}

// HourlyBoard builds the per-slot target/output/efficiency board for a
// session. Rows are index-aligned with the time table's slot order; the
// cumulative column covers slots up to and including the row's.
func HourlyBoard(db *gorm.DB, sess *models.Session, now time.Time) (*Board, error) {
	if sess == nil || sess.ID == "" {
		return nil, fmt.Errorf("dashboard: session is required")
	}

	table, err := registry.GetTimeTable(db, sess.TimeTableID)
	if err != nil {
		return nil, err
	}
	targets := timetable.TargetsBySlot(db, table, sess.HourlyTarget)
	outputs, err := production.OutputsBySlot(db, sess)
	if err != nil {
		return nil, err
	}
	balance, err := production.Balance(db, sess)
	if err != nil {
		return nil, err
	}

	active := timetable.ActiveSlot(table, now)
	rows := make([]BoardRow, len(table.Slots))
	for i, slot := range table.Slots {
		rows[i] = BoardRow{
			SlotID:     slot.ID,
			Start:      slot.StartTime,
			End:        slot.EndTime,
			Target:     targets[i],
			Output:     outputs[i],
			Efficiency: efficiency.SlotEfficiency(outputs[i], targets[i]),
			Cumulative: efficiency.CumulativeEfficiency(outputs, targets, i),
			Current:    active != nil && active.ID == slot.ID,
		}
	}

	return &Board{
		SessionID: sess.ID,
		LineID:    sess.LineID,
		StyleID:   sess.StyleID,
		Balance:   balance,
		Rows:      rows,
	}, nil
}

// Status summarizes the line for the dashboard header.
type Status struct {
	LineID       string          `json:"line_id"`
	SessionID    string          `json:"session_id,omitempty"`
	StyleID      string          `json:"style_id,omitempty"`
	HourlyTarget int             `json:"hourly_target,omitempty"`
	StartedAt    *time.Time      `json:"started_at,omitempty"`
	OpenDowntime int             `json:"open_downtime"`
	Counts       *metrics.Counts `json:"counts,omitempty"`
}

// LineStatus returns the line's open session, its open-event counts, and
// the open downtime depth. An idle line yields a Status with no session.
func LineStatus(db *gorm.DB, lineID string) (*Status, error) {
	sess, err := session.FindOpen(db, lineID)
	if err != nil {
		return nil, err
	}
	status := &Status{LineID: lineID}
	if sess == nil {
		return status, nil
	}

	status.SessionID = sess.ID
	status.StyleID = sess.StyleID
	status.HourlyTarget = sess.HourlyTarget
	status.StartedAt = &sess.StartedAt

	counts, err := metrics.Snapshot(db, sess.ID)
	if err != nil {
		return nil, err
	}
	status.Counts = &counts

	open, err := downtime.ListOpen(db, sess.ID)
	if err != nil {
		return nil, err
	}
	status.OpenDowntime = len(open)
	return status, nil
}
