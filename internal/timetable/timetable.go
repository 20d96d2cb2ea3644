// Package timetable resolves the current time slot and break-adjusted
// targets against a configured shift time table.
package timetable

import (
	"time"

	"github.com/stitchline/stitchline/internal/models"
	"github.com/stitchline/stitchline/internal/registry"
	"gorm.io/gorm"
)

// ActiveSlot returns the slot whose [start, end) interval contains now's
// wall-clock time, or nil when no slot matches (outside shift hours).
// First match in configured slot order wins; overlaps are not resolved.
func ActiveSlot(table *models.TimeTable, now time.Time) *models.TimeSlot {
	if table == nil {
		return nil
	}
	minute := now.Hour()*60 + now.Minute()
	for i := range table.Slots {
		slot := &table.Slots[i]
		start, ok := parseWallClock(slot.StartTime)
		if !ok {
			continue
		}
		end, ok := parseWallClock(slot.EndTime)
		if !ok {
			continue
		}
		if minute >= start && minute < end {
			return slot
		}
	}
	return nil
}

// TargetForSlot returns the break-adjusted target for a slot. With no break
// the target is the hourly target unchanged; with a break of d minutes it is
// ceil(hourlyTarget / 60 * (60 - d)).
func TargetForSlot(slot models.TimeSlot, hourlyTarget int, brk *models.Break) int {
	if slot.BreakID == nil || brk == nil {
		return hourlyTarget
	}
	working := 60 - brk.DurationMin
	if working <= 0 {
		return 0
	}
	if working >= 60 {
		return hourlyTarget
	}
	return (hourlyTarget*working + 59) / 60
}

// ResolveTarget looks up the slot's break and returns the adjusted target.
// An unresolvable break id degrades to the unadjusted hourly target.
func ResolveTarget(db *gorm.DB, slot models.TimeSlot, hourlyTarget int) int {
	if slot.BreakID == nil {
		return hourlyTarget
	}
	brk, err := registry.GetBreak(db, *slot.BreakID)
	if err != nil {
		return hourlyTarget
	}
	return TargetForSlot(slot, hourlyTarget, brk)
}

// TargetsBySlot returns the adjusted target for every slot of a table,
// index-aligned with the table's slot order.
func TargetsBySlot(db *gorm.DB, table *models.TimeTable, hourlyTarget int) []int {
	targets := make([]int, len(table.Slots))
	for i, slot := range table.Slots {
		targets[i] = ResolveTarget(db, slot, hourlyTarget)
	}
	return targets
}

// parseWallClock converts an "HH:MM" string to minutes since midnight.
func parseWallClock(s string) (int, bool) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, false
	}
	return t.Hour()*60 + t.Minute(), true
}
