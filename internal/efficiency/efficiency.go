// Package efficiency computes per-slot and cumulative efficiency
// percentages from output/target series.
package efficiency

import "fmt"

// NotApplicable is shown when a target of zero makes the ratio meaningless.
const NotApplicable = "N/A"

// SlotEfficiency returns output/target as a two-decimal percentage string,
// or "N/A" when the target is zero.
func SlotEfficiency(output, target int) string {
	if target == 0 {
		return NotApplicable
	}
	return formatPercent(float64(output) / float64(target) * 100)
}

// CumulativeEfficiency sums outputs and targets over the closed range
// [0, upTo] and returns the combined percentage. A zero-target slot adds
// nothing to the target sum but its output still counts; "N/A" only when
// the summed target is zero. upTo is clamped to the series length.
func CumulativeEfficiency(outputs, targets []int, upTo int) string {
	if upTo >= len(targets) {
		upTo = len(targets) - 1
	}
	if upTo >= len(outputs) {
		upTo = len(outputs) - 1
	}
	totalOutput, totalTarget := 0, 0
	for i := 0; i <= upTo; i++ {
		totalOutput += outputs[i]
		totalTarget += targets[i]
	}
	return SlotEfficiency(totalOutput, totalTarget)
}

func formatPercent(pct float64) string {
	return fmt.Sprintf("%.2f%%", pct)
}
