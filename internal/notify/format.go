package notify

import (
	"fmt"
	"strings"

	"github.com/stitchline/stitchline/internal/models"
)

// Color constants for event severity.
const (
	ColorSuccess = "#36a64f"
	ColorInfo    = "#2196f3"
	ColorWarning = "#ff9800"
	ColorError   = "#e53935"
)

// severityColor maps a severity string to a sidebar color.
func severityColor(severity string) string {
	switch severity {
	case "success":
		return ColorSuccess
	case "info":
		return ColorInfo
	case "warning":
		return ColorWarning
	case "error":
		return ColorError
	default:
		return ColorInfo
	}
}

// downtimeSeverity returns the appropriate severity for a downtime category.
func downtimeSeverity(category string) string {
	switch category {
	case models.DowntimeMachine:
		return "error"
	case models.DowntimeChangeover:
		return "info"
	default:
		return "warning"
	}
}

// FormatSessionStarted formats a session start announcement.
func FormatSessionStarted(sess *models.Session) Event {
	fields := []Field{
		{Name: "Line", Value: sess.LineID, Short: true},
		{Name: "Style", Value: sess.StyleID, Short: true},
		{Name: "Hourly target", Value: fmt.Sprintf("%d", sess.HourlyTarget), Short: true},
	}
	return Event{
		Title:    fmt.Sprintf("Shift started on %s", sess.LineID),
		Body:     fmt.Sprintf("Session %s is now tracking production.", sess.ID),
		Severity: "info",
		Color:    ColorInfo,
		Fields:   fields,
	}
}

// FormatSessionEnded formats a session end announcement.
func FormatSessionEnded(sess *models.Session) Event {
	return Event{
		Title:    fmt.Sprintf("Shift ended on %s", sess.LineID),
		Body:     fmt.Sprintf("Session %s is closed.", sess.ID),
		Severity: "success",
		Color:    ColorSuccess,
		Fields: []Field{
			{Name: "Line", Value: sess.LineID, Short: true},
			{Name: "Session", Value: sess.ID, Short: true},
		},
	}
}

// FormatDowntimeSubmitted formats a downtime submission announcement.
func FormatDowntimeSubmitted(rec *models.DowntimeRecord) Event {
	severity := downtimeSeverity(rec.Category)

	var bodyParts []string
	if rec.Reason != "" {
		bodyParts = append(bodyParts, rec.Reason)
	}
	if rec.MachineID != "" {
		bodyParts = append(bodyParts, fmt.Sprintf("Machine %s", rec.MachineID))
	}
	body := strings.Join(bodyParts, "\n")

	fields := []Field{
		{Name: "Category", Value: rec.Category, Short: true},
		{Name: "Record", Value: rec.ID, Short: true},
	}
	if rec.MechanicNo != "" {
		fields = append(fields, Field{Name: "Mechanic", Value: rec.MechanicNo, Short: true})
	}

	return Event{
		Title:    fmt.Sprintf("Downtime reported (%s)", rec.Category),
		Body:     body,
		Severity: severity,
		Color:    severityColor(severity),
		Fields:   fields,
	}
}

// FormatDowntimeResolved formats a downtime resolution announcement.
func FormatDowntimeResolved(rec *models.DowntimeRecord) Event {
	return Event{
		Title:    fmt.Sprintf("Downtime %s resolved", rec.ID),
		Body:     rec.Reason,
		Severity: "success",
		Color:    ColorSuccess,
		Fields: []Field{
			{Name: "Category", Value: rec.Category, Short: true},
			{Name: "Record", Value: rec.ID, Short: true},
		},
	}
}

// FormatQualitySubmitted formats a reject or rework announcement.
func FormatQualitySubmitted(rec *models.QualityEvent) Event {
	severity := "warning"
	if rec.Kind == models.QualityReject {
		severity = "error"
	}
	fields := []Field{
		{Name: "Kind", Value: rec.Kind, Short: true},
		{Name: "Count", Value: fmt.Sprintf("%d", rec.Count), Short: true},
	}
	if rec.Operation != "" {
		fields = append(fields, Field{Name: "Operation", Value: rec.Operation, Short: true})
	}
	return Event{
		Title:    fmt.Sprintf("%d unit(s) flagged %s", rec.Count, rec.Kind),
		Body:     rec.Reason,
		Severity: severity,
		Color:    severityColor(severity),
		Fields:   fields,
	}
}

// FormatAttendanceSubmitted formats a late or absent announcement.
func FormatAttendanceSubmitted(rec *models.AttendanceEvent) Event {
	return Event{
		Title:    fmt.Sprintf("Employee %s marked %s", rec.EmployeeID, rec.Kind),
		Body:     rec.Reason,
		Severity: "info",
		Color:    ColorInfo,
		Fields: []Field{
			{Name: "Employee", Value: rec.EmployeeID, Short: true},
			{Name: "Kind", Value: rec.Kind, Short: true},
		},
	}
}
