package models

import (
	"reflect"
	"strings"
	"testing"
)

// gormTag extracts the gorm tag from a struct field.
func gormTag(t *testing.T, typ reflect.Type, fieldName string) string {
	t.Helper()
	f, ok := typ.FieldByName(fieldName)
	if !ok {
		t.Fatalf("%s.%s: field not found", typ.Name(), fieldName)
	}
	return f.Tag.Get("gorm")
}

// assertGormTag checks that a struct field's gorm tag contains the expected value.
func assertGormTag(t *testing.T, typ reflect.Type, fieldName, expected string) {
	t.Helper()
	tag := gormTag(t, typ, fieldName)
	if !strings.Contains(tag, expected) {
		t.Errorf("%s.%s gorm tag = %q, want to contain %q", typ.Name(), fieldName, tag, expected)
	}
}

// assertFieldType checks that a struct field has the expected Go type.
func assertFieldType(t *testing.T, typ reflect.Type, fieldName, expectedType string) {
	t.Helper()
	f, ok := typ.FieldByName(fieldName)
	if !ok {
		t.Fatalf("%s.%s: field not found", typ.Name(), fieldName)
	}
	got := f.Type.String()
	if got != expectedType {
		t.Errorf("%s.%s type = %q, want %q", typ.Name(), fieldName, got, expectedType)
	}
}

func TestSession_Fields(t *testing.T) {
	typ := reflect.TypeOf(Session{})

	assertGormTag(t, typ, "ID", "primaryKey")
	assertGormTag(t, typ, "ID", "size:32")
	assertGormTag(t, typ, "LineID", "not null")
	assertGormTag(t, typ, "LineID", "index")
	assertGormTag(t, typ, "ActiveLine", "uniqueIndex")
	assertGormTag(t, typ, "SupervisorID", "not null")
	assertGormTag(t, typ, "StyleID", "not null")
	assertGormTag(t, typ, "TimeTableID", "not null")
	assertGormTag(t, typ, "HourlyTarget", "not null")
	assertGormTag(t, typ, "Active", "default:true")
	assertGormTag(t, typ, "Active", "index")

	assertFieldType(t, typ, "ActiveLine", "*string")
	assertFieldType(t, typ, "StartedAt", "time.Time")
	assertFieldType(t, typ, "EndedAt", "*time.Time")
}

func TestProductionRecord_Fields(t *testing.T) {
	typ := reflect.TypeOf(ProductionRecord{})

	assertGormTag(t, typ, "ID", "primaryKey")
	assertGormTag(t, typ, "ID", "autoIncrement")
	assertGormTag(t, typ, "SessionID", "idx_session_slot")
	assertGormTag(t, typ, "SlotID", "idx_session_slot")
	assertGormTag(t, typ, "Units", "default:1")

	assertFieldType(t, typ, "ID", "uint")
	assertFieldType(t, typ, "Units", "int")
	assertFieldType(t, typ, "CreatedAt", "time.Time")
}

func TestTimeSlot_Fields(t *testing.T) {
	typ := reflect.TypeOf(TimeSlot{})

	assertGormTag(t, typ, "ID", "primaryKey")
	assertGormTag(t, typ, "TimeTableID", "not null")
	assertGormTag(t, typ, "TimeTableID", "index")
	assertGormTag(t, typ, "Position", "not null")
	assertGormTag(t, typ, "StartTime", "size:5")
	assertGormTag(t, typ, "EndTime", "size:5")

	assertFieldType(t, typ, "BreakID", "*string")
	assertFieldType(t, typ, "Break", "*models.Break")
}

func TestTimeTable_Relations(t *testing.T) {
	typ := reflect.TypeOf(TimeTable{})

	assertGormTag(t, typ, "Slots", "foreignKey:TimeTableID")
	assertFieldType(t, typ, "Slots", "[]models.TimeSlot")
}

func TestDowntimeRecord_Fields(t *testing.T) {
	typ := reflect.TypeOf(DowntimeRecord{})

	assertGormTag(t, typ, "ID", "primaryKey")
	assertGormTag(t, typ, "SessionID", "not null")
	assertGormTag(t, typ, "SessionID", "index")
	assertGormTag(t, typ, "Category", "size:16")
	assertGormTag(t, typ, "Status", "default:open")
	assertGormTag(t, typ, "Status", "index")
	assertGormTag(t, typ, "Acknowledged", "default:false")
	assertGormTag(t, typ, "Steps", "foreignKey:DowntimeID")

	assertFieldType(t, typ, "EndedAt", "*time.Time")
	assertFieldType(t, typ, "Steps", "[]models.ChangeoverStep")
}

func TestChangeoverStep_Fields(t *testing.T) {
	typ := reflect.TypeOf(ChangeoverStep{})

	// Composite unique index guards step re-completion.
	assertGormTag(t, typ, "DowntimeID", "idx_downtime_step")
	assertGormTag(t, typ, "Step", "idx_downtime_step")
	assertGormTag(t, typ, "CompletedBy", "not null")

	assertFieldType(t, typ, "CompletedAt", "time.Time")
}

func TestQualityEvent_Fields(t *testing.T) {
	typ := reflect.TypeOf(QualityEvent{})

	assertGormTag(t, typ, "ID", "primaryKey")
	assertGormTag(t, typ, "SessionID", "not null")
	assertGormTag(t, typ, "Kind", "index")
	assertGormTag(t, typ, "Count", "default:1")
	assertGormTag(t, typ, "RecordedAsProduced", "default:false")
	assertGormTag(t, typ, "SubmittedBy", "not null")
	assertGormTag(t, typ, "Status", "default:open")
}

func TestAttendanceEvent_Fields(t *testing.T) {
	typ := reflect.TypeOf(AttendanceEvent{})

	assertGormTag(t, typ, "ID", "primaryKey")
	assertGormTag(t, typ, "SessionID", "not null")
	assertGormTag(t, typ, "Kind", "index")
	assertGormTag(t, typ, "EmployeeID", "not null")
	assertGormTag(t, typ, "Status", "default:open")
}

func TestPersonnel_Fields(t *testing.T) {
	typ := reflect.TypeOf(Personnel{})

	assertGormTag(t, typ, "EmployeeNo", "uniqueIndex")
	assertGormTag(t, typ, "Role", "index")
	assertGormTag(t, typ, "Active", "default:true")
	assertFieldType(t, typ, "Credential", "string")
}
