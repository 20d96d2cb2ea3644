package attendance

import (
	"errors"
	"testing"

	"github.com/stitchline/stitchline/internal/models"
	"github.com/stitchline/stitchline/internal/verify"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := gdb.AutoMigrate(&models.Personnel{}, &models.AttendanceEvent{}); err != nil {
		t.Fatalf("auto-migrate: %v", err)
	}
	return gdb
}

func testGate(t *testing.T, gdb *gorm.DB) *verify.Gate {
	t.Helper()
	if err := gdb.Create(&models.Personnel{
		ID: "p1", Name: "Sup", EmployeeNo: "S1",
		Role: models.RoleSupervisor, Credential: "pw", Active: true,
	}).Error; err != nil {
		t.Fatalf("seed personnel: %v", err)
	}
	return verify.NewGate(gdb, verify.Plain{})
}

func submitLate(t *testing.T, gdb *gorm.DB, gate *verify.Gate) *models.AttendanceEvent {
	t.Helper()
	rec, err := Submit(gdb, gate, SubmitOpts{
		SessionID: "ses-00001", Kind: models.AttendanceLate,
		EmployeeID: "per-42", Reason: "traffic",
	}, "S1", "pw")
	if err != nil {
		t.Fatalf("submit late: %v", err)
	}
	return rec
}

func TestSubmit_SupervisorGated(t *testing.T) {
	gdb := openTestDB(t)
	gate := testGate(t, gdb)

	_, err := Submit(gdb, gate, SubmitOpts{
		SessionID: "ses-00001", Kind: models.AttendanceLate, EmployeeID: "per-42",
	}, "S1", "wrong")
	if !errors.Is(err, verify.ErrFailed) {
		t.Errorf("bad credential err = %v, want verify.ErrFailed", err)
	}
	var count int64
	gdb.Model(&models.AttendanceEvent{}).Count(&count)
	if count != 0 {
		t.Errorf("record count = %d, want 0 after failed gate", count)
	}

	rec := submitLate(t, gdb, gate)
	if rec.Status != models.AttendanceOpen || rec.Kind != models.AttendanceLate {
		t.Errorf("record = %+v", rec)
	}
}

func TestMarkReturned(t *testing.T) {
	gdb := openTestDB(t)
	gate := testGate(t, gdb)
	rec := submitLate(t, gdb, gate)

	returned, err := MarkReturned(gdb, gate, rec.ID, "S1", "pw")
	if err != nil {
		t.Fatalf("MarkReturned: %v", err)
	}
	if returned.Status != models.AttendanceReturned {
		t.Errorf("status = %s, want returned", returned.Status)
	}
	if _, err := MarkReturned(gdb, gate, rec.ID, "S1", "pw"); !errors.Is(err, ErrAlreadyClosed) {
		t.Errorf("second return err = %v, want ErrAlreadyClosed", err)
	}
}

func TestConvertToAbsent(t *testing.T) {
	gdb := openTestDB(t)
	gate := testGate(t, gdb)
	late := submitLate(t, gdb, gate)

	absent, err := ConvertToAbsent(gdb, gate, late.ID, "S1", "pw")
	if err != nil {
		t.Fatalf("ConvertToAbsent: %v", err)
	}
	if absent.Kind != models.AttendanceAbsent || absent.Status != models.AttendanceOpen {
		t.Errorf("absent = %+v, want new open absent record", absent)
	}
	if absent.EmployeeID != late.EmployeeID || absent.SessionID != late.SessionID {
		t.Errorf("absent = %+v, want same employee and session", absent)
	}

	// The late record is closed as "left", not mutated into an absence.
	source, _ := Get(gdb, late.ID)
	if source.Status != models.AttendanceLeft || source.Kind != models.AttendanceLate {
		t.Errorf("late record = %+v", source)
	}

	// Converting twice fails; exactly one absent record exists.
	if _, err := ConvertToAbsent(gdb, gate, late.ID, "S1", "pw"); !errors.Is(err, ErrAlreadyClosed) {
		t.Errorf("second convert err = %v, want ErrAlreadyClosed", err)
	}
	var count int64
	gdb.Model(&models.AttendanceEvent{}).Where("kind = ?", models.AttendanceAbsent).Count(&count)
	if count != 1 {
		t.Errorf("absent count = %d, want 1", count)
	}

	// An absent record cannot be converted.
	if _, err := ConvertToAbsent(gdb, gate, absent.ID, "S1", "pw"); !errors.Is(err, ErrWrongKind) {
		t.Errorf("convert absent err = %v, want ErrWrongKind", err)
	}

	// But it can be closed.
	closed, err := Close(gdb, gate, absent.ID, "S1", "pw")
	if err != nil {
		t.Fatalf("Close: %v", err)
	}
	if closed.Status != models.AttendanceClosed {
		t.Errorf("closed = %+v", closed)
	}
}
