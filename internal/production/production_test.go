package production

import (
	"errors"
	"testing"

	"github.com/stitchline/stitchline/internal/models"
	"github.com/stitchline/stitchline/internal/session"
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
	if err := gdb.AutoMigrate(
		&models.Style{}, &models.TimeTable{}, &models.TimeSlot{},
		&models.Session{}, &models.ProductionRecord{}, &models.DowntimeRecord{},
	); err != nil {
		t.Fatalf("auto-migrate: %v", err)
	}
	return gdb
}

// seedShift creates a style, a two-slot table, and an open session.
func seedShift(t *testing.T, gdb *gorm.DB) *models.Session {
	t.Helper()
	gdb.Create(&models.Style{ID: "sty-01", Number: "ST-100", OrderQuantity: 10, Active: true})
	gdb.Create(&models.TimeTable{ID: "tt-01", Name: "Day", Active: true})
	gdb.Create(&models.TimeSlot{ID: "slot-01", TimeTableID: "tt-01", Position: 0, StartTime: "08:00", EndTime: "09:00"})
	gdb.Create(&models.TimeSlot{ID: "slot-02", TimeTableID: "tt-01", Position: 1, StartTime: "09:00", EndTime: "10:00"})

	sess, err := session.Start(gdb, session.StartOpts{
		LineID: "line-01", SupervisorID: "per-01", StyleID: "sty-01",
		TimeTableID: "tt-01", HourlyTarget: 100,
	})
	if err != nil {
		t.Fatalf("start session: %v", err)
	}
	return sess
}

func TestRecordUnit_InvalidSlot(t *testing.T) {
	gdb := openTestDB(t)
	sess := seedShift(t, gdb)

	err := RecordUnit(gdb, sess, "slot-99")
	if !errors.Is(err, ErrInvalidSlot) {
		t.Errorf("err = %v, want ErrInvalidSlot", err)
	}

	// A slot from another table is just as invalid.
	gdb.Create(&models.TimeTable{ID: "tt-02", Name: "Night", Active: true})
	gdb.Create(&models.TimeSlot{ID: "slot-n1", TimeTableID: "tt-02", Position: 0, StartTime: "20:00", EndTime: "21:00"})
	err = RecordUnit(gdb, sess, "slot-n1")
	if !errors.Is(err, ErrInvalidSlot) {
		t.Errorf("foreign slot err = %v, want ErrInvalidSlot", err)
	}
}

func TestRecordUnit_AfterEndFails(t *testing.T) {
	gdb := openTestDB(t)
	sess := seedShift(t, gdb)

	if err := session.End(gdb, sess); err != nil {
		t.Fatalf("End: %v", err)
	}
	err := RecordUnit(gdb, sess, "slot-01")
	if !errors.Is(err, ErrSessionClosed) {
		t.Errorf("err = %v, want ErrSessionClosed", err)
	}
}

func TestOutputsBySlot_AlignedAndScoped(t *testing.T) {
	gdb := openTestDB(t)
	sess := seedShift(t, gdb)

	for i := 0; i < 3; i++ {
		if err := RecordUnit(gdb, sess, "slot-01"); err != nil {
			t.Fatalf("RecordUnit: %v", err)
		}
	}
	if err := RecordUnit(gdb, sess, "slot-02"); err != nil {
		t.Fatalf("RecordUnit: %v", err)
	}

	// Records from a prior session on the same line must never leak in.
	gdb.Create(&models.ProductionRecord{SessionID: "ses-prior", SlotID: "slot-01", Units: 50})

	outputs, err := OutputsBySlot(gdb, sess)
	if err != nil {
		t.Fatalf("OutputsBySlot: %v", err)
	}
	if len(outputs) != 2 || outputs[0] != 3 || outputs[1] != 1 {
		t.Errorf("outputs = %v, want [3 1]", outputs)
	}
}

func TestAdjust_SubtractsFromSlot(t *testing.T) {
	gdb := openTestDB(t)
	sess := seedShift(t, gdb)

	for i := 0; i < 5; i++ {
		if err := RecordUnit(gdb, sess, "slot-01"); err != nil {
			t.Fatalf("RecordUnit: %v", err)
		}
	}
	if err := Adjust(gdb, sess.ID, "slot-01", -2, "reject qe-00001 confirmed"); err != nil {
		t.Fatalf("Adjust: %v", err)
	}

	outputs, err := OutputsBySlot(gdb, sess)
	if err != nil {
		t.Fatalf("OutputsBySlot: %v", err)
	}
	if outputs[0] != 3 {
		t.Errorf("slot-01 output = %d, want 3 after adjustment", outputs[0])
	}

	// Zero delta is a no-op, not a row.
	if err := Adjust(gdb, sess.ID, "slot-01", 0, ""); err != nil {
		t.Fatalf("Adjust zero: %v", err)
	}
	var count int64
	gdb.Model(&models.ProductionRecord{}).Where("session_id = ?", sess.ID).Count(&count)
	if count != 6 {
		t.Errorf("record count = %d, want 6", count)
	}
}

func TestBalance_MayGoNegative(t *testing.T) {
	gdb := openTestDB(t)
	sess := seedShift(t, gdb) // order quantity 10

	for i := 0; i < 12; i++ {
		if err := RecordUnit(gdb, sess, "slot-01"); err != nil {
			t.Fatalf("RecordUnit: %v", err)
		}
	}
	balance, err := Balance(gdb, sess)
	if err != nil {
		t.Fatalf("Balance: %v", err)
	}
	if balance != -2 {
		t.Errorf("balance = %d, want -2 (over-production surfaced, not masked)", balance)
	}
}
