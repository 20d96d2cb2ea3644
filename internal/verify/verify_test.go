package verify

import (
	"testing"

	"github.com/stitchline/stitchline/internal/models"
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
	if err := gdb.AutoMigrate(&models.Personnel{}); err != nil {
		t.Fatalf("auto-migrate: %v", err)
	}
	return gdb
}

func seedPerson(t *testing.T, gdb *gorm.DB, employeeNo, role, credential string, active bool) {
	t.Helper()
	if err := gdb.Create(&models.Personnel{
		ID:         "per-" + employeeNo,
		Name:       "Test",
		EmployeeNo: employeeNo,
		Role:       role,
		Credential: credential,
		Active:     active,
	}).Error; err != nil {
		t.Fatalf("seed person: %v", err)
	}
}

func TestGateVerify_Plain(t *testing.T) {
	gdb := openTestDB(t)
	seedPerson(t, gdb, "E100", models.RoleSupervisor, "pass123", true)
	gate := NewGate(gdb, Plain{})

	if !gate.Verify(models.RoleSupervisor, "E100", "pass123") {
		t.Error("correct role + credential should verify")
	}
	// Role and credential are both independently necessary.
	if gate.Verify(models.RoleMechanic, "E100", "pass123") {
		t.Error("wrong role must fail even with correct credential")
	}
	if gate.Verify(models.RoleSupervisor, "E100", "wrong") {
		t.Error("wrong credential must fail even with correct role")
	}
	if gate.Verify(models.RoleSupervisor, "E999", "pass123") {
		t.Error("unknown employee must fail")
	}
	if gate.Verify(models.RoleSupervisor, "E100", "") {
		t.Error("empty credential must fail")
	}
}

func TestGateVerify_InactiveOrNoCredential(t *testing.T) {
	gdb := openTestDB(t)
	seedPerson(t, gdb, "E200", models.RoleQC, "pass123", false)
	seedPerson(t, gdb, "E201", models.RoleQC, "", true)
	gate := NewGate(gdb, Plain{})

	if gate.Verify(models.RoleQC, "E200", "pass123") {
		t.Error("inactive personnel must fail")
	}
	if gate.Verify(models.RoleQC, "E201", "") {
		t.Error("personnel without configured credential must fail")
	}
}

func TestGateVerify_Hashed(t *testing.T) {
	gdb := openTestDB(t)
	digest, err := HashCredential("pass123")
	if err != nil {
		t.Fatalf("HashCredential: %v", err)
	}
	seedPerson(t, gdb, "E300", models.RoleMechanic, digest, true)
	gate := NewGate(gdb, Hashed{})

	if !gate.Verify(models.RoleMechanic, "E300", "pass123") {
		t.Error("hashed credential should verify")
	}
	if gate.Verify(models.RoleMechanic, "E300", "pass124") {
		t.Error("wrong credential must fail against hash")
	}
}

func TestForMode(t *testing.T) {
	if _, ok := ForMode("plain").(Plain); !ok {
		t.Error(`ForMode("plain") should be Plain`)
	}
	if _, ok := ForMode("hashed").(Hashed); !ok {
		t.Error(`ForMode("hashed") should be Hashed`)
	}
	// Unknown modes fail closed onto the hashed verifier.
	if _, ok := ForMode("md5").(Hashed); !ok {
		t.Error("unknown mode should fall back to Hashed")
	}
}
