package db

import (
	"fmt"
	"os"

	"github.com/stitchline/stitchline/internal/models"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AllModels returns the list of all GORM models for migration.
func AllModels() []interface{} {
	return []interface{}{
		&models.Line{},
		&models.Style{},
		&models.Personnel{},
		&models.Break{},
		&models.TimeTable{},
		&models.TimeSlot{},
		&models.Session{},
		&models.ProductionRecord{},
		&models.DowntimeRecord{},
		&models.ChangeoverStep{},
		&models.QualityEvent{},
		&models.AttendanceEvent{},
	}
}

// AutoMigrate creates or updates all tables.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(AllModels()...); err != nil {
		return fmt.Errorf("db: auto-migrate: %w", err)
	}
	return nil
}

// SeedData is the reference-data file format consumed by `sl db seed`.
// Registry data is owned by the back office; this seeding path exists for
// first-time setup and tests, not day-to-day operation.
type SeedData struct {
	Lines      []models.Line      `yaml:"lines"`
	Styles     []models.Style     `yaml:"styles"`
	Personnel  []models.Personnel `yaml:"personnel"`
	Breaks     []models.Break     `yaml:"breaks"`
	TimeTables []SeedTimeTable    `yaml:"time_tables"`
}

// SeedTimeTable declares a time table and its ordered slots.
type SeedTimeTable struct {
	ID    string     `yaml:"id"`
	Name  string     `yaml:"name"`
	Slots []SeedSlot `yaml:"slots"`
}

// SeedSlot declares one slot; Position is derived from list order.
type SeedSlot struct {
	ID      string `yaml:"id"`
	Start   string `yaml:"start"`
	End     string `yaml:"end"`
	BreakID string `yaml:"break_id"`
}

// LoadSeed reads and parses a reference-data YAML file.
func LoadSeed(path string) (*SeedData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("db: read seed %s: %w", path, err)
	}
	var seed SeedData
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("db: parse seed %s: %w", path, err)
	}
	return &seed, nil
}

// Seed upserts reference data. Existing rows are updated in place so the
// seed file can be re-applied after edits.
func Seed(db *gorm.DB, seed *SeedData) error {
	for _, line := range seed.Lines {
		if err := upsert(db, &line, "id", "name", "location", "active"); err != nil {
			return fmt.Errorf("db: seed line %q: %w", line.ID, err)
		}
	}
	for _, style := range seed.Styles {
		if err := upsert(db, &style, "id", "number", "description", "order_quantity", "active"); err != nil {
			return fmt.Errorf("db: seed style %q: %w", style.ID, err)
		}
	}
	for _, p := range seed.Personnel {
		if err := upsert(db, &p, "id", "name", "surname", "employee_no", "role", "credential", "active"); err != nil {
			return fmt.Errorf("db: seed personnel %q: %w", p.EmployeeNo, err)
		}
	}
	for _, b := range seed.Breaks {
		if err := upsert(db, &b, "id", "type", "duration_min"); err != nil {
			return fmt.Errorf("db: seed break %q: %w", b.ID, err)
		}
	}
	for _, tt := range seed.TimeTables {
		table := models.TimeTable{ID: tt.ID, Name: tt.Name, Active: true}
		if err := upsert(db, &table, "id", "name", "active"); err != nil {
			return fmt.Errorf("db: seed time table %q: %w", tt.ID, err)
		}
		for i, s := range tt.Slots {
			slot := models.TimeSlot{
				ID:          s.ID,
				TimeTableID: tt.ID,
				Position:    i,
				StartTime:   s.Start,
				EndTime:     s.End,
			}
			if s.BreakID != "" {
				breakID := s.BreakID
				slot.BreakID = &breakID
			}
			if err := upsert(db, &slot, "id", "time_table_id", "position", "start_time", "end_time", "break_id"); err != nil {
				return fmt.Errorf("db: seed slot %q: %w", s.ID, err)
			}
		}
	}
	return nil
}

// upsert creates or updates a row keyed on its first column.
func upsert(db *gorm.DB, value interface{}, columns ...string) error {
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: columns[0]}},
		DoUpdates: clause.AssignmentColumns(columns[1:]),
	}).Create(value).Error
}
