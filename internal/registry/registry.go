// Package registry provides read-only lookups of reference data owned by
// the back-office registries. The engine never writes through this package.
package registry

import (
	"errors"
	"fmt"

	"github.com/stitchline/stitchline/internal/models"
	"gorm.io/gorm"
)

// ErrNotFound is returned when a reference record does not exist.
var ErrNotFound = errors.New("registry: not found")

// GetLine returns the production line with the given id.
func GetLine(db *gorm.DB, id string) (*models.Line, error) {
	var line models.Line
	if err := db.Where("id = ?", id).First(&line).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: line %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("registry: get line %s: %w", id, err)
	}
	return &line, nil
}

// GetStyle returns the style with the given id.
func GetStyle(db *gorm.DB, id string) (*models.Style, error) {
	var style models.Style
	if err := db.Where("id = ?", id).First(&style).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: style %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("registry: get style %s: %w", id, err)
	}
	return &style, nil
}

// GetBreak returns the break with the given id.
func GetBreak(db *gorm.DB, id string) (*models.Break, error) {
	var brk models.Break
	if err := db.Where("id = ?", id).First(&brk).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: break %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("registry: get break %s: %w", id, err)
	}
	return &brk, nil
}

// GetTimeTable returns a time table with its slots preloaded in configured
// order. Slot order is the resolution order for active-slot matching.
func GetTimeTable(db *gorm.DB, id string) (*models.TimeTable, error) {
	var table models.TimeTable
	err := db.Preload("Slots", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	}).Where("id = ?", id).First(&table).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: time table %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("registry: get time table %s: %w", id, err)
	}
	return &table, nil
}

// PersonnelFilter narrows ListPersonnel results. Zero values mean no filter.
type PersonnelFilter struct {
	Role       string
	EmployeeNo string
	ActiveOnly bool
}

// ListPersonnel returns personnel matching the filter, ordered by surname.
func ListPersonnel(db *gorm.DB, filter PersonnelFilter) ([]models.Personnel, error) {
	q := db.Model(&models.Personnel{})
	if filter.Role != "" {
		q = q.Where("role = ?", filter.Role)
	}
	if filter.EmployeeNo != "" {
		q = q.Where("employee_no = ?", filter.EmployeeNo)
	}
	if filter.ActiveOnly {
		q = q.Where("active = ?", true)
	}
	var people []models.Personnel
	if err := q.Order("surname ASC, name ASC").Find(&people).Error; err != nil {
		return nil, fmt.Errorf("registry: list personnel: %w", err)
	}
	return people, nil
}
