package model

import (
	"time"

	"gorm.io/gorm"
)

// Period is a half-open time range [From, To). A zero Period matches everything.
type Period struct {
	From *time.Time
	To   *time.Time
}

func (p Period) IsZero() bool {
	return p.From == nil && p.To == nil
}

// Contains reports whether t falls inside the period.
func (p Period) Contains(t time.Time) bool {
	if p.From != nil && t.Before(*p.From) {
		return false
	}
	if p.To != nil && !t.Before(*p.To) {
		return false
	}
	return true
}

// Scope restricts a query on column to the period. Bounds are sent in UTC.
func (p Period) Scope(column string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if p.From != nil {
			db = db.Where(column+" >= ?", p.From.UTC())
		}
		if p.To != nil {
			db = db.Where(column+" < ?", p.To.UTC())
		}
		return db
	}
}
