package models

import "time"

// Tournament хранит только то, что нужно движку: флаг завершения.
type Tournament struct {
	ID          int64      `json:"id" db:"id"`
	Name        string     `json:"name" db:"name"`
	Completed   bool       `json:"completed" db:"completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty" db:"completed_at"`

	Stages []Stage `json:"stages,omitempty" db:"-"`
}
