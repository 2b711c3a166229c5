package entities

import (
	"fleet-system/pkg/types"
)

type Technician struct {
	ID         uint64  `json:"id" db:"id"`
	FullName   string  `json:"full_name" db:"full_name"`
	HourlyRate float64 `json:"hourly_rate" db:"hourly_rate"`
	IsActive   bool    `json:"is_active" db:"is_active"`

	types.BaseEntity
	types.SoftDelete
}
