package entities

import (
	"time"

	"github.com/google/uuid"

	"fleet-system/pkg/types"
)

type TimeEntryState string

const (
	TimeEntryOpen   TimeEntryState = "OPEN"
	TimeEntryClosed TimeEntryState = "CLOSED"
)

// TimeEntry - одна рабочая сессия техника по заказ-наряду.
// HourlyRate фиксируется при старте и дальше не меняется.
type TimeEntry struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	WorkOrderID  uint64     `json:"work_order_id" db:"work_order_id"`
	TechnicianID uint64     `json:"technician_id" db:"technician_id"`
	StartTime    time.Time  `json:"start_time" db:"start_time"`
	EndTime      *time.Time `json:"end_time" db:"end_time"`
	BreakMinutes int        `json:"break_minutes" db:"break_minutes"`
	HourlyRate   float64    `json:"hourly_rate" db:"hourly_rate"`
	IsOvertime   bool       `json:"is_overtime" db:"is_overtime"`

	// Заполняются при закрытии
	TotalHours *float64 `json:"total_hours" db:"total_hours"`
	TotalCost  *float64 `json:"total_cost" db:"total_cost"`

	types.BaseEntity
}

func (e *TimeEntry) IsOpen() bool { return e.EndTime == nil }

func (e *TimeEntry) State() TimeEntryState {
	if e.IsOpen() {
		return TimeEntryOpen
	}
	return TimeEntryClosed
}

// TimeEntryClose - поля, которые записываются при остановке сессии.
// BreakMinutes - перерыв, по которому посчитаны итоги; запись закрывается,
// только если он не изменился.
type TimeEntryClose struct {
	EndTime      time.Time
	BreakMinutes int
	IsOvertime   bool
	TotalHours   float64
	TotalCost    float64
}

// TimeEntryFilter - условия выборки сессий.
type TimeEntryFilter struct {
	WorkOrderID  *uint64
	TechnicianID *uint64
	State        TimeEntryState
	StartedFrom  *time.Time
	StartedTo    *time.Time
	Limit        uint64
	Offset       uint64
}

// WorkOrderLaborSummary - сводка трудозатрат по заказ-наряду.
// Часы и стоимость считаются только по закрытым сессиям.
type WorkOrderLaborSummary struct {
	WorkOrderID  uint64  `json:"work_order_id"`
	EntriesCount uint64  `json:"entries_count"`
	OpenCount    uint64  `json:"open_count"`
	TotalHours   float64 `json:"total_hours"`
	TotalCost    float64 `json:"total_cost"`
}
