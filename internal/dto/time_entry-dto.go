package dto

import (
	"time"

	"github.com/aarondl/null/v8"

	"fleet-system/internal/entities"
)

type StartSessionDTO struct {
	WorkOrderID  uint64 `json:"work_order_id" validate:"required,gt=0"`
	TechnicianID uint64 `json:"technician_id" validate:"required,gt=0"`
	// Если ставка не передана, берётся текущая ставка техника.
	HourlyRate null.Float64 `json:"hourly_rate" validate:"omitempty,gte=0"`
}

type StopSessionDTO struct {
	IsOvertime bool `json:"is_overtime"`
}

type SetBreakDTO struct {
	BreakMinutes int `json:"break_minutes" validate:"gte=0,quarter_minutes"`
}

type TimeEntryDTO struct {
	ID           string       `json:"id"`
	WorkOrderID  uint64       `json:"work_order_id"`
	TechnicianID uint64       `json:"technician_id"`
	State        string       `json:"state"`
	StartTime    time.Time    `json:"start_time"`
	EndTime      null.Time    `json:"end_time"`
	BreakMinutes int          `json:"break_minutes"`
	HourlyRate   float64      `json:"hourly_rate"`
	IsOvertime   bool         `json:"is_overtime"`
	TotalHours   null.Float64 `json:"total_hours"`
	TotalCost    null.Float64 `json:"total_cost"`
	CreatedAt    string       `json:"created_at,omitempty"`
}

func NewTimeEntryDTO(e *entities.TimeEntry) TimeEntryDTO {
	out := TimeEntryDTO{
		ID:           e.ID.String(),
		WorkOrderID:  e.WorkOrderID,
		TechnicianID: e.TechnicianID,
		State:        string(e.State()),
		StartTime:    e.StartTime,
		EndTime:      null.TimeFromPtr(e.EndTime),
		BreakMinutes: e.BreakMinutes,
		HourlyRate:   e.HourlyRate,
		IsOvertime:   e.IsOvertime,
		TotalHours:   null.Float64FromPtr(e.TotalHours),
		TotalCost:    null.Float64FromPtr(e.TotalCost),
	}
	if e.CreatedAt != nil {
		out.CreatedAt = e.CreatedAt.Local().Format("2006-01-02 15:04:05")
	}
	return out
}

func NewTimeEntryDTOs(list []entities.TimeEntry) []TimeEntryDTO {
	out := make([]TimeEntryDTO, 0, len(list))
	for i := range list {
		out = append(out, NewTimeEntryDTO(&list[i]))
	}
	return out
}
