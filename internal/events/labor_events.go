package events

import (
	"fleet-system/internal/entities"
)

const (
	TimeEntryStartedName = "labor.entry.started"
	TimeEntryClosedName  = "labor.entry.closed"
)

// TimeEntryStartedEvent - техник открыл сессию.
type TimeEntryStartedEvent struct {
	Entry entities.TimeEntry
}

func (e TimeEntryStartedEvent) Name() string { return TimeEntryStartedName }

// TimeEntryClosedEvent - сессия закрыта, итоги посчитаны.
type TimeEntryClosedEvent struct {
	Entry entities.TimeEntry
}

func (e TimeEntryClosedEvent) Name() string { return TimeEntryClosedName }
