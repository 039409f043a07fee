package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aouyang1/flickrframe/store"
)

const (
	scheduleInterval = time.Minute
	scheduleLayout   = "15:04"
)

// player is what the schedule controls.
type player interface {
	Hold(hold bool) error
}

// ScheduleManager will periodically check the time to decide if the
// slideshow should be held paused outside of the daily schedule
type ScheduleManager struct {
	db     *store.Database
	player player
	now    func() time.Time
}

func NewScheduleManager(db *store.Database, p player) (*ScheduleManager, error) {
	if db == nil {
		return nil, errors.New("no database provided for scheduler")
	}
	if p == nil {
		return nil, errors.New("no player provided for scheduler")
	}

	return &ScheduleManager{
		db:     db,
		player: p,
		now:    time.Now,
	}, nil
}

// withinSchedule reports whether now falls inside the daily window from start
// to end. A window whose end is before its start runs overnight; equal start
// and end cover the whole day.
func withinSchedule(now time.Time, start, end string) (bool, error) {
	startTime, err := time.Parse(scheduleLayout, start)
	if err != nil {
		return false, fmt.Errorf("start time with invalid format, %s: %w", start, err)
	}
	endTime, err := time.Parse(scheduleLayout, end)
	if err != nil {
		return false, fmt.Errorf("end time with invalid format, %s: %w", end, err)
	}

	minute := now.Hour()*60 + now.Minute()
	startMinute := startTime.Hour()*60 + startTime.Minute()
	endMinute := endTime.Hour()*60 + endTime.Minute()

	switch {
	case startMinute == endMinute:
		return true, nil
	case startMinute < endMinute:
		return minute >= startMinute && minute < endMinute, nil
	default:
		return minute >= startMinute || minute < endMinute, nil
	}
}

func (s *ScheduleManager) checkSchedule() {
	schedule, err := s.db.GetSchedule()
	if err != nil {
		slog.Error("unable to get schedule", "error", err)
		return
	}

	hold := false
	if schedule.Enabled {
		within, err := withinSchedule(s.now(), schedule.Start, schedule.End)
		if err != nil {
			slog.Warn("invalid schedule", "start", schedule.Start, "end", schedule.End, "error", err)
			return
		}
		hold = !within
	}

	if err := s.player.Hold(hold); err != nil {
		slog.Warn("issue while applying schedule to slideshow", "hold", hold, "error", err)
		return
	}
	slog.Debug("schedule checked", "enabled", schedule.Enabled, "hold", hold)
}

func (s *ScheduleManager) Run(ctx context.Context) {
	ticker := time.NewTicker(scheduleInterval)
	defer ticker.Stop()

	// Initial sync
	s.checkSchedule()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.checkSchedule()
		}
	}
}
