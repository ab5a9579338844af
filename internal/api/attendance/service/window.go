package attendanceService

import (
	"Attendify/internal/api/attendance"
	"Attendify/internal/entity"
	"time"
)

// classWindow is a schedule anchored to a concrete calendar day. end is the
// scheduled end; submissions are accepted until end + closeBuffer.
type classWindow struct {
	schedule entity.SectionSchedule
	anchor   time.Time
	start    time.Time
	end      time.Time
}

func (w classWindow) closesAt() time.Time {
	return w.end.Add(closeBuffer)
}

func (w classWindow) crossesMidnight() bool {
	return w.end.After(w.anchor.Add(24 * time.Hour))
}

// windowFor anchors a schedule's HH:MM span to the calendar day of the given
// time. A span whose end does not come after its start crosses midnight.
func (s *attendanceService) windowFor(schedule entity.SectionSchedule, day time.Time) (classWindow, error) {
	startMinutes, err := s.utils.ParseClockTime(schedule.StartTime)
	if err != nil {
		return classWindow{}, err
	}
	endMinutes, err := s.utils.ParseClockTime(schedule.EndTime)
	if err != nil {
		return classWindow{}, err
	}

	anchor := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	start := anchor.Add(time.Duration(startMinutes) * time.Minute)
	end := anchor.Add(time.Duration(endMinutes) * time.Minute)
	if !end.After(start) {
		end = end.Add(24 * time.Hour)
	}

	return classWindow{schedule: schedule, anchor: anchor, start: start, end: end}, nil
}

// resolveWindow finds the window covering now among today's schedules and
// yesterday's overnight spans. When none covers now, the reason is one of
// ReasonNotStarted, ReasonWindowClosed or ReasonNoScheduleToday.
func (s *attendanceService) resolveWindow(schedules []entity.SectionSchedule, now time.Time) (*classWindow, string) {
	yesterday := now.AddDate(0, 0, -1)
	todayDOW := int(now.Weekday())
	yesterdayDOW := int(yesterday.Weekday())

	var candidates []classWindow
	for _, schedule := range schedules {
		if schedule.DayOfWeek == todayDOW {
			window, err := s.windowFor(schedule, now)
			if err != nil {
				s.log.WithField("schedule_id", schedule.ID).Warn("Skipping schedule with malformed times")
				continue
			}
			candidates = append(candidates, window)
		}
		if schedule.DayOfWeek == yesterdayDOW {
			window, err := s.windowFor(schedule, yesterday)
			if err != nil {
				continue
			}
			if window.crossesMidnight() {
				candidates = append(candidates, window)
			}
		}
	}

	var sawUpcoming, sawClosed bool
	for i := range candidates {
		window := candidates[i]
		if !now.Before(window.start) && now.Before(window.closesAt()) {
			return &candidates[i], ""
		}
		if now.Before(window.start) {
			sawUpcoming = true
		} else {
			sawClosed = true
		}
	}

	if sawUpcoming {
		return nil, attendance.ReasonNotStarted
	}
	if sawClosed {
		return nil, attendance.ReasonWindowClosed
	}
	return nil, attendance.ReasonNoScheduleToday
}
