// Package booking holds the pure rules of the reservation engine: live
// station status, interval conflicts and loyalty pricing.  Nothing in here
// touches storage or reads the wall clock; callers pass "now" explicitly.
package booking

import (
	"sort"
	"time"

	"github.com/iliyamo/gaming-lounge-booking/internal/model"
)

// StatusView is the derived status of a station at one instant.
type StatusView struct {
	Status          model.StationStatus
	NextAvailableAt *time.Time
}

// Available reports whether the derived status is Available.
func (v StatusView) Available() bool { return v.Status == model.StationAvailable }

// snapshot is the reservation picture a resolver rule looks at.
type snapshot struct {
	stored         model.StationStatus
	active         *model.Reservation
	upcoming       *model.Reservation
	requestedStart time.Time
}

// statusRule returns ok=false when it does not apply.
type statusRule func(s snapshot) (StatusView, bool)

// searchRules are evaluated top to bottom; the first match wins.
var searchRules = []statusRule{
	func(s snapshot) (StatusView, bool) {
		if s.active == nil {
			return StatusView{}, false
		}
		return StatusView{Status: model.StationInUse, NextAvailableAt: timePtr(s.active.EndTime)}, true
	},
	func(s snapshot) (StatusView, bool) {
		return StatusView{Status: model.StationInUse}, s.stored == model.StationInUse
	},
	func(s snapshot) (StatusView, bool) {
		if s.upcoming == nil || s.upcoming.StartTime.After(s.requestedStart) {
			return StatusView{}, false
		}
		return StatusView{Status: model.StationReserved, NextAvailableAt: timePtr(s.upcoming.EndTime)}, true
	},
	func(s snapshot) (StatusView, bool) {
		return StatusView{Status: model.StationReserved}, s.stored == model.StationReserved
	},
}

// ResolveStatus derives the live status used by station listings.  The
// stored status only matters for Maintenance, which is passed through
// unchanged; listings filter those stations out before resolving.
//
// An active reservation yields InUse with the next free time set to the end
// of the earliest upcoming reservation, or to the active end when nothing is
// queued.  Otherwise an upcoming reservation yields Reserved until its end.
func ResolveStatus(stored model.StationStatus, reservations []model.Reservation, now time.Time) StatusView {
	if stored == model.StationMaintenance {
		return StatusView{Status: model.StationMaintenance}
	}
	active, upcoming := pick(reservations, now)
	switch {
	case active != nil && upcoming != nil:
		return StatusView{Status: model.StationInUse, NextAvailableAt: timePtr(upcoming.EndTime)}
	case active != nil:
		return StatusView{Status: model.StationInUse, NextAvailableAt: timePtr(active.EndTime)}
	case upcoming != nil:
		return StatusView{Status: model.StationReserved, NextAvailableAt: timePtr(upcoming.EndTime)}
	}
	return StatusView{Status: model.StationAvailable}
}

// ResolveSearchStatus derives the status used by the availability search.
// Precedence: active reservation, stored InUse, upcoming reservation that
// starts at or before requestedStart, stored Reserved, then Available.
func ResolveSearchStatus(stored model.StationStatus, reservations []model.Reservation, now, requestedStart time.Time) StatusView {
	if stored == model.StationMaintenance {
		return StatusView{Status: model.StationMaintenance}
	}
	active, upcoming := pick(reservations, now)
	s := snapshot{stored: stored, active: active, upcoming: upcoming, requestedStart: requestedStart}
	for _, rule := range searchRules {
		if v, ok := rule(s); ok {
			return v
		}
	}
	return StatusView{Status: model.StationAvailable}
}

// pick selects the active and earliest upcoming reservation among the
// non-cancelled ones.  Several active reservations can only exist in data
// written outside this service; the one ending last wins so the reported
// free time is never too early.
func pick(reservations []model.Reservation, now time.Time) (active, upcoming *model.Reservation) {
	live := make([]model.Reservation, 0, len(reservations))
	for _, r := range reservations {
		if r.Status == model.ReservationCancelled {
			continue
		}
		live = append(live, r)
	}
	sort.SliceStable(live, func(i, j int) bool {
		if !live[i].StartTime.Equal(live[j].StartTime) {
			return live[i].StartTime.Before(live[j].StartTime)
		}
		if !live[i].EndTime.Equal(live[j].EndTime) {
			return live[i].EndTime.Before(live[j].EndTime)
		}
		return live[i].ID < live[j].ID
	})
	for i := range live {
		r := &live[i]
		switch {
		case !r.StartTime.After(now) && now.Before(r.EndTime):
			if active == nil || r.EndTime.After(active.EndTime) {
				active = r
			}
		case r.StartTime.After(now):
			if upcoming == nil {
				upcoming = r
			}
		}
	}
	return active, upcoming
}

func timePtr(t time.Time) *time.Time { return &t }
