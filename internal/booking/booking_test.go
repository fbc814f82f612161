package booking

import (
	"time"

	"github.com/iliyamo/gaming-lounge-booking/internal/model"
)

var base = time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

func at(h, m int) time.Time { return base.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute) }

func res(id uint64, start, end time.Time, st model.ReservationStatus) model.Reservation {
	return model.Reservation{ID: id, StationID: 1, StartTime: start, EndTime: end, Status: st}
}
