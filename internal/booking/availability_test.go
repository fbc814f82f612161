package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/gaming-lounge-booking/internal/model"
)

func TestOverlaps(t *testing.T) {
	a := Interval{Start: at(10, 0), End: at(12, 0)}
	assert.True(t, Overlaps(a, Interval{Start: at(11, 0), End: at(13, 0)}))
	assert.True(t, Overlaps(a, Interval{Start: at(9, 0), End: at(10, 1)}))
	assert.True(t, Overlaps(a, Interval{Start: at(10, 30), End: at(11, 0)}))
	assert.False(t, Overlaps(a, Interval{Start: at(12, 0), End: at(13, 0)}), "touching end")
	assert.False(t, Overlaps(a, Interval{Start: at(8, 0), End: at(10, 0)}), "touching start")
}

func TestFindConflictReturnsEarliestEnding(t *testing.T) {
	rs := []model.Reservation{
		res(1, at(12, 0), at(15, 0), model.ReservationConfirmed),
		res(2, at(10, 0), at(12, 0), model.ReservationConfirmed),
		res(3, at(11, 0), at(12, 0), model.ReservationCancelled),
	}
	got := FindConflict(Interval{Start: at(11, 0), End: at(13, 0)}, rs)
	require.NotNil(t, got)
	assert.Equal(t, uint64(2), got.ID)
	assert.Equal(t, at(12, 0), got.EndTime)
}

func TestFindConflictIgnoresCancelled(t *testing.T) {
	rs := []model.Reservation{res(1, at(10, 0), at(12, 0), model.ReservationCancelled)}
	assert.Nil(t, FindConflict(Interval{Start: at(10, 0), End: at(12, 0)}, rs))
	assert.False(t, HasOverlap(Interval{Start: at(10, 0), End: at(12, 0)}, rs))
}

func TestGuardInUse(t *testing.T) {
	now := at(10, 0)
	g := Guard{Grace: 5 * time.Minute}
	rs := []model.Reservation{res(1, at(9, 0), at(11, 0), model.ReservationConfirmed)}

	assert.NotNil(t, g.InUseConflict(at(10, 5), rs, now), "inside grace")
	assert.Nil(t, g.InUseConflict(at(10, 6), rs, now), "after grace")
	assert.Nil(t, g.InUseConflict(at(10, 0), nil, now), "idle station")
}

func TestGuardCheck(t *testing.T) {
	now := at(8, 0)
	g := Guard{Grace: 5 * time.Minute}
	rs := []model.Reservation{res(7, at(10, 0), at(12, 0), model.ReservationConfirmed)}

	c := g.Check(Interval{Start: at(11, 0), End: at(13, 0)}, rs, now)
	require.NotNil(t, c)
	assert.Equal(t, ReasonOverlap, c.Reason)
	assert.Equal(t, at(12, 0), c.Until())

	assert.Nil(t, g.Check(Interval{Start: at(12, 0), End: at(14, 0)}, rs, now))
}

func TestGuardCheckPrefersInUse(t *testing.T) {
	now := at(10, 0)
	g := Guard{Grace: 5 * time.Minute}
	rs := []model.Reservation{res(1, at(9, 0), at(11, 0), model.ReservationConfirmed)}
	c := g.Check(Interval{Start: at(10, 2), End: at(12, 0)}, rs, now)
	require.NotNil(t, c)
	assert.Equal(t, ReasonInUse, c.Reason)
	assert.Equal(t, at(11, 0), c.Until())
}
