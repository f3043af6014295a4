package history

import (
	"sort"
	"time"

	"github.com/RoaringBitmap/roaring/v2"

	"readtrack/internal/models"
)

// Day ordinals count from 0001-01-01 so every four-digit year fits in a uint32.
var ordinalEpoch = time.Date(1, time.January, 1, 0, 0, 0, 0, time.UTC)

const secondsPerDay = 24 * 60 * 60

func dayOrdinal(date string) (uint32, bool) {
	t, ok := models.ParseDay(date)
	if !ok || t.Before(ordinalEpoch) {
		return 0, false
	}
	return uint32((t.Unix() - ordinalEpoch.Unix()) / secondsPerDay), true
}

func ordinalDate(n uint32) string {
	return ordinalEpoch.AddDate(0, 0, int(n)).Format(models.DateLayout)
}

// daySet holds calendar dates as a bitmap; strings that are not dates are kept aside
// so set differences still account for them.
type daySet struct {
	days  *roaring.Bitmap
	other map[string]struct{}
}

func newDaySet(dates []string) *daySet {
	s := &daySet{days: roaring.New(), other: make(map[string]struct{})}
	for _, d := range dates {
		if n, ok := dayOrdinal(d); ok {
			s.days.Add(n)
			continue
		}
		s.other[d] = struct{}{}
	}
	return s
}

// minus returns the sorted members of s missing from o.
func (s *daySet) minus(o *daySet) []string {
	diff := roaring.AndNot(s.days, o.days)
	out := make([]string, 0, diff.GetCardinality())
	it := diff.Iterator()
	for it.HasNext() {
		out = append(out, ordinalDate(it.Next()))
	}
	var rest []string
	for d := range s.other {
		if _, ok := o.other[d]; !ok {
			rest = append(rest, d)
		}
	}
	sort.Strings(rest)
	return append(out, rest...)
}
