package saturation

import (
	"time"

	"promoPilot/domain"
)

const dayFormat = "2006-01-02"

// dayKey normalizes a timestamp to its calendar day.
func dayKey(t time.Time) string {
	return t.UTC().Format(dayFormat)
}

// baseline holds the trailing same-weekday averages a day is compared to.
type baseline struct {
	unlockRate float64
	avgEV      float64
	samples    int
}

// sameWeekdayBaseline averages the creator's aggregates for the same weekday
// over the trailing 30 days before day. A plain global mean would bake in
// weekday mix, so Mondays are only compared to Mondays.
func sameWeekdayBaseline(byDay map[string]domain.DailyAggregate, day time.Time) baseline {
	var b baseline
	for back := 7; back <= 30; back += 7 {
		prev := day.AddDate(0, 0, -back)
		agg, ok := byDay[dayKey(prev)]
		if !ok || agg.Sends == 0 {
			continue
		}
		b.unlockRate += agg.UnlockRate
		b.avgEV += agg.AvgEV
		b.samples++
	}

	if b.samples > 0 {
		b.unlockRate /= float64(b.samples)
		b.avgEV /= float64(b.samples)
	}
	return b
}

// relativeDrop is how far below the baseline the observed value sits, as a
// fraction of the baseline. Positive means underperformance.
func relativeDrop(baselineVal, observed float64) float64 {
	if baselineVal <= 0 {
		return 0
	}
	return (baselineVal - observed) / baselineVal
}
