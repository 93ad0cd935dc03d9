//go:build !integration

package saturation

import (
	"testing"
	"time"

	"promoPilot/domain"
)

var fixedNow = time.Date(2026, 3, 31, 12, 0, 0, 0, time.UTC)

// flatDays builds span days of steady aggregates ending at now, newest last.
func flatDays(creatorID uint, now time.Time, span int, ev, unlock, earnings float64) []domain.DailyAggregate {
	days := make([]domain.DailyAggregate, 0, span)
	for back := span - 1; back >= 0; back-- {
		days = append(days, domain.DailyAggregate{
			CreatorID:  creatorID,
			Day:        now.AddDate(0, 0, -back),
			Sends:      20,
			Views:      200,
			Unlocks:    int(unlock * 20),
			Earnings:   earnings,
			UnlockRate: unlock,
			AvgEV:      ev,
		})
	}
	return days
}

// dropRange scales EV and unlock rate on days fromBack..toBack inclusive.
func dropRange(days []domain.DailyAggregate, now time.Time, fromBack, toBack int, factor float64) {
	for i := range days {
		back := int(now.Sub(days[i].Day).Hours() / 24)
		if back >= fromBack && back <= toBack {
			days[i].AvgEV *= factor
			days[i].UnlockRate *= factor
		}
	}
}

// setEV pins one day's expected value exactly.
func setEV(days []domain.DailyAggregate, now time.Time, back int, ev float64) {
	for i := range days {
		if int(now.Sub(days[i].Day).Hours()/24) == back {
			days[i].AvgEV = ev
		}
	}
}

func healthyPlatform(now time.Time, span int, creatorIDs ...uint) []domain.DailyAggregate {
	var all []domain.DailyAggregate
	for _, id := range creatorIDs {
		all = append(all, flatDays(id, now, span, 10.0, 0.5, 200)...)
	}
	return all
}

// droppedCreator is 14 steady days followed by 28 days at 30% of the old
// level, the shape of real audience fatigue setting in.
func droppedCreator(id uint, now time.Time, earnings float64) []domain.DailyAggregate {
	days := flatDays(id, now, 42, 10.0, 0.5, earnings)
	dropRange(days, now, 0, 27, 0.3)
	return days
}

// ---- tests ----

func TestScore_SteadyCreatorIsLowRisk(t *testing.T) {
	svc := NewService(nil, nil, nil)

	creator := flatDays(1, fixedNow, 45, 10.0, 0.5, 200)
	platform := append(append([]domain.DailyAggregate{}, creator...), healthyPlatform(fixedNow, 45, 2, 3, 4)...)

	snap := svc.score(1, fixedNow, creator, platform, nil)

	if snap.SaturationScore != 0 {
		t.Errorf("score = %v, want 0 for a steady creator", snap.SaturationScore)
	}
	if snap.RiskLevel != domain.RiskLow {
		t.Errorf("risk = %s, want %s", snap.RiskLevel, domain.RiskLow)
	}
	if snap.RecommendedAction != domain.ActionNone {
		t.Errorf("action = %s, want %s", snap.RecommendedAction, domain.ActionNone)
	}
	// with 45 days of data, every day old enough to have a prior same
	// weekday on record scores: backs 0 through 37
	if snap.ValidDays != 38 {
		t.Errorf("valid days = %d, want 38", snap.ValidDays)
	}
	if snap.ConfidenceScore != 1.0 {
		t.Errorf("confidence = %v, want 1.0", snap.ConfidenceScore)
	}
}

func TestScore_SustainedDropIsHighRisk(t *testing.T) {
	svc := NewService(nil, nil, nil)

	// large account, four weeks at 30% of the prior level
	creator := droppedCreator(1, fixedNow, 600)
	platform := append(append([]domain.DailyAggregate{}, creator...), healthyPlatform(fixedNow, 42, 2, 3, 4)...)

	snap := svc.score(1, fixedNow, creator, platform, nil)

	if snap.RevenueDeviation < dropThreshold {
		t.Errorf("revenue deviation = %v, want >= %v", snap.RevenueDeviation, dropThreshold)
	}
	if snap.UnlockRateDeviation < dropThreshold {
		t.Errorf("unlock deviation = %v, want >= %v", snap.UnlockRateDeviation, dropThreshold)
	}
	if snap.ConsecutiveUnderperfDays < streakTrigger {
		t.Errorf("streak = %d, want >= %d", snap.ConsecutiveUnderperfDays, streakTrigger)
	}
	if snap.RiskLevel != domain.RiskHigh {
		t.Errorf("risk = %s, want %s (score %v)", snap.RiskLevel, domain.RiskHigh, snap.SaturationScore)
	}
	if snap.RecommendedAction != domain.ActionReduce30 {
		t.Errorf("action = %s, want %s", snap.RecommendedAction, domain.ActionReduce30)
	}
}

func TestScore_PlatformWideDropIsNotCreatorFatigue(t *testing.T) {
	svc := NewService(nil, nil, nil)

	// every creator on the platform shows the same four-week collapse
	creator := droppedCreator(1, fixedNow, 200)
	var platform []domain.DailyAggregate
	platform = append(platform, creator...)
	for _, id := range []uint{2, 3, 4} {
		platform = append(platform, droppedCreator(id, fixedNow, 200)...)
	}

	platformWide := svc.score(1, fixedNow, creator, platform, nil)

	// identical creator data, but the peers stayed healthy
	soloDrop := svc.score(1, fixedNow, creator,
		append(append([]domain.DailyAggregate{}, creator...), healthyPlatform(fixedNow, 42, 2, 3, 4)...), nil)

	if platformWide.ExcludedDays != 28 {
		t.Errorf("platform-wide drop should exclude all 28 dropped days, excluded = %d", platformWide.ExcludedDays)
	}
	if platformWide.SaturationScore != 0 {
		t.Errorf("score = %v, want 0 when the drop is platform-wide", platformWide.SaturationScore)
	}
	if platformWide.RiskLevel != domain.RiskLow {
		t.Errorf("risk = %s, want %s", platformWide.RiskLevel, domain.RiskLow)
	}
	if platformWide.RecommendedAction != domain.ActionNone {
		t.Errorf("action = %s, want %s", platformWide.RecommendedAction, domain.ActionNone)
	}

	if soloDrop.SaturationScore < highRiskScore {
		t.Errorf("solo drop score = %v, want >= %v", soloDrop.SaturationScore, highRiskScore)
	}
	if soloDrop.RecommendedAction != domain.ActionReduce30 {
		t.Errorf("solo drop action = %s, want %s", soloDrop.RecommendedAction, domain.ActionReduce30)
	}
}

func TestScore_ExactThresholdDropCountsAsAnomaly(t *testing.T) {
	svc := NewService(nil, nil, nil)

	// every creator sits exactly 30% below baseline on the most recent day
	var platform []domain.DailyAggregate
	creators := make([][]domain.DailyAggregate, 0, 4)
	for _, id := range []uint{1, 2, 3, 4} {
		days := flatDays(id, fixedNow, 45, 10.0, 0.5, 200)
		setEV(days, fixedNow, 0, 7.0)
		creators = append(creators, days)
		platform = append(platform, days...)
	}

	snap := svc.score(1, fixedNow, creators[0], platform, nil)

	if snap.ExcludedDays != 1 {
		t.Fatalf("excluded days = %d, want the boundary-drop day excluded", snap.ExcludedDays)
	}
	if snap.RevenueDeviation != 0 {
		t.Errorf("revenue deviation = %v, want 0 once the anomaly day is excluded", snap.RevenueDeviation)
	}
	if snap.ValidDays != 37 {
		t.Errorf("valid days = %d, want 37", snap.ValidDays)
	}
}

func TestScore_LowConfidenceSuppressesAction(t *testing.T) {
	svc := NewService(nil, nil, nil)

	// only two weeks of history: one week seeds the baselines, the next is
	// halved, and two holidays leave five scoreable days
	creator := flatDays(1, fixedNow, 14, 10.0, 0.5, 200)
	dropRange(creator, fixedNow, 0, 6, 0.5)

	holidays := make(map[string]string)
	holidays[dayKey(fixedNow)] = "festival"
	holidays[dayKey(fixedNow.AddDate(0, 0, -1))] = "festival"

	platform := append(append([]domain.DailyAggregate{}, creator...), healthyPlatform(fixedNow, 42, 2, 3, 4)...)

	snap := svc.score(1, fixedNow, creator, platform, holidays)

	if snap.ValidDays >= minValidDays {
		t.Fatalf("valid days = %d, want < %d", snap.ValidDays, minValidDays)
	}
	if snap.ExcludedDays != 2 {
		t.Errorf("excluded days = %d, want 2", snap.ExcludedDays)
	}
	if snap.SaturationScore < mediumRiskScore {
		t.Errorf("score = %v, expected the raw score to still register the drop", snap.SaturationScore)
	}
	if snap.ConfidenceScore >= 0.5 {
		t.Errorf("confidence = %v, want < 0.5", snap.ConfidenceScore)
	}
	if snap.RecommendedAction != domain.ActionNone {
		t.Errorf("action = %s, want %s despite score %v", snap.RecommendedAction, domain.ActionNone, snap.SaturationScore)
	}
	if snap.ExclusionReason != "INSUFFICIENT_DATA" {
		t.Errorf("exclusion reason = %q, want INSUFFICIENT_DATA", snap.ExclusionReason)
	}
}

func TestConfidence(t *testing.T) {
	cases := []struct {
		valid, excluded int
		want            float64
	}{
		{0, 30, 0},
		{3, 0, 0.5 * 3.0 / 7.0},
		{7, 0, 1.0},
		{7, 45, 0.75},
		{90, 0, 1.0},
	}

	for _, tc := range cases {
		got := confidence(tc.valid, tc.excluded)
		if diff := got - tc.want; diff > 1e-9 || diff < -1e-9 {
			t.Errorf("confidence(%d, %d) = %v, want %v", tc.valid, tc.excluded, got, tc.want)
		}
	}
}

func TestUnlockWeight_ScalesWithAccountSize(t *testing.T) {
	small := flatDays(1, fixedNow, 10, 10.0, 0.5, 50)
	mid := flatDays(1, fixedNow, 10, 10.0, 0.5, 250)
	large := flatDays(1, fixedNow, 10, 10.0, 0.5, 900)

	if w := unlockWeight(small); w != unlockWeightSmall {
		t.Errorf("small account weight = %v, want %v", w, unlockWeightSmall)
	}
	if w := unlockWeight(mid); w != unlockWeightMid {
		t.Errorf("mid account weight = %v, want %v", w, unlockWeightMid)
	}
	if w := unlockWeight(large); w != unlockWeightLarge {
		t.Errorf("large account weight = %v, want %v", w, unlockWeightLarge)
	}
}
