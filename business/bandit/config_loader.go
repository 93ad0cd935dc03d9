package bandit

import "context"

// loadConfig reads segment overrides from the repo, falling back to the
// service defaults for any unset field.
func (s *SelectionService) loadConfig(ctx context.Context, segment string) Config {
	if s.cfgRepo == nil {
		return s.defaultCfg
	}

	dbCfg, ok, err := s.cfgRepo.GetConfig(ctx, segment)
	if err != nil || !ok {
		return s.defaultCfg
	}

	// start from defaults to keep sane fallbacks for any missing fields
	cfg := s.defaultCfg

	if dbCfg.WThompson > 0 {
		cfg.WThompson = dbCfg.WThompson
	}
	if dbCfg.WDiversity > 0 {
		cfg.WDiversity = dbCfg.WDiversity
	}
	if dbCfg.WHistorical > 0 {
		cfg.WHistorical = dbCfg.WHistorical
	}
	if dbCfg.WBudget > 0 {
		cfg.WBudget = dbCfg.WBudget
	}
	if dbCfg.DiversityWeight > 0 {
		cfg.DiversityWeight = dbCfg.DiversityWeight
	}
	if dbCfg.SegmentMultiplier > 0 {
		cfg.SegmentMultiplier = dbCfg.SegmentMultiplier
	}
	if dbCfg.WeeklyGeneralCap > 0 {
		cfg.WeeklyGeneralCap = dbCfg.WeeklyGeneralCap
	}
	if dbCfg.WeeklyUrgentCap > 0 {
		cfg.WeeklyUrgentCap = dbCfg.WeeklyUrgentCap
	}
	if dbCfg.CooldownDays > 0 {
		cfg.CooldownDays = dbCfg.CooldownDays
	}
	if dbCfg.DecayHalfLifeDays > 0 {
		cfg.DecayHalfLifeDays = dbCfg.DecayHalfLifeDays
	}

	return cfg
}
