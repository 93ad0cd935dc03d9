package domain

// SelectionConfig is the DB-overridable tuning row for the selection engine,
// keyed by behavioral segment. Zero rows means defaults apply everywhere.
type SelectionConfig struct {
	Segment string `json:"segment" gorm:"column:segment;primaryKey"`

	WThompson   float64 `json:"w_thompson" gorm:"column:w_thompson"`
	WDiversity  float64 `json:"w_diversity" gorm:"column:w_diversity"`
	WHistorical float64 `json:"w_historical" gorm:"column:w_historical"`
	WBudget     float64 `json:"w_budget" gorm:"column:w_budget"`

	DiversityWeight   float64 `json:"diversity_weight" gorm:"column:diversity_weight"`
	SegmentMultiplier float64 `json:"segment_multiplier" gorm:"column:segment_multiplier"`

	WeeklyGeneralCap int `json:"weekly_general_cap" gorm:"column:weekly_general_cap"`
	WeeklyUrgentCap  int `json:"weekly_urgent_cap" gorm:"column:weekly_urgent_cap"`

	CooldownDays      int     `json:"cooldown_days" gorm:"column:cooldown_days"`
	DecayHalfLifeDays float64 `json:"decay_half_life_days" gorm:"column:decay_half_life_days"`
}

func (SelectionConfig) TableName() string {
	return "selection_configs"
}
