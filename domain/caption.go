package domain

import (
	"regexp"
	"time"
)

// Price tiers a caption can be sold at.
const (
	TierBudget  = "budget"
	TierMid     = "mid"
	TierPremium = "premium"
	TierBump    = "bump"
)

// AllTiers in quota-fill order.
var AllTiers = []string{TierBudget, TierMid, TierPremium, TierBump}

type Caption struct {
	ID              uint64    `gorm:"primaryKey" json:"id"`
	Text            string    `gorm:"column:text;not null" json:"text"`
	PriceTier       string    `gorm:"column:price_tier;not null" json:"price_tier"`
	ContentCategory string    `gorm:"column:content_category;not null" json:"content_category"`
	HasUrgency      bool      `gorm:"column:has_urgency" json:"has_urgency"`
	CreatedAt       time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

// CaptionCandidate joins a caption with its current bandit stat. For pairs
// with no stat row yet the zero-value Stat carries the cold-start prior.
type CaptionCandidate struct {
	Caption Caption
	Stat    BanditStat
}

// RestrictionSet is the per-creator exclusion rule set. It is supplied by an
// external collaborator on each selection request and never mutated here.
type RestrictionSet struct {
	BannedCategories []string `json:"banned_categories"`
	BannedTiers      []string `json:"banned_tiers"`
	BannedPatterns   []string `json:"banned_patterns"`

	compiled []*regexp.Regexp
}

// Allows reports whether the caption passes every rule. Invalid regex
// patterns are skipped rather than failing the whole request.
func (rs *RestrictionSet) Allows(c Caption) bool {
	for _, cat := range rs.BannedCategories {
		if c.ContentCategory == cat {
			return false
		}
	}
	for _, tier := range rs.BannedTiers {
		if c.PriceTier == tier {
			return false
		}
	}
	if rs.compiled == nil && len(rs.BannedPatterns) > 0 {
		rs.compiled = make([]*regexp.Regexp, 0, len(rs.BannedPatterns))
		for _, p := range rs.BannedPatterns {
			re, err := regexp.Compile(p)
			if err != nil {
				continue
			}
			rs.compiled = append(rs.compiled, re)
		}
	}
	for _, re := range rs.compiled {
		if re.MatchString(c.Text) {
			return false
		}
	}
	return true
}
