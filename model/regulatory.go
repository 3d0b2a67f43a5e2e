// Package model - Regulatory defines the sources, update records and cache snapshots of the regulatory watch.
package model

import "time"

// ImpactLevel is the ordinal business impact of a detected change for MKB companies.
type ImpactLevel string

// Impact levels ordered by severity.
const (
	ImpactNone     ImpactLevel = "none"
	ImpactLow      ImpactLevel = "low"
	ImpactMedium   ImpactLevel = "medium"
	ImpactHigh     ImpactLevel = "high"
	ImpactCritical ImpactLevel = "critical"
)

var impactRank = map[ImpactLevel]int{
	ImpactNone:     0,
	ImpactLow:      1,
	ImpactMedium:   2,
	ImpactHigh:     3,
	ImpactCritical: 4,
}

// Rank returns the position of the level in the severity order, or -1 for unknown levels.
func (l ImpactLevel) Rank() int {
	if r, ok := impactRank[l]; ok {
		return r
	}
	return -1
}

// AtLeast reports whether l is as severe as other.
func (l ImpactLevel) AtLeast(other ImpactLevel) bool {
	return l.Rank() >= other.Rank()
}

// Valid reports whether l is one of the known impact levels.
func (l ImpactLevel) Valid() bool {
	return l.Rank() >= 0
}

// Source is a monitored regulatory information page.
type Source struct {
	Name      string   `json:"name" yaml:"name"`
	Framework string   `json:"framework" yaml:"framework"`
	URL       string   `json:"url" yaml:"url"`
	Type      string   `json:"type" yaml:"type"`
	Keywords  []string `json:"mkb_keywords" yaml:"mkb_keywords"`
}

// RegulatoryUpdate is produced once per detected, impact-bearing change.
type RegulatoryUpdate struct {
	Source            string      `json:"source"`
	Framework         string      `json:"framework"`
	Title             string      `json:"title"`
	ImpactLevel       ImpactLevel `json:"impact_level"`
	DetectedDate      time.Time   `json:"detected_date"`
	URL               string      `json:"url"`
	Summary           string      `json:"summary"`
	MKBActionRequired bool        `json:"mkb_action_required"`
}

// CacheSnapshot is the persisted result of the last uncached check cycle.
type CacheSnapshot struct {
	Timestamp time.Time          `json:"timestamp"`
	Updates   []RegulatoryUpdate `json:"updates"`
}

// CountAtLevel returns how many updates carry exactly the given level.
func CountAtLevel(updates []RegulatoryUpdate, level ImpactLevel) int {
	n := 0
	for _, u := range updates {
		if u.ImpactLevel == level {
			n++
		}
	}
	return n
}

// FilterLevel returns the updates carrying exactly the given level, in order.
func FilterLevel(updates []RegulatoryUpdate, level ImpactLevel) []RegulatoryUpdate {
	var out []RegulatoryUpdate
	for _, u := range updates {
		if u.ImpactLevel == level {
			out = append(out, u)
		}
	}
	return out
}
