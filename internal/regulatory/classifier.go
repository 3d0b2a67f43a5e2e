package regulatory

import (
	"strings"

	"github.com/qeme/sentinel-lite/model"
)

// UrgencyKeywords is the global vocabulary signalling urgent regulatory action.
var UrgencyKeywords = []string{
	"immediate", "urgent", "deadline", "mandatory", "required",
	"compliance", "enforcement", "penalty", "fine",
}

// GeneralUpdateWords mark content that announces any change at all.
var GeneralUpdateWords = []string{"update", "new", "amended"}

// Summaries per impact level.
const (
	SummaryCritical = "kritieke wijzigingen gedetecteerd - directe actie vereist"
	SummaryHigh     = "belangrijke wijzigingen - beoordeling binnen 2 weken"
	SummaryMedium   = "nieuwe ontwikkelingen - monitoring aanbevolen"
	SummaryLow      = "algemene updates gedetecteerd"
	SummaryNone     = "geen relevante wijzigingen voor mkb"
)

// Score holds the keyword counts a classification decision is made on.
type Score struct {
	MKBMatches     int
	UrgentMatches  int
	GeneralMention bool
}

// Impact is the outcome of classifying one piece of content.
type Impact struct {
	Level         model.ImpactLevel
	Summary       string
	MKBMatches    int
	UrgentMatches int
}

// Rule is one row of the classification decision table.
type Rule struct {
	Level   model.ImpactLevel
	Summary string
	Matches func(Score) bool
}

// DecisionTable is evaluated top to bottom; the first matching rule wins.
var DecisionTable = []Rule{
	{model.ImpactCritical, SummaryCritical, func(s Score) bool { return s.UrgentMatches >= 3 }},
	{model.ImpactHigh, SummaryHigh, func(s Score) bool { return s.UrgentMatches >= 2 || s.MKBMatches >= 2 }},
	{model.ImpactMedium, SummaryMedium, func(s Score) bool { return s.UrgentMatches >= 1 || s.MKBMatches >= 1 }},
	{model.ImpactLow, SummaryLow, func(s Score) bool { return s.GeneralMention }},
	{model.ImpactNone, SummaryNone, func(Score) bool { return true }},
}

// ScoreContent counts, case-insensitively, how many of the source keywords and
// urgency keywords occur in content. Each keyword counts at most once.
func ScoreContent(content string, source model.Source) Score {
	lower := strings.ToLower(content)
	return Score{
		MKBMatches:     countMatches(lower, source.Keywords),
		UrgentMatches:  countMatches(lower, UrgencyKeywords),
		GeneralMention: countMatches(lower, GeneralUpdateWords) > 0,
	}
}

// Decide maps a score to its level and summary using table.
func Decide(table []Rule, s Score) (model.ImpactLevel, string) {
	for _, rule := range table {
		if rule.Matches(s) {
			return rule.Level, rule.Summary
		}
	}
	return model.ImpactNone, SummaryNone
}

// Classify scores content against the source keywords and the urgency vocabulary.
// It is a pure function of its inputs.
func Classify(content string, source model.Source) Impact {
	s := ScoreContent(content, source)
	level, summary := Decide(DecisionTable, s)
	return Impact{
		Level:         level,
		Summary:       summary,
		MKBMatches:    s.MKBMatches,
		UrgentMatches: s.UrgentMatches,
	}
}

func countMatches(lowerContent string, keywords []string) int {
	n := 0
	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		if strings.Contains(lowerContent, strings.ToLower(kw)) {
			n++
		}
	}
	return n
}
