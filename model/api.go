// Package model - API types for regulatory status and compliance scan requests/responses
package model

import "time"

// RegulatoryStatus is the externally exposed view of a check cycle.
type RegulatoryStatus struct {
	LastCheck       time.Time       `json:"last_check"`
	TotalUpdates    int             `json:"total_updates"`
	CriticalUpdates int             `json:"critical_updates"`
	Updates         []UpdateSummary `json:"updates"`
}

// UpdateSummary is the trimmed update record returned to dashboard clients.
type UpdateSummary struct {
	Framework   string      `json:"framework"`
	Title       string      `json:"title"`
	ImpactLevel ImpactLevel `json:"impact_level"`
	Summary     string      `json:"summary"`
	URL         string      `json:"url"`
}

// DefaultStatusLimit is the number of updates exposed by the status endpoint.
const DefaultStatusLimit = 5

// NewRegulatoryStatus builds the status view, truncating updates to limit items.
func NewRegulatoryStatus(updates []RegulatoryUpdate, checkedAt time.Time, limit int) RegulatoryStatus {
	if limit < 0 || limit > len(updates) {
		limit = len(updates)
	}

	summaries := make([]UpdateSummary, 0, limit)
	for _, u := range updates[:limit] {
		summaries = append(summaries, UpdateSummary{
			Framework:   u.Framework,
			Title:       u.Title,
			ImpactLevel: u.ImpactLevel,
			Summary:     u.Summary,
			URL:         u.URL,
		})
	}

	return RegulatoryStatus{
		LastCheck:       checkedAt,
		TotalUpdates:    len(updates),
		CriticalUpdates: CountAtLevel(updates, ImpactCritical),
		Updates:         summaries,
	}
}

// QuickScanRequest is the body of POST /api/quick-scan.
type QuickScanRequest struct {
	CompanyName string `json:"bedrijfsnaam"`
	Sector      string `json:"sector"`
	AIPrompt    string `json:"ai_prompt"`
}

// FullScanRequest is the body of POST /api/full-scan.
type FullScanRequest struct {
	CompanyName            string `json:"bedrijfsnaam"`
	Sector                 string `json:"sector"`
	ComplianceLevel        string `json:"compliance_level"`
	EmployeeCount          *int   `json:"werknemers_aantal,omitempty"`
	ProcessesPersonalData  *bool  `json:"verwerkt_persoonlijke_data,omitempty"`
	UsesAI                 bool   `json:"gebruikt_ai"`
	InternationalCustomers bool   `json:"internationale_klanten"`
	ContactEmail           string `json:"contact_email"`
	AIPrompt               string `json:"ai_prompt"`
	LegalBasis             string `json:"legal_basis,omitempty"`
	Purpose                string `json:"purpose,omitempty"`
	TransferCountry        string `json:"transfer_country,omitempty"`
}

// CompanyProfile is the normalised profile handed to a compliance scanner.
type CompanyProfile struct {
	CompanyName            string `json:"bedrijfsnaam"`
	Sector                 string `json:"sector"`
	ComplianceLevel        string `json:"compliance_level"`
	EmployeeCount          int    `json:"werknemers_aantal"`
	ProcessesPersonalData  bool   `json:"verwerkt_persoonlijke_data"`
	UsesAI                 bool   `json:"gebruikt_ai"`
	InternationalCustomers bool   `json:"internationale_klanten"`
	ContactEmail           string `json:"contact_email"`
}

// Option is a value/label pair used by the dashboard dropdowns.
type Option struct {
	Value       string `json:"value"`
	Label       string `json:"label"`
	Description string `json:"description,omitempty"`
}
