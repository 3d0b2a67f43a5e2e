// Package scan exposes the compliance scan endpoints on top of a pluggable Scanner.
package scan

import (
	"context"

	"github.com/qeme/sentinel-lite/model"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Scanner runs compliance scans. Reports are free-form JSON objects.
type Scanner interface {
	QuickScan(ctx context.Context, req model.QuickScanRequest) (map[string]interface{}, error)
	FullScan(ctx context.Context, req model.FullScanRequest) (map[string]interface{}, error)
}

// Request defaults applied before a scan.
const (
	DefaultCompanyName     = "Test Bedrijf"
	DefaultSector          = "algemeen"
	DefaultComplianceLevel = "basic"
	DefaultEmployeeCount   = 10
)

// Sectors are the supported business sectors.
var Sectors = []string{
	DefaultSector,
	"zorg",
	"financieel",
	"retail",
	"horeca",
	"technologie",
	"onderwijs",
}

// ComplianceLevels are the offered subscription levels.
var ComplianceLevels = []model.Option{
	{Value: "basic", Label: "Basic (€49/maand)", Description: "GDPR basics, ideaal voor starters"},
	{Value: "standard", Label: "Standard (€99/maand)", Description: "GDPR + EU AI Act basics"},
	{Value: "premium", Label: "Premium (€199/maand)", Description: "Volledig compliance pakket"},
}

// SectorOptions returns the sectors as dropdown options with title-cased labels.
func SectorOptions() []model.Option {
	title := cases.Title(language.Dutch)
	out := make([]model.Option, 0, len(Sectors))
	for _, s := range Sectors {
		out = append(out, model.Option{Value: s, Label: title.String(s)})
	}
	return out
}

func knownSector(s string) bool {
	for _, v := range Sectors {
		if v == s {
			return true
		}
	}
	return false
}

func knownLevel(s string) bool {
	for _, v := range ComplianceLevels {
		if v.Value == s {
			return true
		}
	}
	return false
}

// NormalizeQuickScan fills in the defaults of a quick scan request.
func NormalizeQuickScan(req model.QuickScanRequest) model.QuickScanRequest {
	if req.CompanyName == "" {
		req.CompanyName = DefaultCompanyName
	}
	if req.Sector == "" {
		req.Sector = DefaultSector
	}
	return req
}

// NormalizeFullScan fills in defaults and replaces unknown sectors and levels
// with the general sector and the basic level.
func NormalizeFullScan(req model.FullScanRequest) model.FullScanRequest {
	if !knownSector(req.Sector) {
		req.Sector = DefaultSector
	}
	if !knownLevel(req.ComplianceLevel) {
		req.ComplianceLevel = DefaultComplianceLevel
	}
	if req.EmployeeCount == nil {
		n := DefaultEmployeeCount
		req.EmployeeCount = &n
	}
	if req.ProcessesPersonalData == nil {
		yes := true
		req.ProcessesPersonalData = &yes
	}
	return req
}

// Profile extracts the company profile of a normalised full scan request.
func Profile(req model.FullScanRequest) model.CompanyProfile {
	p := model.CompanyProfile{
		CompanyName:            req.CompanyName,
		Sector:                 req.Sector,
		ComplianceLevel:        req.ComplianceLevel,
		UsesAI:                 req.UsesAI,
		InternationalCustomers: req.InternationalCustomers,
		ContactEmail:           req.ContactEmail,
	}
	if req.EmployeeCount != nil {
		p.EmployeeCount = *req.EmployeeCount
	}
	if req.ProcessesPersonalData != nil {
		p.ProcessesPersonalData = *req.ProcessesPersonalData
	}
	return p
}
