// Package updates defines the GraphQL types for regulatory updates.
package updates

import (
	"github.com/graphql-go/graphql"
	"github.com/qeme/sentinel-lite/model"
)

// ImpactLevelEnum exposes the impact scale.
var ImpactLevelEnum = graphql.NewEnum(graphql.EnumConfig{
	Name: "ImpactLevel",
	Values: graphql.EnumValueConfigMap{
		"CRITICAL": &graphql.EnumValueConfig{Value: model.ImpactCritical},
		"HIGH":     &graphql.EnumValueConfig{Value: model.ImpactHigh},
		"MEDIUM":   &graphql.EnumValueConfig{Value: model.ImpactMedium},
		"LOW":      &graphql.EnumValueConfig{Value: model.ImpactLow},
		"NONE":     &graphql.EnumValueConfig{Value: model.ImpactNone},
	},
})

// RegulatoryUpdateType represents one detected regulatory change.
var RegulatoryUpdateType = graphql.NewObject(graphql.ObjectConfig{
	Name: "RegulatoryUpdate",
	Fields: graphql.Fields{
		"source":              &graphql.Field{Type: graphql.String},
		"framework":           &graphql.Field{Type: graphql.String},
		"title":               &graphql.Field{Type: graphql.String},
		"impact_level":        &graphql.Field{Type: ImpactLevelEnum},
		"detected_date":       &graphql.Field{Type: graphql.DateTime},
		"url":                 &graphql.Field{Type: graphql.String},
		"summary":             &graphql.Field{Type: graphql.String},
		"mkb_action_required": &graphql.Field{Type: graphql.Boolean},
	},
})

// UpdateSummaryType is the trimmed update shown on the status card.
var UpdateSummaryType = graphql.NewObject(graphql.ObjectConfig{
	Name: "UpdateSummary",
	Fields: graphql.Fields{
		"framework":    &graphql.Field{Type: graphql.String},
		"title":        &graphql.Field{Type: graphql.String},
		"impact_level": &graphql.Field{Type: ImpactLevelEnum},
		"summary":      &graphql.Field{Type: graphql.String},
		"url":          &graphql.Field{Type: graphql.String},
	},
})

// RegulatoryStatusType mirrors the REST status payload.
var RegulatoryStatusType = graphql.NewObject(graphql.ObjectConfig{
	Name: "RegulatoryStatus",
	Fields: graphql.Fields{
		"last_check":       &graphql.Field{Type: graphql.DateTime},
		"total_updates":    &graphql.Field{Type: graphql.Int},
		"critical_updates": &graphql.Field{Type: graphql.Int},
		"updates":          &graphql.Field{Type: graphql.NewList(UpdateSummaryType)},
	},
})

// SourceType represents a monitored source.
var SourceType = graphql.NewObject(graphql.ObjectConfig{
	Name: "RegulatorySource",
	Fields: graphql.Fields{
		"name":         &graphql.Field{Type: graphql.String},
		"framework":    &graphql.Field{Type: graphql.String},
		"url":          &graphql.Field{Type: graphql.String},
		"type":         &graphql.Field{Type: graphql.String},
		"mkb_keywords": &graphql.Field{Type: graphql.NewList(graphql.String)},
	},
})
