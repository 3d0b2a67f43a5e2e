// Package updates defines the GraphQL queries for the regulatory watch.
package updates

import (
	"github.com/graphql-go/graphql"
	"github.com/qeme/sentinel-lite/model"
)

// GetQueryFields returns the regulatory queries to be mounted in the root schema.
func GetQueryFields(checker Checker, sources SourceLister) graphql.Fields {
	return graphql.Fields{
		"regulatoryUpdates": &graphql.Field{
			Type: graphql.NewList(RegulatoryUpdateType),
			Args: graphql.FieldConfigArgument{
				"refresh":  &graphql.ArgumentConfig{Type: graphql.Boolean, DefaultValue: false},
				"limit":    &graphql.ArgumentConfig{Type: graphql.Int},
				"minLevel": &graphql.ArgumentConfig{Type: ImpactLevelEnum},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				refresh, _ := p.Args["refresh"].(bool)
				limit, ok := p.Args["limit"].(int)
				if !ok {
					limit = -1
				}
				minLevel, _ := p.Args["minLevel"].(model.ImpactLevel)
				return ResolveUpdates(p.Context, checker, refresh, limit, minLevel)
			},
		},
		"regulatoryStatus": &graphql.Field{
			Type: RegulatoryStatusType,
			Args: graphql.FieldConfigArgument{
				"refresh": &graphql.ArgumentConfig{Type: graphql.Boolean, DefaultValue: false},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				refresh, _ := p.Args["refresh"].(bool)
				return ResolveStatus(p.Context, checker, refresh)
			},
		},
		"regulatorySources": &graphql.Field{
			Type: graphql.NewList(SourceType),
			Resolve: func(_ graphql.ResolveParams) (interface{}, error) {
				return sources.Sources(), nil
			},
		},
	}
}
