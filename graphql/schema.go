// Package graphql assembles the root GraphQL schema.
package graphql

import (
	"github.com/graphql-go/graphql"
	"github.com/qeme/sentinel-lite/graphql/modules/updates"
)

// CreateSchema builds the schema with every module's query fields mounted on Query.
func CreateSchema(checker updates.Checker, sources updates.SourceLister) (graphql.Schema, error) {
	fields := graphql.Fields{}
	for name, field := range updates.GetQueryFields(checker, sources) {
		fields[name] = field
	}

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: graphql.NewObject(graphql.ObjectConfig{
			Name:   "Query",
			Fields: fields,
		}),
	})
}
