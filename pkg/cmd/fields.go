package cmd

import (
	"github.com/hooklinehq/hookline/pkg/filter"
	"github.com/hooklinehq/hookline/pkg/models"
)

// NewFieldRegistry builds the filterable column tables for all event
// sources. The action pseudo-column is filterable everywhere; the rest are
// snapshot fields specific to each source.
func NewFieldRegistry() *filter.Registry {
	registry := filter.NewRegistry()

	registry.Register(string(models.EventSourceDataset), map[string]filter.Extractor{
		models.ActionColumn: filter.Column(models.ActionColumn),
		"id":                filter.Column("id"),
		"name":              filter.Column("name"),
		"description":       filter.Column("description"),
		"metadata":          filter.Column("metadata"),
	})

	registry.Register(string(models.EventSourcePrompt), map[string]filter.Extractor{
		models.ActionColumn: filter.Column(models.ActionColumn),
		"id":                filter.Column("id"),
		"name":              filter.Column("name"),
		"version":           filter.Column("version"),
		"labels":            filter.Column("labels"),
		"tags":              filter.Column("tags"),
		"type":              filter.Column("type"),
	})

	return registry
}
