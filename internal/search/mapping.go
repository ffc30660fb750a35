package search

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/blevesearch/bleve/v2/mapping"
)

// buildIndexMapping creates the Bleve mapping for activity documents.
// Text fields use English stemming; identifiers, category and date are
// keywords so they can be filtered and sorted exactly.
func buildIndexMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultAnalyzer = en.AnalyzerName

	docMapping := bleve.NewDocumentMapping()

	text := func(field string, store, vectors bool) {
		fm := bleve.NewTextFieldMapping()
		fm.Analyzer = en.AnalyzerName
		fm.Store = store
		fm.IncludeTermVectors = vectors
		docMapping.AddFieldMappingsAt(field, fm)
	}
	text("title", true, true)
	text("description", false, true)
	text("category_label", false, false)

	for _, field := range []string{"id", "company_id", "category", "date", "emission_unit"} {
		fm := bleve.NewTextFieldMapping()
		fm.Analyzer = keyword.Name
		fm.Store = field != "company_id"
		docMapping.AddFieldMappingsAt(field, fm)
	}

	value := bleve.NewNumericFieldMapping()
	value.Store = true
	docMapping.AddFieldMappingsAt("emission_value", value)

	indexMapping.AddDocumentMapping("_default", docMapping)

	return indexMapping
}
