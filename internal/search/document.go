// Package search provides company-scoped full-text search over activities using Bleve.
package search

import (
	"github.com/carbontrack/carbontrack-server/internal/domain"
)

// ActivityDocument is the indexed form of an activity.
type ActivityDocument struct {
	ID            string  `json:"id"`
	CompanyID     string  `json:"company_id"`
	Title         string  `json:"title"`
	Description   string  `json:"description,omitempty"`
	Category      string  `json:"category"`
	CategoryLabel string  `json:"category_label"`
	Date          string  `json:"date"` // YYYY-MM-DD, sorts lexically
	EmissionValue float64 `json:"emission_value"`
	EmissionUnit  string  `json:"emission_unit"`
}

// NewActivityDocument builds the index document for an activity.
func NewActivityDocument(a *domain.Activity) *ActivityDocument {
	return &ActivityDocument{
		ID:            a.ID,
		CompanyID:     a.CompanyID,
		Title:         a.Title,
		Description:   a.Description,
		Category:      string(a.Category),
		CategoryLabel: a.Category.Label(),
		Date:          domain.FormatDate(a.Date),
		EmissionValue: a.EmissionValue,
		EmissionUnit:  string(a.EmissionUnit),
	}
}

// ToMap converts the document to a map whose keys match the index mapping.
func (d *ActivityDocument) ToMap() map[string]any {
	m := map[string]any{
		"id":             d.ID,
		"company_id":     d.CompanyID,
		"title":          d.Title,
		"category":       d.Category,
		"category_label": d.CategoryLabel,
		"date":           d.Date,
		"emission_value": d.EmissionValue,
		"emission_unit":  d.EmissionUnit,
	}
	if d.Description != "" {
		m["description"] = d.Description
	}
	return m
}
