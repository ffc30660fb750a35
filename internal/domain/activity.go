package domain

import "time"

// Activity is a single emission-producing event recorded by a company.
// Activities are immutable once created; they can only be deleted by their owner.
type Activity struct {
	ID            string    `json:"id"`
	CompanyID     string    `json:"company_id"`
	Title         string    `json:"title"`
	Category      Category  `json:"category"`
	Description   string    `json:"description,omitempty"`
	Date          time.Time `json:"date"`
	EmissionValue float64   `json:"emission_value"`
	EmissionUnit  Unit      `json:"emission_unit"`
	CreatedAt     time.Time `json:"created_at"`
}

// OwnedBy reports whether the activity belongs to companyID.
func (a *Activity) OwnedBy(companyID string) bool {
	return a.CompanyID == companyID
}

// EmissionTarget is a company's goal for emissions by a given date,
// either across all activities ("overall") or for one category.
type EmissionTarget struct {
	ID          string    `json:"id"`
	CompanyID   string    `json:"company_id"`
	TargetValue float64   `json:"target_value"`
	TargetUnit  Unit      `json:"target_unit"`
	TargetDate  time.Time `json:"target_date"`
	Category    string    `json:"category"`
	CreatedAt   time.Time `json:"created_at"`
}

// IsOverall reports whether the target spans every category.
func (t *EmissionTarget) IsOverall() bool {
	return t.Category == TargetOverall
}
