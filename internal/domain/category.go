package domain

import "strings"

// Category is the fixed set of activity categories.
type Category string

// Activity categories.
const (
	CategoryEnergy         Category = "energy"
	CategoryTransportation Category = "transportation"
	CategoryManufacturing  Category = "manufacturing"
	CategoryBusinessTravel Category = "business_travel"
	CategoryWaste          Category = "waste"
	CategoryWater          Category = "water"
	CategoryOther          Category = "other"
)

// TargetOverall is the target category covering all activities.
const TargetOverall = "overall"

var activityCategories = []Category{
	CategoryEnergy,
	CategoryTransportation,
	CategoryManufacturing,
	CategoryBusinessTravel,
	CategoryWaste,
	CategoryWater,
	CategoryOther,
}

// ActivityCategories returns the activity categories in display order.
func ActivityCategories() []Category {
	out := make([]Category, len(activityCategories))
	copy(out, activityCategories)
	return out
}

// Valid reports whether c is a known activity category.
func (c Category) Valid() bool {
	for _, known := range activityCategories {
		if c == known {
			return true
		}
	}
	return false
}

// Label returns the human-readable name, e.g. "Business Travel".
func (c Category) Label() string {
	words := strings.Split(string(c), "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

// ValidTargetCategory reports whether s is "overall" or an activity category.
func ValidTargetCategory(s string) bool {
	return s == TargetOverall || Category(s).Valid()
}

// Unit is the unit an emission value is recorded in.
type Unit string

// Emission units. Values are stored as entered and never converted.
const (
	UnitKg     Unit = "kg"
	UnitTonnes Unit = "tonnes"
)

// Valid reports whether u is a known unit.
func (u Unit) Valid() bool {
	return u == UnitKg || u == UnitTonnes
}

// Industry values accepted at registration.
var Industries = []string{
	"agriculture",
	"manufacturing",
	"services",
	"technology",
	"energy",
	"transportation",
	"retail",
	"healthcare",
	"finance",
	"other",
}

// CompanySizes accepted at registration.
var CompanySizes = []string{"small", "medium", "large"}
