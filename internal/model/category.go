package model

// Category is one of the fixed spending categories.
type Category string

// Spending categories.
const (
	CategoryFood      Category = "Food"
	CategoryTransport Category = "Transport"
	CategoryHealth    Category = "Health"
	CategoryEducation Category = "Education"
	CategoryLeisure   Category = "Leisure"
	CategoryHousing   Category = "Housing"
	CategoryClothing  Category = "Clothing"
	CategoryOther     Category = "Other"
)

// Categories lists every category in reporting order.
var Categories = []Category{
	CategoryFood,
	CategoryTransport,
	CategoryHealth,
	CategoryLeisure,
	CategoryClothing,
	CategoryHousing,
	CategoryEducation,
	CategoryOther,
}

// Valid reports whether c belongs to the taxonomy.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// CategorizedTransaction is a transaction with its derived category.
type CategorizedTransaction struct {
	Transaction
	Category   Category `json:"category"`
	Confidence float64  `json:"confidence"`
}
