package core

// Category classifies a transaction or budget. The set is closed:
// server and UI must agree on the exact spelling of every value.
type Category string

const (
	CategoryFood           Category = "Food"
	CategoryTransportation Category = "Transportation"
	CategoryHousing        Category = "Housing"
	CategoryUtilities      Category = "Utilities"
	CategoryEntertainment  Category = "Entertainment"
	CategoryHealthcare     Category = "Healthcare"
	CategoryShopping       Category = "Shopping"
	CategoryEducation      Category = "Education"
	CategorySavings        Category = "Savings"
	CategoryOther          Category = "Other"
)

// Categories returns the full enumeration in display order.
func Categories() []Category {
	return []Category{
		CategoryFood,
		CategoryTransportation,
		CategoryHousing,
		CategoryUtilities,
		CategoryEntertainment,
		CategoryHealthcare,
		CategoryShopping,
		CategoryEducation,
		CategorySavings,
		CategoryOther,
	}
}

// CategoryColors maps each category to its chart color.
var CategoryColors = map[Category]string{
	CategoryFood:           "#FF6B6B",
	CategoryTransportation: "#4ECDC4",
	CategoryHousing:        "#45B7D1",
	CategoryUtilities:      "#96CEB4",
	CategoryEntertainment:  "#FFEEAD",
	CategoryHealthcare:     "#D4A5A5",
	CategoryShopping:       "#9B59B6",
	CategoryEducation:      "#3498DB",
	CategorySavings:        "#2ECC71",
	CategoryOther:          "#95A5A6",
}

// ValidCategory reports whether s exactly matches an enumeration entry.
func ValidCategory(s string) bool {
	for _, c := range Categories() {
		if string(c) == s {
			return true
		}
	}
	return false
}
