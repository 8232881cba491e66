package listing

// Listing captures the item attributes a negotiation runs over. Listings are
// immutable for the lifetime of a session.
type Listing struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       int    `json:"price"`
	Condition   string `json:"condition,omitempty"`
	Category    string `json:"category,omitempty"`
}

// Seed provides the demo listings used by the CLI and the default catalog.
func Seed() []Listing {
	return []Listing{
		{
			ID:          "victorian-sofa",
			Name:        "Victorian Sofa",
			Description: "1960s vintage British sofa",
			Price:       1000,
			Condition:   "Excellent",
			Category:    "Furniture",
		},
		{
			ID:          "vintage-camera",
			Name:        "Vintage Camera",
			Description: "Rare vintage film camera in good condition",
			Price:       500,
			Condition:   "Good",
			Category:    "Electronics",
		},
	}
}
