package domain

// Occupation is one row of the ESCO occupation catalog.
type Occupation struct {
	Title       string
	Description string
	ESCOCode    string
}
