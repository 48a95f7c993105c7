package models

// Restaurant is one candidate item. Records are sourced from the places
// lookup at session creation and are immutable once stored in a deck.
type Restaurant struct {
	ID         string  `dynamodbav:"id" json:"id"`
	Name       string  `dynamodbav:"name" json:"name"`
	Rating     float64 `dynamodbav:"rating" json:"rating"`
	PriceLevel int     `dynamodbav:"priceLevel" json:"priceLevel"`
	PhotoURL   string  `dynamodbav:"photoUrl,omitempty" json:"photoUrl,omitempty"`
	Vicinity   string  `dynamodbav:"vicinity,omitempty" json:"vicinity,omitempty"`
	Distance   string  `dynamodbav:"distance" json:"distance"`
	Latitude   float64 `dynamodbav:"lat" json:"lat"`
	Longitude  float64 `dynamodbav:"lng" json:"lng"`
	Phone      string  `dynamodbav:"phone,omitempty" json:"phone,omitempty"`
	Website    string  `dynamodbav:"website,omitempty" json:"website,omitempty"`
	MapURL     string  `dynamodbav:"mapUrl,omitempty" json:"mapUrl,omitempty"`
}
