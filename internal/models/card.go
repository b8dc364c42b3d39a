package models

// CardSummary is a normalised result from an external card database.
// It only lives for the duration of an admin search-and-select flow.
type CardSummary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	ImageURL    string `json:"imageUrl"`
	Description string `json:"description,omitempty"`
}
