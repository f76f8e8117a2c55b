package models

// Category is a seeded submission category (e.g. Scam, Hacking). Icon names
// map to an enumerated client-side set with a fallback; they are opaque here.
type Category struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	Icon        string  `json:"icon"`
}

// Cryptocurrency is a seeded coin/token submissions reference.
type Cryptocurrency struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
	Icon   string `json:"icon"`
}
