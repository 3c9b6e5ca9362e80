package catalog

// SetInfo describes the set a card belongs to.
type SetInfo struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Logo      string `json:"logo,omitempty"`
	CardCount int    `json:"cardCount,omitempty"`
}

// Card is the full catalog record for a single printing.
type Card struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Number        string   `json:"number,omitempty"`
	Rarity        string   `json:"rarity,omitempty"`
	ImageURL      string   `json:"imageUrl,omitempty"`
	ImageURLHiRes string   `json:"imageUrlHiRes,omitempty"`
	Types         []string `json:"types,omitempty"`
	Set           SetInfo  `json:"set"`

	// Language records which catalog language actually served the record,
	// which may be the fallback rather than the requested language.
	Language string `json:"language,omitempty"`
}

// CardSummary is the lighter shape returned by name searches.
type CardSummary struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Number   string `json:"number,omitempty"`
	SetID    string `json:"setId,omitempty"`
	SetName  string `json:"setName,omitempty"`
	ImageURL string `json:"imageUrl,omitempty"`
}
