package domain

// RawProduct is a product record exactly as decoded from the CJ API.
// Field names vary between endpoints and API versions, so no schema is assumed.
type RawProduct map[string]interface{}

// Product is the canonical product record rendered into the feed
type Product struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Vendor      string    `json:"vendor"`
	Image       string    `json:"image"`
	Price       float64   `json:"price"`
	Currency    string    `json:"currency"`
	Inventory   int       `json:"inventory"`
	SKU         string    `json:"sku"`
	Variants    []Variant `json:"variants"`
}

// Variant is a canonical product variant. Order within Product.Variants
// follows the upstream order.
type Variant struct {
	ID        string  `json:"id"`
	SKU       string  `json:"sku"`
	Price     float64 `json:"price"`
	Inventory int     `json:"inventory"`
	Option1   string  `json:"option1"`
	Option2   string  `json:"option2"`
	Option3   string  `json:"option3"`
	Image     string  `json:"image"`
}
