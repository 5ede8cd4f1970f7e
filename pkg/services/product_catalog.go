package services

// ProductCatalog maps product descriptions to dense integer codes in
// first-seen order. Codes start at 0 and are never reused.
// A catalog belongs to one forecast run and is not safe for concurrent use.
type ProductCatalog struct {
	codes        map[string]int
	descriptions []string
}

// NewProductCatalog returns an empty catalog.
func NewProductCatalog() *ProductCatalog {
	return &ProductCatalog{codes: make(map[string]int)}
}

// Encode returns the code for description, assigning the next free code if
// the description has not been seen before.
func (c *ProductCatalog) Encode(description string) int {
	if code, ok := c.codes[description]; ok {
		return code
	}
	code := len(c.descriptions)
	c.codes[description] = code
	c.descriptions = append(c.descriptions, description)
	return code
}

// Code looks up an existing description without assigning a new code.
func (c *ProductCatalog) Code(description string) (int, bool) {
	code, ok := c.codes[description]
	return code, ok
}

// Description is the reverse lookup of Code.
func (c *ProductCatalog) Description(code int) (string, bool) {
	if code < 0 || code >= len(c.descriptions) {
		return "", false
	}
	return c.descriptions[code], true
}

// Products returns a copy of the descriptions ordered by code.
func (c *ProductCatalog) Products() []string {
	out := make([]string, len(c.descriptions))
	copy(out, c.descriptions)
	return out
}

func (c *ProductCatalog) Len() int {
	return len(c.descriptions)
}

// CatalogFromRecords encodes every description of records in order.
func CatalogFromRecords(records []ValidRecord) *ProductCatalog {
	catalog := NewProductCatalog()
	for _, r := range records {
		catalog.Encode(r.ProductDescription)
	}
	return catalog
}
