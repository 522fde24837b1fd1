package product

// Product is a catalogue entry. Products are not persisted.
type Product struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
