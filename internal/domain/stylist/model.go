package stylist

// Slots assigns item ids to the functional positions of one outfit. A
// onepiece garment fills both Top and Bottom with the same id.
type Slots struct {
	Top         string   `json:"top,omitempty"`
	Bottom      string   `json:"bottom,omitempty"`
	Footwear    string   `json:"footwear"`
	Outerwear   string   `json:"outerwear,omitempty"`
	Accessories []string `json:"accessories,omitempty"`
}

// ItemIDs returns the distinct item ids referenced by the outfit, in slot
// order.
func (s Slots) ItemIDs() []string {
	ids := make([]string, 0, 4+len(s.Accessories))
	ids = append(ids, s.Top)
	if s.Bottom != s.Top {
		ids = append(ids, s.Bottom)
	}
	ids = append(ids, s.Footwear)
	if s.Outerwear != "" {
		ids = append(ids, s.Outerwear)
	}
	ids = append(ids, s.Accessories...)
	return ids
}

// Outfit is one ranked candidate with its score and explanation trail.
type Outfit struct {
	ID        string   `json:"id"`
	Score     float64  `json:"score"`
	Rationale []string `json:"rationale"`
	Slots     Slots    `json:"slots"`

	// Freshness is the aggregate rotation freshness used as the first
	// tie-breaker; it is kept on the wire so cached results rank the same.
	Freshness float64 `json:"freshness"`
}
