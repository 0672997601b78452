package catalog

import (
	"fmt"
	"strings"

	apperrors "github.com/yuefen/wearwise/pkg/errors"
)

// Kind classifies the wardrobe role a garment can fill.
type Kind string

const (
	KindTop       Kind = "top"
	KindBottom    Kind = "bottom"
	KindOnePiece  Kind = "onepiece"
	KindOuterwear Kind = "outerwear"
	KindFootwear  Kind = "footwear"
	KindAccessory Kind = "accessory"
)

// Kinds lists every recognized garment kind.
var Kinds = []Kind{KindTop, KindBottom, KindOnePiece, KindOuterwear, KindFootwear, KindAccessory}

// Valid reports whether the kind is one of the recognized values.
func (k Kind) Valid() bool {
	switch k {
	case KindTop, KindBottom, KindOnePiece, KindOuterwear, KindFootwear, KindAccessory:
		return true
	}
	return false
}

// Item is a normalized, read-only view of one wardrobe garment.
type Item struct {
	ID         string   `json:"id"`
	Name       string   `json:"name,omitempty"`
	Kind       Kind     `json:"kind"`
	BaseColor  string   `json:"baseColor,omitempty"`
	Material   string   `json:"material,omitempty"`
	Warmth     int      `json:"warmth"`
	Formality  float64  `json:"formality"`
	StyleTags  []string `json:"styleTags,omitempty"`
	EventTags  []string `json:"eventTags,omitempty"`
	SeasonTags []string `json:"seasonTags,omitempty"`
	ImageKey   string   `json:"-"`
}

// Snapshot is an immutable id keyed view of a wardrobe taken for one request.
type Snapshot map[string]Item

// Validate rejects malformed items by id so data quality failures are never
// silently dropped.
func (i Item) Validate() error {
	if strings.TrimSpace(i.ID) == "" {
		return apperrors.Wrap("invalid_context", "item has empty id", nil)
	}
	if !i.Kind.Valid() {
		return apperrors.Wrap("invalid_context", fmt.Sprintf("item %s has unknown kind %q", i.ID, i.Kind), nil)
	}
	if i.Warmth < -2 || i.Warmth > 2 {
		return apperrors.Wrap("invalid_context", fmt.Sprintf("item %s warmth %d outside [-2,2]", i.ID, i.Warmth), nil)
	}
	if i.Formality < 0 || i.Formality > 1 {
		return apperrors.Wrap("invalid_context", fmt.Sprintf("item %s formality %.2f outside [0,1]", i.ID, i.Formality), nil)
	}
	return nil
}

// Validate checks every item in the snapshot.
func (s Snapshot) Validate() error {
	for _, item := range s {
		if err := item.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// HasTag reports whether tag appears in tags, ignoring case.
func HasTag(tags []string, tag string) bool {
	for _, t := range tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}
