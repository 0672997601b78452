package stylist

import (
	"fmt"
	"strings"

	"github.com/yuefen/wearwise/internal/domain/catalog"
)

// rainSensitive lists materials that fail the precipitation guardrail.
var rainSensitive = map[string]struct{}{
	"suede":  {},
	"silk":   {},
	"velvet": {},
	"linen":  {},
}

// Wearable reports whether the item passes every hard wearability rule for
// the context. Guardrails are strictly pass/fail and run before scoring.
func Wearable(item catalog.Item, ctx Context) bool {
	_, ok := WhyNot(item, ctx)
	return !ok
}

// WhyNot returns the first violated guardrail as a human-readable reason.
// The second return is false when the item is wearable.
func WhyNot(item catalog.Item, ctx Context) (string, bool) {
	material := strings.ToLower(strings.TrimSpace(item.Material))

	if material != "" {
		if _, avoided := ctx.AvoidMaterials[material]; avoided {
			return fmt.Sprintf("%s is on your avoid list", material), true
		}
		if ctx.Precipitation {
			if _, sensitive := rainSensitive[material]; sensitive {
				return fmt.Sprintf("%s does not hold up in rain", material), true
			}
		}
	}

	// Season tags are an allow-list only when present; an untagged item is
	// all-season.
	if len(item.SeasonTags) > 0 {
		matched := false
		for _, season := range SeasonsFor(ctx.Band) {
			if catalog.HasTag(item.SeasonTags, season) {
				matched = true
				break
			}
		}
		if !matched {
			return fmt.Sprintf("tagged for %s, not for %s weather", strings.Join(item.SeasonTags, "/"), ctx.Band), true
		}
	}

	return "", false
}

// eligibleBySlot partitions the guardrail-passing snapshot by kind, bounding
// the combination search space before any scoring happens.
func eligibleBySlot(snap catalog.Snapshot, ctx Context) map[catalog.Kind][]catalog.Item {
	out := make(map[catalog.Kind][]catalog.Item, len(catalog.Kinds))
	for _, item := range snap {
		if Wearable(item, ctx) {
			out[item.Kind] = append(out[item.Kind], item)
		}
	}
	return out
}

// MandatorySlotGaps names the mandatory slots that have no eligible item
// left after guardrail filtering. An empty result means an outfit is
// assemblable.
func MandatorySlotGaps(snap catalog.Snapshot, ctx Context) []string {
	bySlot := eligibleBySlot(snap, ctx)
	var gaps []string
	if len(bySlot[catalog.KindFootwear]) == 0 {
		gaps = append(gaps, "footwear")
	}
	hasOnePiece := len(bySlot[catalog.KindOnePiece]) > 0
	if !hasOnePiece && len(bySlot[catalog.KindTop]) == 0 {
		gaps = append(gaps, "top")
	}
	if !hasOnePiece && len(bySlot[catalog.KindBottom]) == 0 {
		gaps = append(gaps, "bottom")
	}
	return gaps
}
