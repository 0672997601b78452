package stylist

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/yuefen/wearwise/internal/domain/catalog"
)

// Slot importance used for the outfit-level weighted mean. A onepiece
// garment collects both the top and bottom share.
const (
	slotWeightTop       = 0.30
	slotWeightBottom    = 0.30
	slotWeightFootwear  = 0.25
	slotWeightOuterwear = 0.10
	slotWeightAccessory = 0.05
)

// neutralContribution scores the "none" outerwear choice and an empty
// accessory set.
const neutralContribution = 0.5

type scoredItem struct {
	item      catalog.Item
	total     float64
	weather   float64
	formality float64
	style     float64
	rotation  float64
}

// scoreItem computes the four sub-scores and their weighted blend.
func (c Config) scoreItem(item catalog.Item, ctx Context, freshness float64) scoredItem {
	s := scoredItem{
		item:      item,
		weather:   weatherFit(item.Warmth, ctx.IdealWarmth),
		formality: formalityFit(item.Formality, c.targetFormality(ctx.Event)),
		style:     styleFit(item.StyleTags, ctx.Mood),
		rotation:  freshness,
	}
	w := c.Weights
	s.total = w.Weather*s.weather + w.Formality*s.formality + w.Style*s.style + w.Rotation*s.rotation
	return s
}

// weatherFit penalizes warmth mismatch linearly, a quarter point per level.
func weatherFit(warmth, ideal int) float64 {
	fit := 1 - math.Abs(float64(warmth-ideal))*0.25
	if fit < 0 {
		return 0
	}
	return fit
}

func formalityFit(formality, target float64) float64 {
	fit := 1 - math.Abs(formality-target)
	if fit < 0 {
		return 0
	}
	return fit
}

// styleFit is the overlap ratio between the item's style tags and the
// mood's preferred tags. Untagged items score a neutral mid value.
func styleFit(tags []string, mood Mood) float64 {
	if len(tags) == 0 {
		return neutralContribution
	}
	preferred := moodStyleTags[mood]
	hits := 0
	for _, tag := range preferred {
		if catalog.HasTag(tags, tag) {
			hits++
		}
	}
	denom := len(tags)
	if len(preferred) < denom {
		denom = len(preferred)
	}
	if denom == 0 {
		return neutralContribution
	}
	fit := float64(hits) / float64(denom)
	if fit > 1 {
		return 1
	}
	return fit
}

// rankSlot orders a slot's eligible items by individual score, then id for
// determinism, and keeps the best k.
func rankSlot(items []scoredItem, k int) []scoredItem {
	sort.Slice(items, func(a, b int) bool {
		if items[a].total != items[b].total {
			return items[a].total > items[b].total
		}
		return items[a].item.ID < items[b].item.ID
	})
	if len(items) > k {
		items = items[:k]
	}
	return items
}

type candidate struct {
	outfit  Outfit
	tieKey  string
	reasons subScoreMix
}

// subScoreMix aggregates sub-scores across an outfit, weighted by slot
// importance, to pick the dominant rationale contributors.
type subScoreMix struct {
	weather   float64
	formality float64
	style     float64
	rotation  float64
}

func (m *subScoreMix) add(s scoredItem, weight float64) {
	m.weather += s.weather * weight
	m.formality += s.formality * weight
	m.style += s.style * weight
	m.rotation += s.rotation * weight
}

// enumerate builds every slot combination from the top-k ranked items and
// returns them ranked best first.
func (c Config) enumerate(bySlot map[catalog.Kind][]scoredItem, ctx Context) []candidate {
	tops := bySlot[catalog.KindTop]
	bottoms := bySlot[catalog.KindBottom]
	onepieces := bySlot[catalog.KindOnePiece]
	footwear := bySlot[catalog.KindFootwear]
	outerwear := bySlot[catalog.KindOuterwear]
	accessories := bySlot[catalog.KindAccessory]

	if len(footwear) == 0 {
		return nil
	}
	if len(onepieces) == 0 && (len(tops) == 0 || len(bottoms) == 0) {
		return nil
	}

	// Accessories are not combinatorial: the best few by individual score
	// join every candidate.
	accPick := accessories
	if len(accPick) > c.AccessoryCap {
		accPick = accPick[:c.AccessoryCap]
	}
	accScore := neutralContribution
	if len(accPick) > 0 {
		sum := 0.0
		for _, a := range accPick {
			sum += a.total
		}
		accScore = sum / float64(len(accPick))
	}

	type base struct {
		top, bottom scoredItem
		onePiece    bool
	}
	var bases []base
	for _, t := range tops {
		for _, b := range bottoms {
			bases = append(bases, base{top: t, bottom: b})
		}
	}
	for _, o := range onepieces {
		bases = append(bases, base{top: o, bottom: o, onePiece: true})
	}

	// "none" is always a valid outerwear choice with a neutral score.
	outerOptions := make([]*scoredItem, 0, len(outerwear)+1)
	outerOptions = append(outerOptions, nil)
	for i := range outerwear {
		outerOptions = append(outerOptions, &outerwear[i])
	}

	var candidates []candidate
	for _, b := range bases {
		for _, shoe := range footwear {
			for _, outer := range outerOptions {
				candidates = append(candidates, c.assemble(b.top, b.bottom, b.onePiece, shoe, outer, accPick, accScore))
			}
		}
	}

	sort.Slice(candidates, func(a, b int) bool {
		ca, cb := candidates[a], candidates[b]
		if ca.outfit.Score != cb.outfit.Score {
			return ca.outfit.Score > cb.outfit.Score
		}
		if ca.outfit.Freshness != cb.outfit.Freshness {
			return ca.outfit.Freshness > cb.outfit.Freshness
		}
		return ca.tieKey < cb.tieKey
	})
	return candidates
}

func (c Config) assemble(top, bottom scoredItem, onePiece bool, shoe scoredItem, outer *scoredItem, accPick []scoredItem, accScore float64) candidate {
	slots := Slots{
		Top:      top.item.ID,
		Bottom:   bottom.item.ID,
		Footwear: shoe.item.ID,
	}
	var mix subScoreMix
	score := 0.0
	freshSum := 0.0
	freshCount := 0

	if onePiece {
		score += (slotWeightTop + slotWeightBottom) * top.total
		mix.add(top, slotWeightTop+slotWeightBottom)
		freshSum += top.rotation
		freshCount++
	} else {
		score += slotWeightTop*top.total + slotWeightBottom*bottom.total
		mix.add(top, slotWeightTop)
		mix.add(bottom, slotWeightBottom)
		freshSum += top.rotation + bottom.rotation
		freshCount += 2
	}

	score += slotWeightFootwear * shoe.total
	mix.add(shoe, slotWeightFootwear)
	freshSum += shoe.rotation
	freshCount++

	if outer != nil {
		slots.Outerwear = outer.item.ID
		score += slotWeightOuterwear * outer.total
		mix.add(*outer, slotWeightOuterwear)
		freshSum += outer.rotation
		freshCount++
	} else {
		score += slotWeightOuterwear * neutralContribution
		mix.weather += neutralContribution * slotWeightOuterwear
		mix.formality += neutralContribution * slotWeightOuterwear
		mix.style += neutralContribution * slotWeightOuterwear
		mix.rotation += neutralContribution * slotWeightOuterwear
	}

	score += slotWeightAccessory * accScore
	for _, acc := range accPick {
		slots.Accessories = append(slots.Accessories, acc.item.ID)
		freshSum += acc.rotation
		freshCount++
	}

	outfit := Outfit{
		Score: roundScore(score),
		Slots: slots,
	}
	if freshCount > 0 {
		outfit.Freshness = roundScore(freshSum / float64(freshCount))
	}
	tieKey := strings.Join(outfit.Slots.ItemIDs(), "+")
	outfit.ID = tieKey
	return candidate{outfit: outfit, tieKey: tieKey, reasons: mix}
}

// roundScore trims floating noise so tie comparisons are stable.
func roundScore(v float64) float64 {
	return math.Round(v*10000) / 10000
}

// explain produces the rationale trail naming the one or two dominant
// sub-score contributors, followed by any context caveats.
func explain(mix subScoreMix, ctx Context) []string {
	type contributor struct {
		name  string
		value float64
	}
	ranked := []contributor{
		{"weather", mix.weather},
		{"formality", mix.formality},
		{"style", mix.style},
		{"rotation", mix.rotation},
	}
	sort.SliceStable(ranked, func(a, b int) bool { return ranked[a].value > ranked[b].value })

	var out []string
	for _, c := range ranked[:2] {
		switch c.name {
		case "weather":
			switch ctx.Band {
			case BandCold:
				out = append(out, "warm layering for cold weather")
			case BandHot:
				out = append(out, "light pieces for the heat")
			default:
				out = append(out, "comfortable in mild weather")
			}
		case "formality":
			event := ctx.Event
			if event == "" {
				event = "everyday"
			}
			out = append(out, fmt.Sprintf("suits a %s dress code", event))
		case "style":
			out = append(out, fmt.Sprintf("matches your %s mood", ctx.Mood))
		case "rotation":
			out = append(out, "pieces you have not worn in a while")
		}
	}
	out = append(out, ctx.Caveats...)
	return out
}
