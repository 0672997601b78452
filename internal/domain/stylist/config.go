package stylist

import "time"

// Weights blends the four per-item sub-scores. They are explicit
// configuration so tests and deployments can override them.
type Weights struct {
	Weather   float64
	Formality float64
	Style     float64
	Rotation  float64
}

// Config holds every tunable the scoring engine consults.
type Config struct {
	Weights       Weights
	TopKPerSlot   int
	AccessoryCap  int
	CacheTTL      time.Duration
	EventOverride map[string]float64
}

// DefaultConfig returns the published engine defaults.
func DefaultConfig() Config {
	return Config{
		Weights: Weights{
			Weather:   0.35,
			Formality: 0.30,
			Style:     0.20,
			Rotation:  0.15,
		},
		TopKPerSlot:  5,
		AccessoryCap: 2,
		CacheTTL:     time.Hour,
	}
}

// normalized fills zero values so a partially populated config behaves like
// the defaults.
func (c Config) normalized() Config {
	def := DefaultConfig()
	if c.Weights == (Weights{}) {
		c.Weights = def.Weights
	}
	if c.TopKPerSlot <= 0 {
		c.TopKPerSlot = def.TopKPerSlot
	}
	if c.AccessoryCap < 0 {
		c.AccessoryCap = def.AccessoryCap
	}
	return c
}

// eventFormality maps a free-form event string to its implied target
// formality. Unknown events fall back to the mid value so lookups are total.
var eventFormality = map[string]float64{
	"black-tie":       0.95,
	"formal":          0.85,
	"business-formal": 0.8,
	"office":          0.65,
	"business-casual": 0.6,
	"smart-casual":    0.55,
	"casual":          0.4,
	"outdoor":         0.4,
	"hiking":          0.3,
	"gym":             0.2,
}

const defaultEventFormality = 0.5

// targetFormality resolves the formality goal for the event, honoring
// per-deployment overrides first.
func (c Config) targetFormality(event string) float64 {
	if v, ok := c.EventOverride[event]; ok {
		return v
	}
	if v, ok := eventFormality[event]; ok {
		return v
	}
	return defaultEventFormality
}

// moodStyleTags lists the style tags each mood prefers.
var moodStyleTags = map[Mood][]string{
	MoodCalm: {"minimal", "classic", "neutral", "relaxed", "clean"},
	MoodBold: {"statement", "bright", "edgy", "trendy", "colorful"},
	MoodCozy: {"knit", "soft", "layered", "comfy", "warm"},
}
