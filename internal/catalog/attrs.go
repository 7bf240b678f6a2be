// internal/catalog/attrs.go
//
// Typed card attributes.
// Defines:
//   - Rarity:   ordinal, always present (Common < … < Champion).
//   - Speed:    ordinal movement speed; SpeedNA marks "not applicable".
//   - Interval: attack interval in seconds; Valid=false marks "not applicable".
//
// All three decode from YAML labels and encode to the same labels in JSON,
// so clients see "Legendary", "Very Fast", 1.2 or "N/A".

package catalog

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// NA is the label used for absent values, both on input and output.
const NA = "N/A"

// Rarity is the card rarity. The zero value is invalid.
type Rarity int

const (
	RarityCommon Rarity = iota + 1
	RarityRare
	RarityEpic
	RarityLegendary
	RarityChampion
)

var rarityNames = map[Rarity]string{
	RarityCommon:    "Common",
	RarityRare:      "Rare",
	RarityEpic:      "Epic",
	RarityLegendary: "Legendary",
	RarityChampion:  "Champion",
}

// ParseRarity maps a label (case-insensitive) to a Rarity.
func ParseRarity(s string) (Rarity, error) {
	for r, name := range rarityNames {
		if strings.EqualFold(strings.TrimSpace(s), name) {
			return r, nil
		}
	}
	return 0, fmt.Errorf("catalog: unknown rarity %q", s)
}

// Rank is the position in the rarity order (1 = lowest).
func (r Rarity) Rank() int { return int(r) }

func (r Rarity) String() string {
	if n, ok := rarityNames[r]; ok {
		return n
	}
	return "Rarity(" + strconv.Itoa(int(r)) + ")"
}

func (r *Rarity) UnmarshalYAML(n *yaml.Node) error {
	v, err := ParseRarity(n.Value)
	if err != nil {
		return err
	}
	*r = v
	return nil
}

func (r Rarity) MarshalJSON() ([]byte, error) { return json.Marshal(r.String()) }

// Speed is the movement speed of a troop. SpeedNA (the zero value) sits
// below every real speed, which is how an absent target speed compares.
type Speed int

const (
	SpeedNA Speed = iota
	SpeedSlow
	SpeedMedium
	SpeedFast
	SpeedVeryFast
)

var speedNames = map[Speed]string{
	SpeedNA:       NA,
	SpeedSlow:     "Slow",
	SpeedMedium:   "Medium",
	SpeedFast:     "Fast",
	SpeedVeryFast: "Very Fast",
}

// ParseSpeed maps a label to a Speed. Empty input, "N/A" and the scraper's
// "k.A." all decode to SpeedNA.
func ParseSpeed(s string) (Speed, error) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "", "n/a", "k.a.":
		return SpeedNA, nil
	case "veryfast":
		return SpeedVeryFast, nil
	}
	for sp, name := range speedNames {
		if strings.EqualFold(s, name) {
			return sp, nil
		}
	}
	return SpeedNA, fmt.Errorf("catalog: unknown speed %q", s)
}

// Present reports whether the speed is a real value.
func (s Speed) Present() bool { return s != SpeedNA }

// Rank is the position in the speed order; SpeedNA ranks 0.
func (s Speed) Rank() int { return int(s) }

func (s Speed) String() string {
	if n, ok := speedNames[s]; ok {
		return n
	}
	return "Speed(" + strconv.Itoa(int(s)) + ")"
}

func (s *Speed) UnmarshalYAML(n *yaml.Node) error {
	v, err := ParseSpeed(n.Value)
	if err != nil {
		return err
	}
	*s = v
	return nil
}

func (s Speed) MarshalJSON() ([]byte, error) { return json.Marshal(s.String()) }

// Interval is an optional duration in seconds (hit speed).
type Interval struct {
	Seconds float64
	Valid   bool
}

// Seconds builds a present Interval.
func Seconds(v float64) Interval { return Interval{Seconds: v, Valid: true} }

func (iv Interval) String() string {
	if !iv.Valid {
		return NA
	}
	return strconv.FormatFloat(iv.Seconds, 'f', -1, 64)
}

func (iv *Interval) UnmarshalYAML(n *yaml.Node) error {
	s := strings.TrimSpace(n.Value)
	switch strings.ToLower(s) {
	case "", "n/a", "k.a.", "~", "null":
		*iv = Interval{}
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("catalog: bad hit speed %q: %w", s, err)
	}
	if v <= 0 {
		// The scraper writes 0 for "no hit speed".
		*iv = Interval{}
		return nil
	}
	*iv = Seconds(v)
	return nil
}

func (iv Interval) MarshalJSON() ([]byte, error) {
	if !iv.Valid {
		return json.Marshal(NA)
	}
	return json.Marshal(iv.Seconds)
}
