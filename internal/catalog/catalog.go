// internal/catalog/catalog.go
//
// Card catalog for the guessing game.
//
// Responsibilities:
//   - Decode the catalog from YAML (embedded default or CATALOG_FILE).
//   - Validate records (unique ids, names, known enum labels).
//   - Supply lookups: Get, All, Random, Search (incremental search UI).
//
// A Catalog is immutable after Load; every method is safe for concurrent use.

package catalog

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/robalobadob/crwordle/assets"
)

// SearchLimit caps Search results.
const SearchLimit = 8

// ErrEmptyCatalog is returned when a catalog source has no cards.
var ErrEmptyCatalog = errors.New("catalog: no cards")

// Entity is one card.
type Entity struct {
	ID          string   `yaml:"id" json:"id"`
	Name        string   `yaml:"name" json:"name"`
	Elixir      float64  `yaml:"elixir" json:"elixir"`
	Rarity      Rarity   `yaml:"rarity" json:"rarity"`
	Type        string   `yaml:"type" json:"type"`
	Range       string   `yaml:"range" json:"range"`
	Speed       Speed    `yaml:"speed" json:"speed"`
	HitSpeed    Interval `yaml:"hitSpeed" json:"hitSpeed"`
	ReleaseYear int      `yaml:"releaseYear" json:"releaseYear"`
}

// Catalog is an ordered, read-only set of entities.
type Catalog struct {
	items []Entity
	byID  map[string]int
}

// Picker is the slice of math/rand/v2 the catalog needs.
type Picker interface {
	IntN(n int) int
}

type file struct {
	Cards []Entity `yaml:"cards"`
}

// Load decodes a YAML catalog document.
func Load(r io.Reader) (*Catalog, error) {
	var f file
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyCatalog
		}
		return nil, fmt.Errorf("catalog: decode: %w", err)
	}
	return New(f.Cards)
}

// LoadFile loads a catalog from a YAML file on disk.
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Load(f)
}

// Default loads the embedded catalog.
func Default() (*Catalog, error) {
	b, err := assets.Cards()
	if err != nil {
		return nil, err
	}
	return Load(bytes.NewReader(b))
}

// Open loads the YAML file at path, or the embedded catalog when path is empty.
func Open(path string) (*Catalog, error) {
	if path != "" {
		return LoadFile(path)
	}
	return Default()
}

// New builds a catalog from entities, preserving order.
func New(items []Entity) (*Catalog, error) {
	if len(items) == 0 {
		return nil, ErrEmptyCatalog
	}
	c := &Catalog{
		items: make([]Entity, 0, len(items)),
		byID:  make(map[string]int, len(items)),
	}
	for i, e := range items {
		e.ID = strings.TrimSpace(e.ID)
		e.Name = strings.TrimSpace(e.Name)
		if e.ID == "" {
			return nil, fmt.Errorf("catalog: card #%d has no id", i)
		}
		if e.Name == "" {
			return nil, fmt.Errorf("catalog: card %q has no name", e.ID)
		}
		if _, ok := rarityNames[e.Rarity]; !ok {
			return nil, fmt.Errorf("catalog: card %q has no rarity", e.ID)
		}
		if _, dup := c.byID[e.ID]; dup {
			return nil, fmt.Errorf("catalog: duplicate id %q", e.ID)
		}
		c.byID[e.ID] = len(c.items)
		c.items = append(c.items, e)
	}
	return c, nil
}

// Len reports the number of cards.
func (c *Catalog) Len() int { return len(c.items) }

// All returns a copy of every card in catalog order.
func (c *Catalog) All() []Entity {
	return append([]Entity(nil), c.items...)
}

// At returns the card at index i.
func (c *Catalog) At(i int) Entity { return c.items[i] }

// Get looks a card up by id.
func (c *Catalog) Get(id string) (Entity, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Entity{}, false
	}
	return c.items[i], true
}

// Random picks a card uniformly.
func (c *Catalog) Random(p Picker) Entity {
	return c.items[p.IntN(len(c.items))]
}

// Search returns up to limit cards whose name contains query
// (case-insensitive), skipping ids in exclude. An empty query matches nothing.
// limit <= 0 means SearchLimit.
func (c *Catalog) Search(query string, exclude map[string]bool, limit int) []Entity {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return []Entity{}
	}
	if limit <= 0 {
		limit = SearchLimit
	}
	out := make([]Entity, 0, limit)
	for _, e := range c.items {
		if exclude[e.ID] {
			continue
		}
		if strings.Contains(strings.ToLower(e.Name), q) {
			out = append(out, e)
			if len(out) == limit {
				break
			}
		}
	}
	return out
}
