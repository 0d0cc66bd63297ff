// Package playlist holds the ordered, read-only list of video items a player
// session is mounted with.
package playlist

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrEmpty is returned when a playlist would contain no items.
var ErrEmpty = errors.New("playlist: no items")

// Item is a single playlist entry.
type Item struct {
	// Title is the display title.
	Title string `yaml:"title"`
	// Source locates the media (URL or asset path); loading it is the
	// native player's concern.
	Source string `yaml:"source"`
	// Poster optionally locates a still image shown before playback.
	Poster string `yaml:"poster,omitempty"`
}

// Playlist is an immutable ordered sequence of items. Indices run 0..Len()-1.
type Playlist struct {
	items []Item
}

// New creates a playlist from the given items. The slice is copied; the
// playlist never changes afterward. Returns ErrEmpty for zero items.
func New(items []Item) (*Playlist, error) {
	if len(items) == 0 {
		return nil, ErrEmpty
	}
	copied := make([]Item, len(items))
	copy(copied, items)
	return &Playlist{items: copied}, nil
}

// Len returns the number of items.
func (p *Playlist) Len() int {
	return len(p.items)
}

// At returns the item at index i. The index must be in range; navigation
// normalization happens in the player, not here.
func (p *Playlist) At(i int) Item {
	return p.items[i]
}

// Items returns a copy of all items in order.
func (p *Playlist) Items() []Item {
	out := make([]Item, len(p.items))
	copy(out, p.items)
	return out
}

// document is the on-disk YAML shape.
type document struct {
	Items []Item `yaml:"items"`
}

// LoadFile reads a playlist from a YAML file:
//
//	items:
//	  - title: First clip
//	    source: https://example.com/1.mp4
//	    poster: posters/1.jpg
func LoadFile(path string) (*Playlist, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read playlist: %w", err)
	}

	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse playlist: %w", err)
	}

	for i, item := range doc.Items {
		if item.Source == "" {
			return nil, fmt.Errorf("playlist item %d has no source", i)
		}
	}

	return New(doc.Items)
}
