// Package render draws Green Date grids as PNG or SVG maps.
package render

import (
	"errors"
	"fmt"
	"image/color"
	"os"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Style controls the map palette. Levels are ascending day-of-season
// boundaries; Colours has one more entry than Levels so that days below the
// first level and at or above the last level get their own colour.
type Style struct {
	Width   int      `yaml:"width"`
	Levels  []int    `yaml:"levels"`
	Colours []string `yaml:"colours"`
	NotMet  string   `yaml:"not_met"`
	NoData  string   `yaml:"no_data"`
	Border  string   `yaml:"border"`
	Text    string   `yaml:"text"`
	Back    string   `yaml:"background"`

	palette []color.RGBA
	notMet  color.RGBA
	noData  color.RGBA
	border  color.RGBA
	text    color.RGBA
	back    color.RGBA
}

// DefaultStyle is three bands per month from early October to March on a
// blue (early) to red (late) ramp, for seasons starting in September.
func DefaultStyle() *Style {
	s := &Style{
		Width:  1000,
		Levels: []int{31, 41, 51, 62, 72, 82, 92, 102, 112, 123, 133, 143, 154, 164, 174, 182},
		Colours: []string{
			"#374a9f", "#3967a3", "#4575b3", "#659bc8", "#8abeda", "#acdae9", "#cfebf3", "#ebf7e4", "#fffebe",
			"#fee99d", "#feca7c", "#fca85e", "#f67a49", "#e54f35", "#d02a27", "#b10b26", "#999999",
		},
		NotMet: "#ffffff",
		NoData: "#d9d9d9",
		Border: "#000000",
		Text:   "#1a1a1a",
		Back:   "#ffffff",
	}
	if err := s.compile(); err != nil {
		panic(err)
	}
	return s
}

// LoadStyle reads a YAML style. Unset fields keep their default values.
func LoadStyle(path string) (*Style, error) {
	if path == "" {
		return DefaultStyle(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read style: %w", err)
	}
	s := DefaultStyle()
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("parse style %s: %w", path, err)
	}
	if err := s.compile(); err != nil {
		return nil, fmt.Errorf("style %s: %w", path, err)
	}
	return s, nil
}

func (s *Style) compile() error {
	if s.Width < 100 {
		return fmt.Errorf("width %d is below 100 pixels", s.Width)
	}
	if len(s.Levels) == 0 {
		return errors.New("no levels")
	}
	if !sort.IntsAreSorted(s.Levels) {
		return errors.New("levels must be ascending")
	}
	if len(s.Colours) != len(s.Levels)+1 {
		return fmt.Errorf("%d colours for %d levels, want %d", len(s.Colours), len(s.Levels), len(s.Levels)+1)
	}
	s.palette = make([]color.RGBA, len(s.Colours))
	for i, hex := range s.Colours {
		c, err := parseHex(hex)
		if err != nil {
			return err
		}
		s.palette[i] = c
	}
	for _, f := range []struct {
		hex string
		dst *color.RGBA
	}{{s.NotMet, &s.notMet}, {s.NoData, &s.noData}, {s.Border, &s.border}, {s.Text, &s.text}, {s.Back, &s.back}} {
		c, err := parseHex(f.hex)
		if err != nil {
			return err
		}
		*f.dst = c
	}
	return nil
}

// Classify returns the palette index for a day of season.
func (s *Style) Classify(day int) int {
	return sort.Search(len(s.Levels), func(i int) bool { return s.Levels[i] > day })
}

// Colour returns the palette colour for a day of season.
func (s *Style) Colour(day int) color.RGBA {
	return s.palette[s.Classify(day)]
}

func parseHex(hex string) (color.RGBA, error) {
	h := strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) != 6 {
		return color.RGBA{}, fmt.Errorf("colour %q: want #rrggbb", hex)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("colour %q: %w", hex, err)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}

func css(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
