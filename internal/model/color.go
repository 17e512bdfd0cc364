package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Color is a 24-bit RGB value, independent of any platform color type. On
// the wire and in the database it is the lowercase "#rrggbb" form.
type Color struct {
	R uint8
	G uint8
	B uint8
}

func (c Color) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Hex())
}

func (c *Color) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseHex(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Hex encodes the color as a lowercase "#rrggbb" string, the form stored in
// the database.
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// ParseHex decodes a "#rrggbb" (or bare "rrggbb") string. Round-trips
// exactly with Hex for any 8-bit channel values.
func ParseHex(s string) (Color, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 {
		return Color{}, fmt.Errorf("invalid color %q: want 6 hex digits", s)
	}
	var c Color
	if _, err := fmt.Sscanf(s, "%02x%02x%02x", &c.R, &c.G, &c.B); err != nil {
		return Color{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return c, nil
}
