package param

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/crazy3lf/colorconv"
)

// ParseHex reads "#rrggbb" (the leading # is optional) into channels in [0,1]
func ParseHex(s string) (RGB, error) {
	r, g, b, err := colorconv.HexToRGB(strings.TrimPrefix(strings.TrimSpace(s), "#"))
	if err != nil {
		return RGB{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return RGB{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}, nil
}

// Hex renders the color as "#rrggbb", clamping channels to [0,1]
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", channel(c.R), channel(c.G), channel(c.B))
}

func channel(f float64) uint8 {
	switch {
	case f <= 0:
		return 0
	case f >= 1:
		return 255
	}
	return uint8(f*255 + 0.5)
}

// UnmarshalJSON accepts either {"r":..,"g":..,"b":..} or a "#rrggbb" string
func (c *RGB) UnmarshalJSON(data []byte) error {
	var hex string
	if err := json.Unmarshal(data, &hex); err == nil {
		rgb, err := ParseHex(hex)
		if err != nil {
			return err
		}
		*c = rgb
		return nil
	}

	type plain RGB
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*c = RGB(p)
	return nil
}
