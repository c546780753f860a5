// internal/client/theme.go
package client

// Theme is the UI color scheme.
type Theme int

const (
	Dark Theme = iota
	Light
)

func (t Theme) String() string {
	if t == Light {
		return "light"
	}
	return "dark"
}

// ParseTheme reads a stored preference. Anything unrecognized falls back
// to Dark, the product's default scheme.
func ParseTheme(s string) Theme {
	if s == "light" {
		return Light
	}
	return Dark
}

// Toggle flips between the two schemes.
func (t Theme) Toggle() Theme {
	if t == Dark {
		return Light
	}
	return Dark
}

// Element is a themeable UI surface.
type Element int

const (
	Background Element = iota
	Card
	Text
	SubText
	Border
)

// styles holds the per-theme class strings, replacing the per-view
// conditional selection with one table.
var styles = map[Theme]map[Element]string{
	Dark: {
		Background: "bg-gray-950",
		Card:       "bg-gray-900/40 border-white/10",
		Text:       "text-white",
		SubText:    "text-gray-300",
		Border:     "border-white/10",
	},
	Light: {
		Background: "bg-gray-50",
		Card:       "bg-white/10 border-white/20",
		Text:       "text-gray-900",
		SubText:    "text-gray-600",
		Border:     "border-gray-200",
	},
}

// StyleFor returns the class string for an element under a theme.
func StyleFor(theme Theme, element Element) string {
	if m, ok := styles[theme]; ok {
		if s, ok := m[element]; ok {
			return s
		}
	}
	return ""
}
