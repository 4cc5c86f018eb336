package models

// Theme is a user's cosmetic display preference.
type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
	ThemeEarth Theme = "earth"

	// themeForest is the legacy name of the earth theme, accepted only when
	// resolving a theme for display.
	themeForest Theme = "forest"
)

// DefaultTheme is assigned to accounts that never picked one.
const DefaultTheme = ThemeEarth

// Valid reports whether t is one of the stored themes.
func (t Theme) Valid() bool {
	switch t {
	case ThemeDark, ThemeLight, ThemeEarth:
		return true
	}
	return false
}

// ResolveDisplayTheme picks the theme used to present a page: the requested
// one when given, otherwise the user's preference. "forest" and anything
// unknown fall back to earth.
func ResolveDisplayTheme(requested string, preference Theme) Theme {
	t := Theme(requested)
	if requested == "" {
		t = preference
	}
	if t == themeForest || !t.Valid() {
		return ThemeEarth
	}
	return t
}
