package report

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	darkmode "github.com/thiagokokada/dark-mode-go"
)

// ColorMode controls ANSI colouring of the text report.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"
	ColorAlways ColorMode = "always"
	ColorNever  ColorMode = "never"
)

func ParseColorMode(raw string) (ColorMode, error) {
	switch m := ColorMode(strings.ToLower(strings.TrimSpace(raw))); m {
	case "":
		return ColorAuto, nil
	case ColorAuto, ColorAlways, ColorNever:
		return m, nil
	default:
		return "", fmt.Errorf("unknown color mode %q (want auto, always or never)", raw)
	}
}

// Enabled resolves the mode for w. Auto colours only terminals, honouring
// NO_COLOR and CLICOLOR_FORCE.
func (m ColorMode) Enabled(w io.Writer) bool {
	switch m {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	default:
		return termenv.NewOutput(w).EnvColorProfile() != termenv.Ascii
	}
}

// Theme selects the palette for colours and patch highlighting.
type Theme string

const (
	ThemeAuto  Theme = "auto"
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

var detectDarkMode = darkmode.IsDarkMode

func ParseTheme(raw string) (Theme, error) {
	switch t := Theme(strings.ToLower(strings.TrimSpace(raw))); t {
	case "":
		return ThemeAuto, nil
	case ThemeAuto, ThemeLight, ThemeDark:
		return t, nil
	default:
		return "", fmt.Errorf("unknown theme %q (want auto, light or dark)", raw)
	}
}

// Dark reports whether the dark palette applies. Auto asks the desktop and
// falls back to light.
func (t Theme) Dark() bool {
	switch t {
	case ThemeDark:
		return true
	case ThemeLight:
		return false
	}
	if detectDarkMode == nil {
		return false
	}
	dark, err := detectDarkMode()
	if err != nil {
		slog.Debug("detect dark-mode", slog.Any("error", err))
		return false
	}
	return dark
}

type palette struct {
	bugID   lipgloss.Style
	sha     lipgloss.Style
	note    lipgloss.Style
	warning lipgloss.Style
	added   lipgloss.Style
	removed lipgloss.Style
	hunk    lipgloss.Style
}

func newPalette(w io.Writer, dark bool) palette {
	r := lipgloss.NewRenderer(w)
	r.SetColorProfile(termenv.ANSI256)
	r.SetHasDarkBackground(dark)
	color := func(light, dark string) lipgloss.AdaptiveColor {
		return lipgloss.AdaptiveColor{Light: light, Dark: dark}
	}
	return palette{
		bugID:   r.NewStyle().Bold(true).Foreground(color("25", "75")),
		sha:     r.NewStyle().Foreground(color("130", "179")),
		note:    r.NewStyle().Foreground(color("28", "114")),
		warning: r.NewStyle().Bold(true).Foreground(color("160", "203")),
		added:   r.NewStyle().Foreground(color("28", "114")),
		removed: r.NewStyle().Foreground(color("160", "203")),
		hunk:    r.NewStyle().Foreground(color("91", "176")),
	}
}
