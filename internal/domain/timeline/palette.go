package timeline

import "strings"

// NeutralColor is used for statuses without an assigned color.
const NeutralColor = "#95a5a6"

var statusColors = map[string]string{
	"entregado":     "#2ecc71",
	"en desarrollo": "#1abc9c",
	"backlog":       "#f1c40f",
	"para refinar":  "#f5d76e",
	"escribiendo":   "#e67e22",
	"para escribir": "#e74c3c",
	"en análisis":   "#9b59b6",
	"cancelado":     "#95a5a6",
	"error":         "#e74c3c",
}

// StatusColor returns the bar color for status. Lookup ignores case and
// surrounding whitespace; unknown statuses get NeutralColor.
func StatusColor(status string) string {
	if c, ok := statusColors[strings.ToLower(CleanText(status))]; ok {
		return c
	}
	return NeutralColor
}

// Palette maps every status in statuses to its color, sentinels excluded.
func Palette(statuses []string) map[string]string {
	out := make(map[string]string, len(statuses))
	for _, s := range statuses {
		if s == SentinelAll {
			continue
		}
		out[s] = StatusColor(s)
	}
	return out
}

// Theme is a dashboard color scheme.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// ThemeColors are the chart surface colors for a theme.
type ThemeColors struct {
	Plot       string `json:"plot_bgcolor"`
	Paper      string `json:"paper_bgcolor"`
	Font       string `json:"font_color"`
	Grid       string `json:"grid_color"`
	TodayFill  string `json:"today_fill"`
	TodayLabel string `json:"today_label"`
}

var themes = map[Theme]ThemeColors{
	ThemeLight: {
		Plot:       "#ffffff",
		Paper:      "#ffffff",
		Font:       "#222222",
		Grid:       "#eeeeee",
		TodayFill:  "rgba(66, 153, 225, 0.15)",
		TodayLabel: "#3182ce",
	},
	ThemeDark: {
		Plot:       "#23272f",
		Paper:      "#23272f",
		Font:       "#f0f0f0",
		Grid:       "#444444",
		TodayFill:  "rgba(255, 255, 255, 0.15)",
		TodayLabel: "#e2e8f0",
	},
}

// ParseTheme accepts "light" or "dark" in any case.
func ParseTheme(s string) (Theme, bool) {
	t := Theme(strings.ToLower(strings.TrimSpace(s)))
	_, ok := themes[t]
	return t, ok
}

// Colors returns the colors of t, falling back to the light theme.
func (t Theme) Colors() ThemeColors {
	if c, ok := themes[t]; ok {
		return c
	}
	return themes[ThemeLight]
}
