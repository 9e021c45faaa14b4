package ui

import (
	"fmt"
	"image/color"
	"sort"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/oakwood-commons/crmx/internal/config"
	"github.com/oakwood-commons/crmx/internal/formatter"
)

// Theme defines colors and styles used across the UI.
type Theme struct {
	KeyColor       color.Color // Column header accent and selected column marker
	ValueColor     color.Color // Cell text
	HeaderFG       color.Color // Grid header foreground
	HeaderBG       color.Color // Grid header background
	BorderStyle    string      // Border style (normal|rounded)
	SelectedFG     color.Color // Selected row foreground
	SelectedBG     color.Color // Selected row background
	SeparatorColor color.Color // Panel borders
	InputBG        color.Color // Search and chat input background
	InputFG        color.Color // Search and chat input text
	GhostFG        color.Color // Placeholder text in inputs
	StatusColor    color.Color // Normal status line text
	StatusError    color.Color // Error status line text
	StatusSuccess  color.Color // Success status line text
	FooterFG       color.Color
	FooterBG       color.Color
	HelpKey        color.Color
	HelpValue      color.Color
}

var (
	loadedThemes     = map[string]Theme{}
	currentTheme     Theme
	currentThemeName string
)

// fallbackDefaultTheme is used when no configuration has been loaded.
func fallbackDefaultTheme() Theme {
	return Theme{
		KeyColor:       lipgloss.Color("81"),
		ValueColor:     lipgloss.Color("246"),
		HeaderFG:       lipgloss.Color("81"),
		HeaderBG:       lipgloss.Color("236"),
		BorderStyle:    "normal",
		SelectedFG:     lipgloss.Color("250"),
		SelectedBG:     lipgloss.Color("24"),
		SeparatorColor: lipgloss.Color("238"),
		InputBG:        lipgloss.Color("236"),
		InputFG:        lipgloss.Color("246"),
		GhostFG:        lipgloss.Color("242"),
		StatusColor:    lipgloss.Color("81"),
		StatusError:    lipgloss.Color("203"),
		StatusSuccess:  lipgloss.Color("114"),
		FooterFG:       lipgloss.Color("244"),
		FooterBG:       lipgloss.Color("236"),
		HelpKey:        lipgloss.Color("81"),
		HelpValue:      lipgloss.Color("245"),
	}
}

// ThemeFromConfig builds a Theme from a ThemeConfig, falling back to the
// built-in palette for every color left empty.
func ThemeFromConfig(cfg config.ThemeConfig) Theme {
	th := fallbackDefaultTheme()
	set := func(val config.ColorValue, dst *color.Color) {
		if val != "" {
			*dst = lipgloss.Color(string(val))
		}
	}
	set(cfg.KeyColor, &th.KeyColor)
	set(cfg.ValueColor, &th.ValueColor)
	set(cfg.HeaderFG, &th.HeaderFG)
	set(cfg.HeaderBG, &th.HeaderBG)
	set(cfg.SelectedFG, &th.SelectedFG)
	set(cfg.SelectedBG, &th.SelectedBG)
	set(cfg.SeparatorColor, &th.SeparatorColor)
	set(cfg.InputBG, &th.InputBG)
	set(cfg.InputFG, &th.InputFG)
	set(cfg.GhostFG, &th.GhostFG)
	set(cfg.StatusColor, &th.StatusColor)
	set(cfg.StatusError, &th.StatusError)
	set(cfg.StatusSuccess, &th.StatusSuccess)
	set(cfg.FooterFG, &th.FooterFG)
	set(cfg.FooterBG, &th.FooterBG)
	set(cfg.HelpKey, &th.HelpKey)
	set(cfg.HelpValue, &th.HelpValue)
	th.BorderStyle = normalizeBorderStyle(cfg.BorderStyle)
	return th
}

// InitializeThemes loads every theme of cfg and activates the configured
// default. It must run before SetThemeByName.
func InitializeThemes(cfg config.File) error {
	if len(cfg.UI.Themes) == 0 {
		return fmt.Errorf("no themes found in configuration")
	}
	loadedThemes = make(map[string]Theme, len(cfg.UI.Themes))
	for name, themeCfg := range cfg.UI.Themes {
		loadedThemes[name] = ThemeFromConfig(themeCfg)
	}
	name := strings.TrimSpace(cfg.UI.Theme.Default)
	if name == "" {
		name = "dark"
	}
	if _, ok := loadedThemes[name]; !ok {
		SetTheme(fallbackDefaultTheme())
		return nil
	}
	return SetThemeByName(name)
}

// SetTheme overrides the global theme and the table colors of the formatter.
func SetTheme(t Theme) {
	t.BorderStyle = normalizeBorderStyle(t.BorderStyle)
	currentTheme = t
	currentThemeName = ""
	formatter.SetTableTheme(formatter.TableColors{
		HeaderFG:       t.HeaderFG,
		HeaderBG:       t.HeaderBG,
		KeyColor:       t.KeyColor,
		ValueColor:     t.ValueColor,
		SeparatorColor: t.SeparatorColor,
	})
}

// SetThemeByName activates a theme loaded by InitializeThemes.
func SetThemeByName(name string) error {
	if theme, ok := loadedThemes[name]; ok {
		SetTheme(theme)
		currentThemeName = name
		return nil
	}
	if len(loadedThemes) == 0 {
		return fmt.Errorf("no themes loaded; call InitializeThemes() before SetThemeByName()")
	}
	return fmt.Errorf("unknown theme %q (available: %s)", name, strings.Join(ThemeNames(), ", "))
}

// ThemeNames returns the loaded theme names, sorted.
func ThemeNames() []string {
	names := make([]string, 0, len(loadedThemes))
	for name := range loadedThemes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CurrentThemeName returns the name of the active theme, or "" when it was
// set directly with SetTheme.
func CurrentThemeName() string {
	return currentThemeName
}

// CurrentTheme returns the active theme.
func CurrentTheme() Theme {
	if currentTheme == (Theme{}) {
		currentTheme = fallbackDefaultTheme()
	}
	return currentTheme
}

func normalizeBorderStyle(val string) string {
	switch strings.TrimSpace(strings.ToLower(val)) {
	case "rounded", "round":
		return "rounded"
	default:
		return "normal"
	}
}

func borderForStyle(style string) lipgloss.Border {
	if normalizeBorderStyle(style) == "rounded" {
		return lipgloss.RoundedBorder()
	}
	return lipgloss.NormalBorder()
}
