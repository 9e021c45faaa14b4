package ui

import (
	"strings"
	"testing"

	"charm.land/lipgloss/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/crmx/internal/config"
	"github.com/oakwood-commons/crmx/internal/view"
)

func TestGridKeyBindings(t *testing.T) {
	tests := map[string]Action{
		"/":      ActionSearch,
		"s":      ActionSort,
		"f":      ActionFilter,
		"x":      ActionClearFilters,
		"h":      ActionHide,
		"H":      ActionShowAll,
		"n":      ActionNextPage,
		"pgdown": ActionNextPage,
		"p":      ActionPrevPage,
		"pgup":   ActionPrevPage,
		"g":      ActionFirstPage,
		"r":      ActionReload,
		"tab":    ActionChat,
		"?":      ActionHelp,
		"q":      ActionQuit,
		"j":      ActionNone,
		"down":   ActionNone,
	}
	for k, want := range tests {
		assert.Equal(t, want, actionForKey(k), "key %q", k)
	}
}

func TestInitializeThemes(t *testing.T) {
	cfg, err := config.Default()
	require.NoError(t, err)
	t.Cleanup(func() { SetTheme(fallbackDefaultTheme()) })

	require.NoError(t, InitializeThemes(cfg))
	assert.Equal(t, []string{"dark", "light", "warm"}, ThemeNames())
	assert.Equal(t, ThemeFromConfig(cfg.UI.Themes["dark"]), CurrentTheme())

	assert.Equal(t, "dark", CurrentThemeName())

	require.NoError(t, SetThemeByName("light"))
	assert.Equal(t, ThemeFromConfig(cfg.UI.Themes["light"]), CurrentTheme())
	assert.Equal(t, "light", CurrentThemeName())

	err = SetThemeByName("neon")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "available: dark, light, warm")

	require.Error(t, InitializeThemes(config.File{}))
}

func TestThemeFromConfigFallsBack(t *testing.T) {
	th := ThemeFromConfig(config.ThemeConfig{KeyColor: "200", BorderStyle: "Round"})
	assert.Equal(t, lipgloss.Color("200"), th.KeyColor)
	assert.Equal(t, fallbackDefaultTheme().ValueColor, th.ValueColor)
	assert.Equal(t, "rounded", th.BorderStyle)
	assert.Equal(t, "normal", normalizeBorderStyle("double"))
}

func TestFooterSummary(t *testing.T) {
	f := FooterModel{
		Width:   200,
		NoColor: true,
		Result:  view.Result{Total: 12, Page: 1, PageSize: 5, PageCount: 3},
		Sort:    view.SortSpec{Field: "aum", Direction: view.Descending},
		Filter:  view.FilterSpec{"name": view.Contains{Text: "al"}},
		Hidden:  2,
		Source:  "builtin",
	}
	summary := f.Summary()
	assert.Equal(t, `page 2/3 · 12 records · sort aum:desc · filter name ~ "al" · hidden 2 · builtin`, summary)
	out := f.View()
	assert.Contains(t, out, summary)
	assert.Contains(t, out, "search")
}

func TestFooterTruncatesSummary(t *testing.T) {
	f := FooterModel{Width: 60, NoColor: true, Result: view.Result{Total: 1, PageCount: 1, PageSize: 10}, Source: strings.Repeat("x", 80)}
	out := f.View()
	assert.Contains(t, out, "…")
}

func TestStatusView(t *testing.T) {
	s := NewStatusModel()
	s.Width = 40
	s.NoColor = true
	s.Set("Filters cleared", StatusInfo)
	s.CursorIndex, s.TotalRows = 3, 12
	out := s.View()
	assert.Contains(t, out, "Filters cleared")
	assert.Contains(t, out, "3/12")

	s.Busy = "⣾ Searching…"
	assert.Contains(t, s.View(), "Searching…  Filters cleared")

	s.Clear()
	s.Busy = ""
	assert.Equal(t, StatusInfo, s.StatusType)
	assert.NotContains(t, s.View(), "Filters")
}

func TestHelpHiddenByDefault(t *testing.T) {
	h := NewHelpModel()
	assert.Empty(t, h.View())
	h.Visible = true
	h.NoColor = true
	h.AboutTitle = "crmx"
	h.AboutLines = []string{"CRM record browser"}
	out := h.View()
	assert.Contains(t, out, "CRM record browser")
	assert.Contains(t, out, "toggle help")
}
