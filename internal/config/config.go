package config

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/oakwood-commons/crmx/internal/record"
)

//go:embed default_config.yaml
var embeddedDefaultConfig []byte

// DefaultYAML returns a copy of the embedded default config YAML bytes.
func DefaultYAML() []byte {
	return append([]byte(nil), embeddedDefaultConfig...)
}

// Default parses the embedded default configuration.
func Default() (File, error) {
	return Parse(embeddedDefaultConfig)
}

// Parse decodes a configuration document without applying defaults.
func Parse(data []byte) (File, error) {
	var f File
	if len(strings.TrimSpace(string(data))) == 0 {
		return f, nil
	}
	if err := yaml.Unmarshal(data, &f); err != nil {
		return File{}, fmt.Errorf("decode config: %w", err)
	}
	return f, nil
}

// Load parses defaults, merges the file at path on top when path is not
// empty, and validates the result.
func Load(defaults []byte, path string) (File, error) {
	base, err := Parse(defaults)
	if err != nil {
		return File{}, fmt.Errorf("default config: %w", err)
	}
	if base.UI.Theme.Default == "" || len(base.UI.Themes) == 0 {
		return File{}, fmt.Errorf("default config is missing required theme defaults")
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return File{}, err
		}
		user, err := Parse(data)
		if err != nil {
			return File{}, fmt.Errorf("%s: %w", path, err)
		}
		base = Merge(base, user)
	}
	if err := base.Validate(); err != nil {
		return File{}, err
	}
	return base, nil
}

// Merge overlays every field set in override on top of base. Themes merge
// per color; a non-empty schema replaces the base schema as a whole.
func Merge(base, override File) File {
	out := base
	mergeAbout(&out.App.About, override.App.About)

	if override.API.URL != "" {
		out.API.URL = override.API.URL
	}
	if override.API.Timeout != "" {
		out.API.Timeout = override.API.Timeout
	}
	if override.Source != "" {
		out.Source = override.Source
	}

	if override.View.PageSize != nil {
		size := *override.View.PageSize
		out.View.PageSize = &size
	}
	if override.View.HiddenColumns != nil {
		out.View.HiddenColumns = append([]string(nil), override.View.HiddenColumns...)
	}
	if override.View.Sort != "" {
		out.View.Sort = override.View.Sort
	}

	if len(override.Schema.Columns) > 0 {
		out.Schema = record.Schema{Columns: append([]record.Column(nil), override.Schema.Columns...)}
	}

	if override.UI.Theme.Default != "" {
		out.UI.Theme.Default = override.UI.Theme.Default
	}
	if len(override.UI.Themes) > 0 {
		themes := make(map[string]ThemeConfig, len(base.UI.Themes)+len(override.UI.Themes))
		for name, th := range base.UI.Themes {
			themes[name] = th
		}
		for name, th := range override.UI.Themes {
			themes[name] = MergeTheme(themes[name], th)
		}
		out.UI.Themes = themes
	}
	return out
}

func mergeAbout(dst *AboutConfig, src AboutConfig) {
	set := func(v string, p *string) {
		if v != "" {
			*p = v
		}
	}
	set(src.Name, &dst.Name)
	set(src.Description, &dst.Description)
	set(src.Version, &dst.Version)
	set(src.RepositoryURL, &dst.RepositoryURL)
	if len(src.Details) > 0 {
		dst.Details = append([]string(nil), src.Details...)
	}
}

// MergeTheme applies every color set in override to base.
func MergeTheme(base, override ThemeConfig) ThemeConfig {
	out := base
	apply := func(src ColorValue, dst *ColorValue) {
		if src != "" {
			*dst = src
		}
	}
	if strings.TrimSpace(override.BorderStyle) != "" {
		out.BorderStyle = override.BorderStyle
	}
	apply(override.KeyColor, &out.KeyColor)
	apply(override.ValueColor, &out.ValueColor)
	apply(override.HeaderFG, &out.HeaderFG)
	apply(override.HeaderBG, &out.HeaderBG)
	apply(override.SelectedFG, &out.SelectedFG)
	apply(override.SelectedBG, &out.SelectedBG)
	apply(override.SeparatorColor, &out.SeparatorColor)
	apply(override.InputBG, &out.InputBG)
	apply(override.InputFG, &out.InputFG)
	apply(override.GhostFG, &out.GhostFG)
	apply(override.StatusColor, &out.StatusColor)
	apply(override.StatusError, &out.StatusError)
	apply(override.StatusSuccess, &out.StatusSuccess)
	apply(override.FooterFG, &out.FooterFG)
	apply(override.FooterBG, &out.FooterBG)
	apply(override.HelpKey, &out.HelpKey)
	apply(override.HelpValue, &out.HelpValue)
	return out
}

// Validate checks the merged configuration.
func (f File) Validate() error {
	if err := f.Schema.Validate(); err != nil {
		return fmt.Errorf("schema: %w", err)
	}
	if _, err := f.Timeout(); err != nil {
		return err
	}
	if f.View.PageSize != nil && *f.View.PageSize <= 0 {
		return fmt.Errorf("view.page_size must be positive, got %d", *f.View.PageSize)
	}
	for _, field := range f.View.HiddenColumns {
		if _, ok := f.Schema.Column(field); !ok {
			return fmt.Errorf("view.hidden_columns: unknown field %q", field)
		}
	}
	if _, ok := f.UI.Themes[f.UI.Theme.Default]; !ok {
		return fmt.Errorf("ui.theme.default: unknown theme %q (available: %s)", f.UI.Theme.Default, strings.Join(f.ThemeNames(), ", "))
	}
	return nil
}

// Timeout parses api.timeout. Empty means zero, which callers treat as their default.
func (f File) Timeout() (time.Duration, error) {
	if strings.TrimSpace(f.API.Timeout) == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(strings.TrimSpace(f.API.Timeout))
	if err != nil {
		return 0, fmt.Errorf("api.timeout: %w", err)
	}
	if d < 0 {
		return 0, fmt.Errorf("api.timeout must not be negative, got %s", d)
	}
	return d, nil
}

// PageSize returns view.page_size or fallback when unset.
func (f File) PageSize(fallback int) int {
	if f.View.PageSize == nil {
		return fallback
	}
	return *f.View.PageSize
}

// ThemeNames returns the configured theme names, sorted.
func (f File) ThemeNames() []string {
	names := make([]string, 0, len(f.UI.Themes))
	for name := range f.UI.Themes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
