// Package config holds the YAML configuration of crmx: the embedded
// defaults, the user file merged on top of them, and the theme palettes.
package config

import (
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/oakwood-commons/crmx/internal/record"
)

// File is the complete configuration file.
type File struct {
	App    AppConfig     `yaml:"app" json:"app"`
	API    APIConfig     `yaml:"api" json:"api"`
	Source string        `yaml:"source,omitempty" json:"source,omitempty"`
	View   ViewConfig    `yaml:"view" json:"view"`
	Schema record.Schema `yaml:"schema" json:"schema"`
	UI     UIConfig      `yaml:"ui" json:"ui"`
}

// AppConfig holds application-level metadata.
type AppConfig struct {
	About AboutConfig `yaml:"about" json:"about"`
}

// AboutConfig contains application metadata. Version and the build fields
// are populated at runtime from build info.
type AboutConfig struct {
	Name          string   `yaml:"name,omitempty" json:"name,omitempty"`
	Description   string   `yaml:"description,omitempty" json:"description,omitempty"`
	Version       string   `yaml:"version,omitempty" json:"version,omitempty"`
	GoVersion     string   `yaml:"go_version,omitempty" json:"go_version,omitempty"`
	BuildOS       string   `yaml:"build_os,omitempty" json:"build_os,omitempty"`
	BuildArch     string   `yaml:"build_arch,omitempty" json:"build_arch,omitempty"`
	GitCommit     string   `yaml:"git_commit,omitempty" json:"git_commit,omitempty"`
	RepositoryURL string   `yaml:"repository_url,omitempty" json:"repository_url,omitempty"`
	Details       []string `yaml:"details,omitempty" json:"details,omitempty"`
}

// APIConfig points at the CRM API.
type APIConfig struct {
	URL string `yaml:"url,omitempty" json:"url,omitempty"`
	// Timeout is a Go duration string such as "10s".
	Timeout string `yaml:"timeout,omitempty" json:"timeout,omitempty"`
}

// ViewConfig holds the initial view configuration.
type ViewConfig struct {
	PageSize      *int     `yaml:"page_size,omitempty" json:"page_size,omitempty"`
	HiddenColumns []string `yaml:"hidden_columns" json:"hidden_columns"`
	// Sort is "field[:asc|desc]"; empty means the source order.
	Sort string `yaml:"sort" json:"sort"`
}

// UIConfig holds the terminal UI settings.
type UIConfig struct {
	Theme  ThemeSelectionConfig   `yaml:"theme" json:"theme"`
	Themes map[string]ThemeConfig `yaml:"themes" json:"themes"`
}

// ThemeSelectionConfig holds theme selection configuration.
type ThemeSelectionConfig struct {
	Default string `yaml:"default,omitempty" json:"default,omitempty"`
}

// ColorValue stores a color token (number or name) and marshals numerics as YAML ints.
type ColorValue string

func (c ColorValue) MarshalYAML() (any, error) {
	if c == "" {
		return "", nil
	}
	s := string(c)
	if _, err := strconv.Atoi(s); err == nil {
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: s}, nil
	}
	return s, nil
}

func (c *ColorValue) UnmarshalYAML(value *yaml.Node) error {
	if value == nil {
		*c = ""
		return nil
	}
	// Accept both ints and strings; store the literal value.
	*c = ColorValue(strings.TrimSpace(value.Value))
	return nil
}

// ThemeConfig is a YAML-friendly theme palette (colors accept ints or strings).
type ThemeConfig struct {
	KeyColor       ColorValue `yaml:"key_color,omitempty" json:"key_color,omitempty"`
	ValueColor     ColorValue `yaml:"value_color,omitempty" json:"value_color,omitempty"`
	HeaderFG       ColorValue `yaml:"header_fg,omitempty" json:"header_fg,omitempty"`
	HeaderBG       ColorValue `yaml:"header_bg,omitempty" json:"header_bg,omitempty"`
	BorderStyle    string     `yaml:"border_style,omitempty" json:"border_style,omitempty"`
	SelectedFG     ColorValue `yaml:"selected_fg,omitempty" json:"selected_fg,omitempty"`
	SelectedBG     ColorValue `yaml:"selected_bg,omitempty" json:"selected_bg,omitempty"`
	SeparatorColor ColorValue `yaml:"separator_color,omitempty" json:"separator_color,omitempty"`
	InputBG        ColorValue `yaml:"input_bg,omitempty" json:"input_bg,omitempty"`
	InputFG        ColorValue `yaml:"input_fg,omitempty" json:"input_fg,omitempty"`
	GhostFG        ColorValue `yaml:"ghost_fg,omitempty" json:"ghost_fg,omitempty"`
	StatusColor    ColorValue `yaml:"status_color,omitempty" json:"status_color,omitempty"`
	StatusError    ColorValue `yaml:"status_error,omitempty" json:"status_error,omitempty"`
	StatusSuccess  ColorValue `yaml:"status_success,omitempty" json:"status_success,omitempty"`
	FooterFG       ColorValue `yaml:"footer_fg,omitempty" json:"footer_fg,omitempty"`
	FooterBG       ColorValue `yaml:"footer_bg,omitempty" json:"footer_bg,omitempty"`
	HelpKey        ColorValue `yaml:"help_key,omitempty" json:"help_key,omitempty"`
	HelpValue      ColorValue `yaml:"help_value,omitempty" json:"help_value,omitempty"`
}
