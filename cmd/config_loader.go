package cmd

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	rdebug "runtime/debug"
	"strings"
	"text/template"

	"github.com/oakwood-commons/crmx/internal/config"
	"github.com/oakwood-commons/crmx/pkg/settings"
)

// configLoader centralizes config loading so callers avoid duplicating merge logic.
type configLoader struct {
	defaultConfig func() ([]byte, error)
}

var cfgLoader = configLoader{defaultConfig: loadDefaultConfigYAML}

func loadMergedConfig(cfgPath string) (config.File, error) {
	return cfgLoader.loadMergedConfig(cfgPath)
}

func loadDefaultConfigYAML() ([]byte, error) {
	data := config.DefaultYAML()
	if len(data) == 0 {
		return nil, fmt.Errorf("embedded default config is empty")
	}
	return data, nil
}

// loadMergedConfig merges the user file at cfgPath (if any) over the defaults,
// fills in build metadata and expands templates in the about section.
func (l configLoader) loadMergedConfig(cfgPath string) (config.File, error) {
	defaults, err := l.defaultConfig()
	if err != nil {
		return config.File{}, fmt.Errorf("load default config: %w", err)
	}
	cfg, err := config.Load(defaults, cfgPath)
	if err != nil {
		return cfg, err
	}
	data := buildVersionData(&cfg)
	applyBuildData(&cfg, data)
	expandAboutTemplates(&cfg, data)
	return cfg, nil
}

// resolveConfigPath returns the explicit configFile if set, otherwise the XDG path
// ($XDG_CONFIG_HOME/crmx/config.yaml) or ~/.config/crmx/config.yaml if present.
func resolveConfigPath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	xdg := os.Getenv("XDG_CONFIG_HOME")
	candidate := ""
	if xdg != "" {
		candidate = filepath.Join(xdg, settings.CliBinaryName, "config.yaml")
	} else if home, err := os.UserHomeDir(); err == nil {
		candidate = filepath.Join(home, ".config", settings.CliBinaryName, "config.yaml")
	}
	if candidate != "" {
		if st, err := os.Stat(candidate); err == nil && !st.IsDir() {
			return candidate
		}
	}
	return ""
}

// buildVersionData collects version and build information for templating.
func buildVersionData(cfg *config.File) map[string]any {
	info, ok := rdebug.ReadBuildInfo()

	version := settings.VersionInformation.BuildVersion
	goVersion := runtime.Version()
	buildOS := runtime.GOOS
	buildArch := runtime.GOARCH
	gitCommit := ""
	if c := settings.VersionInformation.Commit; c != "" && c != "unknown" {
		gitCommit = c
	}

	if ok {
		if info.Main.Version != "" && info.Main.Version != "(devel)" {
			version = info.Main.Version
		} else if gitCommit == "" {
			for _, s := range info.Settings {
				if s.Key == "vcs.revision" && len(s.Value) >= 7 {
					gitCommit = s.Value[:7]
					break
				}
			}
		}
		if info.GoVersion != "" {
			goVersion = info.GoVersion
		}
		for _, s := range info.Settings {
			switch s.Key {
			case "GOOS":
				buildOS = s.Value
			case "GOARCH":
				buildArch = s.Value
			}
		}
	}

	name := settings.CliBinaryName
	if cfg != nil && cfg.App.About.Name != "" {
		name = cfg.App.About.Name
	}

	return map[string]any{
		"Version":   version,
		"GoVersion": goVersion,
		"BuildOS":   buildOS,
		"BuildArch": buildArch,
		"GitCommit": gitCommit,
		"Name":      name,
	}
}

func applyBuildData(cfg *config.File, buildData map[string]any) {
	about := &cfg.App.About
	if v, ok := buildData["Version"].(string); ok && about.Version == "" {
		about.Version = v
	}
	if v, ok := buildData["GoVersion"].(string); ok {
		about.GoVersion = v
	}
	if v, ok := buildData["BuildOS"].(string); ok {
		about.BuildOS = v
	}
	if v, ok := buildData["BuildArch"].(string); ok {
		about.BuildArch = v
	}
	if v, ok := buildData["GitCommit"].(string); ok {
		about.GitCommit = v
	}
}

// expandAboutTemplates runs the description and detail lines through
// text/template so a config may reference {{ .Version }} and friends.
// Lines that fail to parse or execute are left as written.
func expandAboutTemplates(cfg *config.File, data map[string]any) {
	about := &cfg.App.About
	about.Description = expandTemplate(about.Description, data)
	if len(about.Details) == 0 {
		return
	}
	details := make([]string, len(about.Details))
	for i, line := range about.Details {
		details[i] = expandTemplate(line, data)
	}
	about.Details = details
}

func expandTemplate(text string, data map[string]any) string {
	if !strings.Contains(text, "{{") {
		return text
	}
	tmpl, err := template.New("about").Option("missingkey=zero").Parse(text)
	if err != nil {
		return text
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return text
	}
	return buf.String()
}

// aboutLines returns the about section as help overlay lines.
func aboutLines(cfg config.File) []string {
	about := cfg.App.About
	var lines []string
	if about.Description != "" {
		lines = append(lines, about.Description)
	}
	lines = append(lines, about.Details...)
	version := fmt.Sprintf("version %s (go %s, %s/%s)", about.Version, about.GoVersion, about.BuildOS, about.BuildArch)
	if about.GitCommit != "" {
		version += " commit " + about.GitCommit
	}
	lines = append(lines, version)
	if about.RepositoryURL != "" {
		lines = append(lines, about.RepositoryURL)
	}
	return lines
}
