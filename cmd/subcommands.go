package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/oakwood-commons/crmx/internal/chat"
	"github.com/oakwood-commons/crmx/internal/client"
	"github.com/oakwood-commons/crmx/internal/config"
	"github.com/oakwood-commons/crmx/pkg/logger"
	"github.com/oakwood-commons/crmx/pkg/settings"
)

var configOutput string

var chatCmd = &cobra.Command{
	Use:   "chat <message...>",
	Short: "Send one message to the CRM assistant and print its reply",
	Long: `Send one message to the CRM assistant and print its reply.

When the assistant cannot be reached the canned fallback reply is printed instead,
matching what the chat panel of the interactive UI shows.`,
	Example: "  crmx chat 'which clients have not been contacted this quarter?'\n  crmx chat --api http://crm.internal/api summarize Bob's portfolio",
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadMergedConfig(resolveConfigPath(configFile))
		if err != nil {
			return fmt.Errorf("config: %w", err)
		}
		clientCfg, err := clientConfig(cfg)
		if err != nil {
			return err
		}
		c, err := client.NewClient(clientCfg)
		if err != nil {
			return err
		}
		log := logger.FromContext(rootCtx).WithName("chat")
		ctl := chat.New(c, chat.WithLogger(log))
		reply, err := ctl.Send(rootCtx, strings.Join(args, " "))
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), reply.Text)
		return err
	},
}

// clientConfig resolves the API settings: --api, then api.url, then the
// built-in default.
func clientConfig(cfg config.File) (client.Config, error) {
	timeout, err := cfg.Timeout()
	if err != nil {
		return client.Config{}, err
	}
	base := apiURL
	if base == "" {
		base = cfg.API.URL
	}
	if base == "" {
		base = settings.DefaultAPIURL
	}
	return client.Config{BaseURL: base, Timeout: timeout, UserAgent: settings.UserAgent()}, nil
}

func newConfigCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Show the merged crmx configuration",
		Long: `Show the embedded defaults merged with the user config file.

The user file is --config-file, otherwise $XDG_CONFIG_HOME/crmx/config.yaml, otherwise
~/.config/crmx/config.yaml when it exists.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadMergedConfig(resolveConfigPath(configFile))
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}
			return writeConfig(cmd.OutOrStdout(), cfg, configOutput)
		},
	}
	configCmd.Flags().StringVarP(&configOutput, "output", "o", "yaml", "output format: yaml|json")

	themesCmd := &cobra.Command{
		Use:     "themes",
		Aliases: []string{"theme"},
		Short:   "List available themes",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadMergedConfig(resolveConfigPath(configFile))
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Available themes (default: %s):\n", cfg.UI.Theme.Default)
			for _, name := range cfg.ThemeNames() {
				fmt.Fprintf(w, " - %s\n", name)
			}
			return nil
		},
	}
	configCmd.AddCommand(themesCmd)
	return configCmd
}

func writeConfig(w io.Writer, cfg config.File, format string) error {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(cfg); err != nil {
			return fmt.Errorf("encode config: %w", err)
		}
		return enc.Close()
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(cfg)
	}
	return fmt.Errorf("invalid config output %q: valid values are yaml, json", format)
}
