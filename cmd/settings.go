package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leofalp/duochat/core/settings"
	"github.com/leofalp/duochat/internal/utils"
)

func (a *app) newSettingsCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   "settings",
		Short: "Show and change the persisted settings",
		Long: `Show and change the persisted settings.

Keys: ` + strings.Join(settings.Keys, ", ") + `

Environment variables such as OPENAI_API_KEY, GEMINI_API_KEY and
DUOCHAT_<KEY> override the file when reading; they are never written back.`,
	}
	command.AddCommand(
		a.newSettingsShowCommand(),
		a.newSettingsGetCommand(),
		a.newSettingsSetCommand(),
		a.newSettingsImportCommand(),
		a.newSettingsPathCommand(),
	)
	return command
}

func (a *app) newSettingsShowCommand() *cobra.Command {
	var asJSON bool
	command := &cobra.Command{
		Use:   "show",
		Short: "Print all settings with API keys masked",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}
			current, err := store.Load(cmd.Context())
			if err != nil {
				return err
			}
			redacted := current.Redacted()

			if asJSON {
				a.printf("%s\n", utils.JSONToString(redacted, true))
				return nil
			}
			for _, key := range settings.Keys {
				value, _ := redacted.Get(key)
				a.printf("%-13s %s\n", key, value)
			}
			return nil
		},
	}
	command.Flags().BoolVar(&asJSON, "json", false, "print as JSON")
	return command
}

func (a *app) newSettingsGetCommand() *cobra.Command {
	var reveal bool
	command := &cobra.Command{
		Use:   "get <key>",
		Short: "Print one setting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}
			current, err := store.Load(cmd.Context())
			if err != nil {
				return err
			}
			if !reveal {
				current = current.Redacted()
			}
			value, err := current.Get(args[0])
			if err != nil {
				return err
			}
			a.printf("%s\n", value)
			return nil
		},
	}
	command.Flags().BoolVar(&reveal, "reveal", false, "print API keys unmasked")
	return command
}

func (a *app) newSettingsSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Change one setting and save",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore(settings.WithoutEnv())
			if err != nil {
				return err
			}
			current, err := store.Load(cmd.Context())
			if err != nil {
				return err
			}
			if err := current.Set(args[0], args[1]); err != nil {
				return err
			}
			if err := store.Save(cmd.Context(), current); err != nil {
				return err
			}

			shown := args[1]
			if settings.IsSecret(args[0]) {
				shown, _ = current.Redacted().Get(args[0])
			}
			a.printf("%s = %s\n", args[0], shown)
			return nil
		},
	}
}

func (a *app) newSettingsImportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file|->",
		Short: "Import settings exported from the browser extension",
		Long: `Import settings exported from the browser extension. The input is the
localStorage export: either the settings object itself or an object holding
it under "` + settings.BrowserStorageKey + `". Use "-" to read stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := a.readInput(args[0])
			if err != nil {
				return err
			}
			imported, err := settings.ImportBrowserJSON(data)
			if err != nil {
				return err
			}

			store, err := a.openStore(settings.WithoutEnv())
			if err != nil {
				return err
			}
			if err := store.Save(cmd.Context(), imported); err != nil {
				return err
			}
			a.printf("imported settings into %s\n", store.Path())
			return nil
		},
	}
}

func (a *app) newSettingsPathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the settings file location",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}
			a.printf("%s\n", store.Path())
			return nil
		},
	}
}

func (a *app) readInput(name string) (string, error) {
	if name == "-" {
		data, err := io.ReadAll(a.in)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(name)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("import file %s does not exist", name)
		}
		return "", err
	}
	return string(data), nil
}
