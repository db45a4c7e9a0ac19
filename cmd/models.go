package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/leofalp/duochat/core/backend"
	"github.com/leofalp/duochat/core/catalog"
	"github.com/leofalp/duochat/core/settings"
	"github.com/leofalp/duochat/providers/observability"
)

func (a *app) newModelsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List the chat models of the configured provider",
		Long: `List the chat models of the configured provider. The current model is
marked with "*". When discovery fails the built-in defaults are listed and
the failure is reported on stderr.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}
			return a.printModels(cmd.Context(), store)
		},
	}
}

// printModels discovers models with the stored key and endpoint. A missing
// model is fine here: discovery is how one gets chosen.
func (a *app) printModels(ctx context.Context, store settings.Store) error {
	if ctx == nil {
		ctx = context.Background()
	}
	current, err := store.Load(ctx)
	if err != nil {
		return err
	}
	config, err := settings.ValidateDiscovery(current)
	if err != nil {
		return err
	}
	provider, err := backend.Open(config, a.backendOptions()...)
	if err != nil {
		return err
	}

	if a.observer != nil {
		ctx = observability.ContextWithObserver(ctx, a.observer)
	}
	models, err := catalog.ListOrDefault(ctx, provider)
	if models == nil {
		return err
	}
	if err != nil {
		a.warnf("model discovery failed, showing defaults: %v\n", err)
	}

	for _, model := range models {
		marker := " "
		if model.ID == config.ModelID {
			marker = "*"
		}
		if model.DisplayName != "" && model.DisplayName != model.ID {
			a.printf("%s %s (%s)\n", marker, model.ID, model.DisplayName)
		} else {
			a.printf("%s %s\n", marker, model.ID)
		}
	}
	return nil
}
