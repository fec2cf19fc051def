package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/connvault/cmd/app/commands"
	"github.com/allisson/connvault/internal/app"
	"github.com/allisson/connvault/internal/config"
)

func getSystemCommands(version string) []*cli.Command {
	return []*cli.Command{
		{
			Name:  "init",
			Usage: "Create a new vault protected by a master password",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer commands.CloseContainer(container)

				opener, err := container.Opener()
				if err != nil {
					return err
				}
				keyStore, err := container.KeyStoreUseCase()
				if err != nil {
					return err
				}

				return commands.RunInit(
					ctx,
					opener,
					keyStore,
					container.Logger(),
					commands.PromptIO(),
					cfg.PasswordPolicy(),
				)
			},
		},
		{
			Name:  "change-password",
			Usage: "Change the master password without re-encrypting the profiles",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer commands.CloseContainer(container)

				keyStore, err := container.KeyStoreUseCase()
				if err != nil {
					return err
				}

				return commands.RunChangePassword(
					ctx,
					keyStore,
					container.Logger(),
					commands.PromptIO(),
					cfg.PasswordPolicy(),
				)
			},
		},
		{
			Name:  "shell",
			Usage: "Unlock the vault once and work with it interactively",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				container := app.NewContainer(config.Load())
				defer commands.CloseContainer(container)

				return commands.RunShellSession(ctx, container, commands.DefaultIO(), version)
			},
		},
	}
}
