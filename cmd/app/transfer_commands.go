package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/connvault/cmd/app/commands"
	"github.com/allisson/connvault/internal/app"
	"github.com/allisson/connvault/internal/config"
	vaultUsecase "github.com/allisson/connvault/internal/vault/usecase"
)

func getTransferCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "export",
			Usage: "Export profiles as an encrypted snapshot or plain JSON",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "out",
					Aliases:  []string{"o"},
					Required: true,
					Usage:    "Destination file",
				},
				&cli.BoolFlag{
					Name:  "plain",
					Usage: "Write unencrypted JSON",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return withVault(ctx, func(ctx context.Context, container *app.Container, vault vaultUsecase.VaultUseCase) error {
					return commands.RunExport(
						ctx,
						vault,
						container.Logger(),
						commands.DefaultIO().Writer,
						cmd.String("out"),
						cmd.Bool("plain"),
					)
				})
			},
		},
		{
			Name:  "import",
			Usage: "Replace all profiles with an exported file",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "in",
					Required: true,
					Usage:    "Source file",
				},
				&cli.BoolFlag{
					Name:  "plain",
					Usage: "Read unencrypted JSON",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return withVault(ctx, func(ctx context.Context, container *app.Container, vault vaultUsecase.VaultUseCase) error {
					return commands.RunImport(
						ctx,
						vault,
						container.Logger(),
						commands.DefaultIO().Writer,
						cmd.String("in"),
						cmd.Bool("plain"),
					)
				})
			},
		},
		{
			Name:  "backup",
			Usage: "Store a timestamped backup of the profiles",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return withVault(ctx, func(ctx context.Context, container *app.Container, vault vaultUsecase.VaultUseCase) error {
					backups, err := container.BackupUseCase(ctx)
					if err != nil {
						return err
					}
					return commands.RunBackup(ctx, backups, vault, container.Logger(), commands.DefaultIO().Writer)
				})
			},
		},
		{
			Name:  "backups",
			Usage: "List stored backups",
			Flags: []cli.Flag{formatFlag()},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				container := app.NewContainer(config.Load())
				defer commands.CloseContainer(container)

				backups, err := container.BackupUseCase(ctx)
				if err != nil {
					return err
				}
				return commands.RunBackups(ctx, backups, commands.DefaultIO().Writer, cmd.String("format"))
			},
		},
		{
			Name:  "restore",
			Usage: "Replace all profiles with a stored backup",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "name",
					Aliases:  []string{"n"},
					Required: true,
					Usage:    "Backup name as shown by backups",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return withVault(ctx, func(ctx context.Context, container *app.Container, vault vaultUsecase.VaultUseCase) error {
					backups, err := container.BackupUseCase(ctx)
					if err != nil {
						return err
					}
					return commands.RunRestore(
						ctx,
						backups,
						vault,
						container.Logger(),
						commands.DefaultIO().Writer,
						cmd.String("name"),
					)
				})
			},
		},
	}
}
