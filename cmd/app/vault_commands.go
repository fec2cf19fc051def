package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/connvault/cmd/app/commands"
	"github.com/allisson/connvault/internal/app"
	vaultUsecase "github.com/allisson/connvault/internal/vault/usecase"
)

func profileFlags(required bool) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     commands.FieldType,
			Aliases:  []string{"t"},
			Required: required,
			Usage:    "Database type: 'mysql' or 'sqlite'",
		},
		&cli.StringFlag{
			Name:  commands.FieldHost,
			Usage: "MySQL host name or IP address",
		},
		&cli.IntFlag{
			Name:  commands.FieldPort,
			Usage: "MySQL port (default 3306)",
		},
		&cli.StringFlag{
			Name:    commands.FieldUser,
			Aliases: []string{"u"},
			Usage:   "MySQL user",
		},
		&cli.StringFlag{
			Name:    commands.FieldPassword,
			Usage:   "MySQL password",
			Sources: cli.EnvVars("DB_PASSWORD"),
		},
		&cli.StringFlag{
			Name:    commands.FieldDatabase,
			Aliases: []string{"d"},
			Usage:   "MySQL database name",
		},
		&cli.StringFlag{
			Name:  commands.FieldPath,
			Usage: "SQLite database file",
		},
	}
}

// profileInput collects the profile flags that were given.
func profileInput(cmd *cli.Command) commands.ProfileInput {
	set := map[string]bool{}
	for _, name := range []string{
		commands.FieldType,
		commands.FieldHost,
		commands.FieldPort,
		commands.FieldUser,
		commands.FieldPassword,
		commands.FieldDatabase,
		commands.FieldPath,
	} {
		set[name] = cmd.IsSet(name)
	}

	return commands.ProfileInput{
		Kind:     cmd.String(commands.FieldType),
		Host:     cmd.String(commands.FieldHost),
		Port:     cmd.Int(commands.FieldPort),
		User:     cmd.String(commands.FieldUser),
		Password: cmd.String(commands.FieldPassword),
		Database: cmd.String(commands.FieldDatabase),
		Path:     cmd.String(commands.FieldPath),
		Set:      set,
	}
}

func getVaultCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "list",
			Usage: "List saved connection profiles",
			Flags: []cli.Flag{formatFlag()},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return withVault(ctx, func(ctx context.Context, container *app.Container, vault vaultUsecase.VaultUseCase) error {
					return commands.RunList(ctx, vault, commands.DefaultIO().Writer, cmd.String("format"))
				})
			},
		},
		{
			Name:  "show",
			Usage: "Show one connection profile",
			Flags: []cli.Flag{
				indexFlag(),
				&cli.BoolFlag{
					Name:    "reveal",
					Aliases: []string{"r"},
					Usage:   "Show the password in clear text",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return withVault(ctx, func(ctx context.Context, container *app.Container, vault vaultUsecase.VaultUseCase) error {
					return commands.RunShow(
						ctx,
						vault,
						container.Logger(),
						commands.DefaultIO().Writer,
						cmd.Int("index"),
						cmd.Bool("reveal"),
						cmd.String("format"),
					)
				})
			},
		},
		{
			Name:  "add",
			Usage: "Add a connection profile",
			Flags: profileFlags(true),
			Action: func(ctx context.Context, cmd *cli.Command) error {
				input := profileInput(cmd)
				return withVault(ctx, func(ctx context.Context, container *app.Container, vault vaultUsecase.VaultUseCase) error {
					return commands.RunAdd(ctx, vault, container.Logger(), commands.DefaultIO().Writer, input)
				})
			},
		},
		{
			Name:  "update",
			Usage: "Change fields of a connection profile",
			Flags: append([]cli.Flag{indexFlag()}, profileFlags(false)...),
			Action: func(ctx context.Context, cmd *cli.Command) error {
				input := profileInput(cmd)
				return withVault(ctx, func(ctx context.Context, container *app.Container, vault vaultUsecase.VaultUseCase) error {
					return commands.RunUpdate(
						ctx,
						vault,
						container.Logger(),
						commands.DefaultIO().Writer,
						cmd.Int("index"),
						input,
					)
				})
			},
		},
		{
			Name:  "remove",
			Usage: "Remove a connection profile",
			Flags: []cli.Flag{indexFlag()},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return withVault(ctx, func(ctx context.Context, container *app.Container, vault vaultUsecase.VaultUseCase) error {
					return commands.RunRemove(ctx, vault, container.Logger(), commands.DefaultIO().Writer, cmd.Int("index"))
				})
			},
		},
		{
			Name:  "test-connection",
			Usage: "Connect to the database of a profile",
			Flags: []cli.Flag{indexFlag(), formatFlag()},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return withVault(ctx, func(ctx context.Context, container *app.Container, vault vaultUsecase.VaultUseCase) error {
					return commands.RunTestConnection(
						ctx,
						vault,
						container.ConnectionTester(),
						container.Logger(),
						commands.DefaultIO().Writer,
						cmd.Int("index"),
						cmd.String("format"),
					)
				})
			},
		},
	}
}
