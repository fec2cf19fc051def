package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/connvault/cmd/app/commands"
	"github.com/allisson/connvault/internal/app"
	"github.com/allisson/connvault/internal/config"
	vaultUsecase "github.com/allisson/connvault/internal/vault/usecase"
)

func getCommands(version string) []*cli.Command {
	cmds := []*cli.Command{}
	cmds = append(cmds, getSystemCommands(version)...)
	cmds = append(cmds, getVaultCommands()...)
	cmds = append(cmds, getTransferCommands()...)
	return cmds
}

// vaultAction is a command body that runs on an unlocked vault.
type vaultAction func(ctx context.Context, container *app.Container, vault vaultUsecase.VaultUseCase) error

// withVault loads configuration, unlocks the vault and runs action. The vault
// is closed and the container shut down afterwards.
func withVault(ctx context.Context, action vaultAction) error {
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

	vault, err := commands.UnlockVault(
		ctx,
		opener,
		keyStore,
		container.Logger(),
		commands.PromptIO(),
		commands.UnlockOptions{PasswordPolicy: cfg.PasswordPolicy(), Attempts: 1},
	)
	if err != nil {
		return err
	}
	defer func() {
		_ = vault.Close()
	}()

	return action(ctx, container, vault)
}

func formatFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Value:   "text",
		Usage:   "Output format: 'text' or 'json'",
	}
}

func indexFlag() cli.Flag {
	return &cli.IntFlag{
		Name:     "index",
		Aliases:  []string{"i"},
		Required: true,
		Usage:    "Profile index as shown by list",
	}
}
