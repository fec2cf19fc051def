package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"text/tabwriter"

	vaultDomain "github.com/allisson/connvault/internal/vault/domain"
	vaultUsecase "github.com/allisson/connvault/internal/vault/usecase"
)

// ProfileInput carries profile fields from flags. Set names the fields that were
// given explicitly, so an update only touches those.
type ProfileInput struct {
	Kind     string
	Host     string
	Port     int
	User     string
	Password string
	Database string
	Path     string
	Set      map[string]bool
}

// Profile field names accepted in ProfileInput.Set.
const (
	FieldType     = "type"
	FieldHost     = "host"
	FieldPort     = "port"
	FieldUser     = "user"
	FieldPassword = "password"
	FieldDatabase = "database"
	FieldPath     = "path"
)

// apply overlays the set fields of in on base.
func (in ProfileInput) apply(base vaultDomain.ConnectionProfile) (vaultDomain.ConnectionProfile, error) {
	if in.Set[FieldType] {
		kind, err := vaultDomain.ParseKind(in.Kind)
		if err != nil {
			return vaultDomain.ConnectionProfile{}, err
		}
		base.Kind = kind
	}
	if in.Set[FieldHost] {
		base.Host = in.Host
	}
	if in.Set[FieldPort] {
		base.Port = in.Port
	}
	if in.Set[FieldUser] {
		base.User = in.User
	}
	if in.Set[FieldPassword] {
		base.Password = in.Password
	}
	if in.Set[FieldDatabase] {
		base.Database = in.Database
	}
	if in.Set[FieldPath] {
		base.Path = in.Path
	}
	return base, nil
}

type profileOutput struct {
	Index int `json:"index"`
	vaultDomain.ConnectionProfile
}

// RunList prints every profile with its index. Passwords are never shown.
func RunList(
	ctx context.Context,
	vault vaultUsecase.VaultUseCase,
	writer io.Writer,
	format string,
) error {
	profiles, err := vault.List(ctx)
	if err != nil {
		return err
	}

	if format == "json" {
		out := make([]profileOutput, 0, len(profiles))
		for i, profile := range profiles {
			out = append(out, profileOutput{Index: i, ConnectionProfile: profile.Redacted()})
		}
		return outputJSON(writer, out)
	}

	if len(profiles) == 0 {
		_, _ = fmt.Fprintln(writer, "No connections saved.")
		return nil
	}
	outputProfilesText(writer, profiles)
	return nil
}

func outputProfilesText(writer io.Writer, profiles []vaultDomain.ConnectionProfile) {
	tw := tabwriter.NewWriter(writer, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "INDEX\tTYPE\tTARGET")
	for i, profile := range profiles {
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\n", i, profile.Kind, profile.Label())
	}
	_ = tw.Flush()
}

// RunShow prints one profile. The password is masked unless reveal is set.
func RunShow(
	ctx context.Context,
	vault vaultUsecase.VaultUseCase,
	logger *slog.Logger,
	writer io.Writer,
	index int,
	reveal bool,
	format string,
) error {
	profile, ok := vault.Get(ctx, index)
	if !ok {
		return fmt.Errorf("%w: %d", ErrNoProfile, index)
	}

	shown := profile.Redacted()
	if reveal {
		shown = *profile
		logger.Warn("profile password revealed", slog.Int("index", index))
	}

	if format == "json" {
		return outputJSON(writer, profileOutput{Index: index, ConnectionProfile: shown})
	}

	_, _ = fmt.Fprintf(writer, "Index: %d\n", index)
	_, _ = fmt.Fprintf(writer, "Type: %s\n", shown.Kind)
	switch shown.Kind {
	case vaultDomain.KindMySQL:
		_, _ = fmt.Fprintf(writer, "Address: %s\n", shown.Address())
		_, _ = fmt.Fprintf(writer, "User: %s\n", shown.User)
		_, _ = fmt.Fprintf(writer, "Password: %s\n", shown.Password)
		_, _ = fmt.Fprintf(writer, "Database: %s\n", shown.Database)
	case vaultDomain.KindSQLite:
		_, _ = fmt.Fprintf(writer, "Path: %s\n", shown.Path)
	}
	return nil
}

// RunAdd validates and appends a new profile.
func RunAdd(
	ctx context.Context,
	vault vaultUsecase.VaultUseCase,
	logger *slog.Logger,
	writer io.Writer,
	input ProfileInput,
) error {
	profile, err := input.apply(vaultDomain.ConnectionProfile{})
	if err != nil {
		return err
	}

	if err := vault.Add(ctx, profile); err != nil {
		return fmt.Errorf("failed to add profile: %w", err)
	}

	listing, err := vault.Snapshot(ctx)
	if err != nil {
		return err
	}
	index := len(listing.Profiles) - 1

	_, _ = fmt.Fprintf(writer, "Added profile %d: %s\n", index, profile.Label())
	logger.Info("profile added from cli", slog.Int("index", index))
	return nil
}

// RunUpdate changes the given fields of the profile at index. It refuses to
// write when the list changed shape between reading and writing.
func RunUpdate(
	ctx context.Context,
	vault vaultUsecase.VaultUseCase,
	logger *slog.Logger,
	writer io.Writer,
	index int,
	input ProfileInput,
) error {
	listing, err := vault.Snapshot(ctx)
	if err != nil {
		return err
	}
	current, ok := listing.Get(index)
	if !ok {
		return fmt.Errorf("%w: %d", ErrNoProfile, index)
	}

	updated, err := input.apply(current)
	if err != nil {
		return err
	}

	if err := vault.UpdateAt(ctx, listing.Generation, index, updated); err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}

	_, _ = fmt.Fprintf(writer, "Updated profile %d: %s\n", index, updated.Label())
	logger.Info("profile updated from cli", slog.Int("index", index))
	return nil
}

// RunRemove deletes the profile at index.
func RunRemove(
	ctx context.Context,
	vault vaultUsecase.VaultUseCase,
	logger *slog.Logger,
	writer io.Writer,
	index int,
) error {
	listing, err := vault.Snapshot(ctx)
	if err != nil {
		return err
	}
	removed, ok := listing.Get(index)
	if !ok {
		return fmt.Errorf("%w: %d", ErrNoProfile, index)
	}

	if err := vault.RemoveAt(ctx, listing.Generation, index); err != nil {
		return fmt.Errorf("failed to remove profile: %w", err)
	}

	_, _ = fmt.Fprintf(writer, "Removed profile %d: %s\n", index, removed.Label())
	logger.Info("profile removed from cli", slog.Int("index", index))
	return nil
}
