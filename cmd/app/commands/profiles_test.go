package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/allisson/connvault/internal/errors"
	"github.com/allisson/connvault/internal/testutil"
	vaultDomain "github.com/allisson/connvault/internal/vault/domain"
	vaultMocks "github.com/allisson/connvault/internal/vault/usecase/mocks"
)

func TestRunList(t *testing.T) {
	ctx := context.Background()
	profiles := testutil.SampleProfiles()

	t.Run("text", func(t *testing.T) {
		vault := &vaultMocks.MockVaultUseCase{}
		vault.On("List", ctx).Return(profiles, nil).Once()

		var out bytes.Buffer
		require.NoError(t, RunList(ctx, vault, &out, "text"))

		assert.Contains(t, out.String(), "INDEX")
		assert.Contains(t, out.String(), "MySQL root@db1.internal:3306/inventory")
		assert.Contains(t, out.String(), "SQLite /var/lib/app/local.db")
		assert.NotContains(t, out.String(), "s3cr3t")
		vault.AssertExpectations(t)
	})

	t.Run("json redacts passwords", func(t *testing.T) {
		vault := &vaultMocks.MockVaultUseCase{}
		vault.On("List", ctx).Return(profiles, nil).Once()

		var out bytes.Buffer
		require.NoError(t, RunList(ctx, vault, &out, "json"))

		var result []map[string]any
		require.NoError(t, json.Unmarshal(out.Bytes(), &result))
		require.Len(t, result, 2)
		assert.Equal(t, float64(0), result[0]["index"])
		assert.Equal(t, "MySQL", result[0]["type"])
		assert.Equal(t, "********", result[0]["password"])
		assert.Equal(t, "/var/lib/app/local.db", result[1]["db_path"])
		assert.NotContains(t, out.String(), "s3cr3t")
	})

	t.Run("empty", func(t *testing.T) {
		vault := &vaultMocks.MockVaultUseCase{}
		vault.On("List", ctx).Return([]vaultDomain.ConnectionProfile{}, nil).Once()

		var out bytes.Buffer
		require.NoError(t, RunList(ctx, vault, &out, "text"))
		assert.Equal(t, "No connections saved.\n", out.String())
	})

	t.Run("closed vault", func(t *testing.T) {
		vault := &vaultMocks.MockVaultUseCase{}
		vault.On("List", ctx).Return(nil, vaultDomain.ErrVaultClosed).Once()

		var out bytes.Buffer
		assert.ErrorIs(t, RunList(ctx, vault, &out, "text"), vaultDomain.ErrVaultClosed)
	})
}

func TestRunShow(t *testing.T) {
	ctx := context.Background()
	profile := testutil.SampleProfiles()[0]

	t.Run("masked", func(t *testing.T) {
		vault := &vaultMocks.MockVaultUseCase{}
		vault.On("Get", ctx, 0).Return(&profile, true).Once()

		var out bytes.Buffer
		require.NoError(t, RunShow(ctx, vault, testutil.Logger(), &out, 0, false, "text"))
		assert.Contains(t, out.String(), "Address: db1.internal:3306")
		assert.Contains(t, out.String(), "Password: ********")
		assert.NotContains(t, out.String(), "s3cr3t")
	})

	t.Run("revealed", func(t *testing.T) {
		vault := &vaultMocks.MockVaultUseCase{}
		vault.On("Get", ctx, 0).Return(&profile, true).Once()

		var out bytes.Buffer
		require.NoError(t, RunShow(ctx, vault, testutil.Logger(), &out, 0, true, "json"))

		var result map[string]any
		require.NoError(t, json.Unmarshal(out.Bytes(), &result))
		assert.Equal(t, "s3cr3t", result["password"])
	})

	t.Run("out of range", func(t *testing.T) {
		vault := &vaultMocks.MockVaultUseCase{}
		vault.On("Get", ctx, 7).Return(nil, false).Once()

		var out bytes.Buffer
		err := RunShow(ctx, vault, testutil.Logger(), &out, 7, false, "text")
		assert.ErrorIs(t, err, ErrNoProfile)
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})
}

func TestRunAdd(t *testing.T) {
	ctx := context.Background()
	expected := vaultDomain.ConnectionProfile{
		Kind:     vaultDomain.KindMySQL,
		Host:     "db2.internal",
		Port:     3307,
		User:     "app",
		Password: "pw",
	}
	in := ProfileInput{
		Kind:     "mysql",
		Host:     "db2.internal",
		Port:     3307,
		User:     "app",
		Password: "pw",
		Database: "ignored",
		Set: map[string]bool{
			FieldType: true, FieldHost: true, FieldPort: true, FieldUser: true, FieldPassword: true,
		},
	}

	t.Run("success", func(t *testing.T) {
		vault := &vaultMocks.MockVaultUseCase{}
		vault.On("Add", ctx, expected).Return(nil).Once()
		vault.On("Snapshot", ctx).Return(vaultDomain.Listing{
			Generation: 1,
			Profiles:   []vaultDomain.ConnectionProfile{expected},
		}, nil).Once()

		var out bytes.Buffer
		require.NoError(t, RunAdd(ctx, vault, testutil.Logger(), &out, in))
		assert.Equal(t, "Added profile 0: MySQL app@db2.internal:3307\n", out.String())
		vault.AssertExpectations(t)
	})

	t.Run("unknown type", func(t *testing.T) {
		vault := &vaultMocks.MockVaultUseCase{}
		bad := in
		bad.Kind = "oracle"

		var out bytes.Buffer
		assert.ErrorIs(t, RunAdd(ctx, vault, testutil.Logger(), &out, bad), vaultDomain.ErrInvalidProfile)
		vault.AssertNotCalled(t, "Add", mock.Anything, mock.Anything)
	})

	t.Run("rejected by vault", func(t *testing.T) {
		vault := &vaultMocks.MockVaultUseCase{}
		vault.On("Add", ctx, expected).Return(vaultDomain.ErrInvalidProfile).Once()

		var out bytes.Buffer
		assert.ErrorIs(t, RunAdd(ctx, vault, testutil.Logger(), &out, in), vaultDomain.ErrInvalidProfile)
		assert.Empty(t, out.String())
	})
}

func TestRunUpdate(t *testing.T) {
	ctx := context.Background()
	profiles := testutil.SampleProfiles()
	listing := vaultDomain.Listing{Generation: 4, Profiles: profiles}

	t.Run("only set fields change", func(t *testing.T) {
		updated := profiles[0]
		updated.Password = "rotated"

		vault := &vaultMocks.MockVaultUseCase{}
		vault.On("Snapshot", ctx).Return(listing, nil).Once()
		vault.On("UpdateAt", ctx, uint64(4), 0, updated).Return(nil).Once()

		var out bytes.Buffer
		err := RunUpdate(ctx, vault, testutil.Logger(), &out, 0, ProfileInput{
			Host:     "ignored.internal",
			Password: "rotated",
			Set:      map[string]bool{FieldPassword: true},
		})
		require.NoError(t, err)
		assert.Contains(t, out.String(), "Updated profile 0")
		vault.AssertExpectations(t)
	})

	t.Run("out of range", func(t *testing.T) {
		vault := &vaultMocks.MockVaultUseCase{}
		vault.On("Snapshot", ctx).Return(listing, nil).Once()

		var out bytes.Buffer
		err := RunUpdate(ctx, vault, testutil.Logger(), &out, 2, ProfileInput{})
		assert.ErrorIs(t, err, ErrNoProfile)
	})

	t.Run("stale listing", func(t *testing.T) {
		vault := &vaultMocks.MockVaultUseCase{}
		vault.On("Snapshot", ctx).Return(listing, nil).Once()
		vault.On("UpdateAt", ctx, uint64(4), 1, profiles[1]).Return(vaultDomain.ErrStaleListing).Once()

		var out bytes.Buffer
		err := RunUpdate(ctx, vault, testutil.Logger(), &out, 1, ProfileInput{})
		assert.ErrorIs(t, err, vaultDomain.ErrStaleListing)
	})
}

func TestRunRemove(t *testing.T) {
	ctx := context.Background()
	listing := vaultDomain.Listing{Generation: 2, Profiles: testutil.SampleProfiles()}

	t.Run("success", func(t *testing.T) {
		vault := &vaultMocks.MockVaultUseCase{}
		vault.On("Snapshot", ctx).Return(listing, nil).Once()
		vault.On("RemoveAt", ctx, uint64(2), 1).Return(nil).Once()

		var out bytes.Buffer
		require.NoError(t, RunRemove(ctx, vault, testutil.Logger(), &out, 1))
		assert.Equal(t, "Removed profile 1: SQLite /var/lib/app/local.db\n", out.String())
		vault.AssertExpectations(t)
	})

	t.Run("out of range", func(t *testing.T) {
		vault := &vaultMocks.MockVaultUseCase{}
		vault.On("Snapshot", ctx).Return(listing, nil).Once()

		var out bytes.Buffer
		assert.ErrorIs(t, RunRemove(ctx, vault, testutil.Logger(), &out, -1), ErrNoProfile)
	})

	t.Run("write failure", func(t *testing.T) {
		writeErr := errors.New("disk full")
		vault := &vaultMocks.MockVaultUseCase{}
		vault.On("Snapshot", ctx).Return(listing, nil).Once()
		vault.On("RemoveAt", ctx, uint64(2), 0).Return(writeErr).Once()

		var out bytes.Buffer
		assert.ErrorIs(t, RunRemove(ctx, vault, testutil.Logger(), &out, 0), writeErr)
	})
}
