package bootstrap

import (
	"context"
	"testing"

	"pantry/internal/config"
	"pantry/internal/models"
	"pantry/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func devConfig() *config.Config {
	return &config.Config{
		Env:                   "development",
		DevBootstrapSuperuser: true,
		DevSuperuserEmail:     "Admin@Example.com",
		DevSuperuserPassword:  "adminpass",
	}
}

func TestEnsureDevSuperuser(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()

	require.NoError(t, ensureDevSuperuser(ctx, devConfig(), db, nil))

	var admin models.User
	require.NoError(t, db.Where("email = ?", "admin@example.com").First(&admin).Error)
	assert.True(t, admin.IsSuperuser)
	assert.True(t, admin.IsStaff)

	// Second run finds the existing account.
	require.NoError(t, ensureDevSuperuser(ctx, devConfig(), db, nil))
	var count int64
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestEnsureDevSuperuserSkipped(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()

	prod := devConfig()
	prod.Env = "production"
	require.NoError(t, ensureDevSuperuser(ctx, prod, db, nil))

	disabled := devConfig()
	disabled.DevBootstrapSuperuser = false
	require.NoError(t, ensureDevSuperuser(ctx, disabled, db, nil))

	var count int64
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestEnsureDevSuperuserNeedsPassword(t *testing.T) {
	db := testutil.NewTestDB(t)
	cfg := devConfig()
	cfg.DevSuperuserPassword = ""
	assert.Error(t, ensureDevSuperuser(context.Background(), cfg, db, nil))
}

func TestWaitForDatabase(t *testing.T) {
	db := testutil.NewTestDB(t)
	cfg := &config.Config{DBWaitIntervalMS: 10, DBWaitTimeoutSeconds: 1}
	assert.NoError(t, WaitForDatabase(context.Background(), db, cfg))
}
