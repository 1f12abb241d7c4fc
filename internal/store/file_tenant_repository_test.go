package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Fatihur/api-baru/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newFileRepo(t *testing.T) (TenantRepository, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "api-keys.json")
	repo, err := NewFileTenantRepository(path, zap.NewNop())
	require.NoError(t, err)
	return repo, path
}

func TestFileTenantRepository_LoadMissingFile(t *testing.T) {
	repo, _ := newFileRepo(t)

	tenants, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, tenants)
}

func TestFileTenantRepository_SaveLoadRoundTrip(t *testing.T) {
	repo, _ := newFileRepo(t)

	now := time.Now().UTC().Truncate(time.Second)
	in := map[string]*model.TenantRecord{
		"wa_abc": {
			Token:        "wa_abc",
			Name:         "My App",
			CreatedAt:    now,
			RequestCount: 7,
			Active:       true,
		},
		"wa_revoked": {
			Token:     "wa_revoked",
			Name:      "Old App",
			CreatedAt: now.Add(-time.Hour),
			Active:    false,
		},
	}

	require.NoError(t, repo.Save(context.Background(), in))

	out, err := repo.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "My App", out["wa_abc"].Name)
	assert.EqualValues(t, 7, out["wa_abc"].RequestCount)
	assert.True(t, out["wa_abc"].CreatedAt.Equal(now))
	assert.False(t, out["wa_revoked"].Active)
}

func TestFileTenantRepository_SaveLeavesNoTempFile(t *testing.T) {
	repo, path := newFileRepo(t)

	require.NoError(t, repo.Save(context.Background(), map[string]*model.TenantRecord{}))

	_, err := os.Stat(path)
	assert.NoError(t, err)
	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestFileTenantRepository_LoadCorruptFile(t *testing.T) {
	repo, path := newFileRepo(t)
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := repo.Load(context.Background())
	assert.Error(t, err)
}

func TestFileTenantRepository_RequiresPath(t *testing.T) {
	_, err := NewFileTenantRepository("", zap.NewNop())
	assert.Error(t, err)
}

func TestFileTenantRepository_Ping(t *testing.T) {
	repo, _ := newFileRepo(t)
	assert.NoError(t, repo.Ping(context.Background()))
}
