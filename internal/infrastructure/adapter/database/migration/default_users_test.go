package migration

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSeed(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadSeedUsers(t *testing.T) {
	path := writeSeed(t, `
users:
  - phone: "81200000001"
    username: superadmin
    display_name: Super Admin
    password: secret
    role: super_admin
    real_balance: "10.50"
`)

	seeds, err := LoadSeedUsers(path)
	require.NoError(t, err)
	require.Len(t, seeds, 1)
	assert.Equal(t, "81200000001", seeds[0].Phone)
	assert.Equal(t, "Super Admin", seeds[0].DisplayName)
	assert.Equal(t, "super_admin", seeds[0].Role)
	assert.Equal(t, "10.50", seeds[0].RealBalance)
}

func TestLoadSeedUsers_Rejections(t *testing.T) {
	_, err := LoadSeedUsers(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = LoadSeedUsers(writeSeed(t, "users: [unclosed"))
	assert.Error(t, err)

	_, err = LoadSeedUsers(writeSeed(t, "users:\n  - username: nophone\n    password: x\n"))
	assert.ErrorContains(t, err, "phone and password are required")
}

func TestSeedFileShipsWithRepository(t *testing.T) {
	seeds, err := LoadSeedUsers(filepath.Join("..", "..", "..", "..", "..", "configs", "seed_users.yaml"))
	require.NoError(t, err)
	assert.NotEmpty(t, seeds)
}
