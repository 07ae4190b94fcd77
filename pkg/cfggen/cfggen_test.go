package cfggen

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tacticalops/armalaunch/pkg/config"
)

func testConfig() *config.ResolvedConfig {
	return &config.ResolvedConfig{
		Server: config.ServerConfig{
			Hostname:         "Tactical Tuesday",
			Password:         "join",
			PasswordAdmin:    "admin",
			MaxPlayers:       40,
			VerifySignatures: 2,
			BattlEye:         true,
			Motd:             []string{"Welcome", "Play nice"},
			MotdInterval:     5,
		},
	}
}

func TestGenerateServerCfg(t *testing.T) {
	out := filepath.Join(t.TempDir(), "generated_a3server.cfg")
	_, err := GenerateServerCfg(testConfig(), out)
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	content := string(data)

	assert.Contains(t, content, `hostname = "Tactical Tuesday";`)
	assert.Contains(t, content, `password = "join";`)
	assert.Contains(t, content, `passwordAdmin = "admin";`)
	assert.Contains(t, content, `maxPlayers = 40;`)
	assert.Contains(t, content, `verifySignatures = 2;`)
	assert.Contains(t, content, `BattlEye = 1;`)
	assert.Contains(t, content, `motd[] = { "Welcome", "Play nice" };`)
	assert.Contains(t, content, `motdInterval = 5;`)
}

func TestGenerateServerCfgDeterministic(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "a.cfg")
	second := filepath.Join(dir, "b.cfg")

	_, err := GenerateServerCfg(testConfig(), first)
	require.NoError(t, err)
	_, err = GenerateServerCfg(testConfig(), second)
	require.NoError(t, err)

	a, _ := os.ReadFile(first)
	b, _ := os.ReadFile(second)
	assert.Equal(t, string(a), string(b))
}

func TestGenerateServerCfgEscapesQuotes(t *testing.T) {
	cfg := testConfig()
	cfg.Server.Hostname = `The "Best" Server`

	out := filepath.Join(t.TempDir(), "server.cfg")
	_, err := GenerateServerCfg(cfg, out)
	require.NoError(t, err)

	data, _ := os.ReadFile(out)
	assert.Contains(t, string(data), `hostname = "The \"Best\" Server";`)
}

func TestGenerateServerCfgHeadlessClients(t *testing.T) {
	cfg := testConfig()
	cfg.HeadlessClients = config.HeadlessClientsConfig{Enabled: true, Count: 2}

	out := filepath.Join(t.TempDir(), "server.cfg")
	_, err := GenerateServerCfg(cfg, out)
	require.NoError(t, err)

	data, _ := os.ReadFile(out)
	assert.Contains(t, string(data), `headlessClients[] = { "127.0.0.1", "127.0.0.1" };`)
	assert.Contains(t, string(data), `localClient[] = { "127.0.0.1", "127.0.0.1" };`)
}

func TestGenerateServerCfgFromTemplate(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ServerCfgTemplate),
		[]byte("hostname = \"{{hostname}}\";\nmaxPlayers = {{max_players}};\n"), 0644))

	out := filepath.Join(dir, "server.cfg")
	_, err := GenerateServerCfg(testConfig(), out)
	require.NoError(t, err)

	data, _ := os.ReadFile(out)
	assert.Contains(t, string(data), `hostname = "Tactical Tuesday";`)
	assert.Contains(t, string(data), `maxPlayers = 40;`)
	// template path: no generated motd block
	assert.NotContains(t, string(data), "motd[]")
}

func TestGenerateHeadlessCfg(t *testing.T) {
	cfg := testConfig()
	out := filepath.Join(t.TempDir(), "hc.cfg")
	_, err := GenerateHeadlessCfg(cfg, out)
	require.NoError(t, err)

	data, _ := os.ReadFile(out)
	assert.Equal(t, "password = \"join\";\n", string(data))

	cfg.HeadlessClients.Password = "hcpass"
	_, err = GenerateHeadlessCfg(cfg, out)
	require.NoError(t, err)
	data, _ = os.ReadFile(out)
	assert.Equal(t, "password = \"hcpass\";\n", string(data))
}

func TestGenerateProfileCfg(t *testing.T) {
	dir := t.TempDir()
	out, err := GenerateProfileCfg(filepath.Join(dir, "Users", "server"), "server")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "Users", "server", "server.Arma3Profile"), out)

	data, readErr := os.ReadFile(out)
	require.NoError(t, readErr)
	assert.Contains(t, string(data), `difficulty="Custom";`)
	assert.Contains(t, string(data), "aiLevelPreset=3;")
}
