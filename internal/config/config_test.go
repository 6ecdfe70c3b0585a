package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadAppliesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
csgo_servers:
  - name: retake
    log_path: /srv/csgo/logs/current.log
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", cfg.Server.ListenAddr)
	assert.Equal(t, 8080, cfg.Server.HTTPPort)
	assert.Equal(t, "/var/lib/minictrl/minictrl.db", cfg.Database.Path)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "auto", cfg.Logging.Format)
	assert.Equal(t, "csgo", cfg.NATS.SubjectPrefix)
	assert.Equal(t, 4222, cfg.NATS.EmbeddedPort)
	assert.False(t, cfg.NATS.Enabled())
	require.Len(t, cfg.CSGOServers, 1)
	assert.Equal(t, CSGOServer{Name: "retake", LogPath: "/srv/csgo/logs/current.log"}, cfg.CSGOServers[0])
}

func TestParseKeepsExplicitValues(t *testing.T) {
	cfg, err := Parse([]byte(`
server:
  listen_addr: 0.0.0.0
  http_port: 9000
database:
  path: /tmp/m.db
logging:
  level: debug
  format: json
nats:
  url: nats://127.0.0.1:4222
  subject_prefix: league
csgo_servers:
  - name: a
    log_path: /a.log
    from_start: true
  - name: b
    log_path: /b.log.gz
`))
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.ListenAddr)
	assert.Equal(t, 9000, cfg.Server.HTTPPort)
	assert.Equal(t, "/tmp/m.db", cfg.Database.Path)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "league", cfg.NATS.SubjectPrefix)
	assert.True(t, cfg.NATS.Enabled())
	assert.True(t, cfg.CSGOServers[0].FromStart)
	assert.False(t, cfg.CSGOServers[1].FromStart)
}

func TestParseRejectsInvalidServers(t *testing.T) {
	tests := map[string]string{
		"missing name":     "csgo_servers:\n  - log_path: /a.log\n",
		"missing log path": "csgo_servers:\n  - name: a\n",
		"duplicate name":   "csgo_servers:\n  - name: a\n    log_path: /a.log\n  - name: a\n    log_path: /b.log\n",
		"bad yaml":         "csgo_servers: [",
	}
	for name, doc := range tests {
		_, err := Parse([]byte(doc))
		assert.Error(t, err, name)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	assert.Error(t, err)
}
