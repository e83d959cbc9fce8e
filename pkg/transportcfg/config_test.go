package transportcfg

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg := Load(filepath.Join(t.TempDir(), "missing.yml"))
	assert.Equal(t, defaultConfig(), *cfg)
}

func TestLoad_PartialFileMergesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	err := os.WriteFile(path, []byte("apiGateways:\n  - https://custom.example\n"), 0600)
	assert.NoError(t, err)

	cfg := Load(path)
	assert.Equal(t, []string{"https://custom.example"}, cfg.APIGateways)
	assert.Equal(t, defaultConfig().UploadGateways, cfg.UploadGateways)
	assert.Equal(t, defaultConfig().MaxRetryAPIRequest, cfg.MaxRetryAPIRequest)
}

func TestBuildInfo_UserAgent(t *testing.T) {
	b := BuildInfo{Product: "vaultcore", Version: "1.2.3", Build: "abcd", Platform: "linux"}
	assert.Equal(t, "vaultcore/1.2.3-abcd-linux", b.UserAgent())
}
