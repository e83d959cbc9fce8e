package transportctx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vaultsync/core/pkg/transportcfg"
)

func TestNew_BuildsDistinctPools(t *testing.T) {
	cfg := transportcfg.Load("")
	ctx := New(cfg)

	assert.NotSame(t, ctx.APIPool, ctx.UploadPool)
	assert.NotSame(t, ctx.UploadPool, ctx.DownloadPool)
	assert.NotNil(t, ctx.Throttle)

	acquired := ctx.CreateFolderSem.TryAcquire(1)
	assert.True(t, acquired)
	assert.False(t, ctx.CreateFolderSem.TryAcquire(1), "second permit should not be available")
	ctx.CreateFolderSem.Release(1)
}
