package fakecipher

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vaultsync/core/pkg/model"
)

func TestCipher_HashName_DeterministicAndCaseInsensitive(t *testing.T) {
	c := New()
	assert.Equal(t, c.HashName("Report.PDF"), c.HashName("report.pdf"))
	assert.Len(t, c.HashName("x"), 64)
}

func TestCipher_FileMetadataRoundTrip(t *testing.T) {
	c := New()
	ctx := context.Background()
	keys := model.MasterKeyList{"key-1", "key-2"}

	fm := model.FileMetadata{Name: "doc.txt", Size: 42, Mime: "text/plain", Key: "file-key", LastModified: 100}
	plaintext, err := marshalForTest(fm)
	require.NoError(t, err)

	blob, err := c.EncryptMetadata(ctx, plaintext, "key-2")
	require.NoError(t, err)

	got, err := c.DecryptFileMetadata(ctx, blob, keys)
	require.NoError(t, err)
	assert.Equal(t, fm, got)
}

func TestCipher_DecryptFails_WhenKeyNotInList(t *testing.T) {
	c := New()
	ctx := context.Background()

	blob := EncryptFolderMetadata(c, "Documents", "key-not-in-list")
	_, err := c.DecryptFolderName(ctx, blob, model.MasterKeyList{"key-a", "key-b"})
	assert.Error(t, err)
}

func TestCipher_FolderLinkKeyRoundTrip(t *testing.T) {
	c := New()
	ctx := context.Background()
	keys := model.MasterKeyList{"master-1"}

	blob := EncryptLinkKey(c, "link-symmetric-key", "master-1")
	got, err := c.DecryptFolderLinkKey(ctx, blob, keys)
	require.NoError(t, err)
	assert.Equal(t, "link-symmetric-key", got)
}

func TestCipher_PublicKeyEncryptionUsesDifferentKeyThanMaster(t *testing.T) {
	c := New()
	ctx := context.Background()

	blob, err := c.EncryptMetadataPublicKey(ctx, `{"name":"x"}`, "recipient-pub-key")
	require.NoError(t, err)

	// Not recoverable under an unrelated master key list.
	_, err = c.DecryptFolderName(ctx, blob, model.MasterKeyList{"master-1"})
	assert.Error(t, err)
}

func marshalForTest(fm model.FileMetadata) (string, error) {
	raw, err := json.Marshal(fm)
	return string(raw), err
}
