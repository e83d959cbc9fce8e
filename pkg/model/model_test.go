package model

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewCredential(t *testing.T) {
	valid := strings.Repeat("a", 64)
	cred, err := NewCredential(valid)
	assert.NoError(t, err)
	assert.Equal(t, valid, cred.String())

	_, err = NewCredential("too-short")
	assert.Error(t, err)

	withControlChar := strings.Repeat("a", 63) + "\n"
	_, err = NewCredential(withControlChar)
	assert.Error(t, err)
}

func TestMasterKeyList_Current(t *testing.T) {
	var empty MasterKeyList
	_, ok := empty.Current()
	assert.False(t, ok)

	keys := MasterKeyList{"key1", "key2", "key3"}
	current, ok := keys.Current()
	assert.True(t, ok)
	assert.Equal(t, "key3", current)
}

func TestItem_Name(t *testing.T) {
	file := Item{Kind: KindFile, Metadata: FileMetadata{Name: "report.pdf"}}
	assert.Equal(t, "report.pdf", file.Name())

	folder := Item{Kind: KindFolder, Metadata: FolderMetadata{Name: "Documents"}}
	assert.Equal(t, "Documents", folder.Name())

	assert.Equal(t, "file", KindFile.String())
	assert.Equal(t, "folder", KindFolder.String())
}

func TestEnvelope_IsSessionInvalidationMessage(t *testing.T) {
	cases := []struct {
		name string
		env  Envelope
		want bool
	}{
		{"exact code", Envelope{Code: "api_key_not_found"}, true},
		{"message variant", Envelope{Message: "Invalid API Key."}, true},
		{"unrelated", Envelope{Message: "folder not found"}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.env.IsSessionInvalidationMessage())
		})
	}
}

func TestEnvelope_IsNotFoundCode(t *testing.T) {
	assert.True(t, Envelope{Code: "folder_not_found"}.IsNotFoundCode())
	assert.True(t, Envelope{Code: "file_not_found"}.IsNotFoundCode())
	assert.False(t, Envelope{Code: "max_storage_reached"}.IsNotFoundCode())
}
