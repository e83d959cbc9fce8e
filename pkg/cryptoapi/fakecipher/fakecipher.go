// Package fakecipher is a deterministic MetadataCipher test double,
// grounded on the teacher's pkg/graph/mock_graph.go convention of
// simulating an external dependency instead of calling out to a real one.
// It is not cryptographically secure: encryption is reversible encoding
// that records which key was used, so decryption can simulate trial
// decryption by checking key membership in the caller's master key list.
package fakecipher

import (
	"context"
	"crypto/sha512"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/vaultsync/core/pkg/errors"
	"github.com/vaultsync/core/pkg/model"
)

// Cipher is the fake MetadataCipher implementation.
type Cipher struct{}

// New constructs a Cipher.
func New() *Cipher {
	return &Cipher{}
}

type envelope struct {
	Key  string `json:"key"`
	Data string `json:"data"`
}

func encode(data, key string) model.EncryptedBlob {
	raw, _ := json.Marshal(envelope{Key: key, Data: data})
	return model.EncryptedBlob(base64.StdEncoding.EncodeToString(raw))
}

func decode(blob model.EncryptedBlob) (envelope, error) {
	raw, err := base64.StdEncoding.DecodeString(string(blob))
	if err != nil {
		return envelope{}, errors.NewDecodeError("blob is not valid base64", err)
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return envelope{}, errors.NewDecodeError("blob is not a valid envelope", err)
	}
	return env, nil
}

// HashName returns a deterministic 64-hex-char SHA-512 digest of the
// lowercased name, matching the real hashFn's documented shape.
func (c *Cipher) HashName(name string) string {
	sum := sha512.Sum512([]byte(strings.ToLower(name)))
	return fmt.Sprintf("%x", sum)[:64]
}

// EncryptMetadata records masterKey as the encrypting key.
func (c *Cipher) EncryptMetadata(_ context.Context, plaintext string, masterKey string) (model.EncryptedBlob, error) {
	return encode(plaintext, masterKey), nil
}

// EncryptMetadataPublicKey records recipientPublicKey as the encrypting key.
func (c *Cipher) EncryptMetadataPublicKey(_ context.Context, plaintext string, recipientPublicKey string) (model.EncryptedBlob, error) {
	return encode(plaintext, recipientPublicKey), nil
}

// trialDecrypt returns the plaintext if the blob's recorded key is a
// member of masterKeys, simulating trial decryption.
func trialDecrypt(blob model.EncryptedBlob, masterKeys model.MasterKeyList) (string, error) {
	env, err := decode(blob)
	if err != nil {
		return "", err
	}
	for _, key := range masterKeys {
		if key == env.Key {
			return env.Data, nil
		}
	}
	return "", errors.NewDecodeError("no master key recovers this blob", nil)
}

// DecryptFileMetadata trial-decrypts blob and unmarshals it as a file record.
func (c *Cipher) DecryptFileMetadata(_ context.Context, blob model.EncryptedBlob, masterKeys model.MasterKeyList) (model.FileMetadata, error) {
	plaintext, err := trialDecrypt(blob, masterKeys)
	if err != nil {
		return model.FileMetadata{}, err
	}
	var fm model.FileMetadata
	if err := json.Unmarshal([]byte(plaintext), &fm); err != nil {
		return model.FileMetadata{}, errors.NewDecodeError("decrypted blob is not file metadata", err)
	}
	return fm, nil
}

// DecryptFolderName trial-decrypts blob and unmarshals it as a folder name.
func (c *Cipher) DecryptFolderName(_ context.Context, blob model.EncryptedBlob, masterKeys model.MasterKeyList) (string, error) {
	plaintext, err := trialDecrypt(blob, masterKeys)
	if err != nil {
		return "", err
	}
	var fm model.FolderMetadata
	if err := json.Unmarshal([]byte(plaintext), &fm); err != nil {
		return "", errors.NewDecodeError("decrypted blob is not folder metadata", err)
	}
	return fm.Name, nil
}

// DecryptFolderLinkKey trial-decrypts blob and returns the recovered
// symmetric link key verbatim (not JSON-wrapped).
func (c *Cipher) DecryptFolderLinkKey(_ context.Context, blob model.EncryptedBlob, masterKeys model.MasterKeyList) (string, error) {
	return trialDecrypt(blob, masterKeys)
}

// EncryptFileMetadata is a convenience helper for tests that need a blob
// round-trippable by DecryptFileMetadata without hand-marshaling JSON.
func EncryptFileMetadata(c *Cipher, fm model.FileMetadata, masterKey string) model.EncryptedBlob {
	raw, _ := json.Marshal(fm)
	return encode(string(raw), masterKey)
}

// EncryptFolderMetadata is the folder-name analogue of EncryptFileMetadata.
func EncryptFolderMetadata(c *Cipher, name string, masterKey string) model.EncryptedBlob {
	raw, _ := json.Marshal(model.FolderMetadata{Name: name})
	return encode(string(raw), masterKey)
}

// EncryptLinkKey is the link-key analogue of EncryptFileMetadata: blob
// recovers to the raw key string, not a JSON record.
func EncryptLinkKey(c *Cipher, linkKey string, masterKey string) model.EncryptedBlob {
	return encode(linkKey, masterKey)
}
