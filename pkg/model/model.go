// Package model defines the core data types shared by the transport,
// transfer, and propagator packages: items, metadata, shares, links, and
// chunks as described in the protocol core's data model.
package model

import (
	"encoding/json"
	"strings"

	"github.com/vaultsync/core/pkg/errors"
)

// ItemKind distinguishes a file from a folder.
type ItemKind int

const (
	KindFile ItemKind = iota
	KindFolder
)

func (k ItemKind) String() string {
	if k == KindFolder {
		return "folder"
	}
	return "file"
}

// Credential is a bearer token. NewCredential validates the 64
// printable-character shape the server issues; it does not interpret the
// token's contents.
type Credential string

// NewCredential validates and wraps a raw bearer token string.
func NewCredential(raw string) (Credential, error) {
	if len(raw) != 64 {
		return "", errors.NewValidationError("credential must be 64 characters", nil)
	}
	for _, r := range raw {
		if r < 0x20 || r > 0x7e {
			return "", errors.NewValidationError("credential must be printable ASCII", nil)
		}
	}
	return Credential(raw), nil
}

func (c Credential) String() string { return string(c) }

// MasterKeyList is an ordered sequence of symmetric keys. The last element
// is the current encryption key; any element may be used to decrypt via
// trial decryption. Never empty in a valid session.
type MasterKeyList []string

// Current returns the most recently added key, used for new encryptions.
func (m MasterKeyList) Current() (string, bool) {
	if len(m) == 0 {
		return "", false
	}
	return m[len(m)-1], true
}

// Metadata is the tagged union of what an Item carries: FileMetadata for
// files, FolderMetadata for folders.
type Metadata interface {
	isMetadata()
}

// FileMetadata is the plaintext metadata record for a file item.
type FileMetadata struct {
	Name         string `json:"name"`
	Size         uint64 `json:"size"`
	Mime         string `json:"mime"`
	Key          string `json:"key"`
	LastModified int64  `json:"lastModified"`
}

func (FileMetadata) isMetadata() {}

// FolderMetadata is the plaintext metadata record for a folder item.
type FolderMetadata struct {
	Name string `json:"name"`
}

func (FolderMetadata) isMetadata() {}

// Item identifies one file or folder in the tree.
type Item struct {
	ID       string
	ParentID string
	Kind     ItemKind
	Metadata Metadata
}

// Name returns the item's plaintext display name regardless of kind.
func (it Item) Name() string {
	switch m := it.Metadata.(type) {
	case FileMetadata:
		return m.Name
	case FolderMetadata:
		return m.Name
	default:
		return ""
	}
}

// EncryptedBlob is opaque ciphertext produced by one of the three
// encryption modes named in the data model (current master key, a
// recipient's public key, or a link's folder-link key).
type EncryptedBlob string

// ShareGrant is one recipient of a share on a folder subtree or item.
type ShareGrant struct {
	RecipientID        string `json:"id"`
	RecipientEmail     string `json:"email"`
	RecipientPublicKey string `json:"publicKey"`
}

// PublicLink is a share-by-link grant; LinkKeyEncrypted must be decrypted
// with the master key list to recover the symmetric key used for
// per-link metadata encryption.
type PublicLink struct {
	LinkUUID         string
	LinkKeyEncrypted EncryptedBlob
}

// Chunk addresses one fixed-size ciphertext blob of a transfer.
type Chunk struct {
	Region string
	Bucket string
	UUID   string
	Index  int
}

// Envelope is the standard wire response shape for every endpoint.
type Envelope struct {
	Status  bool            `json:"status"`
	Code    string          `json:"code,omitempty"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// IsSessionInvalidationMessage reports whether an envelope's message/code
// indicates the bearer token was rejected, per spec.md's session
// invalidation detection rule.
func (e Envelope) IsSessionInvalidationMessage() bool {
	lower := strings.ToLower(e.Message)
	return strings.Contains(lower, "api key not found") ||
		strings.Contains(lower, "invalid api key") ||
		e.Code == "api_key_not_found"
}

// IsNotFoundCode reports whether the envelope's code is one of the
// idempotent "already absent" codes swallowed by trash/move/rename.
func (e Envelope) IsNotFoundCode() bool {
	return e.Code == "folder_not_found" || e.Code == "file_not_found"
}
