// Package cryptoapi names the cryptographic primitives the protocol core
// treats as black boxes, per spec.md §6: metadata encryption/decryption
// and the deterministic name-hash function. Real implementations live
// outside this module; pkg/cryptoapi/fakecipher provides a deterministic
// test double.
package cryptoapi

import (
	"context"

	"github.com/vaultsync/core/pkg/model"
)

// MetadataCipher is the abstract crypto collaborator. The core never
// performs key derivation or symmetric/asymmetric crypto itself; every
// method here is a pass-through to an external implementation selected
// by the caller.
type MetadataCipher interface {
	// HashName returns hashFn(lowercase(name)): a deterministic 64-hex-char
	// digest of a lowercased string, used for the create/rename name-hash
	// field that enforces I1.
	HashName(name string) string

	// EncryptMetadata encrypts a serialized metadata record under the
	// current master key.
	EncryptMetadata(ctx context.Context, plaintext string, masterKey string) (model.EncryptedBlob, error)

	// EncryptMetadataPublicKey encrypts a serialized metadata record under
	// a share recipient's public key.
	EncryptMetadataPublicKey(ctx context.Context, plaintext string, recipientPublicKey string) (model.EncryptedBlob, error)

	// DecryptFileMetadata recovers a file's plaintext metadata record by
	// trial decryption against masterKeys.
	DecryptFileMetadata(ctx context.Context, blob model.EncryptedBlob, masterKeys model.MasterKeyList) (model.FileMetadata, error)

	// DecryptFolderName recovers a folder's plaintext name by trial
	// decryption against masterKeys.
	DecryptFolderName(ctx context.Context, blob model.EncryptedBlob, masterKeys model.MasterKeyList) (string, error)

	// DecryptFolderLinkKey recovers the symmetric key a public link's
	// metadata is encrypted under, by trial decryption against masterKeys.
	DecryptFolderLinkKey(ctx context.Context, blob model.EncryptedBlob, masterKeys model.MasterKeyList) (string, error)
}
