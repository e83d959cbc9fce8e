// Package configstore defines the abstract key-value ConfigStore external
// collaborator named in the protocol core's external interfaces, plus two
// implementations: an in-memory default for tests, and a bbolt-backed
// persistent store grounded on the teacher's upload/download manager
// bucket idioms.
package configstore

import "context"

// Well-known keys used by the transport and transfer engine.
const (
	KeyAPIKey             = "apiKey"
	KeyMasterKeys         = "masterKeys"
	KeyPaused             = "paused"
	KeyDownloadPaused     = "downloadPaused"
	KeyUploadPaused       = "uploadPaused"
	KeyMaxStorageReached  = "maxStorageReached"
	KeyNetworkingSettings = "networkingSettings"
)

// Store is the concurrent key-value collaborator the transport/transfer
// layers read credentials and flags from, and write pause/quota state to.
// Implementations must be safe for concurrent Get/Set.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}
