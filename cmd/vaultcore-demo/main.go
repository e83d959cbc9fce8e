// Command vaultcore-demo wires the protocol core's components together
// against a configured set of gateways and exercises a directory-create
// against them, for manual smoke-testing of the stack end to end.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	flag "github.com/spf13/pflag"
	bolt "go.etcd.io/bbolt"

	"github.com/vaultsync/core/pkg/configstore"
	"github.com/vaultsync/core/pkg/cryptoapi/fakecipher"
	"github.com/vaultsync/core/pkg/logging"
	"github.com/vaultsync/core/pkg/model"
	"github.com/vaultsync/core/pkg/pausegate"
	"github.com/vaultsync/core/pkg/propagator"
	"github.com/vaultsync/core/pkg/transfer"
	"github.com/vaultsync/core/pkg/transport"
	"github.com/vaultsync/core/pkg/transportcfg"
	"github.com/vaultsync/core/pkg/transportctx"
)

func usage() {
	fmt.Print(`vaultcore-demo - exercises the vaultsync protocol core against a gateway.

Usage: vaultcore-demo [options] <parent-folder-uuid> <folder-name>

Valid options:
`)
	flag.PrintDefaults()
}

func main() {
	configPath := flag.StringP("config-file", "f", transportcfg.DefaultConfigPath(),
		"A YAML-formatted configuration file naming the API/upload/download gateways.")
	credential := flag.StringP("credential", "k", "",
		"The 64-character bearer token to authenticate requests with.")
	masterKey := flag.StringP("master-key", "m", "",
		"The current master key used to encrypt new folder names.")
	logLevel := flag.StringP("log", "l", "info", "Logging verbosity: trace, debug, info, warn, error.")
	dbPath := flag.StringP("db", "b", "", "Path to a bbolt database for persistent config state. Uses an in-memory store if empty.")
	flag.Usage = usage
	flag.Parse()

	if level, err := logging.ParseLevel(*logLevel); err == nil {
		logging.SetGlobalLevel(level)
	}

	args := flag.Args()
	if len(args) != 2 || *credential == "" || *masterKey == "" {
		usage()
		os.Exit(1)
	}
	parentUUID, folderName := args[0], args[1]

	cfg := transportcfg.Load(*configPath)

	store, closeStore, err := openStore(*dbPath)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to open config store")
	}
	defer closeStore()

	ctx := context.Background()
	if _, err := model.NewCredential(*credential); err != nil {
		logging.Fatal().Err(err).Msg("invalid credential")
	}
	if err := store.Set(ctx, configstore.KeyAPIKey, *credential); err != nil {
		logging.Fatal().Err(err).Msg("failed to persist credential")
	}
	if err := store.Set(ctx, configstore.KeyMasterKeys, fmt.Sprintf("[%q]", *masterKey)); err != nil {
		logging.Fatal().Err(err).Msg("failed to persist master keys")
	}

	tctx := transportctx.New(cfg)
	client, err := transport.New(cfg, tctx, store, nil, loggingInvalidator{})
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to build transport client")
	}

	cipher := fakecipher.New()
	keys := storeMasterKeys{store: store}
	prop := propagator.New(client, cipher, keys)
	gate := pausegate.New()

	engine, err := transfer.New(cfg, client, tctx, gate, store, cipher, prop, nil)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to build transfer engine")
	}

	newUUID := uuid.NewString()
	resultUUID, err := engine.CreateFolder(ctx, newUUID, folderName, parentUUID)
	if err != nil {
		logging.Fatal().Err(err).Str("parent", parentUUID).Str("name", folderName).Msg("createFolder failed")
	}

	logging.Info().Str("uuid", resultUUID).Str("parent", parentUUID).Str("name", folderName).Msg("folder created")
}

func openStore(path string) (configstore.Store, func(), error) {
	if path == "" {
		return configstore.NewMemoryStore(), func() {}, nil
	}
	db, err := bolt.Open(path, 0600, nil)
	if err != nil {
		return nil, nil, err
	}
	store, err := configstore.NewBoltStore(db)
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	return store, func() { db.Close() }, nil
}

type loggingInvalidator struct{}

func (loggingInvalidator) OnSessionInvalidated(context.Context) {
	logging.Warn().Msg("session invalidated by server, credential rejected")
}

// storeMasterKeys adapts the configstore-persisted masterKeys entry to
// propagator.MasterKeyProvider.
type storeMasterKeys struct{ store configstore.Store }

func (s storeMasterKeys) MasterKeys(ctx context.Context) (model.MasterKeyList, error) {
	raw, ok, err := s.store.Get(ctx, configstore.KeyMasterKeys)
	if err != nil || !ok {
		return nil, err
	}
	var keys model.MasterKeyList
	if err := json.Unmarshal([]byte(raw), &keys); err != nil {
		return nil, err
	}
	return keys, nil
}
