package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

const (
	NetworkMainnet = "mainnet"
	NetworkTestnet = "testnet"

	defaultNetwork        = NetworkMainnet
	defaultRecoverWorkers = 4
	defaultAssumeYes      = false
	defaultLedgerTimeout  = 1 * time.Second
)

func defaultDataDir() string {
	return filepath.Join(xdg.DataHome, configFileName)
}
