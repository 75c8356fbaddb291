package lib

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alecthomas/units"
)

/* This file implements logic for 'user controlled' global configurations of each module of the node */

const (
	// NumTicksPerSecond is the target cadence of the proof of history clock
	NumTicksPerSecond = 10
	// MaxEntryIds is the default size of the replay protection window (2 minutes of ticks)
	MaxEntryIds = NumTicksPerSecond * 120
	// ComputeFinalityMS is the default poll interval of the finality service
	ComputeFinalityMS = 100
)

const (
	// FILE NAMES in the 'data directory'
	ConfigFilePath = "config.json"   // the file path for the node configuration
	NodeKeyPath    = "node_key.json" // the file path for the node's private key
)

const (
	PoHModeTick  = "tick"  // full speed hashing: hashesPerTick-1 idle hashes then a tick
	PoHModeSleep = "sleep" // low power: sleep tickIntervalMS then a tick
)

// Config is the structure of the user configuration options for a node
type Config struct {
	MainConfig     // main options spanning over all modules
	PoHConfig      // proof of history cadence options
	FinalityConfig // leader finality options
	LedgerConfig   // status window and genesis options
	StoreConfig    // persistence options
	RPCConfig      // status api options
	MetricsConfig  // telemetry options
}

// DefaultConfig() returns a Config with developer set options
func DefaultConfig() Config {
	return Config{
		MainConfig:     DefaultMainConfig(),
		PoHConfig:      DefaultPoHConfig(),
		FinalityConfig: DefaultFinalityConfig(),
		LedgerConfig:   DefaultLedgerConfig(),
		StoreConfig:    DefaultStoreConfig(),
		RPCConfig:      DefaultRPCConfig(),
		MetricsConfig:  DefaultMetricsConfig(),
	}
}

// MAIN CONFIG BELOW

type MainConfig struct {
	LogLevel string `json:"logLevel"` // any level includes the levels above it: debug < info < warning < error
}

// DefaultMainConfig() sets log level to 'info'
func DefaultMainConfig() MainConfig {
	return MainConfig{
		LogLevel: "info", // everything but debug is the default
	}
}

// GetLogLevel() parses the log string in the config file into a LogLevel Enum
func (m *MainConfig) GetLogLevel() int32 {
	switch {
	case strings.Contains(strings.ToLower(m.LogLevel), "deb"):
		return DebugLevel
	case strings.Contains(strings.ToLower(m.LogLevel), "inf"):
		return InfoLevel
	case strings.Contains(strings.ToLower(m.LogLevel), "war"):
		return WarnLevel
	case strings.Contains(strings.ToLower(m.LogLevel), "err"):
		return ErrorLevel
	default:
		return DebugLevel
	}
}

// POH CONFIG BELOW

// PoHConfig selects the cadence policy of the proof of history service
type PoHConfig struct {
	Mode           string `json:"mode"`           // 'tick' or 'sleep'
	HashesPerTick  uint64 `json:"hashesPerTick"`  // hashes in a tick entry when mode is 'tick'
	TickIntervalMS uint64 `json:"tickIntervalMS"` // sleep between ticks when mode is 'sleep'
}

// DefaultPoHConfig() runs the low power cadence at NumTicksPerSecond
func DefaultPoHConfig() PoHConfig {
	return PoHConfig{
		Mode:           PoHModeSleep,             // low power placeholder until hashing is tuned
		HashesPerTick:  12500,                    // used only in 'tick' mode
		TickIntervalMS: 1000 / NumTicksPerSecond, // 100ms between ticks
	}
}

// TickInterval() converts the configured sleep to a duration
func (p *PoHConfig) TickInterval() time.Duration {
	return time.Duration(p.TickIntervalMS) * time.Millisecond
}

// FINALITY CONFIG BELOW

// FinalityConfig is the configuration of the leader finality service
type FinalityConfig struct {
	PollIntervalMS uint64 `json:"pollIntervalMS"` // how often finality is recomputed
}

// DefaultFinalityConfig() polls every ComputeFinalityMS
func DefaultFinalityConfig() FinalityConfig {
	return FinalityConfig{PollIntervalMS: ComputeFinalityMS}
}

// PollInterval() converts the configured poll to a duration
func (f *FinalityConfig) PollInterval() time.Duration {
	return time.Duration(f.PollIntervalMS) * time.Millisecond
}

// LEDGER CONFIG BELOW

// LedgerConfig sizes the replay protection window and seeds the node's stake
type LedgerConfig struct {
	MaxEntryIds  int    `json:"maxEntryIds"`  // number of tick ids resident in the status window
	GenesisStake uint64 `json:"genesisStake"` // stake credited to this node at genesis
}

// DefaultLedgerConfig() keeps two minutes of ticks
func DefaultLedgerConfig() LedgerConfig {
	return LedgerConfig{
		MaxEntryIds:  MaxEntryIds,
		GenesisStake: 1,
	}
}

// STORE CONFIG BELOW

// StoreConfig is user configurations for the key value database
type StoreConfig struct {
	DataDirPath  string `json:"dataDirPath"`  // path of the designated folder where the application stores its data
	DBName       string `json:"dbName"`       // name of the database
	InMemory     bool   `json:"inMemory"`     // non-disk database, only for testing
	MemTableSize int64  `json:"memTableSize"` // badger memtable size in bytes
}

// DefaultDataDirPath() is $USERHOME/.poh
func DefaultDataDirPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		panic(err)
	}
	return filepath.Join(home, ".poh")
}

// DefaultStoreConfig() returns the developer recommended store configuration
func DefaultStoreConfig() StoreConfig {
	return StoreConfig{
		DataDirPath:  DefaultDataDirPath(),  // use the default data dir path
		DBName:       "accounts",            // 'accounts' database name
		InMemory:     false,                 // persist to disk, not memory
		MemTableSize: int64(16 * units.MiB), // small memtable, the account table is small
	}
}

// RPC CONFIG BELOW

// RPCConfig is the configuration of the read only status api
type RPCConfig struct {
	RPCEnabled bool   `json:"rpcEnabled"` // serve the status api
	RPCPort    string `json:"rpcPort"`    // the port where the rpc server is hosted
	TimeoutS   int    `json:"timeoutS"`   // the rpc request timeout in seconds
}

// DefaultRPCConfig() serves the status api on localhost:50002
func DefaultRPCConfig() RPCConfig {
	return RPCConfig{
		RPCEnabled: true,
		RPCPort:    "50002",
		TimeoutS:   3,
	}
}

// MetricsConfig represents the configuration for the metrics server
type MetricsConfig struct {
	Enabled           bool   `json:"enabled"`           // if the metrics are enabled
	PrometheusAddress string `json:"prometheusAddress"` // the address of the server
}

// DefaultMetricsConfig() returns the default metrics configuration
func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Enabled:           true,           // enabled by default
		PrometheusAddress: "0.0.0.0:9090", // the default prometheus address
	}
}

// WriteToFile() saves the Config object to a JSON file
func (c Config) WriteToFile(filepath string) error {
	// convert the config to indented 'pretty' json bytes
	jsonBytes, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	// write the config.json file to the data directory
	return os.WriteFile(filepath, jsonBytes, os.ModePerm)
}

// NewConfigFromFile() populates a Config object from a JSON file
func NewConfigFromFile(filepath string) (Config, error) {
	fileBytes, err := os.ReadFile(filepath)
	if err != nil {
		return Config{}, err
	}
	// define the default config to fill in any blanks in the file
	c := DefaultConfig()
	if err = json.Unmarshal(fileBytes, &c); err != nil {
		return Config{}, err
	}
	return c, nil
}
