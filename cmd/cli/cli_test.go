package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/canopy-network/poh/lib"
	"github.com/stretchr/testify/require"
)

func TestInitializeDataDirectory(t *testing.T) {
	dataDir := t.TempDir()
	// execute the function call
	c, pk := InitializeDataDirectory(dataDir, lib.NewNullLogger())
	require.Equal(t, dataDir, c.DataDirPath)
	require.Equal(t, lib.DefaultPoHConfig(), c.PoHConfig)
	require.FileExists(t, filepath.Join(dataDir, lib.ConfigFilePath))
	require.FileExists(t, filepath.Join(dataDir, lib.NodeKeyPath))
	// a second call loads the same identity
	_, pk2 := InitializeDataDirectory(dataDir, lib.NewNullLogger())
	require.True(t, pk.Equals(pk2))
}

func TestInitializeDataDirectoryKeepsConfig(t *testing.T) {
	dataDir := t.TempDir()
	c := lib.DefaultConfig()
	c.PoHConfig.Mode = lib.PoHModeTick
	require.NoError(t, os.MkdirAll(dataDir, os.ModePerm))
	require.NoError(t, c.WriteToFile(filepath.Join(dataDir, lib.ConfigFilePath)))
	// execute the function call
	got, _ := InitializeDataDirectory(dataDir, lib.NewNullLogger())
	require.Equal(t, lib.PoHModeTick, got.Mode)
}

func TestRunVerify(t *testing.T) {
	tests := []struct {
		name          string
		ticks         uint64
		hashesPerTick uint64
		txsPerTick    int
	}{
		{name: "ticks only", ticks: 5, hashesPerTick: 10, txsPerTick: 0},
		{name: "with transactions", ticks: 5, hashesPerTick: 10, txsPerTick: 2},
		{name: "single hash ticks", ticks: 3, hashesPerTick: 1, txsPerTick: 1},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			// execute the function call
			got, err := runVerify(test.ticks, test.hashesPerTick, test.txsPerTick, lib.NewNullLogger())
			require.NoError(t, err)
			require.True(t, got.Verified)
			require.GreaterOrEqual(t, got.Ticks, test.ticks)
			// every record entry adds one hash to the cadence's hashes
			recordEntries := got.Entries - got.Ticks
			require.Equal(t, got.Ticks*test.hashesPerTick+recordEntries, got.Hashes)
			require.Equal(t, recordEntries*uint64(test.txsPerTick), got.Transactions)
			if test.txsPerTick == 0 {
				require.Zero(t, recordEntries)
			}
		})
	}
}
