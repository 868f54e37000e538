package chain

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	return path
}

func TestReadConfigFile(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		content string
	}{
		{
			"config.json",
			`{"fork": "great_voyage_4_1", "overrides": {"create_contract_limit": 24576, "memory_limit": 33554432, "has_chain_id": false}}`,
		},
		{
			"config.yaml",
			`
fork: great_voyage_4_1
overrides:
  create_contract_limit: 24576
  memory_limit: 33554432
  has_chain_id: false
`,
		},
		{
			"config.hcl",
			`
fork = "great_voyage_4_1"
overrides {
  create_contract_limit = 24576
  memory_limit = 33554432
  has_chain_id = false
}
`,
		},
	}

	for _, c := range cases {
		c := c

		t.Run(c.name, func(t *testing.T) {
			t.Parallel()

			config, err := ReadConfigFile(writeConfig(t, c.name, c.content))
			require.NoError(t, err)

			base := GreatVoyage41Config()
			assert.Equal(t, []string{"CreateContractLimit", "HasChainID", "MemoryLimit"}, Diff(base, config))

			require.NotNil(t, config.CreateContractLimit)
			assert.Equal(t, uint64(24576), *config.CreateContractLimit)
			assert.Equal(t, uint64(33554432), config.MemoryLimit)
		})
	}
}

func TestReadConfigFile_NoOverrides(t *testing.T) {
	t.Parallel()

	config, err := ReadConfigFile(writeConfig(t, "config.yml", "fork: istanbul\n"))
	require.NoError(t, err)
	assert.Empty(t, Diff(IstanbulConfig(), config))
}

func TestReadConfigFile_Errors(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		file    string
		content string
	}{
		{"unknown suffix", "config.toml", `fork = "istanbul"`},
		{"missing fork", "config.json", `{"overrides": {}}`},
		{"unknown fork", "config.json", `{"fork": "london"}`},
		{"unknown field", "config.json", `{"fork": "istanbul", "overrides": {"gas_unknown": 1}}`},
		{"invalid result", "config.json", `{"fork": "istanbul", "overrides": {"stack_limit": 0}}`},
	}

	for _, c := range cases {
		c := c

		t.Run(c.name, func(t *testing.T) {
			t.Parallel()

			_, err := ReadConfigFile(writeConfig(t, c.file, c.content))
			assert.Error(t, err)
		})
	}
}
