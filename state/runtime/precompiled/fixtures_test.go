package precompiled

import (
	"os"
	"path/filepath"
	"testing"

	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tronvm/tvm-edge/helper/hex"
	"github.com/tronvm/tvm-edge/types"
)

// fixture is one case of a json file under ./fixtures
type fixture struct {
	Name     string
	Input    types.HexBytes
	Expected types.HexBytes
	Gas      uint64
}

func loadFixtures(t *testing.T, name string) []fixture {
	t.Helper()

	data, err := os.ReadFile(filepath.Join("fixtures", name))
	require.NoError(t, err)

	var cases []fixture
	require.NoError(t, jsoniter.Unmarshal(data, &cases))
	require.NotEmpty(t, cases)

	return cases
}

// testFixture checks the output and the cost of every case of a fixture
func testFixture(t *testing.T, name string, p contract) {
	t.Helper()
	t.Parallel()

	for _, c := range loadFixtures(t, name) {
		c := c

		t.Run(c.Name, func(t *testing.T) {
			t.Parallel()

			found, err := p.run(c.Input)
			require.NoError(t, err)

			assert.Equal(t, hex.EncodeToString(c.Expected), hex.EncodeToString(found))
			assert.Equal(t, c.Gas, p.gas(c.Input))
		})
	}
}
