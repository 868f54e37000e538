package diff

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tronvm/tvm-edge/chain"
)

func TestFieldValue(t *testing.T) {
	t.Parallel()

	frontier := chain.FrontierConfig()
	istanbul := chain.IstanbulConfig()

	assert.Equal(t, "unlimited", fieldValue(frontier, "CreateContractLimit"))
	assert.Equal(t, "24576", fieldValue(istanbul, "CreateContractLimit"))
	assert.Equal(t, "true", fieldValue(istanbul, "SstoreGasMetering"))
	assert.Equal(t, "800", fieldValue(istanbul, "GasSload"))
}
