package chain

import (
	"math"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForks_Lineage(t *testing.T) {
	t.Parallel()

	for _, u := range Forks() {
		u := u

		if u.Parent == "" {
			continue
		}

		t.Run(u.Name, func(t *testing.T) {
			t.Parallel()

			parent, err := ForkByName(u.Parent)
			require.NoError(t, err)

			child, err := ForkByName(u.Name)
			require.NoError(t, err)

			expected := append([]string{}, u.Fields...)
			sort.Strings(expected)

			assert.Equal(t, expected, Diff(parent, child))
		})
	}
}

func TestForks_ParentsDeclaredFirst(t *testing.T) {
	t.Parallel()

	seen := map[string]bool{}

	for _, u := range Forks() {
		if u.Parent != "" {
			assert.True(t, seen[u.Parent], "%s declared before its parent %s", u.Name, u.Parent)
		}

		seen[u.Name] = true
	}
}

func TestForks_Values(t *testing.T) {
	t.Parallel()

	frontier := FrontierConfig()
	assert.Equal(t, uint64(20), frontier.GasExtCode)
	assert.Equal(t, uint64(68), frontier.GasTransactionNonZeroData)
	assert.True(t, frontier.ErrOnCallWithMoreGas)
	assert.True(t, frontier.EmptyConsideredExists)
	assert.Nil(t, frontier.CreateContractLimit)
	assert.Equal(t, uint64(math.MaxUint64), frontier.MemoryLimit)
	assert.False(t, frontier.HasDelegateCall)

	istanbul := IstanbulConfig()
	assert.Equal(t, uint64(800), istanbul.GasSload)
	assert.Equal(t, uint64(53000), istanbul.GasTransactionCreate)
	require.NotNil(t, istanbul.CreateContractLimit)
	assert.Equal(t, uint64(0x6000), *istanbul.CreateContractLimit)
	assert.True(t, istanbul.HasRealCreate2)
	assert.True(t, istanbul.CallL64AfterGas)

	odyssey := Odyssey37Config()
	assert.Equal(t, uint64(20), odyssey.GasBalance)
	assert.True(t, odyssey.HasValidateSignature)
	assert.False(t, odyssey.HasRealCreate2)
	assert.False(t, odyssey.HasChainID)
	assert.False(t, odyssey.HasShielded)
	assert.False(t, odyssey.HasRealRipemd160)

	voyage := GreatVoyage41Config()
	assert.True(t, voyage.HasShielded)
	assert.True(t, voyage.HasChainID)
	assert.True(t, voyage.HasSelfBalance)
	assert.Equal(t, []string{"HasChainID", "HasSelfBalance", "HasShielded"}, Diff(odyssey, voyage))
}

func TestForks_FreshValues(t *testing.T) {
	t.Parallel()

	a := IstanbulConfig()
	*a.CreateContractLimit = 1
	a.GasCall = 1

	b := IstanbulConfig()
	assert.Equal(t, uint64(0x6000), *b.CreateContractLimit)
	assert.Equal(t, uint64(700), b.GasCall)
}

func TestForkByName_Unknown(t *testing.T) {
	t.Parallel()

	_, err := ForkByName("constantinople")
	assert.Error(t, err)
	assert.False(t, IsForkAvailable("constantinople"))
	assert.True(t, IsForkAvailable(GreatVoyage401))
	assert.Len(t, ForkNames(), 5)
}

func TestDiff(t *testing.T) {
	t.Parallel()

	a := FrontierConfig()
	assert.Empty(t, Diff(a, a.Copy()))

	b := a.Copy()
	limit := uint64(10)
	b.CreateContractLimit = &limit
	b.StackLimit = 1

	assert.Equal(t, []string{"CreateContractLimit", "StackLimit"}, Diff(a, b))
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	for _, name := range ForkNames() {
		config, err := ForkByName(name)
		require.NoError(t, err)
		assert.NoError(t, config.Validate(), name)
	}

	zero := uint64(0)

	config := FrontierConfig()
	config.StackLimit = 0
	config.MemoryLimit = 0
	config.CreateContractLimit = &zero

	err := config.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrZeroStackLimit)
	assert.ErrorIs(t, err, ErrZeroMemoryLimit)
	assert.ErrorIs(t, err, ErrZeroCreateContractLimit)
	assert.NotErrorIs(t, err, ErrZeroCallStackLimit)
}
