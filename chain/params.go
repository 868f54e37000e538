package chain

import (
	"fmt"
	"math"
	"reflect"
	"sort"
)

// predefined forks
const (
	Frontier       = "frontier"
	Istanbul       = "istanbul"
	Odyssey37      = "odyssey_3_7"
	GreatVoyage401 = "great_voyage_4_0_1"
	GreatVoyage41  = "great_voyage_4_1"
)

// Upgrade is a named patch turning the config of Parent into the config of
// Name. Fields lists every config field the patch is allowed to change.
type Upgrade struct {
	Name   string
	Parent string
	Fields []string

	apply func(c *Config)
}

var upgrades = []*Upgrade{
	{
		Name:  Frontier,
		apply: func(*Config) {},
	},
	{
		Name:   Istanbul,
		Parent: Frontier,
		Fields: []string{
			"GasExtCode", "GasExtCodeHash", "GasBalance", "GasSload",
			"GasSuicide", "GasSuicideNewAccount", "GasCall", "GasExpByte",
			"GasTransactionCreate", "GasTransactionNonZeroData",
			"SstoreGasMetering", "SstoreRevertUnderStipend", "ErrOnCallWithMoreGas",
			"CallL64AfterGas", "EmptyConsideredExists", "CreateIncreaseNonce",
			"CreateContractLimit", "HasDelegateCall", "HasCreate2", "HasRealCreate2",
			"HasRevert", "HasReturnData", "HasBitwiseShifting", "HasChainID",
			"HasSelfBalance", "HasExtCodeHash",
		},
		apply: func(c *Config) {
			limit := uint64(0x6000)

			c.GasExtCode = 700
			c.GasExtCodeHash = 700
			c.GasBalance = 700
			c.GasSload = 800
			c.GasSuicide = 5000
			c.GasSuicideNewAccount = 25000
			c.GasCall = 700
			c.GasExpByte = 50
			c.GasTransactionCreate = 53000
			c.GasTransactionNonZeroData = 16
			c.SstoreGasMetering = true
			c.SstoreRevertUnderStipend = true
			c.ErrOnCallWithMoreGas = false
			c.CallL64AfterGas = true
			c.EmptyConsideredExists = false
			c.CreateIncreaseNonce = true
			c.CreateContractLimit = &limit
			c.HasDelegateCall = true
			c.HasCreate2 = true
			c.HasRealCreate2 = true
			c.HasRevert = true
			c.HasReturnData = true
			c.HasBitwiseShifting = true
			c.HasChainID = true
			c.HasSelfBalance = true
			c.HasExtCodeHash = true
		},
	},
	{
		Name:   Odyssey37,
		Parent: Frontier,
		Fields: []string{
			"ErrOnCallWithMoreGas", "CreateIncreaseNonce", "HasDelegateCall",
			"HasCreate2", "HasRevert", "HasReturnData", "HasBitwiseShifting",
			"HasExtCodeHash", "HasTokenTransfer", "HasIsContract",
			"HasValidateSignature", "HasRealRipemd160",
		},
		apply: func(c *Config) {
			c.ErrOnCallWithMoreGas = false
			c.CreateIncreaseNonce = true
			c.HasDelegateCall = true
			c.HasCreate2 = true
			c.HasRevert = true
			c.HasReturnData = true
			c.HasBitwiseShifting = true
			c.HasExtCodeHash = true
			c.HasTokenTransfer = true
			c.HasIsContract = true
			c.HasValidateSignature = true
			c.HasRealRipemd160 = false
		},
	},
	{
		Name:   GreatVoyage401,
		Parent: Odyssey37,
		Fields: []string{"HasShielded"},
		apply: func(c *Config) {
			c.HasShielded = true
		},
	},
	{
		Name:   GreatVoyage41,
		Parent: GreatVoyage401,
		Fields: []string{"HasChainID", "HasSelfBalance"},
		apply: func(c *Config) {
			c.HasChainID = true
			c.HasSelfBalance = true
		},
	},
}

// frontier is the root of every lineage
func frontier() *Config {
	return &Config{
		GasExtCode:                20,
		GasExtCodeHash:            20,
		GasSstoreSet:              20000,
		GasSstoreReset:            5000,
		RefundSstoreClears:        15000,
		GasBalance:                20,
		GasSload:                  50,
		GasSuicide:                0,
		GasSuicideNewAccount:      0,
		GasCall:                   40,
		GasExpByte:                10,
		GasTransactionCreate:      21000,
		GasTransactionCall:        21000,
		GasTransactionZeroData:    4,
		GasTransactionNonZeroData: 68,
		SstoreGasMetering:         false,
		SstoreRevertUnderStipend:  false,
		ErrOnCallWithMoreGas:      true,
		CallL64AfterGas:           false,
		EmptyConsideredExists:     true,
		CreateIncreaseNonce:       false,
		StackLimit:                1024,
		MemoryLimit:               math.MaxUint64,
		CallStackLimit:            1024,
		CreateContractLimit:       nil,
		CallStipend:               2300,
		HasRealRipemd160:          true,
	}
}

// Forks returns the fork registry in lineage order
func Forks() []*Upgrade {
	return upgrades
}

// ForkNames returns the names of every known fork
func ForkNames() []string {
	names := make([]string, 0, len(upgrades))
	for _, u := range upgrades {
		names = append(names, u.Name)
	}

	return names
}

// IsForkAvailable checks whether the fork is registered
func IsForkAvailable(name string) bool {
	return lookupUpgrade(name) != nil
}

// ForkByName builds the config of a fork by applying every patch from the root
func ForkByName(name string) (*Config, error) {
	u := lookupUpgrade(name)
	if u == nil {
		return nil, fmt.Errorf("unknown fork %q", name)
	}

	var config *Config

	if u.Parent == "" {
		config = frontier()
	} else {
		parent, err := ForkByName(u.Parent)
		if err != nil {
			return nil, err
		}

		config = parent
	}

	u.apply(config)

	return config, nil
}

func mustFork(name string) *Config {
	config, err := ForkByName(name)
	if err != nil {
		panic(fmt.Sprintf("BUG: %v", err))
	}

	return config
}

// FrontierConfig returns the config of the Frontier fork
func FrontierConfig() *Config {
	return mustFork(Frontier)
}

// IstanbulConfig returns the config of the Istanbul fork
func IstanbulConfig() *Config {
	return mustFork(Istanbul)
}

// Odyssey37Config returns the config of the TRON Odyssey 3.7 fork
func Odyssey37Config() *Config {
	return mustFork(Odyssey37)
}

// GreatVoyage401Config returns the config of the TRON GreatVoyage 4.0.1 fork
func GreatVoyage401Config() *Config {
	return mustFork(GreatVoyage401)
}

// GreatVoyage41Config returns the config of the TRON GreatVoyage 4.1 fork
func GreatVoyage41Config() *Config {
	return mustFork(GreatVoyage41)
}

// Diff returns the sorted names of the fields that differ between a and b
func Diff(a, b *Config) []string {
	va := reflect.ValueOf(a).Elem()
	vb := reflect.ValueOf(b).Elem()
	typ := va.Type()

	diff := []string{}

	for i := 0; i < typ.NumField(); i++ {
		if !reflect.DeepEqual(va.Field(i).Interface(), vb.Field(i).Interface()) {
			diff = append(diff, typ.Field(i).Name)
		}
	}

	sort.Strings(diff)

	return diff
}

func lookupUpgrade(name string) *Upgrade {
	for _, u := range upgrades {
		if u.Name == name {
			return u
		}
	}

	return nil
}
