package chain

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/hashicorp/hcl"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// configFile is the on-disk form of a fork config: a base fork plus field overrides
type configFile struct {
	Fork      string                 `mapstructure:"fork"`
	Overrides map[string]interface{} `mapstructure:"overrides"`
}

// ReadConfigFile loads a fork config from a .json, .yaml/.yml or .hcl file.
//
//	fork: great_voyage_4_1
//	overrides:
//	  create_contract_limit: 24576
func ReadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var unmarshalFunc func([]byte, interface{}) error

	switch {
	case strings.HasSuffix(path, ".hcl"):
		unmarshalFunc = hcl.Unmarshal
	case strings.HasSuffix(path, ".json"):
		unmarshalFunc = unmarshalJSON
	case strings.HasSuffix(path, ".yaml"), strings.HasSuffix(path, ".yml"):
		unmarshalFunc = yaml.Unmarshal
	default:
		return nil, fmt.Errorf("suffix of %s is neither hcl, json, yaml nor yml", path)
	}

	raw := map[string]interface{}{}
	if err := unmarshalFunc(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	return ParseConfig(raw)
}

// ParseConfig builds a config from a decoded {fork, overrides} document
func ParseConfig(raw map[string]interface{}) (*Config, error) {
	// hcl decodes blocks as lists of objects
	if blocks, ok := raw["overrides"].([]map[string]interface{}); ok {
		merged := map[string]interface{}{}

		for _, block := range blocks {
			for k, v := range block {
				merged[k] = v
			}
		}

		raw["overrides"] = merged
	}

	var file configFile
	if err := mapstructure.Decode(raw, &file); err != nil {
		return nil, err
	}

	if file.Fork == "" {
		return nil, fmt.Errorf("fork name is required, one of %s", strings.Join(ForkNames(), ", "))
	}

	config, err := ForkByName(file.Fork)
	if err != nil {
		return nil, err
	}

	if len(file.Overrides) != 0 {
		decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			ErrorUnused: true,
			Result:      config,
		})
		if err != nil {
			return nil, err
		}

		if err := decoder.Decode(file.Overrides); err != nil {
			return nil, fmt.Errorf("invalid overrides for %s: %w", file.Fork, err)
		}
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func unmarshalJSON(data []byte, v interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	return dec.Decode(v)
}
