package rules

import (
	"fmt"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

// LoadFile loads and validates a rule set from a YAML file.
func LoadFile(path string) (*RuleSet, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", ErrConfig, path, err)
	}
	return unmarshal(k)
}

// Parse loads and validates a rule set from raw YAML bytes.
func Parse(b []byte) (*RuleSet, error) {
	k := koanf.New(".")
	if err := k.Load(rawbytes.Provider(b), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfig, err)
	}
	return unmarshal(k)
}

// unmarshal decodes into RuleSet, rejecting unknown keys so a typoed
// constraint cannot silently weaken validation.
func unmarshal(k *koanf.Koanf) (*RuleSet, error) {
	var rs RuleSet
	conf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			TagName:          "koanf",
			Result:           &rs,
			ErrorUnused:      true,
			WeaklyTypedInput: true,
		},
	}
	if err := k.UnmarshalWithConf("", &rs, conf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfig, err)
	}

	if rs.Columns == nil {
		rs.Columns = map[string]*ColumnRule{}
	}
	if err := rs.compile(); err != nil {
		return nil, err
	}
	return &rs, nil
}
