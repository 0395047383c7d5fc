package envelope

import (
	"github.com/ghodss/yaml"
	"github.com/mitchellh/mapstructure"

	"github.com/eluv-io/errors-go"
)

// DefaultMaxPayloadLength is the default limit for payload lengths: 64 MB.
const DefaultMaxPayloadLength = 64 * 1024 * 1024

var defaultConfig = DefaultConfig()

// Config controls the validation performed on envelopes.
type Config struct {
	// MaxPayloadLength is the largest payload length accepted when reading. 0
	// disables the limit. Writing is not limited.
	MaxPayloadLength int `json:"max_payload_length"`
	// Trusted disables all payload length checks except the rejection of negative
	// lengths. Use it for input that is known to be well-formed, e.g. data that was
	// produced by the same process.
	Trusted bool `json:"trusted"`
}

// DefaultConfig returns the default configuration: validated, with
// DefaultMaxPayloadLength as limit.
func DefaultConfig() Config {
	return Config{
		MaxPayloadLength: DefaultMaxPayloadLength,
	}
}

// Validate checks the configuration for invalid values.
func (cfg Config) Validate() error {
	if cfg.MaxPayloadLength < 0 {
		return errors.E("envelope.Config.Validate", errors.K.Invalid,
			"reason", "negative max_payload_length",
			"max_payload_length", cfg.MaxPayloadLength)
	}
	return nil
}

// ConfigFromMap decodes a configuration from a generic map, e.g. a section of a
// larger, already parsed configuration file. Keys are the json names of the
// config fields; keys missing from the map keep their default value, and unknown
// keys are an error.
func ConfigFromMap(m map[string]interface{}) (Config, error) {
	e := errors.Template("envelope.ConfigFromMap", errors.K.Invalid)

	cfg := DefaultConfig()
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:     "json",
		Result:      &cfg,
		ErrorUnused: true,
	})
	if err != nil {
		return Config{}, e(err)
	}
	err = decoder.Decode(m)
	if err != nil {
		return Config{}, e(err)
	}
	err = cfg.Validate()
	if err != nil {
		return Config{}, e(err)
	}
	return cfg, nil
}

// ParseConfig parses a configuration from YAML or JSON text. See ConfigFromMap.
func ParseConfig(text []byte) (Config, error) {
	var m map[string]interface{}
	err := yaml.Unmarshal(text, &m)
	if err != nil {
		return Config{}, errors.E("envelope.ParseConfig", errors.K.Invalid, err)
	}
	return ConfigFromMap(m)
}
