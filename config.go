package mosaic

import (
	"fmt"
	"io"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// DecodeOptions reads TOML from r over DefaultOptions. Unknown keys are errors.
func DecodeOptions(r io.Reader) (Options, error) {
	opt := DefaultOptions()
	dec := toml.NewDecoder(r).DisallowUnknownFields()
	if err := dec.Decode(&opt); err != nil {
		return DefaultOptions(), fmt.Errorf("decode options: %w", err)
	}
	if err := opt.Validate(); err != nil {
		return DefaultOptions(), err
	}
	return opt, nil
}

// LoadOptions reads a TOML options file. A missing file yields DefaultOptions.
func LoadOptions(path string) (Options, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultOptions(), nil
		}
		return DefaultOptions(), err
	}
	defer f.Close()
	return DecodeOptions(f)
}

// SaveOptions writes opt as TOML.
func SaveOptions(path string, opt Options) error {
	data, err := toml.Marshal(opt)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
