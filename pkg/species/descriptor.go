package species

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// DescriptorNames lists the file names searched, in order, when a
// declaration is loaded from a directory.
var DescriptorNames = []string{
	"species.toml",
	"species.yaml",
	"species.yml",
	"species.jsonc",
	"species.json",
}

// descriptor is the on-disk form of a declaration.
type descriptor struct {
	Name     string              `toml:"name" yaml:"name" json:"name"`
	Base     string              `toml:"base" yaml:"base" json:"base"`
	Variants map[string][]string `toml:"variants" yaml:"variants" json:"variants"`
	Vars     map[string]string   `toml:"vars" yaml:"vars" json:"vars"`
}

// DecodeFile reads the file at path and decodes it into v. The syntax is
// chosen from the extension: .toml, .yaml/.yml, or .json/.jsonc (JSON with
// comments and trailing commas).
func DecodeFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if err = Decode(filepath.Ext(path), data, v); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// Decode decodes data into v using the syntax implied by ext.
func Decode(ext string, data []byte, v any) error {
	switch strings.ToLower(ext) {
	case ".toml":
		if err := toml.Unmarshal(data, v); err != nil {
			return fmt.Errorf("parsing toml: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, v); err != nil {
			return fmt.Errorf("parsing yaml: %w", err)
		}
	case ".json", ".jsonc":
		if err := json.Unmarshal(jsonc.ToJSON(data), v); err != nil {
			return fmt.Errorf("parsing json: %w", err)
		}
	default:
		return fmt.Errorf("unsupported descriptor format %q", ext)
	}
	return nil
}

// findDescriptor resolves path to a descriptor file. A directory is searched
// for one of DescriptorNames; any other path is used as is.
func findDescriptor(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrNoDescriptor, err)
	}
	if !info.IsDir() {
		return path, nil
	}
	for _, name := range DescriptorNames {
		candidate := filepath.Join(path, name)
		if _, err = os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%w in %s", ErrNoDescriptor, path)
}
