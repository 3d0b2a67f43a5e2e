package regulatory

import (
	"fmt"
	"os"

	"github.com/Masterminds/semver/v3"
	"github.com/qeme/sentinel-lite/model"
	"gopkg.in/yaml.v2"
)

// supportedSchema is the registry file format this build understands.
const supportedSchema = "^1.0.0"

// RegistryFile is the on-disk layout of a source registry override.
type RegistryFile struct {
	SchemaVersion string         `yaml:"schema_version"`
	Sources       []model.Source `yaml:"sources"`
}

// ParseRegistry decodes a YAML registry document and validates its schema version and sources.
func ParseRegistry(content []byte) (*Registry, error) {
	var file RegistryFile
	if err := yaml.Unmarshal(content, &file); err != nil {
		return nil, fmt.Errorf("failed to parse source registry: %w", err)
	}

	if file.SchemaVersion == "" {
		return nil, fmt.Errorf("source registry: schema_version is required")
	}
	version, err := semver.NewVersion(file.SchemaVersion)
	if err != nil {
		return nil, fmt.Errorf("source registry: invalid schema_version %q: %w", file.SchemaVersion, err)
	}
	constraint, err := semver.NewConstraint(supportedSchema)
	if err != nil {
		return nil, err
	}
	if !constraint.Check(version) {
		return nil, fmt.Errorf("source registry: schema_version %s does not satisfy %s", version, supportedSchema)
	}

	if len(file.Sources) == 0 {
		return nil, fmt.Errorf("source registry: no sources defined")
	}
	return NewRegistry(file.Sources)
}

// LoadRegistry returns the registry from path, or the built-in sources when path is empty.
func LoadRegistry(path string) (*Registry, error) {
	if path == "" {
		return NewRegistry(DefaultSources())
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read source registry: %w", err)
	}
	return ParseRegistry(content)
}
