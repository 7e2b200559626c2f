package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"mdt-readiness-aggregator/internal/models"
)

// profileFile is the on-disk shape of a checklist profile override file.
type profileFile struct {
	Profiles []models.ChecklistProfile `yaml:"profiles"`
}

// LoadProfiles returns the built-in checklist profiles, overlaid with any
// profiles from the given YAML file. A file profile with a built-in's name
// replaces it.
func LoadProfiles(path string) (map[string]models.ChecklistProfile, error) {
	profiles := models.BuiltinProfiles()

	if path == "" {
		return profiles, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profiles file: %w", err)
	}

	var file profileFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse profiles file: %w", err)
	}

	for _, p := range file.Profiles {
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("invalid profile in %s: %w", path, err)
		}
		profiles[p.Name] = p
	}

	return profiles, nil
}

// ResolveProfile loads profiles per the config and returns the active one.
func (c *Config) ResolveProfile() (models.ChecklistProfile, error) {
	profiles, err := LoadProfiles(c.Checklist.ProfilesPath)
	if err != nil {
		return models.ChecklistProfile{}, err
	}

	profile, ok := profiles[c.Checklist.Profile]
	if !ok {
		return models.ChecklistProfile{}, fmt.Errorf("unknown checklist profile: %s", c.Checklist.Profile)
	}
	return profile, nil
}
