package cam

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"github.com/gcodekit5/gcodekit5/internal/core"
)

// DefaultProfilesDir returns the default directory for storing custom
// post-processor profiles.
func DefaultProfilesDir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "gcodekit5"), nil
}

// DefaultProfilesPath returns the default file path for custom profiles.
func DefaultProfilesPath() (string, error) {
	dir, err := DefaultProfilesDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "profiles.json"), nil
}

// SaveCustomProfiles saves custom profiles to a JSON file.
func SaveCustomProfiles(path string, profiles []Profile) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return core.Wrap(core.KindResource, "cam.SaveCustomProfiles", err)
	}
	data, err := json.MarshalIndent(profiles, "", "  ")
	if err != nil {
		return core.Wrap(core.KindResource, "cam.SaveCustomProfiles", err)
	}
	return core.Wrap(core.KindResource, "cam.SaveCustomProfiles", os.WriteFile(path, data, 0644))
}

// LoadCustomProfiles loads custom profiles from a JSON file. A missing file
// is not an error; it yields an empty slice.
func LoadCustomProfiles(path string) ([]Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []Profile{}, nil
		}
		return nil, core.Wrap(core.KindResource, "cam.LoadCustomProfiles", err)
	}

	var profiles []Profile
	if err := json.Unmarshal(data, &profiles); err != nil {
		return nil, core.Wrap(core.KindResource, "cam.LoadCustomProfiles", err)
	}

	// Loaded profiles are never built-in, whatever the file claims.
	for i := range profiles {
		profiles[i].IsBuiltIn = false
	}
	return profiles, nil
}

// ExportProfile exports a single profile to a JSON file for sharing.
func ExportProfile(path string, profile Profile) error {
	profile.IsBuiltIn = false
	data, err := json.MarshalIndent(profile, "", "  ")
	if err != nil {
		return core.Wrap(core.KindResource, "cam.ExportProfile", err)
	}
	return core.Wrap(core.KindResource, "cam.ExportProfile", os.WriteFile(path, data, 0644))
}

// ImportProfile imports a single profile from a JSON file.
func ImportProfile(path string) (Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Profile{}, core.Wrap(core.KindResource, "cam.ImportProfile", err)
	}

	var profile Profile
	if err := json.Unmarshal(data, &profile); err != nil {
		return Profile{}, core.Wrap(core.KindResource, "cam.ImportProfile", err)
	}
	profile.IsBuiltIn = false
	if profile.Name == "" {
		return Profile{}, core.New(core.KindInputValidation, "cam.ImportProfile", "imported profile has no name", nil)
	}
	return profile, nil
}
