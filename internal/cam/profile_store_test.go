package cam

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSaveAndLoadCustomProfiles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profiles.json")

	profiles := []Profile{
		{
			Name:          "ShopRouter",
			Description:   "In-house router with a long retract",
			StartCode:     []string{"G21", "G90", "G17"},
			SpindleStart:  "M3 S%.0f",
			SpindleStop:   "M5",
			RapidMove:     "G0",
			FeedMove:      "G1",
			EndCode:       []string{"G0 Z[SafeZ]", "M5", "M30"},
			CommentPrefix: ";",
			DecimalPlaces: 3,
		},
	}

	if err := SaveCustomProfiles(path, profiles); err != nil {
		t.Fatal(err)
	}
	loaded, err := LoadCustomProfiles(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(loaded) != 1 {
		t.Fatalf("expected 1 profile, got %d", len(loaded))
	}
	if loaded[0].Name != "ShopRouter" || loaded[0].DecimalPlaces != 3 {
		t.Errorf("round-trip lost fields: %+v", loaded[0])
	}
	if loaded[0].IsBuiltIn {
		t.Error("loaded profiles must never be marked built-in")
	}
}

func TestLoadCustomProfilesMissingFile(t *testing.T) {
	loaded, err := LoadCustomProfiles(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatalf("missing file is not an error: %v", err)
	}
	if len(loaded) != 0 {
		t.Error("missing file yields empty slice")
	}
}

func TestLoadCustomProfilesCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadCustomProfiles(path); err == nil {
		t.Error("corrupt file must error")
	}
}

func TestGetProfileFallsBackToGeneric(t *testing.T) {
	p := GetProfile("DoesNotExist")
	if p.Name != "Generic" {
		t.Errorf("unknown profile should fall back to Generic, got %s", p.Name)
	}
	if GetProfile("Grbl").Name != "Grbl" {
		t.Error("known profile lookup failed")
	}
}

func TestBuiltinProfilesStartWithUnits(t *testing.T) {
	for _, p := range BuiltinProfiles {
		if len(p.StartCode) == 0 || p.StartCode[0] != "G21" {
			t.Errorf("profile %s must set units first, start code %v", p.Name, p.StartCode)
		}
	}
}
