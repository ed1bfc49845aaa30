package config

import (
	"testing"
	"time"
)

func TestProfile_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Profile)
		wantErr bool
	}{
		{"default profile", func(p *Profile) {}, false},
		{"invalid serial", func(p *Profile) { p.Serial.BaudRate = 123 }, true},
		{"zero line length", func(p *Profile) { p.MaxCommandLineLength = 0 }, true},
		{"zero log messages", func(p *Profile) { p.MaxLogMessages = 0 }, true},
		{"unknown log level", func(p *Profile) { p.LogLevel = "loud" }, true},
		{"hostname is optional", func(p *Profile) { p.Hostname = "bench-3" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			profile := DefaultProfile()
			tt.mutate(&profile)

			if err := profile.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestFileProfileManager_SaveLoad(t *testing.T) {
	manager := NewFileProfileManager(t.TempDir())

	profile := DefaultProfile()
	profile.Serial.Port = "/dev/ttyACM3"
	profile.Hostname = "bench"

	if err := manager.SaveProfile("bench", profile); err != nil {
		t.Fatalf("SaveProfile() error = %v", err)
	}

	loaded, err := manager.LoadProfile("bench")
	if err != nil {
		t.Fatalf("LoadProfile() error = %v", err)
	}

	if loaded.Serial.Port != "/dev/ttyACM3" || loaded.Hostname != "bench" {
		t.Errorf("loaded profile = %+v", loaded)
	}
}

func TestFileProfileManager_SaveInvalidProfile(t *testing.T) {
	manager := NewFileProfileManager(t.TempDir())

	profile := DefaultProfile()
	profile.Serial.Port = ""

	if err := manager.SaveProfile("bad", profile); err == nil {
		t.Error("SaveProfile() should reject an invalid profile")
	}
}

func TestFileProfileManager_EmptyName(t *testing.T) {
	manager := NewFileProfileManager(t.TempDir())

	if err := manager.SaveProfile("", DefaultProfile()); err == nil {
		t.Error("SaveProfile(\"\") should fail")
	}
	if _, err := manager.LoadProfile(""); err == nil {
		t.Error("LoadProfile(\"\") should fail")
	}
	if err := manager.DeleteProfile(""); err == nil {
		t.Error("DeleteProfile(\"\") should fail")
	}
	if manager.ProfileExists("") {
		t.Error("ProfileExists(\"\") = true, want false")
	}
}

func TestFileProfileManager_LoadMissing(t *testing.T) {
	manager := NewFileProfileManager(t.TempDir())

	if _, err := manager.LoadProfile("ghost"); err == nil {
		t.Error("LoadProfile() of a missing profile should fail")
	}
}

func TestFileProfileManager_ListProfiles(t *testing.T) {
	manager := NewFileProfileManager(t.TempDir())

	profiles, err := manager.ListProfiles()
	if err != nil {
		t.Fatalf("ListProfiles() error = %v", err)
	}
	if len(profiles) != 0 {
		t.Fatalf("ListProfiles() = %d entries on empty storage, want 0", len(profiles))
	}

	for _, name := range []string{"one", "two"} {
		if err := manager.SaveProfile(name, DefaultProfile()); err != nil {
			t.Fatalf("SaveProfile(%q) error = %v", name, err)
		}
	}

	profiles, err = manager.ListProfiles()
	if err != nil {
		t.Fatalf("ListProfiles() error = %v", err)
	}
	if len(profiles) != 2 {
		t.Errorf("ListProfiles() = %d entries, want 2", len(profiles))
	}

	names := map[string]bool{}
	for _, info := range profiles {
		names[info.Name] = true
	}
	if !names["one"] || !names["two"] {
		t.Errorf("ListProfiles() names = %v", names)
	}
}

func TestFileProfileManager_DeleteProfile(t *testing.T) {
	manager := NewFileProfileManager(t.TempDir())

	if err := manager.SaveProfile("gone", DefaultProfile()); err != nil {
		t.Fatalf("SaveProfile() error = %v", err)
	}

	if !manager.ProfileExists("gone") {
		t.Fatal("ProfileExists() = false after save")
	}

	if err := manager.DeleteProfile("gone"); err != nil {
		t.Fatalf("DeleteProfile() error = %v", err)
	}

	if manager.ProfileExists("gone") {
		t.Error("ProfileExists() = true after delete")
	}

	if err := manager.DeleteProfile("gone"); err == nil {
		t.Error("DeleteProfile() of a missing profile should fail")
	}
}

func TestFileProfileManager_ResavePreservesCreation(t *testing.T) {
	dir := t.TempDir()
	manager := NewFileProfileManager(dir)

	if err := manager.SaveProfile("keep", DefaultProfile()); err != nil {
		t.Fatalf("SaveProfile() error = %v", err)
	}

	storage, err := manager.loadStorage()
	if err != nil {
		t.Fatalf("loadStorage() error = %v", err)
	}
	created := storage.Profiles["keep"].CreatedAt

	time.Sleep(10 * time.Millisecond)

	profile := DefaultProfile()
	profile.Hostname = "updated"
	if err := manager.SaveProfile("keep", profile); err != nil {
		t.Fatalf("SaveProfile() error = %v", err)
	}

	storage, err = manager.loadStorage()
	if err != nil {
		t.Fatalf("loadStorage() error = %v", err)
	}

	info := storage.Profiles["keep"]
	if !info.CreatedAt.Equal(created) {
		t.Errorf("CreatedAt changed on re-save: %v -> %v", created, info.CreatedAt)
	}
	if info.Profile.Hostname != "updated" {
		t.Errorf("Hostname = %q, want %q", info.Profile.Hostname, "updated")
	}
	if !info.LastUsedAt.After(created) {
		t.Errorf("LastUsedAt = %v, want after %v", info.LastUsedAt, created)
	}
}
