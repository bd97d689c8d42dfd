package config

import "testing"

func TestSingleton(t *testing.T) {
	SetConfig(nil)
	t.Cleanup(func() { SetConfig(nil) })

	if GetConfig() != nil {
		t.Fatal("expected nil configuration before Initialize")
	}

	path := writeConfig(t, "validation:\n  workers: 3\n")
	if err := Initialize(path); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	if got := MustGetConfig().Validation.Workers; got != 3 {
		t.Errorf("Workers = %d, want 3", got)
	}

	// A second Initialize is a no-op.
	other := writeConfig(t, "validation:\n  workers: 9\n")
	if err := Initialize(other); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	if got := GetConfig().Validation.Workers; got != 3 {
		t.Errorf("Workers after second Initialize = %d, want 3", got)
	}

	if err := ReloadConfig(other); err != nil {
		t.Fatalf("ReloadConfig() error = %v", err)
	}
	if got := GetConfig().Validation.Workers; got != 9 {
		t.Errorf("Workers after reload = %d, want 9", got)
	}

	bad := writeConfig(t, "validation:\n  workers: -1\n")
	if err := ReloadConfig(bad); err == nil {
		t.Fatal("expected reload error")
	}
	if got := GetConfig().Validation.Workers; got != 9 {
		t.Errorf("failed reload replaced configuration: Workers = %d", got)
	}
}

func TestMustGetConfig_Panics(t *testing.T) {
	SetConfig(nil)
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	MustGetConfig()
}
