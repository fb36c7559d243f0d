package eye

import "testing"

func TestRegistry_DescriptorForEverySupportedControl(t *testing.T) {
	ids := Controls()
	if len(ids) != 13 {
		t.Fatalf("registry has %d controls, want 13", len(ids))
	}
	seen := make(map[string]bool)
	for _, id := range ids {
		d := DescriptorFor(id)
		if d.ID != id {
			t.Errorf("DescriptorFor(%s).ID = %s", id, d.ID)
		}
		if d.Name == "" {
			t.Errorf("control %d has no name", id)
		}
		if seen[d.Name] {
			t.Errorf("duplicate control name %q", d.Name)
		}
		seen[d.Name] = true
		if d.Domain.Min >= d.Domain.Max {
			t.Errorf("control %s has empty domain %v", d.Name, d.Domain)
		}
	}
}

func TestRegistry_AutoExposureDeliberatelyAbsent(t *testing.T) {
	if _, ok := ControlByName("auto_exposure"); ok {
		t.Error("auto_exposure must not be registered")
	}
}

func TestRegistry_ControlByName(t *testing.T) {
	cases := []struct {
		name string
		want Control
	}{
		{"auto_gain", AutoGain},
		{"gain", Gain},
		{"exposure", Exposure},
		{"green_balance", GreenBalance},
		{"vflip", VFlip},
	}
	for _, tc := range cases {
		got, ok := ControlByName(tc.name)
		if !ok || got != tc.want {
			t.Errorf("ControlByName(%q) = %v, %v; want %v, true", tc.name, got, ok, tc.want)
		}
	}
	if _, ok := ControlByName("bogus"); ok {
		t.Error("ControlByName(\"bogus\") should report false")
	}
}

func TestDomain_Contains(t *testing.T) {
	cases := []struct {
		d    Domain
		v    int
		want bool
	}{
		{Domain{0, 1}, 0, true},
		{Domain{0, 1}, 1, true},
		{Domain{0, 1}, 2, false},
		{Domain{0, 63}, 63, true},
		{Domain{0, 63}, 64, false},
		{Domain{0, 255}, -1, false},
	}
	for _, tc := range cases {
		if got := tc.d.Contains(tc.v); got != tc.want {
			t.Errorf("%v.Contains(%d) = %v, want %v", tc.d, tc.v, got, tc.want)
		}
	}
}

func TestDomain_String(t *testing.T) {
	if got := (Domain{0, 1}).String(); got != "{0,1}" {
		t.Errorf("boolean domain = %q, want {0,1}", got)
	}
	if got := (Domain{0, 255}).String(); got != "0..255" {
		t.Errorf("range domain = %q, want 0..255", got)
	}
}

func TestDescriptorFor_UnknownControlPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for unknown control id")
		}
	}()
	DescriptorFor(Control(999))
}
