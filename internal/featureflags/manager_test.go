package featureflags

import "testing"

func TestEnabled_BooleanValues(t *testing.T) {
	m := NewManager("a=on,b=off,c=true,d=false,e=1,f=0")

	if !m.Enabled("a", 1) || !m.Enabled("c", 1) || !m.Enabled("e", 1) {
		t.Fatal("expected enabled boolean values to evaluate true")
	}
	if m.Enabled("b", 1) || m.Enabled("d", 1) || m.Enabled("f", 1) {
		t.Fatal("expected disabled boolean values to evaluate false")
	}
}

func TestEnabledOr_Defaults(t *testing.T) {
	m := NewManager("news.admin.comment=off,odd=maybe")

	if !m.EnabledOr("news.admin.post", 1, true) {
		t.Fatal("unset flag should fall back to the default")
	}
	if m.EnabledOr("news.admin.comment", 1, true) {
		t.Fatal("explicit off must override the default")
	}
	if !m.EnabledOr("odd", 1, true) {
		t.Fatal("unparseable value should fall back to the default")
	}

	var nilManager *Manager
	if !nilManager.EnabledOr(DashboardStats, 1, true) || nilManager.Enabled(DashboardStats, 1) {
		t.Fatal("nil manager should only report defaults")
	}
}

func TestEnabled_PercentageValues(t *testing.T) {
	m := NewManager("always=100%,never=0%,canary=25%")

	if !m.Enabled("always", 1) {
		t.Fatal("100% rollout should always be enabled")
	}
	if m.Enabled("never", 1) {
		t.Fatal("0% rollout should always be disabled")
	}

	first := m.Enabled("canary", 42)
	for i := 0; i < 5; i++ {
		if got := m.Enabled("canary", 42); got != first {
			t.Fatal("rollout evaluation must be deterministic per editor")
		}
	}

	if m.Enabled("canary", 0) {
		t.Fatal("percentage rollout requires non-zero userID")
	}
}

func TestEnabled_PercentageSpread(t *testing.T) {
	m := NewManager("half=50%")
	on := 0
	for id := uint(1); id <= 1000; id++ {
		if m.Enabled("half", id) {
			on++
		}
	}
	if on < 300 || on > 700 {
		t.Fatalf("expected roughly half of editors enabled, got %d/1000", on)
	}
}

func TestParseAndSnapshot(t *testing.T) {
	m := NewManager(" bad ,X=on, y = 100% ,z=off,=on,w= ")

	snap := m.Snapshot(123)
	if len(snap) != 3 {
		t.Fatalf("expected 3 parsed flags, got %#v", snap)
	}
	if !snap["x"] || !snap["y"] || snap["z"] {
		t.Fatalf("unexpected snapshot: %#v", snap)
	}
}
