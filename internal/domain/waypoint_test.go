package domain

import "testing"

func TestRoleAt(t *testing.T) {
	cases := []struct {
		name  string
		i, n  int
		wantR Role
	}{
		{"first of three", 0, 3, RoleStart},
		{"middle of three", 1, 3, RoleStop},
		{"last of three", 2, 3, RoleEnd},
		{"first of two", 0, 2, RoleStart},
		{"last of two", 1, 2, RoleEnd},
		{"only waypoint", 0, 1, RoleStart},
	}

	for _, tc := range cases {
		if got := RoleAt(tc.i, tc.n); got != tc.wantR {
			t.Errorf("%s: RoleAt(%d, %d) = %q, want %q", tc.name, tc.i, tc.n, got, tc.wantR)
		}
	}
}

func TestMarkerColor(t *testing.T) {
	if got := MarkerColor(RoleStart); got != "green" {
		t.Errorf("start color = %q, want green", got)
	}
	if got := MarkerColor(RoleEnd); got != "red" {
		t.Errorf("end color = %q, want red", got)
	}
	if got := MarkerColor(RoleStop); got != "blue" {
		t.Errorf("stop color = %q, want blue", got)
	}
}

func TestPlaceholderName(t *testing.T) {
	got := PlaceholderName(14.5995, 120.9842)
	want := "Lat: 14.59950, Lng: 120.98420"
	if got != want {
		t.Errorf("PlaceholderName = %q, want %q", got, want)
	}
}
