package policy

import "testing"

func TestOwns(t *testing.T) {
	cases := []struct {
		actor, owner string
		want         bool
	}{
		{"u1", "u1", true},
		{"u1", "u2", false},
		{"u1", "", false},
		{"", "", false},
		{" ", " ", false},
	}
	for _, tc := range cases {
		if got := Owns(tc.actor, tc.owner); got != tc.want {
			t.Fatalf("Owns(%q, %q) = %v, want %v", tc.actor, tc.owner, got, tc.want)
		}
	}
}
