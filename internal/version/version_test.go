package version

import (
	"testing"

	"github.com/fatih/color"
)

func TestVersion_DefaultValues(t *testing.T) {
	if Version == "" {
		t.Error("Version should have a default value")
	}
}

func TestColoredWithoutColor(t *testing.T) {
	orig := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = orig }()

	if got := Colored(); got != Version {
		t.Errorf("Colored() = %q, want %q", got, Version)
	}
}

func TestColoredKeepsUnparsableVersion(t *testing.T) {
	origVersion := Version
	defer func() { Version = origVersion }()

	Version = "nightly"
	if got := Colored(); got != "nightly" {
		t.Errorf("Colored() = %q, want nightly", got)
	}
}

func TestDetails(t *testing.T) {
	origVersion, origCommit, origDate := Version, GitCommit, BuildDate
	defer func() { Version, GitCommit, BuildDate = origVersion, origCommit, origDate }()

	cases := []struct {
		commit, date, want string
	}{
		{"", "", "1.2.3"},
		{"abc123", "", "1.2.3 (abc123)"},
		{"abc123", "2024-01-15", "1.2.3 (abc123) built 2024-01-15"},
		{"", "2024-01-15", "1.2.3 built 2024-01-15"},
	}
	Version = "1.2.3"
	for _, tc := range cases {
		GitCommit, BuildDate = tc.commit, tc.date
		if got := Details(); got != tc.want {
			t.Errorf("Details() = %q, want %q", got, tc.want)
		}
	}
}
