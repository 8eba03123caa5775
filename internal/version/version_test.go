// ABOUTME: Tests for version constants
// ABOUTME: Checks the identity strings printed by the CLI
package version

import (
	"strconv"
	"strings"
	"testing"
)

func TestVersionIsSemver(t *testing.T) {
	parts := strings.Split(Version, ".")
	if len(parts) != 3 {
		t.Fatalf("Version %q is not major.minor.patch", Version)
	}
	for _, p := range parts {
		if _, err := strconv.Atoi(p); err != nil {
			t.Errorf("Version %q has non-numeric part %q", Version, p)
		}
	}
}

func TestIdentityDefined(t *testing.T) {
	if Product == "" {
		t.Error("Product should not be empty")
	}
	if Manufacturer == "" {
		t.Error("Manufacturer should not be empty")
	}
	if String() != "voicemix 0.1.0 (Resonate)" {
		t.Errorf("String() = %q", String())
	}
}
