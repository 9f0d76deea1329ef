package signature

import (
	"strings"
	"testing"
)

func TestParseVersion(t *testing.T) {
	tests := []struct {
		input string
		want  Version
	}{
		{"2", Version2},
		{"2.0", Version2},
		{"latest", Version5},
		{"recommended", Version2},
	}
	for _, tt := range tests {
		got, err := ParseVersion(tt.input)
		if err != nil {
			t.Errorf("ParseVersion(%q) failed: %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseVersion(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}

	if _, err := ParseVersion("6.0"); err == nil {
		t.Error("ParseVersion(6.0) succeeded, want error")
	}
}

func TestDefaultsPerVersion(t *testing.T) {
	v2 := Defaults(Version2)
	if v2.KotlinStyleNulls || v2.ConciseDefaultValues || v2.AddAdditionalOverrides {
		t.Errorf("2.0 defaults enable properties: %+v", v2)
	}
	if v2.OverloadedMethodOrder != OrderSignature {
		t.Errorf("2.0 default method order = %q, want signature", v2.OverloadedMethodOrder)
	}

	v3 := Defaults(Version3)
	if !v3.KotlinStyleNulls || v3.ConciseDefaultValues {
		t.Errorf("3.0 defaults wrong: %+v", v3)
	}

	v4 := Defaults(Version4)
	if !v4.KotlinStyleNulls || !v4.ConciseDefaultValues || v4.AddAdditionalOverrides {
		t.Errorf("4.0 defaults wrong: %+v", v4)
	}

	v5 := Defaults(Version5)
	if !v5.KotlinStyleNulls || !v5.ConciseDefaultValues || !v5.AddAdditionalOverrides {
		t.Errorf("5.0 defaults wrong: %+v", v5)
	}
}

func TestParseSpecifier(t *testing.T) {
	t.Run("bare version", func(t *testing.T) {
		f, err := ParseSpecifier("2.0", SpecifierOptions{})
		if err != nil {
			t.Fatalf("ParseSpecifier failed: %v", err)
		}
		if f.Version != Version2 || f.KotlinStyleNulls {
			t.Errorf("got %+v, want plain 2.0 defaults", f)
		}
	})

	t.Run("customized latest", func(t *testing.T) {
		f, err := ParseSpecifier("5.0:overloaded-method-order=source", SpecifierOptions{})
		if err != nil {
			t.Fatalf("ParseSpecifier failed: %v", err)
		}
		if f.OverloadedMethodOrder != OrderSource {
			t.Errorf("OverloadedMethodOrder = %q, want source", f.OverloadedMethodOrder)
		}
	})

	t.Run("customized 2.0 without migrating is rejected", func(t *testing.T) {
		spec := "2.0:kotlin-style-nulls=yes,concise-default-values=yes"
		_, err := ParseSpecifier(spec, SpecifierOptions{AllowMigrating: true})
		if err == nil {
			t.Fatal("customized 2.0 without migrating succeeded, want error")
		}
		if !strings.Contains(err.Error(), "migrating") {
			t.Errorf("error %q does not name the migrating property", err)
		}
		if !strings.Contains(err.Error(), spec) {
			t.Errorf("error %q does not echo the specifier", err)
		}
	})

	t.Run("customized 2.0 with migrating", func(t *testing.T) {
		f, err := ParseSpecifier("2.0:kotlin-style-nulls=yes,migrating=b/12345", SpecifierOptions{AllowMigrating: true})
		if err != nil {
			t.Fatalf("ParseSpecifier failed: %v", err)
		}
		if !f.KotlinStyleNulls || f.Migrating != "b/12345" {
			t.Errorf("got %+v", f)
		}
	})

	t.Run("migrating rejected when not allowed", func(t *testing.T) {
		if _, err := ParseSpecifier("5.0:migrating=b/12345", SpecifierOptions{}); err == nil {
			t.Error("migrating without permission succeeded, want error")
		}
	})

	t.Run("unknown property", func(t *testing.T) {
		if _, err := ParseSpecifier("5.0:frobnicate=yes", SpecifierOptions{}); err == nil {
			t.Error("unknown property succeeded, want error")
		}
	})

	t.Run("bad boolean value", func(t *testing.T) {
		if _, err := ParseSpecifier("5.0:kotlin-style-nulls=maybe", SpecifierOptions{}); err == nil {
			t.Error("bad boolean value succeeded, want error")
		}
	})
}

func TestHeader(t *testing.T) {
	t.Run("defaults print only the version", func(t *testing.T) {
		got := Defaults(Version2).Header()
		want := "// Signature format: 2.0\n"
		if got != want {
			t.Errorf("Header() = %q, want %q", got, want)
		}
	})

	t.Run("deviations are listed", func(t *testing.T) {
		f := Defaults(Version2)
		f.KotlinStyleNulls = true
		f.Migrating = "b/12345"
		got := f.Header()
		want := "// Signature format: 2.0\n// - kotlin-style-nulls=yes\n// - migrating=b/12345\n"
		if got != want {
			t.Errorf("Header() = %q, want %q", got, want)
		}
	})
}
