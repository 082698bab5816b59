package internal

import (
	"testing"
)

func TestDefaultConfigIsValid(t *testing.T) {
	if err := NewDefaultConfig().Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestVaultConfig_PathRequired(t *testing.T) {
	cfg := VaultConfig{Path: ""}
	if err := cfg.Validate(); err == nil {
		t.Error("empty vault path should fail validation")
	}
}

func TestMatchConfig_MinLength(t *testing.T) {
	cfg := MatchConfig{AcronymMinLength: 1}
	if err := cfg.Validate(); err == nil {
		t.Error("acronym_min_length below 2 should fail validation")
	}
	cfg.AcronymMinLength = 2
	if err := cfg.Validate(); err != nil {
		t.Errorf("acronym_min_length 2 should pass: %v", err)
	}
}

func TestRewriteConfig_HeadingShape(t *testing.T) {
	cases := []struct {
		heading string
		ok      bool
	}{
		{"## Related", true},
		{"# Links", true},
		{"Related", false},
		{"", false},
		{"####### Too deep", false},
	}
	for _, c := range cases {
		cfg := RewriteConfig{SectionHeading: c.heading}
		err := cfg.Validate()
		if c.ok && err != nil {
			t.Errorf("%q should pass: %v", c.heading, err)
		}
		if !c.ok && err == nil {
			t.Errorf("%q should fail", c.heading)
		}
	}
}
