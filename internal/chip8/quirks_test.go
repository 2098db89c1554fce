package chip8

import "testing"

func TestDefaultQuirksPerDialect(t *testing.T) {
	if q := DefaultQuirks(DialectCHIP8); q != LegacyQuirks() {
		t.Errorf("CHIP-8 default should be Legacy, got %+v", q)
	}
	if q := DefaultQuirks(DialectSCHIP); q != ModernQuirks() {
		t.Errorf("S-CHIP default should be Modern, got %+v", q)
	}
	if q := DefaultQuirks(DialectXOCHIP); q != OctoQuirks() {
		t.Errorf("XO-CHIP default should be Octo, got %+v", q)
	}
}

func TestPresetsAreDistinct(t *testing.T) {
	l, m, o := LegacyQuirks(), ModernQuirks(), OctoQuirks()
	if l == m || m == o || l == o {
		t.Errorf("the three presets should not collapse to the same record")
	}
}
