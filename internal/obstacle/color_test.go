package obstacle

import "testing"

// TestClassifyThresholds verifies ratio boundaries of each tier
func TestClassifyThresholds(t *testing.T) {
	c := DefaultClassifier()
	tests := []struct {
		value, rec float64
		want       Tier
	}{
		{0, 40, TierEasy},
		{19.9, 40, TierEasy},
		{20, 40, TierMedium},
		{31.9, 40, TierMedium},
		{32, 40, TierChallenging},
		{43.9, 40, TierChallenging},
		{44, 40, TierHard},
		{100, 40, TierHard},
		{5, 0, TierHard},
	}
	for _, tt := range tests {
		if got := c.Classify(tt.value, tt.rec); got != tt.want {
			t.Errorf("Classify(%v, %v) = %v, want %v", tt.value, tt.rec, got, tt.want)
		}
	}
}

// TestParseTypeRoundTrip verifies data-file names map back to types
func TestParseTypeRoundTrip(t *testing.T) {
	for _, ty := range Types() {
		got, err := ParseType(ty.String())
		if err != nil || got != ty {
			t.Errorf("ParseType(%q) = %v, %v", ty.String(), got, err)
		}
	}
	if _, err := ParseType("lava"); err == nil {
		t.Error("expected error for unknown type")
	}
	if len(Types()) != 8 {
		t.Errorf("expected 8 obstacle types, got %d", len(Types()))
	}
}
