package seeding

import "testing"

func TestSplitDistance(t *testing.T) {
	cases := []struct {
		in       string
		session  string
		distance string
		timeMs   int
		hasTime  bool
		display  string
	}{
		{"Утро|100 м вольный стиль (1:02.5)", "Утро", "100 м вольный стиль", 62500, true, "1:02.5"},
		{"100 м вольный стиль", "", "100 м вольный стиль", 0, false, ""},
		{"50 брасс 35,9", "", "50 брасс", 35900, true, "35.9"},
		{"Вечер | 200 комплекс", "Вечер", "200 комплекс", 0, false, ""},
		{"100 спина [1:15.00]", "", "100 спина", 75000, true, "1:15.00"},
		{"  100   м   кроль  ", "", "100 м кроль", 0, false, ""},
		{"", "", "", 0, false, ""},
	}
	for _, c := range cases {
		got := SplitDistance(c.in)
		if got.Session != c.session {
			t.Errorf("SplitDistance(%q).Session = %q, want %q", c.in, got.Session, c.session)
		}
		if got.Distance != c.distance {
			t.Errorf("SplitDistance(%q).Distance = %q, want %q", c.in, got.Distance, c.distance)
		}
		if (got.SeedTimeMs != nil) != c.hasTime {
			t.Errorf("SplitDistance(%q).SeedTimeMs presence = %v, want %v", c.in, got.SeedTimeMs != nil, c.hasTime)
			continue
		}
		if c.hasTime && *got.SeedTimeMs != c.timeMs {
			t.Errorf("SplitDistance(%q).SeedTimeMs = %d, want %d", c.in, *got.SeedTimeMs, c.timeMs)
		}
		if got.SeedTimeText != c.display {
			t.Errorf("SplitDistance(%q).SeedTimeText = %q, want %q", c.in, got.SeedTimeText, c.display)
		}
	}
}

func TestSplitDistanceTimeOnly(t *testing.T) {
	// A field that is nothing but a time keeps its original text as the
	// distance label rather than collapsing to an empty string.
	got := SplitDistance("1:02.5")
	if got.Distance == "" {
		t.Error("distance collapsed to empty")
	}
}
