package points

import "testing"

func TestNormalizeEventCode(t *testing.T) {
	cases := []struct {
		distance string
		stroke   string
		want     string
		ok       bool
	}{
		{"100 m", "вольный стиль", "100FR", true},
		{"100 м", "кроль", "100FR", true},
		{"50", "breaststroke", "50BR", true},
		{"200 м на спине", "", "200BK", true},
		{"100m butterfly", "", "100FL", true},
		{"100 м", "дельфин", "100FL", true},
		{"100 m", "IM", "100IM", true},
		{"400", "комплекс", "400IM", true},
		{"200 medley", "", "200IM", true},
		{"1500", "freestyle", "1500FR", true},
		{"25 м", "в/с", "25FR", true},
		{"50", "medley", "", false},     // medley is only 100/200/400
		{"300", "freestyle", "", false}, // unsupported distance
		{"100", "", "", false},          // no stroke
		{"", "вольный стиль", "", false},
		{"", "", "", false},
	}
	for _, c := range cases {
		got, ok := NormalizeEventCode(c.distance, c.stroke)
		if ok != c.ok || got != c.want {
			t.Errorf("NormalizeEventCode(%q, %q) = (%q, %v), want (%q, %v)",
				c.distance, c.stroke, got, ok, c.want, c.ok)
		}
	}
}

func TestNormalizeEventCodeDeterministic(t *testing.T) {
	// The label mentions both a stroke word and a medley word; the alias
	// list is ordered, so detection must always pick the same code.
	first, ok := NormalizeEventCode("200", "вольный стиль комплекс")
	if !ok {
		t.Fatal("expected a code")
	}
	for i := 0; i < 100; i++ {
		got, _ := NormalizeEventCode("200", "вольный стиль комплекс")
		if got != first {
			t.Fatalf("run %d gave %q, first run gave %q", i, got, first)
		}
	}
	if first != "200FR" {
		t.Errorf("ordered aliases put freestyle before medley, got %q", first)
	}
}
