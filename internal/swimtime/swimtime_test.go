package swimtime

import "testing"

func TestParseMillis(t *testing.T) {
	cases := []struct {
		in   string
		want int
		ok   bool
	}{
		{"1:02:03", 3723000, true},
		{"1:02:03.5", 3723500, true},
		{"1:23", 83000, true},
		{"1:23.45", 83450, true},
		{"0:59.99", 59990, true},
		{"58.82", 58820, true},
		{"58,82", 58820, true},
		{"7", 7000, true},
		{"7.1", 7100, true},
		{"7.123", 7123, true},
		{"  1:23  ", 83000, true},
		{"75.5", 75500, true},
		{"105.25", 105250, true}, // falls through to the decimal form
		{"", 0, false},
		{"-", 0, false},
		{"abc", 0, false},
		{"-5", 0, false},
		{"1:2", 0, false},
	}
	for _, c := range cases {
		got, ok := ParseMillis(c.in)
		if ok != c.ok || got != c.want {
			t.Errorf("ParseMillis(%q) = (%d, %v), want (%d, %v)", c.in, got, ok, c.want, c.ok)
		}
	}
}

func TestFormatMillis(t *testing.T) {
	cases := []struct {
		in   int
		want string
	}{
		{46860, "46.86"},
		{58820, "58.82"},
		{83450, "1:23.45"},
		{61200, "1:01.2"},
		{60000, "1:00"},
		{50000, "50"},
		{3723500, "1:02:03.5"},
		{3600000, "1:00:00"},
		{7, "0.007"},
		{0, "0"},
		{-100, "0"},
	}
	for _, c := range cases {
		if got := FormatMillis(c.in); got != c.want {
			t.Errorf("FormatMillis(%d) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestFormatParseRoundTrip(t *testing.T) {
	for _, ms := range []int{1, 50, 999, 1000, 46860, 59990, 60000, 61200, 83450, 599999, 3600000, 3723500, 5025678} {
		got, ok := ParseMillis(FormatMillis(ms))
		if !ok || got != ms {
			t.Errorf("round trip of %d via %q gave (%d, %v)", ms, FormatMillis(ms), got, ok)
		}
	}
}

func TestParseDate(t *testing.T) {
	for _, in := range []string{"2024-03-15", "15.03.2024", "20240315"} {
		d, ok := ParseDate(in)
		if !ok {
			t.Fatalf("ParseDate(%q) failed", in)
		}
		if d.Year() != 2024 || int(d.Month()) != 3 || d.Day() != 15 {
			t.Errorf("ParseDate(%q) = %v", in, d)
		}
	}
	if _, ok := ParseDate("not a date"); ok {
		t.Error("ParseDate accepted garbage")
	}
	if _, ok := ParseDate(""); ok {
		t.Error("ParseDate accepted empty input")
	}
}

func TestFindFragment(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"100 м вольный стиль (1:02.5)", "1:02.5", true},
		{"50 брасс 35,9", "35,9", true},
		{"вольный стиль 1:02:03", "1:02:03", true},
		{"100 м вольный стиль", "", false},
		{"", "", false},
	}
	for _, c := range cases {
		start, end, ok := FindFragment(c.in)
		if ok != c.ok {
			t.Errorf("FindFragment(%q) ok = %v, want %v", c.in, ok, c.ok)
			continue
		}
		if ok && c.in[start:end] != c.want {
			t.Errorf("FindFragment(%q) = %q, want %q", c.in, c.in[start:end], c.want)
		}
	}
}
