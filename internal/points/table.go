package points

// DefaultTable returns the built-in base-time table: long-course and
// short-course world record times from the 2023 FINA points revision, in
// seconds. Covers the events the application registers swims for.
func DefaultTable() Table {
	return Table{
		"M": {
			"LCM": {
				"50FR": 20.91, "100FR": 46.86, "200FR": 102.00, "400FR": 220.07,
				"800FR": 452.12, "1500FR": 871.02,
				"50BK": 23.71, "100BK": 51.60, "200BK": 111.92,
				"50BR": 25.95, "100BR": 56.88, "200BR": 125.48,
				"50FL": 22.27, "100FL": 49.45, "200FL": 110.34,
				"200IM": 114.00, "400IM": 243.84,
			},
			"SCM": {
				"50FR": 20.16, "100FR": 44.84, "200FR": 99.13, "400FR": 212.25,
				"800FR": 443.16, "1500FR": 846.88,
				"50BK": 22.11, "100BK": 48.33, "200BK": 100.92,
				"50BR": 25.25, "100BR": 55.34, "200BR": 119.65,
				"50FL": 21.75, "100FL": 48.08, "200FL": 108.24,
				"200IM": 111.95, "400IM": 238.65,
			},
		},
		"F": {
			"LCM": {
				"50FR": 23.61, "100FR": 51.71, "200FR": 112.98, "400FR": 235.38,
				"800FR": 484.79, "1500FR": 920.48,
				"50BK": 26.98, "100BK": 57.45, "200BK": 123.35,
				"50BR": 29.30, "100BR": 64.13, "200BR": 138.95,
				"50FL": 24.43, "100FL": 55.48, "200FL": 121.81,
				"200IM": 126.12, "400IM": 260.85,
			},
			"SCM": {
				"50FR": 22.93, "100FR": 50.25, "200FR": 111.00, "400FR": 231.25,
				"800FR": 476.18, "1500FR": 910.40,
				"50BK": 25.27, "100BK": 55.60, "200BK": 119.23,
				"50BR": 28.56, "100BR": 63.07, "200BR": 133.82,
				"50FL": 24.38, "100FL": 54.59, "200FL": 118.43,
				"200IM": 122.90, "400IM": 254.13,
			},
		},
	}
}
