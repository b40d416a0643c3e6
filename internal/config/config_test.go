package config

import "testing"

func TestParseCapacityTable(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want map[string]int
	}{
		{"empty", "", map[string]int{}},
		{"single", "1v1=2", map[string]int{"1v1": 2}},
		{"multiple with spaces", " 1v1=2, 2v2=4 ,tournament=16", map[string]int{"1v1": 2, "2v2": 4, "tournament": 16}},
		{"malformed entries skipped", "1v1=2,broken,ffa=zero,coop=0", map[string]int{"1v1": 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseCapacityTable(tt.in)
			if len(got) != len(tt.want) {
				t.Fatalf("parseCapacityTable(%q) = %v, want %v", tt.in, got, tt.want)
			}
			for mode, limit := range tt.want {
				if got[mode] != limit {
					t.Errorf("mode %q = %d, want %d", mode, got[mode], limit)
				}
			}
		})
	}
}
