package monitor

import "testing"

func TestConvertPercent(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   string
		wantOK bool
	}{
		{"typical", "12345/67890", "18.18%", true},
		{"sysfs spacing", "500 / 2000\n", "25.00%", true},
		{"complete", "2000/2000", "100.00%", true},
		{"zero progress", "0/2000", "0.00%", true},
		{"padded", "  1 /3  ", "33.33%", true},
		{"sentinel none", "none", "", false},
		{"sentinel delayed", "delayed\n", "", false},
		{"zero total", "5/0", "", false},
		{"non numeric count", "abc/100", "", false},
		{"non numeric total", "1/abc", "", false},
		{"empty", "", "", false},
		{"infinite", "inf/1", "", false},
		{"extra slash", "1/2/3", "", false},
		{"decimal", "1.5/3", "50.00%", true},
		{"hex float", "0x1p2/4", "", false},
		{"underscore digits", "1_0/4", "", false},
		{"negative count", "-1/4", "", false},
		{"signed total", "1/+4", "", false},
		{"exponent", "1e2/400", "", false},
		{"double point", "1..2/4", "", false},
		{"bare point", "./4", "", false},
		{"empty count", "/4", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ConvertPercent(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("ConvertPercent(%q) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("ConvertPercent(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
