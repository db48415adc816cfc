package ai

import "testing"

func TestParseScore(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    float64
		wantErr bool
	}{
		{"strict", "$85$", 85, false},
		{"strict decimal", "the score is $72.5$", 72.5, false},
		{"fallback", "score: 85", 85, false},
		{"clamped high", "$250$", 100, false},
		{"no number", "nothing here", 0, true},
		{"first number wins", "40 then 90", 40, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseScore(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err=%v wantErr=%v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Fatalf("got=%v want=%v", got, tt.want)
			}
		})
	}
}
