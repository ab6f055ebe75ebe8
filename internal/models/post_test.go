package models

import (
	"reflect"
	"testing"
)

func TestNormalizeTags(t *testing.T) {
	tests := []struct {
		name  string
		input []string
		want  []string
	}{
		{name: "nil", input: nil, want: []string{}},
		{name: "trims and drops empty", input: []string{" go ", "", "  "}, want: []string{"go"}},
		{name: "dedupes keeping order", input: []string{"web", "go", "web"}, want: []string{"web", "go"}},
		{name: "case sensitive", input: []string{"Go", "go"}, want: []string{"Go", "go"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeTags(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("NormalizeTags(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
