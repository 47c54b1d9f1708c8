package utils

import "testing"

func TestIsEventID(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"aaaabbbbccccddddeeeeffff00001111", true},
		{"AAAABBBBCCCCDDDDEEEEFFFF00001111", true},
		{"aaaabbbb-cccc-dddd-eeee-ffff00001111", true},
		{"aaaabbbbccccddddeeeeffff0000111", false},
		{"gggghhhhccccddddeeeeffff00001111", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsEventID(tt.value); got != tt.want {
			t.Errorf("IsEventID(%q) = %v, want %v", tt.value, got, tt.want)
		}
	}
}

func TestIsSpanID(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"ab499c14f4f14d42", true},
		{"AB499C14F4F14D42", true},
		{"ab499c14f4f14d4", false},
		{"ab499c14f4f14d42ff", false},
		{"zb499c14f4f14d42", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsSpanID(tt.value); got != tt.want {
			t.Errorf("IsSpanID(%q) = %v, want %v", tt.value, got, tt.want)
		}
	}
}
