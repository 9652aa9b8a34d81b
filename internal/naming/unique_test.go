package naming

import "testing"

func TestUniquer(t *testing.T) {
	tests := []struct {
		name     string
		bases    []string
		expected []string
	}{
		{
			name:     "no collisions",
			bases:    []string{"a", "b"},
			expected: []string{"a", "b"},
		},
		{
			name:     "collisions are suffixed in first seen order",
			bases:    []string{"x", "y", "x", "x"},
			expected: []string{"x", "y", "x_1", "x_2"},
		},
		{
			name:     "every occurrence counts",
			bases:    []string{"Save", "Save", "Save", "Save_1"},
			expected: []string{"Save", "Save_1", "Save_2", "Save_1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := NewUniquer()
			for i, b := range tt.bases {
				if got := u.Identifier(b); got != tt.expected[i] {
					t.Errorf("occurrence %d: expected %q, got %q", i, tt.expected[i], got)
				}
			}
		})
	}
}
