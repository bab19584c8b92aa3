package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsUUID(t *testing.T) {
	tt := []struct {
		name string
		s    string
		want bool
	}{
		{
			name: "lowercase",
			s:    "e56cff0c-4838-4e5a-9fa4-71465a32e9d5",
			want: true,
		},
		{
			name: "uppercase hex is accepted",
			s:    "E56CFF0C-4838-4E5A-9FA4-71465A32E9D5",
			want: true,
		},
		{
			name: "too short",
			s:    "e56cff0c-4838-4e5a-9fa4",
			want: false,
		},
		{
			name: "unhyphenated",
			s:    "e56cff0c48384e5a9fa471465a32e9d5aaaa",
			want: false,
		},
		{
			name: "empty",
			s:    "",
			want: false,
		},
	}

	for i := range tt {
		tc := tt[i]
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsUUID(tc.s))
		})
	}
}
