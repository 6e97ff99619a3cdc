package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeCCCD(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain digits", "012345678912", "012345678912"},
		{"spaces", "012 345 678 912", "012345678912"},
		{"dashes", "012-345-678-912", "012345678912"},
		{"dots from scan", "012.345.678.912", "012345678912"},
		{"mixed noise", " 012-345 678.912 ", "012345678912"},
		{"letters stripped", "CCCD:012345678912", "012345678912"},
		{"empty", "", ""},
		{"no digits", "abc-def", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, NormalizeCCCD(tc.in))
		})
	}
}

func TestNormalizeCCCDIdempotent(t *testing.T) {
	once := NormalizeCCCD("012-345-678-912")
	assert.Equal(t, once, NormalizeCCCD(once))
}

func TestIsValidCCCD(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want bool
	}{
		{"old CMND, 9 digits", "123456789", true},
		{"CCCD, 12 digits", "012345678912", true},
		{"formatted input", "012-345-678-912", true},
		{"10 digits", "0123456789", true},
		{"8 digits", "12345678", false},
		{"13 digits", "0123456789123", false},
		{"empty", "", false},
		{"digits hidden in noise", "01 23 45 67 89", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsValidCCCD(tc.in))
		})
	}
}
