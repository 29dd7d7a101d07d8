package slug

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMake(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Clínica Dos 2024!", "clinica-dos-2024"},
		{"  Spa & Estética Ñandú  ", "spa-estetica-nandu"},
		{"already-a-slug", "already-a-slug"},
		{"---Trim---Me---", "trim-me"},
		{"ÁÉÍÓÚ üö", "aeiou-uo"},
		{"!!!", ""},
		{"", ""},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.want, Make(tc.in))
		})
	}
}

func TestMake_TruncatesToLabelLength(t *testing.T) {
	got := Make(strings.Repeat("ab-", 40))
	assert.LessOrEqual(t, len(got), MaxLength)
	assert.False(t, strings.HasSuffix(got, "-"))
}

func TestMake_Idempotent(t *testing.T) {
	for _, in := range []string{"Clínica Dos 2024!", "x y z", "Über Clinic"} {
		once := Make(in)
		assert.Equal(t, once, Make(once))
		assert.NotEmpty(t, once)
	}
	assert.Empty(t, Make("!!!"))
}

func TestIsReserved(t *testing.T) {
	assert.True(t, IsReserved("admin"))
	assert.True(t, IsReserved("www"))
	assert.False(t, IsReserved("clinic"))
}
