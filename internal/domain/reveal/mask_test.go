package reveal

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaskPhone(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"+7 701 234 5678", "+77012 ** 5678"},
		{"77012345678", "+77012 ** 5678"},
		{"+1 (415) 555-0123", "+14155 ** 0123"},
		{"0123456789", "+01234 * 6789"},
		{"+44 20 7946 095812", "+44207 ***** 5812"},
		{"12345", "12345"},
		{"555-0123", "555-0123"},
		{"", ""},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.want, MaskPhone(tc.in))
		})
	}
}

func TestMaskPhoneIdempotentAndDeterministic(t *testing.T) {
	for n := 0; n < 500; n++ {
		phone := fmt.Sprintf("+%d %03d %07d", n%99+1, n, n*7919)
		once := MaskPhone(phone)
		assert.Equal(t, once, MaskPhone(phone))
		assert.Equal(t, once, MaskPhone(once), phone)
	}
}
