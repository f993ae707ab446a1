package reveal

import "strings"

// MaskPhone keeps the first five and last four digits and stars the rest.
// Inputs with fewer than ten digits are returned unchanged. The result itself
// has nine digits, so masking is idempotent.
func MaskPhone(phone string) string {
	digits := make([]byte, 0, len(phone))
	for i := 0; i < len(phone); i++ {
		if phone[i] >= '0' && phone[i] <= '9' {
			digits = append(digits, phone[i])
		}
	}
	if len(digits) < 10 {
		return phone
	}

	var b strings.Builder
	b.Grow(len(digits) + 3)
	b.WriteByte('+')
	b.Write(digits[:5])
	b.WriteByte(' ')
	b.WriteString(strings.Repeat("*", len(digits)-9))
	b.WriteByte(' ')
	b.Write(digits[len(digits)-4:])
	return b.String()
}
