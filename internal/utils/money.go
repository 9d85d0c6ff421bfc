package utils

import (
	"strconv"
	"strings"
)

// FormatYen renders an integer amount as "¥12,300".
func FormatYen(amount int64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	return sign + "¥" + formatThousand(amount)
}

func formatThousand(n int64) string {
	str := strconv.FormatInt(n, 10)
	var out strings.Builder
	for i, c := range str {
		if i != 0 && (len(str)-i)%3 == 0 {
			out.WriteByte(',')
		}
		out.WriteRune(c)
	}
	return out.String()
}
