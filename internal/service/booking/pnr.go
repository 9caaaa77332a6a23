package booking

import (
	"math/rand"
	"regexp"
)

const pnrLength = 6

const pnrChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

var pnrPattern = regexp.MustCompile(`^[A-Z0-9]{6}$`)

// GeneratePNR returns a 6-character alphanumeric booking reference,
// e.g. ABC123 or XY9Z8K. Uniqueness is probabilistic; the bookings table
// carries the unique constraint.
func GeneratePNR() string {
	b := make([]byte, pnrLength)
	for i := range b {
		b[i] = pnrChars[rand.Intn(len(pnrChars))]
	}
	return string(b)
}

func ValidPNR(pnr string) bool {
	return pnrPattern.MatchString(pnr)
}
