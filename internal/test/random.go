package test

import (
	"fmt"
	"math/rand/v2"
)

const trackingAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// RandomTrackingNumber builds a carrier style tracking code such as "TRK-7Q2MZ8KD".
// The suffix length is drawn from [minLen, maxLen].
func RandomTrackingNumber(minLen, maxLen int) string {
	minLen = max(minLen, 1)
	maxLen = max(maxLen, minLen)
	n := minLen + rand.IntN(maxLen-minLen+1)
	suffix := make([]byte, n)
	for i := range suffix {
		suffix[i] = trackingAlphabet[rand.IntN(len(trackingAlphabet))]
	}
	return "TRK-" + string(suffix)
}

// RandomSubject returns an identity subject unique enough for one test run.
func RandomSubject(prefix string) string {
	return fmt.Sprintf("%s-%08x", prefix, rand.Uint32())
}
