package helpers

import (
	"crypto/rand"
	"crypto/subtle"
	"math/big"
	"strconv"
	"time"
)

// OTPTTL is how long an emailed code stays valid.
const OTPTTL = 10 * time.Minute

var otpSpan = big.NewInt(900000)

// GenOTPCode returns a random 6-digit code in [100000, 999999].
func GenOTPCode() (string, error) {
	n, err := rand.Int(rand.Reader, otpSpan)
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(n.Int64()+100000, 10), nil
}

// OTPMatches compares a submitted code with the stored one in constant time.
// An empty stored code never matches.
func OTPMatches(stored, submitted string) bool {
	if stored == "" || submitted == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(submitted)) == 1
}
