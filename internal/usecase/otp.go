package usecase

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

// OTPValidity is how long an issued one-time code stays valid.
const OTPValidity = 10 * time.Minute

var otpMax = big.NewInt(1000000)

// GenerateOTP draws a uniform 6-digit numeric code, zero-padded. Callers
// persist the code together with an expiry of now + OTPValidity.
func GenerateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, otpMax)
	if err != nil {
		return "", fmt.Errorf("generating otp: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
