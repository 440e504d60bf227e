package otp

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"
)

var ErrInvalidRange = errors.New("otp: min must not exceed max")

// Booking code and appointment token bounds, both inclusive.
const (
	CodeMin  = 100000
	CodeMax  = 999999
	TokenMin = 1000
	TokenMax = 9999
)

// GenerateInRange returns a uniformly distributed integer in [min, max]
// drawn from crypto/rand.
func GenerateInRange(min, max int) (int, error) {
	if min > max {
		return 0, ErrInvalidRange
	}
	span := big.NewInt(int64(max) - int64(min) + 1)
	n, err := rand.Int(rand.Reader, span)
	if err != nil {
		return 0, fmt.Errorf("otp: read random: %w", err)
	}
	return min + int(n.Int64()), nil
}

// GenerateCode creates a six digit booking code.
func GenerateCode() (string, error) {
	n, err := GenerateInRange(CodeMin, CodeMax)
	if err != nil {
		return "", err
	}
	return strconv.Itoa(n), nil
}

// GenerateToken creates the four digit token handed to a patient on confirmation.
func GenerateToken() (int, error) {
	return GenerateInRange(TokenMin, TokenMax)
}

// Hash returns the hex SHA-256 of the trimmed code.
func Hash(code string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(code)))
	return hex.EncodeToString(sum[:])
}
