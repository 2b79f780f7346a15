package solidity

import (
	"errors"
	"strings"
)

const (
	minSourceLen    = 10
	maxContractName = 50
	defaultName     = "Contract"
)

var (
	errEmptySource = errors.New("source code cannot be empty")
	errShortSource = errors.New("source code too short to be a valid contract")
	errNotSolidity = errors.New("source code does not appear to be Solidity")
)

var solidityKeywords = []string{"contract", "function", "pragma", "solidity"}

// Validate performs the cheap pre-dispatch checks on submitted source.
func Validate(code string) error {
	trimmed := strings.TrimSpace(code)
	if trimmed == "" {
		return errEmptySource
	}
	if len(trimmed) < minSourceLen {
		return errShortSource
	}
	low := strings.ToLower(trimmed)
	for _, kw := range solidityKeywords {
		if strings.Contains(low, kw) {
			return nil
		}
	}
	return errNotSolidity
}

// SanitizeName keeps [A-Za-z0-9_-], truncates to 50 bytes and defaults to "Contract".
func SanitizeName(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			b.WriteRune(r)
		}
		if b.Len() == maxContractName {
			break
		}
	}
	if b.Len() == 0 {
		return defaultName
	}
	return b.String()
}
