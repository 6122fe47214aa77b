// Package utils provides utility functions for the application.
package utils

import (
	"fmt"
	"strings"
)

// NumberingPlan describes the national numbering plan recipients are
// validated against: a country code, the set of permitted operator
// prefixes, and a fixed subscriber number length.
type NumberingPlan struct {
	CountryCode      string
	OperatorPrefixes []string
	SubscriberLength int
}

// DefaultGhanaPlan is the numbering plan for Ghanaian mobile networks.
func DefaultGhanaPlan() NumberingPlan {
	return NumberingPlan{
		CountryCode:      "233",
		OperatorPrefixes: []string{"20", "23", "24", "25", "26", "27", "28", "50", "53", "54", "55", "56", "57", "59"},
		SubscriberLength: 7,
	}
}

// NormalizeMSISDN validates a recipient phone number against the plan and
// returns it in canonical international form without a leading plus
// (e.g. 233XXXXXXXXX). Accepted inputs: +233XXXXXXXXX, 233XXXXXXXXX and
// the local 0XXXXXXXXX form.
func NormalizeMSISDN(plan NumberingPlan, raw string) (string, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "+")

	switch {
	case strings.HasPrefix(s, plan.CountryCode):
		s = strings.TrimPrefix(s, plan.CountryCode)
	case strings.HasPrefix(s, "0"):
		s = strings.TrimPrefix(s, "0")
	default:
		return "", fmt.Errorf("number %q does not match country code %s", raw, plan.CountryCode)
	}

	if !isAllDigits(s) {
		return "", fmt.Errorf("number %q contains non-digit characters", raw)
	}

	var prefix string
	for _, p := range plan.OperatorPrefixes {
		if strings.HasPrefix(s, p) {
			prefix = p
			break
		}
	}
	if prefix == "" {
		return "", fmt.Errorf("number %q has an unknown operator prefix", raw)
	}

	if len(s)-len(prefix) != plan.SubscriberLength {
		return "", fmt.Errorf("number %q has an invalid subscriber length", raw)
	}

	return plan.CountryCode + s, nil
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
