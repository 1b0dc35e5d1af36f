package config

import (
	"log"
	"slices"
)

// Startup guards. Each one stops the process before any listener or
// connection is opened.

func MustNonEmpty(value, envName string) {
	if value == "" {
		missing(envName)
	}
}

func MustNonEmptyBytes(value []byte, envName string) {
	if len(value) == 0 {
		missing(envName)
	}
}

// MustOneOf stops the process when value is not among allowed.
func MustOneOf(value, envName string, allowed ...string) {
	if !slices.Contains(allowed, value) {
		log.Fatalf("env %s=%q is not one of %v", envName, value, allowed)
	}
}

func missing(envName string) {
	log.Fatalf("storefront: required env %s is not set", envName)
}
