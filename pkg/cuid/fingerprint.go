package cuid

import (
	"crypto/md5" //nolint:gosec // not a security boundary, only spreads hosts apart
	"encoding/hex"
	"os"
)

const fingerprintLen = 4

// FallbackFingerprint is used when the hostname cannot be read.
const FallbackFingerprint = "0000"

// Fingerprint derives the 4-char host segment from hostname. A lookup error
// or an empty hostname yields FallbackFingerprint.
func Fingerprint(hostname func() (string, error)) string {
	if hostname == nil {
		return FallbackFingerprint
	}
	name, err := hostname()
	if err != nil || name == "" {
		return FallbackFingerprint
	}
	sum := md5.Sum([]byte(name))
	return hex.EncodeToString(sum[:])[:fingerprintLen]
}

// HostFingerprint is Fingerprint applied to os.Hostname.
func HostFingerprint() string { return Fingerprint(os.Hostname) }

// ValidFingerprint reports whether fp is exactly four lowercase base-36
// characters.
func ValidFingerprint(fp string) bool {
	if len(fp) != fingerprintLen {
		return false
	}
	for i := 0; i < len(fp); i++ {
		if !isBase36(fp[i]) {
			return false
		}
	}
	return true
}
