package cuid

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Alphabet is the base-36 alphabet used by every segment.
const Alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// SegmentWidth is the minimum width of the timestamp segment and the exact
// width of the counter segment.
const SegmentWidth = 8

// MaxCounter is the largest counter value that fits in one segment.
const MaxCounter uint64 = 2821109907455 // 36^8 - 1

// Encode renders v in base 36, left-padded with '0' to SegmentWidth.
// Values wider than SegmentWidth are returned unpadded.
func Encode(v uint64) string {
	s := strconv.FormatUint(v, 36)
	if len(s) >= SegmentWidth {
		return s
	}
	return strings.Repeat("0", SegmentWidth-len(s)) + s
}

// Decode parses a lowercase base-36 segment produced by Encode.
func Decode(s string) (uint64, error) {
	if s == "" {
		return 0, errors.Wrap(ErrMalformed, "empty segment")
	}
	for i := 0; i < len(s); i++ {
		if !isBase36(s[i]) {
			return 0, errors.Wrapf(ErrMalformed, "invalid character %q in segment %q", s[i], s)
		}
	}
	v, err := strconv.ParseUint(s, 36, 64)
	if err != nil {
		return 0, errors.Wrapf(ErrMalformed, "segment %q: %v", s, err)
	}
	return v, nil
}

func isBase36(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z')
}
