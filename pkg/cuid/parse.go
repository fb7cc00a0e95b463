package cuid

import (
	"math"
	"time"

	"github.com/pkg/errors"
)

// ErrMalformed is returned for strings that are not identifiers.
var ErrMalformed = errors.New("cuid: malformed identifier")

// Parts is the decoded view of an identifier.
type Parts struct {
	TimestampMs int64  `json:"timestamp_ms"`
	Counter     uint64 `json:"counter"`
	Fingerprint string `json:"fingerprint"`
	Random      string `json:"random"`
}

// Time returns the timestamp segment as a UTC time.
func (p Parts) Time() time.Time { return time.UnixMilli(p.TimestampMs).UTC() }

// Parse splits s into its segments. The counter segment is always exactly
// SegmentWidth characters; the timestamp takes whatever remains.
func Parse(s string) (Parts, error) {
	if len(s) < MinLength {
		return Parts{}, errors.Wrapf(ErrMalformed, "length %d below %d", len(s), MinLength)
	}
	if s[0] != Prefix {
		return Parts{}, errors.Wrapf(ErrMalformed, "prefix %q", s[0])
	}
	for i := 1; i < len(s); i++ {
		if !isBase36(s[i]) {
			return Parts{}, errors.Wrapf(ErrMalformed, "invalid character %q at %d", s[i], i)
		}
	}

	tsEnd := len(s) - randomLen - fingerprintLen - SegmentWidth
	ts, err := Decode(s[1:tsEnd])
	if err != nil {
		return Parts{}, err
	}
	if ts > math.MaxInt64 {
		return Parts{}, errors.Wrap(ErrMalformed, "timestamp out of range")
	}
	if tsEnd-1 > SegmentWidth && s[1] == '0' {
		return Parts{}, errors.Wrap(ErrMalformed, "over-padded timestamp")
	}
	counter, err := Decode(s[tsEnd : tsEnd+SegmentWidth])
	if err != nil {
		return Parts{}, err
	}
	fpEnd := tsEnd + SegmentWidth + fingerprintLen
	return Parts{
		TimestampMs: int64(ts),
		Counter:     counter,
		Fingerprint: s[tsEnd+SegmentWidth : fpEnd],
		Random:      s[fpEnd:],
	}, nil
}

// Valid reports whether s parses as an identifier.
func Valid(s string) bool {
	_, err := Parse(s)
	return err == nil
}
