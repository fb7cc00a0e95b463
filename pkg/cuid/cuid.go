package cuid

import (
	"crypto/rand"
	"io"
	mrand "math/rand/v2"
	"os"
	"strings"
	"sync"
	"time"
)

// Prefix is the leading marker of every identifier.
const Prefix = 'c'

const randomLen = 4

// maxBarrenReads bounds consecutive entropy reads that yield no usable byte.
const maxBarrenReads = 8

// MinLength is the shortest valid identifier.
const MinLength = 1 + SegmentWidth + SegmentWidth + fingerprintLen + randomLen

// ID is an opaque, time-ordered identifier.
type ID string

// String returns the identifier text.
func (id ID) String() string { return string(id) }

// Parts decodes the identifier.
func (id ID) Parts() (Parts, error) { return Parse(string(id)) }

// Compare returns -1, 0, 1 based on lexical comparison.
func (id ID) Compare(other ID) int { return strings.Compare(string(id), string(other)) }

// NowMs returns current time in milliseconds since Unix epoch.
func NowMs() int64 { return time.Now().UnixMilli() }

// Option configures a Generator.
type Option func(*Generator)

// WithClock replaces the millisecond clock.
func WithClock(now func() int64) Option {
	return func(g *Generator) {
		if now != nil {
			g.now = now
		}
	}
}

// WithHostname replaces the hostname lookup used for the fingerprint.
func WithHostname(hostname func() (string, error)) Option {
	return func(g *Generator) { g.hostname = hostname }
}

// WithFingerprint pins the fingerprint segment. Values that are not exactly
// four base-36 characters are ignored.
func WithFingerprint(fp string) Option {
	return func(g *Generator) {
		if ValidFingerprint(fp) {
			g.fingerprint = fp
		}
	}
}

// WithRandom replaces the entropy source of the random suffix.
func WithRandom(r io.Reader) Option {
	return func(g *Generator) {
		if r != nil {
			g.random = r
		}
	}
}

// Generator produces identifiers. It is safe for concurrent use.
type Generator struct {
	mu          sync.Mutex
	lastMs      int64
	counter     uint64
	now         func() int64
	hostname    func() (string, error)
	random      io.Reader
	fingerprint string
	buf         [16]byte
}

// New creates a Generator. The fingerprint is computed once here.
func New(opts ...Option) *Generator {
	g := &Generator{
		lastMs:   -1,
		now:      NowMs,
		hostname: os.Hostname,
		random:   rand.Reader,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.fingerprint == "" {
		g.fingerprint = Fingerprint(g.hostname)
	}
	return g
}

var defaultGenerator = sync.OnceValue(func() *Generator { return New() })

// Default returns the lazily built process-wide Generator.
func Default() *Generator { return defaultGenerator() }

// Generate returns the next identifier from the default Generator.
func Generate() ID { return Default().Next() }

// FingerprintValue returns the host segment this generator emits.
func (g *Generator) FingerprintValue() string { return g.fingerprint }

// Next returns a new identifier. It never fails.
func (g *Generator) Next() ID {
	g.mu.Lock()
	defer g.mu.Unlock()

	ms, counter := g.advance()

	var b strings.Builder
	b.Grow(MinLength + 2)
	b.WriteByte(Prefix)
	b.WriteString(Encode(uint64(ms)))
	b.WriteString(Encode(counter))
	b.WriteString(g.fingerprint)
	g.writeRandom(&b, randomLen)
	return ID(b.String())
}

// advance updates the register before anything is encoded. Callers hold mu.
func (g *Generator) advance() (int64, uint64) {
	ms := g.now()
	if ms < 0 {
		ms = 0
	}
	if ms < g.lastMs {
		ms = g.lastMs
	}

	if ms == g.lastMs {
		if g.counter >= MaxCounter {
			for ms <= g.lastMs {
				time.Sleep(time.Millisecond / 8)
				ms = g.now()
			}
			g.counter = 0
		} else {
			g.counter++
		}
	} else {
		g.counter = 0
	}

	g.lastMs = ms
	return ms, g.counter
}

// writeRandom appends n uniformly distributed base-36 characters. Bytes at
// or above 252 are rejected so that every character is equally likely.
// A source that errors, or yields nothing usable for maxBarrenReads reads
// in a row, is replaced by math/rand for the rest of the segment.
func (g *Generator) writeRandom(b *strings.Builder, n int) {
	const limit = 252 // 7 * 36
	barren := 0
	for n > 0 && barren < maxBarrenReads {
		read, err := g.random.Read(g.buf[:])
		read = min(max(read, 0), len(g.buf))
		accepted := false
		for _, v := range g.buf[:read] {
			if v >= limit {
				continue
			}
			b.WriteByte(Alphabet[int(v)%len(Alphabet)])
			accepted = true
			n--
			if n == 0 {
				return
			}
		}
		if err != nil {
			break
		}
		if accepted {
			barren = 0
		} else {
			barren++
		}
	}
	for ; n > 0; n-- {
		b.WriteByte(Alphabet[mrand.IntN(len(Alphabet))])
	}
}
