package config

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidLifetime is returned for empty, non-positive or unparsable token lifetimes.
var ErrInvalidLifetime = errors.New("invalid token lifetime")

// Lifetime is a token lifetime read from the environment.
// Accepted forms: Go durations ("15m", "1h30m"), day and week
// suffixes ("7d", "2w", "1.5d") and bare integers meaning seconds ("3600").
type Lifetime time.Duration

// Decode implements envconfig.Decoder.
func (l *Lifetime) Decode(value string) error {
	d, err := ParseLifetime(value)
	if err != nil {
		return err
	}
	*l = Lifetime(d)
	return nil
}

// Duration returns the lifetime as a time.Duration.
func (l Lifetime) Duration() time.Duration {
	return time.Duration(l)
}

const maxLifetimeSeconds = math.MaxInt64 / int64(time.Second)

var unitMultipliers = map[byte]time.Duration{
	'd': 24 * time.Hour,
	'w': 7 * 24 * time.Hour,
}

// ParseLifetime parses a lifetime string. The result is always positive.
func ParseLifetime(value string) (time.Duration, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		return 0, fmt.Errorf("%w: empty value", ErrInvalidLifetime)
	}

	var d time.Duration
	if secs, err := strconv.ParseInt(v, 10, 64); err == nil {
		if secs > maxLifetimeSeconds {
			return 0, fmt.Errorf("%w: %q is out of range", ErrInvalidLifetime, value)
		}
		d = time.Duration(secs) * time.Second
	} else if mult, ok := unitMultipliers[v[len(v)-1]]; ok {
		n, err := strconv.ParseFloat(v[:len(v)-1], 64)
		if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
			return 0, fmt.Errorf("%w: %q", ErrInvalidLifetime, value)
		}
		// float64(MaxInt64) rounds up to 2^63, so equality already overflows.
		f := n * float64(mult)
		if math.Abs(f) >= float64(math.MaxInt64) {
			return 0, fmt.Errorf("%w: %q is out of range", ErrInvalidLifetime, value)
		}
		d = time.Duration(f)
	} else {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidLifetime, value)
		}
		d = parsed
	}

	if d <= 0 {
		return 0, fmt.Errorf("%w: %q must be positive", ErrInvalidLifetime, value)
	}
	return d, nil
}
