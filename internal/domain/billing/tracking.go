package billing

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

const (
	trackingPrefix      = "PKG"
	trackingRandomBytes = 3
)

var ErrMalformedTrackingID = errors.New("malformed tracking id")

// TrackingIDGenerator builds identifiers of the form PKG-<time>-<random>,
// where <time> is the creation instant in base-36 milliseconds and <random>
// is hex drawn from Rand.
type TrackingIDGenerator struct {
	Now  func() time.Time
	Rand io.Reader
}

func NewTrackingIDGenerator() *TrackingIDGenerator {
	return &TrackingIDGenerator{Now: time.Now, Rand: rand.Reader}
}

func (g *TrackingIDGenerator) New() (string, error) {
	now := time.Now
	if g.Now != nil {
		now = g.Now
	}
	src := rand.Reader
	if g.Rand != nil {
		src = g.Rand
	}

	buf := make([]byte, trackingRandomBytes)
	if _, err := io.ReadFull(src, buf); err != nil {
		return "", fmt.Errorf("read tracking id entropy: %w", err)
	}

	stamp := strings.ToUpper(strconv.FormatInt(now().UnixMilli(), 36))
	random := strings.ToUpper(hex.EncodeToString(buf))

	return trackingPrefix + "-" + stamp + "-" + random, nil
}

// ParseTrackingID returns the creation time embedded in a tracking id.
func ParseTrackingID(id string) (time.Time, error) {
	parts := strings.Split(id, "-")
	if len(parts) != 3 || parts[0] != trackingPrefix {
		return time.Time{}, ErrMalformedTrackingID
	}
	if len(parts[2]) < trackingRandomBytes*2 {
		return time.Time{}, ErrMalformedTrackingID
	}
	if _, err := hex.DecodeString(parts[2]); err != nil {
		return time.Time{}, ErrMalformedTrackingID
	}

	ms, err := strconv.ParseInt(strings.ToLower(parts[1]), 36, 64)
	if err != nil || ms < 0 {
		return time.Time{}, ErrMalformedTrackingID
	}
	return time.UnixMilli(ms), nil
}
