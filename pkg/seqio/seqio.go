// Package seqio reads score sequences from text, JSON and record files.
package seqio

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/Sumatoshi-tech/maxscore/pkg/safeconv"
)

// Sentinel errors for input reading.
var (
	// ErrNoData is returned when an input holds no scores at all.
	ErrNoData = errors.New("no data found")
	// ErrMalformed is returned for a token or row that cannot be parsed.
	ErrMalformed = errors.New("malformed input")
	// ErrInputTooLarge is returned when an input exceeds the size limit.
	ErrInputTooLarge = errors.New("input too large")
	// ErrInvalidSize is returned for a size limit that cannot be parsed.
	ErrInvalidSize = errors.New("invalid size")
	// ErrSchema is returned when a JSON document violates the input schema.
	ErrSchema = errors.New("input does not match schema")
	// ErrBadColumn is returned for a record column that does not hold a number.
	ErrBadColumn = errors.New("record column is not numeric")
)

// ParseSize parses a human-readable size such as "64MB". Empty and "0" mean
// no limit and return 0.
func ParseSize(size string) (int64, error) {
	trimmed := strings.TrimSpace(size)
	if trimmed == "" || trimmed == "0" {
		return 0, nil
	}

	parsed, err := humanize.ParseBytes(trimmed)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSize, size)
	}

	limit, err := safeconv.ToInt64(parsed)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidSize, err)
	}

	return limit, nil
}

// Limit wraps r so that reading more than maxSize bytes fails with
// ErrInputTooLarge. An empty or zero maxSize returns r unchanged.
func Limit(r io.Reader, maxSize string) (io.Reader, error) {
	limit, err := ParseSize(maxSize)
	if err != nil {
		return nil, err
	}

	if limit == 0 {
		return r, nil
	}

	return &limitedReader{r: r, remaining: limit, limit: limit}, nil
}

// limitedReader is io.LimitedReader that reports overruns instead of EOF.
type limitedReader struct {
	r         io.Reader
	remaining int64
	limit     int64
}

func (l *limitedReader) Read(p []byte) (int, error) {
	if l.remaining < 0 {
		return 0, fmt.Errorf("%w: more than %s", ErrInputTooLarge, humanize.IBytes(uint64(l.limit)))
	}

	// Read one byte past the limit so an input of exactly limit bytes passes.
	if int64(len(p)) > l.remaining+1 {
		p = p[:l.remaining+1]
	}

	n, err := l.r.Read(p)
	l.remaining -= int64(n)

	if l.remaining < 0 {
		n += int(l.remaining)

		return n, fmt.Errorf("%w: more than %s", ErrInputTooLarge, humanize.IBytes(uint64(l.limit)))
	}

	return n, err
}
