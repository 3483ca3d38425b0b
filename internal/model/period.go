// Package model defines domain types for spending aggregation and forecasting.
package model

import (
	"fmt"
	"strings"
	"time"
)

// Period is one of the twelve calendar months. The zero value is invalid.
type Period int

// Calendar periods in canonical order.
const (
	January Period = iota + 1
	February
	March
	April
	May
	June
	July
	August
	September
	October
	November
	December
)

// PeriodCount is the number of periods in a year.
const PeriodCount = 12

// Periods is the fixed canonical ordering. Aggregated output always follows
// this order, never alphabetical.
var Periods = [PeriodCount]Period{
	January, February, March, April, May, June,
	July, August, September, October, November, December,
}

// Valid reports whether p is one of the twelve calendar periods.
func (p Period) Valid() bool {
	return p >= January && p <= December
}

// Index returns the zero-based position of p in Periods.
func (p Period) Index() int {
	return int(p) - 1
}

// Next returns the period after p, wrapping December to January.
func (p Period) Next() Period {
	if p == December {
		return January
	}
	return p + 1
}

func (p Period) String() string {
	if !p.Valid() {
		return fmt.Sprintf("Period(%d)", int(p))
	}
	return time.Month(p).String()
}

// Short returns the three-letter abbreviation ("Jan").
func (p Period) Short() string {
	s := p.String()
	if len(s) > 3 {
		return s[:3]
	}
	return s
}

// MarshalText encodes the period as its full month name.
func (p Period) MarshalText() ([]byte, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("invalid period %d", int(p))
	}
	return []byte(p.String()), nil
}

// UnmarshalText accepts anything ParsePeriod accepts.
func (p *Period) UnmarshalText(b []byte) error {
	v, ok := ParsePeriod(string(b))
	if !ok {
		return fmt.Errorf("unknown period %q", string(b))
	}
	*p = v
	return nil
}

// ParsePeriod resolves a full month name or three-letter abbreviation,
// case-insensitively.
func ParsePeriod(s string) (Period, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) < 3 {
		return 0, false
	}
	for _, p := range Periods {
		name := strings.ToLower(p.String())
		if s == name || s == name[:3] {
			return p, true
		}
	}
	return 0, false
}
