package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

// NewClock returns the wall clock, or a frozen clock when FakeDatetimeNow is set.
func (c *Config) NewClock() (clock.Clock, error) {
	if strings.TrimSpace(c.FakeDatetimeNow) == "" {
		return clock.New(), nil
	}
	now, err := ParseFakeNow(c.FakeDatetimeNow, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	mock := clock.NewMock()
	mock.Set(now)
	return mock, nil
}

// ParseFakeNow accepts RFC3339 or a natural-language time relative to base.
func ParseFakeNow(text string, base time.Time) (time.Time, error) {
	text = strings.TrimSpace(text)
	if t, err := time.Parse(time.RFC3339, text); err == nil {
		return t, nil
	}

	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)

	r, err := w.Parse(strings.ToLower(text), base)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid fake_datetime_now %q: %w", text, err)
	}
	if r == nil {
		return time.Time{}, fmt.Errorf("invalid fake_datetime_now %q: no time found", text)
	}
	return r.Time, nil
}
