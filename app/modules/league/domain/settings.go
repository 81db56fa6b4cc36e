package leaguedomain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Recognized per-league settings.
const (
	BaseKey               = "_BASE"
	KeyCurrentSeason      = "CURRENT_SEASON"
	KeyForceAutopick      = "FORCE_AUTOPICK"
	KeyAllowTies          = "ALLOW_TIES"
	KeyPlayoffScore       = "PLAYOFF_SCORE"
	KeyGameSetDuration    = "GAMESET_DURATION"
	KeyAvgGameDuration    = "AVG_GAME_DURATION"
	KeyParticipationHooks = "PARTICIPATION_HOOKS"
)

// DefaultPlayoffScore weighs the conference championships double and the final x4.
func DefaultPlayoffScore() map[int]int {
	return map[int]int{1: 1, 2: 1, 3: 1, 4: 1, 5: 1, 6: 1, 7: 1, 8: 1, 9: 2, 10: 2, 11: 4}
}

// Settings resolves a key through three layers, most specific first: the
// league's own block, the shared _BASE block, then top-level values.
type Settings struct {
	layers [3]map[string]any
}

// NewSettings splits a raw picker settings tree for the league abbr.
func NewSettings(abbr string, picker map[string]any) Settings {
	var s Settings
	core := make(map[string]any, len(picker))
	for key, value := range picker {
		m, isMap := toStringMap(value)
		switch {
		case key == BaseKey:
			s.layers[1] = m
		case isMap && strings.EqualFold(key, abbr):
			s.layers[0] = m
		default:
			core[key] = value
		}
	}
	s.layers[2] = core
	return s
}

// Lookup walks the layers and returns the first value set for key.
func (s Settings) Lookup(key string) (any, bool) {
	for _, layer := range s.layers {
		if v, ok := layer[key]; ok {
			return v, true
		}
	}
	return nil, false
}

func (s Settings) Bool(key string, def bool) bool {
	v, ok := s.Lookup(key)
	if !ok {
		return def
	}
	b, err := toBool(v)
	if err != nil {
		return def
	}
	return b
}

func (s Settings) Int(key string, def int) int {
	v, ok := s.Lookup(key)
	if !ok {
		return def
	}
	n, err := toInt(v)
	if err != nil {
		return def
	}
	return n
}

func (s Settings) Duration(key string, def time.Duration) time.Duration {
	v, ok := s.Lookup(key)
	if !ok {
		return def
	}
	d, err := toDuration(v)
	if err != nil {
		return def
	}
	return d
}

// IntMap reads a map of round index to weight. Missing keys in the stored
// map are not filled from def; def is only used when key is unset.
func (s Settings) IntMap(key string, def map[int]int) map[int]int {
	v, ok := s.Lookup(key)
	if !ok {
		return def
	}
	m, err := toIntMap(v)
	if err != nil {
		return def
	}
	return m
}

func (s Settings) Strings(key string) []string {
	v, ok := s.Lookup(key)
	if !ok {
		return nil
	}
	out, _ := toStrings(v)
	return out
}

// Validate type-checks every recognized key that is set.
func (s Settings) Validate() error {
	var errs []error
	check := func(key string, conv func(any) error) {
		if v, ok := s.Lookup(key); ok {
			if err := conv(v); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
			}
		}
	}
	check(KeyCurrentSeason, func(v any) error { _, err := toInt(v); return err })
	check(KeyAvgGameDuration, func(v any) error { _, err := toInt(v); return err })
	check(KeyForceAutopick, func(v any) error { _, err := toBool(v); return err })
	check(KeyAllowTies, func(v any) error { _, err := toBool(v); return err })
	check(KeyGameSetDuration, func(v any) error { _, err := toDuration(v); return err })
	check(KeyPlayoffScore, func(v any) error { _, err := toIntMap(v); return err })
	check(KeyParticipationHooks, func(v any) error { _, err := toStrings(v); return err })
	return errors.Join(errs...)
}

func toStringMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			out[fmt.Sprint(k)] = val
		}
		return out, true
	}
	return nil, false
}

func toBool(v any) (bool, error) {
	switch b := v.(type) {
	case bool:
		return b, nil
	case string:
		return strconv.ParseBool(b)
	}
	return false, fmt.Errorf("expected bool, got %T", v)
}

func toInt(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case uint64:
		return int(n), nil
	case float64:
		if n != float64(int(n)) {
			return 0, fmt.Errorf("expected integer, got %v", n)
		}
		return int(n), nil
	case string:
		return strconv.Atoi(strings.TrimSpace(n))
	}
	return 0, fmt.Errorf("expected integer, got %T", v)
}

// toDuration accepts a Go duration string, a number of seconds, or a
// {days, hours, minutes, seconds} block whose parts may be negative.
func toDuration(v any) (time.Duration, error) {
	if s, ok := v.(string); ok {
		return time.ParseDuration(s)
	}
	if m, ok := toStringMap(v); ok {
		units := map[string]time.Duration{
			"days":    24 * time.Hour,
			"hours":   time.Hour,
			"minutes": time.Minute,
			"seconds": time.Second,
		}
		var total time.Duration
		for k, raw := range m {
			unit, known := units[k]
			if !known {
				return 0, fmt.Errorf("unknown duration unit %q", k)
			}
			n, err := toInt(raw)
			if err != nil {
				return 0, fmt.Errorf("%s: %w", k, err)
			}
			total += time.Duration(n) * unit
		}
		return total, nil
	}
	n, err := toInt(v)
	if err != nil {
		return 0, fmt.Errorf("expected duration, got %T", v)
	}
	return time.Duration(n) * time.Second, nil
}

func toIntMap(v any) (map[int]int, error) {
	m, ok := toStringMap(v)
	if !ok {
		return nil, fmt.Errorf("expected map, got %T", v)
	}
	out := make(map[int]int, len(m))
	for k, raw := range m {
		idx, err := strconv.Atoi(k)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", k, err)
		}
		n, err := toInt(raw)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", k, err)
		}
		out[idx] = n
	}
	return out, nil
}

func toStrings(v any) ([]string, error) {
	switch list := v.(type) {
	case string:
		var out []string
		for _, part := range strings.Split(list, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
		return out, nil
	case []string:
		return list, nil
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("expected string, got %T", item)
			}
			out = append(out, s)
		}
		return out, nil
	}
	return nil, fmt.Errorf("expected list of strings, got %T", v)
}

// SettingsSource builds the Settings of a league from its abbreviation.
type SettingsSource func(abbr string) Settings

// NewSettingsSource binds a raw picker settings tree once at startup.
func NewSettingsSource(picker map[string]any) SettingsSource {
	return func(abbr string) Settings {
		return NewSettings(abbr, picker)
	}
}
