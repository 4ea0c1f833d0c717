package pricing

import (
	"context"
	"fmt"
	"log/slog"
	"testing"
)

type settingsStub struct {
	values map[string]string
	err    error
}

func (s *settingsStub) GetSetting(_ context.Context, key string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.values[key], nil
}

func (s *settingsStub) SetSetting(_ context.Context, key, value string) error {
	if s.err != nil {
		return s.err
	}
	s.values[key] = value
	return nil
}

func TestRateCacheRefresh(t *testing.T) {
	stub := &settingsStub{values: map[string]string{rateSettingKey: "41.5"}}
	cache := NewRateCache(stub, 40, slog.Default())

	if got := cache.Rate(); got != 40 {
		t.Fatalf("Rate() before refresh = %v, want fallback 40", got)
	}

	if err := cache.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}

	if got := cache.Rate(); got != 41.5 {
		t.Errorf("Rate() after refresh = %v, want 41.5", got)
	}
}

func TestRateCacheKeepsOldValueOnError(t *testing.T) {
	stub := &settingsStub{values: map[string]string{rateSettingKey: "42.0"}}
	cache := NewRateCache(stub, 40, slog.Default())

	if err := cache.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}

	stub.err = fmt.Errorf("db gone")
	if err := cache.Refresh(context.Background()); err == nil {
		t.Fatal("Refresh() expected error")
	}

	if got := cache.Rate(); got != 42.0 {
		t.Errorf("Rate() = %v, want last good value 42.0", got)
	}
}

func TestRateCacheSet(t *testing.T) {
	stub := &settingsStub{values: map[string]string{}}
	cache := NewRateCache(stub, 40, slog.Default())

	if err := cache.Set(context.Background(), 43.25); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	if got := cache.Rate(); got != 43.25 {
		t.Errorf("Rate() after Set = %v, want 43.25", got)
	}
	if got := stub.values[rateSettingKey]; got != "43.25" {
		t.Errorf("stored setting = %q, want %q", got, "43.25")
	}

	if err := cache.Set(context.Background(), -5); err == nil {
		t.Fatal("Set() with negative rate expected error")
	}
}

func TestRateCacheRejectsGarbage(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{name: "empty", value: ""},
		{name: "not a number", value: "dollar"},
		{name: "negative", value: "-1"},
		{name: "zero", value: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &settingsStub{values: map[string]string{rateSettingKey: tt.value}}
			cache := NewRateCache(stub, 40, slog.Default())

			if err := cache.Refresh(context.Background()); err == nil {
				t.Fatalf("Refresh() with %q expected error", tt.value)
			}
			if got := cache.Rate(); got != 40 {
				t.Errorf("Rate() = %v, want fallback 40", got)
			}
		})
	}
}
