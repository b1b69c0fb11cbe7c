package format

import (
	"math"
	"testing"
	"time"
)

func TestDuration(t *testing.T) {
	tests := []struct {
		seconds float64
		want    string
	}{
		{0, "00:00"},
		{65, "01:05"},
		{3661, "1:01:01"},
		{59.9, "00:59"},
		{600, "10:00"},
		{3600, "1:00:00"},
		{36000 + 59, "10:00:59"},
		{-5, "00:00"},
		{math.NaN(), "00:00"},
	}

	for _, tt := range tests {
		if got := Duration(tt.seconds); got != tt.want {
			t.Errorf("Duration(%v) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}

func TestFileSize(t *testing.T) {
	tests := []struct {
		bytes int64
		want  string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{1024, "1 KB"},
		{1536, "1.5 KB"},
		{1048576, "1 MB"},
		{1288490189, "1.2 GB"},
		{5 * 1024 * 1024 * 1024 * 1024, "5 TB"},
		{3 * 1024 * 1024 * 1024 * 1024 * 1024, "3072 TB"},
	}

	for _, tt := range tests {
		if got := FileSize(tt.bytes); got != tt.want {
			t.Errorf("FileSize(%d) = %q, want %q", tt.bytes, got, tt.want)
		}
	}
}

func TestDate(t *testing.T) {
	now := time.Date(2026, time.March, 10, 18, 30, 0, 0, time.UTC)

	tests := []struct {
		name string
		when time.Time
		want string
	}{
		{name: "today", when: time.Date(2026, time.March, 10, 9, 5, 0, 0, time.UTC), want: "Today 09:05"},
		{name: "yesterday", when: time.Date(2026, time.March, 9, 23, 59, 0, 0, time.UTC), want: "Yesterday"},
		{name: "this year", when: time.Date(2026, time.January, 2, 12, 0, 0, 0, time.UTC), want: "Jan 2"},
		{name: "previous year", when: time.Date(2024, time.December, 25, 12, 0, 0, 0, time.UTC), want: "Dec 25, 2024"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Date(tt.when.UnixMilli(), now); got != tt.want {
				t.Errorf("Date(%v) = %q, want %q", tt.when, got, tt.want)
			}
		})
	}
}
