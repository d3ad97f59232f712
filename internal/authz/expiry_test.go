package authz

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMaterializeExpiry(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	t.Run("active before end date stays", func(t *testing.T) {
		sub := Subscription{Active: true, EndDate: now.Add(time.Hour)}
		out, changed := MaterializeExpiry(sub, now)
		require.False(t, changed)
		require.True(t, out.Active)
	})

	t.Run("active past end date flips", func(t *testing.T) {
		sub := Subscription{Active: true, EndDate: now.Add(-time.Hour)}
		out, changed := MaterializeExpiry(sub, now)
		require.True(t, changed)
		require.False(t, out.Active)
	})

	t.Run("end date exactly now flips", func(t *testing.T) {
		sub := Subscription{Active: true, EndDate: now}
		out, changed := MaterializeExpiry(sub, now)
		require.True(t, changed)
		require.False(t, out.Active)
	})

	t.Run("inactive is never revived", func(t *testing.T) {
		sub := Subscription{Active: false, EndDate: now.Add(time.Hour)}
		out, changed := MaterializeExpiry(sub, now)
		require.False(t, changed)
		require.False(t, out.Active)
	})
}

func TestDaysLeft(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	cases := []struct {
		name string
		end  time.Time
		want int
	}{
		{"exactly seven days", now.AddDate(0, 0, 7), 7},
		{"just under seven days rounds up", now.AddDate(0, 0, 7).Add(-time.Hour), 7},
		{"just over seven days rounds to eight", now.AddDate(0, 0, 7).Add(time.Hour), 8},
		{"one day", now.AddDate(0, 0, 1), 1},
		{"under a day rounds to one", now.Add(6 * time.Hour), 1},
		{"already past", now.Add(-6 * time.Hour), 0},
		{"a day past is negative", now.AddDate(0, 0, -1).Add(-time.Hour), -1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, DaysLeft(tc.end, now))
		})
	}
}
