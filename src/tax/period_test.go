package tax

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolvePeriod(t *testing.T) {
	now := time.Date(2024, time.August, 20, 14, 30, 0, 0, time.UTC)

	tests := []struct {
		name      string
		label     string
		start     string
		end       string
		wantStart string
		wantEnd   string
		wantErr   bool
	}{
		{name: "month to date", label: "month", wantStart: "2024-08-01", wantEnd: "2024-08-20"},
		{name: "quarter to date", label: "quarter", wantStart: "2024-07-01", wantEnd: "2024-08-20"},
		{name: "year to date", label: "year", wantStart: "2024-01-01", wantEnd: "2024-08-20"},
		{name: "empty label defaults to year", label: "", wantStart: "2024-01-01", wantEnd: "2024-08-20"},
		{name: "explicit bounds override label", label: "month", start: "2024-03-01", end: "2024-03-31", wantStart: "2024-03-01", wantEnd: "2024-03-31"},
		{name: "explicit start only", label: "year", start: "2024-06-15", wantStart: "2024-06-15", wantEnd: "2024-08-20"},
		{name: "unknown label rejected", label: "fortnight", wantErr: true},
		{name: "malformed start rejected", label: "year", start: "15/06/2024", wantErr: true},
		{name: "malformed end rejected", label: "year", end: "not-a-date", wantErr: true},
		{name: "inverted bounds rejected", label: "year", start: "2024-05-01", end: "2024-04-01", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			period, err := ResolvePeriod(tt.label, tt.start, tt.end, now)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidPeriod))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantStart, period.StartDate())
			assert.Equal(t, tt.wantEnd, period.EndDate())
		})
	}
}

func TestPeriodDays(t *testing.T) {
	tests := []struct {
		name  string
		start string
		end   string
		want  int
	}{
		{name: "same day floors at one", start: "2024-08-20", end: "2024-08-20", want: 1},
		{name: "one week", start: "2024-08-01", end: "2024-08-08", want: 7},
		{name: "thirty days", start: "2024-01-01", end: "2024-01-31", want: 30},
		{name: "full year", start: "2024-01-01", end: "2024-12-31", want: 365},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			period, err := ResolvePeriod("year", tt.start, tt.end, time.Now())
			require.NoError(t, err)
			assert.Equal(t, tt.want, period.Days())
		})
	}
}

func TestProject(t *testing.T) {
	mustPeriod := func(start, end string) Period {
		p, err := ResolvePeriod("year", start, end, time.Now())
		require.NoError(t, err)
		return p
	}

	t.Run("thirty day period projects itself monthly", func(t *testing.T) {
		// Gross 3,000.00 over 30 days -> monthly 3,000.00, annual 36,000.00.
		p := Project(300000, mustPeriod("2024-01-01", "2024-01-31"))
		assert.Equal(t, 30, p.Days)
		assert.Equal(t, int64(300000), int64(p.Monthly))
		assert.Equal(t, int64(3600000), int64(p.Annual))
	})

	t.Run("fifteen days doubles up", func(t *testing.T) {
		p := Project(150000, mustPeriod("2024-01-01", "2024-01-16"))
		assert.Equal(t, 15, p.Days)
		assert.Equal(t, int64(300000), int64(p.Monthly))
		assert.Equal(t, int64(3600000), int64(p.Annual))
	})

	t.Run("single day never divides by zero", func(t *testing.T) {
		p := Project(10000, mustPeriod("2024-01-01", "2024-01-01"))
		assert.Equal(t, 1, p.Days)
		assert.Equal(t, int64(300000), int64(p.Monthly)) // 100.00 / (1/30)
	})

	t.Run("zero gross projects zero", func(t *testing.T) {
		p := Project(0, mustPeriod("2024-01-01", "2024-06-30"))
		assert.Equal(t, int64(0), int64(p.Monthly))
		assert.Equal(t, int64(0), int64(p.Annual))
	})
}
