package parsers

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/drivefinance/backend/src/logger"
	"github.com/username/drivefinance/backend/src/models"
)

func TestMain(m *testing.M) {
	logger.InitLogger("error")
	os.Exit(m.Run())
}

func TestGenericParserParse(t *testing.T) {
	t.Run("maps header columns in any order", func(t *testing.T) {
		csvData := `date,notes,amount,app,trips_count,hours_worked,km_traveled
2024-01-15,night shift,150.00,uber,10,8.5,120.3
2024-01-16,,80.50,ifood,5,4,60
`
		earnings, err := NewGenericParser().Parse(strings.NewReader(csvData))
		require.NoError(t, err)
		require.Len(t, earnings, 2)

		first := earnings[0]
		assert.Equal(t, models.PlatformUber, first.App)
		assert.Equal(t, models.Money(15000), first.Amount)
		assert.Equal(t, "2024-01-15", first.Date)
		assert.Equal(t, "night shift", first.Notes)
		require.NotNil(t, first.TripsCount)
		assert.Equal(t, int64(10), *first.TripsCount)
		require.NotNil(t, first.HoursWorked)
		assert.Equal(t, 8.5, *first.HoursWorked)
		require.NotNil(t, first.KmTraveled)
		assert.Equal(t, 120.3, *first.KmTraveled)

		second := earnings[1]
		assert.Equal(t, models.PlatformIfood, second.App)
		assert.Equal(t, models.Money(8050), second.Amount)
		assert.Empty(t, second.Notes)
	})

	t.Run("requires app, amount and date columns", func(t *testing.T) {
		csvData := "app,amount\nuber,100.00\n"
		_, err := NewGenericParser().Parse(strings.NewReader(csvData))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "date")
	})

	t.Run("skips rows with bad amount or date", func(t *testing.T) {
		csvData := `app,amount,date
uber,abc,2024-01-15
uber,-10.00,2024-01-15
uber,100.00,yesterday
uber,100.00,2024-01-15
`
		earnings, err := NewGenericParser().Parse(strings.NewReader(csvData))
		require.NoError(t, err)
		require.Len(t, earnings, 1)
		assert.Equal(t, models.Money(10000), earnings[0].Amount)
	})

	t.Run("accepts day-first dates", func(t *testing.T) {
		csvData := "app,amount,date\n99,55.00,31/01/2024\n"
		earnings, err := NewGenericParser().Parse(strings.NewReader(csvData))
		require.NoError(t, err)
		require.Len(t, earnings, 1)
		assert.Equal(t, "2024-01-31", earnings[0].Date)
	})

	t.Run("normalizes platform names", func(t *testing.T) {
		csvData := `app,amount,date
Uber Eats,10.00,2024-01-15
UBEREATS,10.00,2024-01-15
taxi,10.00,2024-01-15
Rappi,10.00,2024-01-15
`
		earnings, err := NewGenericParser().Parse(strings.NewReader(csvData))
		require.NoError(t, err)
		require.Len(t, earnings, 4)
		assert.Equal(t, models.PlatformUberEats, earnings[0].App)
		assert.Equal(t, models.PlatformUberEats, earnings[1].App)
		assert.Equal(t, models.PlatformOther, earnings[2].App)
		assert.Equal(t, models.PlatformRappi, earnings[3].App)
	})
}

func TestUberParserParse(t *testing.T) {
	t.Run("parses weekly statement rows", func(t *testing.T) {
		csvData := `Week Starting,Total Earnings,Trips,Online Hours
2024-01-08,R$1250.75,42,38.5
Jan 15 2024,invalid,1,1
01/22/2024,R$980.00,35,30
`
		earnings, err := NewUberParser().Parse(strings.NewReader(csvData))
		require.NoError(t, err)
		require.Len(t, earnings, 2)

		first := earnings[0]
		assert.Equal(t, models.PlatformUber, first.App)
		assert.Equal(t, models.Money(125075), first.Amount)
		assert.Equal(t, "2024-01-08", first.Date)
		require.NotNil(t, first.TripsCount)
		assert.Equal(t, int64(42), *first.TripsCount)
		require.NotNil(t, first.HoursWorked)
		assert.Equal(t, 38.5, *first.HoursWorked)

		second := earnings[1]
		assert.Equal(t, "2024-01-22", second.Date)
		assert.Equal(t, models.Money(98000), second.Amount)
	})

	t.Run("tolerates short rows", func(t *testing.T) {
		csvData := "Week Starting,Total Earnings\n2024-01-08,R$500.00\n\n"
		earnings, err := NewUberParser().Parse(strings.NewReader(csvData))
		require.NoError(t, err)
		require.Len(t, earnings, 1)
		assert.Nil(t, earnings[0].TripsCount)
	})
}

func TestGetParser(t *testing.T) {
	tests := []struct {
		source  string
		want    interface{}
		wantErr bool
	}{
		{source: "", want: &GenericParser{}},
		{source: "generic", want: &GenericParser{}},
		{source: "uber", want: &UberParser{}},
		{source: "ifood", wantErr: true},
	}

	for _, tt := range tests {
		t.Run("source "+tt.source, func(t *testing.T) {
			parser, err := GetParser(tt.source)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.want, parser)
		})
	}
}
