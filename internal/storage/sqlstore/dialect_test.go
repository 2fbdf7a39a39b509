package sqlstore

import (
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRebind(t *testing.T) {
	pg := Dialect{Placeholder: DollarPlaceholder}
	assert.Equal(t, "SELECT a FROM t WHERE x = $1 AND y <= $2", pg.rebind("SELECT a FROM t WHERE x = ? AND y <= ?"))

	lite := Dialect{Placeholder: QuestionPlaceholder}
	assert.Equal(t, "x = ? AND y = ?", lite.rebind("x = ? AND y = ?"))
}

func TestDateColumn(t *testing.T) {
	var d civil.Date
	require.NoError(t, dateColumn{&d}.Scan("2024-02-29"))
	assert.Equal(t, civil.Date{Year: 2024, Month: time.February, Day: 29}, d)

	require.NoError(t, dateColumn{&d}.Scan(time.Date(2023, 1, 31, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, civil.Date{Year: 2023, Month: time.January, Day: 31}, d)

	require.NoError(t, dateColumn{&d}.Scan([]byte("2024-03-01T00:00:00Z")))
	assert.Equal(t, civil.Date{Year: 2024, Month: time.March, Day: 1}, d)

	assert.Error(t, dateColumn{&d}.Scan(42))
}

func TestTimeColumn(t *testing.T) {
	var got time.Time
	require.NoError(t, timeColumn{&got}.Scan("2024-03-01 09:30:00+00:00"))
	assert.True(t, got.Equal(time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)))

	require.NoError(t, timeColumn{&got}.Scan("2024-03-01T09:30:00Z"))
	assert.True(t, got.Equal(time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)))

	assert.Error(t, timeColumn{&got}.Scan("yesterday"))
}
