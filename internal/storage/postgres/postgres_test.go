package postgres

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fdg312/meal-e/internal/config"
)

// Интеграционные тесты запускаются только при заданном MEALE_TEST_DATABASE_URL.
func testDatabaseURL(t *testing.T) string {
	t.Helper()
	url := os.Getenv("MEALE_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("MEALE_TEST_DATABASE_URL is not set")
	}
	return url
}

func TestLookupNutrients_ReorderedColumns(t *testing.T) {
	url := testDatabaseURL(t)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	table := fmt.Sprintf("nutrients_lookup_%d", time.Now().UnixNano())
	queries := config.QueryConfig{
		Nutrients: fmt.Sprintf(
			`SELECT potassium, 'ignored' AS note, calories, name, protein FROM %s WHERE name = ANY($1)`, table),
	}

	s, err := New(ctx, url, queries)
	require.NoError(t, err)
	defer s.Close()

	_, err = s.pool.Exec(ctx, fmt.Sprintf(
		`CREATE TABLE %s (name TEXT PRIMARY KEY, calories DOUBLE PRECISION, protein NUMERIC(8,2), potassium DOUBLE PRECISION)`, table))
	require.NoError(t, err)
	t.Cleanup(func() {
		_, _ = s.pool.Exec(context.Background(), "DROP TABLE IF EXISTS "+table)
	})

	_, err = s.pool.Exec(ctx, fmt.Sprintf(
		`INSERT INTO %s (name, calories, protein, potassium) VALUES ('Spinach', 23, 2.9, 558), ('Eggs', 72, NULL, NULL)`, table))
	require.NoError(t, err)

	got, err := s.LookupNutrients(ctx, []string{"Spinach", "Eggs", "Saffron"})
	require.NoError(t, err)
	require.Len(t, got, 2)

	spinach := got["Spinach"]
	assert.Equal(t, 23.0, *spinach.Calories)
	assert.InDelta(t, 2.9, *spinach.Protein, 1e-9)
	assert.Equal(t, 558.0, *spinach.Potassium)
	assert.Nil(t, spinach.Fat)

	eggs := got["Eggs"]
	assert.Equal(t, 72.0, *eggs.Calories)
	assert.Nil(t, eggs.Protein)
	assert.NotContains(t, got, "Saffron")
}
