package view

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type route struct {
	ID   string
	Name string
}

func routesByID(db map[string]route) func(context.Context, string) ([]route, error) {
	return func(_ context.Context, id string) ([]route, error) {
		r, ok := db[id]
		if !ok {
			return nil, nil
		}
		return []route{r}, nil
	}
}

func TestDetailLastRequestWins(t *testing.T) {
	db := map[string]route{
		"A": {"A", "Crosstown"},
		"B": {"B", "Express"},
	}
	c := NewDetail("routes", routesByID(db))

	taskA := c.Select("A")
	taskB := c.Select("B")

	// B resolves first, then the stale A response arrives.
	doneB := taskB(context.Background())
	doneA := taskA(context.Background())
	require.True(t, doneB())
	require.False(t, doneA())

	rec, ok := c.Record()
	require.True(t, ok)
	assert.Equal(t, db["B"], rec)
	key, _ := c.Key()
	assert.Equal(t, "B", key)
	assert.Equal(t, StatusReady, c.Status())
}

func TestDetailLastRequestWinsInOrder(t *testing.T) {
	db := map[string]route{"A": {"A", "a"}, "B": {"B", "b"}}
	c := NewDetail("routes", routesByID(db))

	taskA := c.Select("A")
	taskB := c.Select("B")
	doneA := taskA(context.Background())
	doneB := taskB(context.Background())

	assert.False(t, doneA())
	assert.True(t, doneB())
	rec, _ := c.Record()
	assert.Equal(t, "B", rec.ID)
}

func TestDetailNotFoundIsReady(t *testing.T) {
	c := NewDetail("trips", routesByID(map[string]route{}))

	Run(context.Background(), c.Select("missing"))
	assert.Equal(t, StatusReady, c.Status())
	assert.NoError(t, c.Err())
	_, ok := c.Record()
	assert.False(t, ok)
}

func TestDetailSelectClearsPreviousRecord(t *testing.T) {
	db := map[string]route{"A": {"A", "a"}}
	c := NewDetail("routes", routesByID(db))
	Run(context.Background(), c.Select("A"))

	task := c.Select("A")
	_, ok := c.Record()
	assert.False(t, ok, "record must be cleared while the new lookup loads")
	assert.Equal(t, StatusLoading, c.Status())
	Run(context.Background(), task)
}

func TestDetailFailure(t *testing.T) {
	boom := errors.New("unexpected status code: 500")
	fetch := func(context.Context, string) ([]route, error) { return nil, boom }
	c := NewDetail("routes", fetch)

	Run(context.Background(), c.Select("A"))
	assert.Equal(t, StatusError, c.Status())
	assert.ErrorIs(t, c.Err(), ErrFetchFailed)
}
