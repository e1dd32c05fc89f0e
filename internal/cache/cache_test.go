package cache

import (
	"errors"
	"testing"

	"gotest.tools/assert"
)

func TestGetOrComputeMemoizes(t *testing.T) {
	c := New[string]()
	calls := 0
	compute := func() (string, error) {
		calls++
		return "rendered", nil
	}

	for i := 0; i < 3; i++ {
		v, err := c.GetOrCompute(TableKey("users"), compute)
		assert.NilError(t, err)
		assert.Equal(t, v, "rendered")
	}

	assert.Equal(t, calls, 1)
	assert.Equal(t, c.Stats(), Stats{Hits: 2, Misses: 1})
}

func TestDistinctConditionsAreDistinctEntries(t *testing.T) {
	c := New[int]()
	n := 0
	compute := func() (int, error) {
		n++
		return n, nil
	}

	a, _ := c.GetOrCompute(ConditionKey("users", "name", "Ann"), compute)
	b, _ := c.GetOrCompute(ConditionKey("users", "name", "Bo"), compute)
	all, _ := c.GetOrCompute(TableKey("users"), compute)

	assert.Equal(t, a, 1)
	assert.Equal(t, b, 2)
	assert.Equal(t, all, 3)
	assert.Equal(t, c.Len(), 3)
}

func TestInvalidateRemovesEveryEntryOfTable(t *testing.T) {
	c := New[string]()
	value := func(s string) func() (string, error) {
		return func() (string, error) { return s, nil }
	}

	c.GetOrCompute(TableKey("users"), value("all"))
	c.GetOrCompute(ConditionKey("users", "age", "30"), value("thirty"))
	c.GetOrCompute(TableKey("orders"), value("orders"))

	removed := c.Invalidate("users")
	assert.Equal(t, removed, 2)
	assert.Equal(t, c.Len(), 1)

	calls := 0
	v, err := c.GetOrCompute(TableKey("users"), func() (string, error) {
		calls++
		return "fresh", nil
	})
	assert.NilError(t, err)
	assert.Equal(t, v, "fresh")
	assert.Equal(t, calls, 1)

	// untouched table is still served from the cache
	v, _ = c.GetOrCompute(TableKey("orders"), value("recomputed"))
	assert.Equal(t, v, "orders")
}

func TestInvalidateUnknownTable(t *testing.T) {
	c := New[string]()
	assert.Equal(t, c.Invalidate("nothing"), 0)
}

func TestErrorsAreNotCached(t *testing.T) {
	c := New[string]()
	boom := errors.New("boom")

	_, err := c.GetOrCompute(TableKey("users"), func() (string, error) { return "", boom })
	assert.Assert(t, errors.Is(err, boom))
	assert.Equal(t, c.Len(), 0)

	v, err := c.GetOrCompute(TableKey("users"), func() (string, error) { return "ok", nil })
	assert.NilError(t, err)
	assert.Equal(t, v, "ok")
}

func TestKeyString(t *testing.T) {
	assert.Equal(t, TableKey("users").String(), "users")
	assert.Equal(t, ConditionKey("users", "name", "Ann").String(), "users[name=Ann]")
}
