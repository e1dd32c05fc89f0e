package engine

import (
	"errors"
	"fmt"
	"testing"

	"gotest.tools/assert"
)

func TestErrorsIsMatchesKind(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", notFound("users"))

	assert.Assert(t, errors.Is(err, ErrNotFound))
	assert.Assert(t, !errors.Is(err, ErrAlreadyExists))

	kind, ok := KindOf(err)
	assert.Assert(t, ok)
	assert.Equal(t, kind, KindNotFound)

	_, ok = KindOf(errors.New("disk on fire"))
	assert.Assert(t, !ok)
}

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		err      *Error
		expected string
	}{
		{alreadyExists("users"), `table "users" already exists`},
		{notFound("users"), `table "users" does not exist`},
		{malformedColumn("name", ""), `invalid column "name": expected format "name:type"`},
		{malformedColumn("ID:int", "ID is assigned automatically"), `invalid column "ID:int": ID is assigned automatically`},
		{arityMismatch("users", 2, 3), `table "users" expects 2 values, got 3`},
		{noMatchingRecords("users", Condition{"name", "Bo"}), `no records in table "users" match name = Bo`},
		{Cancelled("drop table users"), "operation cancelled"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.err.Error(), tt.expected)
	}
}
