package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestIsSerializationFailure(t *testing.T) {
	assert.True(t, isSerializationFailure(&pgconn.PgError{Code: "40001"}))
	assert.True(t, isSerializationFailure(fmt.Errorf("append: %w", &pgconn.PgError{Code: "40P01"})))
	assert.False(t, isSerializationFailure(&pgconn.PgError{Code: "23505"}), "la unicidad no se reintenta")
	assert.False(t, isSerializationFailure(errors.New("40001")), "solo errores del servidor")
}
