package repository

import (
	"database/sql"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestIsMalformedID(t *testing.T) {
	bad := &pq.Error{Code: "22P02", Message: `invalid input syntax for type uuid: "abc"`}

	assert.True(t, IsMalformedID(bad))
	assert.True(t, IsMalformedID(fmt.Errorf("find session: %w", bad)))
	assert.False(t, IsMalformedID(&pq.Error{Code: pqUniqueViolation}))
	assert.False(t, IsMalformedID(sql.ErrNoRows))
	assert.False(t, IsMalformedID(nil))
}
