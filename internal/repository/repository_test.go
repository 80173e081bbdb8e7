package repository

import (
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
)

func TestNewBookingRepository(t *testing.T) {
	pool := &pgxpool.Pool{}
	repo := NewBookingRepository(pool)
	assert.NotNil(t, repo)
}

func TestNewResourceRepository(t *testing.T) {
	pool := &pgxpool.Pool{}
	repo := NewResourceRepository(pool)
	assert.NotNil(t, repo)
}

func TestNewWorkflowRepository(t *testing.T) {
	pool := &pgxpool.Pool{}
	repo := NewWorkflowRepository(pool)
	assert.NotNil(t, repo)
}
