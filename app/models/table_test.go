package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTable(t *testing.T) {
	table, err := NewTable(50, 1, "Window row")
	require.NoError(t, err)
	assert.NotEmpty(t, table.QRCode)
	assert.True(t, table.IsAvailable())

	other, err := NewTable(50, 1, "Window row")
	require.NoError(t, err)
	assert.NotEqual(t, table.QRCode, other.QRCode)
}

func TestNewTableRejectsInvalidRate(t *testing.T) {
	_, err := NewTable(0, 1, "")
	assert.Error(t, err)

	_, err = NewTable(50, 0, "")
	assert.Error(t, err)
}

func TestTableIsAvailable(t *testing.T) {
	table := &Table{}
	assert.True(t, table.IsAvailable())

	table.IsOccupied = true
	assert.False(t, table.IsAvailable())

	table.IsOccupied = false
	table.IsDisabled = true
	assert.False(t, table.IsAvailable())
}

func TestCreditSessionDuration(t *testing.T) {
	start := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	session := &CreditSession{StartTime: start, Status: SessionStatusActive}

	now := start.Add(90 * time.Minute)
	assert.Equal(t, 90*time.Minute, session.Duration(now))
	assert.True(t, session.IsOpen())

	end := start.Add(2 * time.Hour)
	session.EndTime = &end
	session.Status = SessionStatusCompleted
	// Closed sessions report the recorded span regardless of now
	assert.Equal(t, 2*time.Hour, session.Duration(now.Add(24*time.Hour)))
	assert.False(t, session.IsOpen())
}
