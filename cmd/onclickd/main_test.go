package main

import (
	"testing"

	"github.com/smallbiznis/onclick/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterSnowflakeUsesConfiguredNode(t *testing.T) {
	a, err := RegisterSnowflake(config.Config{SnowflakeNode: 1})
	require.NoError(t, err)
	b, err := RegisterSnowflake(config.Config{SnowflakeNode: 2})
	require.NoError(t, err)

	assert.Equal(t, int64(1), a.Generate().Node())
	assert.Equal(t, int64(2), b.Generate().Node())
}

func TestRegisterSnowflakeRejectsOutOfRangeNode(t *testing.T) {
	_, err := RegisterSnowflake(config.Config{SnowflakeNode: 1024})
	require.Error(t, err)
}
