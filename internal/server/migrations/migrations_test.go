package migrations

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationsEmbedded(t *testing.T) {
	names, err := fs.Glob(Migrations, "*.sql")
	require.NoError(t, err)
	require.NotEmpty(t, names)

	body, err := fs.ReadFile(Migrations, "00001_create_usuarios.sql")
	require.NoError(t, err)

	text := string(body)
	assert.Contains(t, text, "-- +goose Up")
	assert.Contains(t, text, "-- +goose Down")
	for _, col := range []string{"nombre", "email", "password", "confirmado", "token"} {
		assert.True(t, strings.Contains(text, col), "missing column %s", col)
	}
	assert.Contains(t, text, "UNIQUE (email)")
}
