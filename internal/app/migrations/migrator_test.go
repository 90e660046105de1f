package migrations

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/abroadcrm/internal/pkg/dberrors"
)

func readAll(t *testing.T) string {
	t.Helper()
	files, err := fs.Glob(Migrations, "*.sql")
	require.NoError(t, err)
	require.NotEmpty(t, files)

	var all strings.Builder
	for _, name := range files {
		data, err := fs.ReadFile(Migrations, name)
		require.NoError(t, err)
		body := string(data)
		assert.Contains(t, body, "-- +goose Up", name)
		assert.Contains(t, body, "-- +goose Down", name)
		all.WriteString(body)
	}
	return all.String()
}

func TestMigrationsDeclareTranslatedConstraints(t *testing.T) {
	schema := readAll(t)
	for name := range dberrors.Constraints {
		assert.Contains(t, schema, "CONSTRAINT "+name+" ", "constraint %s is translated but never declared", name)
	}
}

func TestMigrationsCounselorDeletionNullsStudents(t *testing.T) {
	schema := readAll(t)
	idx := strings.Index(schema, "students_assigned_counselor_id_fkey")
	require.Greater(t, idx, 0)
	assert.Contains(t, schema[idx:idx+200], "ON DELETE SET NULL")
}
