package auth

import (
	"testing"

	"github.com/Masterminds/squirrel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/abroadcrm/internal/app/models"
)

var allEntities = []Entity{EntityUser, EntityStudent, EntityRemark, EntityApplication, EntityPerformance, EntityTarget}

func TestVisibleRows_Roles(t *testing.T) {
	policy := NewRolePolicy()

	admin := Identity{UserID: 1, Role: models.RoleAdmin}
	counselor := Identity{UserID: 7, Role: models.RoleCounselor}
	employee := Identity{UserID: 9, Role: models.RoleEmployee}
	stranger := Identity{UserID: 11, Role: models.Role("intern")}

	for _, e := range allEntities {
		assert.Equal(t, ScopeAll, policy.VisibleRows(admin, e).Scope, e)
		assert.Equal(t, ScopeOwned, policy.VisibleRows(counselor, e).Scope, e)
		assert.Equal(t, ScopeOwned, policy.VisibleRows(employee, e).Scope, e)
		assert.Equal(t, ScopeNone, policy.VisibleRows(stranger, e).Scope, e)
	}

	assert.Equal(t, ScopeNone, policy.VisibleRows(admin, Entity("invoice")).Scope)
}

func TestPredicate_Allows(t *testing.T) {
	policy := NewRolePolicy()
	own := int64(7)
	other := int64(8)

	p := policy.VisibleRows(Identity{UserID: 7, Role: models.RoleCounselor}, EntityStudent)
	assert.True(t, p.Allows(&own))
	assert.False(t, p.Allows(&other))
	assert.False(t, p.Allows(nil), "unassigned students are not visible to counselors")

	admin := policy.VisibleRows(Identity{UserID: 1, Role: models.RoleAdmin}, EntityStudent)
	assert.True(t, admin.Allows(nil))
	assert.True(t, admin.Allows(&other))

	none := Predicate{Entity: EntityStudent, Scope: ScopeNone}
	assert.False(t, none.Allows(&own))
}

func TestPredicate_SQL(t *testing.T) {
	sb := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	policy := NewRolePolicy()
	counselor := Identity{UserID: 7, Role: models.RoleCounselor}

	tests := []struct {
		entity Entity
		sql    string
	}{
		{EntityUser, "SELECT id FROM t WHERE users.id = $1 AND deleted = $2"},
		{EntityStudent, "SELECT id FROM t WHERE students.assigned_counselor_id = $1 AND deleted = $2"},
		{EntityRemark, "SELECT id FROM t WHERE student_remarks.counselor_id = $1 AND deleted = $2"},
		{EntityApplication, "SELECT id FROM t WHERE applications.student_id IN (SELECT students.id FROM students WHERE students.assigned_counselor_id = $1) AND deleted = $2"},
		{EntityTarget, "SELECT id FROM t WHERE employee_targets.employee_id = $1 AND deleted = $2"},
	}

	for _, tt := range tests {
		t.Run(string(tt.entity), func(t *testing.T) {
			sql, args, err := sb.Select("id").From("t").
				Where(policy.VisibleRows(counselor, tt.entity)).
				Where(squirrel.Eq{"deleted": false}).
				ToSql()
			require.NoError(t, err)
			assert.Equal(t, tt.sql, sql)
			assert.Equal(t, []interface{}{int64(7), false}, args)
		})
	}
}

func TestPredicate_SQLAllAndNone(t *testing.T) {
	sb := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

	sql, args, err := sb.Delete("students").
		Where(squirrel.Eq{"id": 3}).
		Where(Predicate{Entity: EntityStudent, Scope: ScopeAll}).
		ToSql()
	require.NoError(t, err)
	assert.Equal(t, "DELETE FROM students WHERE id = $1 AND TRUE", sql)
	assert.Equal(t, []interface{}{3}, args)

	sql, _, err = sb.Select("id").From("students").Where(Predicate{Entity: EntityStudent, Scope: ScopeNone}).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT id FROM students WHERE FALSE", sql)

	_, _, err = Predicate{Entity: Entity("invoice"), Scope: ScopeOwned}.ToSql()
	assert.Error(t, err)
}
