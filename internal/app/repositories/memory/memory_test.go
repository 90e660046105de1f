package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/abroadcrm/internal/app/auth"
	"github.com/yigit/abroadcrm/internal/app/models"
	"github.com/yigit/abroadcrm/internal/pkg/apperrors"
)

func newTestStore(t *testing.T) (*Store, context.Context) {
	t.Helper()
	s := New()
	base := time.Date(2025, time.January, 1, 9, 0, 0, 0, time.UTC)
	var tick int
	s.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}
	return s, context.Background()
}

func owned(entity auth.Entity, userID int64) auth.Predicate {
	return auth.Predicate{Entity: entity, Scope: auth.ScopeOwned, OwnerID: userID}
}

func createUser(t *testing.T, ctx context.Context, s *Store, username string, role models.Role) *models.User {
	t.Helper()
	u := &models.User{Username: username, Email: username + "@example.com", Role: role, IsActive: true}
	require.NoError(t, (&Users{s}).Create(ctx, u))
	return u
}

func createStudent(t *testing.T, ctx context.Context, s *Store, email string, counselor *int64) *models.Student {
	t.Helper()
	st := &models.Student{FirstName: "Ana", LastName: "Silva", Email: email, AssignedCounselorID: counselor}
	require.NoError(t, (&Students{s}).Create(ctx, st))
	return st
}

func TestUsersUniqueAndScope(t *testing.T) {
	s, ctx := newTestStore(t)
	repo := &Users{s}
	alice := createUser(t, ctx, s, "alice", models.RoleCounselor)
	createUser(t, ctx, s, "bob", models.RoleCounselor)

	err := repo.Create(ctx, &models.User{Username: "alice", Email: "other@example.com"})
	fields, ok := apperrors.FieldsOf(err)
	require.True(t, ok)
	assert.Equal(t, []string{"username"}, fields.Fields())
	assert.ErrorIs(t, err, apperrors.ErrResourceAlreadyExists)

	users, total, err := repo.List(ctx, models.UserFilter{}, owned(auth.EntityUser, alice.ID))
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "alice", users[0].Username)

	_, err = repo.GetByID(ctx, alice.ID+1, owned(auth.EntityUser, alice.ID))
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)

	users, total, err = repo.List(ctx, models.UserFilter{Search: "BO"}, auth.Unscoped(auth.EntityUser))
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "bob", users[0].Username)
}

func TestStudentScopeAndOrdering(t *testing.T) {
	s, ctx := newTestStore(t)
	repo := &Students{s}
	c1 := createUser(t, ctx, s, "c1", models.RoleCounselor)
	c2 := createUser(t, ctx, s, "c2", models.RoleCounselor)

	first := createStudent(t, ctx, s, "one@example.com", &c1.ID)
	createStudent(t, ctx, s, "two@example.com", &c2.ID)
	third := createStudent(t, ctx, s, "three@example.com", &c1.ID)
	createStudent(t, ctx, s, "four@example.com", nil)

	list, total, err := repo.List(ctx, models.StudentFilter{}, owned(auth.EntityStudent, c1.ID))
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Equal(t, third.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)
	require.NotNil(t, list[0].CounselorName)
	assert.Equal(t, "c1", *list[0].CounselorName)

	list, total, err = repo.List(ctx, models.StudentFilter{Ordering: "created_at", Page: models.Page{Number: 2, Size: 3}}, auth.Unscoped(auth.EntityStudent))
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)
	require.Len(t, list, 1)
	assert.Equal(t, "four@example.com", list[0].Email)

	_, err = repo.GetByID(ctx, first.ID, owned(auth.EntityStudent, c2.ID))
	assert.ErrorIs(t, err, apperrors.ErrStudentNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, first.ID, owned(auth.EntityStudent, c2.ID)), apperrors.ErrStudentNotFound)

	stats, err := repo.Stats(ctx, owned(auth.EntityStudent, c1.ID))
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.Total)
	assert.Equal(t, int64(2), stats.ByStatus[models.StudentStatusInquiry])
}

func TestStudentConstraints(t *testing.T) {
	s, ctx := newTestStore(t)
	repo := &Students{s}
	createStudent(t, ctx, s, "dup@example.com", nil)

	err := repo.Create(ctx, &models.Student{Email: "dup@example.com"})
	fields, ok := apperrors.FieldsOf(err)
	require.True(t, ok)
	assert.Equal(t, "student with this email already exists.", fields["email"][0])

	missing := int64(99)
	err = repo.Create(ctx, &models.Student{Email: "new@example.com", AssignedCounselorID: &missing})
	fields, ok = apperrors.FieldsOf(err)
	require.True(t, ok)
	assert.Equal(t, "Invalid pk - object does not exist.", fields["assigned_counselor"][0])
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestStudentOrderingByUpdatedAt(t *testing.T) {
	s, ctx := newTestStore(t)
	repo := &Students{s}
	first := createStudent(t, ctx, s, "one@example.com", nil)
	second := createStudent(t, ctx, s, "two@example.com", nil)

	got, err := repo.GetByID(ctx, first.ID, auth.Unscoped(auth.EntityStudent))
	require.NoError(t, err)
	got.Phone = "+90 555 000 0000"
	require.NoError(t, repo.Update(ctx, got, auth.Unscoped(auth.EntityStudent)))

	list, _, err := repo.List(ctx, models.StudentFilter{Ordering: "-updated_at"}, auth.Unscoped(auth.EntityStudent))
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, first.ID, list[0].ID)
	assert.Equal(t, second.ID, list[1].ID)

	list, _, err = repo.List(ctx, models.StudentFilter{Ordering: "updated_at"}, auth.Unscoped(auth.EntityStudent))
	require.NoError(t, err)
	assert.Equal(t, second.ID, list[0].ID)
}

func TestRemarkFilters(t *testing.T) {
	s, ctx := newTestStore(t)
	c1 := createUser(t, ctx, s, "c1", models.RoleCounselor)
	c2 := createUser(t, ctx, s, "c2", models.RoleCounselor)
	st := createStudent(t, ctx, s, "one@example.com", &c1.ID)
	other := createStudent(t, ctx, s, "two@example.com", &c2.ID)

	remarks := &Remarks{s}
	for _, rm := range []*models.StudentRemark{
		{StudentID: st.ID, CounselorID: c1.ID, ContactType: models.ContactCall, Priority: models.PriorityHigh, Content: "called"},
		{StudentID: st.ID, CounselorID: c1.ID, ContactType: models.ContactEmail, Priority: models.PriorityHigh, Content: "mailed"},
		{StudentID: st.ID, CounselorID: c1.ID, ContactType: models.ContactCall, Priority: models.PriorityLow, Content: "missed"},
		{StudentID: other.ID, CounselorID: c2.ID, ContactType: models.ContactCall, Priority: models.PriorityHigh, Content: "called"},
	} {
		require.NoError(t, remarks.Create(ctx, rm))
	}

	list, total, err := remarks.List(ctx, models.RemarkFilter{ContactType: models.ContactCall}, auth.Unscoped(auth.EntityRemark))
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)

	list, total, err = remarks.List(ctx, models.RemarkFilter{ContactType: models.ContactCall, Priority: models.PriorityHigh}, owned(auth.EntityRemark, c1.ID))
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "called", list[0].Content)
	assert.Equal(t, st.ID, list[0].StudentID)

	stID := st.ID
	_, total, err = remarks.List(ctx, models.RemarkFilter{StudentID: &stID, Priority: models.PriorityLow}, auth.Unscoped(auth.EntityRemark))
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}

func TestCascades(t *testing.T) {
	s, ctx := newTestStore(t)
	counselor := createUser(t, ctx, s, "c1", models.RoleCounselor)
	st := createStudent(t, ctx, s, "one@example.com", &counselor.ID)

	remarks := &Remarks{s}
	require.NoError(t, remarks.Create(ctx, &models.StudentRemark{StudentID: st.ID, CounselorID: counselor.ID, Content: "called"}))

	uni := &models.University{Name: "Uni"}
	require.NoError(t, (&Universities{s}).Create(ctx, uni))
	apps := &Applications{s}
	app := &models.Application{ApplicationID: "APP1", StudentID: st.ID, UniversityID: uni.ID, CurrentStep: 1, TotalSteps: 8}
	require.NoError(t, apps.Create(ctx, app))
	require.NoError(t, apps.CreateDocument(ctx, &models.ApplicationDocument{ApplicationID: app.ID, Name: "Passport"}))

	// deleting the counselor unassigns the student and drops their remarks
	require.NoError(t, (&Users{s}).Delete(ctx, counselor.ID, auth.Unscoped(auth.EntityUser)))
	got, err := (&Students{s}).GetByID(ctx, st.ID, auth.Unscoped(auth.EntityStudent))
	require.NoError(t, err)
	assert.Nil(t, got.AssignedCounselorID)
	assert.Nil(t, got.CounselorName)
	list, err := remarks.ListByStudent(ctx, st.ID)
	require.NoError(t, err)
	assert.Empty(t, list)

	require.NoError(t, (&Students{s}).Delete(ctx, st.ID, auth.Unscoped(auth.EntityStudent)))
	_, err = apps.GetByID(ctx, app.ID, auth.Unscoped(auth.EntityApplication))
	assert.ErrorIs(t, err, apperrors.ErrApplicationNotFound)
	assert.Empty(t, s.documents)
}

func TestApplicationScopeFollowsStudent(t *testing.T) {
	s, ctx := newTestStore(t)
	c1 := createUser(t, ctx, s, "c1", models.RoleCounselor)
	c2 := createUser(t, ctx, s, "c2", models.RoleCounselor)
	st := createStudent(t, ctx, s, "one@example.com", &c1.ID)
	uni := &models.University{Name: "Uni"}
	require.NoError(t, (&Universities{s}).Create(ctx, uni))

	apps := &Applications{s}
	app := &models.Application{ApplicationID: "APP1", StudentID: st.ID, UniversityID: uni.ID}
	require.NoError(t, apps.Create(ctx, app))

	got, err := apps.GetByID(ctx, app.ID, owned(auth.EntityApplication, c1.ID))
	require.NoError(t, err)
	assert.Equal(t, "Ana Silva", got.StudentName)
	assert.Equal(t, "Uni", got.UniversityName)
	assert.Equal(t, models.AppStatusInquiryReceived, got.Status)

	_, total, err := apps.List(ctx, models.ApplicationFilter{}, owned(auth.EntityApplication, c2.ID))
	require.NoError(t, err)
	assert.Zero(t, total)

	err = apps.Create(ctx, &models.Application{ApplicationID: "APP1", StudentID: st.ID, UniversityID: uni.ID})
	fields, ok := apperrors.FieldsOf(err)
	require.True(t, ok)
	assert.Contains(t, fields, "application_id")

	err = apps.Create(ctx, &models.Application{ApplicationID: "APP2", StudentID: st.ID, UniversityID: 42})
	fields, ok = apperrors.FieldsOf(err)
	require.True(t, ok)
	assert.Contains(t, fields, "university")
}

func TestTimelineKeepsOneCurrentEntry(t *testing.T) {
	s, ctx := newTestStore(t)
	st := createStudent(t, ctx, s, "one@example.com", nil)
	uni := &models.University{Name: "Uni"}
	require.NoError(t, (&Universities{s}).Create(ctx, uni))
	apps := &Applications{s}
	app := &models.Application{ApplicationID: "APP1", StudentID: st.ID, UniversityID: uni.ID}
	require.NoError(t, apps.Create(ctx, app))

	day := time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, apps.AddTimelineEntry(ctx, &models.ApplicationTimeline{ApplicationID: app.ID, Status: "submitted", Date: day.AddDate(0, 0, 2), IsCurrent: true}))
	require.NoError(t, apps.AddTimelineEntry(ctx, &models.ApplicationTimeline{ApplicationID: app.ID, Status: "received", Date: day, Completed: true}))
	require.NoError(t, apps.AddTimelineEntry(ctx, &models.ApplicationTimeline{ApplicationID: app.ID, Status: "review", Date: day.AddDate(0, 0, 5), IsCurrent: true}))

	entries, err := apps.ListTimeline(ctx, app.ID)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, []string{"received", "submitted", "review"}, []string{entries[0].Status, entries[1].Status, entries[2].Status})
	assert.False(t, entries[1].IsCurrent)
	assert.True(t, entries[2].IsCurrent)

	assert.ErrorIs(t, apps.AddTimelineEntry(ctx, &models.ApplicationTimeline{ApplicationID: 999}), apperrors.ErrApplicationNotFound)
}

func TestUniversityChildren(t *testing.T) {
	s, ctx := newTestStore(t)
	repo := &Universities{s}
	uni := &models.University{Name: "Uni"}
	require.NoError(t, repo.Create(ctx, uni))
	assert.Equal(t, "standard", uni.PartnershipStatus)

	require.NoError(t, repo.CreateProgram(ctx, &models.UniversityProgram{UniversityID: uni.ID, Name: "MSc Physics"}))
	require.NoError(t, repo.CreateProgram(ctx, &models.UniversityProgram{UniversityID: uni.ID, Name: "BSc Biology"}))
	programs, err := repo.ListPrograms(ctx, uni.ID)
	require.NoError(t, err)
	require.Len(t, programs, 2)
	assert.Equal(t, "BSc Biology", programs[0].Name)
	assert.ErrorIs(t, repo.DeleteProgram(ctx, uni.ID+1, programs[0].ID), apperrors.ErrProgramNotFound)

	_, err = repo.GetRequirement(ctx, uni.ID)
	assert.ErrorIs(t, err, apperrors.ErrRequirementNotFound)

	req := &models.UniversityRequirement{UniversityID: uni.ID, EnglishTests: "IELTS 6.5"}
	require.NoError(t, repo.UpsertRequirement(ctx, req))
	again := &models.UniversityRequirement{UniversityID: uni.ID, EnglishTests: "IELTS 7.0"}
	require.NoError(t, repo.UpsertRequirement(ctx, again))
	assert.Equal(t, req.ID, again.ID)

	got, err := repo.GetRequirement(ctx, uni.ID)
	require.NoError(t, err)
	assert.Equal(t, "IELTS 7.0", got.EnglishTests)

	require.NoError(t, repo.Delete(ctx, uni.ID))
	assert.Empty(t, s.programs)
	assert.Empty(t, s.requirements)
}

func TestEmployeeTargets(t *testing.T) {
	s, ctx := newTestStore(t)
	repo := &Employees{s}
	emp := createUser(t, ctx, s, "emp", models.RoleEmployee)
	other := createUser(t, ctx, s, "other", models.RoleEmployee)

	month := time.Date(2025, time.March, 14, 0, 0, 0, 0, time.UTC)
	target := &models.EmployeeTarget{EmployeeID: emp.ID, TargetType: models.TargetStudents, TargetValue: 10, Month: month}
	require.NoError(t, repo.CreateTarget(ctx, target))
	assert.Equal(t, 1, target.Month.Day())

	err := repo.CreateTarget(ctx, &models.EmployeeTarget{EmployeeID: emp.ID, TargetType: models.TargetStudents, TargetValue: 5, Month: month.AddDate(0, 0, 3)})
	fields, ok := apperrors.FieldsOf(err)
	require.True(t, ok)
	assert.Contains(t, fields, "non_field_errors")

	_, err = repo.GetTarget(ctx, target.ID, owned(auth.EntityTarget, other.ID))
	assert.ErrorIs(t, err, apperrors.ErrTargetNotFound)

	targets, total, err := repo.ListTargets(ctx, models.TargetFilter{Month: &month}, owned(auth.EntityTarget, emp.ID))
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, target.ID, targets[0].ID)

	perf := &models.EmployeePerformance{EmployeeID: emp.ID, AssignedStudents: 3}
	require.NoError(t, repo.UpsertPerformance(ctx, perf))
	got, err := repo.GetPerformance(ctx, emp.ID, owned(auth.EntityPerformance, emp.ID))
	require.NoError(t, err)
	assert.Equal(t, "emp", got.EmployeeName)

	err = repo.UpsertPerformance(ctx, &models.EmployeePerformance{EmployeeID: 404})
	fields, ok = apperrors.FieldsOf(err)
	require.True(t, ok)
	assert.Contains(t, fields, "employee")
}
