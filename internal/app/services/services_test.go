package services

import (
	"context"
	"mime/multipart"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/abroadcrm/internal/app/auth"
	"github.com/yigit/abroadcrm/internal/app/models"
	"github.com/yigit/abroadcrm/internal/app/models/dto"
	"github.com/yigit/abroadcrm/internal/app/repositories"
	"github.com/yigit/abroadcrm/internal/app/repositories/memory"
	"github.com/yigit/abroadcrm/internal/pkg/apperrors"
)

// fakeStorage records saved and deleted keys
type fakeStorage struct {
	saved   []string
	deleted []string
}

func (f *fakeStorage) Save(_ context.Context, fh *multipart.FileHeader, dir string) (string, error) {
	key := dir + "/" + fh.Filename
	f.saved = append(f.saved, key)
	return key, nil
}

func (f *fakeStorage) Delete(_ context.Context, key string) error {
	f.deleted = append(f.deleted, key)
	return nil
}

func (f *fakeStorage) URL(_ context.Context, key string) (string, error) {
	return "https://files.test/" + key, nil
}

type fixture struct {
	repos   *repositories.Repositories
	storage *fakeStorage
	svc     *Services
	admin   auth.Identity
	alice   auth.Identity
	bob     auth.Identity
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{repos: memory.New().Repositories(), storage: &fakeStorage{}}
	f.svc = NewServices(Dependencies{
		Repos:   f.repos,
		Storage: f.storage,
		Policy:  auth.NewRolePolicy(),
		Logger:  zerolog.Nop(),
	})
	f.admin = f.user(t, "root", models.RoleAdmin)
	f.alice = f.user(t, "alice", models.RoleCounselor)
	f.bob = f.user(t, "bob", models.RoleCounselor)
	return f
}

func (f *fixture) user(t *testing.T, username string, role models.Role) auth.Identity {
	t.Helper()
	u := &models.User{Username: username, Email: username + "@example.com", Role: role, IsActive: true, PasswordHash: "x"}
	require.NoError(t, f.repos.Users.Create(context.Background(), u))
	return auth.Identity{UserID: u.ID, Username: u.Username, Role: u.Role}
}

func studentRequest(email string) dto.StudentRequest {
	return dto.StudentRequest{
		FirstName:        "Ana",
		LastName:         "Silva",
		Email:            email,
		Phone:            "5550100",
		DateOfBirth:      "2003-04-12",
		Gender:           "female",
		Address:          "12 Harbour Road",
		CurrentEducation: "bachelor",
		FieldOfStudy:     "Computer Science",
		Institution:      "City College",
		GPA:              "3.6",
		GraduationYear:   2024,
		PreferredCountry: "Canada",
		IntendedProgram:  "master",
		PreferredField:   "Data Science",
		IntakeYear:       "Fall 2026",
	}
}

func fieldMessages(t *testing.T, err error, field string) []string {
	t.Helper()
	fields, ok := apperrors.FieldsOf(err)
	require.True(t, ok, "expected field errors, got %v", err)
	return fields[field]
}

func TestStudentService_CounselorAssignment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.Students.Create(ctx, f.alice, studentRequest("ana@example.com"))
	require.NoError(t, err)
	require.NotNil(t, created.AssignedCounselor)
	assert.Equal(t, f.alice.UserID, *created.AssignedCounselor)

	req := studentRequest("other@example.com")
	req.AssignedCounselor = &f.bob.UserID
	_, err = f.svc.Students.Create(ctx, f.alice, req)
	assert.NotEmpty(t, fieldMessages(t, err, "assigned_counselor"))

	// admins may assign anyone, or nobody
	byAdmin, err := f.svc.Students.Create(ctx, f.admin, req)
	require.NoError(t, err)
	assert.Equal(t, f.bob.UserID, *byAdmin.AssignedCounselor)

	unassigned, err := f.svc.Students.Create(ctx, f.admin, studentRequest("free@example.com"))
	require.NoError(t, err)
	assert.Nil(t, unassigned.AssignedCounselor)

	_, err = f.svc.Students.Get(ctx, f.alice, byAdmin.ID)
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)

	stats, err := f.svc.Students.Stats(ctx, f.admin)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.TotalStudents)
	assert.Equal(t, int64(3), stats.Inquiry)
}

func TestStudentService_UpdateKeepsScope(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.Students.Create(ctx, f.alice, studentRequest("ana@example.com"))
	require.NoError(t, err)

	_, err = f.svc.Students.RequestFor(ctx, f.bob, created.ID)
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)

	req, err := f.svc.Students.RequestFor(ctx, f.alice, created.ID)
	require.NoError(t, err)
	req.Status = string(models.StudentStatusEnrolled)
	updated, err := f.svc.Students.Update(ctx, f.alice, created.ID, req)
	require.NoError(t, err)
	assert.Equal(t, "enrolled", updated.Status)
	assert.Equal(t, "Ana", updated.FirstName)

	err = f.svc.Students.Delete(ctx, f.bob, created.ID)
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
	require.NoError(t, f.svc.Students.Delete(ctx, f.alice, created.ID))
}

func TestRemarkService(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	student, err := f.svc.Students.Create(ctx, f.alice, studentRequest("ana@example.com"))
	require.NoError(t, err)

	remark, err := f.svc.Remarks.Create(ctx, f.alice, dto.RemarkRequest{
		Student:     student.ID,
		Counselor:   &f.bob.UserID,
		ContactType: "call",
		Content:     "First contact",
	})
	require.NoError(t, err)
	require.NotNil(t, remark.Counselor)
	assert.Equal(t, f.alice.UserID, *remark.Counselor)

	_, err = f.svc.Remarks.Create(ctx, f.bob, dto.RemarkRequest{Student: student.ID, ContactType: "email", Content: "x"})
	assert.Equal(t, []string{invalidPK}, fieldMessages(t, err, "student"))

	_, err = f.svc.Remarks.Get(ctx, f.bob, remark.ID)
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)

	detail, err := f.svc.Students.Get(ctx, f.alice, student.ID)
	require.NoError(t, err)
	require.Len(t, detail.Remarks, 1)
	assert.Equal(t, "First contact", detail.Remarks[0].Content)

	page, err := f.svc.Remarks.List(ctx, f.admin, models.RemarkFilter{StudentID: &student.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Pagination.TotalItems)
}

func TestUserService_NonAdminRestrictions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Users.Create(ctx, f.alice, dto.UserCreateRequest{Username: "eve", Email: "eve@example.com", Password: "password123"})
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	req, err := f.svc.Users.UpdateRequestFor(ctx, f.alice, f.alice.UserID)
	require.NoError(t, err)
	req.Role = string(models.RoleAdmin)
	inactive := false
	req.IsActive = &inactive

	_, err = f.svc.Users.Update(ctx, f.alice, f.alice.UserID, req)
	require.Error(t, err)
	assert.NotEmpty(t, fieldMessages(t, err, "role"))
	assert.NotEmpty(t, fieldMessages(t, err, "is_active"))

	req, err = f.svc.Users.UpdateRequestFor(ctx, f.alice, f.alice.UserID)
	require.NoError(t, err)
	req.FirstName = "Alice"
	updated, err := f.svc.Users.Update(ctx, f.alice, f.alice.UserID, req)
	require.NoError(t, err)
	assert.Equal(t, "Alice", updated.FullName)

	_, err = f.svc.Users.Get(ctx, f.alice, f.bob.UserID)
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
}

func TestApplicationService_DocumentFiles(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	uni, err := f.svc.Universities.Create(ctx, f.admin, dto.UniversityRequest{
		Name: "Lakeshore", Country: "Canada", City: "Toronto", Website: "https://example.edu",
		Type: "public", EstablishedYear: 1900, TuitionFeeRange: "30k", ApplicationFee: "100",
	})
	require.NoError(t, err)
	student, err := f.svc.Students.Create(ctx, f.alice, studentRequest("ana@example.com"))
	require.NoError(t, err)

	steps, total := 3, 8
	app, err := f.svc.Applications.Create(ctx, f.alice, dto.ApplicationRequest{
		Student: student.ID, University: uni.ID, Program: "MSc", Level: "master", Intake: "Fall",
		CurrentStep: &steps, TotalSteps: &total, ApplicationDate: "2026-01-10", ApplicationFee: "100",
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(app.ApplicationID, "APP"))
	assert.Len(t, app.ApplicationID, 13)
	assert.Equal(t, strings.ToUpper(app.ApplicationID), app.ApplicationID)

	detail, err := f.svc.Applications.Get(ctx, f.alice, app.ID)
	require.NoError(t, err)
	assert.Equal(t, 37.5, detail.ProgressPercentage)

	doc, err := f.svc.Applications.CreateDocument(ctx, f.alice, app.ID, dto.DocumentRequest{Name: "Transcript", DocumentType: "academic"})
	require.NoError(t, err)
	assert.Equal(t, "pending", doc.Status)
	assert.Nil(t, doc.File)

	_, err = f.svc.Applications.UploadDocumentFile(ctx, f.bob, app.ID, doc.ID, &multipart.FileHeader{Filename: "a.pdf"})
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)

	first, err := f.svc.Applications.UploadDocumentFile(ctx, f.alice, app.ID, doc.ID, &multipart.FileHeader{Filename: "a.pdf"})
	require.NoError(t, err)
	require.NotNil(t, first.File)
	assert.NotNil(t, first.UploadDate)

	second, err := f.svc.Applications.UploadDocumentFile(ctx, f.alice, app.ID, doc.ID, &multipart.FileHeader{Filename: "b.pdf"})
	require.NoError(t, err)
	assert.NotEqual(t, *first.File, *second.File)
	assert.Equal(t, []string{f.storage.saved[0]}, f.storage.deleted)

	require.NoError(t, f.svc.Applications.Delete(ctx, f.alice, app.ID))
	assert.Equal(t, f.storage.saved, f.storage.deleted)
}

func TestEmployeeService_Targets(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Employees.CreateTarget(ctx, f.alice, dto.TargetRequest{
		Employee: &f.bob.UserID, TargetType: models.TargetStudents, TargetValue: 5, Month: "2026-03-01",
	})
	assert.NotEmpty(t, fieldMessages(t, err, "employee"))

	target, err := f.svc.Employees.CreateTarget(ctx, f.admin, dto.TargetRequest{
		Employee: &f.bob.UserID, TargetType: models.TargetRevenue, TargetValue: 1000, AchievedValue: 250, Month: "2026-03-20",
	})
	require.NoError(t, err)
	assert.Equal(t, f.bob.UserID, target.Employee)
	assert.Equal(t, "2026-03-01", target.Month)
	assert.Equal(t, 25.0, target.AchievementPercentage)

	_, err = f.svc.Employees.CreateTarget(ctx, f.bob, dto.TargetRequest{
		TargetType: models.TargetRevenue, TargetValue: 10, Month: "2026-03-05",
	})
	assert.ErrorIs(t, err, apperrors.ErrResourceAlreadyExists)

	page, err := f.svc.Employees.ListTargets(ctx, f.alice, models.TargetFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(0), page.Pagination.TotalItems)

	_, err = f.svc.Employees.PutPerformance(ctx, f.alice, f.bob.UserID, dto.PerformanceRequest{AssignedStudents: 4})
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	perf, err := f.svc.Employees.PutPerformance(ctx, f.admin, f.bob.UserID, dto.PerformanceRequest{AssignedStudents: 4, MonthlyTargetStudents: 8})
	require.NoError(t, err)
	assert.Equal(t, 50.0, perf.TargetAchievementPercentage)
	assert.Equal(t, "bob", perf.EmployeeName)

	_, err = f.svc.Employees.GetPerformance(ctx, f.alice, f.bob.UserID)
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
	got, err := f.svc.Employees.GetPerformance(ctx, f.bob, f.bob.UserID)
	require.NoError(t, err)
	assert.Equal(t, 4, got.AssignedStudents)
}
