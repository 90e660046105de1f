package repositories

import (
	"context"
	"time"

	"github.com/yigit/abroadcrm/internal/app/auth"
	"github.com/yigit/abroadcrm/internal/app/models"
	"github.com/yigit/abroadcrm/internal/db"
)

// Every scoped method narrows its statement by the given predicate. A row outside the
// predicate is reported exactly like a missing row.

// UserStore persists staff accounts
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int64, scope auth.Predicate) (*models.User, error)
	// GetByUsername is unscoped, it backs login and seeding
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	List(ctx context.Context, filter models.UserFilter, scope auth.Predicate) ([]*models.User, int64, error)
	Update(ctx context.Context, user *models.User, scope auth.Predicate) error
	Delete(ctx context.Context, id int64, scope auth.Predicate) error
}

// StudentStore persists prospective students
type StudentStore interface {
	Create(ctx context.Context, student *models.Student) error
	GetByID(ctx context.Context, id int64, scope auth.Predicate) (*models.Student, error)
	List(ctx context.Context, filter models.StudentFilter, scope auth.Predicate) ([]*models.Student, int64, error)
	Update(ctx context.Context, student *models.Student, scope auth.Predicate) error
	Delete(ctx context.Context, id int64, scope auth.Predicate) error
	Stats(ctx context.Context, scope auth.Predicate) (*models.StudentStats, error)
}

// RemarkStore persists counselor remarks
type RemarkStore interface {
	Create(ctx context.Context, remark *models.StudentRemark) error
	GetByID(ctx context.Context, id int64, scope auth.Predicate) (*models.StudentRemark, error)
	List(ctx context.Context, filter models.RemarkFilter, scope auth.Predicate) ([]*models.StudentRemark, int64, error)
	// ListByStudent returns every remark on a student, newest first, for the nested student view
	ListByStudent(ctx context.Context, studentID int64) ([]*models.StudentRemark, error)
	Update(ctx context.Context, remark *models.StudentRemark, scope auth.Predicate) error
	Delete(ctx context.Context, id int64, scope auth.Predicate) error
}

// UniversityStore persists universities with their programs and requirements.
// University data is not row scoped.
type UniversityStore interface {
	Create(ctx context.Context, university *models.University) error
	GetByID(ctx context.Context, id int64) (*models.University, error)
	List(ctx context.Context, filter models.UniversityFilter) ([]*models.University, int64, error)
	Update(ctx context.Context, university *models.University) error
	Delete(ctx context.Context, id int64) error

	CreateProgram(ctx context.Context, program *models.UniversityProgram) error
	ListPrograms(ctx context.Context, universityID int64) ([]*models.UniversityProgram, error)
	UpdateProgram(ctx context.Context, program *models.UniversityProgram) error
	DeleteProgram(ctx context.Context, universityID, programID int64) error

	GetRequirement(ctx context.Context, universityID int64) (*models.UniversityRequirement, error)
	UpsertRequirement(ctx context.Context, requirement *models.UniversityRequirement) error
}

// ApplicationStore persists applications and their documents and timeline.
// Document and timeline methods are unscoped; callers resolve the parent application first.
type ApplicationStore interface {
	Create(ctx context.Context, application *models.Application) error
	GetByID(ctx context.Context, id int64, scope auth.Predicate) (*models.Application, error)
	List(ctx context.Context, filter models.ApplicationFilter, scope auth.Predicate) ([]*models.Application, int64, error)
	Update(ctx context.Context, application *models.Application, scope auth.Predicate) error
	Delete(ctx context.Context, id int64, scope auth.Predicate) error

	CreateDocument(ctx context.Context, document *models.ApplicationDocument) error
	GetDocument(ctx context.Context, applicationID, documentID int64) (*models.ApplicationDocument, error)
	ListDocuments(ctx context.Context, applicationID int64) ([]*models.ApplicationDocument, error)
	UpdateDocument(ctx context.Context, document *models.ApplicationDocument) error
	DeleteDocument(ctx context.Context, applicationID, documentID int64) error

	// AddTimelineEntry appends an entry. A current entry clears is_current on the others.
	AddTimelineEntry(ctx context.Context, entry *models.ApplicationTimeline) error
	ListTimeline(ctx context.Context, applicationID int64) ([]*models.ApplicationTimeline, error)
}

// EmployeeStore persists staff performance and monthly targets
type EmployeeStore interface {
	GetPerformance(ctx context.Context, employeeID int64, scope auth.Predicate) (*models.EmployeePerformance, error)
	ListPerformance(ctx context.Context, page models.Page, scope auth.Predicate) ([]*models.EmployeePerformance, int64, error)
	UpsertPerformance(ctx context.Context, performance *models.EmployeePerformance) error

	CreateTarget(ctx context.Context, target *models.EmployeeTarget) error
	GetTarget(ctx context.Context, id int64, scope auth.Predicate) (*models.EmployeeTarget, error)
	ListTargets(ctx context.Context, filter models.TargetFilter, scope auth.Predicate) ([]*models.EmployeeTarget, int64, error)
	DeleteTarget(ctx context.Context, id int64, scope auth.Predicate) error
}

// TokenBlacklist records revoked refresh token ids until they expire
type TokenBlacklist interface {
	Revoke(ctx context.Context, jti string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// Repositories holds all the repository instances
type Repositories struct {
	Users        UserStore
	Students     StudentStore
	Remarks      RemarkStore
	Universities UniversityStore
	Applications ApplicationStore
	Employees    EmployeeStore
}

// NewRepositories initializes the PostgreSQL repositories
func NewRepositories(database *db.PostgresDB) *Repositories {
	return &Repositories{
		Users:        NewUserRepository(database.Pool),
		Students:     NewStudentRepository(database.Pool),
		Remarks:      NewRemarkRepository(database.Pool),
		Universities: NewUniversityRepository(database.Pool),
		Applications: NewApplicationRepository(database),
		Employees:    NewEmployeeRepository(database.Pool),
	}
}

// now is the clock used for explicit timestamps
var now = func() time.Time {
	return time.Now().UTC()
}
