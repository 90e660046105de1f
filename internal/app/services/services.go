// Package services holds the business logic between the controllers and the repositories.
// Every service method takes the requester's auth.Identity and narrows repository calls with
// the policy predicate for the entity it touches.
package services

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/abroadcrm/internal/app/auth"
	"github.com/yigit/abroadcrm/internal/app/repositories"
	"github.com/yigit/abroadcrm/internal/pkg/apperrors"
	pkgauth "github.com/yigit/abroadcrm/internal/pkg/auth"
	"github.com/yigit/abroadcrm/internal/pkg/filestorage"
)

// invalidPK is reported for parent references that are absent or outside the requester's scope
const invalidPK = "Invalid pk - object does not exist."

// Services bundles the business services used by the controllers
type Services struct {
	Auth         AuthService
	Users        UserService
	Students     StudentService
	Remarks      RemarkService
	Universities UniversityService
	Applications ApplicationService
	Employees    EmployeeService
}

// Dependencies are the collaborators shared by the services
type Dependencies struct {
	Repos      *repositories.Repositories
	Blacklist  repositories.TokenBlacklist
	Storage    filestorage.FileStorage
	JWTService *pkgauth.JWTService
	Policy     auth.Policy
	Logger     zerolog.Logger
}

// NewServices wires every service from deps
func NewServices(deps Dependencies) *Services {
	log := deps.Logger
	return &Services{
		Auth:         NewAuthService(deps.Repos.Users, deps.Blacklist, deps.JWTService, log.With().Str("service", "auth").Logger()),
		Users:        NewUserService(deps.Repos.Users, deps.Policy, log.With().Str("service", "users").Logger()),
		Students:     NewStudentService(deps.Repos.Students, deps.Repos.Remarks, deps.Policy, log.With().Str("service", "students").Logger()),
		Remarks:      NewRemarkService(deps.Repos.Remarks, deps.Repos.Students, deps.Policy, log.With().Str("service", "remarks").Logger()),
		Universities: NewUniversityService(deps.Repos.Universities, log.With().Str("service", "universities").Logger()),
		Applications: NewApplicationService(deps.Repos.Applications, deps.Repos.Students, deps.Storage, deps.Policy, log.With().Str("service", "applications").Logger()),
		Employees:    NewEmployeeService(deps.Repos.Employees, deps.Repos.Users, deps.Policy, log.With().Str("service", "employees").Logger()),
	}
}

// now is the clock used for server-set dates
var now = func() time.Time {
	return time.Now().UTC()
}

func requireAdmin(identity auth.Identity) error {
	if !identity.IsAdmin() {
		return apperrors.NewForbiddenError("You do not have permission to perform this action.")
	}
	return nil
}
