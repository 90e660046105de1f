package services

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/yigit/abroadcrm/internal/app/auth"
	"github.com/yigit/abroadcrm/internal/app/models"
	"github.com/yigit/abroadcrm/internal/app/models/dto"
	"github.com/yigit/abroadcrm/internal/app/repositories"
	"github.com/yigit/abroadcrm/internal/pkg/apperrors"
	"github.com/yigit/abroadcrm/internal/pkg/filestorage"
	"github.com/yigit/abroadcrm/internal/pkg/helpers"
)

// ApplicationService defines the interface for application, document and timeline operations.
// Applications are visible through their owning student.
type ApplicationService interface {
	List(ctx context.Context, identity auth.Identity, filter models.ApplicationFilter) (*dto.PaginatedResponse, error)
	Get(ctx context.Context, identity auth.Identity, id int64) (*dto.ApplicationResponse, error)
	Create(ctx context.Context, identity auth.Identity, req dto.ApplicationRequest) (*dto.ApplicationRequest, error)
	RequestFor(ctx context.Context, identity auth.Identity, id int64) (dto.ApplicationRequest, error)
	Update(ctx context.Context, identity auth.Identity, id int64, req dto.ApplicationRequest) (*dto.ApplicationRequest, error)
	Delete(ctx context.Context, identity auth.Identity, id int64) error

	ListDocuments(ctx context.Context, identity auth.Identity, applicationID int64) ([]dto.DocumentResponse, error)
	CreateDocument(ctx context.Context, identity auth.Identity, applicationID int64, req dto.DocumentRequest) (*dto.DocumentResponse, error)
	DocumentRequestFor(ctx context.Context, identity auth.Identity, applicationID, documentID int64) (dto.DocumentRequest, error)
	UpdateDocument(ctx context.Context, identity auth.Identity, applicationID, documentID int64, req dto.DocumentRequest) (*dto.DocumentResponse, error)
	DeleteDocument(ctx context.Context, identity auth.Identity, applicationID, documentID int64) error
	// UploadDocumentFile stores the file and marks the document as uploaded, replacing any previous file
	UploadDocumentFile(ctx context.Context, identity auth.Identity, applicationID, documentID int64, file *multipart.FileHeader) (*dto.DocumentResponse, error)

	ListTimeline(ctx context.Context, identity auth.Identity, applicationID int64) ([]dto.TimelineResponse, error)
	AddTimelineEntry(ctx context.Context, identity auth.Identity, applicationID int64, req dto.TimelineRequest) (*dto.TimelineResponse, error)
}

type applicationServiceImpl struct {
	applicationRepo repositories.ApplicationStore
	studentRepo     repositories.StudentStore
	fileStorage     filestorage.FileStorage
	policy          auth.Policy
	logger          zerolog.Logger
}

// NewApplicationService creates a new ApplicationService
func NewApplicationService(
	applicationRepo repositories.ApplicationStore,
	studentRepo repositories.StudentStore,
	fileStorage filestorage.FileStorage,
	policy auth.Policy,
	logger zerolog.Logger,
) ApplicationService {
	return &applicationServiceImpl{
		applicationRepo: applicationRepo,
		studentRepo:     studentRepo,
		fileStorage:     fileStorage,
		policy:          policy,
		logger:          logger,
	}
}

func (s *applicationServiceImpl) scope(identity auth.Identity) auth.Predicate {
	return s.policy.VisibleRows(identity, auth.EntityApplication)
}

// newApplicationID generates a reference such as APP3F9A1C07B2
func newApplicationID() string {
	return "APP" + strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:10])
}

func (s *applicationServiceImpl) checkStudent(ctx context.Context, identity auth.Identity, studentID int64) error {
	_, err := s.studentRepo.GetByID(ctx, studentID, s.policy.VisibleRows(identity, auth.EntityStudent))
	if errors.Is(err, apperrors.ErrResourceNotFound) {
		return apperrors.NewFieldValidationError("student", invalidPK)
	}
	return err
}

// resolveFiles fills in download links for stored document files
func (s *applicationServiceImpl) resolveFiles(ctx context.Context, docs ...*models.ApplicationDocument) {
	for _, d := range docs {
		if d.FileKey == nil || *d.FileKey == "" || s.fileStorage == nil {
			continue
		}
		url, err := s.fileStorage.URL(ctx, *d.FileKey)
		if err != nil {
			s.logger.Warn().Err(err).Int64("documentID", d.ID).Msg("Failed to resolve document file URL")
			continue
		}
		d.FileURL = &url
	}
}

func (s *applicationServiceImpl) List(ctx context.Context, identity auth.Identity, filter models.ApplicationFilter) (*dto.PaginatedResponse, error) {
	filter.Page = helpers.NormalizePage(filter.Page)
	apps, total, err := s.applicationRepo.List(ctx, filter, s.scope(identity))
	if err != nil {
		return nil, fmt.Errorf("error listing applications: %w", err)
	}
	for _, a := range apps {
		if err := s.withChildren(ctx, a); err != nil {
			return nil, err
		}
	}
	resp := helpers.NewPaginatedResponse(dto.FromApplications(apps), total, filter.Page)
	return &resp, nil
}

func (s *applicationServiceImpl) withChildren(ctx context.Context, a *models.Application) error {
	docs, err := s.applicationRepo.ListDocuments(ctx, a.ID)
	if err != nil {
		return fmt.Errorf("error loading documents: %w", err)
	}
	s.resolveFiles(ctx, docs...)
	a.Documents = docs

	timeline, err := s.applicationRepo.ListTimeline(ctx, a.ID)
	if err != nil {
		return fmt.Errorf("error loading timeline: %w", err)
	}
	a.Timeline = timeline
	return nil
}

func (s *applicationServiceImpl) Get(ctx context.Context, identity auth.Identity, id int64) (*dto.ApplicationResponse, error) {
	a, err := s.applicationRepo.GetByID(ctx, id, s.scope(identity))
	if err != nil {
		return nil, err
	}
	if err := s.withChildren(ctx, a); err != nil {
		return nil, err
	}
	resp := dto.FromApplication(a)
	return &resp, nil
}

func (s *applicationServiceImpl) Create(ctx context.Context, identity auth.Identity, req dto.ApplicationRequest) (*dto.ApplicationRequest, error) {
	if err := s.checkStudent(ctx, identity, req.Student); err != nil {
		return nil, err
	}

	a := req.ToModel()
	if a.ApplicationID == "" {
		a.ApplicationID = newApplicationID()
	}
	if err := s.applicationRepo.Create(ctx, a); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("applicationID", a.ID).Str("reference", a.ApplicationID).Msg("Application created")
	resp := dto.NewApplicationRequest(a)
	return &resp, nil
}

func (s *applicationServiceImpl) RequestFor(ctx context.Context, identity auth.Identity, id int64) (dto.ApplicationRequest, error) {
	a, err := s.applicationRepo.GetByID(ctx, id, s.scope(identity))
	if err != nil {
		return dto.ApplicationRequest{}, err
	}
	return dto.NewApplicationRequest(a), nil
}

func (s *applicationServiceImpl) Update(ctx context.Context, identity auth.Identity, id int64, req dto.ApplicationRequest) (*dto.ApplicationRequest, error) {
	scope := s.scope(identity)
	a, err := s.applicationRepo.GetByID(ctx, id, scope)
	if err != nil {
		return nil, err
	}
	if req.Student != a.StudentID {
		if err := s.checkStudent(ctx, identity, req.Student); err != nil {
			return nil, err
		}
	}

	req.ApplyTo(a)
	if err := s.applicationRepo.Update(ctx, a, scope); err != nil {
		return nil, err
	}

	resp := dto.NewApplicationRequest(a)
	return &resp, nil
}

func (s *applicationServiceImpl) Delete(ctx context.Context, identity auth.Identity, id int64) error {
	scope := s.scope(identity)
	if _, err := s.applicationRepo.GetByID(ctx, id, scope); err != nil {
		return err
	}
	docs, err := s.applicationRepo.ListDocuments(ctx, id)
	if err != nil {
		return fmt.Errorf("error loading documents: %w", err)
	}
	if err := s.applicationRepo.Delete(ctx, id, scope); err != nil {
		return err
	}

	for _, d := range docs {
		s.deleteFile(ctx, d.FileKey)
	}
	s.logger.Info().Int64("applicationID", id).Int64("by", identity.UserID).Msg("Application deleted")
	return nil
}

// deleteFile removes a stored file; failures leave an orphan and are only logged
func (s *applicationServiceImpl) deleteFile(ctx context.Context, key *string) {
	if key == nil || *key == "" || s.fileStorage == nil {
		return
	}
	if err := s.fileStorage.Delete(ctx, *key); err != nil {
		s.logger.Warn().Err(err).Str("key", *key).Msg("Failed to delete stored document file")
	}
}

// visible resolves the parent application within the requester's scope
func (s *applicationServiceImpl) visible(ctx context.Context, identity auth.Identity, applicationID int64) error {
	_, err := s.applicationRepo.GetByID(ctx, applicationID, s.scope(identity))
	return err
}

func (s *applicationServiceImpl) ListDocuments(ctx context.Context, identity auth.Identity, applicationID int64) ([]dto.DocumentResponse, error) {
	if err := s.visible(ctx, identity, applicationID); err != nil {
		return nil, err
	}
	docs, err := s.applicationRepo.ListDocuments(ctx, applicationID)
	if err != nil {
		return nil, fmt.Errorf("error listing documents: %w", err)
	}
	s.resolveFiles(ctx, docs...)
	return dto.FromDocuments(docs), nil
}

func (s *applicationServiceImpl) CreateDocument(ctx context.Context, identity auth.Identity, applicationID int64, req dto.DocumentRequest) (*dto.DocumentResponse, error) {
	if err := s.visible(ctx, identity, applicationID); err != nil {
		return nil, err
	}

	doc := &models.ApplicationDocument{ApplicationID: applicationID, Status: "pending"}
	req.ApplyTo(doc)
	if err := s.applicationRepo.CreateDocument(ctx, doc); err != nil {
		return nil, err
	}

	resp := dto.FromDocument(doc)
	return &resp, nil
}

func (s *applicationServiceImpl) DocumentRequestFor(ctx context.Context, identity auth.Identity, applicationID, documentID int64) (dto.DocumentRequest, error) {
	if err := s.visible(ctx, identity, applicationID); err != nil {
		return dto.DocumentRequest{}, err
	}
	doc, err := s.applicationRepo.GetDocument(ctx, applicationID, documentID)
	if err != nil {
		return dto.DocumentRequest{}, err
	}
	return dto.NewDocumentRequest(doc), nil
}

func (s *applicationServiceImpl) UpdateDocument(ctx context.Context, identity auth.Identity, applicationID, documentID int64, req dto.DocumentRequest) (*dto.DocumentResponse, error) {
	if err := s.visible(ctx, identity, applicationID); err != nil {
		return nil, err
	}
	doc, err := s.applicationRepo.GetDocument(ctx, applicationID, documentID)
	if err != nil {
		return nil, err
	}

	req.ApplyTo(doc)
	if err := s.applicationRepo.UpdateDocument(ctx, doc); err != nil {
		return nil, err
	}

	s.resolveFiles(ctx, doc)
	resp := dto.FromDocument(doc)
	return &resp, nil
}

func (s *applicationServiceImpl) DeleteDocument(ctx context.Context, identity auth.Identity, applicationID, documentID int64) error {
	if err := s.visible(ctx, identity, applicationID); err != nil {
		return err
	}
	doc, err := s.applicationRepo.GetDocument(ctx, applicationID, documentID)
	if err != nil {
		return err
	}
	if err := s.applicationRepo.DeleteDocument(ctx, applicationID, documentID); err != nil {
		return err
	}
	s.deleteFile(ctx, doc.FileKey)
	return nil
}

func (s *applicationServiceImpl) UploadDocumentFile(ctx context.Context, identity auth.Identity, applicationID, documentID int64, file *multipart.FileHeader) (*dto.DocumentResponse, error) {
	if err := s.visible(ctx, identity, applicationID); err != nil {
		return nil, err
	}
	doc, err := s.applicationRepo.GetDocument(ctx, applicationID, documentID)
	if err != nil {
		return nil, err
	}
	if s.fileStorage == nil {
		return nil, errors.New("file storage is not configured")
	}

	key, err := s.fileStorage.Save(ctx, file, fmt.Sprintf("applications/%d", applicationID))
	if err != nil {
		return nil, fmt.Errorf("error storing document file: %w", err)
	}

	previous := doc.FileKey
	uploaded := now()
	doc.FileKey = &key
	doc.UploadDate = &uploaded
	if err := s.applicationRepo.UpdateDocument(ctx, doc); err != nil {
		s.deleteFile(ctx, &key)
		return nil, err
	}
	s.deleteFile(ctx, previous)

	s.logger.Info().Int64("documentID", doc.ID).Str("key", key).Msg("Document file uploaded")
	s.resolveFiles(ctx, doc)
	resp := dto.FromDocument(doc)
	return &resp, nil
}

func (s *applicationServiceImpl) ListTimeline(ctx context.Context, identity auth.Identity, applicationID int64) ([]dto.TimelineResponse, error) {
	if err := s.visible(ctx, identity, applicationID); err != nil {
		return nil, err
	}
	entries, err := s.applicationRepo.ListTimeline(ctx, applicationID)
	if err != nil {
		return nil, fmt.Errorf("error listing timeline: %w", err)
	}
	return dto.FromTimeline(entries), nil
}

func (s *applicationServiceImpl) AddTimelineEntry(ctx context.Context, identity auth.Identity, applicationID int64, req dto.TimelineRequest) (*dto.TimelineResponse, error) {
	if err := s.visible(ctx, identity, applicationID); err != nil {
		return nil, err
	}

	entry := req.ToModel(applicationID, now())
	if err := s.applicationRepo.AddTimelineEntry(ctx, entry); err != nil {
		return nil, err
	}

	resp := dto.FromTimelineEntry(entry)
	return &resp, nil
}
