package memory

import (
	"context"
	"sort"

	"github.com/yigit/abroadcrm/internal/app/auth"
	"github.com/yigit/abroadcrm/internal/app/models"
	"github.com/yigit/abroadcrm/internal/pkg/apperrors"
)

// Applications implements repositories.ApplicationStore
type Applications struct{ s *Store }

// deleteApplicationLocked removes an application with its documents and timeline
func (s *Store) deleteApplicationLocked(id int64) {
	delete(s.applications, id)
	for did, d := range s.documents {
		if d.ApplicationID == id {
			delete(s.documents, did)
		}
	}
	for tid, t := range s.timeline {
		if t.ApplicationID == id {
			delete(s.timeline, tid)
		}
	}
}

// ownerLocked returns the counselor of the student owning a
func (r *Applications) ownerLocked(a *models.Application) *int64 {
	if st, ok := r.s.students[a.StudentID]; ok {
		return st.AssignedCounselorID
	}
	return nil
}

func (r *Applications) checkLocked(a *models.Application) error {
	for _, other := range r.s.applications {
		if other.ID != a.ID && other.ApplicationID == a.ApplicationID {
			return conflict("applications_application_id_key")
		}
	}
	if _, ok := r.s.students[a.StudentID]; !ok {
		return missingParent("applications_student_id_fkey")
	}
	if _, ok := r.s.universities[a.UniversityID]; !ok {
		return missingParent("applications_university_id_fkey")
	}
	return nil
}

func (r *Applications) viewLocked(a *models.Application) *models.Application {
	c := *a
	if st, ok := r.s.students[a.StudentID]; ok {
		c.StudentName = st.FullName()
	}
	if u, ok := r.s.universities[a.UniversityID]; ok {
		c.UniversityName = u.Name
	}
	c.Documents, c.Timeline = nil, nil
	return &c
}

func (r *Applications) store(a *models.Application) {
	c := *a
	c.StudentName, c.UniversityName = "", ""
	c.Documents, c.Timeline = nil, nil
	r.s.applications[a.ID] = &c
}

func (r *Applications) Create(_ context.Context, a *models.Application) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.checkLocked(a); err != nil {
		return err
	}

	ts := r.s.now()
	a.ID = r.s.nextID("applications")
	a.CreatedAt, a.UpdatedAt, a.LastUpdate = ts, ts, ts
	if a.Status == "" {
		a.Status = models.AppStatusInquiryReceived
	}
	if a.Priority == "" {
		a.Priority = models.PriorityMedium
	}
	r.store(a)
	return nil
}

func (r *Applications) GetByID(_ context.Context, id int64, scope auth.Predicate) (*models.Application, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	a, ok := r.s.applications[id]
	if !ok || !scope.Allows(r.ownerLocked(a)) {
		return nil, apperrors.ErrApplicationNotFound
	}
	return r.viewLocked(a), nil
}

func (r *Applications) List(_ context.Context, filter models.ApplicationFilter, scope auth.Predicate) ([]*models.Application, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []*models.Application
	for _, a := range r.s.applications {
		if !scope.Allows(r.ownerLocked(a)) {
			continue
		}
		if filter.Status != "" && a.Status != filter.Status {
			continue
		}
		if filter.StudentID != nil && a.StudentID != *filter.StudentID {
			continue
		}
		if filter.UniversityID != nil && a.UniversityID != *filter.UniversityID {
			continue
		}
		out = append(out, r.viewLocked(a))
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].CreatedAt.Compare(out[j].CreatedAt); c != 0 {
			return c > 0
		}
		return out[i].ID > out[j].ID
	})
	return page(out, filter.Page), int64(len(out)), nil
}

func (r *Applications) Update(_ context.Context, a *models.Application, scope auth.Predicate) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	current, ok := r.s.applications[a.ID]
	if !ok || !scope.Allows(r.ownerLocked(current)) {
		return apperrors.ErrApplicationNotFound
	}
	if err := r.checkLocked(a); err != nil {
		return err
	}

	ts := r.s.now()
	a.CreatedAt = current.CreatedAt
	a.UpdatedAt, a.LastUpdate = ts, ts
	r.store(a)
	return nil
}

func (r *Applications) Delete(_ context.Context, id int64, scope auth.Predicate) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	a, ok := r.s.applications[id]
	if !ok || !scope.Allows(r.ownerLocked(a)) {
		return apperrors.ErrApplicationNotFound
	}
	r.s.deleteApplicationLocked(id)
	return nil
}

func (r *Applications) CreateDocument(_ context.Context, d *models.ApplicationDocument) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.applications[d.ApplicationID]; !ok {
		return apperrors.ErrApplicationNotFound
	}

	ts := r.s.now()
	d.ID = r.s.nextID("application_documents")
	d.CreatedAt, d.UpdatedAt = ts, ts
	if d.Status == "" {
		d.Status = "pending"
	}
	c := *d
	c.FileURL = nil
	r.s.documents[d.ID] = &c
	return nil
}

func (r *Applications) GetDocument(_ context.Context, applicationID, documentID int64) (*models.ApplicationDocument, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	d, ok := r.s.documents[documentID]
	if !ok || d.ApplicationID != applicationID {
		return nil, apperrors.ErrDocumentNotFound
	}
	c := *d
	return &c, nil
}

func (r *Applications) ListDocuments(_ context.Context, applicationID int64) ([]*models.ApplicationDocument, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]*models.ApplicationDocument, 0)
	for _, id := range sortedKeys(r.s.documents) {
		if d := r.s.documents[id]; d.ApplicationID == applicationID {
			c := *d
			out = append(out, &c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *Applications) UpdateDocument(_ context.Context, d *models.ApplicationDocument) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	current, ok := r.s.documents[d.ID]
	if !ok || current.ApplicationID != d.ApplicationID {
		return apperrors.ErrDocumentNotFound
	}

	d.CreatedAt, d.UpdatedAt = current.CreatedAt, r.s.now()
	c := *d
	c.FileURL = nil
	r.s.documents[d.ID] = &c
	return nil
}

func (r *Applications) DeleteDocument(_ context.Context, applicationID, documentID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	d, ok := r.s.documents[documentID]
	if !ok || d.ApplicationID != applicationID {
		return apperrors.ErrDocumentNotFound
	}
	delete(r.s.documents, documentID)
	return nil
}

func (r *Applications) AddTimelineEntry(_ context.Context, entry *models.ApplicationTimeline) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	app, ok := r.s.applications[entry.ApplicationID]
	if !ok {
		return apperrors.ErrApplicationNotFound
	}

	if entry.IsCurrent {
		for _, t := range r.s.timeline {
			if t.ApplicationID == entry.ApplicationID {
				t.IsCurrent = false
			}
		}
	}
	entry.ID = r.s.nextID("application_timeline")
	c := *entry
	r.s.timeline[entry.ID] = &c
	app.LastUpdate = r.s.now()
	return nil
}

func (r *Applications) ListTimeline(_ context.Context, applicationID int64) ([]*models.ApplicationTimeline, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]*models.ApplicationTimeline, 0)
	for _, id := range sortedKeys(r.s.timeline) {
		if t := r.s.timeline[id]; t.ApplicationID == applicationID {
			c := *t
			out = append(out, &c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}
