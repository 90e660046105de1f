package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/yigit/abroadcrm/internal/app/auth"
	"github.com/yigit/abroadcrm/internal/app/models"
	"github.com/yigit/abroadcrm/internal/pkg/apperrors"
)

// Students implements repositories.StudentStore
type Students struct{ s *Store }

func (r *Students) checkLocked(st *models.Student) error {
	for _, other := range r.s.students {
		if other.ID != st.ID && other.Email == st.Email {
			return conflict("students_email_key")
		}
	}
	if st.AssignedCounselorID != nil {
		if _, ok := r.s.users[*st.AssignedCounselorID]; !ok {
			return missingParent("students_assigned_counselor_id_fkey")
		}
	}
	return nil
}

// viewLocked copies a stored student and fills in the counselor's name
func (r *Students) viewLocked(st *models.Student) *models.Student {
	c := *st
	c.CounselorName = nil
	if st.AssignedCounselorID != nil {
		if u, ok := r.s.users[*st.AssignedCounselorID]; ok {
			name := u.FullName()
			c.CounselorName = &name
		}
	}
	return &c
}

func (r *Students) Create(_ context.Context, st *models.Student) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.checkLocked(st); err != nil {
		return err
	}

	ts := r.s.now()
	st.ID = r.s.nextID("students")
	st.CreatedAt, st.UpdatedAt = ts, ts
	if st.Status == "" {
		st.Status = models.StudentStatusInquiry
	}
	c := *st
	c.Remarks, c.CounselorName = nil, nil
	r.s.students[st.ID] = &c
	return nil
}

func (r *Students) GetByID(_ context.Context, id int64, scope auth.Predicate) (*models.Student, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	st, ok := r.s.students[id]
	if !ok || !scope.Allows(st.AssignedCounselorID) {
		return nil, apperrors.ErrStudentNotFound
	}
	return r.viewLocked(st), nil
}

func (r *Students) matches(st *models.Student, filter models.StudentFilter, search string) bool {
	if filter.Status != "" && st.Status != filter.Status {
		return false
	}
	if filter.PreferredCountry != "" && st.PreferredCountry != filter.PreferredCountry {
		return false
	}
	if filter.AssignedCounselorID != nil &&
		(st.AssignedCounselorID == nil || *st.AssignedCounselorID != *filter.AssignedCounselorID) {
		return false
	}
	if search != "" && !containsFold(st.FirstName, search) && !containsFold(st.LastName, search) &&
		!containsFold(st.Email, search) && !containsFold(st.Phone, search) {
		return false
	}
	return true
}

func studentLess(ordering string) func(a, b *models.Student) bool {
	desc := strings.HasPrefix(ordering, "-")
	var key func(a, b *models.Student) int
	switch strings.TrimPrefix(ordering, "-") {
	case "first_name":
		key = func(a, b *models.Student) int { return strings.Compare(a.FirstName, b.FirstName) }
	case "last_name":
		key = func(a, b *models.Student) int { return strings.Compare(a.LastName, b.LastName) }
	case "created_at":
		key = func(a, b *models.Student) int { return a.CreatedAt.Compare(b.CreatedAt) }
	case "updated_at":
		key = func(a, b *models.Student) int { return a.UpdatedAt.Compare(b.UpdatedAt) }
	default:
		desc = true
		key = func(a, b *models.Student) int { return a.CreatedAt.Compare(b.CreatedAt) }
	}
	return func(a, b *models.Student) bool {
		c := key(a, b)
		if desc {
			c = -c
		}
		if c == 0 {
			return a.ID > b.ID
		}
		return c < 0
	}
}

func (r *Students) List(_ context.Context, filter models.StudentFilter, scope auth.Predicate) ([]*models.Student, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	search := strings.TrimSpace(filter.Search)
	var out []*models.Student
	for _, st := range r.s.students {
		if scope.Allows(st.AssignedCounselorID) && r.matches(st, filter, search) {
			out = append(out, r.viewLocked(st))
		}
	}
	less := studentLess(filter.Ordering)
	sort.Slice(out, func(i, j int) bool { return less(out[i], out[j]) })
	return page(out, filter.Page), int64(len(out)), nil
}

func (r *Students) Update(_ context.Context, st *models.Student, scope auth.Predicate) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	current, ok := r.s.students[st.ID]
	if !ok || !scope.Allows(current.AssignedCounselorID) {
		return apperrors.ErrStudentNotFound
	}
	if err := r.checkLocked(st); err != nil {
		return err
	}

	st.UpdatedAt = r.s.now()
	st.CreatedAt = current.CreatedAt
	c := *st
	c.Remarks, c.CounselorName = nil, nil
	r.s.students[st.ID] = &c
	return nil
}

// Delete removes the student with its remarks and applications
func (r *Students) Delete(_ context.Context, id int64, scope auth.Predicate) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	st, ok := r.s.students[id]
	if !ok || !scope.Allows(st.AssignedCounselorID) {
		return apperrors.ErrStudentNotFound
	}

	delete(r.s.students, id)
	for rid, rm := range r.s.remarks {
		if rm.StudentID == id {
			delete(r.s.remarks, rid)
		}
	}
	for aid, a := range r.s.applications {
		if a.StudentID == id {
			r.s.deleteApplicationLocked(aid)
		}
	}
	return nil
}

func (r *Students) Stats(_ context.Context, scope auth.Predicate) (*models.StudentStats, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	stats := &models.StudentStats{ByStatus: make(map[models.StudentStatus]int64, len(models.StudentStatuses))}
	for _, st := range r.s.students {
		if scope.Allows(st.AssignedCounselorID) {
			stats.ByStatus[st.Status]++
			stats.Total++
		}
	}
	return stats, nil
}

// Remarks implements repositories.RemarkStore
type Remarks struct{ s *Store }

func (r *Remarks) viewLocked(rm *models.StudentRemark) *models.StudentRemark {
	c := *rm
	if u, ok := r.s.users[rm.CounselorID]; ok {
		c.CounselorName = u.FullName()
	}
	return &c
}

func (r *Remarks) checkLocked(rm *models.StudentRemark) error {
	if _, ok := r.s.students[rm.StudentID]; !ok {
		return missingParent("student_remarks_student_id_fkey")
	}
	return nil
}

func newestRemarkFirst(out []*models.StudentRemark) {
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].CreatedAt.Compare(out[j].CreatedAt); c != 0 {
			return c > 0
		}
		return out[i].ID > out[j].ID
	})
}

func (r *Remarks) Create(_ context.Context, rm *models.StudentRemark) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.checkLocked(rm); err != nil {
		return err
	}

	rm.ID = r.s.nextID("student_remarks")
	rm.CreatedAt = r.s.now()
	if rm.Priority == "" {
		rm.Priority = models.PriorityMedium
	}
	c := *rm
	r.s.remarks[rm.ID] = &c
	return nil
}

func (r *Remarks) GetByID(_ context.Context, id int64, scope auth.Predicate) (*models.StudentRemark, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	rm, ok := r.s.remarks[id]
	if !ok || !scope.Allows(&rm.CounselorID) {
		return nil, apperrors.ErrRemarkNotFound
	}
	return r.viewLocked(rm), nil
}

func (r *Remarks) List(_ context.Context, filter models.RemarkFilter, scope auth.Predicate) ([]*models.StudentRemark, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []*models.StudentRemark
	for _, rm := range r.s.remarks {
		if !scope.Allows(&rm.CounselorID) {
			continue
		}
		if filter.StudentID != nil && rm.StudentID != *filter.StudentID {
			continue
		}
		if filter.ContactType != "" && rm.ContactType != filter.ContactType {
			continue
		}
		if filter.Priority != "" && rm.Priority != filter.Priority {
			continue
		}
		out = append(out, r.viewLocked(rm))
	}
	newestRemarkFirst(out)
	return page(out, filter.Page), int64(len(out)), nil
}

func (r *Remarks) ListByStudent(_ context.Context, studentID int64) ([]*models.StudentRemark, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]*models.StudentRemark, 0)
	for _, rm := range r.s.remarks {
		if rm.StudentID == studentID {
			out = append(out, r.viewLocked(rm))
		}
	}
	newestRemarkFirst(out)
	return out, nil
}

func (r *Remarks) Update(_ context.Context, rm *models.StudentRemark, scope auth.Predicate) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	current, ok := r.s.remarks[rm.ID]
	if !ok || !scope.Allows(&current.CounselorID) {
		return apperrors.ErrRemarkNotFound
	}
	if err := r.checkLocked(rm); err != nil {
		return err
	}

	rm.CounselorID, rm.CreatedAt = current.CounselorID, current.CreatedAt
	c := *rm
	r.s.remarks[rm.ID] = &c
	return nil
}

func (r *Remarks) Delete(_ context.Context, id int64, scope auth.Predicate) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	rm, ok := r.s.remarks[id]
	if !ok || !scope.Allows(&rm.CounselorID) {
		return apperrors.ErrRemarkNotFound
	}
	delete(r.s.remarks, id)
	return nil
}
