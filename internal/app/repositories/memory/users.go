package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/yigit/abroadcrm/internal/app/auth"
	"github.com/yigit/abroadcrm/internal/app/models"
	"github.com/yigit/abroadcrm/internal/pkg/apperrors"
)

// Users implements repositories.UserStore
type Users struct{ s *Store }

func (r *Users) uniqueLocked(u *models.User) error {
	for _, other := range r.s.users {
		if other.ID == u.ID {
			continue
		}
		if other.Username == u.Username {
			return conflict("users_username_key")
		}
		if other.Email == u.Email {
			return conflict("users_email_key")
		}
	}
	return nil
}

func (r *Users) Create(_ context.Context, u *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.uniqueLocked(u); err != nil {
		return err
	}

	ts := r.s.now()
	u.ID = r.s.nextID("users")
	u.CreatedAt, u.UpdatedAt = ts, ts
	if u.JoinDate.IsZero() {
		u.JoinDate = ts
	}
	c := *u
	r.s.users[u.ID] = &c
	return nil
}

func (r *Users) GetByID(_ context.Context, id int64, scope auth.Predicate) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok || !scope.Allows(&u.ID) {
		return nil, apperrors.ErrUserNotFound
	}
	c := *u
	return &c, nil
}

func (r *Users) GetByUsername(_ context.Context, username string) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.users {
		if u.Username == username {
			c := *u
			return &c, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (r *Users) List(_ context.Context, filter models.UserFilter, scope auth.Predicate) ([]*models.User, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	search := strings.TrimSpace(filter.Search)
	var out []*models.User
	for _, u := range r.s.users {
		if !scope.Allows(&u.ID) {
			continue
		}
		if filter.Role != "" && u.Role != filter.Role {
			continue
		}
		if search != "" && !containsFold(u.Username, search) && !containsFold(u.FirstName, search) &&
			!containsFold(u.LastName, search) && !containsFold(u.Email, search) {
			continue
		}
		c := *u
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return page(out, filter.Page), int64(len(out)), nil
}

func (r *Users) Update(_ context.Context, u *models.User, scope auth.Predicate) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	current, ok := r.s.users[u.ID]
	if !ok || !scope.Allows(&current.ID) {
		return apperrors.ErrUserNotFound
	}
	if err := r.uniqueLocked(u); err != nil {
		return err
	}

	u.UpdatedAt = r.s.now()
	u.CreatedAt, u.JoinDate = current.CreatedAt, current.JoinDate
	c := *u
	r.s.users[u.ID] = &c
	return nil
}

// Delete removes the user, cascading to authored remarks and performance data
// and unassigning their students
func (r *Users) Delete(_ context.Context, id int64, scope auth.Predicate) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok || !scope.Allows(&u.ID) {
		return apperrors.ErrUserNotFound
	}

	delete(r.s.users, id)
	for _, st := range r.s.students {
		if st.AssignedCounselorID != nil && *st.AssignedCounselorID == id {
			st.AssignedCounselorID = nil
		}
	}
	for rid, rm := range r.s.remarks {
		if rm.CounselorID == id {
			delete(r.s.remarks, rid)
		}
	}
	delete(r.s.performance, id)
	for tid, t := range r.s.targets {
		if t.EmployeeID == id {
			delete(r.s.targets, tid)
		}
	}
	return nil
}
