package memory

import (
	"context"
	"sort"

	"github.com/yigit/abroadcrm/internal/app/auth"
	"github.com/yigit/abroadcrm/internal/app/models"
	"github.com/yigit/abroadcrm/internal/pkg/apperrors"
)

// Employees implements repositories.EmployeeStore
type Employees struct{ s *Store }

func (r *Employees) viewLocked(p *models.EmployeePerformance) *models.EmployeePerformance {
	c := *p
	if u, ok := r.s.users[p.EmployeeID]; ok {
		c.EmployeeName = u.FullName()
	}
	return &c
}

func (r *Employees) GetPerformance(_ context.Context, employeeID int64, scope auth.Predicate) (*models.EmployeePerformance, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.performance[employeeID]
	if !ok || !scope.Allows(&p.EmployeeID) {
		return nil, apperrors.ErrPerformanceNotFound
	}
	return r.viewLocked(p), nil
}

func (r *Employees) ListPerformance(_ context.Context, pg models.Page, scope auth.Predicate) ([]*models.EmployeePerformance, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []*models.EmployeePerformance
	for _, id := range sortedKeys(r.s.performance) {
		if p := r.s.performance[id]; scope.Allows(&p.EmployeeID) {
			out = append(out, r.viewLocked(p))
		}
	}
	return page(out, pg), int64(len(out)), nil
}

func (r *Employees) UpsertPerformance(_ context.Context, p *models.EmployeePerformance) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[p.EmployeeID]; !ok {
		return missingParent("employee_performance_employee_id_fkey")
	}
	if current, ok := r.s.performance[p.EmployeeID]; ok {
		p.ID = current.ID
	} else {
		p.ID = r.s.nextID("employee_performance")
	}
	p.LastUpdated = r.s.now()
	c := *p
	c.EmployeeName = ""
	r.s.performance[p.EmployeeID] = &c
	return nil
}

func (r *Employees) CreateTarget(_ context.Context, t *models.EmployeeTarget) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[t.EmployeeID]; !ok {
		return missingParent("employee_targets_employee_id_fkey")
	}
	t.Month = models.FirstOfMonth(t.Month)
	for _, other := range r.s.targets {
		if other.EmployeeID == t.EmployeeID && other.TargetType == t.TargetType && other.Month.Equal(t.Month) {
			return conflict("employee_targets_employee_type_month")
		}
	}

	t.ID = r.s.nextID("employee_targets")
	t.CreatedAt = r.s.now()
	c := *t
	r.s.targets[t.ID] = &c
	return nil
}

func (r *Employees) GetTarget(_ context.Context, id int64, scope auth.Predicate) (*models.EmployeeTarget, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	t, ok := r.s.targets[id]
	if !ok || !scope.Allows(&t.EmployeeID) {
		return nil, apperrors.ErrTargetNotFound
	}
	c := *t
	return &c, nil
}

func (r *Employees) ListTargets(_ context.Context, filter models.TargetFilter, scope auth.Predicate) ([]*models.EmployeeTarget, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []*models.EmployeeTarget
	for _, t := range r.s.targets {
		if !scope.Allows(&t.EmployeeID) {
			continue
		}
		if filter.EmployeeID != nil && t.EmployeeID != *filter.EmployeeID {
			continue
		}
		if filter.Month != nil && !t.Month.Equal(models.FirstOfMonth(*filter.Month)) {
			continue
		}
		c := *t
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Month.Equal(out[j].Month) {
			return out[i].Month.After(out[j].Month)
		}
		if out[i].TargetType != out[j].TargetType {
			return out[i].TargetType < out[j].TargetType
		}
		return out[i].ID < out[j].ID
	})
	return page(out, filter.Page), int64(len(out)), nil
}

func (r *Employees) DeleteTarget(_ context.Context, id int64, scope auth.Predicate) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	t, ok := r.s.targets[id]
	if !ok || !scope.Allows(&t.EmployeeID) {
		return apperrors.ErrTargetNotFound
	}
	delete(r.s.targets, id)
	return nil
}
