package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/yigit/abroadcrm/internal/app/models"
	"github.com/yigit/abroadcrm/internal/pkg/apperrors"
)

// Universities implements repositories.UniversityStore
type Universities struct{ s *Store }

func (r *Universities) Create(_ context.Context, u *models.University) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	ts := r.s.now()
	u.ID = r.s.nextID("universities")
	u.CreatedAt, u.UpdatedAt = ts, ts
	if u.PartnershipStatus == "" {
		u.PartnershipStatus = "standard"
	}
	c := *u
	c.Programs, c.Requirements = nil, nil
	r.s.universities[u.ID] = &c
	return nil
}

func (r *Universities) GetByID(_ context.Context, id int64) (*models.University, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.universities[id]
	if !ok {
		return nil, apperrors.ErrUniversityNotFound
	}
	c := *u
	return &c, nil
}

func (r *Universities) List(_ context.Context, filter models.UniversityFilter) ([]*models.University, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	search := strings.TrimSpace(filter.Search)
	var out []*models.University
	for _, u := range r.s.universities {
		if filter.Country != "" && u.Country != filter.Country {
			continue
		}
		if filter.Type != "" && u.Type != filter.Type {
			continue
		}
		if filter.PartnershipStatus != "" && u.PartnershipStatus != filter.PartnershipStatus {
			continue
		}
		if search != "" && !containsFold(u.Name, search) && !containsFold(u.City, search) {
			continue
		}
		c := *u
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return page(out, filter.Page), int64(len(out)), nil
}

func (r *Universities) Update(_ context.Context, u *models.University) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	current, ok := r.s.universities[u.ID]
	if !ok {
		return apperrors.ErrUniversityNotFound
	}

	u.CreatedAt, u.UpdatedAt = current.CreatedAt, r.s.now()
	c := *u
	c.Programs, c.Requirements = nil, nil
	r.s.universities[u.ID] = &c
	return nil
}

// Delete removes the university with its programs, requirements and applications
func (r *Universities) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.universities[id]; !ok {
		return apperrors.ErrUniversityNotFound
	}

	delete(r.s.universities, id)
	delete(r.s.requirements, id)
	for pid, p := range r.s.programs {
		if p.UniversityID == id {
			delete(r.s.programs, pid)
		}
	}
	for aid, a := range r.s.applications {
		if a.UniversityID == id {
			r.s.deleteApplicationLocked(aid)
		}
	}
	return nil
}

func (r *Universities) CreateProgram(_ context.Context, p *models.UniversityProgram) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.universities[p.UniversityID]; !ok {
		return apperrors.ErrUniversityNotFound
	}
	p.ID = r.s.nextID("university_programs")
	c := *p
	r.s.programs[p.ID] = &c
	return nil
}

func (r *Universities) ListPrograms(_ context.Context, universityID int64) ([]*models.UniversityProgram, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]*models.UniversityProgram, 0)
	for _, id := range sortedKeys(r.s.programs) {
		if p := r.s.programs[id]; p.UniversityID == universityID {
			c := *p
			out = append(out, &c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *Universities) UpdateProgram(_ context.Context, p *models.UniversityProgram) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	current, ok := r.s.programs[p.ID]
	if !ok || current.UniversityID != p.UniversityID {
		return apperrors.ErrProgramNotFound
	}
	c := *p
	r.s.programs[p.ID] = &c
	return nil
}

func (r *Universities) DeleteProgram(_ context.Context, universityID, programID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	current, ok := r.s.programs[programID]
	if !ok || current.UniversityID != universityID {
		return apperrors.ErrProgramNotFound
	}
	delete(r.s.programs, programID)
	return nil
}

func (r *Universities) GetRequirement(_ context.Context, universityID int64) (*models.UniversityRequirement, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	q, ok := r.s.requirements[universityID]
	if !ok {
		return nil, apperrors.ErrRequirementNotFound
	}
	c := *q
	return &c, nil
}

// UpsertRequirement keeps the existing row id when replacing requirements
func (r *Universities) UpsertRequirement(_ context.Context, q *models.UniversityRequirement) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.universities[q.UniversityID]; !ok {
		return apperrors.ErrUniversityNotFound
	}
	if current, ok := r.s.requirements[q.UniversityID]; ok {
		q.ID = current.ID
	} else {
		q.ID = r.s.nextID("university_requirements")
	}
	c := *q
	r.s.requirements[q.UniversityID] = &c
	return nil
}
