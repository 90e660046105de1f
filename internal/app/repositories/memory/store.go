// Package memory implements the repository interfaces in process memory. It backs the
// "memory" database driver and the HTTP tests, and mirrors the PostgreSQL schema's
// unique keys, foreign keys and cascades.
package memory

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/yigit/abroadcrm/internal/app/models"
	"github.com/yigit/abroadcrm/internal/app/repositories"
	"github.com/yigit/abroadcrm/internal/pkg/apperrors"
	"github.com/yigit/abroadcrm/internal/pkg/dberrors"
	"github.com/yigit/abroadcrm/internal/pkg/helpers"
)

// Store holds every table behind one lock
type Store struct {
	mu  sync.RWMutex
	seq map[string]int64
	now func() time.Time

	users        map[int64]*models.User
	students     map[int64]*models.Student
	remarks      map[int64]*models.StudentRemark
	universities map[int64]*models.University
	programs     map[int64]*models.UniversityProgram
	requirements map[int64]*models.UniversityRequirement // keyed by university id
	applications map[int64]*models.Application
	documents    map[int64]*models.ApplicationDocument
	timeline     map[int64]*models.ApplicationTimeline
	performance  map[int64]*models.EmployeePerformance // keyed by employee id
	targets      map[int64]*models.EmployeeTarget
}

// New creates an empty store
func New() *Store {
	return &Store{
		seq:          make(map[string]int64),
		now:          func() time.Time { return time.Now().UTC() },
		users:        make(map[int64]*models.User),
		students:     make(map[int64]*models.Student),
		remarks:      make(map[int64]*models.StudentRemark),
		universities: make(map[int64]*models.University),
		programs:     make(map[int64]*models.UniversityProgram),
		requirements: make(map[int64]*models.UniversityRequirement),
		applications: make(map[int64]*models.Application),
		documents:    make(map[int64]*models.ApplicationDocument),
		timeline:     make(map[int64]*models.ApplicationTimeline),
		performance:  make(map[int64]*models.EmployeePerformance),
		targets:      make(map[int64]*models.EmployeeTarget),
	}
}

// Repositories exposes the store through the repository interfaces
func (s *Store) Repositories() *repositories.Repositories {
	return &repositories.Repositories{
		Users:        &Users{s},
		Students:     &Students{s},
		Remarks:      &Remarks{s},
		Universities: &Universities{s},
		Applications: &Applications{s},
		Employees:    &Employees{s},
	}
}

func (s *Store) nextID(table string) int64 {
	s.seq[table]++
	return s.seq[table]
}

// conflict reports a unique violation the same way the PostgreSQL translation does
func conflict(constraint string) error {
	cf := dberrors.Constraints[constraint]
	return apperrors.NewFieldConflictError(cf.Field, cf.Message)
}

// missingParent reports a foreign key violation the same way the PostgreSQL translation does
func missingParent(constraint string) error {
	cf := dberrors.Constraints[constraint]
	return apperrors.NewFieldValidationError(cf.Field, cf.Message)
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

// page slices an already sorted result like LIMIT/OFFSET
func page[T any](items []T, p models.Page) []T {
	if p.Size <= 0 {
		return items
	}
	start, end := helpers.CalculateSliceIndices(p, len(items))
	return items[start:end]
}

// sortedKeys returns map keys in ascending order for deterministic iteration
func sortedKeys[T any](m map[int64]T) []int64 {
	keys := make([]int64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
