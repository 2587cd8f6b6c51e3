package storage

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/eugenenazirov/lesson-condenser/internal/lessons"
)

var (
	// ErrInvalidLessons indicates the provided catalog violates validation rules.
	ErrInvalidLessons = errors.New("lessons must have an id and a non-negative duration")
)

// Storage provides access to the lesson catalog used by the planner.
type Storage interface {
	GetLessons() ([]lessons.Lesson, error)
	SetLessons(list []lessons.Lesson) error
}

// MemoryStorage keeps the catalog in-memory and guards access with a RWMutex.
// Catalog order is preserved.
type MemoryStorage struct {
	mu      sync.RWMutex
	lessons []lessons.Lesson
}

// NewMemoryStorage initialises an empty catalog.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		lessons: []lessons.Lesson{},
	}
}

// GetLessons returns a defensive copy of the current catalog.
func (s *MemoryStorage) GetLessons() ([]lessons.Lesson, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return clone(s.lessons), nil
}

// SetLessons validates and stores a copy of the provided catalog.
func (s *MemoryStorage) SetLessons(list []lessons.Lesson) error {
	if err := lessons.Validate(list); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidLessons, err)
	}

	copied := clone(list)

	s.mu.Lock()
	s.lessons = copied
	s.mu.Unlock()

	return nil
}

func clone(src []lessons.Lesson) []lessons.Lesson {
	if len(src) == 0 {
		return []lessons.Lesson{}
	}
	return slices.Clone(src)
}
