package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/academia/core/grade"
	"github.com/trezcool/academia/core/student"
)

type gradeRepository struct {
	db *DB
}

var _ grade.Repository = (*gradeRepository)(nil)

func NewGradeRepository(db *DB) grade.Repository {
	return &gradeRepository{db: db}
}

// checkGrade must be called with the lock held.
func (repo *gradeRepository) checkGrade(g grade.Grade) error {
	if _, ok := repo.db.students[g.StudentID]; !ok {
		return student.ErrNotFound
	}
	key := g.Key()
	for _, other := range repo.db.grades {
		if other.ID != g.ID && other.Key() == key {
			return grade.ErrDuplicate
		}
	}
	return nil
}

func (repo *gradeRepository) CreateGrade(ctx context.Context, g grade.Grade) (grade.Grade, error) {
	err := repo.db.write(ctx, func() error {
		if err := repo.checkGrade(g); err != nil {
			return err
		}
		repo.db.grades[g.ID] = g
		return nil
	})
	if err != nil {
		return grade.Grade{}, err
	}
	return g, nil
}

func (repo *gradeRepository) GetGrade(ctx context.Context, id string) (grade.Grade, error) {
	var found grade.Grade
	err := repo.db.read(ctx, func() error {
		g, ok := repo.db.grades[id]
		if !ok {
			return grade.ErrNotFound
		}
		found = g
		return nil
	})
	return found, err
}

func (repo *gradeRepository) QueryGrades(ctx context.Context, filter grade.QueryFilter) ([]grade.Grade, error) {
	grades := make([]grade.Grade, 0)
	_ = repo.db.read(ctx, func() error {
		for _, g := range repo.db.grades {
			if filter.StudentID != "" && g.StudentID != filter.StudentID {
				continue
			}
			if filter.Subject != "" && g.Subject != filter.Subject {
				continue
			}
			if filter.Term != "" && g.Term != filter.Term {
				continue
			}
			if filter.AcademicYear != "" && g.AcademicYear != filter.AcademicYear {
				continue
			}
			grades = append(grades, g)
		}
		return nil
	})

	sort.Slice(grades, func(i, j int) bool {
		if !grades[i].CreatedAt.Equal(grades[j].CreatedAt) {
			return grades[i].CreatedAt.Before(grades[j].CreatedAt)
		}
		return grades[i].ID < grades[j].ID
	})
	return grades, nil
}

func (repo *gradeRepository) UpdateGrade(ctx context.Context, g grade.Grade) (grade.Grade, error) {
	err := repo.db.write(ctx, func() error {
		orig, ok := repo.db.grades[g.ID]
		if !ok {
			return grade.ErrNotFound
		}
		g.StudentID = orig.StudentID
		g.GradedBy = orig.GradedBy
		g.CreatedAt = orig.CreatedAt
		if err := repo.checkGrade(g); err != nil {
			return err
		}
		repo.db.grades[g.ID] = g
		return nil
	})
	if err != nil {
		return grade.Grade{}, err
	}
	return g, nil
}

func (repo *gradeRepository) DeleteGrade(ctx context.Context, id string) error {
	return repo.db.write(ctx, func() error {
		if _, ok := repo.db.grades[id]; !ok {
			return grade.ErrNotFound
		}
		delete(repo.db.grades, id)
		return nil
	})
}
