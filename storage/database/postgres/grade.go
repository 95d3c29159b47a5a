package pgrepos

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"

	"github.com/trezcool/academia/core/grade"
	"github.com/trezcool/academia/core/student"
)

const gradeColumns = `id, student_id, subject, score, term, academic_year, remarks, graded_by, created_at, updated_at`

type gradeRepository struct {
	db *DB
}

var (
	_ grade.Repository = (*gradeRepository)(nil)

	gradeConstraints = map[string]error{
		"grades_student_subject_term_year_key": grade.ErrDuplicate,
		"grades_student_id_fkey":               student.ErrNotFound,
	}
)

func NewGradeRepository(db *DB) grade.Repository {
	return &gradeRepository{db: db}
}

func (repo *gradeRepository) CreateGrade(ctx context.Context, g grade.Grade) (grade.Grade, error) {
	_, err := repo.db.namedExec(ctx, `
		INSERT INTO grades (`+gradeColumns+`)
		VALUES (:id, :student_id, :subject, :score, :term, :academic_year, :remarks, :graded_by, :created_at, :updated_at)`,
		g,
	)
	if err != nil {
		if mapped, ok := constraintError(err, gradeConstraints); ok {
			return grade.Grade{}, mapped
		}
		if isInvalidUUID(err) {
			return grade.Grade{}, student.ErrNotFound
		}
		return grade.Grade{}, storeError(err, "inserting grade")
	}
	return repo.GetGrade(ctx, g.ID)
}

func (repo *gradeRepository) GetGrade(ctx context.Context, id string) (grade.Grade, error) {
	var g grade.Grade
	if err := repo.db.get(ctx, &g, `SELECT `+gradeColumns+` FROM grades WHERE id = ?`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) || isInvalidUUID(err) {
			return grade.Grade{}, grade.ErrNotFound
		}
		return grade.Grade{}, storeError(err, "selecting grade")
	}
	return utcGrade(g), nil
}

func (repo *gradeRepository) QueryGrades(ctx context.Context, filter grade.QueryFilter) ([]grade.Grade, error) {
	w := new(where)
	if filter.StudentID != "" {
		w.add("student_id::text = ?", filter.StudentID)
	}
	if filter.Subject != "" {
		w.add("subject = ?", filter.Subject)
	}
	if filter.Term != "" {
		w.add("term = ?", filter.Term)
	}
	if filter.AcademicYear != "" {
		w.add("academic_year = ?", filter.AcademicYear)
	}

	grades := make([]grade.Grade, 0)
	query := `SELECT ` + gradeColumns + ` FROM grades` + w.String() + ` ORDER BY created_at, id`
	if err := repo.db.selectAll(ctx, &grades, query, w.args...); err != nil {
		return nil, storeError(err, "selecting grades")
	}
	for i := range grades {
		grades[i] = utcGrade(grades[i])
	}
	return grades, nil
}

// UpdateGrade never moves a grade to another student.
func (repo *gradeRepository) UpdateGrade(ctx context.Context, g grade.Grade) (grade.Grade, error) {
	res, err := repo.db.namedExec(ctx, `
		UPDATE grades SET
			subject = :subject, score = :score, term = :term, academic_year = :academic_year,
			remarks = :remarks, updated_at = :updated_at
		WHERE id = :id`,
		g,
	)
	if err != nil {
		if mapped, ok := constraintError(err, gradeConstraints); ok {
			return grade.Grade{}, mapped
		}
		return grade.Grade{}, storeError(err, "updating grade")
	}
	if err = oneRow(res, grade.ErrNotFound); err != nil {
		return grade.Grade{}, err
	}
	return repo.GetGrade(ctx, g.ID)
}

func (repo *gradeRepository) DeleteGrade(ctx context.Context, id string) error {
	err := repo.db.execOne(ctx, grade.ErrNotFound, `DELETE FROM grades WHERE id = ?`, id)
	switch {
	case err == nil, errors.Is(err, grade.ErrNotFound):
		return err
	case isInvalidUUID(err):
		return grade.ErrNotFound
	}
	return storeError(err, "deleting grade")
}

func utcGrade(g grade.Grade) grade.Grade {
	g.CreatedAt = g.CreatedAt.UTC()
	g.UpdatedAt = g.UpdatedAt.UTC()
	return g
}
