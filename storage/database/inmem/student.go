package inmemdb

import (
	"context"
	"sort"
	"strings"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/student"
)

type studentRepository struct {
	db *DB
}

var _ student.Repository = (*studentRepository)(nil)

func NewStudentRepository(db *DB) student.Repository {
	return &studentRepository{db: db}
}

// checkUniqueness must be called with the lock held.
func (repo *studentRepository) checkUniqueness(std student.Student) error {
	for _, s := range repo.db.students {
		if s.ID == std.ID {
			continue
		}
		if s.StudentIdentifier == std.StudentIdentifier {
			return student.ErrIdentifierExists
		}
		if std.AccountID.Valid && s.AccountID.Valid && s.AccountID.String == std.AccountID.String {
			return student.ErrAlreadyClaimed
		}
	}
	return nil
}

func (repo *studentRepository) CreateStudent(ctx context.Context, std student.Student) (student.Student, error) {
	err := repo.db.write(ctx, func() error {
		if err := repo.checkUniqueness(std); err != nil {
			return err
		}
		repo.db.students[std.ID] = std
		return nil
	})
	if err != nil {
		return student.Student{}, err
	}
	return std, nil
}

func (repo *studentRepository) GetStudent(ctx context.Context, filter student.GetFilter) (student.Student, error) {
	var found student.Student
	err := repo.db.read(ctx, func() error {
		if filter.ID != "" {
			if std, ok := repo.db.students[filter.ID]; ok {
				found = std
				return nil
			}
			return student.ErrNotFound
		}
		for _, std := range repo.db.students {
			if (filter.StudentIdentifier != "" && std.StudentIdentifier == filter.StudentIdentifier) ||
				(filter.AccountID != "" && std.AccountID.String == filter.AccountID) {
				found = std
				return nil
			}
		}
		return student.ErrNotFound
	})
	return found, err
}

func (repo *studentRepository) QueryStudents(
	ctx context.Context,
	filter student.QueryFilter,
	orderings []core.DBOrdering,
) ([]student.Student, error) {
	students := make([]student.Student, 0)
	search := strings.ToLower(filter.Search)

	_ = repo.db.read(ctx, func() error {
		for _, std := range repo.db.students {
			if search != "" &&
				!strings.Contains(strings.ToLower(std.Name), search) &&
				!strings.Contains(strings.ToLower(std.StudentIdentifier), search) {
				continue
			}
			if filter.Class != "" && !strings.EqualFold(std.Class, filter.Class) {
				continue
			}
			if filter.Section != "" && !strings.EqualFold(std.Section, filter.Section) {
				continue
			}
			students = append(students, std)
		}
		return nil
	})

	if len(orderings) == 0 {
		orderings = []core.DBOrdering{{Field: "name", Ascending: true}}
	}
	orderings = append(orderings, core.DBOrdering{Field: "student_identifier", Ascending: true})
	sort.SliceStable(students, func(i, j int) bool {
		for _, ord := range orderings {
			if c := compareStudents(students[i], students[j], ord.Field); c != 0 {
				return (c < 0) == ord.Ascending
			}
		}
		return false
	})
	return students, nil
}

func compareStudents(a, b student.Student, field string) int {
	switch field {
	case "name":
		return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	case "student_identifier":
		return strings.Compare(a.StudentIdentifier, b.StudentIdentifier)
	case "class":
		return strings.Compare(a.Class, b.Class)
	case "created_at":
		return a.CreatedAt.Compare(b.CreatedAt)
	}
	return 0
}

func (repo *studentRepository) UpdateStudent(ctx context.Context, std student.Student) (student.Student, error) {
	err := repo.db.write(ctx, func() error {
		orig, ok := repo.db.students[std.ID]
		if !ok {
			return student.ErrNotFound
		}
		std.StudentIdentifier = orig.StudentIdentifier
		std.CreatedAt = orig.CreatedAt
		if err := repo.checkUniqueness(std); err != nil {
			return err
		}
		repo.db.students[std.ID] = std
		return nil
	})
	if err != nil {
		return student.Student{}, err
	}
	return std, nil
}

// DeleteStudent cascades to the student's grades & attendance records.
func (repo *studentRepository) DeleteStudent(ctx context.Context, id string) error {
	return repo.db.write(ctx, func() error {
		if _, ok := repo.db.students[id]; !ok {
			return student.ErrNotFound
		}
		delete(repo.db.students, id)
		for gid, g := range repo.db.grades {
			if g.StudentID == id {
				delete(repo.db.grades, gid)
			}
		}
		for aid, a := range repo.db.attendance {
			if a.StudentID == id {
				delete(repo.db.attendance, aid)
			}
		}
		return nil
	})
}
