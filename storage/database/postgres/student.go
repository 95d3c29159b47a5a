package pgrepos

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/student"
)

const studentColumns = `id, student_identifier, name, class, section, date_of_birth,
	guardian_name, guardian_contact,
	address_street, address_city, address_state, address_zip_code,
	emergency_contact_name, emergency_contact_relationship, emergency_contact_phone,
	account_id, created_at, updated_at`

// studentRow flattens the nested profile into columns.
type studentRow struct {
	ID                           string      `db:"id"`
	StudentIdentifier            string      `db:"student_identifier"`
	Name                         string      `db:"name"`
	Class                        string      `db:"class"`
	Section                      string      `db:"section"`
	DateOfBirth                  core.Date   `db:"date_of_birth"`
	GuardianName                 string      `db:"guardian_name"`
	GuardianContact              string      `db:"guardian_contact"`
	AddressStreet                string      `db:"address_street"`
	AddressCity                  string      `db:"address_city"`
	AddressState                 string      `db:"address_state"`
	AddressZipCode               string      `db:"address_zip_code"`
	EmergencyContactName         string      `db:"emergency_contact_name"`
	EmergencyContactRelationship string      `db:"emergency_contact_relationship"`
	EmergencyContactPhone        string      `db:"emergency_contact_phone"`
	AccountID                    null.String `db:"account_id"`
	CreatedAt                    time.Time   `db:"created_at"`
	UpdatedAt                    time.Time   `db:"updated_at"`
}

func toStudentRow(std student.Student) studentRow {
	return studentRow{
		ID:                           std.ID,
		StudentIdentifier:            std.StudentIdentifier,
		Name:                         std.Name,
		Class:                        std.Class,
		Section:                      std.Section,
		DateOfBirth:                  std.DateOfBirth,
		GuardianName:                 std.Guardian.Name,
		GuardianContact:              std.Guardian.Contact,
		AddressStreet:                std.Address.Street,
		AddressCity:                  std.Address.City,
		AddressState:                 std.Address.State,
		AddressZipCode:               std.Address.ZipCode,
		EmergencyContactName:         std.EmergencyContact.Name,
		EmergencyContactRelationship: std.EmergencyContact.Relationship,
		EmergencyContactPhone:        std.EmergencyContact.Phone,
		AccountID:                    std.AccountID,
		CreatedAt:                    std.CreatedAt,
		UpdatedAt:                    std.UpdatedAt,
	}
}

func (row studentRow) student() student.Student {
	return student.Student{
		ID:                row.ID,
		StudentIdentifier: row.StudentIdentifier,
		Name:              row.Name,
		Class:             row.Class,
		Section:           row.Section,
		DateOfBirth:       row.DateOfBirth,
		Guardian:          student.Guardian{Name: row.GuardianName, Contact: row.GuardianContact},
		Address: student.Address{
			Street:  row.AddressStreet,
			City:    row.AddressCity,
			State:   row.AddressState,
			ZipCode: row.AddressZipCode,
		},
		EmergencyContact: student.EmergencyContact{
			Name:         row.EmergencyContactName,
			Relationship: row.EmergencyContactRelationship,
			Phone:        row.EmergencyContactPhone,
		},
		AccountID: row.AccountID,
		CreatedAt: row.CreatedAt.UTC(),
		UpdatedAt: row.UpdatedAt.UTC(),
	}
}

type studentRepository struct {
	db *DB
}

var (
	_ student.Repository = (*studentRepository)(nil)

	studentConstraints = map[string]error{
		"students_student_identifier_key": student.ErrIdentifierExists,
		"students_account_id_key":         student.ErrAlreadyClaimed,
	}

	studentOrderColumns = map[string]string{
		"name":               "lower(name)",
		"student_identifier": "student_identifier",
		"class":              "class",
		"created_at":         "created_at",
	}
)

func NewStudentRepository(db *DB) student.Repository {
	return &studentRepository{db: db}
}

func (repo *studentRepository) CreateStudent(ctx context.Context, std student.Student) (student.Student, error) {
	_, err := repo.db.namedExec(ctx, `
		INSERT INTO students (`+studentColumns+`)
		VALUES (:id, :student_identifier, :name, :class, :section, :date_of_birth,
			:guardian_name, :guardian_contact,
			:address_street, :address_city, :address_state, :address_zip_code,
			:emergency_contact_name, :emergency_contact_relationship, :emergency_contact_phone,
			:account_id, :created_at, :updated_at)`,
		toStudentRow(std),
	)
	if err != nil {
		if mapped, ok := constraintError(err, studentConstraints); ok {
			return student.Student{}, mapped
		}
		return student.Student{}, storeError(err, "inserting student")
	}
	return std, nil
}

func (repo *studentRepository) GetStudent(ctx context.Context, filter student.GetFilter) (student.Student, error) {
	w := new(where)
	switch {
	case filter.ID != "":
		w.add("id = ?", filter.ID)
	case filter.StudentIdentifier != "":
		w.add("student_identifier = ?", filter.StudentIdentifier)
	case filter.AccountID != "":
		w.add("account_id = ?", filter.AccountID)
	default:
		return student.Student{}, student.ErrNotFound
	}

	var row studentRow
	if err := repo.db.get(ctx, &row, `SELECT `+studentColumns+` FROM students`+w.String(), w.args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) || isInvalidUUID(err) {
			return student.Student{}, student.ErrNotFound
		}
		return student.Student{}, storeError(err, "selecting student")
	}
	return row.student(), nil
}

func (repo *studentRepository) QueryStudents(
	ctx context.Context,
	filter student.QueryFilter,
	orderings []core.DBOrdering,
) ([]student.Student, error) {
	w := new(where)
	if filter.Search != "" {
		pattern := "%" + escapeLike(strings.ToLower(filter.Search)) + "%"
		w.add("(lower(name) LIKE ? OR lower(student_identifier) LIKE ?)", pattern, pattern)
	}
	if filter.Class != "" {
		w.add("lower(class) = lower(?)", filter.Class)
	}
	if filter.Section != "" {
		w.add("lower(section) = lower(?)", filter.Section)
	}

	if len(orderings) == 0 {
		orderings = []core.DBOrdering{{Field: "name", Ascending: true}}
	}
	orderings = append(orderings, core.DBOrdering{Field: "student_identifier", Ascending: true})
	order := orderBy(orderings, studentOrderColumns)

	var rows []studentRow
	if err := repo.db.selectAll(ctx, &rows, `SELECT `+studentColumns+` FROM students`+w.String()+order, w.args...); err != nil {
		return nil, storeError(err, "selecting students")
	}
	students := make([]student.Student, 0, len(rows))
	for _, row := range rows {
		students = append(students, row.student())
	}
	return students, nil
}

// UpdateStudent never changes the student identifier or the creation time.
func (repo *studentRepository) UpdateStudent(ctx context.Context, std student.Student) (student.Student, error) {
	res, err := repo.db.namedExec(ctx, `
		UPDATE students SET
			name = :name, class = :class, section = :section, date_of_birth = :date_of_birth,
			guardian_name = :guardian_name, guardian_contact = :guardian_contact,
			address_street = :address_street, address_city = :address_city,
			address_state = :address_state, address_zip_code = :address_zip_code,
			emergency_contact_name = :emergency_contact_name,
			emergency_contact_relationship = :emergency_contact_relationship,
			emergency_contact_phone = :emergency_contact_phone,
			account_id = :account_id, updated_at = :updated_at
		WHERE id = :id`,
		toStudentRow(std),
	)
	if err != nil {
		if mapped, ok := constraintError(err, studentConstraints); ok {
			return student.Student{}, mapped
		}
		return student.Student{}, storeError(err, "updating student")
	}
	if err = oneRow(res, student.ErrNotFound); err != nil {
		return student.Student{}, err
	}
	return repo.GetStudent(ctx, student.GetFilter{ID: std.ID})
}

// DeleteStudent relies on ON DELETE CASCADE for grades & attendance.
func (repo *studentRepository) DeleteStudent(ctx context.Context, id string) error {
	err := repo.db.execOne(ctx, student.ErrNotFound, `DELETE FROM students WHERE id = ?`, id)
	switch {
	case err == nil, errors.Is(err, student.ErrNotFound):
		return err
	case isInvalidUUID(err):
		return student.ErrNotFound
	}
	return storeError(err, "deleting student")
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
