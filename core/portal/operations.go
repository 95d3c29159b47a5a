package portal

import (
	"github.com/trezcool/academia/core/access"
)

// Every token-bearing operation and who may call it.
// SelfScoped operations let students through for their own profile only.
var (
	OpMe             = access.Operation{Name: "me", Roles: access.Anyone}
	OpChangePassword = access.Operation{Name: "changePassword", Roles: access.Anyone}

	OpListStudents     = access.Operation{Name: "listStudents", Roles: access.Teachers}
	OpGetStudent       = access.Operation{Name: "getStudent", Roles: access.Teachers}
	OpCreateStudent    = access.Operation{Name: "createStudent", Roles: access.Teachers}
	OpUpdateStudent    = access.Operation{Name: "updateStudent", Roles: access.Teachers}
	OpDeleteStudent    = access.Operation{Name: "deleteStudent", Roles: access.Teachers}
	OpUpdateOwnProfile = access.Operation{Name: "updateOwnProfile", Roles: access.Students, SelfScoped: true}

	OpListGrades          = access.Operation{Name: "listGrades", Roles: access.Teachers}
	OpGetGradesForStudent = access.Operation{Name: "getGradesForStudent", Roles: access.Anyone, SelfScoped: true}
	OpCreateGrade         = access.Operation{Name: "createGrade", Roles: access.Teachers}
	OpUpdateGrade         = access.Operation{Name: "updateGrade", Roles: access.Teachers}
	OpDeleteGrade         = access.Operation{Name: "deleteGrade", Roles: access.Teachers}

	OpListAttendance          = access.Operation{Name: "listAttendance", Roles: access.Teachers}
	OpGetAttendanceForStudent = access.Operation{Name: "getAttendanceForStudent", Roles: access.Anyone, SelfScoped: true}
	OpGetAttendanceForDate    = access.Operation{Name: "getAttendanceForDate", Roles: access.Teachers}
	OpMarkAttendance          = access.Operation{Name: "markAttendance", Roles: access.Teachers}
	OpMarkAttendanceBatch     = access.Operation{Name: "markAttendanceBatch", Roles: access.Teachers}
	OpUpdateAttendance        = access.Operation{Name: "updateAttendance", Roles: access.Teachers}
	OpDeleteAttendance        = access.Operation{Name: "deleteAttendance", Roles: access.Teachers}

	OpGetAggregates    = access.Operation{Name: "getAggregates", Roles: access.Anyone, SelfScoped: true}
	OpGetClassOverview = access.Operation{Name: "getClassOverview", Roles: access.Teachers}
)

// Operations lists the catalog, for metrics pre-registration.
var Operations = []access.Operation{
	OpMe, OpChangePassword,
	OpListStudents, OpGetStudent, OpCreateStudent, OpUpdateStudent, OpDeleteStudent, OpUpdateOwnProfile,
	OpListGrades, OpGetGradesForStudent, OpCreateGrade, OpUpdateGrade, OpDeleteGrade,
	OpListAttendance, OpGetAttendanceForStudent, OpGetAttendanceForDate,
	OpMarkAttendance, OpMarkAttendanceBatch, OpUpdateAttendance, OpDeleteAttendance,
	OpGetAggregates, OpGetClassOverview,
}
