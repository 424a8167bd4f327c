package services

import (
	"context"
	"time"

	"github.com/yigit/schoolcore/internal/app/models"
)

// The store interfaces below are the storage collaborator of the engines.
// Lookups that match nothing return dberrors.ErrNotFound; unique-key
// violations come back as *dberrors.ConstraintError. Both the Postgres
// repositories and the in-memory store implement all of them.

type SchoolStore interface {
	GetSchool(ctx context.Context, id int64) (*models.School, error)
	GetUser(ctx context.Context, schoolID, id int64) (*models.User, error)
}

type AcademicYearStore interface {
	GetAcademicYear(ctx context.Context, schoolID, id int64) (*models.AcademicYear, error)
	GetCurrentAcademicYear(ctx context.Context, schoolID int64) (*models.AcademicYear, error)
	// SetCurrentAcademicYear flips the current flag atomically for the school.
	SetCurrentAcademicYear(ctx context.Context, schoolID, id int64) error
	ListHolidayDates(ctx context.Context, academicYearID int64) ([]time.Time, error)
}

type ClassroomStore interface {
	GetClassroom(ctx context.Context, schoolID, id int64) (*models.ClassRoom, error)
	// ListClassrooms returns the school's classrooms, restricted to one year when academicYearID is set.
	ListClassrooms(ctx context.Context, schoolID int64, academicYearID *int64) ([]models.ClassRoom, error)
}

type StudentStore interface {
	GetStudent(ctx context.Context, schoolID, id int64) (*models.Student, error)
	ListStudents(ctx context.Context, filter models.StudentFilter) ([]models.Student, error)
	// FindEnrollment returns the user's student record for the academic year.
	FindEnrollment(ctx context.Context, userID, academicYearID int64) (*models.Student, error)
	RollNumberTaken(ctx context.Context, classroomID int64, rollNumber int) (bool, error)
	CreateStudent(ctx context.Context, student *models.Student) error
}

type AttendanceStore interface {
	ListAttendance(ctx context.Context, filter models.AttendanceFilter) ([]models.Attendance, error)
	GetAttendance(ctx context.Context, schoolID, id int64) (*models.Attendance, error)
	// UpsertAttendance writes every record keyed by (student, date, year),
	// overwriting present on conflict. It returns the number of rows written.
	UpsertAttendance(ctx context.Context, records []models.Attendance) (int, error)
	UpdateAttendancePresent(ctx context.Context, id int64, present bool, markedBy *int64) error
	DeleteAttendance(ctx context.Context, id int64) error
}

type TeacherStore interface {
	GetTeacher(ctx context.Context, schoolID, id int64) (*models.Teacher, error)
	ListTeachers(ctx context.Context, schoolID int64) ([]models.Teacher, error)
}

type TimetableStore interface {
	ListTimetable(ctx context.Context, filter models.TimetableFilter) ([]models.TimetableEntry, error)
	// UpsertTimetableEntry writes the entry keyed by (classroom, day, period).
	UpsertTimetableEntry(ctx context.Context, entry *models.TimetableEntry) error
	// MaxPeriod returns the highest period in the school's timetable, 0 when empty.
	MaxPeriod(ctx context.Context, schoolID int64) (int, error)
}

type TeacherAttendanceStore interface {
	GetTeacherAttendance(ctx context.Context, id int64) (*models.TeacherAttendance, error)
	// FindTeacherAttendance returns the (teacher, date) row whatever its status.
	FindTeacherAttendance(ctx context.Context, teacherID int64, date time.Time) (*models.TeacherAttendance, error)
	ListAbsences(ctx context.Context, teacherIDs []int64, date time.Time) ([]models.TeacherAttendance, error)
	// UpsertTeacherAttendance writes the rows keyed by (teacher, date).
	UpsertTeacherAttendance(ctx context.Context, rows []models.TeacherAttendance) (int, error)
	DeleteTeacherAttendance(ctx context.Context, teacherIDs []int64, date time.Time) (int, error)
}

type ProxyStore interface {
	GetProxy(ctx context.Context, id int64) (*models.Proxy, error)
	ListProxies(ctx context.Context, filter models.ProxyFilter) ([]models.Proxy, error)
	// UpsertProxy writes the proxy keyed by (absence, classroom, day, period)
	// and fills in ID and timestamps of the stored row.
	UpsertProxy(ctx context.Context, proxy *models.Proxy) error
	// UpdateProxyStatus moves a proxy from one of the from statuses to status.
	// It returns dberrors.ErrNotFound when no row matched.
	UpdateProxyStatus(ctx context.Context, id int64, from []models.ProxyStatus, status models.ProxyStatus, completedAt *time.Time) error
}

// Store is the full storage collaborator.
type Store interface {
	SchoolStore
	AcademicYearStore
	ClassroomStore
	StudentStore
	AttendanceStore
	TeacherStore
	TimetableStore
	TeacherAttendanceStore
	ProxyStore
}
