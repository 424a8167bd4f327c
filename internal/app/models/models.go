// Package models holds the persisted entities of the school core and the
// result shapes computed from them.
package models

// UserType distinguishes the three kinds of school accounts.
type UserType string

const (
	UserTypeAdmin   UserType = "admin"
	UserTypeTeacher UserType = "teacher"
	UserTypeStudent UserType = "student"
)

// Actor is the already-authenticated caller on whose behalf a mutation runs.
// It is resolved at the boundary and passed explicitly into every mutating call.
type Actor struct {
	UserID    int64    `json:"user_id"`
	SchoolID  int64    `json:"school_id"`
	UserType  UserType `json:"user_type"`
	TeacherID *int64   `json:"teacher_id,omitempty"`
}

// Unique constraint and index names shared by the schema and the in-memory store.
const (
	ConstraintAcademicYearCurrent  = "uq_academic_years_current"
	ConstraintClassroomName        = "uq_classrooms_name_school_year"
	ConstraintStudentUserYear      = "uq_students_user_year"
	ConstraintStudentUserClassroom = "uq_students_user_classroom"
	ConstraintStudentRoll          = "uq_students_classroom_roll"
	ConstraintAttendanceNaturalKey = "uq_attendance_student_date_year"
	ConstraintHolidayDate          = "uq_holidays_year_date"
	ConstraintTeacherUser          = "uq_teachers_user"
	ConstraintTimetableSlot        = "uq_timetable_classroom_day_period"
	ConstraintTeacherAttendance    = "uq_teacher_attendance_teacher_date"
	ConstraintProxySlot            = "uq_proxies_absence_classroom_day_period"
)
