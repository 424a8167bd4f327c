package models

import "time"

// StudentFilter narrows student listings; zero fields are ignored.
type StudentFilter struct {
	SchoolID       int64
	ClassroomID    *int64
	AcademicYearID *int64
	IDs            []int64
}

// AttendanceFilter selects attendance rows for a student set over an inclusive date range.
type AttendanceFilter struct {
	StudentIDs     []int64
	From           time.Time
	To             time.Time
	AcademicYearID *int64
}

type TimetableFilter struct {
	SchoolID    int64
	ClassroomID *int64
	TeacherID   *int64
	Day         string
	Period      int
}

type ProxyFilter struct {
	AbsenceID         *int64
	ProxyTeacherID    *int64
	OriginalTeacherID *int64
	ClassroomID       *int64
	Date              *time.Time
	Day               string
	Period            int
	Statuses          []ProxyStatus
}
