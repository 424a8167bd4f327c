package models

import "time"

// AcademicYear is a school's yearly session; at most one is current per school.
type AcademicYear struct {
	ID        int64     `json:"id" db:"id"`
	SchoolID  int64     `json:"school_id" db:"school_id"`
	Year      string    `json:"year" db:"year"`
	IsCurrent bool      `json:"is_current" db:"is_current"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// ClassRoom is a cohort within one academic year. StartDate and EndDate are
// optional; when both are set EndDate is after StartDate.
type ClassRoom struct {
	ID             int64      `json:"id" db:"id"`
	SchoolID       int64      `json:"school_id" db:"school_id"`
	AcademicYearID int64      `json:"academic_year_id" db:"academic_year_id"`
	Name           string     `json:"name" db:"name"`
	StartDate      *time.Time `json:"start_date,omitempty" db:"start_date"`
	EndDate        *time.Time `json:"end_date,omitempty" db:"end_date"`
	WeekendDays    []int      `json:"weekend_days" db:"weekend_days"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
}

// HasDateRange reports whether both bounds are configured.
func (c ClassRoom) HasDateRange() bool {
	return c.StartDate != nil && c.EndDate != nil
}

// Student is one per-year enrollment of a user in a classroom.
// AcademicYearID mirrors the classroom's year so the store can enforce
// one enrollment per user per year with a plain unique key.
type Student struct {
	ID             int64     `json:"id" db:"id"`
	UserID         int64     `json:"user_id" db:"user_id"`
	ClassroomID    int64     `json:"classroom_id" db:"classroom_id"`
	AcademicYearID int64     `json:"academic_year_id" db:"academic_year_id"`
	RollNumber     int       `json:"roll_number" db:"roll_number"`
	Name           string    `json:"name,omitempty"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

type Holiday struct {
	ID             int64     `json:"id" db:"id"`
	AcademicYearID int64     `json:"academic_year_id" db:"academic_year_id"`
	Date           time.Time `json:"date" db:"date"`
	Name           string    `json:"name" db:"name"`
}

// Attendance is one mark per (student, date, academic year).
type Attendance struct {
	ID             int64     `json:"id" db:"id"`
	StudentID      int64     `json:"student_id" db:"student_id"`
	AcademicYearID int64     `json:"academic_year_id" db:"academic_year_id"`
	Date           time.Time `json:"date" db:"date"`
	Present        bool      `json:"present" db:"present"`
	MarkedBy       *int64    `json:"marked_by,omitempty" db:"marked_by"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}
