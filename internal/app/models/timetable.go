package models

import "time"

// TimetableEntry is one weekly cell keyed by (classroom, day, period).
// Day is a lowercase weekday name.
type TimetableEntry struct {
	ID          int64  `json:"id" db:"id"`
	ClassroomID int64  `json:"classroom_id" db:"classroom_id"`
	Day         string `json:"day" db:"day"`
	Period      int    `json:"period" db:"period"`
	Subject     string `json:"subject" db:"subject"`
	TeacherID   *int64 `json:"teacher_id,omitempty" db:"teacher_id"`
}

type TeacherAttendanceStatus string

const (
	TeacherPresent TeacherAttendanceStatus = "present"
	TeacherAbsent  TeacherAttendanceStatus = "absent"
)

// TeacherAttendance records a teacher's presence for a date. A row with
// status absent is what the rest of the system calls an absence.
type TeacherAttendance struct {
	ID        int64                   `json:"id" db:"id"`
	TeacherID int64                   `json:"teacher_id" db:"teacher_id"`
	Date      time.Time               `json:"date" db:"date"`
	Status    TeacherAttendanceStatus `json:"status" db:"status"`
	Reason    string                  `json:"reason,omitempty" db:"reason"`
	MarkedBy  *int64                  `json:"marked_by,omitempty" db:"marked_by"`
	CreatedAt time.Time               `json:"created_at" db:"created_at"`
	UpdatedAt time.Time               `json:"updated_at" db:"updated_at"`
}

func (a TeacherAttendance) IsAbsent() bool {
	return a.Status == TeacherAbsent
}

type ProxyStatus string

const (
	ProxyAssigned  ProxyStatus = "assigned"
	ProxyCompleted ProxyStatus = "completed"
	ProxyCancelled ProxyStatus = "cancelled"
)

// ActiveProxyStatuses are the statuses that occupy the substitute's slot.
var ActiveProxyStatuses = []ProxyStatus{ProxyAssigned, ProxyCompleted}

// Proxy is a substitute assignment for one period of an absence.
type Proxy struct {
	ID                int64       `json:"id" db:"id"`
	AbsenceID         int64       `json:"absence_id" db:"absence_id"`
	ClassroomID       int64       `json:"classroom_id" db:"classroom_id"`
	Day               string      `json:"day" db:"day"`
	Period            int         `json:"period" db:"period"`
	Date              time.Time   `json:"date" db:"date"`
	OriginalTeacherID int64       `json:"original_teacher_id" db:"original_teacher_id"`
	ProxyTeacherID    int64       `json:"proxy_teacher_id" db:"proxy_teacher_id"`
	Subject           string      `json:"subject" db:"subject"`
	Status            ProxyStatus `json:"status" db:"status"`
	Reason            string      `json:"reason,omitempty" db:"reason"`
	AssignedBy        *int64      `json:"assigned_by,omitempty" db:"assigned_by"`
	CompletedAt       *time.Time  `json:"completed_at,omitempty" db:"completed_at"`
	CreatedAt         time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time   `json:"updated_at" db:"updated_at"`
}
