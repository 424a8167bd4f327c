package models

// ClassroomStats is the expected-versus-marked picture of one classroom.
// AttendancePercentage is present over marked records, not over expected ones.
type ClassroomStats struct {
	ClassroomID          int64   `json:"classroom_id"`
	ClassroomName        string  `json:"classroom_name"`
	StudentCount         int     `json:"student_count"`
	AttendanceRecords    int     `json:"attendance_records"`
	PresentCount         int     `json:"present_count"`
	ExpectedRecords      int     `json:"expected_records"`
	PendingRecords       int     `json:"pending_records"`
	IsCompleted          bool    `json:"is_completed"`
	AttendancePercentage float64 `json:"attendance_percentage"`
	StartDate            string  `json:"start_date"`
	EndDate              string  `json:"end_date"`
}

type SchoolStatistics struct {
	TotalStudents               int     `json:"total_students"`
	TotalPresent                int     `json:"total_present"`
	OverallAttendancePercentage float64 `json:"overall_attendance_percentage"`
	ClassroomsCompleted         int     `json:"classrooms_completed"`
	ClassroomsPending           int     `json:"classrooms_pending"`
	TotalClassrooms             int     `json:"total_classrooms"`
	TotalAttendanceRecords      int     `json:"total_attendance_records"`
	ExpectedRecords             int     `json:"expected_records"`
	PendingRecords              int     `json:"pending_records"`
}

// SchoolStats aggregates ClassroomStats over every classroom of a year.
type SchoolStats struct {
	Year             string           `json:"year"`
	AsOfDate         string           `json:"as_of_date"`
	SchoolStatistics SchoolStatistics `json:"school_statistics"`
	ClassroomDetails []ClassroomStats `json:"classroom_details"`
	Period           string           `json:"period,omitempty"`
}

// ClassroomSnapshot is a classroom's marked attendance within a short window.
type ClassroomSnapshot struct {
	ClassroomID          int64   `json:"classroom_id"`
	ClassroomName        string  `json:"classroom_name"`
	StudentCount         int     `json:"student_count"`
	AttendanceRecords    int     `json:"attendance_records"`
	PresentCount         int     `json:"present_count"`
	AttendancePercentage float64 `json:"attendance_percentage"`
}

type SnapshotTotals struct {
	TotalStudents               int     `json:"total_students"`
	TotalPresent                int     `json:"total_present"`
	OverallAttendancePercentage float64 `json:"overall_attendance_percentage"`
	TotalAttendanceRecords      int     `json:"total_attendance_records"`
}

// SchoolSnapshot is the today/monthly variant of SchoolStats.
type SchoolSnapshot struct {
	Year             string              `json:"year"`
	AsOfDate         string              `json:"as_of_date"`
	Period           string              `json:"period"`
	From             string              `json:"from"`
	To               string              `json:"to"`
	SchoolStatistics SnapshotTotals      `json:"school_statistics"`
	ClassroomDetails []ClassroomSnapshot `json:"classroom_details"`
}

type DailyStat struct {
	Date    string `json:"date"`
	Present int    `json:"present"`
	Total   int    `json:"total"`
	Pending int    `json:"pending"`
}

type WeeklyStat struct {
	Week    string `json:"week"`
	Present int    `json:"present"`
	Total   int    `json:"total"`
	Pending int    `json:"pending"`
}

type MonthlyStat struct {
	Month        string `json:"month"`
	TotalDays    int    `json:"total_days"`
	Holidays     int    `json:"holidays"`
	Weekends     int    `json:"weekends"`
	ExpectedDays int    `json:"expected_days"`
	Present      int    `json:"present"`
	Absent       int    `json:"absent"`
	Pending      int    `json:"pending"`
}

// YearlyStat.Pending is marked-absent (total - present), not expected minus marked.
type YearlyStat struct {
	Present    int     `json:"present"`
	Total      int     `json:"total"`
	Pending    int     `json:"pending"`
	Percentage float64 `json:"percentage"`
}

// PeriodReport is a classroom (or whole school) trend report.
// Statistics holds a slice of DailyStat, WeeklyStat, MonthlyStat or YearlyStat.
type PeriodReport struct {
	Period     string      `json:"period"`
	Year       string      `json:"year"`
	Classroom  string      `json:"classroom"`
	From       string      `json:"from,omitempty"`
	To         string      `json:"to,omitempty"`
	Statistics interface{} `json:"statistics"`
}

// TeacherAvailability is the verdict for one teacher and slot.
// Reason is empty when Available, otherwise one of absent, class, proxy.
type TeacherAvailability struct {
	TeacherID   int64  `json:"teacher_id"`
	TeacherName string `json:"teacher_name"`
	Available   bool   `json:"available"`
	Reason      string `json:"reason,omitempty"`
	ConflictID  int64  `json:"conflict_id,omitempty"`
}

const (
	ReasonAbsent = "absent"
	ReasonClass  = "class"
	ReasonProxy  = "proxy"
)

type SlotAvailability struct {
	Date        string                `json:"date"`
	Day         string                `json:"day"`
	Period      int                   `json:"period"`
	Available   []TeacherAvailability `json:"available"`
	Unavailable []TeacherAvailability `json:"unavailable"`
}
