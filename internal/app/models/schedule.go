package models

// ProxySchedule is a substitute's load for one date.
type ProxySchedule struct {
	TeacherID            int64   `json:"teacher_id"`
	Date                 string  `json:"date"`
	AssignedProxies      []Proxy `json:"assigned_proxies"`
	FreePeriods          []int   `json:"free_periods"`
	TotalPeriods         int     `json:"total_periods"`
	TotalAssignedProxies int     `json:"total_assigned_proxies"`
}

// AbsentPeriod is one timetable cell the absent teacher would have taught.
type AbsentPeriod struct {
	Period           int    `json:"period"`
	Day              string `json:"day"`
	Subject          string `json:"subject"`
	ClassroomID      int64  `json:"classroom_id"`
	ClassroomName    string `json:"classroom_name"`
	TimetableEntryID int64  `json:"timetable_entry_id"`
}

type ProxySummary struct {
	ID               int64       `json:"id"`
	Period           int         `json:"period"`
	ClassroomID      int64       `json:"classroom_id"`
	Classroom        string      `json:"classroom"`
	ProxyTeacherID   int64       `json:"proxy_teacher_id"`
	ProxyTeacherName string      `json:"proxy_teacher_name"`
	Subject          string      `json:"subject"`
	Status           ProxyStatus `json:"status"`
}

type AbsenceDetails struct {
	Teacher          Teacher            `json:"teacher"`
	Date             string             `json:"date"`
	Absence          *TeacherAttendance `json:"absence,omitempty"`
	Periods          []AbsentPeriod     `json:"periods"`
	PendingProxies   []ProxySummary     `json:"pending_proxies"`
	CompletedProxies []ProxySummary     `json:"completed_proxies"`
}

// TimetableSlot is a rendered timetable cell, optionally annotated for a date.
type TimetableSlot struct {
	EntryID       int64          `json:"entry_id"`
	Period        int            `json:"period"`
	Subject       string         `json:"subject"`
	TeacherID     *int64         `json:"teacher_id,omitempty"`
	TeacherName   string         `json:"teacher_name,omitempty"`
	ClassroomID   int64          `json:"classroom_id"`
	ClassroomName string         `json:"classroom_name,omitempty"`
	TeacherAbsent bool           `json:"teacher_absent"`
	Proxies       []ProxySummary `json:"proxies"`
}

type ClassroomTimetable struct {
	ClassroomID   int64                      `json:"classroom_id"`
	ClassroomName string                     `json:"classroom_name"`
	SchoolName    string                     `json:"school_name"`
	Date          string                     `json:"date,omitempty"`
	Timetable     map[string][]TimetableSlot `json:"timetable"`
}

type TeacherSchedule struct {
	Teacher        Teacher                    `json:"teacher"`
	Date           string                     `json:"date,omitempty"`
	IsAbsentOnDate bool                       `json:"is_absent_on_date"`
	Schedule       map[string][]TimetableSlot `json:"schedule"`
}

// WeekendConfig describes a classroom's effective weekend.
type WeekendConfig struct {
	ClassroomID  int64    `json:"classroom_id"`
	WeekendDays  []int    `json:"weekend_days"`
	WeekendNames []string `json:"weekend_names"`
}
