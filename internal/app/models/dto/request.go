package dto

// AttendanceRecordRequest is one mark in a batch. Records are checked one by
// one by the attendance service so a bad record never fails the batch.
type AttendanceRecordRequest struct {
	StudentID int64  `json:"student_id"`
	Date      string `json:"date"`
	Present   *bool  `json:"present"`
}

type SubmitAttendanceRequest struct {
	AcademicYearID *int64                    `json:"academic_year_id" validate:"omitempty,gt=0"`
	Records        []AttendanceRecordRequest `json:"records"`
}

type UpdateAttendanceRequest struct {
	Present *bool `json:"present" validate:"required"`
}

type EnrollStudentRequest struct {
	UserID      int64 `json:"user_id" validate:"required,gt=0"`
	ClassroomID int64 `json:"classroom_id" validate:"required,gt=0"`
	RollNumber  int   `json:"roll_number" validate:"required,min=1"`
}

// TeacherAbsenceRequest marks teachers absent or present for one date.
type TeacherAbsenceRequest struct {
	TeacherIDs []int64 `json:"teacher_ids" validate:"required,min=1,dive,gt=0"`
	Date       string  `json:"date" validate:"required,schooldate"`
	Reason     string  `json:"reason" validate:"max=255"`
}

type AssignProxyRequest struct {
	AbsenceID      int64  `json:"absence_id" validate:"required,gt=0"`
	ClassroomID    int64  `json:"classroom_id" validate:"required,gt=0"`
	Period         int    `json:"period" validate:"required,min=1"`
	ProxyTeacherID int64  `json:"proxy_teacher_id" validate:"required,gt=0"`
	Subject        string `json:"subject" validate:"max=100"`
	Reason         string `json:"reason" validate:"max=255"`
}

type TimetableEntryRequest struct {
	ClassroomID int64  `json:"classroom_id" validate:"required,gt=0"`
	Day         string `json:"day" validate:"required,weekday"`
	Period      int    `json:"period" validate:"required,min=1"`
	Subject     string `json:"subject" validate:"required,max=100"`
	TeacherID   *int64 `json:"teacher_id" validate:"omitempty,gt=0"`
}
