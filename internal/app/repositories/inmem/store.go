// Package inmem is a map-backed store that enforces the same unique keys as
// the Postgres schema. It backs the "memory" database driver and the tests.
package inmem

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/yigit/schoolcore/internal/app/calendar"
	"github.com/yigit/schoolcore/internal/app/models"
	"github.com/yigit/schoolcore/internal/pkg/dberrors"
)

type Store struct {
	mu  sync.RWMutex
	seq int64

	schools           map[int64]*models.School
	users             map[int64]*models.User
	years             map[int64]*models.AcademicYear
	classrooms        map[int64]*models.ClassRoom
	students          map[int64]*models.Student
	holidays          map[int64]*models.Holiday
	attendance        map[int64]*models.Attendance
	teachers          map[int64]*models.Teacher
	timetable         map[int64]*models.TimetableEntry
	teacherAttendance map[int64]*models.TeacherAttendance
	proxies           map[int64]*models.Proxy

	nowFunc func() time.Time
}

func New() *Store {
	return &Store{
		schools:           make(map[int64]*models.School),
		users:             make(map[int64]*models.User),
		years:             make(map[int64]*models.AcademicYear),
		classrooms:        make(map[int64]*models.ClassRoom),
		students:          make(map[int64]*models.Student),
		holidays:          make(map[int64]*models.Holiday),
		attendance:        make(map[int64]*models.Attendance),
		teachers:          make(map[int64]*models.Teacher),
		timetable:         make(map[int64]*models.TimetableEntry),
		teacherAttendance: make(map[int64]*models.TeacherAttendance),
		proxies:           make(map[int64]*models.Proxy),
		nowFunc:           func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) nextID() int64 {
	s.seq++
	return s.seq
}

func sortedKeys[T any](m map[int64]T) []int64 {
	keys := make([]int64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

func containsID(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func sameDay(a, b time.Time) bool {
	return calendar.Truncate(a).Equal(calendar.Truncate(b))
}

// --- schools, users, teachers ---

func (s *Store) CreateSchool(_ context.Context, school *models.School) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	school.ID = s.nextID()
	school.CreatedAt = s.nowFunc()
	cp := *school
	s.schools[school.ID] = &cp
	return nil
}

func (s *Store) GetSchool(_ context.Context, id int64) (*models.School, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	school, ok := s.schools[id]
	if !ok {
		return nil, dberrors.ErrNotFound
	}
	cp := *school
	return &cp, nil
}

func (s *Store) CreateUser(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.schools[user.SchoolID]; !ok {
		return &dberrors.ConstraintError{Constraint: "fk_users_school", Kind: "foreign key"}
	}
	for _, u := range s.users {
		if u.Username == user.Username {
			return dberrors.NewUniqueViolation("uq_users_username")
		}
	}
	user.ID = s.nextID()
	user.CreatedAt = s.nowFunc()
	cp := *user
	s.users[user.ID] = &cp
	return nil
}

func (s *Store) GetUser(_ context.Context, schoolID, id int64) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok || u.SchoolID != schoolID {
		return nil, dberrors.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *Store) CreateTeacher(_ context.Context, teacher *models.Teacher) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[teacher.UserID]; !ok {
		return &dberrors.ConstraintError{Constraint: "fk_teachers_user", Kind: "foreign key"}
	}
	for _, t := range s.teachers {
		if t.UserID == teacher.UserID {
			return dberrors.NewUniqueViolation(models.ConstraintTeacherUser)
		}
	}
	teacher.ID = s.nextID()
	teacher.CreatedAt = s.nowFunc()
	cp := *teacher
	s.teachers[teacher.ID] = &cp
	return nil
}

// teacherView fills the user-derived fields the Postgres store gets from a join.
func (s *Store) teacherView(t *models.Teacher) models.Teacher {
	cp := *t
	if u, ok := s.users[t.UserID]; ok {
		cp.Name = u.FullName()
		cp.Email = u.Email
	}
	return cp
}

func (s *Store) GetTeacher(_ context.Context, schoolID, id int64) (*models.Teacher, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.teachers[id]
	if !ok || t.SchoolID != schoolID {
		return nil, dberrors.ErrNotFound
	}
	v := s.teacherView(t)
	return &v, nil
}

func (s *Store) ListTeachers(_ context.Context, schoolID int64) ([]models.Teacher, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Teacher, 0)
	for _, id := range sortedKeys(s.teachers) {
		if t := s.teachers[id]; t.SchoolID == schoolID {
			out = append(out, s.teacherView(t))
		}
	}
	return out, nil
}

// --- academic years, holidays ---

func (s *Store) CreateAcademicYear(_ context.Context, year *models.AcademicYear) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, y := range s.years {
		if y.SchoolID != year.SchoolID {
			continue
		}
		if y.Year == year.Year {
			return dberrors.NewUniqueViolation("uq_academic_years_school_year")
		}
		if year.IsCurrent && y.IsCurrent {
			return dberrors.NewUniqueViolation(models.ConstraintAcademicYearCurrent)
		}
	}
	year.ID = s.nextID()
	year.CreatedAt = s.nowFunc()
	cp := *year
	s.years[year.ID] = &cp
	return nil
}

func (s *Store) GetAcademicYear(_ context.Context, schoolID, id int64) (*models.AcademicYear, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	y, ok := s.years[id]
	if !ok || y.SchoolID != schoolID {
		return nil, dberrors.ErrNotFound
	}
	cp := *y
	return &cp, nil
}

func (s *Store) GetCurrentAcademicYear(_ context.Context, schoolID int64) (*models.AcademicYear, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, id := range sortedKeys(s.years) {
		if y := s.years[id]; y.SchoolID == schoolID && y.IsCurrent {
			cp := *y
			return &cp, nil
		}
	}
	return nil, dberrors.ErrNotFound
}

func (s *Store) SetCurrentAcademicYear(_ context.Context, schoolID, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	target, ok := s.years[id]
	if !ok || target.SchoolID != schoolID {
		return dberrors.ErrNotFound
	}
	for _, y := range s.years {
		if y.SchoolID == schoolID {
			y.IsCurrent = y.ID == id
		}
	}
	return nil
}

func (s *Store) CreateHoliday(_ context.Context, h *models.Holiday) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	h.Date = calendar.Truncate(h.Date)
	for _, existing := range s.holidays {
		if existing.AcademicYearID == h.AcademicYearID && existing.Date.Equal(h.Date) {
			return dberrors.NewUniqueViolation(models.ConstraintHolidayDate)
		}
	}
	h.ID = s.nextID()
	cp := *h
	s.holidays[h.ID] = &cp
	return nil
}

func (s *Store) ListHolidayDates(_ context.Context, academicYearID int64) ([]time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]time.Time, 0)
	for _, id := range sortedKeys(s.holidays) {
		if h := s.holidays[id]; h.AcademicYearID == academicYearID {
			out = append(out, h.Date)
		}
	}
	return out, nil
}

// --- classrooms, students ---

func (s *Store) CreateClassroom(_ context.Context, c *models.ClassRoom) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c.HasDateRange() && !c.EndDate.After(*c.StartDate) {
		return &dberrors.ConstraintError{Constraint: "chk_classrooms_dates", Kind: "check"}
	}
	for _, existing := range s.classrooms {
		if existing.Name == c.Name && existing.SchoolID == c.SchoolID && existing.AcademicYearID == c.AcademicYearID {
			return dberrors.NewUniqueViolation(models.ConstraintClassroomName)
		}
	}
	c.ID = s.nextID()
	c.CreatedAt = s.nowFunc()
	cp := *c
	cp.WeekendDays = append([]int(nil), c.WeekendDays...)
	s.classrooms[c.ID] = &cp
	return nil
}

func (s *Store) GetClassroom(_ context.Context, schoolID, id int64) (*models.ClassRoom, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.classrooms[id]
	if !ok || c.SchoolID != schoolID {
		return nil, dberrors.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (s *Store) ListClassrooms(_ context.Context, schoolID int64, academicYearID *int64) ([]models.ClassRoom, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.ClassRoom, 0)
	for _, id := range sortedKeys(s.classrooms) {
		c := s.classrooms[id]
		if c.SchoolID != schoolID {
			continue
		}
		if academicYearID != nil && c.AcademicYearID != *academicYearID {
			continue
		}
		out = append(out, *c)
	}
	return out, nil
}

func (s *Store) studentView(st *models.Student) models.Student {
	cp := *st
	if u, ok := s.users[st.UserID]; ok {
		cp.Name = u.FullName()
	}
	return cp
}

func (s *Store) studentInSchool(st *models.Student, schoolID int64) bool {
	c, ok := s.classrooms[st.ClassroomID]
	return ok && c.SchoolID == schoolID
}

func (s *Store) GetStudent(_ context.Context, schoolID, id int64) (*models.Student, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.students[id]
	if !ok || !s.studentInSchool(st, schoolID) {
		return nil, dberrors.ErrNotFound
	}
	v := s.studentView(st)
	return &v, nil
}

func (s *Store) ListStudents(_ context.Context, f models.StudentFilter) ([]models.Student, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Student, 0)
	for _, id := range sortedKeys(s.students) {
		st := s.students[id]
		if f.SchoolID != 0 && !s.studentInSchool(st, f.SchoolID) {
			continue
		}
		if f.ClassroomID != nil && st.ClassroomID != *f.ClassroomID {
			continue
		}
		if f.AcademicYearID != nil && st.AcademicYearID != *f.AcademicYearID {
			continue
		}
		if f.IDs != nil && !containsID(f.IDs, st.ID) {
			continue
		}
		out = append(out, s.studentView(st))
	}
	return out, nil
}

func (s *Store) FindEnrollment(_ context.Context, userID, academicYearID int64) (*models.Student, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, id := range sortedKeys(s.students) {
		if st := s.students[id]; st.UserID == userID && st.AcademicYearID == academicYearID {
			v := s.studentView(st)
			return &v, nil
		}
	}
	return nil, dberrors.ErrNotFound
}

func (s *Store) RollNumberTaken(_ context.Context, classroomID int64, rollNumber int) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, st := range s.students {
		if st.ClassroomID == classroomID && st.RollNumber == rollNumber {
			return true, nil
		}
	}
	return false, nil
}

// CreateStudent copies the academic year from the classroom, like the
// schema's trigger, then checks the enrollment keys.
func (s *Store) CreateStudent(_ context.Context, st *models.Student) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.classrooms[st.ClassroomID]
	if !ok {
		return &dberrors.ConstraintError{Constraint: "fk_students_classroom", Kind: "foreign key"}
	}
	st.AcademicYearID = c.AcademicYearID

	for _, existing := range s.students {
		switch {
		case existing.UserID == st.UserID && existing.ClassroomID == st.ClassroomID:
			return dberrors.NewUniqueViolation(models.ConstraintStudentUserClassroom)
		case existing.UserID == st.UserID && existing.AcademicYearID == st.AcademicYearID:
			return dberrors.NewUniqueViolation(models.ConstraintStudentUserYear)
		case existing.ClassroomID == st.ClassroomID && existing.RollNumber == st.RollNumber:
			return dberrors.NewUniqueViolation(models.ConstraintStudentRoll)
		}
	}
	st.ID = s.nextID()
	st.CreatedAt = s.nowFunc()
	cp := *st
	s.students[st.ID] = &cp
	return nil
}
