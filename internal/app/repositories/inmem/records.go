package inmem

import (
	"context"
	"time"

	"github.com/yigit/schoolcore/internal/app/calendar"
	"github.com/yigit/schoolcore/internal/app/models"
	"github.com/yigit/schoolcore/internal/pkg/dberrors"
)

// --- student attendance ---

func (s *Store) ListAttendance(_ context.Context, f models.AttendanceFilter) ([]models.Attendance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Attendance, 0)
	if len(f.StudentIDs) == 0 {
		return out, nil
	}
	for _, id := range sortedKeys(s.attendance) {
		a := s.attendance[id]
		if !containsID(f.StudentIDs, a.StudentID) || !calendar.InRange(a.Date, f.From, f.To) {
			continue
		}
		if f.AcademicYearID != nil && a.AcademicYearID != *f.AcademicYearID {
			continue
		}
		out = append(out, *a)
	}
	return out, nil
}

func (s *Store) GetAttendance(_ context.Context, schoolID, id int64) (*models.Attendance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.attendance[id]
	if !ok {
		return nil, dberrors.ErrNotFound
	}
	st, ok := s.students[a.StudentID]
	if !ok || !s.studentInSchool(st, schoolID) {
		return nil, dberrors.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (s *Store) UpsertAttendance(_ context.Context, records []models.Attendance) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.nowFunc()
	for _, r := range records {
		r.Date = calendar.Truncate(r.Date)
		r.UpdatedAt = now

		var existing *models.Attendance
		for _, a := range s.attendance {
			if a.StudentID == r.StudentID && a.AcademicYearID == r.AcademicYearID && a.Date.Equal(r.Date) {
				existing = a
				break
			}
		}
		if existing != nil {
			existing.Present = r.Present
			existing.MarkedBy = r.MarkedBy
			existing.UpdatedAt = now
			continue
		}
		r.ID = s.nextID()
		cp := r
		s.attendance[r.ID] = &cp
	}
	return len(records), nil
}

func (s *Store) UpdateAttendancePresent(_ context.Context, id int64, present bool, markedBy *int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.attendance[id]
	if !ok {
		return dberrors.ErrNotFound
	}
	a.Present = present
	a.MarkedBy = markedBy
	a.UpdatedAt = s.nowFunc()
	return nil
}

func (s *Store) DeleteAttendance(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.attendance[id]; !ok {
		return dberrors.ErrNotFound
	}
	delete(s.attendance, id)
	return nil
}

// --- timetable ---

func (s *Store) ListTimetable(_ context.Context, f models.TimetableFilter) ([]models.TimetableEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.TimetableEntry, 0)
	for _, id := range sortedKeys(s.timetable) {
		e := s.timetable[id]
		if f.SchoolID != 0 {
			if c, ok := s.classrooms[e.ClassroomID]; !ok || c.SchoolID != f.SchoolID {
				continue
			}
		}
		if f.ClassroomID != nil && e.ClassroomID != *f.ClassroomID {
			continue
		}
		if f.TeacherID != nil && (e.TeacherID == nil || *e.TeacherID != *f.TeacherID) {
			continue
		}
		if f.Day != "" && e.Day != f.Day {
			continue
		}
		if f.Period != 0 && e.Period != f.Period {
			continue
		}
		out = append(out, *e)
	}
	return out, nil
}

func (s *Store) UpsertTimetableEntry(_ context.Context, entry *models.TimetableEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range s.timetable {
		if e.ClassroomID == entry.ClassroomID && e.Day == entry.Day && e.Period == entry.Period {
			e.Subject = entry.Subject
			e.TeacherID = entry.TeacherID
			entry.ID = e.ID
			return nil
		}
	}
	entry.ID = s.nextID()
	cp := *entry
	s.timetable[entry.ID] = &cp
	return nil
}

func (s *Store) MaxPeriod(_ context.Context, schoolID int64) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	highest := 0
	for _, e := range s.timetable {
		if c, ok := s.classrooms[e.ClassroomID]; ok && c.SchoolID == schoolID && e.Period > highest {
			highest = e.Period
		}
	}
	return highest, nil
}

// --- teacher attendance ---

func (s *Store) GetTeacherAttendance(_ context.Context, id int64) (*models.TeacherAttendance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.teacherAttendance[id]
	if !ok {
		return nil, dberrors.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (s *Store) FindTeacherAttendance(_ context.Context, teacherID int64, date time.Time) (*models.TeacherAttendance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, a := range s.teacherAttendance {
		if a.TeacherID == teacherID && sameDay(a.Date, date) {
			cp := *a
			return &cp, nil
		}
	}
	return nil, dberrors.ErrNotFound
}

func (s *Store) ListAbsences(_ context.Context, teacherIDs []int64, date time.Time) ([]models.TeacherAttendance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.TeacherAttendance, 0)
	for _, id := range sortedKeys(s.teacherAttendance) {
		a := s.teacherAttendance[id]
		if a.IsAbsent() && containsID(teacherIDs, a.TeacherID) && sameDay(a.Date, date) {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (s *Store) UpsertTeacherAttendance(_ context.Context, rows []models.TeacherAttendance) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.nowFunc()
	for _, r := range rows {
		r.Date = calendar.Truncate(r.Date)

		var existing *models.TeacherAttendance
		for _, a := range s.teacherAttendance {
			if a.TeacherID == r.TeacherID && a.Date.Equal(r.Date) {
				existing = a
				break
			}
		}
		if existing != nil {
			existing.Status = r.Status
			existing.Reason = r.Reason
			existing.MarkedBy = r.MarkedBy
			existing.UpdatedAt = now
			continue
		}
		r.ID = s.nextID()
		r.CreatedAt, r.UpdatedAt = now, now
		cp := r
		s.teacherAttendance[r.ID] = &cp
	}
	return len(rows), nil
}

// DeleteTeacherAttendance removes the rows and, like the schema's cascade,
// every proxy hanging off them.
func (s *Store) DeleteTeacherAttendance(_ context.Context, teacherIDs []int64, date time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, a := range s.teacherAttendance {
		if !containsID(teacherIDs, a.TeacherID) || !sameDay(a.Date, date) {
			continue
		}
		for pid, p := range s.proxies {
			if p.AbsenceID == id {
				delete(s.proxies, pid)
			}
		}
		delete(s.teacherAttendance, id)
		removed++
	}
	return removed, nil
}

// --- proxies ---

func (s *Store) GetProxy(_ context.Context, id int64) (*models.Proxy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.proxies[id]
	if !ok {
		return nil, dberrors.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func statusIn(status models.ProxyStatus, statuses []models.ProxyStatus) bool {
	for _, st := range statuses {
		if st == status {
			return true
		}
	}
	return false
}

func (s *Store) ListProxies(_ context.Context, f models.ProxyFilter) ([]models.Proxy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Proxy, 0)
	for _, id := range sortedKeys(s.proxies) {
		p := s.proxies[id]
		switch {
		case f.AbsenceID != nil && p.AbsenceID != *f.AbsenceID,
			f.ProxyTeacherID != nil && p.ProxyTeacherID != *f.ProxyTeacherID,
			f.OriginalTeacherID != nil && p.OriginalTeacherID != *f.OriginalTeacherID,
			f.ClassroomID != nil && p.ClassroomID != *f.ClassroomID,
			f.Date != nil && !sameDay(p.Date, *f.Date),
			f.Day != "" && p.Day != f.Day,
			f.Period != 0 && p.Period != f.Period,
			len(f.Statuses) > 0 && !statusIn(p.Status, f.Statuses):
			continue
		}
		out = append(out, *p)
	}
	return out, nil
}

func (s *Store) UpsertProxy(_ context.Context, proxy *models.Proxy) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.teacherAttendance[proxy.AbsenceID]; !ok {
		return &dberrors.ConstraintError{Constraint: "fk_proxies_absence", Kind: "foreign key"}
	}

	now := s.nowFunc()
	proxy.Date = calendar.Truncate(proxy.Date)
	for _, p := range s.proxies {
		if p.AbsenceID == proxy.AbsenceID && p.ClassroomID == proxy.ClassroomID && p.Day == proxy.Day && p.Period == proxy.Period {
			p.Date = proxy.Date
			p.OriginalTeacherID = proxy.OriginalTeacherID
			p.ProxyTeacherID = proxy.ProxyTeacherID
			p.Subject = proxy.Subject
			p.Status = proxy.Status
			p.Reason = proxy.Reason
			p.AssignedBy = proxy.AssignedBy
			p.CompletedAt = nil
			p.UpdatedAt = now
			*proxy = *p
			return nil
		}
	}

	proxy.ID = s.nextID()
	proxy.CreatedAt, proxy.UpdatedAt = now, now
	cp := *proxy
	s.proxies[proxy.ID] = &cp
	return nil
}

func (s *Store) UpdateProxyStatus(_ context.Context, id int64, from []models.ProxyStatus, status models.ProxyStatus, completedAt *time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.proxies[id]
	if !ok || !statusIn(p.Status, from) {
		return dberrors.ErrNotFound
	}
	p.Status = status
	p.CompletedAt = completedAt
	p.UpdatedAt = s.nowFunc()
	return nil
}
