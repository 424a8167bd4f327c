package repositories

import (
	"context"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/yigit/schoolcore/internal/app/calendar"
	"github.com/yigit/schoolcore/internal/app/models"
	"github.com/yigit/schoolcore/internal/pkg/dberrors"
)

// --- timetable ---

func scanTimetableEntry(row pgx.Row) (models.TimetableEntry, error) {
	var e models.TimetableEntry
	err := row.Scan(&e.ID, &e.ClassroomID, &e.Day, &e.Period, &e.Subject, &e.TeacherID)
	return e, err
}

func (s *Store) ListTimetable(ctx context.Context, f models.TimetableFilter) ([]models.TimetableEntry, error) {
	q := s.sb.Select("tt.id", "tt.classroom_id", "tt.day", "tt.period", "tt.subject", "tt.teacher_id").
		From("timetable tt")

	where := squirrel.Eq{}
	if f.SchoolID != 0 {
		q = q.Join("classrooms c ON c.id = tt.classroom_id")
		where["c.school_id"] = f.SchoolID
	}
	if f.ClassroomID != nil {
		where["tt.classroom_id"] = *f.ClassroomID
	}
	if f.TeacherID != nil {
		where["tt.teacher_id"] = *f.TeacherID
	}
	if f.Day != "" {
		where["tt.day"] = f.Day
	}
	if f.Period != 0 {
		where["tt.period"] = f.Period
	}
	q = q.Where(where).OrderBy("tt.classroom_id", "tt.day", "tt.period")
	return collect(ctx, s, q, "list timetable", scanTimetableEntry)
}

func (s *Store) UpsertTimetableEntry(ctx context.Context, entry *models.TimetableEntry) error {
	q := s.sb.Insert("timetable").
		Columns("classroom_id", "day", "period", "subject", "teacher_id").
		Values(entry.ClassroomID, entry.Day, entry.Period, entry.Subject, entry.TeacherID).
		Suffix("ON CONFLICT ON CONSTRAINT " + models.ConstraintTimetableSlot +
			" DO UPDATE SET subject = EXCLUDED.subject, teacher_id = EXCLUDED.teacher_id RETURNING id")
	return s.queryRow(ctx, q, "upsert timetable entry", &entry.ID)
}

func (s *Store) MaxPeriod(ctx context.Context, schoolID int64) (int, error) {
	var highest int
	q := s.sb.Select("COALESCE(MAX(tt.period), 0)").
		From("timetable tt").
		Join("classrooms c ON c.id = tt.classroom_id").
		Where(squirrel.Eq{"c.school_id": schoolID})
	if err := s.queryRow(ctx, q, "max period", &highest); err != nil {
		return 0, err
	}
	return highest, nil
}

// --- teacher attendance ---

func (s *Store) teacherAttendanceSelect() squirrel.SelectBuilder {
	return s.sb.Select("id", "teacher_id", "date", "status", "COALESCE(reason, '')", "marked_by", "created_at", "updated_at").
		From("teacher_attendance")
}

func scanTeacherAttendance(row pgx.Row) (models.TeacherAttendance, error) {
	var a models.TeacherAttendance
	var status string
	err := row.Scan(&a.ID, &a.TeacherID, &a.Date, &status, &a.Reason, &a.MarkedBy, &a.CreatedAt, &a.UpdatedAt)
	a.Status = models.TeacherAttendanceStatus(status)
	return a, err
}

func (s *Store) getTeacherAttendance(ctx context.Context, where squirrel.Eq, what string) (*models.TeacherAttendance, error) {
	sql, args, err := toSQL(s.teacherAttendanceSelect().Where(where), what)
	if err != nil {
		return nil, err
	}
	a, err := scanTeacherAttendance(s.db.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, dberrors.Translate(err)
	}
	return &a, nil
}

func (s *Store) GetTeacherAttendance(ctx context.Context, id int64) (*models.TeacherAttendance, error) {
	return s.getTeacherAttendance(ctx, squirrel.Eq{"id": id}, "get teacher attendance")
}

func (s *Store) FindTeacherAttendance(ctx context.Context, teacherID int64, date time.Time) (*models.TeacherAttendance, error) {
	return s.getTeacherAttendance(ctx, squirrel.Eq{"teacher_id": teacherID, "date": calendar.Truncate(date)}, "find teacher attendance")
}

func (s *Store) ListAbsences(ctx context.Context, teacherIDs []int64, date time.Time) ([]models.TeacherAttendance, error) {
	if len(teacherIDs) == 0 {
		return []models.TeacherAttendance{}, nil
	}
	q := s.teacherAttendanceSelect().
		Where(squirrel.Eq{
			"teacher_id": teacherIDs,
			"date":       calendar.Truncate(date),
			"status":     string(models.TeacherAbsent),
		}).
		OrderBy("id")
	return collect(ctx, s, q, "list absences", scanTeacherAttendance)
}

func (s *Store) UpsertTeacherAttendance(ctx context.Context, rows []models.TeacherAttendance) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	q := s.sb.Insert("teacher_attendance").Columns("teacher_id", "date", "status", "reason", "marked_by")
	for _, r := range rows {
		q = q.Values(r.TeacherID, calendar.Truncate(r.Date), string(r.Status), r.Reason, r.MarkedBy)
	}
	q = q.Suffix("ON CONFLICT ON CONSTRAINT " + models.ConstraintTeacherAttendance +
		" DO UPDATE SET status = EXCLUDED.status, reason = EXCLUDED.reason, marked_by = EXCLUDED.marked_by, updated_at = NOW()")
	n, err := s.exec(ctx, q, "upsert teacher attendance")
	return int(n), err
}

// DeleteTeacherAttendance removes the rows; proxies go with them through
// ON DELETE CASCADE.
func (s *Store) DeleteTeacherAttendance(ctx context.Context, teacherIDs []int64, date time.Time) (int, error) {
	if len(teacherIDs) == 0 {
		return 0, nil
	}
	q := s.sb.Delete("teacher_attendance").
		Where(squirrel.Eq{"teacher_id": teacherIDs, "date": calendar.Truncate(date)})
	n, err := s.exec(ctx, q, "delete teacher attendance")
	return int(n), err
}

// --- proxies ---

var proxyColumns = []string{
	"id", "absence_id", "classroom_id", "day", "period", "date",
	"original_teacher_id", "proxy_teacher_id", "subject", "status",
	"COALESCE(reason, '')", "assigned_by", "completed_at", "created_at", "updated_at",
}

func scanProxy(row pgx.Row) (models.Proxy, error) {
	var p models.Proxy
	var status string
	err := row.Scan(
		&p.ID, &p.AbsenceID, &p.ClassroomID, &p.Day, &p.Period, &p.Date,
		&p.OriginalTeacherID, &p.ProxyTeacherID, &p.Subject, &status,
		&p.Reason, &p.AssignedBy, &p.CompletedAt, &p.CreatedAt, &p.UpdatedAt,
	)
	p.Status = models.ProxyStatus(status)
	return p, err
}

func statusStrings(statuses []models.ProxyStatus) []string {
	out := make([]string, len(statuses))
	for i, st := range statuses {
		out[i] = string(st)
	}
	return out
}

func (s *Store) GetProxy(ctx context.Context, id int64) (*models.Proxy, error) {
	sql, args, err := toSQL(s.sb.Select(proxyColumns...).From("proxies").Where(squirrel.Eq{"id": id}), "get proxy")
	if err != nil {
		return nil, err
	}
	p, err := scanProxy(s.db.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, dberrors.Translate(err)
	}
	return &p, nil
}

func (s *Store) ListProxies(ctx context.Context, f models.ProxyFilter) ([]models.Proxy, error) {
	where := squirrel.Eq{}
	if f.AbsenceID != nil {
		where["absence_id"] = *f.AbsenceID
	}
	if f.ProxyTeacherID != nil {
		where["proxy_teacher_id"] = *f.ProxyTeacherID
	}
	if f.OriginalTeacherID != nil {
		where["original_teacher_id"] = *f.OriginalTeacherID
	}
	if f.ClassroomID != nil {
		where["classroom_id"] = *f.ClassroomID
	}
	if f.Date != nil {
		where["date"] = calendar.Truncate(*f.Date)
	}
	if f.Day != "" {
		where["day"] = f.Day
	}
	if f.Period != 0 {
		where["period"] = f.Period
	}
	if len(f.Statuses) > 0 {
		where["status"] = statusStrings(f.Statuses)
	}
	q := s.sb.Select(proxyColumns...).From("proxies").Where(where).OrderBy("date", "period", "id")
	return collect(ctx, s, q, "list proxies", scanProxy)
}

// UpsertProxy writes the proxy for its slot. A re-assignment over an existing
// row resets it to the new status and clears completed_at.
func (s *Store) UpsertProxy(ctx context.Context, proxy *models.Proxy) error {
	q := s.sb.Insert("proxies").
		Columns("absence_id", "classroom_id", "day", "period", "date",
			"original_teacher_id", "proxy_teacher_id", "subject", "status", "reason", "assigned_by").
		Values(proxy.AbsenceID, proxy.ClassroomID, proxy.Day, proxy.Period, calendar.Truncate(proxy.Date),
			proxy.OriginalTeacherID, proxy.ProxyTeacherID, proxy.Subject, string(proxy.Status), proxy.Reason, proxy.AssignedBy).
		Suffix("ON CONFLICT ON CONSTRAINT " + models.ConstraintProxySlot + ` DO UPDATE SET
			date = EXCLUDED.date,
			original_teacher_id = EXCLUDED.original_teacher_id,
			proxy_teacher_id = EXCLUDED.proxy_teacher_id,
			subject = EXCLUDED.subject,
			status = EXCLUDED.status,
			reason = EXCLUDED.reason,
			assigned_by = EXCLUDED.assigned_by,
			completed_at = NULL,
			updated_at = NOW()
			RETURNING id, date, completed_at, created_at, updated_at`)
	return s.queryRow(ctx, q, "upsert proxy", &proxy.ID, &proxy.Date, &proxy.CompletedAt, &proxy.CreatedAt, &proxy.UpdatedAt)
}

func (s *Store) UpdateProxyStatus(ctx context.Context, id int64, from []models.ProxyStatus, status models.ProxyStatus, completedAt *time.Time) error {
	q := s.sb.Update("proxies").
		Set("status", string(status)).
		Set("completed_at", completedAt).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id, "status": statusStrings(from)})
	n, err := s.exec(ctx, q, "update proxy status")
	if err != nil {
		return err
	}
	if n == 0 {
		return dberrors.ErrNotFound
	}
	return nil
}
