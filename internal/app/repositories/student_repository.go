package repositories

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/yigit/schoolcore/internal/app/calendar"
	"github.com/yigit/schoolcore/internal/app/models"
	"github.com/yigit/schoolcore/internal/pkg/dberrors"
	"github.com/yigit/schoolcore/internal/pkg/logger"
)

// --- students ---

func (s *Store) studentSelect() squirrel.SelectBuilder {
	return s.sb.Select("s.id", "s.user_id", "s.classroom_id", "s.academic_year_id", "s.roll_number", fullNameExpr, "s.created_at").
		From("students s").
		Join("classrooms c ON c.id = s.classroom_id").
		Join("users u ON u.id = s.user_id")
}

func scanStudent(row pgx.Row) (models.Student, error) {
	var st models.Student
	err := row.Scan(&st.ID, &st.UserID, &st.ClassroomID, &st.AcademicYearID, &st.RollNumber, &st.Name, &st.CreatedAt)
	return st, err
}

func (s *Store) getStudent(ctx context.Context, where squirrel.Sqlizer, what string) (*models.Student, error) {
	sql, args, err := toSQL(s.studentSelect().Where(where).OrderBy("s.id").Limit(1), what)
	if err != nil {
		return nil, err
	}
	st, err := scanStudent(s.db.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, dberrors.Translate(err)
	}
	return &st, nil
}

func (s *Store) GetStudent(ctx context.Context, schoolID, id int64) (*models.Student, error) {
	return s.getStudent(ctx, squirrel.Eq{"s.id": id, "c.school_id": schoolID}, "get student")
}

func (s *Store) ListStudents(ctx context.Context, f models.StudentFilter) ([]models.Student, error) {
	where := squirrel.Eq{}
	if f.SchoolID != 0 {
		where["c.school_id"] = f.SchoolID
	}
	if f.ClassroomID != nil {
		where["s.classroom_id"] = *f.ClassroomID
	}
	if f.AcademicYearID != nil {
		where["s.academic_year_id"] = *f.AcademicYearID
	}
	if f.IDs != nil {
		if len(f.IDs) == 0 {
			return []models.Student{}, nil
		}
		where["s.id"] = f.IDs
	}
	q := s.studentSelect().Where(where).OrderBy("s.classroom_id", "s.roll_number")
	return collect(ctx, s, q, "list students", scanStudent)
}

func (s *Store) FindEnrollment(ctx context.Context, userID, academicYearID int64) (*models.Student, error) {
	return s.getStudent(ctx, squirrel.Eq{"s.user_id": userID, "s.academic_year_id": academicYearID}, "find enrollment")
}

func (s *Store) RollNumberTaken(ctx context.Context, classroomID int64, rollNumber int) (bool, error) {
	var taken bool
	q := s.sb.Select("1").From("students").
		Where(squirrel.Eq{"classroom_id": classroomID, "roll_number": rollNumber}).
		Prefix("SELECT EXISTS(").
		Suffix(")")
	sql, args, err := toSQL(q, "roll number taken")
	if err != nil {
		return false, err
	}
	if err := s.db.QueryRow(ctx, sql, args...).Scan(&taken); err != nil {
		return false, dberrors.Translate(err)
	}
	return taken, nil
}

// CreateStudent inserts the enrollment. The academic_year_id column is
// filled from the classroom by a trigger; the returned value is read back.
func (s *Store) CreateStudent(ctx context.Context, st *models.Student) error {
	q := s.sb.Insert("students").
		Columns("user_id", "classroom_id", "roll_number").
		Values(st.UserID, st.ClassroomID, st.RollNumber).
		Suffix("RETURNING id, academic_year_id, created_at")
	return s.queryRow(ctx, q, "create student", &st.ID, &st.AcademicYearID, &st.CreatedAt)
}

// --- attendance ---

func scanAttendance(row pgx.Row) (models.Attendance, error) {
	var a models.Attendance
	err := row.Scan(&a.ID, &a.StudentID, &a.AcademicYearID, &a.Date, &a.Present, &a.MarkedBy, &a.UpdatedAt)
	return a, err
}

func (s *Store) attendanceSelect() squirrel.SelectBuilder {
	return s.sb.Select("a.id", "a.student_id", "a.academic_year_id", "a.date", "a.present", "a.marked_by", "a.updated_at").
		From("attendance a")
}

func (s *Store) ListAttendance(ctx context.Context, f models.AttendanceFilter) ([]models.Attendance, error) {
	if len(f.StudentIDs) == 0 {
		return []models.Attendance{}, nil
	}
	where := squirrel.And{
		squirrel.Eq{"a.student_id": f.StudentIDs},
		squirrel.GtOrEq{"a.date": calendar.Truncate(f.From)},
		squirrel.LtOrEq{"a.date": calendar.Truncate(f.To)},
	}
	if f.AcademicYearID != nil {
		where = append(where, squirrel.Eq{"a.academic_year_id": *f.AcademicYearID})
	}
	q := s.attendanceSelect().Where(where).OrderBy("a.date", "a.student_id")
	return collect(ctx, s, q, "list attendance", scanAttendance)
}

func (s *Store) GetAttendance(ctx context.Context, schoolID, id int64) (*models.Attendance, error) {
	q := s.attendanceSelect().
		Join("students s ON s.id = a.student_id").
		Join("classrooms c ON c.id = s.classroom_id").
		Where(squirrel.Eq{"a.id": id, "c.school_id": schoolID})
	sql, args, err := toSQL(q, "get attendance")
	if err != nil {
		return nil, err
	}
	a, err := scanAttendance(s.db.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, dberrors.Translate(err)
	}
	return &a, nil
}

// UpsertAttendance writes all records in one statement. The caller makes the
// natural keys unique within the batch; Postgres rejects a statement that
// touches the same conflict target twice.
func (s *Store) UpsertAttendance(ctx context.Context, records []models.Attendance) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}
	q := s.sb.Insert("attendance").Columns("student_id", "academic_year_id", "date", "present", "marked_by")
	for _, r := range records {
		q = q.Values(r.StudentID, r.AcademicYearID, calendar.Truncate(r.Date), r.Present, r.MarkedBy)
	}
	q = q.Suffix("ON CONFLICT ON CONSTRAINT " + models.ConstraintAttendanceNaturalKey +
		" DO UPDATE SET present = EXCLUDED.present, marked_by = EXCLUDED.marked_by, updated_at = NOW()")

	n, err := s.exec(ctx, q, "upsert attendance")
	if err != nil {
		logger.Error().Err(err).Int("records", len(records)).Msg("Failed to upsert attendance")
		return 0, err
	}
	return int(n), nil
}

func (s *Store) UpdateAttendancePresent(ctx context.Context, id int64, present bool, markedBy *int64) error {
	q := s.sb.Update("attendance").
		Set("present", present).
		Set("marked_by", markedBy).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id})
	n, err := s.exec(ctx, q, "update attendance")
	if err != nil {
		return err
	}
	if n == 0 {
		return dberrors.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteAttendance(ctx context.Context, id int64) error {
	n, err := s.exec(ctx, s.sb.Delete("attendance").Where(squirrel.Eq{"id": id}), "delete attendance")
	if err != nil {
		return err
	}
	if n == 0 {
		return dberrors.ErrNotFound
	}
	return nil
}
