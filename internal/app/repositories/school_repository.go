package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/yigit/schoolcore/internal/app/models"
	"github.com/yigit/schoolcore/internal/pkg/dberrors"
	"github.com/yigit/schoolcore/internal/pkg/logger"
)

const fullNameExpr = "COALESCE(NULLIF(TRIM(u.first_name || ' ' || u.last_name), ''), u.username)"

// --- schools and users ---

// CreateSchool inserts a school and fills its ID
func (s *Store) CreateSchool(ctx context.Context, school *models.School) error {
	q := s.sb.Insert("schools").Columns("name").Values(school.Name).
		Suffix("RETURNING id, created_at")
	return s.queryRow(ctx, q, "create school", &school.ID, &school.CreatedAt)
}

func (s *Store) GetSchool(ctx context.Context, id int64) (*models.School, error) {
	var school models.School
	q := s.sb.Select("id", "name", "created_at").From("schools").Where(squirrel.Eq{"id": id})
	if err := s.queryRow(ctx, q, "get school", &school.ID, &school.Name, &school.CreatedAt); err != nil {
		return nil, err
	}
	return &school, nil
}

// CreateUser inserts a user account
func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	q := s.sb.Insert("users").
		Columns("school_id", "username", "email", "first_name", "last_name", "user_type").
		Values(user.SchoolID, user.Username, user.Email, user.FirstName, user.LastName, string(user.UserType)).
		Suffix("RETURNING id, created_at")
	return s.queryRow(ctx, q, "create user", &user.ID, &user.CreatedAt)
}

func (s *Store) GetUser(ctx context.Context, schoolID, id int64) (*models.User, error) {
	var u models.User
	var userType string
	q := s.sb.Select("id", "school_id", "username", "email", "first_name", "last_name", "user_type", "created_at").
		From("users").
		Where(squirrel.Eq{"id": id, "school_id": schoolID})
	if err := s.queryRow(ctx, q, "get user",
		&u.ID, &u.SchoolID, &u.Username, &u.Email, &u.FirstName, &u.LastName, &userType, &u.CreatedAt,
	); err != nil {
		return nil, err
	}
	u.UserType = models.UserType(userType)
	return &u, nil
}

// --- teachers ---

func (s *Store) CreateTeacher(ctx context.Context, teacher *models.Teacher) error {
	q := s.sb.Insert("teachers").Columns("user_id", "school_id").
		Values(teacher.UserID, teacher.SchoolID).
		Suffix("RETURNING id, created_at")
	return s.queryRow(ctx, q, "create teacher", &teacher.ID, &teacher.CreatedAt)
}

func (s *Store) teacherSelect() squirrel.SelectBuilder {
	return s.sb.Select("t.id", "t.user_id", "t.school_id", fullNameExpr, "u.email", "t.created_at").
		From("teachers t").
		Join("users u ON u.id = t.user_id")
}

func scanTeacher(row pgx.Row) (models.Teacher, error) {
	var t models.Teacher
	err := row.Scan(&t.ID, &t.UserID, &t.SchoolID, &t.Name, &t.Email, &t.CreatedAt)
	return t, err
}

func (s *Store) GetTeacher(ctx context.Context, schoolID, id int64) (*models.Teacher, error) {
	q := s.teacherSelect().Where(squirrel.Eq{"t.id": id, "t.school_id": schoolID})
	sql, args, err := toSQL(q, "get teacher")
	if err != nil {
		return nil, err
	}
	t, err := scanTeacher(s.db.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, dberrors.Translate(err)
	}
	return &t, nil
}

func (s *Store) ListTeachers(ctx context.Context, schoolID int64) ([]models.Teacher, error) {
	q := s.teacherSelect().Where(squirrel.Eq{"t.school_id": schoolID}).OrderBy("t.id")
	return collect(ctx, s, q, "list teachers", scanTeacher)
}

// --- academic years and holidays ---

func (s *Store) CreateAcademicYear(ctx context.Context, year *models.AcademicYear) error {
	q := s.sb.Insert("academic_years").Columns("school_id", "year", "is_current").
		Values(year.SchoolID, year.Year, year.IsCurrent).
		Suffix("RETURNING id, created_at")
	return s.queryRow(ctx, q, "create academic year", &year.ID, &year.CreatedAt)
}

func scanAcademicYear(row pgx.Row) (models.AcademicYear, error) {
	var y models.AcademicYear
	err := row.Scan(&y.ID, &y.SchoolID, &y.Year, &y.IsCurrent, &y.CreatedAt)
	return y, err
}

func (s *Store) getAcademicYear(ctx context.Context, where squirrel.Eq) (*models.AcademicYear, error) {
	q := s.sb.Select("id", "school_id", "year", "is_current", "created_at").
		From("academic_years").
		Where(where).
		OrderBy("id").
		Limit(1)
	sql, args, err := toSQL(q, "get academic year")
	if err != nil {
		return nil, err
	}
	y, err := scanAcademicYear(s.db.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, dberrors.Translate(err)
	}
	return &y, nil
}

func (s *Store) GetAcademicYear(ctx context.Context, schoolID, id int64) (*models.AcademicYear, error) {
	return s.getAcademicYear(ctx, squirrel.Eq{"id": id, "school_id": schoolID})
}

func (s *Store) GetCurrentAcademicYear(ctx context.Context, schoolID int64) (*models.AcademicYear, error) {
	return s.getAcademicYear(ctx, squirrel.Eq{"school_id": schoolID, "is_current": true})
}

// SetCurrentAcademicYear clears the flag on the school's other years and sets
// it on id in one transaction, so the partial unique index never sees two.
func (s *Store) SetCurrentAcademicYear(ctx context.Context, schoolID, id int64) error {
	clearSQL, clearArgs, err := toSQL(s.sb.Update("academic_years").
		Set("is_current", false).
		Where(squirrel.Eq{"school_id": schoolID, "is_current": true}).
		Where(squirrel.NotEq{"id": id}), "clear current year")
	if err != nil {
		return err
	}
	setSQL, setArgs, err := toSQL(s.sb.Update("academic_years").
		Set("is_current", true).
		Where(squirrel.Eq{"id": id, "school_id": schoolID}), "set current year")
	if err != nil {
		return err
	}

	err = pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, clearSQL, clearArgs...); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, setSQL, setArgs...)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return dberrors.ErrNotFound
		}
		return nil
	})
	if err != nil {
		logger.Error().Err(err).Int64("academic_year_id", id).Msg("Failed to switch current academic year")
		return dberrors.Translate(err)
	}
	return nil
}

func (s *Store) CreateHoliday(ctx context.Context, h *models.Holiday) error {
	q := s.sb.Insert("holidays").Columns("academic_year_id", "date", "name").
		Values(h.AcademicYearID, h.Date, h.Name).
		Suffix("RETURNING id")
	return s.queryRow(ctx, q, "create holiday", &h.ID)
}

func (s *Store) ListHolidayDates(ctx context.Context, academicYearID int64) ([]time.Time, error) {
	q := s.sb.Select("date").From("holidays").
		Where(squirrel.Eq{"academic_year_id": academicYearID}).
		OrderBy("date")
	return collect(ctx, s, q, "list holidays", func(row pgx.Row) (time.Time, error) {
		var d time.Time
		err := row.Scan(&d)
		return d, err
	})
}

// --- classrooms ---

func (s *Store) CreateClassroom(ctx context.Context, c *models.ClassRoom) error {
	q := s.sb.Insert("classrooms").
		Columns("school_id", "academic_year_id", "name", "start_date", "end_date", "weekend_days").
		Values(c.SchoolID, c.AcademicYearID, c.Name, c.StartDate, c.EndDate, toInt32s(c.WeekendDays)).
		Suffix("RETURNING id, created_at")
	return s.queryRow(ctx, q, "create classroom", &c.ID, &c.CreatedAt)
}

func (s *Store) classroomSelect() squirrel.SelectBuilder {
	return s.sb.Select("id", "school_id", "academic_year_id", "name", "start_date", "end_date", "weekend_days", "created_at").
		From("classrooms")
}

func scanClassroom(row pgx.Row) (models.ClassRoom, error) {
	var c models.ClassRoom
	var weekend []int32
	if err := row.Scan(&c.ID, &c.SchoolID, &c.AcademicYearID, &c.Name, &c.StartDate, &c.EndDate, &weekend, &c.CreatedAt); err != nil {
		return c, err
	}
	c.WeekendDays = toInts(weekend)
	return c, nil
}

func (s *Store) GetClassroom(ctx context.Context, schoolID, id int64) (*models.ClassRoom, error) {
	q := s.classroomSelect().Where(squirrel.Eq{"id": id, "school_id": schoolID})
	sql, args, err := toSQL(q, "get classroom")
	if err != nil {
		return nil, err
	}
	c, err := scanClassroom(s.db.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, dberrors.Translate(err)
	}
	return &c, nil
}

func (s *Store) ListClassrooms(ctx context.Context, schoolID int64, academicYearID *int64) ([]models.ClassRoom, error) {
	where := squirrel.Eq{"school_id": schoolID}
	if academicYearID != nil {
		where["academic_year_id"] = *academicYearID
	}
	q := s.classroomSelect().Where(where).OrderBy("id")
	classrooms, err := collect(ctx, s, q, "list classrooms", scanClassroom)
	if err != nil {
		return nil, fmt.Errorf("error retrieving classrooms: %w", err)
	}
	return classrooms, nil
}
