package seed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/schoolcore/internal/app/calendar"
	appModels "github.com/yigit/schoolcore/internal/app/models"
	"github.com/yigit/schoolcore/internal/pkg/dberrors"
)

// Seeder is the write surface the demo data needs. Both the Postgres and
// the in-memory store implement it.
type Seeder interface {
	GetSchool(ctx context.Context, id int64) (*appModels.School, error)
	CreateSchool(ctx context.Context, school *appModels.School) error
	CreateUser(ctx context.Context, user *appModels.User) error
	CreateTeacher(ctx context.Context, teacher *appModels.Teacher) error
	CreateAcademicYear(ctx context.Context, year *appModels.AcademicYear) error
	CreateHoliday(ctx context.Context, h *appModels.Holiday) error
	CreateClassroom(ctx context.Context, c *appModels.ClassRoom) error
	CreateStudent(ctx context.Context, student *appModels.Student) error
	UpsertTimetableEntry(ctx context.Context, entry *appModels.TimetableEntry) error
}

var (
	yearStart = calendar.Date(2024, time.June, 1)
	yearEnd   = calendar.Date(2025, time.April, 30)

	demoHolidays = map[string]time.Time{
		"Independence Day": calendar.Date(2024, time.August, 15),
		"Diwali":           calendar.Date(2024, time.November, 1),
		"Christmas":        calendar.Date(2024, time.December, 25),
		"Republic Day":     calendar.Date(2025, time.January, 26),
	}

	demoSubjects = []string{"Mathematics", "English", "Science", "History", "Art"}
)

// CreateDefaultData fills an empty store with one school, a current year,
// two classrooms with students, three teachers and a weekly timetable.
// It returns the admin actor, or nil when the store already holds a school.
func CreateDefaultData(ctx context.Context, store Seeder, lgr zerolog.Logger) (*appModels.Actor, error) {
	if _, err := store.GetSchool(ctx, 1); err == nil {
		lgr.Info().Msg("Store already holds a school, skipping demo data")
		return nil, nil
	} else if !errors.Is(err, dberrors.ErrNotFound) {
		return nil, fmt.Errorf("error checking for existing school: %w", err)
	}

	lgr.Info().Msg("Creating demo data...")

	school := &appModels.School{Name: "Demo Public School"}
	if err := store.CreateSchool(ctx, school); err != nil {
		return nil, fmt.Errorf("error creating school: %w", err)
	}

	admin := &appModels.User{
		SchoolID:  school.ID,
		Username:  "admin",
		Email:     "admin@demo.school",
		FirstName: "Demo",
		LastName:  "Admin",
		UserType:  appModels.UserTypeAdmin,
	}
	if err := store.CreateUser(ctx, admin); err != nil {
		return nil, fmt.Errorf("error creating admin: %w", err)
	}

	year := &appModels.AcademicYear{SchoolID: school.ID, Year: "2024-25", IsCurrent: true}
	if err := store.CreateAcademicYear(ctx, year); err != nil {
		return nil, fmt.Errorf("error creating academic year: %w", err)
	}
	for name, d := range demoHolidays {
		if err := store.CreateHoliday(ctx, &appModels.Holiday{AcademicYearID: year.ID, Date: d, Name: name}); err != nil {
			return nil, fmt.Errorf("error creating holiday %s: %w", name, err)
		}
	}

	teachers := make([]int64, 0, 3)
	for i, name := range [][2]string{{"Anita", "Rao"}, {"Vikram", "Shah"}, {"Meera", "Iyer"}} {
		u := &appModels.User{
			SchoolID:  school.ID,
			Username:  fmt.Sprintf("teacher%d", i+1),
			Email:     fmt.Sprintf("teacher%d@demo.school", i+1),
			FirstName: name[0],
			LastName:  name[1],
			UserType:  appModels.UserTypeTeacher,
		}
		if err := store.CreateUser(ctx, u); err != nil {
			return nil, fmt.Errorf("error creating teacher user: %w", err)
		}
		t := &appModels.Teacher{UserID: u.ID, SchoolID: school.ID}
		if err := store.CreateTeacher(ctx, t); err != nil {
			return nil, fmt.Errorf("error creating teacher: %w", err)
		}
		teachers = append(teachers, t.ID)
	}

	start, end := yearStart, yearEnd
	student := 0
	for ci, name := range []string{"5A", "5B"} {
		classroom := &appModels.ClassRoom{
			SchoolID:       school.ID,
			AcademicYearID: year.ID,
			Name:           name,
			StartDate:      &start,
			EndDate:        &end,
			WeekendDays:    calendar.DefaultWeekend,
		}
		if err := store.CreateClassroom(ctx, classroom); err != nil {
			return nil, fmt.Errorf("error creating classroom %s: %w", name, err)
		}

		for roll := 1; roll <= 5; roll++ {
			student++
			u := &appModels.User{
				SchoolID:  school.ID,
				Username:  fmt.Sprintf("student%d", student),
				Email:     fmt.Sprintf("student%d@demo.school", student),
				FirstName: "Student",
				LastName:  fmt.Sprintf("%d", student),
				UserType:  appModels.UserTypeStudent,
			}
			if err := store.CreateUser(ctx, u); err != nil {
				return nil, fmt.Errorf("error creating student user: %w", err)
			}
			st := &appModels.Student{
				UserID:         u.ID,
				ClassroomID:    classroom.ID,
				AcademicYearID: year.ID,
				RollNumber:     roll,
			}
			if err := store.CreateStudent(ctx, st); err != nil {
				return nil, fmt.Errorf("error enrolling student: %w", err)
			}
		}

		// Rotate teachers so each classroom has a different teacher per period.
		for _, day := range calendar.SchoolWeek {
			for period := 1; period <= len(demoSubjects); period++ {
				teacherID := teachers[(period+ci)%len(teachers)]
				entry := &appModels.TimetableEntry{
					ClassroomID: classroom.ID,
					Day:         day,
					Period:      period,
					Subject:     demoSubjects[period-1],
					TeacherID:   &teacherID,
				}
				if err := store.UpsertTimetableEntry(ctx, entry); err != nil {
					return nil, fmt.Errorf("error creating timetable entry: %w", err)
				}
			}
		}
	}

	lgr.Info().
		Int64("schoolID", school.ID).
		Int("teachers", len(teachers)).
		Int("students", student).
		Msg("Demo data created")

	return &appModels.Actor{
		UserID:   admin.ID,
		SchoolID: school.ID,
		UserType: appModels.UserTypeAdmin,
	}, nil
}
