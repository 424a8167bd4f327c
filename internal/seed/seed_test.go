package seed

import (
	"context"
	"io"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/schoolcore/internal/app/models"
	"github.com/yigit/schoolcore/internal/app/repositories/inmem"
)

func TestCreateDefaultData(t *testing.T) {
	ctx := context.Background()
	store := inmem.New()
	lgr := zerolog.New(io.Discard)

	admin, err := CreateDefaultData(ctx, store, lgr)
	require.NoError(t, err)
	require.NotNil(t, admin)
	assert.Equal(t, models.UserTypeAdmin, admin.UserType)

	year, err := store.GetCurrentAcademicYear(ctx, admin.SchoolID)
	require.NoError(t, err)
	assert.Equal(t, "2024-25", year.Year)

	classrooms, err := store.ListClassrooms(ctx, admin.SchoolID, &year.ID)
	require.NoError(t, err)
	assert.Len(t, classrooms, 2)

	students, err := store.ListStudents(ctx, models.StudentFilter{SchoolID: admin.SchoolID, AcademicYearID: &year.ID})
	require.NoError(t, err)
	assert.Len(t, students, 10)

	teachers, err := store.ListTeachers(ctx, admin.SchoolID)
	require.NoError(t, err)
	assert.Len(t, teachers, 3)

	maxPeriod, err := store.MaxPeriod(ctx, admin.SchoolID)
	require.NoError(t, err)
	assert.Equal(t, 5, maxPeriod)

	holidays, err := store.ListHolidayDates(ctx, year.ID)
	require.NoError(t, err)
	assert.Len(t, holidays, 4)

	again, err := CreateDefaultData(ctx, store, lgr)
	require.NoError(t, err)
	assert.Nil(t, again, "a seeded store is left alone")
}
