package helpers

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/schoolcore/internal/app/calendar"
	"github.com/yigit/schoolcore/internal/pkg/apperrors"
)

func testContext(target string, params gin.Params) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", target, nil)
	c.Params = params
	return c
}

func TestParseIDParam(t *testing.T) {
	c := testContext("/", gin.Params{{Key: "id", Value: "42"}, {Key: "bad", Value: "-1"}})

	id, err := ParseIDParam(c, "id")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	_, err = ParseIDParam(c, "bad")
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)
	_, err = ParseIDParam(c, "missing")
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)
}

func TestQueryHelpers(t *testing.T) {
	c := testContext("/?year_id=7&month=9&date=2024-09-02&bad_date=02-09-2024&bad_id=x", nil)

	yearID, err := ParseOptionalIDQuery(c, "year_id")
	require.NoError(t, err)
	require.NotNil(t, yearID)
	assert.Equal(t, int64(7), *yearID)

	none, err := ParseOptionalIDQuery(c, "classroom_id")
	require.NoError(t, err)
	assert.Nil(t, none)

	_, err = ParseOptionalIDQuery(c, "bad_id")
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)

	month, err := ParseIntQuery(c, "month", 0)
	require.NoError(t, err)
	assert.Equal(t, 9, month)
	def, err := ParseIntQuery(c, "year", 2024)
	require.NoError(t, err)
	assert.Equal(t, 2024, def)

	d, err := ParseDateQuery(c, "date", time.Time{})
	require.NoError(t, err)
	assert.Equal(t, calendar.Date(2024, time.September, 2), d)

	_, err = ParseDateQuery(c, "bad_date", time.Time{})
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)

	opt, err := ParseOptionalDateQuery(c, "since")
	require.NoError(t, err)
	assert.Nil(t, opt)
}

func TestParseDuration(t *testing.T) {
	assert.Equal(t, 3*time.Second, ParseDuration("3s", time.Minute))
	assert.Equal(t, time.Minute, ParseDuration("soon", time.Minute))
}
