package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type slotRequest struct {
	Day  string `validate:"required,weekday"`
	Date string `validate:"required,schooldate"`
}

func TestSchoolRules(t *testing.T) {
	v := New()

	tests := []struct {
		name  string
		req   slotRequest
		valid bool
	}{
		{"lowercase", slotRequest{Day: "monday", Date: "2024-09-02"}, true},
		{"mixed case and spaces", slotRequest{Day: " Friday ", Date: "2024-02-29"}, true},
		{"not a day", slotRequest{Day: "funday", Date: "2024-09-02"}, false},
		{"day abbreviation", slotRequest{Day: "mon", Date: "2024-09-02"}, false},
		{"impossible date", slotRequest{Day: "monday", Date: "2023-02-29"}, false},
		{"wrong layout", slotRequest{Day: "monday", Date: "02-09-2024"}, false},
		{"timestamp", slotRequest{Day: "monday", Date: "2024-09-02T10:00:00Z"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(tt.req)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
