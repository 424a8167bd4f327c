package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestToday(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*60*60)
	c := Fixed(time.Date(2024, 9, 10, 23, 30, 0, 0, loc))

	assert.Equal(t, time.Date(2024, 9, 10, 0, 0, 0, 0, time.UTC), Today(c))
}

func TestSystemUsesLocation(t *testing.T) {
	loc := time.FixedZone("X", 3600)
	assert.Equal(t, loc, System{Location: loc}.Now().Location())
	assert.Equal(t, time.UTC, System{}.Now().Location())
}
