package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMigrateRejectsUnknownDirection(t *testing.T) {
	_, err := Migrate("postgres://unused", Direction("sideways"))
	assert.ErrorContains(t, err, `unknown migration direction "sideways"`)
}
