package repository

import (
	"reflect"
	"testing"
	"time"

	"github.com/contactbook/api/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestContactModelHardDeletes(t *testing.T) {
	// A gorm DeletedAt column would turn Delete into a soft delete: the
	// row would survive and its unique phone number could never be
	// registered again.
	_, hasDeletedAt := reflect.TypeOf(model.Contact{}).FieldByName("DeletedAt")
	assert.False(t, hasDeletedAt, "contacts must be removed outright on delete")
}

func TestBirthdayWindowPlainWeek(t *testing.T) {
	from := time.Date(2026, time.June, 10, 0, 0, 0, 0, time.UTC)

	pairs := birthdayWindow(from, 7)

	assert.Len(t, pairs, 8)
	assert.Equal(t, monthDay{Month: 6, Day: 10}, pairs[0])
	assert.Equal(t, monthDay{Month: 6, Day: 17}, pairs[7])
}

func TestBirthdayWindowCrossesMonthBoundary(t *testing.T) {
	from := time.Date(2026, time.January, 28, 0, 0, 0, 0, time.UTC)

	pairs := birthdayWindow(from, 7)

	assert.Equal(t, []monthDay{
		{Month: 1, Day: 28},
		{Month: 1, Day: 29},
		{Month: 1, Day: 30},
		{Month: 1, Day: 31},
		{Month: 2, Day: 1},
		{Month: 2, Day: 2},
		{Month: 2, Day: 3},
		{Month: 2, Day: 4},
	}, pairs)
}

func TestBirthdayWindowCrossesYearBoundary(t *testing.T) {
	from := time.Date(2026, time.December, 29, 0, 0, 0, 0, time.UTC)

	pairs := birthdayWindow(from, 7)

	assert.Equal(t, monthDay{Month: 12, Day: 29}, pairs[0])
	assert.Equal(t, monthDay{Month: 1, Day: 5}, pairs[7])
}

func TestBirthdayWindowLeapFebruary(t *testing.T) {
	// 2028 is a leap year, the window must include Feb 29
	from := time.Date(2028, time.February, 25, 0, 0, 0, 0, time.UTC)

	pairs := birthdayWindow(from, 7)

	assert.Contains(t, pairs, monthDay{Month: 2, Day: 29})
	assert.Equal(t, monthDay{Month: 3, Day: 3}, pairs[7])
}
