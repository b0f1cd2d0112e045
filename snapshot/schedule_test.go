package snapshot

import (
	"testing"
	"time"

	"github.com/gorhill/cronexpr"
	"github.com/stretchr/testify/assert"
)

func Test_Previous(t *testing.T) {
	sut := NewSchedule(cronexpr.MustParse("30 23 * * *"))
	loc := time.Local
	timestamp := time.Date(2019, 4, 25, 8, 42, 55, 0, loc)

	assert.Equal(t, time.Date(2019, 4, 24, 23, 30, 0, 0, loc), sut.Previous(timestamp))
}

func Test_Previous_2(t *testing.T) {
	sut := NewSchedule(cronexpr.MustParse("5 4 * * *"))
	loc := time.Local
	timestamp := time.Date(2023, 11, 23, 10, 41, 30, 0, loc)

	assert.Equal(t, time.Date(2023, 11, 23, 4, 5, 0, 0, loc), sut.Previous(timestamp))
}

func Test_PreviousWithWeekDays(t *testing.T) {
	sut := NewSchedule(cronexpr.MustParse("30 23 * * MON-FRI"))
	loc := time.Local
	timestamp := time.Date(2019, 4, 29, 8, 42, 55, 0, loc)

	assert.Equal(t, time.Date(2019, 4, 26, 23, 30, 0, 0, loc), sut.Previous(timestamp))
}

func Test_PreviousWithPeriodicField(t *testing.T) {
	sut := NewSchedule(cronexpr.MustParse("5-55/15 * * * *"))
	loc := time.Local
	timestamp := time.Date(2019, 4, 29, 8, 42, 55, 0, loc)

	assert.Equal(t, time.Date(2019, 4, 29, 8, 35, 0, 0, loc), sut.Previous(timestamp))
}

func Test_Previous_includesActivationAtMoment(t *testing.T) {
	sut := NewSchedule(cronexpr.MustParse("*/5 * * * *"))
	timestamp := time.Date(2024, 1, 1, 12, 10, 0, 0, time.UTC)

	assert.Equal(t, timestamp, sut.Previous(timestamp))
}

func Test_PreviousLongAgo(t *testing.T) {
	sut := NewSchedule(cronexpr.MustParse("0 0 29 2 *"))
	timestamp := time.Date(2023, 11, 23, 10, 41, 30, 0, time.UTC)

	assert.Equal(t, time.Date(2020, 2, 29, 0, 0, 0, 0, time.UTC), sut.Previous(timestamp))
}

func Test_Schedule_disabled(t *testing.T) {
	var sut *Schedule

	assert.True(t, sut.Next(time.Now()).IsZero())
	assert.True(t, sut.Previous(time.Now()).IsZero())
}

func Test_ParseSchedule(t *testing.T) {
	assertion := assert.New(t)

	sut, err := ParseSchedule("0 * * * *")
	assertion.NoError(err)
	assertion.Equal(
		time.Date(2024, 3, 1, 11, 0, 0, 0, time.UTC),
		sut.Next(time.Date(2024, 3, 1, 10, 15, 0, 0, time.UTC)),
	)

	_, err = ParseSchedule("every now and then")
	assertion.Error(err)
}
