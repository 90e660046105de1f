package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPercentage(t *testing.T) {
	assert.Equal(t, 37.5, Percentage(3, 8))
	assert.Equal(t, 0.0, Percentage(3, 0))
	assert.Equal(t, 33.33, Percentage(1, 3))
	assert.Equal(t, 66.67, Percentage(2, 3))
	assert.Equal(t, 150.0, Percentage(3, 2))
}

func TestDerivedPercentages(t *testing.T) {
	app := &Application{CurrentStep: 3, TotalSteps: 8}
	assert.Equal(t, 37.5, app.ProgressPercentage())

	app.TotalSteps = 0
	assert.Equal(t, 0.0, app.ProgressPercentage())

	uni := &University{InternationalStudents: 120, TotalStudents: 0}
	assert.Equal(t, 0.0, uni.InternationalPercentage())
	uni.TotalStudents = 1000
	assert.Equal(t, 12.0, uni.InternationalPercentage())

	perf := &EmployeePerformance{AssignedStudents: 7, MonthlyTargetStudents: 0}
	assert.Equal(t, 0.0, perf.TargetAchievementPercentage())

	target := &EmployeeTarget{AchievedValue: 4500, TargetValue: 6000}
	assert.Equal(t, 75.0, target.AchievementPercentage())
}

func TestFullNames(t *testing.T) {
	u := &User{Username: "jdoe"}
	assert.Equal(t, "jdoe", u.FullName())
	u.FirstName = "Jane"
	assert.Equal(t, "Jane", u.FullName())

	s := &Student{FirstName: "Ana", LastName: "  "}
	assert.Equal(t, "Ana", s.FullName())
}

func TestFirstOfMonthAndPage(t *testing.T) {
	got := FirstOfMonth(time.Date(2025, time.March, 17, 15, 4, 5, 0, time.UTC))
	assert.Equal(t, time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC), got)

	assert.Equal(t, 20, Page{Number: 3, Size: 10}.Offset())
	assert.Equal(t, 0, Page{}.Offset())
	assert.True(t, RoleCounselor.Valid())
	assert.False(t, Role("guest").Valid())
}
