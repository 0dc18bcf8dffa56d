// Package arith provides small arithmetic tools: add_numbers,
// calculate_age and get_birth_year.
package arith

import (
	"fmt"
	"time"

	"github.com/hupe1980/agentkit/core"
	"github.com/hupe1980/agentkit/deps"
	"github.com/hupe1980/agentkit/tool"
)

// AddArgs are the addends.
type AddArgs struct {
	A float64 `json:"a" description:"first number"`
	B float64 `json:"b" description:"second number"`
}

// Add returns the add_numbers tool.
func Add() tool.Tool {
	return tool.NewTypedTool("add_numbers", "Adds two numbers and returns the sum.",
		func(_ *core.ToolContext, in AddArgs) (float64, error) {
			return in.A + in.B, nil
		})
}

// AgeArgs identify the person.
type AgeArgs struct {
	Name      string `json:"name" description:"name of the user" validate:"required"`
	BirthYear int    `json:"birth_year" description:"year of birth, e.g. 1995" validate:"gte=1"`
}

// Age returns the calculate_age tool. The result reads "{name} Alter ist {age}".
func Age() tool.Tool { return AgeFunc(time.Now) }

// AgeFunc is Age with an injectable clock.
func AgeFunc(now func() time.Time) tool.Tool {
	return tool.NewTypedTool("calculate_age", "Returns the user's name and age for a birth year.",
		func(_ *core.ToolContext, in AgeArgs) (string, error) {
			age, err := YearsSince(in.BirthYear, now())
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("%s Alter ist %d", in.Name, age), nil
		})
}

// YearsSince returns now's year minus year. A year in the future asks the
// model to retry.
func YearsSince(year int, now time.Time) (int, error) {
	current := now.Year()
	if year > current {
		return 0, tool.Retry("birth year %d is after the current year %d", year, current)
	}
	return current - year, nil
}

// BirthYear returns the get_birth_year tool. It reads the year from the run's
// deps.BirthYear.
func BirthYear() tool.Tool {
	return tool.NewDepsTool("get_birth_year", "Returns the user's birth year supplied by the application.",
		func(_ *core.ToolContext, d deps.BirthYear, _ struct{}) (int, error) {
			return int(d), nil
		})
}
