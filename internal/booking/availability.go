package booking

import "time"

// AvailabilityRule configures a facility's opening hours for one weekday.
// When Available is false both times are unset; a facility holds at most one
// rule per weekday.
type AvailabilityRule struct {
	Day       time.Weekday
	Available bool
	Opens     TimeOfDay
	Closes    TimeOfDay
}

// ruleForDay returns the rule configured for the given weekday, if any.
func ruleForDay(rules []AvailabilityRule, day time.Weekday) (AvailabilityRule, bool) {
	for _, rule := range rules {
		if rule.Day == day {
			return rule, true
		}
	}
	return AvailabilityRule{}, false
}
