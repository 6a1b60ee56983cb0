package bulk

import (
	"math/rand/v2"
	"time"
)

// Range is a pause drawn uniformly from [Min, Max].
type Range struct {
	Min time.Duration
	Max time.Duration
}

func Fixed(d time.Duration) Range {
	return Range{Min: d, Max: d}
}

func Uniform(min, max time.Duration) Range {
	return Range{Min: min, Max: max}
}

func (r Range) pick() time.Duration {
	if r.Max <= r.Min {
		return r.Min
	}
	return r.Min + rand.N(r.Max-r.Min+1)
}

// DelayPolicy paces a task.
type DelayPolicy struct {
	BetweenTargets  Range
	BetweenAccounts Range
	// AfterError replaces BetweenTargets after an unclassified failure.
	AfterError time.Duration
}

// Policies used by the bot commands.
var (
	JoinLeavePolicy = DelayPolicy{
		BetweenTargets:  Fixed(2 * time.Second),
		BetweenAccounts: Fixed(3 * time.Second),
		AfterError:      5 * time.Second,
	}
	SendPolicy = DelayPolicy{
		BetweenAccounts: Fixed(time.Second),
		AfterError:      5 * time.Second,
	}
	ReportPolicy = DelayPolicy{
		BetweenTargets:  Uniform(3*time.Second, 8*time.Second),
		BetweenAccounts: Uniform(5*time.Second, 15*time.Second),
		AfterError:      5 * time.Second,
	}
	OTPPolicy = DelayPolicy{
		BetweenAccounts: Fixed(2 * time.Second),
		AfterError:      5 * time.Second,
	}
)
