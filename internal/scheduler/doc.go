// Package scheduler triggers the daily rate sync on a cron schedule.
//
// The scheduler polls on a coarse interval and runs a cycle once the wall clock
// passes the next scheduled instant. After every attempt, successful or not, the
// next instant is recomputed from the clock's current time, so any number of
// missed occurrences (suspended host, long outage) collapse into a single catch-up run.
package scheduler
