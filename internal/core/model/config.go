package model

import "time"

// TimerConfig contains runtime settings for the countdown timer.
type TimerConfig struct {
	Duration        time.Duration
	TickInterval    time.Duration
	CompletionReset time.Duration
}

// ReminderConfig contains runtime settings for the daily reminder scheduler.
type ReminderConfig struct {
	DefaultTime  string
	PollInterval time.Duration
	AutoDismiss  time.Duration
	TestDismiss  time.Duration
	Snooze       time.Duration
	LogLimit     int
}

// DefaultTimerConfig returns the five minute session defaults.
func DefaultTimerConfig() TimerConfig {
	return TimerConfig{
		Duration:        5 * time.Minute,
		TickInterval:    time.Second,
		CompletionReset: 3 * time.Second,
	}
}

// DefaultReminderConfig returns the 08:00 daily reminder defaults.
func DefaultReminderConfig() ReminderConfig {
	return ReminderConfig{
		DefaultTime:  "08:00",
		PollInterval: time.Minute,
		AutoDismiss:  10 * time.Second,
		TestDismiss:  5 * time.Second,
		Snooze:       30 * time.Minute,
		LogLimit:     30,
	}
}
