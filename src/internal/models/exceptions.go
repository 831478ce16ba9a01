package models

import "errors"

var (
	ErrRedisConnection = errors.New("redis connection error")
	ErrRedisGet        = errors.New("redis get error")
	ErrRedisSet        = errors.New("redis set error")
	ErrRedisDelete     = errors.New("redis delete error")
	ErrLockNotAcquired = errors.New("lock not acquired")
)

var (
	ErrSessionNotFound      = errors.New("No active session found")
	ErrSessionAlreadyActive = errors.New("session already active")
	ErrInvalidSessionTimes  = errors.New("logoutAt cannot be earlier than loginAt")
)

var (
	ErrUptimeNotFound = errors.New("No uptime record found")
	ErrInvalidWeek    = errors.New("week must use the ISO format YYYY-Www")
)

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrInvalidParams = errors.New("invalid parameters")
	ErrInvalidAction = errors.New("invalid action")
	ErrForbidden     = errors.New("access denied: company mismatch")
)

var (
	ErrDatabaseConnection = errors.New("database connection error")
	ErrDatabaseQuery      = errors.New("database query error")
	ErrDatabaseInsert     = errors.New("database insert error")
	ErrDatabaseUpdate     = errors.New("database update error")
)
