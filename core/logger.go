package core

// Logger is any service that can log messages.
// args are expected to be errors, map[string]interface{} extras or the logged-in account.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
