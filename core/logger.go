package core

// Logger is implemented by the logging services in services/logger.
// Variadic args carry error values and context objects (eg. the acting
// user.Session) that concrete implementations know how to unpack.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
