package core

// Logger is implemented by the logging services.
// Extra args may be errors, maps of custom data or the authenticated staff user.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
