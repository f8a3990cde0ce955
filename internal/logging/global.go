package logging

// InitDefaultLogger initializes the package-level file+console logger
// for a named component. component is currently cosmetic (the log
// file is timestamp-named, not component-named); it exists so callers
// read naturally ("server", "regional-node", ...).
func InitDefaultLogger(component string) error {
	return InitLogger()
}

// CloseDefaultLogger closes the package-level logger opened by
// InitDefaultLogger.
func CloseDefaultLogger() {
	CloseLogger()
}

// Info, Debug, Warn and Error are short aliases for the Log* family,
// matching the call-site convention used throughout cmd/ and the
// ambient packages.
func Info(format string, args ...interface{})  { LogInfo(format, args...) }
func Debug(format string, args ...interface{}) { LogDebug(format, args...) }
func Warn(format string, args ...interface{})  { LogWarn(format, args...) }
func Error(format string, args ...interface{}) { LogError(format, args...) }
