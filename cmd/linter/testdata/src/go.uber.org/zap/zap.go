// Package zap is a minimal stand-in for go.uber.org/zap used by the analyzer test data.
package zap

type Logger struct{}

func (*Logger) Info(msg string)  {}
func (*Logger) Warn(msg string)  {}
func (*Logger) Fatal(msg string) {}
func (*Logger) Panic(msg string) {}

type SugaredLogger struct{}

func (*SugaredLogger) Fatalf(template string, args ...interface{}) {}
