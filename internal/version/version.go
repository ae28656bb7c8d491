// Package version хранит сведения о сборке, заданные через -ldflags.
package version

import "go.uber.org/zap"

var (
	// buildVersion — версия сборки приложения.
	buildVersion string
	// buildDate — дата сборки приложения.
	buildDate string
	// buildCommit — хеш коммита сборки.
	buildCommit string
)

// Info — сведения о сборке; незаданные поля равны "N/A".
type Info struct {
	Version string
	Date    string
	Commit  string
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

// Get возвращает сведения о сборке.
func Get() Info {
	return Info{
		Version: orNA(buildVersion),
		Date:    orNA(buildDate),
		Commit:  orNA(buildCommit),
	}
}

// LogBuildInfo пишет сведения о сборке компонента component в лог.
func LogBuildInfo(logger *zap.Logger, component string) {
	info := Get()
	logger.Info("Build info",
		zap.String("component", component),
		zap.String("version", info.Version),
		zap.String("date", info.Date),
		zap.String("commit", info.Commit),
	)
}
