package zapuse

import "go.uber.org/zap"

func Report(logger *zap.Logger, sugar *zap.SugaredLogger) {
	logger.Info("fine")
	logger.Warn("fine")
	logger.Fatal("stop") // want "call to zap Fatal outside main.main"
	logger.Panic("stop") // want "call to zap Panic outside main.main"
	sugar.Fatalf("stop %d", 1) // want "call to zap Fatalf outside main.main"
}
