package logger

import (
	"os"

	"go.uber.org/zap"
)

// New builds the process-wide logger. APP_ENV=development switches to the
// human-readable console encoder.
func New() *zap.Logger {
	var (
		log *zap.Logger
		err error
	)
	if os.Getenv("APP_ENV") == "development" {
		log, err = zap.NewDevelopment()
	} else {
		log, err = zap.NewProduction()
	}
	if err != nil {
		panic(err)
	}
	return log
}
