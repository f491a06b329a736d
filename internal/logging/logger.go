// Package logging configures the process-wide logrus logger.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Params controls logger setup.
type Params struct {
	Service       string
	LogFileName   string
	LogToStdout   bool
	LogLevel      string
	LogFormatJSON bool
}

// Setup configures the standard logrus logger and returns it tagged with the
// service name. When LogFileName is set, output goes to a rotating file (and
// optionally STDOUT as well).
func Setup(params Params) logrus.FieldLogger {
	logger := logrus.StandardLogger()
	if params.LogFormatJSON {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	logger.SetLevel(GetLevel(params.LogLevel))
	logger.SetOutput(output(params))

	if params.Service == "" {
		return logger
	}
	return logger.WithField("service", params.Service)
}

func output(params Params) io.Writer {
	if params.LogFileName == "" {
		return os.Stdout
	}
	if !strings.HasSuffix(params.LogFileName, ".log") {
		params.LogFileName += ".log"
	}

	file := &lumberjack.Logger{
		Filename:   params.LogFileName,
		MaxSize:    50, // megabytes
		MaxBackups: 10,
		LocalTime:  false,
		Compress:   true,
	}
	if params.LogToStdout {
		return io.MultiWriter(os.Stdout, file)
	}
	return file
}

// GetLevel maps a level name to a logrus level, defaulting to info.
func GetLevel(level string) logrus.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return logrus.TraceLevel
	case "debug":
		return logrus.DebugLevel
	case "warn", "warning":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	case "fatal":
		return logrus.FatalLevel
	default:
		return logrus.InfoLevel
	}
}
