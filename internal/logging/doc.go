// Package logging provides structured logging for diffwatch.
//
// This package wraps Go's log/slog to provide JSON-formatted logs. The watch
// screen is redrawn on every refresh, so diagnostics are best sent to a file;
// without one they go to stderr.
//
// # Basic Usage
//
//	logger, err := logging.NewLogger("/tmp/diffwatch.log", "WARN")
//	if err != nil {
//	    return err
//	}
//	defer logger.Close()
//
//	logger = logger.WithCommand("df -h")
//	logger.Warn("output is not valid utf-8", "offset", 12)
//
// # Log Rotation
//
// Long watches can use size-based rotation:
//
//	config := logging.RotationConfig{
//	    MaxSizeMB:  10,
//	    MaxBackups: 3,
//	    Compress:   true,
//	}
//	logger, err := logging.NewLoggerWithRotation("/tmp/diffwatch.log", "INFO", config)
//
// Rotated files are named diffwatch.log.1, diffwatch.log.2, etc., where .1
// is the most recent backup. With compression they become diffwatch.log.1.gz.
//
// # Testing
//
// Use [NopLogger] to discard all log output.
package logging
