// Package logger provides a structured logging interface for the harvest pipeline.
//
// It wraps the zerolog library to provide a clean, easy-to-use API with support for:
// - Multiple log levels (Debug, Info, Warn, Error, Fatal)
// - Structured logging with fields
// - Pretty console output with colors
// - Optional file output alongside the console
// - Global logger instance for easy access
//
// Basic Usage:
//
//	import "igharvest/pkg/logger"
//
//	// Initialize the global logger
//	cfg := &config.LoggingConfig{
//	    Level: "info",
//	    File: "harvest.log",
//	}
//	err := logger.Initialize(cfg)
//
//	// Use the global logger
//	logger.Info("Discovery started")
//	logger.WithField("profile", "natgeo").Info("Navigating to profile")
//	logger.WithError(err).Error("Failed to fetch image")
//
// Advanced Usage:
//
//	// Tag every line of one pipeline invocation
//	log := logger.NewRunLogger().WithField("component", "downloader")
//
//	// Use structured logging
//	log.InfoWithFields("Fetch completed", map[string]interface{}{
//	    "file": "0001_12345_67890_111_n.jpg",
//	    "size": 1024000,
//	    "duration": time.Second * 5,
//	})
package logger
