// Package log provides cuidd's structured logging facade.
//
// # Overview
//
// The package exposes a small Logger interface with leveled methods and a
// Field type for structured context. It is backed by zap: the text format
// uses zap's console encoder, the json format its JSON encoder.
//
// Quick start
//
//	l, _ := log.ApplyConfig(&log.Config{Level: "info", Format: "text"})
//	l = l.With(log.Component("server"), log.Str("addr", ":8080"))
//	l.Info("server started", log.Int("port", 8080))
//
// # Interop
//
// RedirectStdLog routes the standard library logger (used by Pebble) through
// a Logger; ToStdLogger returns a *log.Logger writing at a given level.
package log
