// Package config provides loading and environment overlay for cuidd
// configuration.
//
// Example:
//
//	cfg, err := config.Load("/etc/cuidd.yaml")
//	if err != nil { /* handle */ }
//	if err := config.FromEnv(&cfg); err != nil { /* handle */ }
//	rt, _ := runtime.Open(runtime.Options{DataDir: config.DefaultDataDir(), Config: cfg})
//	defer rt.Close()
package config
