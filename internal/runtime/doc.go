// Package runtime wires storage, the identifier generator and config into a
// single cuidd instance shared by the service layer and both transports.
//
// Example:
//
//	rt, _ := runtime.Open(runtime.Options{DataDir: "./data", Fsync: pebblestore.FsyncModeAlways, Config: config.Default()})
//	defer rt.Close()
//	_ = rt.CheckHealth(context.Background())
//	id := rt.Generator().Next()
package runtime
