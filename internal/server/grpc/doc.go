// Package grpcserver hosts the gRPC server for cuidd. It registers the
// standard grpc.health.v1 service and the cuidd.v1.Identifiers service, and
// delegates to the shared identifiers service.
//
// Example:
//
//	rt, _ := runtime.Open(runtime.Options{DataDir: "./data", Fsync: pebblestore.FsyncModeAlways, Config: config.Default()})
//	s := grpcserver.New(rt, log.NewNop())
//	ctx, cancel := context.WithCancel(context.Background())
//	defer cancel()
//	_ = s.ListenAndServe(ctx, ":50051")
package grpcserver
