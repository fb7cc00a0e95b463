// Package rpc declares the cuidd.v1.Identifiers gRPC service by hand. Every
// method takes and returns a google.protobuf.Struct whose fields mirror the
// JSON shapes of the identifiers service, so no generated code is needed.
// The server side registers ServiceDesc; callers use Client.
package rpc
