// Package client provides the `cuidd` command-line client.
//
// The CLI generates identifiers locally and talks to the cuidd HTTP and
// gRPC endpoints to mint, inspect and list recorded ones.
//
// Installation
//
//	go install github.com/rzbill/cuidd/cmd/cuidd@latest
//
// # Address configuration
//
// The HTTP base URL is discovered by the application that embeds the
// commands via a BaseURLFunc. The standalone binary reads CUIDD_HTTP
// (default http://127.0.0.1:8080). The gRPC address is read from CUIDD_GRPC
// (default 127.0.0.1:50051). CUIDD_TRANSPORT sets the default --transport.
//
// Usage
//
//	cuidd generate -n 3
//	cuidd inspect ckq3x9f2a0000000012ab9zq1
//	cuidd inspect ckq3x9f2a0000000012ab9zq1 --remote
//
//	cuidd mint --kind todo -n 5 --label groceries
//	cuidd mint --kind note --transport grpc -q
//
//	cuidd list --kind todo --limit 20
//	cuidd list --kind todo --after <id> --filter 'label == "groceries"'
//
//	cuidd revoke <id>
//	cuidd kinds
//	cuidd events --after 120 --limit 50
//	cuidd events --follow --transport grpc
package client
