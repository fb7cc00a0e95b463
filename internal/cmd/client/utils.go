package client

import (
	"context"
	"encoding/json"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	transports "github.com/rzbill/cuidd/internal/cmd/client/transports"
)

// BaseURLFunc provides the base HTTP API URL (e.g., from env or flag).
type BaseURLFunc func() string

// HTTPBaseURLFromEnv returns CUIDD_HTTP or the local default.
func HTTPBaseURLFromEnv() string {
	if v := os.Getenv("CUIDD_HTTP"); v != "" {
		return v
	}
	return "http://127.0.0.1:8080"
}

// grpcAddrFromEnv returns the gRPC server address from CUIDD_GRPC or a default.
func grpcAddrFromEnv() string {
	if addr := os.Getenv("CUIDD_GRPC"); addr != "" {
		return addr
	}
	return "127.0.0.1:50051"
}

// dialGRPCContext dials the cuidd gRPC endpoint with insecure transport for local/dev.
func dialGRPCContext(_ context.Context) (*grpc.ClientConn, error) {
	return grpc.NewClient(grpcAddrFromEnv(), grpc.WithTransportCredentials(insecure.NewCredentials()))
}

func addTransportFlag(cmd *cobra.Command) {
	def := os.Getenv("CUIDD_TRANSPORT")
	if def == "" {
		def = "http"
	}
	cmd.Flags().String("transport", def, "Transport: http|grpc")
}

func getTransport(cmd *cobra.Command, baseURL BaseURLFunc) (transports.Transport, error) {
	name, _ := cmd.Flags().GetString("transport")
	switch name {
	case "http", "":
		return transports.NewHTTPTransport(baseURL, nil), nil
	case "grpc":
		return transports.NewGrpcTransport(dialGRPCContext), nil
	default:
		return nil, errors.Errorf("invalid --transport %q; use http|grpc", name)
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
