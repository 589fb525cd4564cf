// Package apiconnect wires the swisscoin.v1 services to Connect handlers
// and clients using the JSON codec from package api.
package apiconnect

import (
	"connectrpc.com/connect"

	"github.com/mmynk/swisscoin/pkg/api"
)

func handlerOptions(opts []connect.HandlerOption) []connect.HandlerOption {
	return append([]connect.HandlerOption{connect.WithCodec(api.JSONCodec{})}, opts...)
}

func clientOptions(opts []connect.ClientOption) []connect.ClientOption {
	return append([]connect.ClientOption{connect.WithCodec(api.JSONCodec{})}, opts...)
}
