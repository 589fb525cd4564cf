package middleware

import (
	"context"
	"log/slog"
	"time"

	"connectrpc.com/connect"
)

// LoggingInterceptor returns a Connect interceptor that logs every RPC call
// with its procedure, party, outcome and duration. Place it after
// RequireAuth so the party is known.
func LoggingInterceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			start := time.Now()
			resp, err := next(ctx, req)

			attrs := []slog.Attr{
				slog.String("procedure", req.Spec().Procedure),
				slog.String("party_id", GetPartyID(ctx)),
				slog.String("peer", req.Peer().Addr),
				slog.Int64("duration_ms", time.Since(start).Milliseconds()),
			}
			level := slog.LevelInfo
			msg := "RPC ok"
			if err != nil {
				code := connect.CodeOf(err)
				attrs = append(attrs, slog.String("code", code.String()), slog.Any("error", err))
				msg = "RPC error"
				level = slog.LevelWarn
				if code == connect.CodeInternal || code == connect.CodeUnknown {
					level = slog.LevelError
				}
			}
			slog.LogAttrs(ctx, level, msg, attrs...)

			return resp, err
		}
	}
}
