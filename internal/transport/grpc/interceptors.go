package grpcx

import (
	"context"
	"log/slog"
	"runtime/debug"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// defaultCallTimeout bounds unary calls that arrive without a deadline.
const defaultCallTimeout = 10 * time.Second

func UnaryServerInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp any, err error) {
		if _, ok := ctx.Deadline(); !ok {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, defaultCallTimeout)
			defer cancel()
		}
		defer finish("unary", info.FullMethod, time.Now(), &err)
		return handler(ctx, req)
	}
}

// StreamServerInterceptor covers health Watch streams.
func StreamServerInterceptor() grpc.StreamServerInterceptor {
	return func(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) (err error) {
		defer finish("stream", info.FullMethod, time.Now(), &err)
		return handler(srv, ss)
	}
}

// finish must be deferred directly: it turns a panic into codes.Internal and
// logs the call outcome.
func finish(kind, method string, start time.Time, errp *error) {
	if r := recover(); r != nil {
		slog.Error("grpc panic", "kind", kind, "method", method, "panic", r, "stack", string(debug.Stack()))
		*errp = status.Error(codes.Internal, "internal server error")
	}

	attrs := []any{
		"kind", kind,
		"method", method,
		"code", status.Code(*errp).String(),
		"dur_ms", time.Since(start).Milliseconds(),
	}
	if *errp != nil {
		attrs = append(attrs, "err", (*errp).Error())
	}
	slog.Debug("grpc call", attrs...)
}
