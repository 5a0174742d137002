package grpc

import (
	"context"
	"errors"
	"fmt"
	"testing"

	pverrors "github.com/msto63/paramval/foundation/core/errors"
	pvlog "github.com/msto63/paramval/foundation/core/log"
	"github.com/msto63/paramval/pkg/core/logging"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

func TestStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want codes.Code
	}{
		{"invalid input", pverrors.InvalidInput(pverrors.ModuleEngine, "evaluate", "", "expression"), codes.InvalidArgument},
		{"not found", pverrors.NotFound(pverrors.ModuleStore, "get", "abc"), codes.NotFound},
		{"out of range", pverrors.OutOfRange(pverrors.ModuleEngine, "evaluate", 3, 0, 1), codes.OutOfRange},
		{"invalid document", pverrors.DagInvalidDocument("malformed json", nil), codes.InvalidArgument},
		{"deadline", fmt.Errorf("evaluate: %w", context.DeadlineExceeded), codes.DeadlineExceeded},
		{"plain", errors.New("boom"), codes.Internal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StatusCode(tt.err); got != tt.want {
				t.Errorf("StatusCode() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestErrorInterceptor(t *testing.T) {
	info := &grpc.UnaryServerInfo{FullMethod: "/paramval.v1.Evaluator/Evaluate"}
	interceptor := ErrorInterceptor()

	tests := []struct {
		name string
		err  error
		want codes.Code
	}{
		{"structured", pverrors.NotFound(pverrors.ModuleStore, "get", "abc"), codes.NotFound},
		{"status passes through", status.Error(codes.Unavailable, "down"), codes.Unavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := interceptor(context.Background(), nil, info, func(ctx context.Context, req interface{}) (interface{}, error) {
				return nil, tt.err
			})
			if got := status.Code(err); got != tt.want {
				t.Errorf("status.Code() = %v, want %v", got, tt.want)
			}
		})
	}

	resp, err := interceptor(context.Background(), nil, info, func(ctx context.Context, req interface{}) (interface{}, error) {
		return "ok", nil
	})
	if err != nil || resp != "ok" {
		t.Errorf("interceptor() = %v, %v, want ok, nil", resp, err)
	}
}

func TestGetRequestID(t *testing.T) {
	if got := GetRequestID(WithRequestID(context.Background(), "req-1")); got != "req-1" {
		t.Errorf("GetRequestID() = %v, want req-1", got)
	}

	md := metadata.Pairs(RequestIDHeader, "req-2")
	if got := GetRequestID(metadata.NewIncomingContext(context.Background(), md)); got != "req-2" {
		t.Errorf("GetRequestID() from metadata = %v, want req-2", got)
	}

	if got := GetRequestID(context.Background()); got != "" {
		t.Errorf("GetRequestID() = %v, want empty", got)
	}
}

func TestTimeoutInterceptor(t *testing.T) {
	info := &grpc.UnaryServerInfo{FullMethod: "/test"}
	_, err := TimeoutInterceptor(0)(context.Background(), nil, info, func(ctx context.Context, req interface{}) (interface{}, error) {
		if _, ok := ctx.Deadline(); ok {
			t.Error("zero timeout set a deadline")
		}
		return nil, nil
	})
	if err != nil {
		t.Fatalf("interceptor() error = %v", err)
	}
}

func TestRecoveryInterceptor(t *testing.T) {
	info := &grpc.UnaryServerInfo{FullMethod: "/test"}
	_, err := RecoveryInterceptor(logging.Wrap("test", pvlog.Discard()))(context.Background(), nil, info, func(ctx context.Context, req interface{}) (interface{}, error) {
		panic("boom")
	})
	if status.Code(err) != codes.Internal {
		t.Errorf("status.Code() = %v, want Internal", status.Code(err))
	}
}
