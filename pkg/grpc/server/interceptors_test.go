package server

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
)

func TestLoggingInterceptor(t *testing.T) {
	logger := zaptest.NewLogger(t)
	interceptor := LoggingInterceptor(logger)
	info := &grpc.UnaryServerInfo{FullMethod: "/grpc.health.v1.Health/Check"}

	t.Run("successful request", func(t *testing.T) {
		handler := func(ctx context.Context, req any) (any, error) {
			return "ok", nil
		}

		resp, err := interceptor(context.Background(), "req", info, handler)
		if err != nil {
			t.Errorf("expected no error, got %v", err)
		}
		if resp != "ok" {
			t.Errorf("expected handler response to pass through, got %v", resp)
		}
	})

	t.Run("failed request", func(t *testing.T) {
		handler := func(ctx context.Context, req any) (any, error) {
			return nil, status.Error(codes.Unavailable, "draining")
		}

		_, err := interceptor(context.Background(), "req", info, handler)
		if err == nil {
			t.Fatal("expected an error, got nil")
		}

		st, ok := status.FromError(err)
		if !ok {
			t.Fatal("expected a gRPC status error")
		}
		if st.Code() != codes.Unavailable {
			t.Errorf("expected Unavailable, got %v", st.Code())
		}
	})
}

func TestHealthServer(t *testing.T) {
	logger := zaptest.NewLogger(t)

	server, err := New(
		WithPort(50151),
		WithLogger(logger),
		WithLogging(true),
	)
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}
	defer func() {
		if err := server.Shutdown(context.Background()); err != nil {
			t.Logf("server shutdown error: %v", err)
		}
	}()

	if server.grpcServer == nil {
		t.Error("gRPC server should not be nil")
	}
	if server.healthServer == nil {
		t.Error("health server should not be nil")
	}

	server.Start()
	time.Sleep(100 * time.Millisecond)

	conn, err := grpc.NewClient(server.Addr().String(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		t.Fatalf("failed to dial server: %v", err)
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	healthClient := healthpb.NewHealthClient(conn)
	resp, err := healthClient.Check(ctx, &healthpb.HealthCheckRequest{})
	if err != nil {
		t.Fatalf("health check failed: %v", err)
	}
	if resp.Status != healthpb.HealthCheckResponse_SERVING {
		t.Errorf("expected SERVING, got %v", resp.Status)
	}

	server.SetHealth(healthpb.HealthCheckResponse_NOT_SERVING)
	resp, err = healthClient.Check(ctx, &healthpb.HealthCheckRequest{})
	if err != nil {
		t.Fatalf("health check failed: %v", err)
	}
	if resp.Status != healthpb.HealthCheckResponse_NOT_SERVING {
		t.Errorf("expected NOT_SERVING, got %v", resp.Status)
	}
}

func TestNewInvalidPort(t *testing.T) {
	if _, err := New(WithPort(0)); err == nil {
		t.Error("expected an error for port 0")
	}
	if _, err := New(WithPort(70000)); err == nil {
		t.Error("expected an error for out-of-range port")
	}
}
