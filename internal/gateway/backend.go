// Package gateway translates JSON/HTTP requests into ConsumptionService
// calls against a single shared gRPC connection.
package gateway

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jgoulah/gridserve/internal/consumptionpb"
	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
)

// Backend is the gateway's view of the RPC server. It is safe for
// concurrent use by every HTTP request.
type Backend struct {
	target      string
	conn        *grpc.ClientConn
	consumption consumptionpb.ConsumptionServiceClient
	health      healthpb.HealthClient
	log         logrus.FieldLogger
}

// Dial opens the connection without waiting for it to come up. Failures to
// reach the server surface later as Unavailable errors on each call.
func Dial(ctx context.Context, target string, log logrus.FieldLogger, opts ...grpc.DialOption) (*Backend, error) {
	dopts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	}, opts...)

	conn, err := grpc.DialContext(ctx, target, dopts...)
	if err != nil {
		return nil, fmt.Errorf("dialing backend %s: %w", target, err)
	}

	return &Backend{
		target:      target,
		conn:        conn,
		consumption: consumptionpb.NewConsumptionServiceClient(conn),
		health:      healthpb.NewHealthClient(conn),
		log:         log.WithField("backend", target),
	}, nil
}

// Target returns the address the backend was dialed with
func (b *Backend) Target() string {
	return b.target
}

// Close releases the connection
func (b *Backend) Close() error {
	return b.conn.Close()
}

// GetConsumptionData forwards the bounds verbatim. A non-empty requestID is
// sent as metadata so the server can correlate its logs.
func (b *Backend) GetConsumptionData(ctx context.Context, requestID, start, end string) (*consumptionpb.ConsumptionResponse, error) {
	if requestID != "" {
		ctx = metadata.AppendToOutgoingContext(ctx, consumptionpb.RequestIDKey, requestID)
	}
	return b.consumption.GetConsumptionData(ctx, &consumptionpb.ConsumptionRequest{
		StartDatetime: start,
		EndDatetime:   end,
	})
}

// Check asks the standard health service about ConsumptionService
func (b *Backend) Check(ctx context.Context) (healthpb.HealthCheckResponse_ServingStatus, error) {
	resp, err := b.health.Check(ctx, &healthpb.HealthCheckRequest{Service: consumptionpb.ServiceName})
	if err != nil {
		return healthpb.HealthCheckResponse_UNKNOWN, err
	}
	return resp.GetStatus(), nil
}

// WaitReady polls the health service with exponential backoff until it
// reports SERVING or maxWait elapses. Each probe is bounded by probeTimeout.
func (b *Backend) WaitReady(ctx context.Context, maxWait, probeTimeout time.Duration) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 100 * time.Millisecond
	bo.MaxInterval = 2 * time.Second
	bo.MaxElapsedTime = maxWait

	probe := func() error {
		pctx, cancel := context.WithTimeout(ctx, probeTimeout)
		defer cancel()

		st, err := b.Check(pctx)
		if err != nil {
			return err
		}
		if st != healthpb.HealthCheckResponse_SERVING {
			return fmt.Errorf("backend reports %s", st)
		}
		return nil
	}

	notify := func(err error, next time.Duration) {
		b.log.WithError(err).WithField("retry_in", next).Debug("Backend not ready yet")
	}

	start := time.Now()
	if err := backoff.RetryNotify(probe, backoff.WithContext(bo, ctx), notify); err != nil {
		return fmt.Errorf("backend %s not ready after %s: %w", b.target, time.Since(start).Round(time.Millisecond), err)
	}
	b.log.WithField("waited", time.Since(start).Round(time.Millisecond)).Info("Backend is serving")
	return nil
}
