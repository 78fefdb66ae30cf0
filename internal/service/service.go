// Package service implements the ConsumptionService RPC contract on top of
// the in-memory time-series store.
package service

import (
	"context"
	"strings"
	"time"

	"github.com/jgoulah/gridserve/internal/consumptionpb"
	"github.com/jgoulah/gridserve/internal/isotime"
	"github.com/jgoulah/gridserve/internal/timeseries"
	"github.com/sirupsen/logrus"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// Querier answers range queries. *timeseries.Store implements it.
type Querier interface {
	Query(r timeseries.Range) timeseries.Result
}

// Service serves consumption readings over gRPC
type Service struct {
	consumptionpb.UnimplementedConsumptionServiceServer

	store Querier
	log   logrus.FieldLogger
}

var _ consumptionpb.ConsumptionServiceServer = (*Service)(nil)

// New creates a Service backed by store
func New(store Querier, log logrus.FieldLogger) *Service {
	return &Service{
		store: store,
		log:   log.WithField("component", "consumption"),
	}
}

// GetConsumptionData returns the readings inside the requested inclusive
// range. A bound that is present but not an ISO-8601 date-time fails with
// InvalidArgument naming the field; an inverted range is not an error.
func (s *Service) GetConsumptionData(ctx context.Context, req *consumptionpb.ConsumptionRequest) (*consumptionpb.ConsumptionResponse, error) {
	start, err := parseBound(consumptionpb.StartDatetimeField, req.GetStartDatetime())
	if err != nil {
		return nil, err
	}
	end, err := parseBound(consumptionpb.EndDatetimeField, req.GetEndDatetime())
	if err != nil {
		return nil, err
	}

	res := s.store.Query(timeseries.Range{Start: start, End: end})

	resp := &consumptionpb.ConsumptionResponse{
		Records: make([]*consumptionpb.ConsumptionRecord, 0, len(res.Readings)),
	}
	for _, r := range res.Readings {
		resp.Records = append(resp.Records, &consumptionpb.ConsumptionRecord{
			Datetime:    isotime.Format(r.Timestamp),
			EnergyUsage: r.EnergyUsage,
		})
	}

	s.log.WithFields(logrus.Fields{
		"request_id": requestID(ctx),
		"start":      req.GetStartDatetime(),
		"end":        req.GetEndDatetime(),
		"records":    res.TotalCount,
	}).Debug("served consumption query")

	return resp, nil
}

func parseBound(field, value string) (*time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	t, err := isotime.Parse(value)
	if err != nil {
		return nil, invalidArgument(field, err)
	}
	return &t, nil
}

// invalidArgument builds an InvalidArgument status carrying a BadRequest
// detail so callers can tell which field was rejected.
func invalidArgument(field string, err error) error {
	st := status.Newf(codes.InvalidArgument, "invalid %s: %v", field, err)
	detailed, derr := st.WithDetails(&errdetails.BadRequest{
		FieldViolations: []*errdetails.BadRequest_FieldViolation{
			{Field: field, Description: err.Error()},
		},
	})
	if derr != nil {
		return st.Err()
	}
	return detailed.Err()
}

func requestID(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	if v := md.Get(consumptionpb.RequestIDKey); len(v) > 0 {
		return v[0]
	}
	return ""
}
