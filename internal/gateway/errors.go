package gateway

import (
	"fmt"
	"net/http"

	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// httpError maps an RPC failure to the status code and body the client sees
func httpError(err error) (int, errorResponse) {
	st, ok := status.FromError(err)
	if !ok {
		return http.StatusBadGateway, errorResponse{Error: fmt.Sprintf("backend error: %v", err)}
	}

	switch st.Code() {
	case codes.InvalidArgument:
		return http.StatusBadRequest, errorResponse{Error: st.Message(), Field: violatedField(st)}
	case codes.Unavailable:
		return http.StatusServiceUnavailable, errorResponse{Error: fmt.Sprintf("backend unavailable: %s", st.Message())}
	case codes.DeadlineExceeded:
		return http.StatusGatewayTimeout, errorResponse{Error: "backend did not answer in time"}
	}
	return runtime.HTTPStatusFromCode(st.Code()), errorResponse{Error: st.Message()}
}

func violatedField(st *status.Status) string {
	for _, d := range st.Details() {
		br, ok := d.(*errdetails.BadRequest)
		if !ok {
			continue
		}
		for _, v := range br.GetFieldViolations() {
			if v.GetField() != "" {
				return v.GetField()
			}
		}
	}
	return ""
}
