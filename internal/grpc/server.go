package grpc

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/mr1hm/go-quake-dashboard/internal/models"
	"github.com/mr1hm/go-quake-dashboard/internal/present"
)

const (
	ServiceName   = "quakedash.v1.DashboardService"
	GetViewMethod = "/" + ServiceName + "/GetView"
)

type Refresher interface {
	Refresh(ctx context.Context, controls models.Controls) present.View
	Defaults() models.Controls
}

// DashboardServer is the server API of quakedash.v1.DashboardService. Requests
// and responses are google.protobuf.Struct values.
type DashboardServer interface {
	GetView(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

var dashboardServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*DashboardServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "GetView",
			Handler:    getViewHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "quakedash/v1/dashboard.proto",
}

func getViewHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DashboardServer).GetView(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: GetViewMethod,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(DashboardServer).GetView(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

type Server struct {
	refresher  Refresher
	health     *health.Server
	grpcServer *grpc.Server
	logger     *slog.Logger
}

func NewServer(refresher Refresher, logger *slog.Logger) *Server {
	return &Server{
		refresher: refresher,
		health:    health.NewServer(),
		logger:    logger,
	}
}

// Register adds the dashboard and health services to gs.
func (s *Server) Register(gs *grpc.Server) {
	gs.RegisterService(&dashboardServiceDesc, s)
	healthpb.RegisterHealthServer(gs, s.health)
	s.health.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
}

func (s *Server) Start(addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}

	s.grpcServer = grpc.NewServer()
	s.Register(s.grpcServer)

	s.logger.Info("gRPC server listening", "addr", addr)
	return s.grpcServer.Serve(lis)
}

func (s *Server) Stop() {
	s.health.Shutdown()
	if s.grpcServer != nil {
		s.grpcServer.GracefulStop()
	}
}

// GetView runs one refresh cycle. A failed cycle is reported as Unavailable
// carrying the same message the dashboard shows.
func (s *Server) GetView(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	controls, err := s.controls(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	view := s.refresher.Refresh(ctx, controls)
	if view.IsError() {
		return nil, status.Error(codes.Unavailable, view.Error)
	}

	resp, err := toStruct(view)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to encode view: %v", err)
	}
	return resp, nil
}

func (s *Server) controls(req *structpb.Struct) (models.Controls, error) {
	controls := s.refresher.Defaults()
	fields := req.GetFields()

	if v, ok := fields["min_magnitude"]; ok {
		n, err := number(v, "min_magnitude")
		if err != nil {
			return controls, err
		}
		controls.MinMagnitude = n
	}
	if v, ok := fields["limit"]; ok {
		n, err := wholeNumber(v, "limit")
		if err != nil {
			return controls, err
		}
		controls.Limit = n
	}
	if v, ok := fields["window_hours"]; ok {
		n, err := wholeNumber(v, "window_hours")
		if err != nil {
			return controls, err
		}
		controls.WindowHours = n
	}

	return controls, nil
}

func number(v *structpb.Value, field string) (float64, error) {
	n, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return 0, fmt.Errorf("%s must be a number", field)
	}
	return n.NumberValue, nil
}

func wholeNumber(v *structpb.Value, field string) (int, error) {
	n, err := number(v, field)
	if err != nil {
		return 0, err
	}
	if n != math.Trunc(n) {
		return 0, fmt.Errorf("%s must be a whole number", field)
	}
	return int(n), nil
}

// toStruct converts the view through its JSON form so field names match /api/view.
func toStruct(view present.View) (*structpb.Struct, error) {
	raw, err := json.Marshal(view)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return structpb.NewStruct(m)
}
