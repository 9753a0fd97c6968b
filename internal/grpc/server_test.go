package grpc

import (
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/mr1hm/go-quake-dashboard/internal/logging"
	"github.com/mr1hm/go-quake-dashboard/internal/models"
	"github.com/mr1hm/go-quake-dashboard/internal/present"
)

type stubRefresher struct {
	calls []models.Controls
	view  present.View
}

func (s *stubRefresher) Refresh(_ context.Context, c models.Controls) present.View {
	s.calls = append(s.calls, c)
	v := s.view
	v.Controls = c
	return v
}

func (s *stubRefresher) Defaults() models.Controls {
	return models.Controls{MinMagnitude: 2.5, Limit: 100}
}

func dial(t *testing.T, refresher Refresher) *grpc.ClientConn {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	gs := grpc.NewServer()
	srv := NewServer(refresher, logging.Discard())
	srv.Register(gs)

	go func() { _ = gs.Serve(lis) }()
	t.Cleanup(gs.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func getView(t *testing.T, conn *grpc.ClientConn, req map[string]any) (*structpb.Struct, error) {
	t.Helper()
	in, err := structpb.NewStruct(req)
	require.NoError(t, err)

	out := new(structpb.Struct)
	err = conn.Invoke(context.Background(), GetViewMethod, in, out)
	return out, err
}

func TestGetView(t *testing.T) {
	mag := 5.4
	stub := &stubRefresher{view: present.View{
		CycleID: "cycle-9",
		Status:  present.StatusOK,
		Summary: present.Summary{Count: 1, MaxMagnitude: &mag},
		Markers: []present.Marker{{ID: "us2", Latitude: 35.6, Longitude: 139.6}},
	}}
	conn := dial(t, stub)

	out, err := getView(t, conn, map[string]any{"min_magnitude": 4.5, "limit": 50})
	require.NoError(t, err)

	assert.Equal(t, "ok", out.Fields["status"].GetStringValue())
	assert.Equal(t, "cycle-9", out.Fields["cycle_id"].GetStringValue())
	summary := out.Fields["summary"].GetStructValue()
	assert.Equal(t, 1.0, summary.Fields["count"].GetNumberValue())
	assert.Equal(t, 5.4, summary.Fields["max_magnitude"].GetNumberValue())
	assert.Len(t, out.Fields["markers"].GetListValue().GetValues(), 1)

	require.Len(t, stub.calls, 1)
	assert.Equal(t, models.Controls{MinMagnitude: 4.5, Limit: 50}, stub.calls[0])
}

func TestGetView_DefaultsWhenEmpty(t *testing.T) {
	stub := &stubRefresher{view: present.View{Status: present.StatusEmpty}}
	conn := dial(t, stub)

	_, err := getView(t, conn, map[string]any{})
	require.NoError(t, err)
	assert.Equal(t, stub.Defaults(), stub.calls[0])
}

func TestGetView_InvalidArgument(t *testing.T) {
	tests := []struct {
		name string
		req  map[string]any
	}{
		{"magnitude as string", map[string]any{"min_magnitude": "big"}},
		{"fractional limit", map[string]any{"limit": 10.5}},
		{"window as bool", map[string]any{"window_hours": true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &stubRefresher{}
			conn := dial(t, stub)

			_, err := getView(t, conn, tt.req)
			require.Error(t, err)
			assert.Equal(t, codes.InvalidArgument, status.Code(err))
			assert.Empty(t, stub.calls)
		})
	}
}

func TestGetView_FeedFailure(t *testing.T) {
	stub := &stubRefresher{view: present.Failed(models.Controls{}, "Could not reach the earthquake feed.")}
	conn := dial(t, stub)

	_, err := getView(t, conn, map[string]any{})
	require.Error(t, err)

	st, _ := status.FromError(err)
	assert.Equal(t, codes.Unavailable, st.Code())
	assert.Equal(t, "Could not reach the earthquake feed.", st.Message())
}

func TestHealth(t *testing.T) {
	conn := dial(t, &stubRefresher{})

	resp, err := healthpb.NewHealthClient(conn).Check(context.Background(), &healthpb.HealthCheckRequest{Service: ServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.Status)
}
