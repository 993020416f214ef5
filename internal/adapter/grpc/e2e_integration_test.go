//go:build integration

package grpc_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	grpcadapter "github.com/simaogato/bioastro-backend/internal/adapter/grpc"
	"github.com/simaogato/bioastro-backend/internal/adapter/repository/postgres"
	"github.com/simaogato/bioastro-backend/internal/config"
	"github.com/simaogato/bioastro-backend/internal/domain"
)

var (
	db       *postgres.DB
	grpcConn *grpc.ClientConn
)

// TestMain connects to the database and to a running server (docker compose up)
func TestMain(m *testing.M) {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load configuration: %v", err))
	}

	db, err = postgres.NewDB(cfg.DatabaseURL)
	if err != nil {
		panic(fmt.Sprintf("Failed to connect to database: %v", err))
	}

	grpcConn, err = grpc.NewClient(getGRPCAddress(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		panic(fmt.Sprintf("Failed to connect to gRPC server: %v", err))
	}

	code := m.Run()

	_ = grpcConn.Close()
	_ = db.Close()
	os.Exit(code)
}

func getAuthContext() context.Context {
	token := os.Getenv("API_TOKEN")
	if token == "" {
		token = "dev-token"
	}
	return metadata.AppendToOutgoingContext(context.Background(), "authorization", "Bearer "+token)
}

func getGRPCAddress() string {
	addr := os.Getenv("GRPC_ADDRESS")
	if addr == "" {
		addr = "localhost:8080"
	}
	return addr
}

func invoke(ctx context.Context, method string, fields map[string]interface{}) (*structpb.Struct, error) {
	in, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, err
	}
	out := &structpb.Struct{}
	return out, grpcConn.Invoke(ctx, method, in, out)
}

func computeAndWait(t *testing.T, chartID string, force bool) *structpb.Struct {
	t.Helper()
	ctx := getAuthContext()

	queued, err := invoke(ctx, grpcadapter.MethodComputeChart, map[string]interface{}{"chart_id": chartID, "force": force})
	require.NoError(t, err)
	jobID := queued.Fields["job_id"].GetStringValue()

	var job *structpb.Struct
	require.Eventually(t, func() bool {
		job, err = invoke(ctx, grpcadapter.MethodGetJob, map[string]interface{}{"job_id": jobID})
		require.NoError(t, err)
		return job.Fields["status"].GetStringValue() == string(domain.JobReady) ||
			job.Fields["status"].GetStringValue() == string(domain.JobFailed)
	}, 30*time.Second, 100*time.Millisecond)
	return job
}

func countRows(t *testing.T, table, chartID string) int {
	t.Helper()
	var n int
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE chart_id = $1", table)
	require.NoError(t, db.QueryRowContext(context.Background(), query, chartID).Scan(&n))
	return n
}

// TestEndToEndFlow covers create, compute, skip without force and replace with force
func TestEndToEndFlow(t *testing.T) {
	ctx := getAuthContext()

	created, err := invoke(ctx, grpcadapter.MethodCreateChart, map[string]interface{}{
		"title":      "E2E",
		"event_time": "1990-05-17T12:30:00+04:00",
		"location": map[string]interface{}{
			"name":      "Moscow",
			"latitude":  55.7558,
			"longitude": 37.6173,
			"timezone":  "Europe/Moscow",
		},
	})
	require.NoError(t, err)
	chartID := created.Fields["chart_id"].GetStringValue()

	// First run computes
	job := computeAndWait(t, chartID, false)
	require.Equal(t, string(domain.JobReady), job.Fields["status"].GetStringValue(), "error: %s", job.Fields["error"].GetStringValue())
	assert.Equal(t, "computed", job.Fields["outcome"].GetStringValue())

	positions := countRows(t, "chart_positions", chartID)
	assert.Equal(t, len(domain.TrackedBodies), positions)
	assert.Equal(t, 10, countRows(t, "chart_indicators", chartID))
	aspects := countRows(t, "chart_aspects", chartID)

	// Second run without force is a no-op
	job = computeAndWait(t, chartID, false)
	assert.Equal(t, "skipped", job.Fields["outcome"].GetStringValue())
	assert.Equal(t, positions, countRows(t, "chart_positions", chartID))

	// Forced run replaces every derived row
	job = computeAndWait(t, chartID, true)
	assert.Equal(t, "computed", job.Fields["outcome"].GetStringValue())
	assert.Equal(t, positions, countRows(t, "chart_positions", chartID))
	assert.Equal(t, aspects, countRows(t, "chart_aspects", chartID))
	assert.Equal(t, positions, countRows(t, "chart_strengths", chartID))

	got, err := invoke(ctx, grpcadapter.MethodGetChart, map[string]interface{}{"chart_id": chartID})
	require.NoError(t, err)
	meta := got.Fields["metadata"].GetStructValue()
	require.NotNil(t, meta)
	assert.Equal(t, domain.PipelineTag, meta.Fields["pipeline"].GetStringValue())
	assert.Len(t, got.Fields["positions"].GetListValue().GetValues(), positions)
}

// TestNegativeScenarios checks auth and error mapping against the live server
func TestNegativeScenarios(t *testing.T) {
	_, err := invoke(context.Background(), grpcadapter.MethodGetJob, map[string]interface{}{"job_id": "x"})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	_, err = invoke(getAuthContext(), grpcadapter.MethodComputeChart, map[string]interface{}{"chart_id": "00000000-0000-0000-0000-000000000001"})
	assert.Equal(t, codes.NotFound, status.Code(err))

	_, err = invoke(getAuthContext(), grpcadapter.MethodCreateChart, map[string]interface{}{
		"event_time": "1990-05-17T08:30:00Z",
		"location":   map[string]interface{}{"latitude": 120.0, "longitude": 0.0, "timezone": "UTC"},
	})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}
