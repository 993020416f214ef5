package grpc

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/simaogato/bioastro-backend/internal/domain"
	"github.com/simaogato/bioastro-backend/internal/usecase/worker"
)

// JobStatusQueued is reported by ComputeChart once the job is accepted
const JobStatusQueued = "queued"

// ChartService is the chart use case the server delegates to
type ChartService interface {
	CreateChart(ctx context.Context, chart *domain.Chart) error
	GetChart(ctx context.Context, chartID uuid.UUID) (*domain.Chart, *domain.ChartComputation, error)
}

// JobQueue accepts background compute requests
type JobQueue interface {
	Enqueue(chartID uuid.UUID, force bool) (uuid.UUID, error)
	Job(id uuid.UUID) (domain.ComputeJob, error)
}

// Server implements the ChartService gRPC server
type Server struct {
	Charts ChartService
	Queue  JobQueue
}

// NewServer creates a new gRPC server instance
func NewServer(charts ChartService, queue JobQueue) *Server {
	return &Server{
		Charts: charts,
		Queue:  queue,
	}
}

// CreateChart handles the CreateChart RPC
func (s *Server) CreateChart(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	eventTime, err := time.Parse(time.RFC3339, stringField(req, "event_time"))
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid event_time format: %v", err)
	}

	var ownerID uuid.UUID
	if raw := stringField(req, "owner_id"); raw != "" {
		ownerID, err = uuid.Parse(raw)
		if err != nil {
			return nil, status.Errorf(codes.InvalidArgument, "invalid owner_id format: %v", err)
		}
	}

	loc := req.GetFields()["location"].GetStructValue()
	if loc == nil {
		return nil, status.Error(codes.InvalidArgument, "location is required")
	}

	chart := &domain.Chart{
		OwnerID:   ownerID,
		Title:     stringField(req, "title"),
		EventTime: eventTime,
		Location: domain.Location{
			Name:      stringField(loc, "name"),
			Latitude:  loc.GetFields()["latitude"].GetNumberValue(),
			Longitude: loc.GetFields()["longitude"].GetNumberValue(),
			Timezone:  stringField(loc, "timezone"),
		},
	}

	if err := s.Charts.CreateChart(ctx, chart); err != nil {
		return nil, mapError(err)
	}

	return structpb.NewStruct(map[string]interface{}{
		"chart_id":    chart.ID.String(),
		"location_id": chart.Location.ID.String(),
		"event_time":  chart.EventTime.Format(time.RFC3339),
	})
}

// ComputeChart handles the ComputeChart RPC.
// The chart must exist; the computation itself runs on the job queue.
func (s *Server) ComputeChart(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	chartID, err := uuid.Parse(stringField(req, "chart_id"))
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid chart_id format: %v", err)
	}

	if _, _, err := s.Charts.GetChart(ctx, chartID); err != nil {
		return nil, mapError(err)
	}

	jobID, err := s.Queue.Enqueue(chartID, req.GetFields()["force"].GetBoolValue())
	if err != nil {
		return nil, mapError(err)
	}

	return structpb.NewStruct(map[string]interface{}{
		"chart_id": chartID.String(),
		"job_id":   jobID.String(),
		"status":   JobStatusQueued,
	})
}

// GetJob handles the GetJob RPC
func (s *Server) GetJob(_ context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	jobID, err := uuid.Parse(stringField(req, "job_id"))
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid job_id format: %v", err)
	}

	job, err := s.Queue.Job(jobID)
	if err != nil {
		return nil, mapError(err)
	}

	return structpb.NewStruct(map[string]interface{}{
		"job_id":     job.ID.String(),
		"chart_id":   job.ChartID.String(),
		"status":     string(job.Status),
		"attempts":   job.Attempts,
		"outcome":    job.Outcome,
		"error":      job.LastError,
		"updated_at": job.UpdatedAt.UTC().Format(time.RFC3339),
	})
}

// GetChart handles the GetChart RPC
func (s *Server) GetChart(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	chartID, err := uuid.Parse(stringField(req, "chart_id"))
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid chart_id format: %v", err)
	}

	chart, computation, err := s.Charts.GetChart(ctx, chartID)
	if err != nil {
		return nil, mapError(err)
	}

	out, err := structpb.NewStruct(map[string]interface{}{
		"chart":      chartToMap(chart),
		"positions":  positionsToList(computation.Positions),
		"aspects":    aspectsToList(computation.Aspects),
		"strengths":  strengthsToList(computation.Strengths),
		"indicators": indicatorsToList(computation.Indicators),
	})
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to encode chart: %v", err)
	}

	if chart.Metadata != nil {
		meta, err := metadataToStruct(chart.Metadata)
		if err != nil {
			return nil, status.Errorf(codes.Internal, "failed to encode metadata: %v", err)
		}
		out.Fields["metadata"] = structpb.NewStructValue(meta)
	}
	return out, nil
}

func stringField(s *structpb.Struct, name string) string {
	return s.GetFields()[name].GetStringValue()
}

func chartToMap(chart *domain.Chart) map[string]interface{} {
	return map[string]interface{}{
		"id":                  chart.ID.String(),
		"owner_id":            chart.OwnerID.String(),
		"title":               chart.Title,
		"event_time":          chart.EventTime.UTC().Format(time.RFC3339),
		"house_system":        chart.HouseSystem,
		"calculation_version": chart.CalculationVersion,
		"location": map[string]interface{}{
			"id":        chart.Location.ID.String(),
			"name":      chart.Location.Name,
			"latitude":  chart.Location.Latitude,
			"longitude": chart.Location.Longitude,
			"timezone":  chart.Location.Timezone,
		},
	}
}

func positionsToList(positions []domain.Position) []interface{} {
	out := make([]interface{}, 0, len(positions))
	for _, p := range positions {
		var speed interface{}
		if p.Speed != nil {
			speed = p.Speed.StringFixed(5)
		}
		out = append(out, map[string]interface{}{
			"body":            string(p.Body),
			"sign":            string(p.Sign),
			"house":           p.House,
			"absolute_degree": p.AbsoluteDegree.StringFixed(3),
			"is_retrograde":   p.Retrograde,
			"speed":           speed,
		})
	}
	return out
}

func aspectsToList(aspects []domain.Aspect) []interface{} {
	out := make([]interface{}, 0, len(aspects))
	for _, a := range aspects {
		out = append(out, map[string]interface{}{
			"source_body": string(a.SourceBody),
			"target_body": string(a.TargetBody),
			"aspect_type": string(a.Type),
			"orb":         a.Orb.StringFixed(2),
			"intensity":   a.Intensity.StringFixed(2),
		})
	}
	return out
}

func strengthsToList(strengths []domain.StrengthMetric) []interface{} {
	out := make([]interface{}, 0, len(strengths))
	for _, m := range strengths {
		out = append(out, map[string]interface{}{
			"body":        string(m.Body),
			"metric_name": m.MetricName,
			"score":       m.Score.StringFixed(3),
			"weight":      m.Weight.StringFixed(3),
		})
	}
	return out
}

func indicatorsToList(indicators []domain.IntegralIndicator) []interface{} {
	out := make([]interface{}, 0, len(indicators))
	for _, ind := range indicators {
		out = append(out, map[string]interface{}{
			"category": string(ind.Category),
			"name":     ind.Name,
			"value":    ind.Value.StringFixed(2),
		})
	}
	return out
}

// metadataToStruct re-encodes the metadata blob through its JSON form
func metadataToStruct(meta *domain.ChartMetadata) (*structpb.Struct, error) {
	raw, err := json.Marshal(meta)
	if err != nil {
		return nil, err
	}
	out := &structpb.Struct{}
	if err := protojson.Unmarshal(raw, out); err != nil {
		return nil, err
	}
	return out, nil
}

// mapError converts domain errors to gRPC status errors
func mapError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, domain.ErrValidation):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, domain.ErrChartNotFound),
		errors.Is(err, domain.ErrJobNotFound),
		errors.Is(err, domain.ErrLocationNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, domain.ErrProviderNotImplemented),
		errors.Is(err, domain.ErrQueueClosed):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, worker.ErrQueueFull):
		return status.Error(codes.ResourceExhausted, err.Error())
	}

	// Default to Internal error for unknown errors
	return status.Error(codes.Internal, err.Error())
}
