package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/simaogato/bioastro-backend/internal/adapter/cache"
	"github.com/simaogato/bioastro-backend/internal/adapter/ephemeris"
	"github.com/simaogato/bioastro-backend/internal/adapter/knowledge"
	"github.com/simaogato/bioastro-backend/internal/domain"
	"github.com/simaogato/bioastro-backend/internal/usecase/chart"
)

type computeOptions struct {
	eventTime string
	latitude  float64
	longitude float64
	timezone  string
	name      string
	provider  string
	knowledge string
	pretty    bool
}

func newComputeCmd(a *app) *cobra.Command {
	opts := &computeOptions{}

	cmd := &cobra.Command{
		Use:   "compute",
		Short: "Compute a chart and print it as JSON",
		Example: `  chartctl compute --time 1990-05-17T08:30:00Z --lat 55.75 --lon 37.62 --tz Europe/Moscow
  chartctl compute --time 2000-01-01T12:00:00Z --lat 0 --lon 0 --tz UTC --provider stub --pretty`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runCompute(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.eventTime, "time", "", "event time in RFC3339")
	cmd.Flags().Float64Var(&opts.latitude, "lat", 0, "latitude in degrees, north positive")
	cmd.Flags().Float64Var(&opts.longitude, "lon", 0, "longitude in degrees, east positive")
	cmd.Flags().StringVar(&opts.timezone, "tz", "UTC", "IANA timezone of the location")
	cmd.Flags().StringVar(&opts.name, "name", "", "location name")
	cmd.Flags().StringVar(&opts.provider, "provider", ephemeris.ProviderNamePrecise, "ephemeris provider: precise or stub")
	cmd.Flags().StringVar(&opts.knowledge, "knowledge", "", "knowledge base YAML (embedded document when empty)")
	cmd.Flags().BoolVar(&opts.pretty, "pretty", false, "indent the JSON output")
	_ = cmd.MarkFlagRequired("time")

	return cmd
}

func (a *app) runCompute(cmd *cobra.Command, opts *computeOptions) error {
	eventTime, err := time.Parse(time.RFC3339, opts.eventTime)
	if err != nil {
		return fmt.Errorf("invalid --time: %w", err)
	}
	if opts.provider == ephemeris.ProviderNameRemote {
		return fmt.Errorf("%w: the remote provider needs the server's cache and retry setup", domain.ErrValidation)
	}

	c := &domain.Chart{
		ID:        uuid.New(),
		EventTime: eventTime.UTC(),
		Location: domain.Location{
			ID:        uuid.New(),
			Name:      opts.name,
			Latitude:  opts.latitude,
			Longitude: opts.longitude,
			Timezone:  opts.timezone,
		},
	}
	if err := c.Validate(); err != nil {
		return err
	}

	kb, err := knowledge.Load(opts.knowledge)
	if err != nil {
		return err
	}

	provider, err := ephemeris.NewProvider(opts.provider, ephemeris.RemoteConfig{}, a.logger)
	if err != nil {
		return err
	}
	client := ephemeris.NewClient(provider, cache.NewMemory(), ephemeris.ClientConfig{}, a.logger)

	ctx := cmd.Context()
	snapshot, err := client.Fetch(ctx, c.EventTime, c.Location)
	if err != nil {
		return fmt.Errorf("failed to fetch ephemeris: %w", err)
	}

	computation, err := chart.RunPipeline(ctx, c.ID, snapshot, domain.NewCatalogue(domain.DefaultCatalogue), kb, a.logger)
	if err != nil {
		return err
	}

	out := newComputeOutput(c, computation)
	var data []byte
	if opts.pretty {
		data, err = json.MarshalIndent(out, "", "  ")
	} else {
		data, err = json.Marshal(out)
	}
	if err != nil {
		return fmt.Errorf("failed to marshal chart: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}

type computeOutput struct {
	EventTime   string               `json:"event_time"`
	Latitude    float64              `json:"latitude"`
	Longitude   float64              `json:"longitude"`
	HouseSystem string               `json:"house_system"`
	Positions   []positionView       `json:"positions"`
	Aspects     []aspectView         `json:"aspects"`
	Strengths   []strengthView       `json:"strengths"`
	Indicators  []indicatorView      `json:"indicators"`
	Metadata    domain.ChartMetadata `json:"metadata"`
}

type positionView struct {
	Body           domain.BodySlug `json:"body"`
	Sign           domain.Sign     `json:"sign"`
	House          int             `json:"house"`
	AbsoluteDegree string          `json:"absolute_degree"`
	Retrograde     bool            `json:"is_retrograde"`
	Speed          *string         `json:"speed"`
}

type aspectView struct {
	Source    domain.BodySlug   `json:"source_body"`
	Target    domain.BodySlug   `json:"target_body"`
	Type      domain.AspectType `json:"aspect_type"`
	Orb       string            `json:"orb"`
	Intensity string            `json:"intensity"`
}

type strengthView struct {
	Body   domain.BodySlug `json:"body"`
	Metric string          `json:"metric_name"`
	Score  string          `json:"score"`
	Weight string          `json:"weight"`
}

type indicatorView struct {
	Category domain.IndicatorCategory `json:"category"`
	Name     string                   `json:"name"`
	Value    string                   `json:"value"`
}

func newComputeOutput(c *domain.Chart, computation *domain.ChartComputation) computeOutput {
	out := computeOutput{
		EventTime:   c.EventTime.Format(time.RFC3339),
		Latitude:    c.Location.Latitude,
		Longitude:   c.Location.Longitude,
		HouseSystem: computation.HouseSystem,
		Positions:   make([]positionView, 0, len(computation.Positions)),
		Aspects:     make([]aspectView, 0, len(computation.Aspects)),
		Strengths:   make([]strengthView, 0, len(computation.Strengths)),
		Indicators:  make([]indicatorView, 0, len(computation.Indicators)),
		Metadata:    computation.Metadata,
	}

	for _, p := range computation.Positions {
		view := positionView{
			Body:           p.Body,
			Sign:           p.Sign,
			House:          p.House,
			AbsoluteDegree: p.AbsoluteDegree.StringFixed(3),
			Retrograde:     p.Retrograde,
		}
		if p.Speed != nil {
			s := p.Speed.StringFixed(5)
			view.Speed = &s
		}
		out.Positions = append(out.Positions, view)
	}
	for _, a := range computation.Aspects {
		out.Aspects = append(out.Aspects, aspectView{
			Source:    a.SourceBody,
			Target:    a.TargetBody,
			Type:      a.Type,
			Orb:       a.Orb.StringFixed(2),
			Intensity: a.Intensity.StringFixed(2),
		})
	}
	for _, m := range computation.Strengths {
		out.Strengths = append(out.Strengths, strengthView{
			Body:   m.Body,
			Metric: m.MetricName,
			Score:  m.Score.StringFixed(3),
			Weight: m.Weight.StringFixed(3),
		})
	}
	for _, ind := range computation.Indicators {
		out.Indicators = append(out.Indicators, indicatorView{
			Category: ind.Category,
			Name:     ind.Name,
			Value:    ind.Value.StringFixed(2),
		})
	}
	return out
}
