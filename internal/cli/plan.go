package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/alex-user-go/tripplan/internal/app"
	"github.com/alex-user-go/tripplan/internal/config"
	"github.com/alex-user-go/tripplan/internal/handler"
	"github.com/alex-user-go/tripplan/internal/logger"
	"github.com/alex-user-go/tripplan/internal/planner"
	"github.com/alex-user-go/tripplan/internal/trip"
)

// PlannerFactory builds the planner used by the plan command.
type PlannerFactory func(ctx context.Context, cfg *config.Config, log *zap.Logger) handler.Planner

func newCoordinator(ctx context.Context, cfg *config.Config, log *zap.Logger) handler.Planner {
	return planner.NewCoordinator(app.NewAdapters(ctx, cfg, log), cfg.Planner.Coordinator(),
		planner.WithLogger(log.Named("planner")))
}

type planFlags struct {
	req        handler.PlanRequest
	categories string
	lat, lng   float64
	compact    bool
}

// NewPlanCmd plans one trip and prints the plan as JSON.
func NewPlanCmd(configPath *string) *cobra.Command {
	return newPlanCmd(configPath, newCoordinator)
}

func newPlanCmd(configPath *string, factory PlannerFactory) *cobra.Command {
	var f planFlags

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Assemble a trip plan and print it as JSON",
		Example: "  tripplan plan --origin JFK --destination NRT --date 2025-06-01 --country Japan\n" +
			"  tripplan plan --origin JFK --destination NRT --date 2025-06-01 --categories flights,lodging",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			log, err := logger.New(cfg.Logging.Level, cfg.Logging.Format)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			req := f.req
			if f.categories != "" {
				req.Categories = strings.Split(f.categories, ",")
			}
			if cmd.Flags().Changed("lat") || cmd.Flags().Changed("lng") {
				if !cmd.Flags().Changed("lat") || !cmd.Flags().Changed("lng") {
					return fmt.Errorf("--lat and --lng must be given together")
				}
				req.Coordinates = &trip.LatLng{Lat: f.lat, Lng: f.lng}
			}

			q, cats, err := req.Query()
			if err != nil {
				return err
			}

			p := factory(cmd.Context(), cfg, log)
			plan, planErr := p.PlanTrip(cmd.Context(), q, cats...)
			if plan != nil {
				enc := json.NewEncoder(cmd.OutOrStdout())
				if !f.compact {
					enc.SetIndent("", "  ")
				}
				if err := enc.Encode(plan); err != nil {
					return fmt.Errorf("failed to encode plan: %w", err)
				}
			}
			return planErr
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&f.req.Origin, "origin", "", "origin airport or city (required)")
	fl.StringVar(&f.req.Destination, "destination", "", "destination airport or city (required)")
	fl.StringVar(&f.req.Date, "date", "", "departure date, YYYY-MM-DD (required)")
	fl.StringVar(&f.categories, "categories", "", "comma separated categories (default: all)")
	fl.IntVar(&f.req.Passengers, "passengers", 0, "number of passengers (default 1)")
	fl.IntVar(&f.req.Guests, "guests", 0, "number of lodging guests (default: passengers)")
	fl.StringVar(&f.req.City, "city", "", "destination city (default: destination)")
	fl.StringVar(&f.req.Country, "country", "", "country for the cultural summary (default: city)")
	fl.Float64Var(&f.lat, "lat", 0, "attraction search latitude")
	fl.Float64Var(&f.lng, "lng", 0, "attraction search longitude")
	fl.IntVar(&f.req.RadiusMeters, "radius", 0, "attraction search radius in metres")
	fl.StringVar(&f.req.TravelMode, "mode", "", "local transport mode: transit, driving, walking, bicycling")
	fl.StringVar(&f.req.DepartureAt, "departure", "", "local transport departure time, RFC 3339")
	fl.BoolVar(&f.compact, "compact", false, "print the plan on one line")
	for _, name := range []string{"origin", "destination", "date"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}
