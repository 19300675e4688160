package providers

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/alex-user-go/tripplan/internal/trip"
)

const maxRadiusMeters = 50000

// AttractionAdapter fetches points of interest and their photos.
type AttractionAdapter struct {
	finder AttractionFinder
	opts   Options
}

// NewAttractionAdapter creates a new AttractionAdapter.
func NewAttractionAdapter(finder AttractionFinder, opts Options) *AttractionAdapter {
	return &AttractionAdapter{finder: finder, opts: opts.withDefaults()}
}

// Fetch finds attractions around the query's coordinates or city. A failed
// photo lookup leaves that place without photos.
func (a *AttractionAdapter) Fetch(ctx context.Context, q trip.Query) trip.Result[[]RawPlace] {
	loc, perr := a.location(q)
	if perr != nil {
		return trip.Failure[[]RawPlace](perr)
	}
	if a.finder == nil {
		return trip.Failure[[]RawPlace](trip.NotImplemented("no attraction provider configured"))
	}

	places, err := a.finder.FindAttractions(ctx, loc, q.RadiusMeters, a.opts.MaxResults)
	if err != nil {
		return trip.Failure[[]RawPlace](classify(err, "attraction search"))
	}
	if len(places) == 0 {
		return trip.Failure[[]RawPlace](trip.NotFound("no attractions near %s", loc))
	}
	if len(places) > a.opts.MaxResults {
		places = places[:a.opts.MaxResults]
	}

	// Copy so photo results never alias the finder's slice.
	out := make([]RawPlace, len(places))
	copy(out, places)

	var g errgroup.Group
	g.SetLimit(a.opts.PhotoFanOut)
	for i := range out {
		if out[i].PlaceID == "" {
			out[i].Photos = nil
			continue
		}
		g.Go(func() error {
			photos, err := a.finder.GetPhotos(ctx, out[i].PlaceID, a.opts.PhotoCap)
			if err != nil {
				a.opts.Logger.Debug("photo lookup failed",
					zap.String("place_id", out[i].PlaceID),
					zap.Error(err))
				out[i].Photos = nil
				return nil
			}
			if len(photos) > a.opts.PhotoCap {
				photos = photos[:a.opts.PhotoCap]
			}
			out[i].Photos = photos
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return trip.Failure[[]RawPlace](trip.Upstream(err, "attraction photos"))
	}
	return trip.Success(out)
}

func (a *AttractionAdapter) location(q trip.Query) (Location, *trip.ProviderError) {
	if q.RadiusMeters < 1 || q.RadiusMeters > maxRadiusMeters {
		return Location{}, trip.InvalidInput("radius must be between 1 and %d metres", maxRadiusMeters)
	}
	if q.Coordinates != nil {
		if !q.Coordinates.Valid() {
			return Location{}, trip.InvalidInput("coordinates %s are out of range", q.Coordinates)
		}
		c := *q.Coordinates
		return Location{Name: q.City, Coords: &c}, nil
	}
	if q.City == "" {
		return Location{}, trip.InvalidInput("a place name or coordinates are required")
	}
	return Location{Name: q.City}, nil
}
