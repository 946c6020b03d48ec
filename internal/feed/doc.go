// Package feed implements the event-feed ranking engine behind the
// "For You" and "Explore" feeds.
//
// Basic Usage:
//
//	// Wire a gateway over the repositories (or Postgres) at startup
//	gw := feed.NewRepositoryGateway(events, likes, attendance, follows)
//
//	// Load calibration (typically at startup)
//	weights, err := feed.LoadCalibration("configs/feed.calibration.json")
//	if err != nil {
//		log.Warn("using default weights", "error", err)
//	}
//
//	svc := feed.NewService(gw, feed.WithWeights(weights))
//	ranked, err := svc.Rank(ctx, viewerID, feed.KindPersonalized)
//
// The two feeds share one pipeline: build the viewer's interest profile
// from their like history, fetch a bounded candidate pool, score each
// candidate, sort by (score DESC, candidate-pool index ASC), then enrich
// every event with viewer-relative fields. Only the scoring step differs
// between the feeds.
//
// The personalized scorer rewards followed creators, tag overlap with the
// interest profile, and freshly created events. The bridging scorer rewards
// partial overlap: events with exactly one familiar tag plus at least one
// unfamiliar tag score highest, and events the viewer already liked are
// pushed to the bottom of the list without being removed.
//
// The pipeline holds no state across requests. All data access goes through
// the Gateway interface; a gateway failure surfaces as *DataAccessError and
// is the only error kind Rank returns for a well-formed request.
//
// Calibration:
//
// Scoring weights can be tuned at deploy time via a JSON calibration file
// loaded at startup. Changing the file requires a restart to take effect.
package feed
