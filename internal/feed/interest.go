package feed

import "context"

// interestProfile builds the viewer's interest tag set from their like
// history: likes -> liked event IDs -> union of those events' tags,
// deduplicated. Also returns the liked-event ID set, which the bridging
// scorer needs for its penalty term.
//
// A viewer with no likes gets an empty interest set; that is a normal
// outcome, not an error. The profile is ephemeral: rebuilt per request,
// never persisted.
func (s *Service) interestProfile(ctx context.Context, viewerID string) (interests, liked map[string]struct{}, err error) {
	likes, err := s.gw.LikesByUser(ctx, viewerID)
	if err != nil {
		return nil, nil, dataAccess("likes_by_user", err)
	}

	liked = make(map[string]struct{}, len(likes))
	ids := make([]string, 0, len(likes))
	for _, l := range likes {
		if _, seen := liked[l.EventID]; seen {
			continue
		}
		liked[l.EventID] = struct{}{}
		ids = append(ids, l.EventID)
	}

	interests = make(map[string]struct{})
	if len(ids) == 0 {
		return interests, liked, nil
	}

	tagged, err := s.gw.EventTags(ctx, ids)
	if err != nil {
		return nil, nil, dataAccess("event_tags", err)
	}
	for _, te := range tagged {
		for _, tag := range te.Tags {
			interests[tag] = struct{}{}
		}
	}

	return interests, liked, nil
}
