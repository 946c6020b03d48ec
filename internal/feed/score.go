package feed

import "time"

// tagSet deduplicates a tag slice into a membership set. Stored events may
// carry duplicate tags; counting overlap on raw slices would overcount.
func tagSet(tags []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		set[t] = struct{}{}
	}
	return set
}

// isFresh reports whether the event was created within FreshnessWindow
// before the scoring instant.
func isFresh(createdAt, now time.Time) bool {
	return now.Sub(createdAt) < FreshnessWindow
}

// relevanceScore computes the "For You" score for a candidate.
// Pure function of (candidate, follow set, interest set, scoring instant):
//
//   - +FollowedCreator if the creator is followed
//   - +TagMatch per deduplicated tag shared with the interest set, uncapped
//   - +Freshness if the event was created within FreshnessWindow
//
// Already-liked events are neither penalized nor excluded here.
func relevanceScore(c Candidate, follows, interests map[string]struct{}, now time.Time, w *Weights) int {
	score := 0

	if _, ok := follows[c.Event.CreatorID]; ok {
		score += w.FollowedCreator
	}

	matching := 0
	for tag := range tagSet(c.Event.Tags) {
		if _, ok := interests[tag]; ok {
			matching++
		}
	}
	score += w.TagMatch * matching

	if isFresh(c.Event.CreatedAt, now) {
		score += w.Freshness
	}

	return score
}

// bridgingScore computes the "Explore" score for a candidate.
//
// The event's deduplicated tags split into familiar (in the interest set)
// and novel (not in it). Exactly one bridge term applies, in this order:
// one familiar tag plus novelty scores highest, two familiar tags plus
// novelty next, all-novel last. Three or more familiar tags, or no novel
// tags at all, earn nothing from the bridge term.
//
// The freshness bonus applies independently. An event the viewer already
// liked takes the AlreadyLiked penalty: it sinks toward the bottom of the
// list but is never removed.
func bridgingScore(c Candidate, interests, liked map[string]struct{}, now time.Time, w *Weights) int {
	score := 0

	familiar, novel := 0, 0
	for tag := range tagSet(c.Event.Tags) {
		if _, ok := interests[tag]; ok {
			familiar++
		} else {
			novel++
		}
	}

	switch {
	case familiar == 1 && novel > 0:
		score += w.BridgeOneFamiliar
	case familiar == 2 && novel > 0:
		score += w.BridgeTwoFamiliar
	case familiar == 0 && novel > 0:
		score += w.BridgeAllNovel
	}

	if isFresh(c.Event.CreatedAt, now) {
		score += w.Freshness
	}

	if _, ok := liked[c.Event.ID]; ok {
		score += w.AlreadyLiked
	}

	return score
}
