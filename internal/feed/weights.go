package feed

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"
)

// FreshnessWindow is how recently an event must have been created to earn
// the freshness bonus. Both scorers share it.
const FreshnessWindow = 24 * time.Hour

// Weights holds the scoring constants for both feeds. Scores are integers;
// the defaults reproduce the product's original behavior exactly and any
// change shifts ranking semantics, so overrides go through calibration
// rather than code.
type Weights struct {
	// Personalized scorer.
	FollowedCreator int `json:"followed_creator"` // creator is in the viewer's follow set
	TagMatch        int `json:"tag_match"`        // per matching tag, uncapped
	Freshness       int `json:"freshness"`        // created within FreshnessWindow

	// Bridging scorer. Exactly one of the three bridge terms applies.
	BridgeOneFamiliar int `json:"bridge_one_familiar"` // |familiar| == 1 and |novel| > 0
	BridgeTwoFamiliar int `json:"bridge_two_familiar"` // |familiar| == 2 and |novel| > 0
	BridgeAllNovel    int `json:"bridge_all_novel"`    // |familiar| == 0 and |novel| > 0
	AlreadyLiked      int `json:"already_liked"`       // penalty, keeps the event in the list
}

// CalibrationConfig represents the JSON structure of the calibration file.
type CalibrationConfig struct {
	Version string  `json:"version"`
	Weights Weights `json:"weights"`
}

// DefaultWeights returns the default scoring constants.
//
// Personalized: score = 10*followed + 5*matching_tags + 3*fresh
// Bridging: score = bridge_term + 3*fresh - 100*already_liked, where
// bridge_term is 15 for one familiar tag, 10 for two, 5 for none (each
// requiring at least one novel tag) and 0 otherwise.
func DefaultWeights() *Weights {
	return &Weights{
		FollowedCreator:   10,
		TagMatch:          5,
		Freshness:         3,
		BridgeOneFamiliar: 15,
		BridgeTwoFamiliar: 10,
		BridgeAllNovel:    5,
		AlreadyLiked:      -100,
	}
}

// LoadCalibration loads scoring weights from a JSON calibration file.
// On any error the defaults are returned alongside the error so callers
// can degrade gracefully. Partial configurations are merged with defaults.
func LoadCalibration(filePath string) (*Weights, error) {
	if filePath == "" {
		return DefaultWeights(), nil
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		slog.Warn("failed to read feed calibration file, using defaults",
			"path", filePath,
			"error", err)
		return DefaultWeights(), fmt.Errorf("failed to read calibration file: %w", err)
	}

	var config CalibrationConfig
	if err := json.Unmarshal(data, &config); err != nil {
		slog.Warn("failed to parse feed calibration file, using defaults",
			"path", filePath,
			"error", err)
		return DefaultWeights(), fmt.Errorf("failed to parse calibration file: %w", err)
	}

	defaults := DefaultWeights()
	merged := MergeCalibration(defaults, &config.Weights)
	logCalibrationOverrides(defaults, merged)

	return merged, nil
}

// MergeCalibration merges override weights with base weights. Only non-zero
// values from the override are applied, which allows partial overrides in
// the calibration file. A zero weight cannot be expressed via calibration;
// none of the defaults are zero, so that is not a loss in practice.
func MergeCalibration(base *Weights, override *Weights) *Weights {
	if base == nil {
		return DefaultWeights()
	}
	if override == nil {
		result := *base
		return &result
	}

	result := *base

	if override.FollowedCreator != 0 {
		result.FollowedCreator = override.FollowedCreator
	}
	if override.TagMatch != 0 {
		result.TagMatch = override.TagMatch
	}
	if override.Freshness != 0 {
		result.Freshness = override.Freshness
	}
	if override.BridgeOneFamiliar != 0 {
		result.BridgeOneFamiliar = override.BridgeOneFamiliar
	}
	if override.BridgeTwoFamiliar != 0 {
		result.BridgeTwoFamiliar = override.BridgeTwoFamiliar
	}
	if override.BridgeAllNovel != 0 {
		result.BridgeAllNovel = override.BridgeAllNovel
	}
	if override.AlreadyLiked != 0 {
		result.AlreadyLiked = override.AlreadyLiked
	}

	return &result
}

// logCalibrationOverrides logs which weights were overridden from defaults.
func logCalibrationOverrides(defaults *Weights, loaded *Weights) {
	var overrides []string

	check := func(name string, def, got int) {
		if def != got {
			overrides = append(overrides, fmt.Sprintf("%s: %d -> %d", name, def, got))
		}
	}
	check("followed_creator", defaults.FollowedCreator, loaded.FollowedCreator)
	check("tag_match", defaults.TagMatch, loaded.TagMatch)
	check("freshness", defaults.Freshness, loaded.Freshness)
	check("bridge_one_familiar", defaults.BridgeOneFamiliar, loaded.BridgeOneFamiliar)
	check("bridge_two_familiar", defaults.BridgeTwoFamiliar, loaded.BridgeTwoFamiliar)
	check("bridge_all_novel", defaults.BridgeAllNovel, loaded.BridgeAllNovel)
	check("already_liked", defaults.AlreadyLiked, loaded.AlreadyLiked)

	if len(overrides) > 0 {
		slog.Info("loaded feed calibration with overrides", "overrides", overrides)
	} else {
		slog.Info("loaded feed calibration (using all defaults)")
	}
}
