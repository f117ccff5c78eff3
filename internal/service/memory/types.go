package memory

import (
	"encoding/json"
	"strconv"
	"strings"
)

// optString is a nullable extraction field. The model occasionally returns
// numbers for age-like fields, the literal string "null", or nothing at all;
// all of those must not abort the whole update.
type optString struct {
	set bool
	val string
}

func (o *optString) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		return nil
	}

	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		if str == "" || strings.EqualFold(str, "null") {
			return nil
		}
		o.set, o.val = true, str
		return nil
	}

	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		o.set, o.val = true, strconv.FormatFloat(num, 'f', -1, 64)
		return nil
	}

	// Unexpected shape, treat as absent rather than failing the update.
	return nil
}

// ProfileUpdate is the typed partial update returned by the profile
// extraction call. Scalars overwrite, lists union; keys outside this set are
// dropped by the decode.
type ProfileUpdate struct {
	Name       optString `json:"name"`
	Profession optString `json:"profession"`
	Age        optString `json:"age"`
	Location   optString `json:"location"`
	Interests  []string  `json:"interests"`
	OtherFacts []string  `json:"other_facts"`
}

// TopicUpdate is the classification result for one turn.
type TopicUpdate struct {
	MainTopic    string   `json:"main_topic"`
	Summary      string   `json:"summary"`
	KeyPositions []string `json:"key_positions"`
	KeyPoints    []string `json:"key_points"`
}

// TraitDelta is the character-evolution analysis result for one turn.
type TraitDelta struct {
	EmpathyDelta  float64 `json:"empathy_delta"`
	TrustDelta    float64 `json:"trust_delta"`
	OpennessDelta float64 `json:"openness_delta"`
	Reason        string  `json:"reason"`
}
