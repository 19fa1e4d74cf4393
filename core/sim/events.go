package sim

import "github.com/shanchengnb/fire-egine-dispatch/core/model"

// RecordEvent announces a freshly appended dispatch record. It is published
// on the event bus by the episode runner, never by Step itself.
type RecordEvent struct {
	Step   int
	Record model.DispatchRecord
}

// EpisodeEvent summarizes a finished episode.
type EpisodeEvent struct {
	RunID               string
	Steps               int
	Finished            int
	Lost                int
	MeanResponseSeconds float64
}
