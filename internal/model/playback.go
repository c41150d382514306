package model

// Status is the playback lifecycle of an active rundown.
type Status string

const (
	StatusIdle     Status = "idle"     // no playable item anywhere in the document
	StatusPlaying  Status = "playing"  // clock running
	StatusPaused   Status = "paused"   // clock stopped, position valid
	StatusFinished Status = "finished" // elapsed past the last item
)

// Position addresses one item in a rundown by zero-based folder and item
// index. A position outside the document means "no current item".
type Position struct {
	Folder int `json:"folder"`
	Item   int `json:"item"`
}

// PlaybackState is the persisted running state of one rundown. It is owned by
// the rundown's playback controller; everything else reads snapshots.
type PlaybackState struct {
	Position Position `json:"position"`
	Elapsed  int      `json:"elapsed"`
	Running  bool     `json:"running"`
}
