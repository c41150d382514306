package packets

import (
	"time"

	"github.com/CuelineHQ/cueline/internal/model"
)

type RundownResponse struct {
	ID        int              `json:"id"`
	Name      string           `json:"name"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
	Folders   []FolderResponse `json:"folders"`
}

type FolderResponse struct {
	ID       int            `json:"id"`
	Position int            `json:"position"`
	Title    string         `json:"title"`
	Items    []ItemResponse `json:"items"`
}

type ItemResponse struct {
	ID          int     `json:"id"`
	Position    int     `json:"position"`
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
	Duration    int     `json:"duration"`
	Color       *string `json:"color,omitempty"`
	Icon        *string `json:"icon,omitempty"`
	Urgency     *string `json:"urgency,omitempty"`
	Reminder    *string `json:"reminder,omitempty"`
}

// PlaybackResponse flattens a controller snapshot for the surfaces, adding
// the time remaining in the current item so countdown views don't redo the
// resolver's arithmetic.
type PlaybackResponse struct {
	RundownID int            `json:"rundown_id"`
	Status    model.Status   `json:"status"`
	Position  model.Position `json:"position"`
	Elapsed   int            `json:"elapsed"`
	Running   bool           `json:"running"`
	Current   *ItemResponse  `json:"current,omitempty"`
	Remaining int            `json:"remaining"`
	Note      string         `json:"note,omitempty"`
}
