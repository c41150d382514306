package model

import "time"

type Rundown struct {
	ID        int       `db:"id"         json:"id"`
	Name      string    `db:"name"       json:"name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
	Folders   []Folder  `db:"-"          json:"folders,omitempty"`
}

type Folder struct {
	ID        int       `db:"id"         json:"id"`
	RundownID int       `db:"rundown_id" json:"rundown_id"`
	Position  int       `db:"position"   json:"position"`
	Title     string    `db:"title"      json:"title"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	Items     []Item    `db:"-"          json:"items,omitempty"`
}

// Item is one timed segment of a rundown. Duration is whole seconds and is
// never negative; zero means the item is skipped during playback. The
// presentation fields (color, icon, urgency, reminder) are opaque to the
// playback engine and pass through to the surfaces unchanged.
type Item struct {
	ID          int       `db:"id"          json:"id"`
	FolderID    int       `db:"folder_id"   json:"folder_id"`
	Position    int       `db:"position"    json:"position"`
	Title       string    `db:"title"       json:"title"`
	Description *string   `db:"description" json:"description,omitempty"`
	Duration    int       `db:"duration"    json:"duration"`
	Color       *string   `db:"color"       json:"color,omitempty"`
	Icon        *string   `db:"icon"        json:"icon,omitempty"`
	Urgency     *string   `db:"urgency"     json:"urgency,omitempty"`
	Reminder    *string   `db:"reminder"    json:"reminder,omitempty"`
	CreatedAt   time.Time `db:"created_at"  json:"created_at"`
}
