// exposes a Store interface that is passed to API handlers so they can be
// tested against an in-memory implementation
package db

import (
	"github.com/jmoiron/sqlx"

	"github.com/CuelineHQ/cueline/internal/model"
)

type Store interface {
	// rundown functions
	CreateRundown(name string) (model.Rundown, error)
	GetRundownByID(id int) (model.Rundown, error)
	ListRundowns() ([]model.Rundown, error)
	UpdateRundown(id int, name *string) error
	DeleteRundown(id int) error

	// folder functions
	CreateFolder(rundownID int, title string) (model.Folder, error)
	UpdateFolder(folderID int, title *string) error
	DeleteFolder(folderID int) error
	ReorderFolders(rundownID int, folderIDs []int) error

	// item functions
	CreateItem(folderID int, title string, description *string, duration int, color, icon, urgency, reminder *string) (model.Item, error)
	UpdateItem(itemID int, title, description *string, duration *int, color, icon, urgency, reminder *string) error
	DeleteItem(itemID int) error
	ReorderItems(folderID int, itemIDs []int) error
}

type pgStore struct {
	db *sqlx.DB
}

// compile-time check that pgStore implements Store
var _ Store = (*pgStore)(nil)

func NewStore() Store {
	return &pgStore{db: DB}
}

func (s *pgStore) CreateRundown(name string) (model.Rundown, error) { return CreateRundown(name) }
func (s *pgStore) GetRundownByID(id int) (model.Rundown, error)     { return GetRundownByID(id) }
func (s *pgStore) ListRundowns() ([]model.Rundown, error)           { return ListRundowns() }
func (s *pgStore) UpdateRundown(id int, name *string) error         { return UpdateRundown(id, name) }
func (s *pgStore) DeleteRundown(id int) error                       { return DeleteRundown(id) }

func (s *pgStore) CreateFolder(rundownID int, title string) (model.Folder, error) {
	return CreateFolder(rundownID, title)
}
func (s *pgStore) UpdateFolder(folderID int, title *string) error { return UpdateFolder(folderID, title) }
func (s *pgStore) DeleteFolder(folderID int) error                { return DeleteFolder(folderID) }
func (s *pgStore) ReorderFolders(rundownID int, folderIDs []int) error {
	return ReorderFolders(rundownID, folderIDs)
}

func (s *pgStore) CreateItem(folderID int, title string, description *string, duration int, color, icon, urgency, reminder *string) (model.Item, error) {
	return CreateItem(folderID, title, description, duration, color, icon, urgency, reminder)
}
func (s *pgStore) UpdateItem(itemID int, title, description *string, duration *int, color, icon, urgency, reminder *string) error {
	return UpdateItem(itemID, title, description, duration, color, icon, urgency, reminder)
}
func (s *pgStore) DeleteItem(itemID int) error { return DeleteItem(itemID) }
func (s *pgStore) ReorderItems(folderID int, itemIDs []int) error {
	return ReorderItems(folderID, itemIDs)
}
