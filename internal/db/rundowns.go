package db

import (
	"github.com/rs/zerolog/log"

	_ "github.com/lib/pq"

	"github.com/CuelineHQ/cueline/internal/model"
)

// @ RUNDOWN
func CreateRundown(name string) (model.Rundown, error) {
	var r model.Rundown
	const q = `
    INSERT INTO rundowns (name, created_at, updated_at)
    VALUES ($1, now(), now())
    RETURNING id, name, created_at, updated_at;
    `
	if err := DB.Get(&r, q, name); err != nil {
		log.Error().Err(err).Msg("[db] CreateRundown: failed to insert rundown")
		return model.Rundown{}, err
	}
	return r, nil
}

// GetRundownByID returns the rundown with its folders and items in playback
// order (folder position, then item position).
func GetRundownByID(id int) (model.Rundown, error) {
	var r model.Rundown
	const q = `SELECT id, name, created_at, updated_at FROM rundowns WHERE id = $1;`
	if err := DB.Get(&r, q, id); err != nil {
		log.Error().Err(err).Msg("[db] GetRundownByID: failed to get rundown")
		return model.Rundown{}, err
	}

	folders, err := ListFolders(id)
	if err != nil {
		return model.Rundown{}, err
	}
	r.Folders = folders
	return r, nil
}

func ListRundowns() ([]model.Rundown, error) {
	var out []model.Rundown
	const q = `SELECT id, name, created_at, updated_at FROM rundowns ORDER BY id;`
	if err := DB.Select(&out, q); err != nil {
		log.Error().Err(err).Msg("[db] ListRundowns: failed to select rundowns")
		return nil, err
	}
	return out, nil
}

func UpdateRundown(id int, name *string) error {
	_, err := DB.Exec(`
		UPDATE rundowns
		SET
		name       = COALESCE($2, name),
		updated_at = now()
		WHERE id = $1;`,
		id, name,
	)
	if err != nil {
		log.Error().Err(err).Msg("[db] UpdateRundown: failed to update rundown")
	}
	return err
}

func DeleteRundown(id int) error {
	_, err := DB.Exec(`DELETE FROM rundowns WHERE id = $1;`, id)
	if err != nil {
		log.Error().Err(err).Msg("[db] DeleteRundown: failed to delete rundown")
	}
	return err
}

// @ FOLDER
func CreateFolder(rundownID int, title string) (model.Folder, error) {
	var f model.Folder
	const q = `
	INSERT INTO folders (rundown_id, position, title, created_at)
	VALUES (
	  $1,
	  COALESCE((SELECT MAX(position) FROM folders WHERE rundown_id = $1), 0) + 1,
	  $2,
	  now()
	)
	RETURNING id, rundown_id, position, title, created_at;`
	if err := DB.Get(&f, q, rundownID, title); err != nil {
		log.Error().Err(err).Msg("[db] CreateFolder: failed to insert folder")
		return model.Folder{}, err
	}
	return f, nil
}

func UpdateFolder(folderID int, title *string) error {
	_, err := DB.Exec(`
		UPDATE folders
		SET title = COALESCE($2, title)
		WHERE id = $1;`,
		folderID, title,
	)
	if err != nil {
		log.Error().Err(err).Msg("[db] UpdateFolder: failed to update folder")
	}
	return err
}

func DeleteFolder(folderID int) error {
	_, err := DB.Exec(`DELETE FROM folders WHERE id = $1;`, folderID)
	if err != nil {
		log.Error().Err(err).Msg("[db] DeleteFolder: failed to delete folder")
	}
	return err
}

// ListFolders returns the rundown's folders in position order, each with its
// items in position order.
func ListFolders(rundownID int) ([]model.Folder, error) {
	var folders []model.Folder
	const q = `
    SELECT id, rundown_id, position, title, created_at
    FROM folders
    WHERE rundown_id = $1
    ORDER BY position;`
	if err := DB.Select(&folders, q, rundownID); err != nil {
		log.Error().Err(err).Msg("[db] ListFolders: failed to select folders")
		return nil, err
	}

	for i := range folders {
		items, err := ListItems(folders[i].ID)
		if err != nil {
			log.Error().Err(err).Msgf("[db] ListFolders: failed to load items for folder %d", folders[i].ID)
			return nil, err
		}
		folders[i].Items = items
	}
	return folders, nil
}

func ReorderFolders(rundownID int, folderIDs []int) error {
	return reorderPositions("folders", "rundown_id", rundownID, folderIDs)
}

// @ ITEM
func CreateItem(folderID int, title string, description *string, duration int, color, icon, urgency, reminder *string) (model.Item, error) {
	var it model.Item
	const q = `
	INSERT INTO items
	(folder_id, position, title, description, duration, color, icon, urgency, reminder, created_at)
	VALUES (
	  $1,
	  COALESCE((SELECT MAX(position) FROM items WHERE folder_id = $1), 0) + 1,
	  $2, $3, $4, $5, $6, $7, $8, now()
	)
	RETURNING id, folder_id, position, title, description, duration, color, icon, urgency, reminder, created_at;`
	if err := DB.Get(&it, q, folderID, title, description, duration, color, icon, urgency, reminder); err != nil {
		log.Error().Err(err).Msg("[db] CreateItem: failed to insert item")
		return model.Item{}, err
	}
	return it, nil
}

func UpdateItem(itemID int, title, description *string, duration *int, color, icon, urgency, reminder *string) error {
	_, err := DB.Exec(`
		UPDATE items
		SET
		title       = COALESCE($2, title),
		description = COALESCE($3, description),
		duration    = COALESCE($4, duration),
		color       = COALESCE($5, color),
		icon        = COALESCE($6, icon),
		urgency     = COALESCE($7, urgency),
		reminder    = COALESCE($8, reminder)
		WHERE id = $1;`,
		itemID, title, description, duration, color, icon, urgency, reminder,
	)
	if err != nil {
		log.Error().Err(err).Msg("[db] UpdateItem: failed to update item")
	}
	return err
}

func DeleteItem(itemID int) error {
	_, err := DB.Exec(`DELETE FROM items WHERE id = $1;`, itemID)
	if err != nil {
		log.Error().Err(err).Msg("[db] DeleteItem: failed to delete item")
	}
	return err
}

func ListItems(folderID int) ([]model.Item, error) {
	var list []model.Item
	const q = `
    SELECT id, folder_id, position, title, description, duration, color, icon, urgency, reminder, created_at
    FROM items
    WHERE folder_id = $1
    ORDER BY position;`
	err := DB.Select(&list, q, folderID)
	if err != nil {
		log.Error().Err(err).Msg("[db] ListItems: failed to list items")
	}
	return list, err
}

func ReorderItems(folderID int, itemIDs []int) error {
	return reorderPositions("items", "folder_id", folderID, itemIDs)
}

// reorderPositions rewrites the position column of the given rows inside one
// transaction: first shift everything out of the way, then assign 1..n in the
// requested order.
func reorderPositions(table, parentCol string, parentID int, ids []int) error {
	tx, err := DB.Beginx()
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	count := len(ids)
	if _, err = tx.Exec(`
        UPDATE `+table+`
           SET position = position + $1
         WHERE `+parentCol+` = $2;
    `, count, parentID); err != nil {
		return err
	}

	for idx, id := range ids {
		newPos := idx + 1
		if _, err = tx.Exec(`
            UPDATE `+table+`
               SET position = $1
             WHERE id = $2
               AND `+parentCol+` = $3;
        `, newPos, id, parentID); err != nil {
			return err
		}
	}

	return nil
}
