package packets

type CreateRundownRequest struct {
	Name string `json:"name" binding:"required"`
}

type UpdateRundownRequest struct {
	Name *string `json:"name"`
}

type CreateFolderRequest struct {
	Title string `json:"title" binding:"required"`
}

type UpdateFolderRequest struct {
	Title *string `json:"title"`
}

// Durations arrive as whole seconds. gte=0 enforces the reject-don't-clamp
// policy for negative values at the boundary.
type CreateItemRequest struct {
	Title       string  `json:"title" binding:"required"`
	Description *string `json:"description"`
	Duration    int     `json:"duration" binding:"gte=0"`
	Color       *string `json:"color"`
	Icon        *string `json:"icon"`
	Urgency     *string `json:"urgency"`
	Reminder    *string `json:"reminder"`
}

type UpdateItemRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Duration    *int    `json:"duration" binding:"omitempty,gte=0"`
	Color       *string `json:"color"`
	Icon        *string `json:"icon"`
	Urgency     *string `json:"urgency"`
	Reminder    *string `json:"reminder"`
}

type ReorderRequest struct {
	IDs []int `json:"ids" binding:"required"`
}

type JumpRequest struct {
	Folder int `json:"folder" binding:"gte=0"`
	Item   int `json:"item" binding:"gte=0"`
}
