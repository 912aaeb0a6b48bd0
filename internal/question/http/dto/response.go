package dto

// DeletedResponse reports how many questions were deleted.
type DeletedResponse struct {
	Count int64 `json:"count"`
}
