package models

// Group represents a named collection of sites with a manual display order
type Group struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Order     int    `json:"order"`
	CreatedAt int64  `json:"createdAt"` // millisecond timestamp
	UpdatedAt int64  `json:"updatedAt"`
}

// GroupCreateRequest represents the request payload for group creation
type GroupCreateRequest struct {
	Name string `json:"name"`
}

// GroupUpdateRequest represents the request payload for group update
type GroupUpdateRequest struct {
	Name string `json:"name"`
}

// GroupOrder is a single {id, order} pair of a bulk reorder
type GroupOrder struct {
	ID    string `json:"id"`
	Order int    `json:"order"`
}

// GroupReorderRequest represents the request payload for bulk group reorder
type GroupReorderRequest struct {
	GroupOrders []GroupOrder `json:"groupOrders"`
}
