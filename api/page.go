package api

import "github.com/dfryer1193/pagebot/pages/domain"

type ElementUpdate struct {
	Content string `json:"content"`
}

type RollbackRequest struct {
	Revision string `json:"revision" binding:"required"`
}

type PageList struct {
	Pages      []domain.PageID   `json:"pages"`
	Categories []domain.Category `json:"categories"`
}

// Error is the body of every non-2xx response.
type Error struct {
	Kind  string `json:"kind"`
	Error string `json:"error"`
}
