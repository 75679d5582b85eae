package database

import (
	"time"
)

// ItemQuery filters the published-item listing.
type ItemQuery struct {
	Type         string
	Status       string
	Page         int
	PerPage      int
	ChangedSince *time.Time
}

type ContentRepository interface {
	GetItem(id int64) (*ContentItem, error)
	GetItemsByIDs(ids []int64) ([]ContentItem, error)
	ListItems(q ItemQuery) ([]ContentItem, int, error)
	GetLatestModified() (*time.Time, error)
	GetItemCount() (int, error)
	GetPublishedTypes() ([]string, error)
}
