package repository

import (
	"time"

	"github.com/google/uuid"

	"github.com/NamanBalaji/ravenmagnet/pkg/magnet"
)

// Link is a magnet record published under a unique asset name.
type Link struct {
	ID       uuid.UUID     `json:"id"`
	Asset    string        `json:"asset"`
	Record   magnet.Record `json:"record"`
	IssuedAt time.Time     `json:"issuedAt"`
}

type Repository interface {
	Save(link *Link) error
	Find(asset string) (*Link, error)
	FindByParent(parent string) ([]*Link, error)
	FindAll() ([]*Link, error)
	Delete(asset string) error
	Close() error
}
