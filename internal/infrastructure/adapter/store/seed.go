package store

import (
	"fmt"

	"github.com/amirhossein-jamali/marketplace/internal/domain/entity"
	coreport "github.com/amirhossein-jamali/marketplace/internal/domain/port/core"
)

// Seed describes the contents written to a family the first time it is accessed
type Seed struct {
	AdminName         string
	AdminPasswordHash string
	AdminBalance      int64 // cents
	Items             []entity.ItemDraft
}

// DefaultSeedItems is the starter catalog, listed by the seed admin
func DefaultSeedItems() []entity.ItemDraft {
	return []entity.ItemDraft{{
		Name:        "Fidget Toy",
		Price:       2500,
		Description: "A fun stress-relieving toy",
		Stock:       100,
	}}
}

func (s Seed) users(timeProvider coreport.TimeProvider) (map[string]*entity.User, error) {
	users := make(map[string]*entity.User)
	if s.AdminName == "" {
		return users, nil
	}

	admin, err := entity.NewUser(s.AdminName, s.AdminPasswordHash, s.AdminBalance, entity.Admin(entity.MaxAdminLevel), timeProvider)
	if err != nil {
		return nil, fmt.Errorf("seed admin: %w", err)
	}
	users[admin.Username] = admin
	return users, nil
}

func (s Seed) items(timeProvider coreport.TimeProvider) (map[uint64]*entity.Item, uint64, error) {
	items := make(map[uint64]*entity.Item, len(s.Items))
	var lastID uint64
	for _, draft := range s.Items {
		lastID++
		it, err := entity.NewItem(lastID, draft, s.AdminName, entity.DefaultImage, timeProvider)
		if err != nil {
			return nil, 0, fmt.Errorf("seed item %q: %w", draft.Name, err)
		}
		items[it.ID] = it
	}
	return items, lastID, nil
}
