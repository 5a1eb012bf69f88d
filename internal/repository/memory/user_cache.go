package memory

import (
	"time"

	"wellmate-be/internal/entity"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// UserCache keeps recently loaded users to spare the database on every
// authenticated request.
type UserCache struct {
	cache *cache.Cache
}

func NewUserCache(ttl time.Duration) *UserCache {
	// Purge expired items every two TTLs
	return &UserCache{
		cache: cache.New(ttl, 2*ttl),
	}
}

func (c *UserCache) Save(user *entity.User) {
	if user == nil {
		return
	}
	copied := *user
	c.cache.Set(user.Id.String(), &copied, cache.DefaultExpiration)
}

func (c *UserCache) Get(id uuid.UUID) (*entity.User, bool) {
	if x, found := c.cache.Get(id.String()); found {
		copied := *x.(*entity.User)
		return &copied, true
	}
	return nil, false
}

func (c *UserCache) Delete(id uuid.UUID) {
	c.cache.Delete(id.String())
}

func (c *UserCache) Len() int {
	return c.cache.ItemCount()
}
