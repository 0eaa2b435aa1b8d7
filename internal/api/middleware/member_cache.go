package middleware

import (
	"context"
	"sync"
	"time"

	"complyhr/internal/platform/models"
)

type cachedMember struct {
	member   models.Member
	cachedAt time.Time
}

// MemberCache keeps recent membership lookups in memory. Only hits are cached,
// so a user who onboards is recognised on their next request.
type MemberCache struct {
	next  MemberLookup
	store sync.Map // map[user_id]*cachedMember
	ttl   time.Duration
	now   func() time.Time
}

func NewMemberCache(next MemberLookup, ttl time.Duration) *MemberCache {
	return &MemberCache{next: next, ttl: ttl, now: time.Now}
}

func (c *MemberCache) GetByUserID(ctx context.Context, userID string) (*models.Member, error) {
	if val, ok := c.store.Load(userID); ok {
		entry := val.(*cachedMember)
		if c.now().Sub(entry.cachedAt) <= c.ttl {
			m := entry.member
			return &m, nil
		}
		c.store.Delete(userID)
	}

	m, err := c.next.GetByUserID(ctx, userID)
	if err != nil || m == nil {
		return m, err
	}
	c.store.Store(userID, &cachedMember{member: *m, cachedAt: c.now()})
	return m, nil
}
