package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	UserKeyPrefix     = "user:%d"
	CampaignKeyPrefix = "campaign:%d"
	ProfileKeyPrefix  = "profile:%s"
)

const (
	UserTTL     = 5 * time.Minute
	CampaignTTL = 10 * time.Minute
	ProfileTTL  = 2 * time.Minute
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

// CampaignKey keys on the public cid, not the internal id.
func CampaignKey(cid uint) string {
	return fmt.Sprintf(CampaignKeyPrefix, cid)
}

func ProfileKey(username string) string {
	return fmt.Sprintf(ProfileKeyPrefix, username)
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
}

func InvalidateCampaign(ctx context.Context, cid uint) {
	Invalidate(ctx, CampaignKey(cid))
}

func InvalidateProfile(ctx context.Context, username string) {
	Invalidate(ctx, ProfileKey(username))
}
