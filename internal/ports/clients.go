package ports

import "context"

// PlatformClient fetches public profile and video data from one video platform.
type PlatformClient interface {
	FetchBio(ctx context.Context, username string) (string, error)
	FetchViewCount(ctx context.Context, videoURL string) (int64, error)
}

type AccessGrant struct {
	UserID string
	RoleID string
}

// Community is the slice of the chat platform the engine drives.
// Errors wrap domain.ErrPermission or domain.ErrNotFound when applicable.
type Community interface {
	GrantRole(ctx context.Context, guildID, userID, roleName string) error
	LookupRole(ctx context.Context, guildID, roleName string) (string, error)
	FindChannelByName(ctx context.Context, guildID, name string) (string, bool, error)
	CreateRestrictedChannel(ctx context.Context, guildID, name string, grants []AccessGrant) (string, error)
	PurgeChannel(ctx context.Context, channelID string) error
	PostMessage(ctx context.Context, channelID, content string) error
}
