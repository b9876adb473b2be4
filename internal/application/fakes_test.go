package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/viralforge/campaign-bot/internal/adapters/memory"
	"github.com/viralforge/campaign-bot/internal/domain"
	"github.com/viralforge/campaign-bot/internal/ports"
)

type fakePlatform struct {
	mu       sync.Mutex
	bio      string
	bioErr   error
	bioDelay time.Duration
	views    map[string]int64
}

func (f *fakePlatform) FetchBio(ctx context.Context, _ string) (string, error) {
	if f.bioDelay > 0 {
		time.Sleep(f.bioDelay)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.bio, f.bioErr
}

func (f *fakePlatform) FetchViewCount(_ context.Context, videoURL string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.views[videoURL]
	if !ok {
		return 0, errors.New("video not found")
	}
	return v, nil
}

func (f *fakePlatform) setViews(videoURL string, views int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.views[videoURL] = views
}

type post struct {
	channelID string
	content   string
}

type fakeCommunity struct {
	mu        sync.Mutex
	roles     map[string]string
	channels  map[string]string
	grantErr  error
	createErr error
	purgeErr  map[string]error
	postErr   map[string]error
	onPurge   func()

	granted []string
	grants  [][]ports.AccessGrant
	purges  []string
	posts   []post
}

func newFakeCommunity() *fakeCommunity {
	return &fakeCommunity{
		roles:    map[string]string{"server team": "role-team", "admin": "role-admin", "verified": "role-verified"},
		channels: map[string]string{},
		purgeErr: map[string]error{},
		postErr:  map[string]error{},
	}
}

func (f *fakeCommunity) GrantRole(_ context.Context, _, userID, roleName string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.grantErr != nil {
		return f.grantErr
	}
	if _, ok := f.roles[strings.ToLower(roleName)]; !ok {
		return fmt.Errorf("%w: role %s", domain.ErrNotFound, roleName)
	}
	f.granted = append(f.granted, userID+":"+roleName)
	return nil
}

func (f *fakeCommunity) LookupRole(_ context.Context, _, roleName string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id, ok := f.roles[strings.ToLower(roleName)]
	if !ok {
		return "", fmt.Errorf("%w: role %s", domain.ErrNotFound, roleName)
	}
	return id, nil
}

func (f *fakeCommunity) FindChannelByName(_ context.Context, _, name string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id, ok := f.channels[name]
	return id, ok, nil
}

func (f *fakeCommunity) CreateRestrictedChannel(_ context.Context, _, name string, grants []ports.AccessGrant) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return "", f.createErr
	}
	id := "chan-" + name
	f.channels[name] = id
	f.grants = append(f.grants, grants)
	return id, nil
}

func (f *fakeCommunity) PurgeChannel(_ context.Context, channelID string) error {
	if f.onPurge != nil {
		f.onPurge()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.purges = append(f.purges, channelID)
	return f.purgeErr[channelID]
}

func (f *fakeCommunity) PostMessage(_ context.Context, channelID, content string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.postErr[channelID]; err != nil {
		return err
	}
	f.posts = append(f.posts, post{channelID: channelID, content: content})
	return nil
}

func (f *fakeCommunity) postsTo(channelID string) []post {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []post{}
	for _, p := range f.posts {
		if p.channelID == channelID {
			out = append(out, p)
		}
	}
	return out
}

func (f *fakeCommunity) purgeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.purges)
}

type fakeLimiter struct {
	mu     sync.Mutex
	counts map[string]int
	err    error
}

func (f *fakeLimiter) Allow(_ context.Context, key string, limit int, _ time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return false, f.err
	}
	f.counts[key]++
	return f.counts[key] <= limit, nil
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type harness struct {
	svc       *Service
	repos     *memory.Repositories
	tiktok    *fakePlatform
	youtube   *fakePlatform
	community *fakeCommunity
	limiter   *fakeLimiter
	clock     *testClock
}

func newHarness(cfg Config) *harness {
	h := &harness{
		repos:     memory.NewRepositories(),
		tiktok:    &fakePlatform{views: map[string]int64{}},
		youtube:   &fakePlatform{views: map[string]int64{}},
		community: newFakeCommunity(),
		limiter:   &fakeLimiter{counts: map[string]int{}},
		clock:     &testClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)},
	}
	if cfg.CommandRateLimit == 0 {
		cfg.CommandRateLimit = 100
	}
	h.svc = NewService(Dependencies{
		Config:        cfg,
		Verifications: h.repos.Verifications,
		Submissions:   h.repos.Submissions,
		Tickets:       h.repos.Tickets,
		Outbox:        h.repos.Outbox,
		Platforms: map[domain.Platform]ports.PlatformClient{
			domain.PlatformTikTok:  h.tiktok,
			domain.PlatformYouTube: h.youtube,
		},
		Community:   h.community,
		RateLimiter: h.limiter,
	})
	h.svc.nowFn = h.clock.Now
	return h
}

func actorIn(userID, guildID string) Actor {
	return Actor{UserID: userID, Username: "user" + userID, GuildID: guildID, GuildName: "Guild " + guildID, RequestID: "req-" + userID}
}

func rate(s string) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: decimal.RequireFromString(s), Valid: true}
}
