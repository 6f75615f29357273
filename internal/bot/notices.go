package bot

import (
	"sync"
	"time"

	"luna-guard/internal/escalation"
	"luna-guard/internal/metrics"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/time/rate"
)

// noticeLimiter caps moderation notices per channel so a raid does not turn
// into a wall of embeds. Enforcement itself is never limited.
type noticeLimiter struct {
	mu        sync.Mutex
	perMinute int
	limiters  *expirable.LRU[string, *rate.Limiter]
}

func newNoticeLimiter(perMinute int) *noticeLimiter {
	return &noticeLimiter{
		perMinute: perMinute,
		limiters:  expirable.NewLRU[string, *rate.Limiter](5000, nil, 10*time.Minute),
	}
}

func (n *noticeLimiter) Allow(channelID string) bool {
	if n.perMinute <= 0 {
		return true
	}
	n.mu.Lock()
	limiter, ok := n.limiters.Get(channelID)
	if !ok {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(n.perMinute)), n.perMinute)
		n.limiters.Add(channelID, limiter)
	}
	n.mu.Unlock()
	return limiter.Allow()
}

// noticeAllowed applies notice_enabled and the channel budget to warnings.
// Any tier above a warning always gets its notice.
func (b *Bot) noticeAllowed(channelID string, tier escalation.Tier) bool {
	if tier.Action != escalation.ActionWarn {
		return true
	}
	if !b.cfg.Notifications.NoticeEnabled {
		return false
	}
	if !b.notices.Allow(channelID) {
		metrics.NoticesDropped.Inc()
		return false
	}
	return true
}
