package analytics

import (
	"context"
	"sort"
	"time"

	"luna-guard/internal/storage"
)

type Service struct {
	store *storage.Store
}

func New(store *storage.Store) *Service {
	return &Service{store: store}
}

type Report struct {
	Since    time.Time
	Total    int
	Users    int
	ByType   map[string]int
	ByAction map[string]int
	Top      TopOffender
}

type TopOffender struct {
	UserID string
	Count  int
}

// Report summarizes automod violations for a guild since the given time.
func (s *Service) Report(ctx context.Context, guildID string, since time.Time) (Report, error) {
	entries, err := s.store.ListViolationsSince(ctx, guildID, since)
	if err != nil {
		return Report{}, err
	}
	return Summarize(entries, since), nil
}

func Summarize(entries []storage.ViolationEntry, since time.Time) Report {
	report := Report{
		Since:    since,
		ByType:   make(map[string]int),
		ByAction: make(map[string]int),
	}
	perUser := make(map[string]int)
	for _, entry := range entries {
		report.Total++
		report.ByType[entry.Type]++
		report.ByAction[entry.Action]++
		perUser[entry.UserID]++
	}
	report.Users = len(perUser)

	users := make([]string, 0, len(perUser))
	for user := range perUser {
		users = append(users, user)
	}
	sort.Slice(users, func(i, j int) bool {
		if perUser[users[i]] != perUser[users[j]] {
			return perUser[users[i]] > perUser[users[j]]
		}
		return users[i] < users[j]
	})
	if len(users) > 0 {
		report.Top = TopOffender{UserID: users[0], Count: perUser[users[0]]}
	}
	return report
}

// Keys returns map keys ordered by count, highest first.
func Keys(counts map[string]int) []string {
	keys := make([]string, 0, len(counts))
	for key := range counts {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})
	return keys
}
