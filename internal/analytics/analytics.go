package analytics

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"bedrock-chatter/internal/storage"
)

// DailyStats summarizes one day of the interaction log.
type DailyStats struct {
	Date          string               `json:"date"`
	TotalMessages int                  `json:"total_messages"`
	UniqueUsers   int                  `json:"unique_users"`
	Failures      int                  `json:"failures"`
	ByKind        map[storage.Kind]int `json:"by_kind"`
	UserStats     map[string]UserStats `json:"user_stats"`
}

type UserStats struct {
	UserID    string `json:"user_id"`
	Messages  int    `json:"messages"`
	ChatTurns int    `json:"chat_turns"`
	Failures  int    `json:"failures"`
}

// AnalyzeDailyLogs counts the events whose timestamp falls on targetDate's
// calendar day in targetDate's location.
func AnalyzeDailyLogs(events []storage.Event, targetDate time.Time) *DailyStats {
	startOfDay := time.Date(targetDate.Year(), targetDate.Month(), targetDate.Day(), 0, 0, 0, 0, targetDate.Location())
	endOfDay := startOfDay.AddDate(0, 0, 1)

	stats := &DailyStats{
		Date:      startOfDay.Format("2006-01-02"),
		ByKind:    make(map[storage.Kind]int),
		UserStats: make(map[string]UserStats),
	}

	for _, event := range events {
		if event.Timestamp.Before(startOfDay) || !event.Timestamp.Before(endOfDay) {
			continue
		}
		if event.UserMessage == "" {
			continue
		}

		stats.TotalMessages++
		stats.ByKind[event.Kind]++

		us, ok := stats.UserStats[event.UserID]
		if !ok {
			us = UserStats{UserID: event.UserID}
		}
		us.Messages++
		if event.Kind == storage.KindChat {
			us.ChatTurns++
		}
		if event.Failed {
			stats.Failures++
			us.Failures++
		}
		stats.UserStats[event.UserID] = us
	}

	stats.UniqueUsers = len(stats.UserStats)
	return stats
}

// Summary renders the stats as a plain-text report.
func (ds *DailyStats) Summary() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Usage report for %s\n\n", ds.Date)
	fmt.Fprintf(&sb, "Messages: %d\nUnique users: %d\nFailures: %d\n", ds.TotalMessages, ds.UniqueUsers, ds.Failures)

	if len(ds.ByKind) > 0 {
		kinds := make([]string, 0, len(ds.ByKind))
		for k := range ds.ByKind {
			kinds = append(kinds, string(k))
		}
		sort.Strings(kinds)
		sb.WriteString("\nBy kind:\n")
		for _, k := range kinds {
			fmt.Fprintf(&sb, "- %s: %d\n", k, ds.ByKind[storage.Kind(k)])
		}
	}

	if len(ds.UserStats) > 0 {
		users := make([]UserStats, 0, len(ds.UserStats))
		for _, us := range ds.UserStats {
			users = append(users, us)
		}
		sort.Slice(users, func(i, j int) bool {
			if users[i].Messages != users[j].Messages {
				return users[i].Messages > users[j].Messages
			}
			return users[i].UserID < users[j].UserID
		})
		fmt.Fprintf(&sb, "\nUsers (%d):\n", len(users))
		for _, us := range users {
			fmt.Fprintf(&sb, "- %s: %d messages, %d chat turns", us.UserID, us.Messages, us.ChatTurns)
			if us.Failures > 0 {
				fmt.Fprintf(&sb, ", %d failed", us.Failures)
			}
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

func (ds *DailyStats) ToJSON() (string, error) {
	data, err := json.MarshalIndent(ds, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
