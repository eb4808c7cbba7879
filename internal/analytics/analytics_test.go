package analytics

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bedrock-chatter/internal/storage"
)

func sampleEvents(day time.Time) []storage.Event {
	return []storage.Event{
		{Timestamp: day.Add(2 * time.Hour), UserID: "u1", Kind: storage.KindSystemPrompt, UserMessage: "You are terse."},
		{Timestamp: day.Add(3 * time.Hour), UserID: "u1", Kind: storage.KindChat, UserMessage: "2+2?", AssistantResponse: "4"},
		{Timestamp: day.Add(4 * time.Hour), UserID: "u1", Kind: storage.KindHistory, UserMessage: "history"},
		{Timestamp: day.Add(5 * time.Hour), UserID: "u2", Kind: storage.KindChat, UserMessage: "hi", Failed: true},
		// next day
		{Timestamp: day.AddDate(0, 0, 1), UserID: "u3", Kind: storage.KindChat, UserMessage: "tomorrow"},
		// no user message
		{Timestamp: day.Add(6 * time.Hour), UserID: "u1", Kind: storage.KindChat},
	}
}

func TestAnalyzeDailyLogs(t *testing.T) {
	day := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	stats := AnalyzeDailyLogs(sampleEvents(day), day.Add(13*time.Hour))

	assert.Equal(t, "2024-01-15", stats.Date)
	assert.Equal(t, 4, stats.TotalMessages)
	assert.Equal(t, 2, stats.UniqueUsers)
	assert.Equal(t, 1, stats.Failures)
	assert.Equal(t, 2, stats.ByKind[storage.KindChat])
	assert.Equal(t, 1, stats.ByKind[storage.KindHistory])

	u1 := stats.UserStats["u1"]
	assert.Equal(t, 3, u1.Messages)
	assert.Equal(t, 1, u1.ChatTurns)
	assert.Equal(t, 1, stats.UserStats["u2"].Failures)
	_, ok := stats.UserStats["u3"]
	assert.False(t, ok)
}

func TestAnalyzeDailyLogs_Empty(t *testing.T) {
	stats := AnalyzeDailyLogs(nil, time.Date(2024, 1, 15, 8, 0, 0, 0, time.UTC))
	assert.Equal(t, "2024-01-15", stats.Date)
	assert.Zero(t, stats.TotalMessages)
	assert.Zero(t, stats.UniqueUsers)
}

func TestSummary(t *testing.T) {
	day := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	summary := AnalyzeDailyLogs(sampleEvents(day), day).Summary()

	for _, want := range []string{"2024-01-15", "Messages: 4", "Unique users: 2", "- chat: 2", "- u1: 3 messages, 1 chat turns", "- u2: 1 messages, 1 chat turns, 1 failed"} {
		assert.Contains(t, summary, want)
	}
}

func TestToJSON(t *testing.T) {
	day := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	out, err := AnalyzeDailyLogs(sampleEvents(day), day).ToJSON()
	require.NoError(t, err)

	var back DailyStats
	require.NoError(t, json.Unmarshal([]byte(out), &back))
	assert.Equal(t, 4, back.TotalMessages)
	assert.Equal(t, 3, back.UserStats["u1"].Messages)
}
