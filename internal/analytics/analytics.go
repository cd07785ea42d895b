package analytics

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"aiden/internal/session"
	"aiden/internal/storage"
)

// CategoryCount is one line of a per-category breakdown.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// DailyStats summarizes the stored conversation turns of one day.
type DailyStats struct {
	Date            string          `json:"date"`
	TotalTurns      int             `json:"total_turns"`
	Sessions        int             `json:"sessions"`
	TurnsByCategory []CategoryCount `json:"turns_by_category"`
	TurnsPerSession map[string]int  `json:"turns_per_session"`
}

// Breakdown counts session interactions per category, most frequent first.
// Interactions without a category are counted as "unclassified".
func Breakdown(interactions []session.Interaction) []CategoryCount {
	counts := make(map[string]int)
	for _, in := range interactions {
		c := in.Category
		if c == "" {
			c = "unclassified"
		}
		counts[c]++
	}
	return sortCounts(counts)
}

// AnalyzeDaily looks at conversation records that fall on targetDate.
// Records without a user input are skipped.
func AnalyzeDaily(records []storage.Record, targetDate time.Time) *DailyStats {
	startOfDay := time.Date(targetDate.Year(), targetDate.Month(), targetDate.Day(), 0, 0, 0, 0, targetDate.Location())
	endOfDay := startOfDay.Add(24 * time.Hour)

	stats := &DailyStats{
		Date:            startOfDay.Format("2006-01-02"),
		TurnsPerSession: make(map[string]int),
	}
	byCategory := make(map[string]int)
	for _, r := range records {
		if r.Timestamp.Before(startOfDay) || !r.Timestamp.Before(endOfDay) {
			continue
		}
		if r.UserInput == "" {
			continue
		}
		stats.TotalTurns++
		stats.TurnsPerSession[r.SessionID]++
		c := r.Source
		if c == "" {
			c = "unclassified"
		}
		byCategory[c]++
	}
	stats.Sessions = len(stats.TurnsPerSession)
	stats.TurnsByCategory = sortCounts(byCategory)
	return stats
}

// FormatBreakdown renders counts as indented bullet lines.
func FormatBreakdown(counts []CategoryCount) string {
	var b strings.Builder
	for _, c := range counts {
		fmt.Fprintf(&b, "   - %s: %d\n", c.Category, c.Count)
	}
	return b.String()
}

func (ds *DailyStats) GenerateReportSummary() string {
	summary := fmt.Sprintf("AIDEN usage for %s:\n- Turns: %d\n- Sessions: %d\n", ds.Date, ds.TotalTurns, ds.Sessions)
	if len(ds.TurnsByCategory) > 0 {
		summary += "By category:\n" + FormatBreakdown(ds.TurnsByCategory)
	}
	return summary
}

func (ds *DailyStats) ToJSON() (string, error) {
	data, err := json.MarshalIndent(ds, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func sortCounts(m map[string]int) []CategoryCount {
	out := make([]CategoryCount, 0, len(m))
	for k, v := range m {
		out = append(out, CategoryCount{Category: k, Count: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Category < out[j].Category
	})
	return out
}
