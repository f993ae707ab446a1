package reveal

import (
	"context"
	"time"
)

// DayStats summarises grants issued on one UTC day.
type DayStats struct {
	Day               string `json:"day"`
	Issued            int    `json:"issued"`
	Redeemed          int    `json:"redeemed"`
	ExpiredUnredeemed int    `json:"expired_unredeemed"`
	Pending           int    `json:"pending"`
}

// DailyReport groups grants created since the given time by UTC day, oldest first.
func (r *Repository) DailyReport(ctx context.Context, since, now time.Time) ([]DayStats, error) {
	rows, err := r.ListCreatedSince(ctx, since)
	if err != nil {
		return nil, err
	}

	var out []DayStats
	index := make(map[string]int)
	for _, rv := range rows {
		day := rv.CreatedAt.UTC().Format(time.DateOnly)
		i, ok := index[day]
		if !ok {
			out = append(out, DayStats{Day: day})
			i = len(out) - 1
			index[day] = i
		}
		st := &out[i]
		st.Issued++
		switch {
		case rv.RedeemedAt != nil:
			st.Redeemed++
		case !now.Before(rv.ExpiresAt):
			st.ExpiredUnredeemed++
		default:
			st.Pending++
		}
	}
	return out, nil
}
