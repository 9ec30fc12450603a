package analytics

import (
	"time"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// DailyPoint is one day of the summary series
type DailyPoint struct {
	Day    time.Time
	Views  int64
	Clicks int64
}

// Totals is the sum over the requested window
type Totals struct {
	Views  int64
	Clicks int64
	CTR    decimal.Decimal
}

// WeekOverWeek compares the last 7 days with the 7 days before
type WeekOverWeek struct {
	CurrentViews     int64
	PreviousViews    int64
	CurrentClicks    int64
	PreviousClicks   int64
	ViewsChange      decimal.Decimal
	ClicksChange     decimal.Decimal
	CTRChange        decimal.Decimal
	EngagementChange decimal.Decimal
}

// Summary is the windowed rollup of a tenant's daily counters
type Summary struct {
	WindowDays   int
	Daily        []DailyPoint
	Totals       Totals
	WeekOverWeek WeekOverWeek
}

// LookbackDays returns how many days of history a summary reads
func LookbackDays(windowDays int) int {
	return max(windowDays, MinLookbackDays)
}

// ValidateWindow checks windowDays is within the supported range
func ValidateWindow(windowDays int) error {
	if windowDays < MinWindowDays || windowDays > MaxWindowDays {
		return ErrInvalidWindow
	}
	return nil
}

// CTR returns clicks/views*100 rounded to 2 places, or 0 without views
func CTR(views, clicks int64) decimal.Decimal {
	return clickRate(views, clicks).Round(2)
}

func clickRate(views, clicks int64) decimal.Decimal {
	if views == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(clicks).Mul(hundred).Div(decimal.NewFromInt(views))
}

// Change returns the percentage change from prev to cur rounded to 2 places.
// With prev == 0 the result is 100 when cur > 0 and 0 otherwise.
func Change(cur, prev decimal.Decimal) decimal.Decimal {
	if prev.IsZero() {
		if cur.GreaterThan(decimal.Zero) {
			return hundred
		}
		return decimal.Zero
	}
	return cur.Sub(prev).Div(prev).Mul(hundred).Round(2)
}

// Summarize rolls rows up for the windowDays ending on now's UTC day.
// rows may span more days than the window; only the window counts toward totals.
func Summarize(rows []DailyCounter, windowDays int, now time.Time) Summary {
	today := DayOf(now)
	byDay := make(map[time.Time]DailyCounter, len(rows))
	for _, r := range rows {
		day := DayOf(r.Day)
		acc := byDay[day]
		acc.Views += r.Views
		acc.Clicks += r.Clicks
		byDay[day] = acc
	}

	windowStart := today.AddDate(0, 0, -(windowDays - 1))
	series := make([]DailyPoint, 0, windowDays)
	var totals Totals
	for day := windowStart; !day.After(today); day = day.AddDate(0, 0, 1) {
		c := byDay[day]
		series = append(series, DailyPoint{Day: day, Views: c.Views, Clicks: c.Clicks})
		totals.Views += c.Views
		totals.Clicks += c.Clicks
	}
	totals.CTR = CTR(totals.Views, totals.Clicks)

	currentStart := today.AddDate(0, 0, -(ComparisonDays - 1))
	previousStart := currentStart.AddDate(0, 0, -ComparisonDays)
	var wow WeekOverWeek
	for day, c := range byDay {
		switch {
		case !day.Before(currentStart) && !day.After(today):
			wow.CurrentViews += c.Views
			wow.CurrentClicks += c.Clicks
		case !day.Before(previousStart) && day.Before(currentStart):
			wow.PreviousViews += c.Views
			wow.PreviousClicks += c.Clicks
		}
	}

	wow.ViewsChange = Change(decimal.NewFromInt(wow.CurrentViews), decimal.NewFromInt(wow.PreviousViews))
	wow.ClicksChange = Change(decimal.NewFromInt(wow.CurrentClicks), decimal.NewFromInt(wow.PreviousClicks))
	// unrounded rates; Change rounds once
	wow.CTRChange = Change(clickRate(wow.CurrentViews, wow.CurrentClicks), clickRate(wow.PreviousViews, wow.PreviousClicks))
	wow.EngagementChange = Change(
		decimal.NewFromInt(wow.CurrentViews+wow.CurrentClicks),
		decimal.NewFromInt(wow.PreviousViews+wow.PreviousClicks),
	)

	return Summary{
		WindowDays:   windowDays,
		Daily:        series,
		Totals:       totals,
		WeekOverWeek: wow,
	}
}
