// Package analytics produces the mock traffic report served to the
// portfolio's dashboard. No visitor data is collected; every figure is a
// random draw around fixed baselines, scaled by the requested range.
package analytics

import (
	"errors"
	"fmt"
	"math"
)

var ErrInvalidRange = errors.New("invalid range")

// DefaultRange is used when a request names no range.
const DefaultRange = "7d"

// Ranges are the ranges the dashboard offers.
var Ranges = []string{"7d", "30d", "90d"}

// Rand is the random source the generator draws from.
type Rand interface {
	Float64() float64
}

type Report struct {
	PageViews          int          `json:"pageViews"`
	UniqueVisitors     int          `json:"uniqueVisitors"`
	ResumeDownloads    int          `json:"resumeDownloads"`
	AvgSessionDuration int          `json:"avgSessionDuration"`
	BounceRate         int          `json:"bounceRate"`
	TopPages           []PageStat   `json:"topPages"`
	TrafficSources     []SourceStat `json:"trafficSources"`
	DeviceTypes        []DeviceStat `json:"deviceTypes"`
	WeeklyData         []DayStat    `json:"weeklyData"`
	MonthlyData        []MonthStat  `json:"monthlyData"`
}

type PageStat struct {
	Page       string `json:"page"`
	Views      int    `json:"views"`
	Percentage int    `json:"percentage"`
}

type SourceStat struct {
	Source     string `json:"source"`
	Visitors   int    `json:"visitors"`
	Percentage int    `json:"percentage"`
}

type DeviceStat struct {
	Device     string `json:"device"`
	Sessions   int    `json:"sessions"`
	Percentage int    `json:"percentage"`
}

type DayStat struct {
	Day      string `json:"day"`
	Views    int    `json:"views"`
	Visitors int    `json:"visitors"`
}

type MonthStat struct {
	Month     string `json:"month"`
	Views     int    `json:"views"`
	Downloads int    `json:"downloads"`
}

// Multiplier scales the headline totals: 1 for 7d, 4 for 30d and 12 for
// anything else.
func Multiplier(period string) int {
	switch period {
	case "7d":
		return 1
	case "30d":
		return 4
	default:
		return 12
	}
}

// ParseRange returns s, or DefaultRange when s is empty. Unlike Multiplier
// it rejects ranges the dashboard does not offer.
func ParseRange(s string) (string, error) {
	if s == "" {
		return DefaultRange, nil
	}
	for _, r := range Ranges {
		if s == r {
			return s, nil
		}
	}
	return "", fmt.Errorf("%w %q (available: %v)", ErrInvalidRange, s, Ranges)
}

// figure is one drawn value: floor(rand*spread) + base.
type figure struct {
	spread, base int
}

func (f figure) draw(rng Rand) int {
	return int(math.Floor(rng.Float64()*float64(f.spread))) + f.base
}

var (
	pages = []struct {
		name  string
		views figure
		pct   int
	}{
		{"Home", figure{1000, 500}, 35},
		{"Projects", figure{800, 400}, 28},
		{"Experience", figure{600, 300}, 20},
		{"Skills", figure{400, 200}, 12},
		{"Contact", figure{200, 100}, 5},
	}

	sources = []struct {
		name     string
		visitors figure
		pct      int
	}{
		{"Direct", figure{500, 200}, 40},
		{"LinkedIn", figure{300, 150}, 30},
		{"Google", figure{200, 100}, 20},
		{"GitHub", figure{100, 50}, 7},
		{"Other", figure{50, 25}, 3},
	}

	devices = []struct {
		name     string
		sessions figure
		pct      int
	}{
		{"Desktop", figure{600, 300}, 60},
		{"Mobile", figure{300, 200}, 30},
		{"Tablet", figure{100, 50}, 10},
	}

	days = []struct {
		name            string
		views, visitors figure
	}{
		{"Mon", figure{200, 100}, figure{100, 50}},
		{"Tue", figure{250, 120}, figure{120, 60}},
		{"Wed", figure{300, 150}, figure{150, 70}},
		{"Thu", figure{280, 140}, figure{140, 65}},
		{"Fri", figure{320, 160}, figure{160, 80}},
		{"Sat", figure{180, 90}, figure{90, 45}},
		{"Sun", figure{150, 80}, figure{80, 40}},
	}

	months = []struct {
		name             string
		views, downloads figure
	}{
		{"Jan", figure{2000, 1000}, figure{50, 25}},
		{"Feb", figure{2200, 1100}, figure{60, 30}},
		{"Mar", figure{2400, 1200}, figure{70, 35}},
	}
)

// Generate draws a report for period. Figures are drawn in field order, so a
// seeded source always yields the same report.
func Generate(src Rand, period string) Report {
	m := Multiplier(period)
	r := Report{
		PageViews:          figure{5000 * m, 1000}.draw(src),
		UniqueVisitors:     figure{2000 * m, 500}.draw(src),
		ResumeDownloads:    figure{200 * m, 50}.draw(src),
		AvgSessionDuration: figure{300, 120}.draw(src),
		BounceRate:         figure{30, 25}.draw(src),
	}

	r.TopPages = make([]PageStat, len(pages))
	for i, p := range pages {
		r.TopPages[i] = PageStat{Page: p.name, Views: p.views.draw(src), Percentage: p.pct}
	}
	r.TrafficSources = make([]SourceStat, len(sources))
	for i, s := range sources {
		r.TrafficSources[i] = SourceStat{Source: s.name, Visitors: s.visitors.draw(src), Percentage: s.pct}
	}
	r.DeviceTypes = make([]DeviceStat, len(devices))
	for i, d := range devices {
		r.DeviceTypes[i] = DeviceStat{Device: d.name, Sessions: d.sessions.draw(src), Percentage: d.pct}
	}
	r.WeeklyData = make([]DayStat, len(days))
	for i, d := range days {
		r.WeeklyData[i] = DayStat{Day: d.name, Views: d.views.draw(src), Visitors: d.visitors.draw(src)}
	}
	r.MonthlyData = make([]MonthStat, len(months))
	for i, mo := range months {
		r.MonthlyData[i] = MonthStat{Month: mo.name, Views: mo.views.draw(src), Downloads: mo.downloads.draw(src)}
	}
	return r
}

// WeeklyViews returns the weekly page views as a series for charting.
func (r Report) WeeklyViews() []float64 {
	out := make([]float64, len(r.WeeklyData))
	for i, d := range r.WeeklyData {
		out[i] = float64(d.Views)
	}
	return out
}
