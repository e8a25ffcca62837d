package dashboard

import (
	"encoding/json"
	"fmt"

	quickchartgo "github.com/henomis/quickchart-go"

	"github.com/ignite/mailtrace/internal/tracking"
)

// ChartConfig is the Chart.js configuration shape. The same structure
// feeds the in-page renderer and the QuickChart export URLs.
type ChartConfig struct {
	Type string    `json:"type"`
	Data ChartData `json:"data"`
}

type ChartData struct {
	Labels   []string  `json:"labels"`
	DataSets []Dataset `json:"datasets"`
}

type Dataset struct {
	Label           string   `json:"label"`
	Data            []int    `json:"data"`
	BackgroundColor []string `json:"backgroundColor,omitempty"`
}

var (
	positiveColors = []string{"#4caf50", "#e0e0e0"}
	clickColors    = []string{"#2196f3", "#e0e0e0"}
	deviceColors   = []string{"#4caf50", "#2196f3", "#ff9800", "#9c27b0", "#607d8b"}
)

// Charts bundles the three dashboard charts.
type Charts struct {
	Opens   ChartConfig `json:"opens"`
	Clicks  ChartConfig `json:"clicks"`
	Devices ChartConfig `json:"devices"`
}

// BuildCharts turns the aggregates into Chart.js configs: two pies for
// opened/clicked share and one bar chart for the device histogram.
func BuildCharts(sum *tracking.Summary, devices []tracking.DeviceCount) *Charts {
	labels := make([]string, 0, len(devices))
	counts := make([]int, 0, len(devices))
	colors := make([]string, 0, len(devices))
	for i, d := range devices {
		labels = append(labels, d.DeviceType)
		counts = append(counts, d.Count)
		colors = append(colors, deviceColors[i%len(deviceColors)])
	}

	return &Charts{
		Opens: ChartConfig{
			Type: "pie",
			Data: ChartData{
				Labels: []string{"Opened", "Not Opened"},
				DataSets: []Dataset{{
					Label:           "Opens",
					Data:            []int{sum.TotalOpened, sum.TotalSent - sum.TotalOpened},
					BackgroundColor: positiveColors,
				}},
			},
		},
		Clicks: ChartConfig{
			Type: "pie",
			Data: ChartData{
				Labels: []string{"Clicked", "Not Clicked"},
				DataSets: []Dataset{{
					Label:           "Clicks",
					Data:            []int{sum.TotalClicked, sum.TotalSent - sum.TotalClicked},
					BackgroundColor: clickColors,
				}},
			},
		},
		Devices: ChartConfig{
			Type: "bar",
			Data: ChartData{
				Labels: labels,
				DataSets: []Dataset{{
					Label:           "Opens by Device",
					Data:            counts,
					BackgroundColor: colors,
				}},
			},
		},
	}
}

// ExportURL renders one chart config into a QuickChart image URL.
func ExportURL(config ChartConfig) (string, error) {
	raw, err := json.Marshal(config)
	if err != nil {
		return "", fmt.Errorf("marshal chart config: %w", err)
	}
	qc := quickchartgo.New()
	qc.Config = string(raw)
	url, err := qc.GetUrl()
	if err != nil {
		return "", fmt.Errorf("quickchart url: %w", err)
	}
	return url, nil
}
