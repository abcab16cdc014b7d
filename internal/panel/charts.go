package panel

import (
	"encoding/json"
	"html/template"
	"sort"

	"business-directory/internal/models"
)

// Dataset is one series of a chart.
type Dataset struct {
	Label           string   `json:"label"`
	Data            []int    `json:"data"`
	BackgroundColor []string `json:"backgroundColor,omitempty"`
}

// ChartData is the {labels, datasets} structure consumed by the charting library.
type ChartData struct {
	Type     string    `json:"type"`
	Labels   []string  `json:"labels"`
	Datasets []Dataset `json:"datasets"`
}

// JSON renders the chart for embedding inside a script tag.
func (c *ChartData) JSON() template.JS {
	if c == nil {
		return template.JS("null")
	}
	b, err := json.Marshal(c)
	if err != nil {
		return template.JS("null")
	}
	return template.JS(b)
}

var statusPalette = []string{"#f0ad4e", "#5cb85c", "#d9534f"}

// ModerationChart counts companies per moderation status.
func ModerationChart(entities []models.BusinessEntity) *ChartData {
	counts := map[models.ModerationStatus]int{}
	for _, e := range entities {
		counts[e.ModerationStatus]++
	}
	return &ChartData{
		Type:   "doughnut",
		Labels: []string{"Pending", "Approved", "Rejected"},
		Datasets: []Dataset{{
			Label: "Companies",
			Data: []int{
				counts[models.ModerationPending],
				counts[models.ModerationApproved],
				counts[models.ModerationRejected],
			},
			BackgroundColor: statusPalette,
		}},
	}
}

const maxCityBars = 6

// CityChart counts companies per city, largest first. Companies without a city are grouped as "Unknown".
func CityChart(entities []models.BusinessEntity) *ChartData {
	counts := map[string]int{}
	for _, e := range entities {
		city := e.City()
		if city == "" {
			city = "Unknown"
		}
		counts[city]++
	}

	cities := make([]string, 0, len(counts))
	for c := range counts {
		cities = append(cities, c)
	}
	sort.Slice(cities, func(i, j int) bool {
		if counts[cities[i]] != counts[cities[j]] {
			return counts[cities[i]] > counts[cities[j]]
		}
		return cities[i] < cities[j]
	})
	if len(cities) > maxCityBars {
		cities = cities[:maxCityBars]
	}

	data := make([]int, len(cities))
	for i, c := range cities {
		data[i] = counts[c]
	}
	return &ChartData{
		Type:     "bar",
		Labels:   cities,
		Datasets: []Dataset{{Label: "Companies by city", Data: data}},
	}
}

var weekdays = []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// BookingsChart plots bookings per weekday, Monday first.
func BookingsChart(perWeekday [7]int) *ChartData {
	data := make([]int, 7)
	copy(data, perWeekday[:])
	return &ChartData{
		Type:     "bar",
		Labels:   append([]string(nil), weekdays...),
		Datasets: []Dataset{{Label: "Bookings this week", Data: data}},
	}
}
