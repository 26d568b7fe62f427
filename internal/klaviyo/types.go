package klaviyo

import "time"

// Resources come back in Klaviyo's JSON:API shape: a data array of typed
// objects plus a links.next cursor.

type Campaign struct {
	ID         string             `json:"id"`
	Type       string             `json:"type"`
	Attributes CampaignAttributes `json:"attributes"`
}

type CampaignAttributes struct {
	Name      string     `json:"name"`
	Status    string     `json:"status"`
	Channel   string     `json:"channel"`
	SendTime  *time.Time `json:"send_time"`
	CreatedAt *time.Time `json:"created_at"`
}

type Flow struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	Attributes FlowAttributes `json:"attributes"`
}

type FlowAttributes struct {
	Name        string `json:"name"`
	Status      string `json:"status"`
	TriggerType string `json:"trigger_type"`
}

type FlowAction struct {
	ID         string               `json:"id"`
	Type       string               `json:"type"`
	Attributes FlowActionAttributes `json:"attributes"`
}

type FlowActionAttributes struct {
	ActionType string `json:"action_type"`
}

type FlowMessage struct {
	ID         string                `json:"id"`
	Type       string                `json:"type"`
	Attributes FlowMessageAttributes `json:"attributes"`
}

type FlowMessageAttributes struct {
	Name    string `json:"name"`
	Channel string `json:"channel"`
	Content struct {
		Subject string `json:"subject"`
	} `json:"content"`
}

type Template struct {
	ID         string             `json:"id"`
	Type       string             `json:"type"`
	Attributes TemplateAttributes `json:"attributes"`
}

type TemplateAttributes struct {
	Name      string     `json:"name"`
	HTML      string     `json:"html"`
	CreatedAt *time.Time `json:"created"`
}

// ValuesReportRequest describes a campaign or flow values report query.
type ValuesReportRequest struct {
	Statistics         []string `json:"statistics"`
	Timeframe          string   `json:"timeframe"`
	ConversionMetricID string   `json:"conversion_metric_id"`
}

// ValuesReportRow is one grouping of report statistics, keyed by the
// campaign, flow or message it aggregates.
type ValuesReportRow struct {
	GroupedBy  map[string]string  `json:"groupings"`
	Statistics map[string]float64 `json:"statistics"`
}

// Statistic names requested from values reports during sync.
var SyncStatistics = []string{"delivered", "open_rate", "click_rate", "conversion_value"}

type page[T any] struct {
	Data  []T `json:"data"`
	Links struct {
		Next string `json:"next"`
	} `json:"links"`
}

type reportResponse struct {
	Data struct {
		Attributes struct {
			Results []ValuesReportRow `json:"results"`
		} `json:"attributes"`
	} `json:"data"`
}
