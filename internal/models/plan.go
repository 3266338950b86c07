package models

// Plan is a catalog entry for one of the fixed call durations.
type Plan struct {
	ID          string  `json:"id"`
	Minutes     int     `json:"minutes"`
	Price       float64 `json:"price"`
	Popular     bool    `json:"popular,omitempty"`
	Available   bool    `json:"available"`
	CheckoutURL string  `json:"checkout_url,omitempty"`
	Message     string  `json:"message,omitempty"`
}

type AdminStats struct {
	TotalVideos         int     `json:"total_videos"`
	ActiveVideos        int     `json:"active_videos"`
	TotalViews          int     `json:"total_views"`
	TotalRevenue        float64 `json:"total_revenue"`
	TotalCalls          int     `json:"total_calls"`
	AverageCallDuration float64 `json:"average_call_duration"`
}
