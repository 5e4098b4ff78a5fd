package models

import "time"

// CustomerDashboard summarizes a customer's activity.
type CustomerDashboard struct {
	SubscriptionCount   int            `json:"subscriptionCount"`
	OrderCount          int            `json:"orderCount"`
	RecentSubscriptions []Subscription `json:"recentSubscriptions"`
}

// SellerDashboard summarizes a seller's store.
type SellerDashboard struct {
	TotalSales      float64 `json:"totalSales"`
	ProductCount    int     `json:"productCount"`
	SubscriberCount int     `json:"subscriberCount"`
	RecentOrders    []Order `json:"recentOrders"`
}

// AdminDashboard holds platform-wide totals.
type AdminDashboard struct {
	TotalUsers      int     `json:"totalUsers"`
	ActiveSellers   int     `json:"activeSellers"`
	TotalProducts   int     `json:"totalProducts"`
	PlatformRevenue float64 `json:"platformRevenue"`
}

// CustomerSummary is a row of the admin customers table.
type CustomerSummary struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	Email             string    `json:"email"`
	CreatedAt         time.Time `json:"created_at"`
	SubscriptionCount int       `json:"subscription_count"`
	OrderCount        int       `json:"order_count"`
	TotalSpent        float64   `json:"total_spent"`
}

// Analytics timeframes
const (
	Timeframe7Days  = "7days"
	Timeframe30Days = "30days"
	Timeframe90Days = "90days"
	TimeframeYear   = "year"
	TimeframeAll    = "all"
)

// WindowStats are raw counts for one time window.
type WindowStats struct {
	Revenue       float64
	NewUsers      int
	NewProducts   int
	ActiveSellers int
}

// Analytics compares the selected window against the preceding one.
type Analytics struct {
	Timeframe string         `json:"timeframe"`
	Revenue   GrowthMetric   `json:"revenue"`
	Users     NewCountMetric `json:"users"`
	Products  NewCountMetric `json:"products"`
	Sellers   SellerActivity `json:"sellers"`
}

// GrowthMetric is a window total with its percentage change.
type GrowthMetric struct {
	Total  float64 `json:"total"`
	Growth float64 `json:"growth"`
}

// NewCountMetric counts records created in the window.
type NewCountMetric struct {
	New    int     `json:"new"`
	Growth float64 `json:"growth"`
}

// SellerActivity counts sellers who listed a product in the window.
type SellerActivity struct {
	Active int `json:"active"`
	Total  int `json:"total"`
}
