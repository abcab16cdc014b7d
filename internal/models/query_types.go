// internal/models/query_types.go
package models

type QueryType string

const (
	QueryCompanyList          QueryType = "company_list"
	QueryCompanyByID          QueryType = "company_by_id"
	QueryCompanyByName        QueryType = "company_by_name"
	QueryCompanySearch        QueryType = "company_search"
	QueryModerationCounts     QueryType = "moderation_counts"
	QueryPendingBookingsCount QueryType = "pending_bookings_count"
)
