package dto

// DashboardStats are the headline counts for the caller
type DashboardStats struct {
	Flashcards int `json:"flashcards"`
	Folders    int `json:"folders"`
	Classes    int `json:"classes"`
	Users      int `json:"users,omitempty"`
}

// RoleCount is one slice of the role distribution chart
type RoleCount struct {
	Role  string `json:"role"`
	Count int    `json:"count"`
}

// ClassChartEntry is one bar of the per-class chart
type ClassChartEntry struct {
	ClassID   string `json:"classId"`
	Name      string `json:"name"`
	Members   int    `json:"members"`
	Materials int    `json:"materials"`
}

// DashboardCharts holds the chart series. Roles is only filled for admins.
type DashboardCharts struct {
	Roles   []RoleCount       `json:"roles,omitempty"`
	Classes []ClassChartEntry `json:"classes"`
}
