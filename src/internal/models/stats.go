package models

// Stats summarises the users registered under one company.
type Stats struct {
	CompanyCode  string `json:"companyCode"`
	Total        int64  `json:"total"`
	Approved     int64  `json:"approved"`
	Pending      int64  `json:"pending"`
	Admins       int64  `json:"admins"`
	NewThisMonth int64  `json:"newThisMonth"`
}
