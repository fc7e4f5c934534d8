package core

// CategoryAmount represents an amount aggregated by category.
type CategoryAmount struct {
	CategoryID   string `json:"categoryId"`
	CategoryName string `json:"categoryName"`
	Amount       Money  `json:"amount"`
}

// MonthAmount is one point of a monthly series.
type MonthAmount struct {
	Month  string `json:"month"`
	Amount Money  `json:"spent"`
}
