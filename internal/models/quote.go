package models

// Quote represents one market quote in a snapshot
type Quote struct {
	Symbol string  `json:"symbol"`
	Name   string  `json:"name"`
	Price  float64 `json:"price"`
	Change float64 `json:"change"`
	Volume string  `json:"volume"`
}
