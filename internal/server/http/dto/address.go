package dto

// SelectRequest picks one entry of an address level.
type SelectRequest struct {
	Code string `json:"code" binding:"required"`
}

// AddressEntry is one province, district or ward.
type AddressEntry struct {
	Code string `json:"code"`
	Name string `json:"name"`
}
