package model

// Province is the top level of the address hierarchy.
type Province struct {
	Code string
	Name string
}

// District belongs to a province.
type District struct {
	Code         string
	Name         string
	ProvinceCode string
}

// Ward belongs to a district.
type Ward struct {
	Code         string
	Name         string
	DistrictCode string
}
