package model

// PrimaryRecord is one row of the primary ("massy") sheet.
type PrimaryRecord struct {
	Address string `json:"address"`
	Phone   string `json:"phone"`
}

// ReferenceRecord is one row of the clean reference sheets, tagged with the sheet it came from.
type ReferenceRecord struct {
	Address     string `json:"address"`
	Phone       string `json:"phone"`
	OriginSheet string `json:"origin_sheet"`
}

// OutputRecord is a primary address that needs manual review.
type OutputRecord struct {
	Address string `json:"address"`
	Phones  string `json:"phone_numbers"`
	Color   Color  `json:"color"`
}
