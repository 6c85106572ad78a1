package models

// Suggestion lists surfaced to the entry form. Free text is always allowed;
// these only seed the datalists.
var (
	EventOptions = []string{
		"Fan Meeting",
		"Album Preorder",
		"Blu-ray Bundle",
		"Pop-up Store",
		"Collab",
		"Season's Greetings",
	}
	VendorOptions = []string{
		"On-site",
		"Ktown4u",
		"YES24",
		"Weverse Shop",
		"Aladin",
		"Trade",
	}
)

// SampleRecords returns starter data for an empty catalog. Each call assigns
// fresh ids so loading samples twice never collides.
func SampleRecords() []Record {
	samples := []Record{
		{
			Title:        "KL fan meeting set card",
			PurchaseDate: "2025-09-15",
			Event:        "Fan Meeting",
			Vendor:       "On-site",
			Notes:        "bought at the venue",
			Have:         true,
		},
		{
			Title:        "Blu-ray round 1 special card",
			PurchaseDate: "2025-08-21",
			Event:        "Blu-ray Bundle",
			Vendor:       "Ktown4u",
			Notes:        "preorder gift",
		},
		{
			Title:        "Collab photocard",
			PurchaseDate: "2025-07-10",
			Event:        "Collab",
			Vendor:       "YES24",
			Notes:        "small size",
			Have:         true,
		},
	}
	for i := range samples {
		samples[i].ID = NewID()
		samples[i].Year = DeriveYear(samples[i].PurchaseDate)
		samples[i].InsertionIndex = i
	}
	return samples
}
