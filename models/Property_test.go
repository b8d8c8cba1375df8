package models

import (
	"encoding/json"
	"strings"
	"testing"

	"gorm.io/datatypes"
)

func TestPropertyMarshalJSONEmitsArrays(t *testing.T) {
	p := Property{
		Title:        "Sea View Flat",
		Images:       `["https://x/img.png"]`,
		Amenities:    datatypes.JSON([]byte(`[1,2]`)),
		BlockedDates: datatypes.JSON([]byte(`["2024-06-15"]`)),
	}

	// Handlers must marshal through the pointer receiver; a value marshal
	// would leak the raw JSON columns as strings.
	out, err := json.Marshal(&p)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	body := string(out)
	if !strings.Contains(body, `"images":["https://x/img.png"]`) {
		t.Errorf("images not decoded to an array: %s", body)
	}
	if !strings.Contains(body, `"amenities":[1,2]`) {
		t.Errorf("amenities not decoded to an array: %s", body)
	}
	if !strings.Contains(body, `"blockedDates":["2024-06-15"]`) {
		t.Errorf("blockedDates not decoded to an array: %s", body)
	}
}

func TestPropertyMarshalJSONEmptyColumns(t *testing.T) {
	p := Property{Title: "Bare Listing"}

	out, err := json.Marshal(&p)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	body := string(out)
	for _, want := range []string{`"images":[]`, `"amenities":[]`, `"categories":[]`, `"blockedDates":[]`} {
		if !strings.Contains(body, want) {
			t.Errorf("missing %s in %s", want, body)
		}
	}
}
