package ingest

import (
	"encoding/json"
	"strings"
	"testing"
)

func intPtr(i int) *int { return &i }

func sampleRecord() CompanyRecord {
	return CompanyRecord{
		CompanyID:        42,
		CompanyName:      "Acme",
		ShortDescription: "Payments for robots",
		LongDescription:  "Acme builds payment rails for autonomous machines.",
		Batch:            "W21",
		Status:           "Active",
		Tags:             []string{"Fintech", "Robotics"},
		Location:         "San Francisco",
		Country:          "US",
		YearFounded:      intPtr(2021),
		NumFounders:      intPtr(2),
		FoundersNames:    []string{"Jo Doe", "Sam Poe"},
		FounderDetails: []FounderDetail{
			{Name: "Jo Doe", Title: "CEO", Bio: "Ex-stripe payments engineer."},
			{Name: "Sam Poe", Title: "CTO", Bio: "Robotics PhD.", VerifiedEmail: "sam@acme.example"},
		},
		TeamSize: intPtr(12),
		Website:  "https://acme.example",
	}
}

func TestDocID(t *testing.T) {
	if got := sampleRecord().DocID(); got != "42" {
		t.Errorf("DocID = %q", got)
	}

	noID := CompanyRecord{CompanyName: "Acme Corp"}
	if got := noID.DocID(); got != "acme-corp" {
		t.Errorf("fallback DocID = %q", got)
	}
}

func TestEmbedTextCoversSemanticSignals(t *testing.T) {
	text := sampleRecord().EmbedText()

	for _, want := range []string{
		"Company: Acme",
		"Tagline: Payments for robots",
		"Description: Acme builds payment rails",
		"Tags: Fintech, Robotics",
		"Founders: Ex-stripe payments engineer. Robotics PhD.",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("embed text missing %q:\n%s", want, text)
		}
	}
}

func TestPrimaryEmail(t *testing.T) {
	if got := sampleRecord().PrimaryEmail(); got != "sam@acme.example" {
		t.Errorf("PrimaryEmail = %q", got)
	}

	none := CompanyRecord{FounderDetails: []FounderDetail{{Name: "Jo"}}}
	if got := none.PrimaryEmail(); got != "" {
		t.Errorf("PrimaryEmail without verified emails = %q, want empty", got)
	}
}

func TestHashFields(t *testing.T) {
	fields := sampleRecord().HashFields()

	want := map[string]string{
		"company_id":     "42",
		"company_name":   "Acme",
		"batch":          "W21",
		"status":         "Active",
		"location":       "San Francisco",
		"country":        "US",
		"year_founded":   "2021",
		"num_founders":   "2",
		"team_size":      "12",
		"tags":           "Fintech,Robotics",
		"founders_names": "Jo Doe,Sam Poe",
		"primary_email":  "sam@acme.example",
	}
	for key, val := range want {
		if fields[key] != val {
			t.Errorf("%s = %q, want %q", key, fields[key], val)
		}
	}

	var details []FounderDetail
	if err := json.Unmarshal([]byte(fields["founder_details"]), &details); err != nil {
		t.Fatalf("founder_details must be stored as JSON: %v", err)
	}
	if len(details) != 2 || details[1].VerifiedEmail != "sam@acme.example" {
		t.Errorf("founder_details = %v", details)
	}
}

func TestHashFieldsOmitsAbsentAttributes(t *testing.T) {
	fields := CompanyRecord{CompanyName: "Bare"}.HashFields()

	for _, key := range []string{
		"batch", "status", "location", "country",
		"year_founded", "num_founders", "team_size",
		"tags", "founders_names", "founder_details",
	} {
		if _, ok := fields[key]; ok {
			t.Errorf("absent attribute %q must be omitted, got %q", key, fields[key])
		}
	}

	// primary_email is always present, possibly empty.
	if v, ok := fields["primary_email"]; !ok || v != "" {
		t.Errorf("primary_email = %q, %v", v, ok)
	}
}
