// Package ingest loads scraped company records and writes them into the
// vector index.
package ingest

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// FounderDetail is one founder entry from the enriched scrape output.
type FounderDetail struct {
	Name          string `json:"name"`
	Title         string `json:"title"`
	Bio           string `json:"bio"`
	LinkedinURL   string `json:"linkedin_url"`
	TwitterURL    string `json:"twitter_url"`
	VerifiedEmail string `json:"verified_email,omitempty"`
}

// CompanyRecord mirrors one entry of the enriched company JSON dump.
// Pointer fields distinguish absent keys from zero values so absent
// attributes are omitted from the stored hash instead of stored as "".
type CompanyRecord struct {
	CompanyID        int64           `json:"company_id"`
	CompanyName      string          `json:"company_name"`
	ShortDescription string          `json:"short_description"`
	LongDescription  string          `json:"long_description"`
	Batch            string          `json:"batch"`
	Status           string          `json:"status"`
	Tags             []string        `json:"tags"`
	Location         string          `json:"location"`
	Country          string          `json:"country"`
	YearFounded      *int            `json:"year_founded"`
	NumFounders      *int            `json:"num_founders"`
	FoundersNames    []string        `json:"founders_names"`
	FounderDetails   []FounderDetail `json:"founder_details"`
	TeamSize         *int            `json:"team_size"`
	Website          string          `json:"website"`
	CBURL            string          `json:"cb_url"`
	LinkedinURL      string          `json:"linkedin_url"`
}

// DocID returns the stable document identifier for this record.
func (r CompanyRecord) DocID() string {
	if r.CompanyID != 0 {
		return strconv.FormatInt(r.CompanyID, 10)
	}
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(r.CompanyName), " ", "-"))
}

// EmbedText builds the text block whose embedding represents the company.
// Name, tagline, description, tags and founder bios all contribute so a
// semantic query can hit the record through any of them.
func (r CompanyRecord) EmbedText() string {
	bios := make([]string, 0, len(r.FounderDetails))
	for _, f := range r.FounderDetails {
		if f.Bio != "" {
			bios = append(bios, f.Bio)
		}
	}

	return fmt.Sprintf(
		"Company: %s\nTagline: %s\nDescription: %s\nTags: %s\nFounders: %s",
		r.CompanyName,
		r.ShortDescription,
		r.LongDescription,
		strings.Join(r.Tags, ", "),
		strings.Join(bios, " "),
	)
}

// PrimaryEmail returns the first verified founder email, or "".
func (r CompanyRecord) PrimaryEmail() string {
	for _, f := range r.FounderDetails {
		if f.VerifiedEmail != "" {
			return f.VerifiedEmail
		}
	}
	return ""
}

// HashFields flattens the record into the string fields stored on the
// document hash. Absent attributes are omitted, string lists are joined
// with the tag separator, and structured values are stored as JSON.
func (r CompanyRecord) HashFields() map[string]string {
	fields := map[string]string{
		"company_name": r.CompanyName,
	}

	putStr := func(key, v string) {
		if v != "" {
			fields[key] = v
		}
	}
	putInt := func(key string, v *int) {
		if v != nil {
			fields[key] = strconv.Itoa(*v)
		}
	}

	if r.CompanyID != 0 {
		fields["company_id"] = strconv.FormatInt(r.CompanyID, 10)
	}
	putStr("short_description", r.ShortDescription)
	putStr("long_description", r.LongDescription)
	putStr("batch", r.Batch)
	putStr("status", r.Status)
	putStr("location", r.Location)
	putStr("country", r.Country)
	putInt("year_founded", r.YearFounded)
	putInt("num_founders", r.NumFounders)
	putInt("team_size", r.TeamSize)
	putStr("website", r.Website)
	putStr("cb_url", r.CBURL)
	putStr("linkedin_url", r.LinkedinURL)

	if len(r.Tags) > 0 {
		fields["tags"] = strings.Join(r.Tags, ",")
	}
	if len(r.FoundersNames) > 0 {
		fields["founders_names"] = strings.Join(r.FoundersNames, ",")
	}
	if len(r.FounderDetails) > 0 {
		if b, err := json.Marshal(r.FounderDetails); err == nil {
			fields["founder_details"] = string(b)
		}
	}

	fields["primary_email"] = r.PrimaryEmail()

	return fields
}
