package domain

import (
	"slices"
	"strconv"
	"strings"
	"unicode"
)

type Sprites struct {
	Front      string `json:"front"`
	Back       string `json:"back"`
	FrontShiny string `json:"front_shiny"`
	BackShiny  string `json:"back_shiny"`
}

type Stat struct {
	Name      string `json:"name"`
	BaseValue int    `json:"base_value"`
}

// DisplayName turns "special-attack" into "Special Attack"
func (s Stat) DisplayName() string {
	words := strings.Fields(strings.ReplaceAll(s.Name, "-", " "))
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}

type Ability struct {
	Name     string `json:"name"`
	IsHidden bool   `json:"is_hidden"`
}

type FlavorTextEntry struct {
	Text     string `json:"text"`
	Language string `json:"language"`
	Version  string `json:"version"`
}

// DetailRecord is a fully enriched catalog entry: base detail merged with species metadata
type DetailRecord struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Sprites   Sprites   `json:"sprites"`
	Types     []string  `json:"types"`     // Ordered by slot
	Stats     []Stat    `json:"stats"`     // API order
	Abilities []Ability `json:"abilities"` // API order

	// Absent when the species lookup failed
	FlavorTextEntries Optional[[]FlavorTextEntry] `json:"flavor_text_entries"`
}

// FlavorText returns the first entry in the given language, whitespace normalized.
// The API text contains form feeds and hard line breaks.
func (d DetailRecord) FlavorText(language string) (string, bool) {
	entries, ok := d.FlavorTextEntries.Get()
	if !ok {
		return "", false
	}

	for _, entry := range entries {
		if strings.EqualFold(entry.Language, language) {
			return strings.Join(strings.Fields(entry.Text), " "), true
		}
	}

	return "", false
}

// Clone returns a deep copy of the record
func (d DetailRecord) Clone() DetailRecord {
	d.Types = slices.Clone(d.Types)
	d.Stats = slices.Clone(d.Stats)
	d.Abilities = slices.Clone(d.Abilities)
	if entries, ok := d.FlavorTextEntries.Get(); ok {
		d.FlavorTextEntries = Some(slices.Clone(entries))
	}
	return d
}

// CatalogItem builds the list entry this record corresponds to
func (d DetailRecord) CatalogItem(baseURL, listPath string) CatalogItem {
	return CatalogItem{
		Name: d.Name,
		URL:  strings.TrimRight(baseURL, "/") + "/" + strings.Trim(listPath, "/") + "/" + strconv.Itoa(d.ID) + "/",
	}
}

// Species is the subset of species metadata merged into a DetailRecord
type Species struct {
	ID                int                         `json:"id"`
	Name              string                      `json:"name"`
	FlavorTextEntries Optional[[]FlavorTextEntry] `json:"flavor_text_entries"`
}

// MergeSpecies returns a copy of the record enriched with species flavor text
func (d DetailRecord) MergeSpecies(species *Species) DetailRecord {
	if species == nil {
		return d
	}
	d.FlavorTextEntries = species.FlavorTextEntries
	return d
}
