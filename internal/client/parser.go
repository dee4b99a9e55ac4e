package client

import (
	"encoding/json"
	"fmt"
	"sort"

	"pokedex/catalog/internal/domain"

	log "github.com/sirupsen/logrus"
)

type namedResource struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

type listPayload struct {
	Count   int             `json:"count"`
	Results []namedResource `json:"results"`
}

type detailPayload struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Sprites struct {
		FrontDefault string `json:"front_default"`
		BackDefault  string `json:"back_default"`
		FrontShiny   string `json:"front_shiny"`
		BackShiny    string `json:"back_shiny"`
	} `json:"sprites"`
	Types []struct {
		Slot int           `json:"slot"`
		Type namedResource `json:"type"`
	} `json:"types"`
	Stats []struct {
		BaseStat int           `json:"base_stat"`
		Stat     namedResource `json:"stat"`
	} `json:"stats"`
	Abilities []struct {
		Ability  namedResource `json:"ability"`
		IsHidden bool          `json:"is_hidden"`
	} `json:"abilities"`
}

type speciesPayload struct {
	ID                int    `json:"id"`
	Name              string `json:"name"`
	FlavorTextEntries *[]struct {
		FlavorText string        `json:"flavor_text"`
		Language   namedResource `json:"language"`
		Version    namedResource `json:"version"`
	} `json:"flavor_text_entries"`
}

func parseCatalogPage(body []byte, limit, offset int) (*domain.CatalogPage, error) {
	var payload listPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode catalog page: %w", err)
	}

	page := &domain.CatalogPage{
		Limit:  limit,
		Offset: offset,
		Count:  payload.Count,
		Items:  make([]domain.CatalogItem, 0, len(payload.Results)),
	}

	for _, result := range payload.Results {
		page.Items = append(page.Items, domain.CatalogItem{
			Name: result.Name,
			URL:  result.URL,
		})
	}

	log.Debugf("Parsed catalog page at offset %d with %d items", offset, len(page.Items))
	return page, nil
}

func parseDetail(body []byte) (*domain.DetailRecord, error) {
	var payload detailPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode detail: %w", err)
	}

	if payload.ID < 1 {
		return nil, fmt.Errorf("detail %q has invalid id %d", payload.Name, payload.ID)
	}

	record := &domain.DetailRecord{
		ID:   payload.ID,
		Name: payload.Name,
		Sprites: domain.Sprites{
			Front:      payload.Sprites.FrontDefault,
			Back:       payload.Sprites.BackDefault,
			FrontShiny: payload.Sprites.FrontShiny,
			BackShiny:  payload.Sprites.BackShiny,
		},
		Types:     make([]string, 0, len(payload.Types)),
		Stats:     make([]domain.Stat, 0, len(payload.Stats)),
		Abilities: make([]domain.Ability, 0, len(payload.Abilities)),
	}

	types := payload.Types
	sort.SliceStable(types, func(i, j int) bool { return types[i].Slot < types[j].Slot })
	for _, t := range types {
		record.Types = append(record.Types, t.Type.Name)
	}

	for _, s := range payload.Stats {
		baseValue := s.BaseStat
		if baseValue < 0 {
			log.Warnf("Negative base stat %d for %s on %s, clamping to 0", baseValue, s.Stat.Name, payload.Name)
			baseValue = 0
		}
		record.Stats = append(record.Stats, domain.Stat{
			Name:      s.Stat.Name,
			BaseValue: baseValue,
		})
	}

	for _, a := range payload.Abilities {
		record.Abilities = append(record.Abilities, domain.Ability{
			Name:     a.Ability.Name,
			IsHidden: a.IsHidden,
		})
	}

	log.Debugf("Parsed detail %d (%s): %d types, %d stats, %d abilities",
		record.ID, record.Name, len(record.Types), len(record.Stats), len(record.Abilities))
	return record, nil
}

func parseSpecies(body []byte) (*domain.Species, error) {
	var payload speciesPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode species: %w", err)
	}

	species := &domain.Species{
		ID:   payload.ID,
		Name: payload.Name,
	}

	// Missing or null entries stay absent
	if payload.FlavorTextEntries != nil {
		entries := make([]domain.FlavorTextEntry, 0, len(*payload.FlavorTextEntries))
		for _, e := range *payload.FlavorTextEntries {
			entries = append(entries, domain.FlavorTextEntry{
				Text:     e.FlavorText,
				Language: e.Language.Name,
				Version:  e.Version.Name,
			})
		}
		species.FlavorTextEntries = domain.Some(entries)
	}

	return species, nil
}
