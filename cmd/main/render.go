package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"pokedex/catalog/internal/domain"
	"pokedex/catalog/internal/state"
)

func printList(w io.Writer, st state.State, items []domain.CatalogItem, query string) {
	if query != "" {
		fmt.Fprintf(w, "Search %q: %d match(es)\n", query, len(items))
	} else {
		fmt.Fprintf(w, "Page %d/%d\n", st.CurrentPage, st.TotalPages)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, item := range items {
		id, err := item.ID()
		if err != nil {
			fmt.Fprintf(tw, "?\t%s\n", item.Name)
			continue
		}
		fmt.Fprintf(tw, "#%d\t%s\n", id, item.Name)
	}
	tw.Flush()
}

func printDetail(w io.Writer, record domain.DetailRecord, language string) {
	fmt.Fprintf(w, "#%d %s\n", record.ID, record.Name)
	if len(record.Types) > 0 {
		fmt.Fprintf(w, "Types: %s\n", strings.Join(record.Types, ", "))
	}

	if text, ok := record.FlavorText(language); ok {
		fmt.Fprintf(w, "%s\n", text)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, stat := range record.Stats {
		fmt.Fprintf(tw, "%s\t%d\n", stat.DisplayName(), stat.BaseValue)
	}
	tw.Flush()

	if len(record.Abilities) > 0 {
		names := make([]string, 0, len(record.Abilities))
		for _, ability := range record.Abilities {
			name := ability.Name
			if ability.IsHidden {
				name += " (hidden)"
			}
			names = append(names, name)
		}
		fmt.Fprintf(w, "Abilities: %s\n", strings.Join(names, ", "))
	}

	if record.Sprites.Front != "" {
		fmt.Fprintf(w, "Sprite: %s\n", record.Sprites.Front)
	}
}
