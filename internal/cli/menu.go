package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/GenAICloudDevOps/AgenticBarista/pkg/domain"
)

// PrintMenu writes the available items, optionally restricted to one category.
func PrintMenu(ctx context.Context, a *Assistant, w io.Writer, category string, asJSON bool) error {
	items, err := a.Catalog.List(ctx)
	if err != nil {
		return err
	}
	if category != "" {
		filtered := make([]domain.CatalogItem, 0, len(items))
		for _, it := range items {
			if it.Category == category {
				filtered = append(filtered, it)
			}
		}
		items = filtered
	}

	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(items)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ITEM\tCATEGORY\tPRICE\tDESCRIPTION")
	for _, it := range items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", it.Name, it.Category, it.Price, it.Description)
	}
	return tw.Flush()
}
