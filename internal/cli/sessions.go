package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/GenAICloudDevOps/AgenticBarista/pkg/cart"
	"github.com/GenAICloudDevOps/AgenticBarista/pkg/domain"
	"github.com/GenAICloudDevOps/AgenticBarista/pkg/memory"
)

// SessionReport is what `session inspect` prints.
type SessionReport struct {
	ID        string               `json:"id" yaml:"id"`
	CreatedAt time.Time            `json:"created_at" yaml:"created_at"`
	UpdatedAt time.Time            `json:"updated_at" yaml:"updated_at"`
	Orders    int                  `json:"orders" yaml:"orders"`
	Cart      cart.View            `json:"cart" yaml:"cart"`
	Memory    domain.MemorySummary `json:"memory" yaml:"memory"`
	History   []domain.MemoryEntry `json:"history,omitempty" yaml:"history,omitempty"`
}

// ListSessions writes one row per stored session.
func ListSessions(ctx context.Context, a *Assistant, w io.Writer) error {
	ids, err := a.Sessions.List(ctx)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		printSystemMessage(w, "No sessions found.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SESSION\tITEMS\tMESSAGES\tORDERS\tUPDATED")
	for _, id := range ids {
		s, err := a.Sessions.Load(ctx, id)
		if errors.Is(err, domain.ErrSessionNotFound) {
			continue
		}
		if err != nil {
			return err
		}
		items := 0
		for _, l := range s.Cart {
			items += l.Quantity
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%s\n", id, items, len(s.Memory), s.Orders, s.UpdatedAt.Format(time.RFC3339))
	}
	return tw.Flush()
}

// InspectSession writes a session report as YAML, or JSON when asJSON is set.
func InspectSession(ctx context.Context, a *Assistant, w io.Writer, id string, withHistory, asJSON bool) error {
	s, err := a.Sessions.Load(ctx, id)
	if err != nil {
		return err
	}
	view, err := a.Router.Ledger().ViewOf(ctx, s.Cart)
	if err != nil {
		return err
	}

	report := SessionReport{
		ID:        s.ID,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
		Orders:    s.Orders,
		Cart:      view,
		Memory:    memory.Summarize(s.Memory),
	}
	if withHistory {
		report.History = s.Memory
	}

	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(report); err != nil {
		return err
	}
	return enc.Close()
}

// DeleteSessions removes sessions. Missing sessions are not an error.
func DeleteSessions(ctx context.Context, a *Assistant, w io.Writer, ids ...string) error {
	for _, id := range ids {
		if err := a.Sessions.Delete(ctx, id); err != nil {
			return fmt.Errorf("failed to delete %s: %w", id, err)
		}
		printSystemMessage(w, fmt.Sprintf("Deleted session %s", id))
	}
	return nil
}
