package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/roach88/hitkit/internal/ir"
	"github.com/roach88/hitkit/internal/store"
)

// openStore opens an existing database. Commands that only read or that
// derive from earlier stages refuse to create one.
func openStore(path string) (*store.Store, error) {
	if path == "" {
		return nil, NewExitError(ExitCommandError, "--db is required")
	}
	if _, err := os.Stat(path); err != nil {
		return nil, WrapExitError(ExitCommandError, "database not found", err)
	}
	st, err := store.Open(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	return st, nil
}

func closeStore(st *store.Store) {
	if err := st.Close(); err != nil {
		slog.Error("close database", "error", err)
	}
}

func parseTagFlag(name, value string) (ir.InputTag, error) {
	tag, err := ir.ParseInputTag(value)
	if err != nil {
		return ir.InputTag{}, WrapExitError(ExitCommandError, fmt.Sprintf("invalid --%s", name), err)
	}
	return tag, nil
}

// selectEvents returns the single event named by id, or every stored event
// when id is empty.
func selectEvents(ctx context.Context, st *store.Store, id string) ([]ir.EventID, error) {
	if id != "" {
		ev, err := ir.ParseEventID(id)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "invalid --event", err)
		}
		return []ir.EventID{ev}, nil
	}
	rows, err := st.Events(ctx)
	if err != nil {
		return nil, WrapExitError(ExitFailure, "failed to list events", err)
	}
	ids := make([]ir.EventID, len(rows))
	for i, r := range rows {
		ids[i] = r.ID
	}
	return ids, nil
}
