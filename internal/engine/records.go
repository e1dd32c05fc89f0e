package engine

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/leengari/primdb/internal/cache"
	"github.com/leengari/primdb/internal/domain/data"
	"github.com/leengari/primdb/internal/domain/schema"
)

// Insert appends a record built from one raw value per non-ID column and
// assigns it the next ID.
func (e *Engine) Insert(table string, values []string) (string, error) {
	ts, err := e.lookup(table)
	if err != nil {
		return "", err
	}

	cols := ts.UserColumns()
	if len(values) != len(cols) {
		return "", arityMismatch(table, len(cols), len(values))
	}

	rec := make(data.Record, len(ts.Columns))
	for i, col := range cols {
		v, err := schema.Coerce(values[i], col.Type)
		if err != nil {
			return "", conversionError(table, col, values[i])
		}
		rec[col.Name] = v
	}

	records, err := e.load(ts)
	if err != nil {
		return "", err
	}

	// max+1, but never below the high-water mark so deleted IDs stay retired
	id := max(data.MaxID(records), ts.LastID) + 1
	rec[schema.IDColumn] = id
	records = append(records, rec)

	if err := e.save(ts, records); err != nil {
		return "", err
	}

	ts.LastID = id
	if err := e.saveMetadata(); err != nil {
		return "", err
	}

	slog.Debug("record inserted", slog.String("table", table), slog.Int64("id", id))
	return fmt.Sprintf("Record with ID=%d inserted into %q.", id, table), nil
}

// Select renders the records of table matching cond (all records when cond
// is nil). Results are cached until the next write to the table.
func (e *Engine) Select(table string, cond *Condition) (string, error) {
	ts, err := e.lookup(table)
	if err != nil {
		return "", err
	}

	key := cache.TableKey(table)
	if cond != nil {
		key = cache.ConditionKey(table, cond.Column, cond.Value)
	}

	return e.cached(key, func() (string, error) {
		records, err := e.load(ts)
		if err != nil {
			return "", err
		}

		var matched []data.Record
		for _, r := range records {
			if cond == nil || cond.matches(r, ts) {
				matched = append(matched, r)
			}
		}

		slog.Debug("select computed",
			slog.String("key", key.String()),
			slog.Int("scanned", len(records)),
			slog.Int("matched", len(matched)),
		)

		if len(matched) == 0 {
			return NoRecordsMessage, nil
		}
		return e.renderer.Render(ts.ColumnNames(), matched), nil
	})
}

// Update assigns set to every record matching where. A set column that is not
// part of the schema is skipped rather than reported.
func (e *Engine) Update(table string, set Assignment, where Condition) (string, error) {
	ts, err := e.lookup(table)
	if err != nil {
		return "", err
	}
	if set.Column == schema.IDColumn {
		return "", malformedColumn(set.Column, "ID is assigned automatically")
	}

	records, err := e.load(ts)
	if err != nil {
		return "", err
	}

	setCol, known := ts.Column(set.Column)
	var updated []int64
	for _, r := range records {
		if !where.matches(r, ts) || !known {
			continue
		}
		v, err := schema.Coerce(set.Value, setCol.Type)
		if err != nil {
			return "", conversionError(table, setCol, set.Value)
		}
		r[setCol.Name] = v
		updated = append(updated, r.ID())
	}

	if len(updated) == 0 {
		return "", noMatchingRecords(table, where)
	}

	if err := e.save(ts, records); err != nil {
		return "", err
	}

	slog.Debug("records updated", slog.String("table", table), slog.Int("count", len(updated)))
	return fmt.Sprintf("Records with ID=%s in table %q updated.", joinIDs(updated), table), nil
}

// Delete removes every record matching where.
func (e *Engine) Delete(table string, where Condition) (string, error) {
	ts, err := e.lookup(table)
	if err != nil {
		return "", err
	}

	records, err := e.load(ts)
	if err != nil {
		return "", err
	}

	kept := make([]data.Record, 0, len(records))
	for _, r := range records {
		if !where.matches(r, ts) {
			kept = append(kept, r)
		}
	}

	deleted := len(records) - len(kept)
	if deleted == 0 {
		return "", noMatchingRecords(table, where)
	}

	if err := e.save(ts, kept); err != nil {
		return "", err
	}

	slog.Debug("records deleted", slog.String("table", table), slog.Int("count", deleted))
	return fmt.Sprintf("Deleted %d record(s) from table %q.", deleted, table), nil
}

func joinIDs(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ", ")
}
