// Package storage persists normalized tables as CSV snapshots and loads
// them back. Writes are atomic (temp file + fsync + rename) so a failed
// operation never leaves a partial table behind.
package storage

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"time"

	"github.com/swen746/repo-miner/internal/domain"
)

var (
	commitColumns = []string{"sha", "author", "email", "date", "message"}
	issueColumns  = []string{"id", "number", "title", "user", "state", "created_at", "closed_at", "comments", "open_duration_days"}
)

// WriteCommits writes a commit table to path. The header row is emitted
// even for an empty table.
func WriteCommits(path string, records []domain.CommitRecord) error {
	return writeAtomic(path, func(w *csv.Writer) error {
		if err := w.Write(commitColumns); err != nil {
			return err
		}
		for _, rec := range records {
			row := []string{
				optString(rec.SHA),
				optString(rec.Author),
				optString(rec.Email),
				optTime(rec.Date),
				optString(rec.Message),
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
		return nil
	})
}

// ReadCommits loads a commit table previously written by WriteCommits.
// Timestamps are re-parsed so the loaded table compares equal to the one
// that was written.
func ReadCommits(path string) ([]domain.CommitRecord, error) {
	rows, err := readTable(path, commitColumns)
	if err != nil {
		return nil, err
	}
	records := make([]domain.CommitRecord, 0, len(rows))
	for i, row := range rows {
		date, err := parseOptTime(row[3])
		if err != nil {
			return nil, fmt.Errorf("%s: row %d: bad date: %w", path, i+1, err)
		}
		records = append(records, domain.CommitRecord{
			SHA:     parseOptString(row[0]),
			Author:  parseOptString(row[1]),
			Email:   parseOptString(row[2]),
			Date:    date,
			Message: parseOptString(row[4]),
		})
	}
	return records, nil
}

// WriteIssues writes an issue table to path.
func WriteIssues(path string, records []domain.IssueRecord) error {
	return writeAtomic(path, func(w *csv.Writer) error {
		if err := w.Write(issueColumns); err != nil {
			return err
		}
		for _, rec := range records {
			row := []string{
				strconv.FormatInt(rec.ID, 10),
				strconv.Itoa(rec.Number),
				optString(rec.Title),
				optString(rec.User),
				rec.State,
				optTime(rec.CreatedAt),
				optTime(rec.ClosedAt),
				strconv.Itoa(rec.Comments),
				optInt(rec.OpenDurationDays),
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
		return nil
	})
}

// ReadIssues loads an issue table previously written by WriteIssues.
func ReadIssues(path string) ([]domain.IssueRecord, error) {
	rows, err := readTable(path, issueColumns)
	if err != nil {
		return nil, err
	}
	records := make([]domain.IssueRecord, 0, len(rows))
	for i, row := range rows {
		rec, err := parseIssueRow(row)
		if err != nil {
			return nil, fmt.Errorf("%s: row %d: %w", path, i+1, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func parseIssueRow(row []string) (domain.IssueRecord, error) {
	var rec domain.IssueRecord
	id, err := strconv.ParseInt(row[0], 10, 64)
	if err != nil {
		return rec, fmt.Errorf("bad id: %w", err)
	}
	number, err := strconv.Atoi(row[1])
	if err != nil {
		return rec, fmt.Errorf("bad number: %w", err)
	}
	createdAt, err := parseOptTime(row[5])
	if err != nil {
		return rec, fmt.Errorf("bad created_at: %w", err)
	}
	closedAt, err := parseOptTime(row[6])
	if err != nil {
		return rec, fmt.Errorf("bad closed_at: %w", err)
	}
	comments, err := strconv.Atoi(row[7])
	if err != nil {
		return rec, fmt.Errorf("bad comments: %w", err)
	}
	duration, err := parseOptInt(row[8])
	if err != nil {
		return rec, fmt.Errorf("bad open_duration_days: %w", err)
	}
	return domain.IssueRecord{
		ID:               id,
		Number:           number,
		Title:            parseOptString(row[2]),
		User:             parseOptString(row[3]),
		State:            row[4],
		CreatedAt:        createdAt,
		ClosedAt:         closedAt,
		Comments:         comments,
		OpenDurationDays: duration,
	}, nil
}

// writeAtomic writes CSV content to a temp file in the destination
// directory, fsyncs it and renames it into place. Either the full table
// lands at path or the previous state is untouched.
func writeAtomic(path string, write func(w *csv.Writer) error) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", path, err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	w := csv.NewWriter(tmp)
	if err = write(w); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	w.Flush()
	if err = w.Error(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("failed to sync %s: %w", path, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file for %s: %w", path, err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}

// readTable opens a CSV file, checks the header against the expected column
// set and returns the data rows.
func readTable(path string, columns []string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header of %s: %w", path, err)
	}
	if !slices.Equal(header, columns) {
		return nil, fmt.Errorf("%s: unexpected header %v, want %v", path, header, columns)
	}

	var rows [][]string
	for {
		row, err := r.Read()
		if err == io.EOF {
			return rows, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		rows = append(rows, row)
	}
}

// Nullable cells serialize as empty strings; empty and nil collapse on
// round-trip.

func optString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func parseOptString(cell string) *string {
	if cell == "" {
		return nil
	}
	return &cell
}

func optTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}

func parseOptTime(cell string) (*time.Time, error) {
	if cell == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, cell)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func optInt(n *int) string {
	if n == nil {
		return ""
	}
	return strconv.Itoa(*n)
}

func parseOptInt(cell string) (*int, error) {
	if cell == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(cell)
	if err != nil {
		return nil, err
	}
	return &n, nil
}
