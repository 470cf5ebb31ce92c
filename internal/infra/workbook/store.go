package workbook

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/gofrs/flock"
	"github.com/google/renameio/v2"
	"github.com/xuri/excelize/v2"
)

const (
	DefaultPadding  = 2
	DefaultMaxWidth = 60
)

// Store is one sheet of an xlsx workbook used as an append-only log. It
// holds an advisory lock on the file until Close.
type Store struct {
	path   string
	sheet  string
	header []string

	padding  int
	maxWidth int

	file    *excelize.File
	lock    *flock.Flock
	nextRow int
}

type Option func(*Store)

func WithPadding(padding int) Option {
	return func(s *Store) {
		s.padding = padding
	}
}

func WithMaxWidth(width int) Option {
	return func(s *Store) {
		s.maxWidth = width
	}
}

// Open loads the workbook at path or creates it, selects sheet (creating it
// if needed) and makes sure header sits in row 1.
func Open(path, sheet string, header []string, opts ...Option) (*Store, error) {
	if len(header) == 0 {
		return nil, errors.New("workbook header must not be empty")
	}

	s := &Store{
		path:     path,
		sheet:    sheet,
		header:   header,
		padding:  DefaultPadding,
		maxWidth: DefaultMaxWidth,
		lock:     flock.New(path + ".lock"),
	}
	for _, opt := range opts {
		opt(s)
	}

	locked, err := s.lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("locking %s: %w", path, err)
	}
	if !locked {
		return nil, fmt.Errorf("%s: %w", path, ErrLocked)
	}

	if err := s.load(); err != nil {
		s.lock.Unlock()
		return nil, err
	}

	return s, nil
}

func (s *Store) load() error {
	_, err := os.Stat(s.path)
	switch {
	case err == nil:
		f, err := excelize.OpenFile(s.path)
		if err != nil {
			return fmt.Errorf("opening workbook %s: %w", s.path, err)
		}
		s.file = f
		if err := s.selectSheet(); err != nil {
			f.Close()
			return err
		}
	case errors.Is(err, fs.ErrNotExist):
		f := excelize.NewFile()
		if err := f.SetSheetName(f.GetSheetName(f.GetActiveSheetIndex()), s.sheet); err != nil {
			f.Close()
			return fmt.Errorf("naming sheet %s: %w", s.sheet, err)
		}
		s.file = f
	default:
		return fmt.Errorf("checking workbook %s: %w", s.path, err)
	}

	if err := s.ensureHeader(); err != nil {
		s.file.Close()
		return err
	}
	return nil
}

func (s *Store) selectSheet() error {
	idx, err := s.file.GetSheetIndex(s.sheet)
	if err != nil {
		return fmt.Errorf("looking up sheet %s: %w", s.sheet, err)
	}
	if idx == -1 {
		idx, err = s.file.NewSheet(s.sheet)
		if err != nil {
			return fmt.Errorf("creating sheet %s: %w", s.sheet, err)
		}
	}
	s.file.SetActiveSheet(idx)
	return nil
}

func (s *Store) ensureHeader() error {
	rows, err := s.file.GetRows(s.sheet)
	if err != nil {
		return fmt.Errorf("reading sheet %s: %w", s.sheet, err)
	}

	s.nextRow = len(rows) + 1
	if len(rows) > 0 && !firstCellEmpty(rows[0]) {
		got := trimRight(rows[0])
		if !equal(got, s.header) {
			return &SchemaMismatchError{Path: s.path, Sheet: s.sheet, Got: got, Want: s.header}
		}
		return nil
	}

	// A1 is empty: the sheet has no header. Anything else in row 1 is
	// data and moves down so the header can take its place.
	if len(rows) > 0 && !blank(rows[0]) {
		if err := s.file.InsertRows(s.sheet, 1, 1); err != nil {
			return fmt.Errorf("making room for header: %w", err)
		}
		s.nextRow++
	}

	if err := s.writeRow(1, toCells(s.header)); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	if s.nextRow < 2 {
		s.nextRow = 2
	}
	return nil
}

// AppendRow writes row below the last used row.
func (s *Store) AppendRow(row []any) error {
	if len(row) != len(s.header) {
		return fmt.Errorf("row has %d columns, header has %d", len(row), len(s.header))
	}
	if err := s.writeRow(s.nextRow, row); err != nil {
		return fmt.Errorf("appending row %d: %w", s.nextRow, err)
	}
	s.nextRow++
	return nil
}

// Rows returns the number of rows in the sheet, header included.
func (s *Store) Rows() int {
	return s.nextRow - 1
}

func (s *Store) Path() string {
	return s.path
}

// Autosize sets every column to the length of its longest cell plus the
// padding, capped at the maximum width.
func (s *Store) Autosize() error {
	rows, err := s.file.GetRows(s.sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return fmt.Errorf("reading sheet %s: %w", s.sheet, err)
	}

	var widths []int
	for _, row := range rows {
		for i, cell := range row {
			if i >= len(widths) {
				widths = append(widths, make([]int, i-len(widths)+1)...)
			}
			if n := utf8.RuneCountInString(cell); n > widths[i] {
				widths[i] = n
			}
		}
	}

	for i, longest := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		width := min(longest+s.padding, s.maxWidth)
		if err := s.file.SetColWidth(s.sheet, col, col, float64(width)); err != nil {
			return fmt.Errorf("sizing column %s: %w", col, err)
		}
	}
	return nil
}

// Persist replaces the file at the store's path with the in-memory
// workbook. Readers see either the old or the new file, never a partial
// write.
func (s *Store) Persist() error {
	pending, err := renameio.NewPendingFile(s.path, renameio.WithPermissions(0o644), renameio.WithExistingPermissions())
	if err != nil {
		return &PersistenceError{Path: s.path, Err: err}
	}
	defer pending.Cleanup()

	if err := s.file.Write(pending); err != nil {
		return &PersistenceError{Path: s.path, Err: err}
	}
	if err := pending.CloseAtomicallyReplace(); err != nil {
		return &PersistenceError{Path: s.path, Err: err}
	}
	return nil
}

// Close releases the workbook and the lock. It does not persist.
func (s *Store) Close() error {
	err := s.file.Close()
	if unlockErr := s.lock.Unlock(); unlockErr != nil && err == nil {
		err = unlockErr
	}
	return err
}

func (s *Store) writeRow(row int, cells []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return s.file.SetSheetRow(s.sheet, cell, &cells)
}

func toCells(values []string) []any {
	cells := make([]any, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return cells
}

func firstCellEmpty(row []string) bool {
	return len(row) == 0 || strings.TrimSpace(row[0]) == ""
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func trimRight(row []string) []string {
	end := len(row)
	for end > 0 && strings.TrimSpace(row[end-1]) == "" {
		end--
	}
	return row[:end]
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if strings.TrimSpace(a[i]) != b[i] {
			return false
		}
	}
	return true
}
