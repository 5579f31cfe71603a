package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/tally-dev/tally/internal/categories"
	"github.com/tally-dev/tally/internal/model"
	"github.com/tally-dev/tally/internal/session"
)

// DefaultMaxBytes caps how much of an upload is read into memory.
const DefaultMaxBytes int64 = 10 << 20

var (
	// ErrNoUser is returned when an operation is attempted without a principal.
	ErrNoUser = errors.New("no signed-in user")
	// ErrNothingToCommit is returned by Commit on an empty session.
	ErrNothingToCommit = errors.New("no rows to import")
	// ErrTooLarge is returned when an upload exceeds the configured limit.
	ErrTooLarge = errors.New("CSV file is too large")
	// ErrCommitInProgress is returned when Commit is called again before the
	// previous write has returned.
	ErrCommitInProgress = errors.New("an import is already being saved")
)

// CommitError reports that a commit was refused because rows failed validation.
type CommitError struct {
	Invalid int
	Total   int
}

func (e *CommitError) Error() string {
	return fmt.Sprintf("%d of %d rows have errors; fix them before importing", e.Invalid, e.Total)
}

// Writer persists a set of transactions atomically: all of them or none.
type Writer interface {
	WriteBatch(ctx context.Context, collection string, txns []model.Transaction) ([]string, error)
}

// RowReport pairs a row with its current validation errors.
type RowReport struct {
	Row    *model.EditableRow
	Errors []string
}

// Valid reports whether the row has no errors.
func (r RowReport) Valid() bool { return len(r.Errors) == 0 }

// Options configures a Service.
type Options struct {
	Logger   *log.Logger
	Now      func() time.Time
	MaxBytes int64
}

// Service runs one import session for one transaction kind.
type Service struct {
	profile  categories.Profile
	rows     *session.Store
	logger   *log.Logger
	now      func() time.Time
	maxBytes int64
	source   string

	committing sync.Mutex
}

// NewService creates an import Service for profile.
func NewService(profile categories.Profile, opts Options) *Service {
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = DefaultMaxBytes
	}
	return &Service{
		profile:  profile,
		rows:     session.NewStore(opts.Now),
		logger:   opts.Logger.With("kind", profile.Kind),
		now:      opts.Now,
		maxBytes: opts.MaxBytes,
	}
}

// Profile returns the kind parameters the service was built with.
func (s *Service) Profile() categories.Profile { return s.profile }

// Rows returns the edit store backing the session.
func (s *Service) Rows() *session.Store { return s.rows }

// Source returns the name of the file currently loaded, or "".
func (s *Service) Source() string { return s.source }

// Load reads an uploaded file, tokenizes it, and replaces the session rows.
// On error the session is left as it was.
func (s *Service) Load(name, contentType string, r io.Reader) (*Parsed, error) {
	if err := CheckFile(name, contentType); err != nil {
		return nil, err
	}

	data, err := io.ReadAll(io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	if int64(len(data)) > s.maxBytes {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", ErrTooLarge, name, s.maxBytes)
	}

	parsed, err := Tokenize(string(data))
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", name, err)
	}

	s.rows.FromParsed(parsed.Rows)
	s.source = name
	s.logger.Info("loaded import file", "file", name, "rows", len(parsed.Rows), "dropped", len(parsed.Dropped))
	for _, d := range parsed.Dropped {
		s.logger.Warn("dropped malformed line", "file", name, "line", d.Line, "reason", d.Reason)
	}
	return parsed, nil
}

// Preview validates every session row and returns them in display order.
func (s *Service) Preview() []RowReport {
	rows := s.rows.Rows()
	out := make([]RowReport, len(rows))
	for i, row := range rows {
		out[i] = RowReport{Row: row, Errors: ValidateRow(row, s.profile.Categories)}
	}
	return out
}

// Commit re-validates every row and, only if all pass, writes them as one
// batch to the principal's collection. The session is cleared on success
// and left untouched on any failure.
func (s *Service) Commit(ctx context.Context, p model.Principal, w Writer) (int, error) {
	if strings.TrimSpace(p.UserID) == "" {
		return 0, ErrNoUser
	}
	if !s.committing.TryLock() {
		return 0, ErrCommitInProgress
	}
	defer s.committing.Unlock()

	reports := s.Preview()
	if len(reports) == 0 {
		return 0, ErrNothingToCommit
	}

	invalid := 0
	for _, r := range reports {
		if !r.Valid() {
			invalid++
		}
	}
	if invalid > 0 {
		s.logger.Warn("commit refused", "invalid", invalid, "total", len(reports))
		return 0, &CommitError{Invalid: invalid, Total: len(reports)}
	}

	now := s.now()
	txns := make([]model.Transaction, len(reports))
	for i, r := range reports {
		txn, err := ToTransaction(r.Row, s.profile.Kind, now)
		if err != nil {
			return 0, fmt.Errorf("row %s: %w", r.Row.ID, err)
		}
		txns[i] = txn
	}

	collection := s.profile.CollectionPath(p.UserID)
	if _, err := w.WriteBatch(ctx, collection, txns); err != nil {
		s.logger.Error("batch write failed", "collection", collection, "rows", len(txns), "error", err)
		return 0, fmt.Errorf("saving %d rows: %w", len(txns), err)
	}

	s.logger.Info("import committed", "collection", collection, "rows", len(txns), "file", s.source)
	s.rows.Clear()
	s.source = ""
	return len(txns), nil
}

// ToTransaction converts a validated row into a record of kind. now supplies
// the timestamp for rows without a date.
func ToTransaction(row model.Row, kind model.Kind, now time.Time) (model.Transaction, error) {
	amount, err := parseAmount(row.Value(model.FieldAmount))
	if err != nil {
		return model.Transaction{}, err
	}
	return model.Transaction{
		Name:          strings.TrimSpace(row.Value(model.FieldName)),
		Amount:        amount,
		Category:      strings.TrimSpace(row.Value(model.FieldCategory)),
		Timestamp:     Timestamp(row.Value(model.FieldDate), row.Value(model.FieldTime), now),
		Type:          kind,
		Description:   model.Optional(strings.TrimSpace(row.Value(model.FieldDescription))),
		PaymentMethod: model.Optional(strings.TrimSpace(row.Value(model.FieldPaymentMethod))),
		PaymentID:     model.Optional(strings.TrimSpace(row.Value(model.FieldPaymentID))),
		Status:        model.ParseStatus(strings.TrimSpace(row.Value(model.FieldStatus))),
	}, nil
}
