package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/pkordes/erj-report/internal/domain"
	"github.com/pkordes/erj-report/internal/repo"
)

// PhonebookSource tells where a Refresh result came from.
type PhonebookSource string

const (
	SourceRemote PhonebookSource = "remote"
	SourceLocal  PhonebookSource = "local"
)

// maxPhonebookBytes caps the size of a remote phonebook download.
const maxPhonebookBytes = 1 << 20

// PhonebookService manages the operational phone directory. The directory
// can be replaced from a CSV upload or refreshed from a remote CSV; when the
// remote is unreachable the stored copy is served instead.
type PhonebookService struct {
	entries repo.PhonebookRepo
	authz   Authorizer
	log     *slog.Logger
	client  *http.Client
	url     string
}

// NewPhonebookService constructs a PhonebookService. url may be empty, in
// which case Refresh always serves the stored copy.
func NewPhonebookService(entries repo.PhonebookRepo, authz Authorizer, logger *slog.Logger, url string) *PhonebookService {
	return &PhonebookService{
		entries: entries,
		authz:   authz,
		log:     orDiscard(logger),
		client:  &http.Client{Timeout: 10 * time.Second},
		url:     url,
	}
}

// WithHTTPClient replaces the client used by Refresh.
func (s *PhonebookService) WithHTTPClient(c *http.Client) *PhonebookService {
	s.client = c
	return s
}

// List returns the stored directory.
func (s *PhonebookService) List(ctx context.Context) ([]domain.PhonebookEntry, error) {
	const op = "service.PhonebookService.List"

	if err := authorize(ctx, s.authz, domain.AccessRequest{Action: domain.ActionPhonebookRead}); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	entries, err := s.entries.Load(ctx)
	if err != nil {
		return nil, storeErr(op, err)
	}
	return entries, nil
}

// Import parses CSV lines "name,role,number,hours" and replaces the
// directory with them.
func (s *PhonebookService) Import(ctx context.Context, r io.Reader) ([]domain.PhonebookEntry, error) {
	const op = "service.PhonebookService.Import"

	if err := authorize(ctx, s.authz, domain.AccessRequest{Action: domain.ActionPhonebookEdit}); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	entries, err := ParsePhonebookCSV(r)
	if err != nil {
		return nil, err
	}
	if err := s.entries.Replace(ctx, entries); err != nil {
		return nil, storeErr(op, err)
	}
	s.log.InfoContext(ctx, "phonebook imported", "entries", len(entries))
	return entries, nil
}

// Refresh downloads the remote CSV and stores it. If no URL is configured or
// the download fails, the stored copy is returned with SourceLocal.
func (s *PhonebookService) Refresh(ctx context.Context) ([]domain.PhonebookEntry, PhonebookSource, error) {
	const op = "service.PhonebookService.Refresh"

	if err := authorize(ctx, s.authz, domain.AccessRequest{Action: domain.ActionPhonebookRead}); err != nil {
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}

	if s.url != "" {
		entries, err := s.fetch(ctx)
		if err == nil {
			if err := s.entries.Replace(ctx, entries); err != nil {
				return nil, "", storeErr(op, err)
			}
			return entries, SourceRemote, nil
		}
		s.log.WarnContext(ctx, "phonebook fetch failed, serving stored copy", "url", s.url, "error", err)
	}

	entries, err := s.entries.Load(ctx)
	if err != nil {
		return nil, "", storeErr(op, err)
	}
	return entries, SourceLocal, nil
}

func (s *PhonebookService) fetch(ctx context.Context) ([]domain.PhonebookEntry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Cache-Control", "no-store")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	return ParsePhonebookCSV(io.LimitReader(resp.Body, maxPhonebookBytes))
}

// ParsePhonebookCSV reads "name,role,number,hours" lines. Blank lines are
// skipped, missing trailing columns are empty, and a leading header row is
// recognised and dropped.
func ParsePhonebookCSV(r io.Reader) ([]domain.PhonebookEntry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	entries := []domain.PhonebookEntry{}
	for line := 1; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, domain.NewFieldError("body", fmt.Sprintf("line %d: %v", line, err))
		}
		col := func(i int) string {
			if i < len(rec) {
				return strings.TrimSpace(rec[i])
			}
			return ""
		}
		if line == 1 && strings.EqualFold(col(0), "name") && strings.EqualFold(col(2), "number") {
			continue
		}
		e := domain.PhonebookEntry{Name: col(0), Role: col(1), Number: col(2), Hours: col(3)}
		if e == (domain.PhonebookEntry{}) {
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}
