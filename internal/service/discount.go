package service

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"

	"github.com/pkordes/erj-report/internal/domain"
	"github.com/pkordes/erj-report/internal/repo"
)

// defaultDiscounts is the table served until an operator imports one, and
// what Reset restores.
var defaultDiscounts = []domain.Discount{
	{Code: "37", Name: "Emeryt, rencista", Type: domain.DiscountPercent, Value: "37", Description: "Dwa przejazdy w roku kalendarzowym na podstawie legitymacji emeryta lub rencisty"},
	{Code: "37U", Name: "Uczeń, bilet jednorazowy", Type: domain.DiscountPercent, Value: "37", Description: "Uczniowie szkół podstawowych i ponadpodstawowych do 24 roku życia"},
	{Code: "49", Name: "Uczeń, bilet miesięczny", Type: domain.DiscountPercent, Value: "49", Description: "Bilety miesięczne imienne dla uczniów"},
	{Code: "49N", Name: "Osoba niezdolna do samodzielnej egzystencji", Type: domain.DiscountPercent, Value: "49", Description: "Bilety jednorazowe w pociągach pospiesznych"},
	{Code: "51", Name: "Student, doktorant", Type: domain.DiscountPercent, Value: "51", Description: "Do ukończenia 26 roku życia na podstawie legitymacji studenckiej"},
	{Code: "51K", Name: "Kombatant", Type: domain.DiscountPercent, Value: "51", Description: "Bilety jednorazowe i miesięczne na podstawie legitymacji kombatanta"},
	{Code: "78", Name: "Dziecko do lat 4, osobne miejsce", Type: domain.DiscountPercent, Value: "78", Description: "Gdy dla dziecka zajmowane jest osobne miejsce"},
	{Code: "78I", Name: "Inwalida wojenny", Type: domain.DiscountPercent, Value: "78", Description: "Inwalida wojenny lub wojskowy zaliczony do I grupy"},
	{Code: "93", Name: "Osoba niewidoma niezdolna do samodzielnej egzystencji", Type: domain.DiscountPercent, Value: "93", Description: "Bilety jednorazowe w pociągach osobowych"},
	{Code: "95", Name: "Przewodnik lub opiekun", Type: domain.DiscountPercent, Value: "95", Description: "Towarzyszący osobie niewidomej lub dziecku niepełnosprawnemu"},
	{Code: "100", Name: "Funkcjonariusz Straży Granicznej", Type: domain.DiscountExemption, Value: "100", Description: "Przejazd służbowy na podstawie legitymacji"},
}

// DiscountService serves the table of statutory fare discounts. The table
// can be searched, replaced from a CSV upload and reset to the defaults.
type DiscountService struct {
	discounts repo.DiscountRepo
	authz     Authorizer
	log       *slog.Logger
}

// NewDiscountService constructs a DiscountService. authz and logger may be nil.
func NewDiscountService(discounts repo.DiscountRepo, authz Authorizer, logger *slog.Logger) *DiscountService {
	return &DiscountService{discounts: discounts, authz: authz, log: orDiscard(logger)}
}

// List returns the discounts matching query and typ. An empty typ matches
// every type; otherwise types compare case-insensitively. query is matched
// case-insensitively as a substring of the code, name, description, value
// and type. Always returns a non-nil slice.
func (s *DiscountService) List(ctx context.Context, query, typ string) ([]domain.Discount, error) {
	const op = "service.DiscountService.List"

	if err := authorize(ctx, s.authz, domain.AccessRequest{Action: domain.ActionDiscountRead}); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	all, err := s.discounts.Load(ctx)
	if errors.Is(err, domain.ErrNotFound) {
		all = slices.Clone(defaultDiscounts)
	} else if err != nil {
		return nil, storeErr(op, err)
	}

	q := strings.ToLower(strings.TrimSpace(query))
	t := strings.ToLower(strings.TrimSpace(typ))
	out := []domain.Discount{}
	for _, d := range all {
		if t != "" && strings.ToLower(d.Type) != t {
			continue
		}
		if q != "" && !strings.Contains(haystack(d), q) {
			continue
		}
		out = append(out, d)
	}
	return out, nil
}

func haystack(d domain.Discount) string {
	return strings.ToLower(strings.Join([]string{d.Code, d.Name, d.Description, d.Value, d.Type}, " "))
}

// Import parses CSV lines "code;name;type;value;description" and replaces
// the table with them. A file without a single usable line is rejected and
// the stored table is kept.
func (s *DiscountService) Import(ctx context.Context, r io.Reader) ([]domain.Discount, error) {
	const op = "service.DiscountService.Import"

	if err := authorize(ctx, s.authz, domain.AccessRequest{Action: domain.ActionDiscountEdit}); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	discounts, err := ParseDiscountCSV(r)
	if err != nil {
		return nil, err
	}
	if len(discounts) == 0 {
		return nil, domain.NewFieldError("body", "no valid discount lines")
	}
	if err := s.discounts.Replace(ctx, discounts); err != nil {
		return nil, storeErr(op, err)
	}
	s.log.InfoContext(ctx, "discounts imported", "entries", len(discounts))
	return discounts, nil
}

// Reset restores the default table and returns it.
func (s *DiscountService) Reset(ctx context.Context) ([]domain.Discount, error) {
	const op = "service.DiscountService.Reset"

	if err := authorize(ctx, s.authz, domain.AccessRequest{Action: domain.ActionDiscountEdit}); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	discounts := slices.Clone(defaultDiscounts)
	if err := s.discounts.Replace(ctx, discounts); err != nil {
		return nil, storeErr(op, err)
	}
	s.log.InfoContext(ctx, "discounts reset", "entries", len(discounts))
	return discounts, nil
}

// ParseDiscountCSV reads "code;name;type;value;description" lines. Each
// line is split on ';' if it contains one and on ',' otherwise. Lines with
// fewer than two fields are skipped, a missing type is "percent" and
// missing trailing fields are empty.
func ParseDiscountCSV(r io.Reader) ([]domain.Discount, error) {
	sc := bufio.NewScanner(r)
	out := []domain.Discount{}
	for n := 1; sc.Scan(); n++ {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		cr := csv.NewReader(strings.NewReader(line))
		cr.FieldsPerRecord = -1
		if strings.Contains(line, ";") {
			cr.Comma = ';'
		}
		rec, err := cr.Read()
		if err != nil {
			return nil, domain.NewFieldError("body", fmt.Sprintf("line %d: %v", n, err))
		}
		if len(rec) < 2 {
			continue
		}
		col := func(i int) string {
			if i < len(rec) {
				return strings.TrimSpace(rec[i])
			}
			return ""
		}
		d := domain.Discount{Code: col(0), Name: col(1), Type: col(2), Value: col(3), Description: col(4)}
		if d.Type == "" {
			d.Type = domain.DiscountPercent
		}
		out = append(out, d)
	}
	if err := sc.Err(); err != nil {
		return nil, domain.NewFieldError("body", err.Error())
	}
	return out, nil
}
