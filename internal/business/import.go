package business

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gocarina/gocsv"
	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"qrmenu-backend/internal/models"
)

// ImportRow is one line of an import file. Column names match the export,
// so an exported file can be edited and imported back.
type ImportRow struct {
	Name        string `csv:"Nom"`
	Type        string `csv:"Type"`
	Email       string `csv:"Email"`
	Phone       string `csv:"Téléphone"`
	Owner       string `csv:"Propriétaire"`
	Address     string `csv:"Adresse"`
	Description string `csv:"Description"`
	Package     string `csv:"Abonnement"`
	Status      string `csv:"Statut"`
}

type ImportResult struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors"`
	IDs      []string `json:"ids"`
}

var importValidator = validator.New()

func ParseImportCSV(r io.Reader) ([]ImportRow, error) {
	var rows []ImportRow
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, errors.Wrap(err, "import csv")
	}
	return rows, nil
}

// ParseImportXLSX reads the first sheet. The first row must be a header;
// unknown columns are ignored.
func ParseImportXLSX(r io.Reader) ([]ImportRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, errors.Wrap(err, "import xlsx")
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("import xlsx: no sheet")
	}
	lines, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, errors.Wrap(err, "import xlsx: rows")
	}
	if len(lines) == 0 {
		return nil, nil
	}

	index := make(map[string]int, len(lines[0]))
	for i, h := range lines[0] {
		index[strings.TrimSpace(h)] = i
	}
	cell := func(line []string, name string) string {
		i, ok := index[name]
		if !ok || i >= len(line) {
			return ""
		}
		return strings.TrimSpace(line[i])
	}

	rows := make([]ImportRow, 0, len(lines)-1)
	for _, line := range lines[1:] {
		rows = append(rows, ImportRow{
			Name:        cell(line, "Nom"),
			Type:        cell(line, "Type"),
			Email:       cell(line, "Email"),
			Phone:       cell(line, "Téléphone"),
			Owner:       cell(line, "Propriétaire"),
			Address:     cell(line, "Adresse"),
			Description: cell(line, "Description"),
			Package:     cell(line, "Abonnement"),
			Status:      cell(line, "Statut"),
		})
	}
	return rows, nil
}

// Import adds every valid row and reports the others by line number
// (the header is line 1). Fully blank rows are ignored.
func (s *Store) Import(rows []ImportRow) ImportResult {
	res := ImportResult{Errors: []string{}, IDs: []string{}}

	for i, row := range rows {
		line := i + 2
		if row == (ImportRow{}) {
			continue
		}

		in := models.NewBusiness{
			Name:                strings.TrimSpace(row.Name),
			Address:             strings.TrimSpace(row.Address),
			Phone:               row.Phone,
			Email:               strings.TrimSpace(row.Email),
			Owner:               strings.TrimSpace(row.Owner),
			Description:         strings.TrimSpace(row.Description),
			BusinessType:        s.resolveType(row.Type),
			SubscriptionPackage: s.resolvePackage(row.Package),
			Status:              models.BusinessStatus(strings.TrimSpace(row.Status)),
		}
		if err := importValidator.Struct(in); err != nil {
			res.Skipped++
			res.Errors = append(res.Errors, fmt.Sprintf("ligne %d : %s", line, describe(err)))
			continue
		}

		b := s.Add(in)
		res.Imported++
		res.IDs = append(res.IDs, strconv.FormatInt(b.ID, 10))
	}

	s.logger.WithField("imported", res.Imported).WithField("skipped", res.Skipped).Info("businesses imported")
	return res
}

// resolveType accepts a type key or its label.
func (s *Store) resolveType(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return ""
	}
	if t, ok := s.types.Lookup(v); ok {
		return t.Key
	}
	for _, t := range s.types.List() {
		if strings.EqualFold(t.Label, v) {
			return t.Key
		}
	}
	return v
}

// resolvePackage accepts a package id or its display name.
func (s *Store) resolvePackage(v string) string {
	v = strings.TrimSpace(v)
	for _, p := range s.packages.List() {
		if strings.EqualFold(p.ID, v) || strings.EqualFold(p.Name, v) {
			return p.ID
		}
	}
	return ""
}

func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err.Error()
	}
	switch fe := verrs[0]; fe.Field() {
	case "Name":
		return "nom obligatoire"
	case "Email":
		return fmt.Sprintf("email invalide (%s)", fe.Value())
	default:
		return fmt.Sprintf("champ %s invalide", fe.Field())
	}
}
