package business

import (
	"io"

	"github.com/gocarina/gocsv"
	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"qrmenu-backend/internal/catalog"
	"qrmenu-backend/internal/models"
)

const exportDateLayout = "02/01/2006"

type csvRow struct {
	Name       string `csv:"Nom"`
	Type       string `csv:"Type"`
	Email      string `csv:"Email"`
	Phone      string `csv:"Téléphone"`
	Owner      string `csv:"Propriétaire"`
	Status     string `csv:"Statut"`
	LastUpdate string `csv:"Dernière mise à jour"`
}

// ExportCSV writes the header plus one row per business. Values are quoted
// when needed, so embedded commas survive.
func ExportCSV(w io.Writer, businesses []models.Business, types *catalog.BusinessTypeRegistry) error {
	rows := make([]csvRow, 0, len(businesses))
	for _, b := range businesses {
		rows = append(rows, csvRow{
			Name:       b.Name,
			Type:       types.Get(b.BusinessType).Label,
			Email:      b.Email,
			Phone:      b.Phone,
			Owner:      b.Owner,
			Status:     string(b.Status),
			LastUpdate: b.LastUpdate.Format(exportDateLayout),
		})
	}
	if err := gocsv.Marshal(rows, w); err != nil {
		return errors.Wrap(err, "export csv")
	}
	return nil
}

var xlsxHeaders = []string{
	"Nom", "Type", "Email", "Téléphone", "Propriétaire", "Statut",
	"Abonnement", "Paiement", "Dernier paiement", "Plats", "Scans", "Dernière mise à jour",
}

const xlsxSheet = "Entreprises"

func ExportXLSX(w io.Writer, businesses []models.Business, types *catalog.BusinessTypeRegistry) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", xlsxSheet); err != nil {
		return errors.Wrap(err, "export xlsx: sheet")
	}

	for i, h := range xlsxHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(xlsxSheet, cell, h); err != nil {
			return errors.Wrap(err, "export xlsx: header")
		}
	}

	for r, b := range businesses {
		lastPayment := ""
		if b.LastPayment != nil {
			lastPayment = b.LastPayment.Format(exportDateLayout)
		}
		values := []interface{}{
			b.Name,
			types.Get(b.BusinessType).Label,
			b.Email,
			b.Phone,
			b.Owner,
			string(b.Status),
			b.SubscriptionPackage,
			string(b.PaymentStatus),
			lastPayment,
			b.MenuItems,
			b.TotalScans,
			b.LastUpdate.Format(exportDateLayout),
		}
		for c, v := range values {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := f.SetCellValue(xlsxSheet, cell, v); err != nil {
				return errors.Wrapf(err, "export xlsx: row %d", r+2)
			}
		}
	}

	if err := f.Write(w); err != nil {
		return errors.Wrap(err, "export xlsx: write")
	}
	return nil
}
