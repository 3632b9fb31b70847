package admin

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"qrmenu-backend/internal/business"
	"qrmenu-backend/internal/catalog"
	"qrmenu-backend/internal/config"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ----------------------------------------
// EXPORT
// ----------------------------------------

func ExportCSVHandler(store *business.Store, types *catalog.BusinessTypeRegistry, logger *logrus.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var buf bytes.Buffer
		if err := business.ExportCSV(&buf, store.List(), types); err != nil {
			config.LogError(logger, "admin", "ExportCSVHandler", "write csv", nil, err)
			return fiber.NewError(fiber.StatusInternalServerError, "Export CSV impossible")
		}
		c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
		c.Set(fiber.HeaderContentDisposition, attachment("csv"))
		return c.Send(buf.Bytes())
	}
}

func ExportXLSXHandler(store *business.Store, types *catalog.BusinessTypeRegistry, logger *logrus.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var buf bytes.Buffer
		if err := business.ExportXLSX(&buf, store.List(), types); err != nil {
			config.LogError(logger, "admin", "ExportXLSXHandler", "write xlsx", nil, err)
			return fiber.NewError(fiber.StatusInternalServerError, "Export Excel impossible")
		}
		c.Set(fiber.HeaderContentType, xlsxContentType)
		c.Set(fiber.HeaderContentDisposition, attachment("xlsx"))
		return c.Send(buf.Bytes())
	}
}

func attachment(ext string) string {
	return fmt.Sprintf(`attachment; filename="entreprises-%s.%s"`, time.Now().Format("2006-01-02"), ext)
}

// ----------------------------------------
// IMPORT
// ----------------------------------------

// POST /api/admin/businesses/import (multipart, champ "file", .csv ou .xlsx)
func ImportBusinessesHandler(store *business.Store, logger *logrus.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fileHeader, err := c.FormFile("file")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Fichier manquant")
		}

		name := strings.ToLower(fileHeader.Filename)
		if !strings.HasSuffix(name, ".csv") && !strings.HasSuffix(name, ".xlsx") {
			return fiber.NewError(fiber.StatusBadRequest, "Seuls les fichiers .csv et .xlsx sont acceptés")
		}

		file, err := fileHeader.Open()
		if err != nil {
			config.LogError(logger, "admin", "ImportBusinessesHandler", "open upload", fileHeader.Filename, err)
			return fiber.NewError(fiber.StatusInternalServerError, "Impossible d'ouvrir le fichier")
		}
		defer file.Close()

		var rows []business.ImportRow
		if strings.HasSuffix(name, ".csv") {
			rows, err = business.ParseImportCSV(file)
		} else {
			rows, err = business.ParseImportXLSX(file)
		}
		if err != nil {
			logger.WithError(err).WithField("file", fileHeader.Filename).Warn("import file unreadable")
			return fiber.NewError(fiber.StatusBadRequest, "Fichier illisible")
		}
		if len(rows) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Le fichier ne contient aucune ligne")
		}

		return c.JSON(store.Import(rows))
	}
}
