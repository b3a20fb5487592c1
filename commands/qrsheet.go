// Package commands holds the app's extra CLI commands.
package commands

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"propertyqr/services"
)

// SheetRow is one line of a qrsheet input CSV.
type SheetRow struct {
	ID   string
	Name string
	URL  string
}

// NewQRSheetCommand returns the "qrsheet" command, which renders a QR sheet
// PDF from a CSV file without a running server.
func NewQRSheetCommand() *cobra.Command {
	settings := services.DefaultExportSettings()
	var (
		in      string
		out     string
		format  string
		baseURL string
	)

	cmd := &cobra.Command{
		Use:   "qrsheet",
		Short: "Renders a printable QR sheet PDF from a CSV of id,name,url rows",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings.PageFormat = services.PageFormat(format)
			if err := settings.Validate(); err != nil {
				return fmt.Errorf("invalid settings: %w", err)
			}

			f, err := os.Open(in)
			if err != nil {
				return err
			}
			defer f.Close()

			rows, err := ReadSheetRows(f, baseURL)
			if err != nil {
				return fmt.Errorf("read %s: %w", in, err)
			}

			items, err := SheetItems(rows, services.DefaultQRPixels)
			if err != nil {
				color.New(color.FgYellow).Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
			}

			progress := func(step string, pct int) {
				fmt.Fprintf(cmd.ErrOrStderr(), "%3d%% %s\n", pct, step)
			}
			result := services.NewGenerator().Generate(items, settings, progress)
			if !result.Success {
				return errors.New(result.Error)
			}

			if err := os.WriteFile(out, result.Document, 0o644); err != nil {
				return err
			}

			color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "Wrote %s: %d items, %s, %s\n",
				out, result.ItemCount, humanize.Bytes(uint64(len(result.Document))),
				time.Duration(result.ProcessingTimeMs)*time.Millisecond)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&in, "in", "", "input CSV with id,name,url columns")
	flags.StringVar(&out, "out", "qr-sheet.pdf", "output PDF path")
	flags.StringVar(&format, "format", string(settings.PageFormat), "page format")
	flags.Float64Var(&settings.MarginMm, "margin", settings.MarginMm, "page margin in mm")
	flags.Float64Var(&settings.QRSizeMm, "qr-size", settings.QRSizeMm, "QR code size in mm")
	flags.IntVar(&settings.ItemsPerRow, "per-row", settings.ItemsPerRow, "items per row")
	flags.BoolVar(&settings.IncludeCutlines, "cutlines", settings.IncludeCutlines, "draw cut lines")
	flags.BoolVar(&settings.IncludeLabels, "labels", settings.IncludeLabels, "draw item names under the codes")
	flags.StringVar(&baseURL, "base-url", "http://127.0.0.1:8090", "base URL for rows without a url")
	cmd.MarkFlagRequired("in")

	return cmd
}

// ReadSheetRows reads CSV rows of id,name,url. A first row whose first cell
// is "id" is treated as a header. Rows without an id get a random UUID and
// rows without a url point at baseURL + "/i/" + id.
func ReadSheetRows(r io.Reader, baseURL string) ([]SheetRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) > 0 && len(records[0]) > 0 && strings.EqualFold(strings.TrimSpace(records[0][0]), "id") {
		records = records[1:]
	}

	rows := make([]SheetRow, 0, len(records))
	for _, rec := range records {
		row := SheetRow{ID: field(rec, 0), Name: field(rec, 1), URL: field(rec, 2)}
		if row.ID == "" && row.Name == "" && row.URL == "" {
			continue
		}
		if row.ID == "" {
			row.ID = uuid.NewString()
		}
		if row.URL == "" {
			row.URL = services.VisitURL(baseURL, row.ID)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// SheetItems encodes a QR bitmap for every row. Rows whose code cannot be
// encoded keep no image; the returned error describes the first failure.
func SheetItems(rows []SheetRow, pixels int) ([]services.QRItem, error) {
	contents := make([]string, len(rows))
	for i, r := range rows {
		contents[i] = r.URL
	}
	images, err := services.EncodeQRCodes(contents, pixels)

	items := make([]services.QRItem, len(rows))
	for i, r := range rows {
		items[i] = services.QRItem{ID: r.ID, Name: r.Name, RasterImage: images[i]}
	}
	return items, err
}

func field(rec []string, i int) string {
	if i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}
