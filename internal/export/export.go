// Package export writes collections and decks to portable formats.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/mtgbinder/mtgbinder/internal/collection"
)

// Format represents the export format.
type Format string

const (
	// FormatCSV represents CSV export format.
	FormatCSV Format = "csv"
	// FormatJSON represents JSON export format.
	FormatJSON Format = "json"
	// FormatText represents a plain text card list.
	FormatText Format = "text"
)

// ParseFormat validates a user-supplied format string. An empty string
// defaults to CSV.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case "":
		return FormatCSV, nil
	case FormatCSV:
		return FormatCSV, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatText:
		return FormatText, nil
	default:
		return "", fmt.Errorf("unsupported export format: %s", s)
	}
}

// ContentType returns the MIME type to serve the format with.
func (f Format) ContentType() string {
	switch f {
	case FormatJSON:
		return "application/json"
	case FormatText:
		return "text/plain; charset=utf-8"
	default:
		return "text/csv; charset=utf-8"
	}
}

// Extension returns the file extension for the format.
func (f Format) Extension() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatText:
		return "txt"
	default:
		return "csv"
	}
}

// CollectionRow is one collection entry flattened for CSV export.
type CollectionRow struct {
	Name            string `json:"name" csv:"Name"`
	SetCode         string `json:"set_code" csv:"Set"`
	CollectorNumber string `json:"collector_number" csv:"Number"`
	Quantity        int    `json:"quantity" csv:"Quantity"`
	Condition       string `json:"condition" csv:"Condition"`
	Foil            bool   `json:"foil" csv:"Foil"`
	ForTrade        bool   `json:"for_trade" csv:"For Trade"`
	Rarity          string `json:"rarity" csv:"Rarity"`
	TypeLine        string `json:"type_line" csv:"Type"`
	PriceUSD        string `json:"price_usd,omitempty" csv:"Price USD"`
}

// CollectionExport is the JSON envelope for a collection export.
type CollectionExport struct {
	ExportedAt time.Time       `json:"exported_at"`
	TotalCards int             `json:"total_cards"`
	Entries    []CollectionRow `json:"entries"`
}

var collectionHeader = []string{
	"Name", "Set", "Number", "Quantity", "Condition",
	"Foil", "For Trade", "Rarity", "Type", "Price USD",
}

// ExportCollection writes the entries to w in the given format. Text
// format produces one "4 Lightning Bolt (lea) 161" line per entry.
func ExportCollection(w io.Writer, entries []collection.Entry, format Format) error {
	rows := make([]CollectionRow, 0, len(entries))
	total := 0
	for _, e := range entries {
		total += e.Quantity
		row := CollectionRow{
			Name:            e.Card.Name,
			SetCode:         e.Card.SetCode,
			CollectorNumber: e.Card.CollectorNumber,
			Quantity:        e.Quantity,
			Condition:       string(e.Condition),
			Foil:            e.Foil,
			ForTrade:        e.ForTrade,
			Rarity:          e.Card.Rarity,
			TypeLine:        e.Card.TypeLine,
		}
		if e.Card.Prices.USD != nil {
			row.PriceUSD = *e.Card.Prices.USD
		}
		rows = append(rows, row)
	}

	switch format {
	case FormatJSON:
		return writeJSON(w, &CollectionExport{
			ExportedAt: time.Now().UTC(),
			TotalCards: total,
			Entries:    rows,
		})
	case FormatText:
		for _, row := range rows {
			line := cardListLine(row.Quantity, row.Name, row.SetCode, row.CollectorNumber)
			if _, err := io.WriteString(w, line+"\n"); err != nil {
				return err
			}
		}
		return nil
	default:
		return writeCollectionCSV(w, rows)
	}
}

func writeCollectionCSV(w io.Writer, rows []CollectionRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(collectionHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, row := range rows {
		record := []string{
			row.Name,
			row.SetCode,
			row.CollectorNumber,
			strconv.Itoa(row.Quantity),
			row.Condition,
			strconv.FormatBool(row.Foil),
			strconv.FormatBool(row.ForTrade),
			row.Rarity,
			row.TypeLine,
			row.PriceUSD,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeJSON(w io.Writer, data any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

// cardListLine formats one line of a plain text card list. Set and
// collector number are appended when known so the exact printing
// survives a round trip.
func cardListLine(quantity int, name, setCode, collectorNumber string) string {
	line := fmt.Sprintf("%d %s", quantity, name)
	if setCode != "" {
		line += fmt.Sprintf(" (%s)", setCode)
		if collectorNumber != "" {
			line += " " + collectorNumber
		}
	}
	return line
}
