package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/mtgbinder/mtgbinder/internal/deck"
)

// DeckRow is one deck entry flattened for CSV export.
type DeckRow struct {
	Quantity        int    `json:"quantity" csv:"Quantity"`
	Name            string `json:"name" csv:"Name"`
	ManaCost        string `json:"mana_cost,omitempty" csv:"Mana Cost"`
	TypeLine        string `json:"type_line" csv:"Type"`
	SetCode         string `json:"set_code" csv:"Set"`
	CollectorNumber string `json:"collector_number" csv:"Number"`
	Rarity          string `json:"rarity" csv:"Rarity"`
}

// DeckExport is the JSON envelope for a deck export.
type DeckExport struct {
	Name       string    `json:"name"`
	Format     string    `json:"format,omitempty"`
	Commander  string    `json:"commander,omitempty"`
	ExportedAt time.Time `json:"exported_at"`
	TotalCards int       `json:"total_cards"`
	Entries    []DeckRow `json:"entries"`
}

var deckHeader = []string{
	"Quantity", "Name", "Mana Cost", "Type", "Set", "Number", "Rarity",
}

// ExportDeck writes the deck to w in the given format. Text format
// produces a standard deck list, commander first.
func ExportDeck(w io.Writer, d *deck.Deck, format Format) error {
	rows := make([]DeckRow, 0, len(d.Entries))
	total := 0
	for _, e := range d.Entries {
		total += e.Quantity
		rows = append(rows, DeckRow{
			Quantity:        e.Quantity,
			Name:            e.Card.Name,
			ManaCost:        e.Card.ManaCost,
			TypeLine:        e.Card.TypeLine,
			SetCode:         e.Card.SetCode,
			CollectorNumber: e.Card.CollectorNumber,
			Rarity:          e.Card.Rarity,
		})
	}

	switch format {
	case FormatJSON:
		data := &DeckExport{
			Name:       d.Name,
			Format:     d.Format,
			ExportedAt: time.Now().UTC(),
			TotalCards: total,
			Entries:    rows,
		}
		if d.Commander != nil {
			data.Commander = d.Commander.Name
		}
		return writeJSON(w, data)
	case FormatText:
		return writeDeckText(w, d, rows)
	default:
		return writeDeckCSV(w, rows)
	}
}

func writeDeckText(w io.Writer, d *deck.Deck, rows []DeckRow) error {
	if d.Commander != nil {
		if _, err := fmt.Fprintf(w, "Commander\n1 %s\n\n", d.Commander.Name); err != nil {
			return err
		}
	}
	if _, err := io.WriteString(w, "Deck\n"); err != nil {
		return err
	}
	for _, row := range rows {
		line := cardListLine(row.Quantity, row.Name, row.SetCode, row.CollectorNumber)
		if _, err := io.WriteString(w, line+"\n"); err != nil {
			return err
		}
	}
	return nil
}

func writeDeckCSV(w io.Writer, rows []DeckRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(deckHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, row := range rows {
		record := []string{
			strconv.Itoa(row.Quantity),
			row.Name,
			row.ManaCost,
			row.TypeLine,
			row.SetCode,
			row.CollectorNumber,
			row.Rarity,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
