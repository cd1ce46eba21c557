package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"troop-fundraiser/models"
)

// SheetValuesInterface is the slice of the Sheets values API the backend needs
type SheetValuesInterface interface {
	// Read returns the data rows of a sheet, header excluded
	Read(ctx context.Context, sheet string, width int) ([][]interface{}, error)
	// Write replaces the content of every listed sheet in a single request
	Write(ctx context.Context, writes []SheetWrite) error
}

// SheetWrite is the new content of one sheet
type SheetWrite struct {
	Sheet  string
	Header []string
	Rows   [][]interface{}
	// Previous is the number of data rows the sheet held before the write.
	// Rows past the new end are blanked.
	Previous int
}

// Values returns the header followed by the rows, each padded to the header width,
// plus blank rows covering whatever the sheet held beyond the new rows.
func (w SheetWrite) Values() [][]interface{} {
	width := len(w.Header)
	total := len(w.Rows)
	if w.Previous > total {
		total = w.Previous
	}

	values := make([][]interface{}, 0, total+1)
	header := make([]interface{}, width)
	for i, h := range w.Header {
		header[i] = h
	}
	values = append(values, header)

	for i := 0; i < total; i++ {
		var row []interface{}
		if i < len(w.Rows) {
			row = w.Rows[i]
		}
		padded := make([]interface{}, width)
		for j := range padded {
			padded[j] = ""
			if j < len(row) && row[j] != nil {
				padded[j] = row[j]
			}
		}
		values = append(values, padded)
	}
	return values
}

// GoogleSheetValues implements SheetValuesInterface with the Google Sheets API
type GoogleSheetValues struct {
	client        *sheets.Service
	spreadsheetID string
}

// NewGoogleSheetValues creates the Sheets client from a Service Account JSON file
func NewGoogleSheetValues(ctx context.Context, credentialsPath, spreadsheetID string) (*GoogleSheetValues, error) {
	client, err := sheets.NewService(ctx, option.WithCredentialsFile(credentialsPath))
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}
	return &GoogleSheetValues{client: client, spreadsheetID: spreadsheetID}, nil
}

func (g *GoogleSheetValues) Read(ctx context.Context, sheet string, width int) ([][]interface{}, error) {
	rng := fmt.Sprintf("%s!A2:%s", sheet, columnLetter(width))
	resp, err := g.client.Spreadsheets.Values.Get(g.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", rng, err)
	}
	return resp.Values, nil
}

// Write overwrites the sheets in place with one values.batchUpdate call, so a failed
// request leaves every sheet as it was.
func (g *GoogleSheetValues) Write(ctx context.Context, writes []SheetWrite) error {
	data := make([]*sheets.ValueRange, 0, len(writes))
	names := make([]string, 0, len(writes))
	for _, w := range writes {
		data = append(data, &sheets.ValueRange{Range: w.Sheet + "!A1", Values: w.Values()})
		names = append(names, w.Sheet)
	}

	_, err := g.client.Spreadsheets.Values.BatchUpdate(g.spreadsheetID, &sheets.BatchUpdateValuesRequest{
		ValueInputOption: "RAW",
		Data:             data,
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", strings.Join(names, ", "), err)
	}
	return nil
}

func columnLetter(n int) string {
	if n <= 0 {
		n = 1
	}
	letters := ""
	for n > 0 {
		n--
		letters = string(rune('A'+n%26)) + letters
		n /= 26
	}
	return letters
}

// SheetsBackend reads and writes the spreadsheet directly through the Sheets API.
// Writes rewrite the affected sheets in one request, so concurrent editors follow last-write-wins.
type SheetsBackend struct {
	values SheetValuesInterface
	mu     sync.Mutex
}

// NewSheetsBackend creates a new SheetsBackend
func NewSheetsBackend(values SheetValuesInterface) *SheetsBackend {
	return &SheetsBackend{values: values}
}

// Ensure SheetsBackend implements DataBackendInterface
var _ DataBackendInterface = (*SheetsBackend)(nil)

func (b *SheetsBackend) Name() string { return "sheets" }

func (b *SheetsBackend) GetScouts(ctx context.Context) ([]models.Scout, error) {
	rows, err := b.readScoutRows(ctx)
	if err != nil {
		return nil, err
	}
	return parsedScouts(rows), nil
}

func (b *SheetsBackend) GetOrders(ctx context.Context) ([]models.Order, error) {
	orderRows, itemRows, err := b.readOrderRows(ctx)
	if err != nil {
		return nil, err
	}
	return parsedOrders(orderRows, itemRows), nil
}

func (b *SheetsBackend) SaveOrder(ctx context.Context, order *models.Order) error {
	return b.mutateOrders(ctx, func(orders []models.Order) ([]models.Order, error) {
		for i := range orders {
			if orders[i].OrderID == order.OrderID {
				orders[i] = *order
				return orders, nil
			}
		}
		return append(orders, *order), nil
	})
}

func (b *SheetsBackend) UpdateOrderStatus(ctx context.Context, orderID string, status models.OrderStatus) error {
	return b.mutateOrders(ctx, func(orders []models.Order) ([]models.Order, error) {
		for i := range orders {
			if orders[i].OrderID == orderID {
				orders[i].Status = status
				return orders, nil
			}
		}
		return nil, models.ErrOrderNotFound
	})
}

func (b *SheetsBackend) DeleteOrder(ctx context.Context, orderID string) error {
	return b.mutateOrders(ctx, func(orders []models.Order) ([]models.Order, error) {
		for i := range orders {
			if orders[i].OrderID == orderID {
				return append(orders[:i], orders[i+1:]...), nil
			}
		}
		return nil, models.ErrOrderNotFound
	})
}

func (b *SheetsBackend) SaveScout(ctx context.Context, scout *models.Scout) error {
	return b.mutateScouts(ctx, func(scouts []models.Scout) ([]models.Scout, error) {
		for i := range scouts {
			if scouts[i].ID == scout.ID {
				scouts[i] = *scout
				return scouts, nil
			}
		}
		return append(scouts, *scout), nil
	})
}

func (b *SheetsBackend) DeleteScout(ctx context.Context, scoutID string) error {
	return b.mutateScouts(ctx, func(scouts []models.Scout) ([]models.Scout, error) {
		for i := range scouts {
			if scouts[i].ID == scoutID {
				return append(scouts[:i], scouts[i+1:]...), nil
			}
		}
		return nil, models.ErrScoutNotFound
	})
}

func (b *SheetsBackend) GetConfig(ctx context.Context) (*models.SiteConfig, error) {
	rows, err := b.values.Read(ctx, SheetConfig, len(ConfigColumns))
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		if cell(row, 0) != ConfigRowKey {
			continue
		}
		var cfg models.SiteConfig
		if err := json.Unmarshal([]byte(cell(row, 1)), &cfg); err != nil {
			return nil, fmt.Errorf("failed to decode config row: %w", err)
		}
		return &cfg, nil
	}
	return nil, nil
}

// SaveConfig replaces the siteConfig row. Other rows of the Config sheet are kept.
func (b *SheetsBackend) SaveConfig(ctx context.Context, cfg *models.SiteConfig) error {
	raw, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	rows, err := b.values.Read(ctx, SheetConfig, len(ConfigColumns))
	if err != nil {
		return err
	}
	configRow := []interface{}{ConfigRowKey, string(raw)}
	out := make([][]interface{}, 0, len(rows)+1)
	replaced := false
	for _, row := range rows {
		if cell(row, 0) == ConfigRowKey && !replaced {
			out = append(out, configRow)
			replaced = true
			continue
		}
		out = append(out, row)
	}
	if !replaced {
		out = append(out, configRow)
	}
	return b.values.Write(ctx, []SheetWrite{{Sheet: SheetConfig, Header: ConfigColumns, Rows: out, Previous: len(rows)}})
}

// scoutRow is a Scouts data row; scout is nil when the row could not be parsed
type scoutRow struct {
	raw   []interface{}
	scout *models.Scout
}

// orderRow is an Orders data row; order is nil when the row could not be parsed
type orderRow struct {
	raw   []interface{}
	order *models.Order
}

// itemRow is an OrderItems data row; item is nil when the row could not be parsed
type itemRow struct {
	raw     []interface{}
	orderID string
	item    *models.OrderItem
}

func (b *SheetsBackend) readScoutRows(ctx context.Context) ([]scoutRow, error) {
	rows, err := b.values.Read(ctx, SheetScouts, len(ScoutColumns))
	if err != nil {
		return nil, err
	}
	out := make([]scoutRow, 0, len(rows))
	for i, row := range rows {
		r := scoutRow{raw: row}
		if !isBlankRow(row) {
			scout, err := ScoutFromRow(row)
			if err != nil {
				log.Printf("⚠️ SheetsBackend: Scouts row %d left as is: %v", i+2, err)
			} else {
				r.scout = &scout
			}
		}
		out = append(out, r)
	}
	return out, nil
}

func (b *SheetsBackend) readOrderRows(ctx context.Context) ([]orderRow, []itemRow, error) {
	rows, err := b.values.Read(ctx, SheetOrders, len(OrderColumns))
	if err != nil {
		return nil, nil, err
	}
	rawItems, err := b.values.Read(ctx, SheetOrderItems, len(OrderItemColumns))
	if err != nil {
		return nil, nil, err
	}

	orders := make([]orderRow, 0, len(rows))
	for i, row := range rows {
		r := orderRow{raw: row}
		if !isBlankRow(row) {
			order, err := OrderFromRow(row)
			if err != nil {
				log.Printf("⚠️ SheetsBackend: Orders row %d left as is: %v", i+2, err)
			} else {
				r.order = &order
			}
		}
		orders = append(orders, r)
	}

	items := make([]itemRow, 0, len(rawItems))
	for i, row := range rawItems {
		r := itemRow{raw: row, orderID: cell(row, 0)}
		if !isBlankRow(row) {
			_, item, err := OrderItemFromRow(row)
			if err != nil {
				log.Printf("⚠️ SheetsBackend: OrderItems row %d left as is: %v", i+2, err)
			} else {
				r.item = &item
			}
		}
		items = append(items, r)
	}
	return orders, items, nil
}

func parsedScouts(rows []scoutRow) []models.Scout {
	scouts := make([]models.Scout, 0, len(rows))
	for _, r := range rows {
		if r.scout != nil {
			scouts = append(scouts, *r.scout)
		}
	}
	return scouts
}

func parsedOrders(rows []orderRow, itemRows []itemRow) []models.Order {
	orders := make([]models.Order, 0, len(rows))
	for _, r := range rows {
		if r.order != nil {
			orders = append(orders, *r.order)
		}
	}
	items := make(map[string][]models.OrderItem)
	for _, r := range itemRows {
		if r.item != nil {
			items[r.orderID] = append(items[r.orderID], *r.item)
		}
	}
	return AttachItems(orders, items)
}

// mutateScouts applies fn to the parsed roster and writes the sheet back.
// Rows that did not parse keep their content and position.
func (b *SheetsBackend) mutateScouts(ctx context.Context, fn func([]models.Scout) ([]models.Scout, error)) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	rows, err := b.readScoutRows(ctx)
	if err != nil {
		return err
	}
	scouts, err := fn(parsedScouts(rows))
	if err != nil {
		return err
	}

	byID := make(map[string]models.Scout, len(scouts))
	for _, s := range scouts {
		byID[s.ID] = s
	}
	written := make(map[string]bool, len(scouts))
	out := make([][]interface{}, 0, len(rows)+1)
	for _, r := range rows {
		if r.scout == nil || written[r.scout.ID] {
			out = append(out, r.raw)
			continue
		}
		if s, ok := byID[r.scout.ID]; ok {
			out = append(out, ScoutToRow(s))
			written[s.ID] = true
		}
	}
	for _, s := range scouts {
		if !written[s.ID] {
			out = append(out, ScoutToRow(s))
			written[s.ID] = true
		}
	}

	return b.values.Write(ctx, []SheetWrite{{Sheet: SheetScouts, Header: ScoutColumns, Rows: out, Previous: len(rows)}})
}

// mutateOrders applies fn to the parsed orders and writes Orders and OrderItems back together.
// Rows that did not parse, and item rows of orders that did not parse, are written back unchanged.
func (b *SheetsBackend) mutateOrders(ctx context.Context, fn func([]models.Order) ([]models.Order, error)) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	orderRows, itemRows, err := b.readOrderRows(ctx)
	if err != nil {
		return err
	}
	known := make(map[string]bool, len(orderRows))
	for _, r := range orderRows {
		if r.order != nil {
			known[r.order.OrderID] = true
		}
	}
	orders, err := fn(parsedOrders(orderRows, itemRows))
	if err != nil {
		return err
	}

	byID := make(map[string]models.Order, len(orders))
	for _, o := range orders {
		byID[o.OrderID] = o
	}

	written := make(map[string]bool, len(orders))
	outOrders := make([][]interface{}, 0, len(orderRows)+1)
	for _, r := range orderRows {
		if r.order == nil || written[r.order.OrderID] {
			outOrders = append(outOrders, r.raw)
			continue
		}
		if o, ok := byID[r.order.OrderID]; ok {
			outOrders = append(outOrders, OrderToRow(o))
			written[o.OrderID] = true
		}
	}
	for _, o := range orders {
		if !written[o.OrderID] {
			outOrders = append(outOrders, OrderToRow(o))
			written[o.OrderID] = true
		}
	}

	itemsWritten := make(map[string]bool, len(orders))
	outItems := make([][]interface{}, 0, len(itemRows)+2)
	for _, r := range itemRows {
		_, live := byID[r.orderID]
		switch {
		case !known[r.orderID]:
			outItems = append(outItems, r.raw)
		case r.item == nil:
			if live {
				outItems = append(outItems, r.raw)
			}
		case live && !itemsWritten[r.orderID]:
			outItems = append(outItems, OrderItemRows(byID[r.orderID])...)
			itemsWritten[r.orderID] = true
		}
	}
	for _, o := range orders {
		if !itemsWritten[o.OrderID] {
			outItems = append(outItems, OrderItemRows(o)...)
			itemsWritten[o.OrderID] = true
		}
	}

	return b.values.Write(ctx, []SheetWrite{
		{Sheet: SheetOrders, Header: OrderColumns, Rows: outOrders, Previous: len(orderRows)},
		{Sheet: SheetOrderItems, Header: OrderItemColumns, Rows: outItems, Previous: len(itemRows)},
	})
}

func isBlankRow(row []interface{}) bool {
	for i := range row {
		if cell(row, i) != "" {
			return false
		}
	}
	return true
}
