package service

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/xuri/excelize/v2"

	"troop-fundraiser/models"
	"troop-fundraiser/repository"
	"troop-fundraiser/utils"
)

// ExportService moves orders and the roster in and out of XLSX workbooks
type ExportService struct {
	orders *OrderService
	scouts *ScoutService
}

// NewExportService creates a new ExportService
func NewExportService(orders *OrderService, scouts *ScoutService) *ExportService {
	return &ExportService{orders: orders, scouts: scouts}
}

// ExportOrders builds a workbook with Orders, OrderItems and Scouts sheets using the storage column layouts
func (s *ExportService) ExportOrders(ctx context.Context) ([]byte, error) {
	orders, err := s.orders.All(ctx)
	if err != nil {
		return nil, err
	}
	scouts, err := s.scouts.List(ctx)
	if err != nil {
		return nil, err
	}
	utils.SortOrders(orders, utils.SortByDate, false)

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), repository.SheetOrders); err != nil {
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}
	for _, name := range []string{repository.SheetOrderItems, repository.SheetScouts} {
		if _, err := f.NewSheet(name); err != nil {
			return nil, fmt.Errorf("failed to create sheet %s: %w", name, err)
		}
	}

	orderRows := make([][]interface{}, 0, len(orders))
	itemRows := make([][]interface{}, 0, len(orders))
	for _, o := range orders {
		orderRows = append(orderRows, repository.OrderToRow(o))
		itemRows = append(itemRows, repository.OrderItemRows(o)...)
	}
	scoutRows := make([][]interface{}, 0, len(scouts))
	for _, sc := range scouts {
		scoutRows = append(scoutRows, repository.ScoutToRow(sc))
	}

	if err := writeSheet(f, repository.SheetOrders, repository.OrderColumns, orderRows); err != nil {
		return nil, err
	}
	if err := writeSheet(f, repository.SheetOrderItems, repository.OrderItemColumns, itemRows); err != nil {
		return nil, err
	}
	if err := writeSheet(f, repository.SheetScouts, repository.ScoutColumns, scoutRows); err != nil {
		return nil, err
	}
	f.SetActiveSheet(0)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	log.Printf("📊 ExportService.ExportOrders: %d orders, %d items, %d scouts", len(orderRows), len(itemRows), len(scoutRows))
	return buf.Bytes(), nil
}

func writeSheet(f *excelize.File, sheet string, header []string, rows [][]interface{}) error {
	headerRow := make([]interface{}, len(header))
	for i, h := range header {
		headerRow[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &headerRow); err != nil {
		return fmt.Errorf("failed to write %s header: %w", sheet, err)
	}

	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	lastHeader, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", lastHeader, style); err != nil {
		return fmt.Errorf("failed to style %s header: %w", sheet, err)
	}
	lastCol := strings.TrimSuffix(lastHeader, "1")
	if err := f.SetColWidth(sheet, "A", lastCol, 18); err != nil {
		return fmt.Errorf("failed to size %s columns: %w", sheet, err)
	}

	for i := range rows {
		start, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, start, &rows[i]); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+2, err)
		}
	}
	return nil
}

// ParseRoster reads scouts from a workbook. The Scouts sheet is used when present, otherwise the first sheet.
// Columns are matched by header name so roster files may omit or reorder columns.
func ParseRoster(r io.Reader) ([]models.Scout, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	for _, name := range f.GetSheetList() {
		if strings.EqualFold(name, repository.SheetScouts) {
			sheet = name
			break
		}
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %s is empty", sheet)
	}

	index := make(map[string]int, len(rows[0]))
	for i, h := range rows[0] {
		index[strings.ToLower(strings.TrimSpace(h))] = i
	}
	if _, ok := index["name"]; !ok {
		return nil, fmt.Errorf("sheet %s has no name column", sheet)
	}
	get := func(row []string, column string) string {
		i, ok := index[strings.ToLower(column)]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	scouts := make([]models.Scout, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if strings.TrimSpace(strings.Join(row, "")) == "" {
			continue
		}
		active := true
		if v := get(row, "active"); v != "" {
			active = utils.ParseBool(v)
		}
		scouts = append(scouts, models.Scout{
			ID:           get(row, "id"),
			Name:         get(row, "name"),
			Slug:         get(row, "slug"),
			Rank:         utils.MapLabelToRank(get(row, "rank")),
			Email:        get(row, "email"),
			ParentName:   get(row, "parentName"),
			ParentEmails: utils.ParseList(get(row, "parentEmails")),
			Active:       active,
		})
	}
	log.Printf("📥 ParseRoster: %d scouts read from sheet %s", len(scouts), sheet)
	return scouts, nil
}

// ImportRoster parses a workbook and upserts its scouts
func (s *ExportService) ImportRoster(ctx context.Context, r io.Reader) (*models.ImportResult, error) {
	scouts, err := ParseRoster(r)
	if err != nil {
		return nil, err
	}
	return s.scouts.Import(ctx, scouts)
}
