package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/daaqui/joyas-bot/internal/models"
)

// SheetDateLayout is the date format of the first column.
const SheetDateLayout = "02/01/2006 15:04:05"

// OrderSheet records sales in an external spreadsheet.
type OrderSheet interface {
	AppendSale(ctx context.Context, sale *models.Sale) error
}

// SheetsService appends order rows to a Google Sheet.
type SheetsService struct {
	values        *sheets.SpreadsheetsValuesService
	spreadsheetID string
	sheetRange    string
	now           func() time.Time
	log           *zap.Logger
}

// NewSheetsService authenticates with a service-account JSON key.
func NewSheetsService(ctx context.Context, credentialsJSON, spreadsheetID, sheetRange string, log *zap.Logger) (*SheetsService, error) {
	if credentialsJSON == "" || spreadsheetID == "" {
		return nil, fmt.Errorf("sheets: missing credentials or sheet id: %w", ErrNotConfigured)
	}
	conf, err := google.JWTConfigFromJSON([]byte(credentialsJSON), sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("sheets: parse credentials: %w", err)
	}
	return NewSheetsServiceWithOptions(ctx, spreadsheetID, sheetRange, log, option.WithHTTPClient(conf.Client(ctx)))
}

// NewSheetsServiceWithOptions builds the service from explicit client options.
func NewSheetsServiceWithOptions(ctx context.Context, spreadsheetID, sheetRange string, log *zap.Logger, opts ...option.ClientOption) (*SheetsService, error) {
	srv, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("sheets: create service: %w", err)
	}
	if sheetRange == "" {
		sheetRange = "Sheet1"
	}
	return &SheetsService{
		values:        srv.Spreadsheets.Values,
		spreadsheetID: spreadsheetID,
		sheetRange:    sheetRange,
		now:           time.Now,
		log:           log,
	}, nil
}

// SaleRow lays a sale out in the sheet's fixed column order.
func SaleRow(sale *models.Sale, at time.Time) []interface{} {
	return []interface{}{
		at.Format(SheetDateLayout),
		sale.ID,
		sale.ProductName,
		sale.Price,
		sale.ShippingType,
		sale.PaymentMethod,
		sale.AdvanceReceived,
		sale.Balance,
		sale.Province,
		sale.District,
		sale.ClientDetails,
		sale.CustomerID,
	}
}

// AppendSale adds one row for the sale.
func (s *SheetsService) AppendSale(ctx context.Context, sale *models.Sale) error {
	row := &sheets.ValueRange{Values: [][]interface{}{SaleRow(sale, s.now())}}
	_, err := s.values.Append(s.spreadsheetID, s.sheetRange, row).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("sheets: append sale %s: %w", sale.ID, err)
	}
	s.log.Info("sale appended to sheet", zap.String("sale_id", sale.ID))
	return nil
}
