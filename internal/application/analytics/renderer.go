package analytics

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"time"
	"unicode/utf8"

	domain "github.com/enrolment/backend/internal/domain/analytics"
	"github.com/enrolment/backend/internal/domain/device"
	"github.com/enrolment/backend/internal/domain/identity"
	"github.com/enrolment/backend/internal/domain/payment"
	"github.com/enrolment/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Sheet layout
const (
	SheetName      = "Analytics Report"
	ContentType    = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	headerFill     = "366092"
	maxColumnWidth = 50
	dateTimeLayout = "2006-01-02 15:04"
	missingValue   = "N/A"
	firstDetailRow = 11
)

var (
	userHeaders    = []string{"DNI", "Full Name", "Email", "Phone", "City", "Created Date"}
	deviceHeaders  = []string{"IMEI", "Name", "Brand", "Model", "State", "Created Date"}
	paymentHeaders = []string{"Reference", "Value", "Method", "State", "Date"}
)

// Renderer produces the analytics workbook for a date range
type Renderer struct {
	store domain.RecordStore
	settings
}

// NewRenderer creates a new Renderer reading from store
func NewRenderer(store domain.RecordStore, opts ...Option) *Renderer {
	s := defaultSettings()
	for _, opt := range opts {
		opt(&s)
	}
	return &Renderer{store: store, settings: s}
}

// details are the rows fetched for one report
type details struct {
	customers []identity.User
	vendors   []identity.User
	devices   []device.Device
	payments  []payment.Payment
}

// Render fetches the detail records of the range and writes them into a
// single-sheet workbook
func (r *Renderer) Render(ctx context.Context, req RangeRequest) (report *Report, err error) {
	rng := r.resolve(req)

	ctx, span := telemetry.StartServiceSpan(ctx, "analytics", "render",
		telemetry.WithAttribute(telemetry.SpanAttrStartDate, rng.Start.Format(domain.DayLayout)),
		telemetry.WithAttribute(telemetry.SpanAttrEndDate, rng.End.Format(domain.DayLayout)),
	)
	defer span.End()

	started := time.Now()
	defer func() {
		telemetry.RecordError(span, err)
		r.metrics.RecordReport(ctx, telemetry.ReportKindExport, rng.Days(), req.StoreID != nil, time.Since(started), err)
	}()

	d, err := r.fetch(ctx, rng, req.StoreID)
	if err != nil {
		return nil, err
	}

	buf, err := r.write(rng, d)
	if err != nil {
		return nil, err
	}

	r.logger.Debug("Analytics report rendered",
		zap.String("start_date", rng.Start.Format(domain.DayLayout)),
		zap.String("end_date", rng.End.Format(domain.DayLayout)),
		zap.Int("customers", len(d.customers)),
		zap.Int("vendors", len(d.vendors)),
		zap.Int("devices", len(d.devices)),
		zap.Int("payments", len(d.payments)),
		zap.Int("bytes", buf.Len()),
	)

	return &Report{Filename: ExportFilename(rng), Content: buf}, nil
}

// ExportFilename names the workbook for a range
func ExportFilename(rng domain.DateRange) string {
	return fmt.Sprintf("analytics_%s_%s.xlsx", rng.Start.Format(domain.DayLayout), rng.End.Format(domain.DayLayout))
}

func (r *Renderer) fetch(ctx context.Context, rng domain.DateRange, storeID *uuid.UUID) (details, error) {
	var d details
	from, to := rng.Window()

	customersQ, err := buildUserQuery(r.customerRole, from, to, storeID)
	if err != nil {
		return d, err
	}
	vendorsQ, err := buildUserQuery(r.vendorRole, from, to, storeID)
	if err != nil {
		return d, err
	}
	devicesQ, err := domain.NewQuery(domain.EntityDevice).InWindow(from, to).InStore(storeID).Build()
	if err != nil {
		return d, err
	}
	paymentsQ, err := domain.NewQuery(domain.EntityPayment).InWindow(from, to).InStore(storeID).Build()
	if err != nil {
		return d, err
	}

	if d.customers, err = r.store.FindUsers(ctx, customersQ); err != nil {
		return d, fmt.Errorf("fetch customers: %w", err)
	}
	if d.vendors, err = r.store.FindUsers(ctx, vendorsQ); err != nil {
		return d, fmt.Errorf("fetch vendors: %w", err)
	}
	if d.devices, err = r.store.FindDevices(ctx, devicesQ); err != nil {
		return d, fmt.Errorf("fetch devices: %w", err)
	}
	if d.payments, err = r.store.FindPayments(ctx, paymentsQ); err != nil {
		return d, fmt.Errorf("fetch payments: %w", err)
	}
	return d, nil
}

func (r *Renderer) write(rng domain.DateRange, d details) (buf *bytes.Buffer, err error) {
	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	w, err := newSheetWriter(f, r.location)
	if err != nil {
		return nil, err
	}

	total := decimal.Zero
	for _, p := range d.payments {
		total = total.Add(p.Value)
	}

	w.set("A1", "ANALYTICS REPORT", w.titleStyle)
	w.set("A2", fmt.Sprintf("Period: %s to %s", rng.Start.Format(domain.DayLayout), rng.End.Format(domain.DayLayout)), w.boldStyle)

	w.set("A4", "SUMMARY", w.headerStyle)
	w.set("B4", "", w.headerStyle)
	w.set("A5", "Total Customers:", 0)
	w.set("B5", len(d.customers), 0)
	w.set("A6", "Total Vendors:", 0)
	w.set("B6", len(d.vendors), 0)
	w.set("A7", "Total Devices:", 0)
	w.set("B7", len(d.devices), 0)
	w.set("A8", "Total Payments:", 0)
	w.set("B8", total.InexactFloat64(), 0)

	row := firstDetailRow
	row = w.section(row, "CUSTOMER DETAIL", userHeaders, userRows(d.customers, w.loc))
	row = w.section(row+2, "VENDOR DETAIL", userHeaders, userRows(d.vendors, w.loc))
	row = w.section(row+2, "DEVICE DETAIL", deviceHeaders, w.deviceRows(d.devices))
	w.section(row+2, "PAYMENT DETAIL", paymentHeaders, w.paymentRows(d.payments))

	if w.err != nil {
		return nil, w.err
	}
	if err := w.applyWidths(); err != nil {
		return nil, err
	}
	return f.WriteToBuffer()
}

func userRows(users []identity.User, loc *time.Location) [][]any {
	rows := make([][]any, 0, len(users))
	for i := range users {
		u := &users[i]
		city := u.CityName()
		if city == "" {
			city = missingValue
		}
		rows = append(rows, []any{
			u.DNI,
			u.FullName(),
			u.Email,
			u.PhoneNumber(),
			city,
			u.CreatedAt.In(loc).Format(dateTimeLayout),
		})
	}
	return rows
}

func (w *sheetWriter) deviceRows(devices []device.Device) [][]any {
	rows := make([][]any, 0, len(devices))
	for _, d := range devices {
		rows = append(rows, []any{
			d.IMEI,
			d.Name,
			d.Brand,
			d.Model,
			w.label(string(d.State)),
			d.CreatedAt.In(w.loc).Format(dateTimeLayout),
		})
	}
	return rows
}

func (w *sheetWriter) paymentRows(payments []payment.Payment) [][]any {
	rows := make([][]any, 0, len(payments))
	for _, p := range payments {
		rows = append(rows, []any{
			p.Reference,
			p.Value.InexactFloat64(),
			p.Method,
			w.label(string(p.State)),
			p.Date.In(w.loc).Format(dateTimeLayout),
		})
	}
	return rows
}

// sheetWriter writes cells while tracking the widest content per column.
// The first write error is kept and later writes are skipped.
type sheetWriter struct {
	f           *excelize.File
	loc         *time.Location
	caser       cases.Caser
	widths      map[int]int
	titleStyle  int
	boldStyle   int
	headerStyle int
	err         error
}

func newSheetWriter(f *excelize.File, loc *time.Location) (*sheetWriter, error) {
	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	w := &sheetWriter{
		f:      f,
		loc:    loc,
		caser:  cases.Title(language.Und),
		widths: make(map[int]int),
	}

	var err error
	if w.titleStyle, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 16},
	}); err != nil {
		return nil, fmt.Errorf("title style: %w", err)
	}
	if w.boldStyle, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	}); err != nil {
		return nil, fmt.Errorf("bold style: %w", err)
	}
	if w.headerStyle, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{headerFill}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	}); err != nil {
		return nil, fmt.Errorf("header style: %w", err)
	}
	return w, nil
}

// label renders an enum value as a title-cased label
func (w *sheetWriter) label(v string) string {
	return w.caser.String(v)
}

// set writes value into cell, applying style when non-zero
func (w *sheetWriter) set(cell string, value any, style int) {
	if w.err != nil {
		return
	}
	if err := w.f.SetCellValue(SheetName, cell, value); err != nil {
		w.err = fmt.Errorf("write %s: %w", cell, err)
		return
	}
	if style != 0 {
		if err := w.f.SetCellStyle(SheetName, cell, cell, style); err != nil {
			w.err = fmt.Errorf("style %s: %w", cell, err)
			return
		}
	}
	col, _, err := excelize.CellNameToCoordinates(cell)
	if err != nil {
		w.err = err
		return
	}
	if n := utf8.RuneCountInString(stringify(value)); n > w.widths[col] {
		w.widths[col] = n
	}
}

func (w *sheetWriter) setAt(col, row int, value any, style int) {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		if w.err == nil {
			w.err = err
		}
		return
	}
	w.set(cell, value, style)
}

// section writes a styled title row, a styled header row and the data rows
// starting at row. It returns the last row written.
func (w *sheetWriter) section(row int, title string, headers []string, rows [][]any) int {
	w.setAt(1, row, title, w.headerStyle)
	for col := 2; col <= len(headers); col++ {
		w.setAt(col, row, "", w.headerStyle)
	}
	row++
	for i, h := range headers {
		w.setAt(i+1, row, h, w.headerStyle)
	}
	for _, values := range rows {
		row++
		for i, v := range values {
			w.setAt(i+1, row, v, 0)
		}
	}
	return row
}

// applyWidths sizes every used column to its content, capped at maxColumnWidth
func (w *sheetWriter) applyWidths() error {
	for col, n := range w.widths {
		name, err := excelize.ColumnNumberToName(col)
		if err != nil {
			return err
		}
		if err := w.f.SetColWidth(SheetName, name, name, float64(min(n+2, maxColumnWidth))); err != nil {
			return fmt.Errorf("set width of column %s: %w", name, err)
		}
	}
	return nil
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}
