package dashboard

import (
	"errors"
	"sort"

	"arsat/finanzas/internal/dateutils"
	"arsat/finanzas/internal/models"
	"arsat/finanzas/internal/parsererror"
	"arsat/finanzas/internal/report"
	"arsat/finanzas/internal/timeseries"

	"github.com/shopspring/decimal"
)

const monthlySpendSeries = "gasto_mensual"

// CountItem is a label with its row count.
type CountItem struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// AmountItem is a label with its summed amount.
type AmountItem struct {
	Label   string  `json:"label"`
	Total   float64 `json:"total"`
	Display string  `json:"display"`
}

// Tick is a labelled axis value.
type Tick struct {
	Value float64 `json:"value"`
	Label string  `json:"label"`
}

// MonthlyAmount is one point of a monthly chart.
type MonthlyAmount struct {
	MonthEnd string  `json:"month_end"`
	Total    float64 `json:"total"`
	Display  string  `json:"display"`
}

// MonthlyChart is a monthly series ready to plot, or the reason it is empty.
type MonthlyChart struct {
	Points  []MonthlyAmount `json:"points"`
	Ticks   []Tick          `json:"ticks,omitempty"`
	Message string          `json:"message,omitempty"`
}

// AmountStats summarizes the distribution of the non-missing amounts.
type AmountStats struct {
	Count  int     `json:"count"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
}

// OrderRow is a display-formatted purchase order.
type OrderRow struct {
	Fecha               string `json:"fecha"`
	Comprobante         string `json:"comprobante"`
	Proveedor           string `json:"proveedor"`
	DescripcionProducto string `json:"descripcion_producto"`
	Importe             string `json:"importe"`
	Moneda              string `json:"moneda"`
	Gerencia            string `json:"gerencia"`
	Tipocompra          string `json:"tipocompra"`
}

// TransferRow is a display-formatted transfer.
type TransferRow struct {
	Desembolso string `json:"desembolso"`
	Fecha      string `json:"fecha"`
	Importe    string `json:"importe"`
}

// CurrenciesView lists the currencies present in a date window.
type CurrenciesView struct {
	From       string   `json:"from,omitempty"`
	To         string   `json:"to,omitempty"`
	Currencies []string `json:"currencies"`
}

// PurchaseOrderView is the filtered purchase order analysis.
type PurchaseOrderView struct {
	Currency        string       `json:"currency"`
	Symbol          string       `json:"symbol"`
	Currencies      []string     `json:"currencies"`
	Count           int          `json:"count"`
	FirstDate       string       `json:"first_date,omitempty"`
	LastDate        string       `json:"last_date,omitempty"`
	Amounts         AmountStats  `json:"amounts"`
	PurchaseTypes   []CountItem  `json:"purchase_types"`
	ManagementUnits []AmountItem `json:"management_units"`
	Suppliers       []AmountItem `json:"suppliers"`
	Monthly         MonthlyChart `json:"monthly"`
	TopOrders       []OrderRow   `json:"top_orders"`
	Preview         []OrderRow   `json:"preview"`
	Message         string       `json:"message,omitempty"`
}

// TransferView is the filtered transfer analysis.
type TransferView struct {
	Count     int           `json:"count"`
	FirstDate string        `json:"first_date,omitempty"`
	LastDate  string        `json:"last_date,omitempty"`
	Amounts   AmountStats   `json:"amounts"`
	Rows      []TransferRow `json:"rows"`
	Monthly   MonthlyChart  `json:"monthly"`
	Message   string        `json:"message,omitempty"`
}

// CorrelationPoint is one joined month.
type CorrelationPoint struct {
	MonthEnd  string  `json:"month_end"`
	Transfers float64 `json:"transfers"`
	Spend     float64 `json:"spend"`
}

// CorrelationView is the transfer vs ARS spend correlation.
type CorrelationView struct {
	SeriesA     string             `json:"series_a"`
	SeriesB     string             `json:"series_b"`
	Defined     bool               `json:"defined"`
	Coefficient *float64           `json:"coefficient,omitempty"`
	Points      []CorrelationPoint `json:"points"`
	Message     string             `json:"message,omitempty"`
}

// dateWindow selects rows with a valid date inside dr. Rows without a date
// never match.
func dateWindow(t *models.Table, dr timeseries.DateRange) []int {
	keep := timeseries.DateRangeFilter(models.ColumnDate, dr)
	var rows []int
	for i := range t.Rows {
		if keep(t, i) {
			rows = append(rows, i)
		}
	}
	return rows
}

// CurrenciesIn returns the sorted distinct currencies of the windowed rows.
func CurrenciesIn(t *models.Table, dr timeseries.DateRange) []string {
	return t.Subset(dateWindow(t, dr)).DistinctStrings(models.ColumnCurrency)
}

// BuildPurchaseOrderView filters by window then currency and derives the views.
func BuildPurchaseOrderView(t *models.Table, dr timeseries.DateRange, currency string, top int) PurchaseOrderView {
	windowed := t.Subset(dateWindow(t, dr))
	view := PurchaseOrderView{
		Currency:   currency,
		Symbol:     report.CurrencySymbol(currency),
		Currencies: windowed.DistinctStrings(models.ColumnCurrency),
	}

	var rows []int
	for i := range windowed.Rows {
		if windowed.StringAt(i, models.ColumnCurrency) == currency {
			rows = append(rows, i)
		}
	}
	filtered := windowed.Subset(rows)
	view.Count = filtered.Len()
	if view.Count == 0 {
		view.Message = "no purchase orders match the selected filters"
		view.PurchaseTypes = []CountItem{}
		view.ManagementUnits = []AmountItem{}
		view.Suppliers = []AmountItem{}
		view.TopOrders = []OrderRow{}
		view.Preview = []OrderRow{}
		view.Monthly = MonthlyChart{Points: []MonthlyAmount{}, Message: "no rows"}
		return view
	}

	view.FirstDate, view.LastDate = windowBounds(filtered)
	view.Amounts = amountStats(filtered)
	view.PurchaseTypes = countBy(filtered, models.ColumnPurchaseType, TopTypes)
	view.ManagementUnits = sumBy(filtered, models.ColumnManagement, TopSpenders)
	view.Suppliers = sumBy(filtered, models.ColumnSupplier, TopSpenders)
	view.Monthly = monthlyChart(monthlySpendSeries, filtered, view.Symbol)

	for _, i := range largest(filtered, top) {
		view.TopOrders = append(view.TopOrders, orderRow(filtered, i, view.Symbol))
	}
	n := filtered.Len()
	if n > PreviewRows {
		n = PreviewRows
	}
	view.Preview = make([]OrderRow, n)
	for i := 0; i < n; i++ {
		view.Preview[i] = orderRow(filtered, i, view.Symbol)
	}
	return view
}

// BuildTransferView filters by window and derives the views.
func BuildTransferView(t *models.Table, dr timeseries.DateRange) TransferView {
	filtered := t.Subset(dateWindow(t, dr))
	view := TransferView{Count: filtered.Len(), Rows: make([]TransferRow, filtered.Len())}
	if view.Count == 0 {
		view.Message = "no transfers match the selected dates"
		view.Monthly = MonthlyChart{Points: []MonthlyAmount{}, Message: "no rows"}
		return view
	}
	view.FirstDate, view.LastDate = windowBounds(filtered)
	view.Amounts = amountStats(filtered)
	for i := range filtered.Rows {
		view.Rows[i] = TransferRow{
			Desembolso: filtered.StringAt(i, models.ColumnDisbursement),
			Fecha:      report.FormatDate(filtered.DateAt(i, models.ColumnDate)),
			Importe:    report.FormatNullCurrency(filtered.NumberAt(i, models.ColumnAmount), report.SymbolPesos),
		}
	}
	view.Monthly = monthlyChart(models.SeriesTransfers, filtered, report.SymbolPesos)
	return view
}

// BuildCorrelationView correlates monthly transfers with monthly ARS spend.
func BuildCorrelationView(po, tr *models.Table) CorrelationView {
	view := CorrelationView{
		SeriesA: models.SeriesTransfers,
		SeriesB: models.SeriesPurchaseOrdersARS,
		Points:  []CorrelationPoint{},
	}
	transfers, err := timeseries.Aggregate(models.SeriesTransfers, tr, models.ColumnDate, models.ColumnAmount)
	if err != nil {
		view.Message = err.Error()
		return view
	}
	spend, err := timeseries.Aggregate(models.SeriesPurchaseOrdersARS, po, models.ColumnDate, models.ColumnAmount,
		timeseries.CurrencyFilter(models.CurrencyPesos))
	if err != nil {
		view.Message = err.Error()
		return view
	}

	res, err := timeseries.JoinAndCorrelate(transfers, spend)
	for _, p := range res.Points {
		view.Points = append(view.Points, CorrelationPoint{
			MonthEnd:  dateutils.ToISODate(p.MonthEnd),
			Transfers: p.A.InexactFloat64(),
			Spend:     p.B.InexactFloat64(),
		})
	}
	if err != nil {
		view.Message = err.Error()
		return view
	}
	r := res.Coefficient
	view.Defined = true
	view.Coefficient = &r
	return view
}

func windowBounds(t *models.Table) (string, string) {
	dr := timeseries.TableDateRange(t, models.ColumnDate)
	if dr.IsZero() {
		return "", ""
	}
	return dateutils.FormatDayFirst(dr.Start), dateutils.FormatDayFirst(dr.End)
}

func amounts(t *models.Table) []decimal.Decimal {
	var out []decimal.Decimal
	for i := range t.Rows {
		if v := t.NumberAt(i, models.ColumnAmount); v.Valid {
			out = append(out, v.Decimal)
		}
	}
	return out
}

func amountStats(t *models.Table) AmountStats {
	values := amounts(t)
	if len(values) == 0 {
		return AmountStats{}
	}
	sort.Slice(values, func(i, j int) bool { return values[i].LessThan(values[j]) })
	n := len(values)
	median := values[n/2]
	if n%2 == 0 {
		median = values[n/2-1].Add(values[n/2]).Div(decimal.NewFromInt(2))
	}
	return AmountStats{
		Count:  n,
		Min:    values[0].InexactFloat64(),
		Max:    values[n-1].InexactFloat64(),
		Mean:   decimal.Sum(values[0], values[1:]...).Div(decimal.NewFromInt(int64(n))).InexactFloat64(),
		Median: median.InexactFloat64(),
	}
}

// countBy returns the limit most frequent labels; ties are ordered by label.
func countBy(t *models.Table, column string, limit int) []CountItem {
	counts := make(map[string]int)
	for i := range t.Rows {
		counts[t.StringAt(i, column)]++
	}
	items := make([]CountItem, 0, len(counts))
	for label, n := range counts {
		items = append(items, CountItem{Label: label, Count: n})
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Count != items[j].Count {
			return items[i].Count > items[j].Count
		}
		return items[i].Label < items[j].Label
	})
	if len(items) > limit {
		items = items[:limit]
	}
	return items
}

// sumBy returns the limit labels with the largest summed amount; missing
// amounts count as zero and ties are ordered by label.
func sumBy(t *models.Table, column string, limit int) []AmountItem {
	totals := make(map[string]decimal.Decimal)
	for i := range t.Rows {
		label := t.StringAt(i, column)
		v := t.NumberAt(i, models.ColumnAmount)
		total := totals[label]
		if v.Valid {
			total = total.Add(v.Decimal)
		}
		totals[label] = total
	}
	labels := make([]string, 0, len(totals))
	for label := range totals {
		labels = append(labels, label)
	}
	sort.Slice(labels, func(i, j int) bool {
		if c := totals[labels[i]].Cmp(totals[labels[j]]); c != 0 {
			return c > 0
		}
		return labels[i] < labels[j]
	})
	if len(labels) > limit {
		labels = labels[:limit]
	}
	items := make([]AmountItem, len(labels))
	for i, label := range labels {
		items[i] = AmountItem{
			Label:   label,
			Total:   totals[label].InexactFloat64(),
			Display: report.FormatCompact(totals[label], ""),
		}
	}
	return items
}

// largest returns the rows of the n largest amounts, keeping source order
// among equal amounts. Missing amounts are never selected.
func largest(t *models.Table, n int) []int {
	var rows []int
	for i := range t.Rows {
		if t.NumberAt(i, models.ColumnAmount).Valid {
			rows = append(rows, i)
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return t.NumberAt(rows[i], models.ColumnAmount).Decimal.GreaterThan(t.NumberAt(rows[j], models.ColumnAmount).Decimal)
	})
	if len(rows) > n {
		rows = rows[:n]
	}
	return rows
}

func monthlyChart(name string, t *models.Table, symbol string) MonthlyChart {
	chart := MonthlyChart{Points: []MonthlyAmount{}}
	s, err := timeseries.Aggregate(name, t, models.ColumnDate, models.ColumnAmount)
	if err != nil {
		var unavailable *parsererror.AggregationUnavailableError
		if errors.As(err, &unavailable) {
			chart.Message = unavailable.Reason
		} else {
			chart.Message = err.Error()
		}
		return chart
	}
	peak := decimal.Zero
	for _, p := range s.Points {
		chart.Points = append(chart.Points, MonthlyAmount{
			MonthEnd: dateutils.ToISODate(p.MonthEnd),
			Total:    p.Total.InexactFloat64(),
			Display:  report.FormatCurrency(p.Total, symbol),
		})
		if p.Total.GreaterThan(peak) {
			peak = p.Total
		}
	}
	for _, v := range report.TickValues(peak, ChartTicks) {
		chart.Ticks = append(chart.Ticks, Tick{Value: v.InexactFloat64(), Label: report.FormatTick(v, symbol)})
	}
	return chart
}

func orderRow(t *models.Table, i int, symbol string) OrderRow {
	return OrderRow{
		Fecha:               report.FormatDate(t.DateAt(i, models.ColumnDate)),
		Comprobante:         t.StringAt(i, models.ColumnVoucher),
		Proveedor:           t.StringAt(i, models.ColumnSupplier),
		DescripcionProducto: t.StringAt(i, models.ColumnDescription),
		Importe:             report.FormatNullCurrency(t.NumberAt(i, models.ColumnAmount), symbol),
		Moneda:              t.StringAt(i, models.ColumnCurrency),
		Gerencia:            t.StringAt(i, models.ColumnManagement),
		Tipocompra:          t.StringAt(i, models.ColumnPurchaseType),
	}
}
