package dohod

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// PaymentRow is one raw payment line scraped from an asset page or the main
// table. Cells are kept as-is; the normalizer owns all parsing.
type PaymentRow struct {
	Ticker           string
	Name             string
	RecordDate       string
	AnnouncementDate string
	Value            string
	Period           string
	// ForecastHint is set when the row's table context already marks it as a
	// projection (e.g. an annual-summary row without a year).
	ForecastHint bool
}

var (
	cellDateRe = regexp.MustCompile(`\d{2}[./-]\d{2}[./-]\d{4}`)
	cellNumRe  = regexp.MustCompile(`\d+[.,]\d+|\d+`)
	cellYearRe = regexp.MustCompile(`\d{4}`)
)

// detail-table header keywords on the source site
const (
	kwAnnualSummary = "совокупные выплаты" // yearly totals table, ignored
	kwRegistry      = "реестр"             // registry close date
	kwClose         = "закрыт"
	kwDate          = "дата"
	kwYear          = "год"
	kwDividend      = "дивиденд"
	kwAnnounced     = "объявлен"
	kwForecast      = "прогноз"
)

// FetchPayments fetches an asset page and extracts its payment rows. When
// the page yields nothing, the main table row for the ticker is used as a
// fallback.
func (c *Client) FetchPayments(ctx context.Context, stock Stock) ([]PaymentRow, error) {
	body, err := c.fetchHTML(ctx, stock.URL)
	if err != nil {
		return nil, err
	}

	rows, err := ParsePaymentTables(body, stock)
	if err != nil {
		return nil, err
	}

	if len(rows) == 0 {
		c.log.Warn().Str("ticker", stock.Ticker).Msg("no payment tables on asset page, trying main table")
		rows, err = c.fetchMainTableRow(ctx, stock)
		if err != nil {
			return nil, err
		}
	}

	c.log.Debug().
		Str("ticker", stock.Ticker).
		Int("rows", len(rows)).
		Msg("payments fetched")

	return rows, nil
}

// ParsePaymentTables extracts payment rows from an asset page's HTML.
// Exported for fixture-based tests.
func ParsePaymentTables(html string, stock Stock) ([]PaymentRow, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse asset page: %w", err)
	}

	var rows []PaymentRow

	doc.Find("table").Each(func(i int, table *goquery.Selection) {
		headers := headerTexts(table)
		joined := strings.Join(headers, " ")

		switch {
		case strings.Contains(joined, kwAnnualSummary):
			return
		case isDetailedTable(joined):
			rows = append(rows, parseDetailedTable(table, headers, stock)...)
		case isAnnualTable(headers, joined):
			rows = append(rows, parseAnnualTable(table, headers, stock)...)
		default:
			rows = append(rows, parseGenericTable(table, stock)...)
		}
	})

	return rows, nil
}

// headerTexts returns the lowercased header cells of a table.
func headerTexts(table *goquery.Selection) []string {
	var headers []string
	cells := table.Find("th")
	if cells.Length() == 0 {
		cells = table.Find("tr").First().Find("td")
	}
	cells.Each(func(_ int, h *goquery.Selection) {
		headers = append(headers, strings.ToLower(strings.TrimSpace(h.Text())))
	})
	return headers
}

func isDetailedTable(joined string) bool {
	return strings.Contains(joined, kwDate) &&
		(strings.Contains(joined, kwRegistry) || strings.Contains(joined, kwClose))
}

func isAnnualTable(headers []string, joined string) bool {
	return len(headers) <= 3 &&
		strings.Contains(joined, kwYear) &&
		strings.Contains(joined, kwDividend)
}

// headerIndex returns the first header containing any keyword, or fallback.
func headerIndex(headers []string, fallback int, keywords ...string) int {
	for i, h := range headers {
		for _, kw := range keywords {
			if strings.Contains(h, kw) {
				return i
			}
		}
	}
	return fallback
}

// parseDetailedTable handles the per-payment history table (registry close
// date, announcement date, dividend value).
func parseDetailedTable(table *goquery.Selection, headers []string, stock Stock) []PaymentRow {
	recordIdx := headerIndex(headers, 1, kwRegistry, kwClose)
	dividendIdx := headerIndex(headers, 3, kwDividend)
	announceIdx := headerIndex(headers, -1, kwAnnounced)

	var rows []PaymentRow
	table.Find("tr").Each(func(i int, tr *goquery.Selection) {
		if i == 0 {
			return
		}
		cells := tr.Find("td")
		if cells.Length() <= recordIdx || cells.Length() <= dividendIdx {
			return
		}

		recordDate := strings.TrimSpace(cells.Eq(recordIdx).Text())
		if !cellDateRe.MatchString(recordDate) {
			// column guess was wrong for this row, look for a date anywhere
			recordDate = findCell(cells, cellDateRe, -1, false)
			if recordDate == "" {
				return
			}
		}

		value := strings.TrimSpace(cells.Eq(dividendIdx).Text())
		if !cellNumRe.MatchString(value) || cellDateRe.MatchString(value) {
			value = findCell(cells, cellNumRe, recordIdx, true)
		}
		if value == "" {
			return
		}

		var announce string
		if announceIdx >= 0 && announceIdx < cells.Length() {
			announce = strings.TrimSpace(cells.Eq(announceIdx).Text())
		}

		rows = append(rows, PaymentRow{
			Ticker:           stock.Ticker,
			Name:             stock.Name,
			RecordDate:       recordDate,
			AnnouncementDate: announce,
			Value:            value,
			Period:           recordDate, // year comes from the date
		})
	})

	return rows
}

// parseAnnualTable handles the yearly dividend table. Rows without a year
// are future projections; dated rows default to 30 June of the year, the
// site's convention for undated annual payouts.
func parseAnnualTable(table *goquery.Selection, headers []string, stock Stock) []PaymentRow {
	yearIdx := headerIndex(headers, 0, kwYear)
	dividendIdx := headerIndex(headers, 1, kwDividend)

	var rows []PaymentRow
	table.Find("tr").Each(func(i int, tr *goquery.Selection) {
		if i == 0 {
			return
		}
		cells := tr.Find("td")
		if cells.Length() <= yearIdx || cells.Length() <= dividendIdx {
			return
		}

		yearText := strings.TrimSpace(cells.Eq(yearIdx).Text())
		value := strings.TrimSpace(cells.Eq(dividendIdx).Text())
		if !cellNumRe.MatchString(value) {
			return
		}

		year := cellYearRe.FindString(yearText)
		hint := strings.Contains(strings.ToLower(yearText), kwForecast) || year == ""

		var recordDate string
		if year != "" {
			recordDate = "30.06." + year
		}

		rows = append(rows, PaymentRow{
			Ticker:       stock.Ticker,
			Name:         stock.Name,
			RecordDate:   recordDate,
			Value:        value,
			Period:       yearText,
			ForecastHint: hint,
		})
	})

	return rows
}

// parseGenericTable scans unrecognized tables cell by cell for a date and a
// standalone number.
func parseGenericTable(table *goquery.Selection, stock Stock) []PaymentRow {
	var rows []PaymentRow

	table.Find("tr").Each(func(i int, tr *goquery.Selection) {
		if i == 0 {
			return
		}
		cells := tr.Find("td")
		if cells.Length() < 2 {
			return
		}

		recordDate := findCell(cells, cellDateRe, -1, false)
		value := ""
		hint := false
		cells.Each(func(_ int, cell *goquery.Selection) {
			text := strings.TrimSpace(cell.Text())
			lower := strings.ToLower(text)
			if strings.Contains(lower, kwForecast) {
				hint = true
			}
			if value == "" && cellNumRe.MatchString(text) && !cellDateRe.MatchString(text) {
				value = text
			}
		})

		if value == "" {
			return
		}
		if recordDate == "" {
			// need at least a year somewhere in the row
			if cellYearRe.FindString(tr.Text()) == "" {
				return
			}
		}

		rows = append(rows, PaymentRow{
			Ticker:       stock.Ticker,
			Name:         stock.Name,
			RecordDate:   recordDate,
			Value:        value,
			Period:       strings.TrimSpace(tr.Text()),
			ForecastHint: hint,
		})
	})

	return rows
}

// findCell returns the first cell matching re, skipping index skip. With
// excludeDates set, date-bearing cells are passed over (a date always
// matches the number pattern too).
func findCell(cells *goquery.Selection, re *regexp.Regexp, skip int, excludeDates bool) string {
	found := ""
	cells.EachWithBreak(func(i int, cell *goquery.Selection) bool {
		if i == skip {
			return true
		}
		text := strings.TrimSpace(cell.Text())
		if !re.MatchString(text) {
			return true
		}
		if excludeDates && cellDateRe.MatchString(text) {
			return true
		}
		found = text
		return false
	})
	return found
}

// fetchMainTableRow extracts a ticker's row from the main page table
// (period in column 2, value in column 3, registry close in column 8).
func (c *Client) fetchMainTableRow(ctx context.Context, stock Stock) ([]PaymentRow, error) {
	body, err := c.fetchHTML(ctx, c.baseURL)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse main page: %w", err)
	}

	table := c.findMainTable(doc)
	if table == nil {
		return nil, fmt.Errorf("main dividend table not found")
	}

	var rows []PaymentRow
	table.Find("tr").Each(func(i int, tr *goquery.Selection) {
		if i == 0 {
			return
		}
		cells := tr.Find("td")
		if cells.Length() < 9 {
			return
		}

		link := cells.Eq(0).Find("a").First()
		href, ok := link.Attr("href")
		if !ok {
			return
		}
		parts := strings.Split(strings.TrimRight(href, "/"), "/")
		if parts[len(parts)-1] != stock.Ticker {
			return
		}

		rows = append(rows, PaymentRow{
			Ticker:     stock.Ticker,
			Name:       strings.TrimSpace(cells.Eq(0).Text()),
			Period:     strings.TrimSpace(cells.Eq(2).Text()),
			Value:      strings.TrimSpace(cells.Eq(3).Text()),
			RecordDate: strings.TrimSpace(cells.Eq(8).Text()),
		})
	})

	return rows, nil
}
