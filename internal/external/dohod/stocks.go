package dohod

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Stock is one asset row from the main dividend table.
type Stock struct {
	Ticker string
	Name   string
	URL    string
}

var tickerRe = regexp.MustCompile(`^[a-zA-Z0-9_\-]+$`)

// header keywords of the main dividend table on the source site
var mainTableKeywords = []string{"актив", "закрытие реестра", "дивиденд"}

// FetchStockList fetches the main page and extracts the unique asset list.
func (c *Client) FetchStockList(ctx context.Context) ([]Stock, error) {
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

	var stocks []Stock
	seen := make(map[string]bool)

	table.Find("tr").Each(func(i int, row *goquery.Selection) {
		if i == 0 {
			return // header
		}
		cells := row.Find("td")
		if cells.Length() < 2 {
			return
		}

		assetCell := cells.Eq(0)
		link := assetCell.Find("a").First()
		href, ok := link.Attr("href")
		if !ok || href == "" {
			return
		}

		name := strings.TrimSpace(assetCell.Text())

		parts := strings.Split(strings.TrimRight(href, "/"), "/")
		ticker := parts[len(parts)-1]
		if ticker == "" {
			ticker = strings.ToLower(strings.ReplaceAll(name, " ", "_"))
		}
		if !tickerRe.MatchString(ticker) {
			return
		}
		if seen[ticker] {
			return
		}
		seen[ticker] = true

		stocks = append(stocks, Stock{
			Ticker: ticker,
			Name:   name,
			URL:    c.resolveURL(href),
		})
	})

	c.log.Info().Int("stocks", len(stocks)).Msg("stock list fetched")

	if len(stocks) == 0 {
		return nil, fmt.Errorf("no stocks found on main page")
	}

	return stocks, nil
}

// findMainTable locates the main dividend table: first by header keywords,
// then by per-asset dividend links, finally the largest table on the page.
func (c *Client) findMainTable(doc *goquery.Document) *goquery.Selection {
	var match *goquery.Selection

	doc.Find("table").EachWithBreak(func(i int, table *goquery.Selection) bool {
		headerText := strings.ToLower(table.Find("tr").First().Text())
		hits := 0
		for _, kw := range mainTableKeywords {
			if strings.Contains(headerText, kw) {
				hits++
			}
		}
		if hits >= 2 {
			match = table
			return false
		}
		return true
	})
	if match != nil {
		return match
	}

	doc.Find("table").EachWithBreak(func(i int, table *goquery.Selection) bool {
		links := 0
		table.Find("a").Each(func(_ int, a *goquery.Selection) {
			if href, ok := a.Attr("href"); ok && strings.Contains(href, "dividend/") {
				links++
			}
		})
		if links > 0 {
			match = table
			return false
		}
		return true
	})
	if match != nil {
		return match
	}

	maxRows := 0
	doc.Find("table").Each(func(i int, table *goquery.Selection) {
		rows := table.Find("tr").Length()
		if rows > maxRows {
			maxRows = rows
			match = table
		}
	})

	return match
}

// resolveURL resolves a possibly relative asset link against the base URL.
func (c *Client) resolveURL(href string) string {
	if strings.HasPrefix(href, "http") {
		return href
	}
	base, err := url.Parse(c.baseURL)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}
