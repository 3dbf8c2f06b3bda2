package sources

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"prospecta/models"
	"prospecta/tools"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"
)

// ScraperAdapter é o backend genérico de scraping: recebe uma URL de
// pesquisa com placeholders e seletores CSS por env, e extrai cards de
// anúncio de qualquer portal sem API. Os seletores específicos de cada
// portal ficam fora do core — aqui só existe o mecanismo.
type ScraperAdapter struct {
	SearchURL    string // template com {location} e {operation}
	CardSelector string
	TitleSel     string
	PriceSel     string
	LocationSel  string
	LinkSel      string
	Timeout      time.Duration
}

func NewScraperAdapter() *ScraperAdapter {
	return &ScraperAdapter{
		SearchURL:    strings.TrimSpace(os.Getenv("SCRAPER_SEARCH_URL")),
		CardSelector: envOr("SCRAPER_CARD_SELECTOR", "article.listing"),
		TitleSel:     envOr("SCRAPER_TITLE_SELECTOR", ".listing-title"),
		PriceSel:     envOr("SCRAPER_PRICE_SELECTOR", ".listing-price"),
		LocationSel:  envOr("SCRAPER_LOCATION_SELECTOR", ".listing-location"),
		LinkSel:      envOr("SCRAPER_LINK_SELECTOR", "a"),
		Timeout:      30 * time.Second,
	}
}

func (a *ScraperAdapter) Name() string { return "scraper" }

func (a *ScraperAdapter) Configured() bool {
	return a.SearchURL != ""
}

func (a *ScraperAdapter) Search(ctx context.Context, params SearchParams) ([]models.Listing, error) {
	target := strings.ReplaceAll(a.SearchURL, "{location}", url.QueryEscape(params.Location))
	target = strings.ReplaceAll(target, "{operation}", operationParam(params.Operation))

	c := colly.NewCollector(
		colly.UserAgent("Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"),
		colly.AllowURLRevisit(),
	)
	c.SetRequestTimeout(a.Timeout)

	var listings []models.Listing
	var scrapeErr error

	c.OnHTML(a.CardSelector, func(e *colly.HTMLElement) {
		if params.MaxItems > 0 && len(listings) >= params.MaxItems {
			return
		}
		listings = append(listings, a.listingFromCard(e, params))
	})

	c.OnError(func(_ *colly.Response, err error) {
		scrapeErr = err
	})

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := c.Visit(target); err != nil && scrapeErr == nil {
			scrapeErr = err
		}
		c.Wait()
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-done:
	}

	if scrapeErr != nil {
		return nil, fmt.Errorf("scrape %s: %w", target, scrapeErr)
	}
	return listings, nil
}

func (a *ScraperAdapter) listingFromCard(e *colly.HTMLElement, params SearchParams) models.Listing {
	sel := e.DOM

	title := text(sel, a.TitleSel)
	priceDisplay := text(sel, a.PriceSel)
	location := text(sel, a.LocationSel)
	if location == "" {
		location = params.Location
	}

	link, _ := sel.Find(a.LinkSel).First().Attr("href")
	price := ParsePrice(priceDisplay)

	return models.Listing{
		Title:        title,
		Price:        price,
		PriceDisplay: tools.FormatEUR(price),
		Location:     location,
		PropertyType: models.NormalizePropertyType(params.PropertyType),
		Source:       a.Name(),
		SourceURL:    e.Request.AbsoluteURL(link),
		Description:  strings.TrimSpace(sel.Text()),
	}
}

func text(sel *goquery.Selection, selector string) string {
	return strings.TrimSpace(sel.Find(selector).First().Text())
}
