package feeds

import (
	"time"

	"github.com/gem-enterprise/gemhub/models"
)

const defaultPollInterval = time.Hour

// DefaultSources is the built-in catalogue used when no database or config override exists.
func DefaultSources() []models.FeedSource {
	defs := []struct {
		name, url string
		category  models.Category
	}{
		{"Krebs on Security", "https://krebsonsecurity.com/feed/", models.CategoryCybersecurity},
		{"The Hacker News", "https://feeds.feedburner.com/TheHackersNews", models.CategoryCybersecurity},
		{"Dark Reading", "https://www.darkreading.com/rss.xml", models.CategoryCybersecurity},
		{"SecurityWeek", "https://feeds.feedburner.com/securityweek", models.CategoryCybersecurity},
		{"Threatpost", "https://threatpost.com/feed/", models.CategoryCybersecurity},
		{"CISA Alerts", "https://www.cisa.gov/uscert/ncas/current-activity.xml", models.CategoryCybersecurity},

		{"Reuters Finance", "https://feeds.reuters.com/reuters/businessNews", models.CategoryFinancial},
		{"Bloomberg Markets", "https://feeds.bloomberg.com/markets/news.rss", models.CategoryFinancial},
		{"Financial Times", "https://www.ft.com/?format=rss&edition=international", models.CategoryFinancial},
		{"Wall Street Journal", "https://feeds.a.dj.com/rss/WSJcomUSBusiness.xml", models.CategoryFinancial},
		{"CoinDesk", "https://www.coindesk.com/arc/outboundfeeds/rss/", models.CategoryFinancial},
		{"Cointelegraph", "https://cointelegraph.com/rss", models.CategoryFinancial},

		{"Inman News", "https://www.inman.com/feed/", models.CategoryRealEstate},
		{"HousingWire", "https://www.housingwire.com/rss/", models.CategoryRealEstate},
	}

	out := make([]models.FeedSource, 0, len(defs))
	for _, d := range defs {
		out = append(out, models.FeedSource{
			Name:         d.name,
			URL:          d.url,
			Category:     d.category,
			Enabled:      true,
			PollInterval: defaultPollInterval,
		})
	}
	return out
}

// DefaultTrustedSources bypass manual review.
var DefaultTrustedSources = []string{"Reuters Finance", "Bloomberg Markets", "CISA Alerts"}

// DefaultChannels maps a category to the broadcast channel names its items go to.
func DefaultChannels() map[models.Category][]string {
	return map[models.Category][]string{
		models.CategoryCybersecurity: {"security"},
		models.CategoryFinancial:     {"client"},
		models.CategoryRealEstate:    {"realestate"},
		models.CategoryGeneral:       {"client"},
	}
}
