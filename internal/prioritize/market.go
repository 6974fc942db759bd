package prioritize

import (
	"strings"

	"github.com/prodscope/prodscope/internal/model"
)

// marketCategory holds category-level sizing context and the share of the
// addressable population that plausibly hits problems in the category.
type marketCategory struct {
	name        string
	keywords    []string
	penetration float64
	data        model.MarketData
}

var marketCategories = []marketCategory{
	{
		name:        "food & meal planning",
		keywords:    []string{"meal", "food", "recipe", "cook", "grocery", "diet", "nutrition"},
		penetration: 0.35,
		data: model.MarketData{
			Category:      "food & meal planning",
			TAM:           "$12.1B global meal planning and recipe app market",
			SAM:           "$3.4B English-speaking mobile-first segment",
			SOM:           "$85M reachable in first 3 years",
			MarketSizeUSD: 12_100_000_000,
			GrowthRate:    "14% CAGR",
		},
	},
	{
		name:        "health & fitness",
		keywords:    []string{"fitness", "workout", "gym", "exercise", "health", "wellness", "running"},
		penetration: 0.30,
		data: model.MarketData{
			Category:      "health & fitness",
			TAM:           "$19.3B global fitness app market",
			SAM:           "$5.1B subscription fitness segment",
			SOM:           "$120M reachable in first 3 years",
			MarketSizeUSD: 19_300_000_000,
			GrowthRate:    "17% CAGR",
		},
	},
	{
		name:        "productivity",
		keywords:    []string{"productivity", "task", "todo", "note", "calendar", "project", "focus", "time management"},
		penetration: 0.40,
		data: model.MarketData{
			Category:      "productivity",
			TAM:           "$58B global productivity software market",
			SAM:           "$9.8B personal and small-team segment",
			SOM:           "$150M reachable in first 3 years",
			MarketSizeUSD: 58_000_000_000,
			GrowthRate:    "12% CAGR",
		},
	},
	{
		name:        "transportation",
		keywords:    []string{"ride", "cab", "taxi", "driver", "commute", "transport", "delivery"},
		penetration: 0.45,
		data: model.MarketData{
			Category:      "transportation",
			TAM:           "$330B global ride-hailing and delivery market",
			SAM:           "$42B urban on-demand segment",
			SOM:           "$200M reachable in first 3 years",
			MarketSizeUSD: 330_000_000_000,
			GrowthRate:    "10% CAGR",
		},
	},
	{
		name:        "personal finance",
		keywords:    []string{"budget", "finance", "money", "banking", "invest", "payment", "expense"},
		penetration: 0.25,
		data: model.MarketData{
			Category:      "personal finance",
			TAM:           "$1.5B personal finance app market",
			SAM:           "$480M budgeting segment",
			SOM:           "$40M reachable in first 3 years",
			MarketSizeUSD: 1_500_000_000,
			GrowthRate:    "15% CAGR",
		},
	},
	{
		name:        "e-commerce",
		keywords:    []string{"shop", "checkout", "cart", "purchase", "store", "order", "subscription"},
		penetration: 0.50,
		data: model.MarketData{
			Category:      "e-commerce",
			TAM:           "$6.3T global e-commerce market",
			SAM:           "$210B conversion tooling segment",
			SOM:           "$300M reachable in first 3 years",
			MarketSizeUSD: 6_300_000_000_000,
			GrowthRate:    "9% CAGR",
		},
	},
}

var genericMarket = marketCategory{
	name:        "general software",
	penetration: 0.20,
	data: model.MarketData{
		Category:   "general software",
		TAM:        "category-specific sizing unavailable",
		GrowthRate: "n/a",
	},
}

// categorize matches the problem space against the keyword table, falling
// back to a generic category.
func categorize(texts ...string) marketCategory {
	joined := strings.ToLower(strings.Join(texts, " "))
	for _, cat := range marketCategories {
		for _, kw := range cat.keywords {
			if strings.Contains(joined, kw) {
				return cat
			}
		}
	}
	return genericMarket
}

// severityShare is the fraction of category users a pain point of the given
// severity plausibly touches.
func severityShare(s model.Severity) float64 {
	switch s {
	case model.SeverityHigh:
		return 0.5
	case model.SeverityMedium:
		return 0.3
	default:
		return 0.15
	}
}

// estimateReach turns population, category penetration and observed signal
// strength into a quarterly reach figure for RICE.
func estimateReach(cat marketCategory, pp model.PainPoint, totalPopulation int) int {
	freq := float64(pp.Frequency)
	if freq > 10 {
		freq = 10
	}
	frequencyFactor := 0.1 + 0.9*freq/10

	reach := float64(totalPopulation) * cat.penetration * severityShare(pp.Severity) * frequencyFactor
	return int(reach)
}
