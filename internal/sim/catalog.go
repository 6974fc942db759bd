package sim

import (
	"os"
	"sort"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// defaultEventWeight applies to events the catalog does not know.
const defaultEventWeight = 15

// defaultWeights is the built-in frustration event catalog. Weights are the
// churn-risk points one occurrence adds before patience scaling.
var defaultWeights = map[string]float64{
	"long_wait":                  30,
	"no_cabs_5min":               30,
	"long_wait_3to5min":          10,
	"feature_unavailable":        25,
	"error_encountered":          20,
	"retry_required":             10,
	"unexpected_cost":            15,
	"price_higher_than_expected": 15,
	"poor_quality":               20,
	"lack_of_feedback":           10,
	"driver_cancellation":        25,
	"no_availability":            30,
	"redirect_failure":           20,
	"slow_response":              15,
	"payment_failure":            35,
	"data_loss":                  40,
	"security_concern":           50,
}

// Catalog maps frustration event names to churn-risk weights.
type Catalog struct {
	weights       map[string]float64
	defaultWeight float64
}

// DefaultCatalog returns the built-in event catalog.
func DefaultCatalog() *Catalog {
	return &Catalog{weights: defaultWeights, defaultWeight: defaultEventWeight}
}

type catalogFile struct {
	Events        map[string]float64 `yaml:"events"`
	DefaultWeight *float64           `yaml:"default_weight"`
}

// LoadCatalog reads a yaml catalog from path. File entries are merged over
// the built-in weights so a domain only declares what it adds or overrides.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "sim: read catalog %s", path)
	}

	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, eris.Wrapf(err, "sim: parse catalog %s", path)
	}

	weights := make(map[string]float64, len(defaultWeights)+len(file.Events))
	for k, v := range defaultWeights {
		weights[k] = v
	}
	for k, v := range file.Events {
		weights[k] = v
	}

	c := &Catalog{weights: weights, defaultWeight: defaultEventWeight}
	if file.DefaultWeight != nil {
		c.defaultWeight = *file.DefaultWeight
	}
	return c, nil
}

// Weight returns the churn-risk points for an event, falling back to the
// default weight for unknown events.
func (c *Catalog) Weight(event string) float64 {
	if w, ok := c.weights[event]; ok {
		return w
	}
	return c.defaultWeight
}

// Events returns the known event names, sorted.
func (c *Catalog) Events() []string {
	out := make([]string, 0, len(c.weights))
	for k := range c.weights {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
