package extractor

import (
	"context"
	"math"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/iulianpascalau/model-stats-monitor/services/stats/common"
	"github.com/multiversx/mx-chain-core-go/core/check"
)

const numberPattern = `([0-9.eE+-]+)`

const urlTemplateVerb = "%s"

var statsRowPattern = regexp.MustCompile(
	`chute_id:"([^"]+)",name:"([^"]*)",date:"([^"]+)",` +
		`total_requests:` + numberPattern + `,` +
		`total_input_tokens:` + numberPattern + `,` +
		`total_output_tokens:` + numberPattern + `,` +
		`average_tps:` + numberPattern + `,` +
		`average_ttft:` + numberPattern,
)

// ArgsHTMLStats defines the arguments needed to create an HTML statistics extractor
type ArgsHTMLStats struct {
	Fetcher     Fetcher
	URLTemplate string
}

type htmlStats struct {
	fetcher     Fetcher
	urlTemplate string
}

// NewHTMLStats creates a statistics extractor reading the per model statistics page.
// The URL template receives the escaped model ID in place of its single %s placeholder, any other percent
// sequence is kept as written.
func NewHTMLStats(args ArgsHTMLStats) (*htmlStats, error) {
	if check.IfNil(args.Fetcher) {
		return nil, errNilFetcher
	}
	if strings.Count(args.URLTemplate, urlTemplateVerb) != 1 {
		return nil, errInvalidURLTemplate
	}

	return &htmlStats{
		fetcher:     args.Fetcher,
		urlTemplate: args.URLTemplate,
	}, nil
}

// FetchEntityStats fetches the statistics page of one model and returns only that model's rows
func (s *htmlStats) FetchEntityStats(ctx context.Context, entityID string) ([]common.RawObservation, error) {
	body, err := s.fetcher.Fetch(ctx, s.statsURL(entityID))
	if err != nil {
		return nil, err
	}

	observations := FilterByEntity(ExtractObservations(string(body)), entityID)
	log.Debug("stats extracted", "chute_id", entityID, "rows", len(observations))

	return observations, nil
}

// FetchBulkStats fetches the statistics page reached through the seed model and returns the rows of every model
// found on it, grouped by model ID
func (s *htmlStats) FetchBulkStats(ctx context.Context, seedID string) (map[string][]common.RawObservation, error) {
	body, err := s.fetcher.Fetch(ctx, s.statsURL(seedID))
	if err != nil {
		return nil, err
	}

	observations := ExtractObservations(string(body))
	grouped := GroupByEntity(observations)
	log.Debug("bulk stats extracted", "seed", seedID, "rows", len(observations), "models", len(grouped))

	return grouped, nil
}

func (s *htmlStats) statsURL(entityID string) string {
	return strings.Replace(s.urlTemplate, urlTemplateVerb, url.PathEscape(entityID), 1)
}

// ExtractObservations returns all the statistics rows found in the text, in the order they appear.
// Rows with malformed or negative numbers are skipped. No match yields an empty slice.
func ExtractObservations(text string) []common.RawObservation {
	matches := statsRowPattern.FindAllStringSubmatch(text, -1)
	observations := make([]common.RawObservation, 0, len(matches))
	for _, m := range matches {
		obs, ok := parseObservation(m)
		if !ok {
			log.Debug("skipping malformed stats row", "chute_id", m[1], "date", m[3])
			continue
		}

		observations = append(observations, obs)
	}

	return observations
}

func parseObservation(m []string) (common.RawObservation, bool) {
	requests, okRequests := parseCount(m[4])
	inputTokens, okInput := parseCount(m[5])
	outputTokens, okOutput := parseCount(m[6])
	throughput, okThroughput := parseRate(m[7])
	ttft, okTTFT := parseRate(m[8])
	if !(okRequests && okInput && okOutput && okThroughput && okTTFT) {
		return common.RawObservation{}, false
	}

	return common.RawObservation{
		EntityID:         m[1],
		DisplayName:      m[2],
		Date:             m[3],
		RequestCount:     requests,
		InputTokens:      inputTokens,
		OutputTokens:     outputTokens,
		Throughput:       throughput,
		TimeToFirstToken: ttft,
	}, true
}

func parseCount(s string) (int64, bool) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err == nil {
		return n, n >= 0
	}

	// counters are sometimes serialized in scientific notation (1.5e+06)
	f, ok := parseRate(s)
	if !ok || f >= math.MaxInt64 {
		return 0, false
	}

	return int64(math.Round(f)), true
}

func parseRate(s string) (float64, bool) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0, false
	}

	return f, true
}

// FilterByEntity returns the observations belonging to the provided model, preserving their order
func FilterByEntity(observations []common.RawObservation, entityID string) []common.RawObservation {
	filtered := make([]common.RawObservation, 0, len(observations))
	for _, obs := range observations {
		if obs.EntityID == entityID {
			filtered = append(filtered, obs)
		}
	}

	return filtered
}

// GroupByEntity groups the observations by model ID, preserving the encounter order inside each group
func GroupByEntity(observations []common.RawObservation) map[string][]common.RawObservation {
	grouped := make(map[string][]common.RawObservation)
	for _, obs := range observations {
		grouped[obs.EntityID] = append(grouped[obs.EntityID], obs)
	}

	return grouped
}

// IsInterfaceNil returns true if the value under the interface is nil
func (s *htmlStats) IsInterfaceNil() bool {
	return s == nil
}
