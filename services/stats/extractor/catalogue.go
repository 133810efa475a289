package extractor

import (
	"context"
	"regexp"
	"strings"

	"github.com/iulianpascalau/model-stats-monitor/services/stats/common"
	"github.com/multiversx/mx-chain-core-go/core/check"
	logger "github.com/multiversx/mx-chain-logger-go"
	"github.com/tidwall/gjson"
)

// DefaultFamilyWindow is the number of characters inspected after the last catalogue marker
const DefaultFamilyWindow = 2000

var log = logger.GetOrCreate("extractor")

var catalogueMarkerPattern = regexp.MustCompile(`chute_id:"([^"]+)",name:"([^"]*)"`)

// CatalogueFields holds the gjson paths used to read a structured catalogue listing
type CatalogueFields struct {
	ItemsPath   string
	IDPath      string
	NamePath    string
	FamilyPath  string
	FamilyValue string
}

// ArgsJSONCatalogue defines the arguments needed to create a JSON catalogue extractor
type ArgsJSONCatalogue struct {
	Fetcher Fetcher
	URL     string
	Fields  CatalogueFields
}

type jsonCatalogue struct {
	fetcher Fetcher
	url     string
	fields  CatalogueFields
}

// NewJSONCatalogue creates a catalogue extractor that reads a structured JSON listing
func NewJSONCatalogue(args ArgsJSONCatalogue) (*jsonCatalogue, error) {
	if check.IfNil(args.Fetcher) {
		return nil, errNilFetcher
	}
	if len(args.URL) == 0 {
		return nil, errEmptyURL
	}
	if len(args.Fields.ItemsPath) == 0 {
		return nil, errEmptyItemsPath
	}
	if len(args.Fields.IDPath) == 0 {
		return nil, errEmptyIDPath
	}

	return &jsonCatalogue{
		fetcher: args.Fetcher,
		url:     args.URL,
		fields:  args.Fields,
	}, nil
}

// FetchCatalogue fetches the listing and returns the eligible models
func (c *jsonCatalogue) FetchCatalogue(ctx context.Context) ([]common.CatalogueEntry, error) {
	payload, err := c.fetcher.FetchJSON(ctx, c.url)
	if err != nil {
		return nil, err
	}

	entries, err := ParseJSONCatalogue(payload, c.fields)
	if err != nil {
		return nil, err
	}

	log.Debug("catalogue extracted", "strategy", "json", "models", len(entries))

	return entries, nil
}

// ParseJSONCatalogue maps the array found at fields.ItemsPath to catalogue entries.
// Elements without an ID or not matching the family filter are skipped, duplicates keep the first occurrence.
func ParseJSONCatalogue(payload gjson.Result, fields CatalogueFields) ([]common.CatalogueEntry, error) {
	items := payload.Get(fields.ItemsPath)
	if !items.IsArray() {
		return nil, newShapeError(fields.ItemsPath, payload.Raw)
	}

	entries := make([]common.CatalogueEntry, 0)
	seen := make(map[string]struct{})
	items.ForEach(func(_, item gjson.Result) bool {
		id := strings.TrimSpace(item.Get(fields.IDPath).String())
		if len(id) == 0 {
			return true
		}
		if len(fields.FamilyPath) > 0 && item.Get(fields.FamilyPath).String() != fields.FamilyValue {
			return true
		}
		if _, found := seen[id]; found {
			return true
		}
		seen[id] = struct{}{}

		name := ""
		if len(fields.NamePath) > 0 {
			name = item.Get(fields.NamePath).String()
		}
		if len(name) == 0 {
			name = id
		}

		entries = append(entries, common.CatalogueEntry{
			ID:          id,
			DisplayName: name,
		})

		return true
	})

	return entries, nil
}

// ArgsHTMLCatalogue defines the arguments needed to create an HTML catalogue extractor
type ArgsHTMLCatalogue struct {
	Fetcher      Fetcher
	URL          string
	FamilyMarker string
	FamilyWindow int
}

type htmlCatalogue struct {
	fetcher      Fetcher
	url          string
	familyMarker string
	familyWindow int
}

// NewHTMLCatalogue creates a catalogue extractor that scrapes the application page
func NewHTMLCatalogue(args ArgsHTMLCatalogue) (*htmlCatalogue, error) {
	if check.IfNil(args.Fetcher) {
		return nil, errNilFetcher
	}
	if len(args.URL) == 0 {
		return nil, errEmptyURL
	}

	window := args.FamilyWindow
	if window <= 0 {
		window = DefaultFamilyWindow
	}

	return &htmlCatalogue{
		fetcher:      args.Fetcher,
		url:          args.URL,
		familyMarker: args.FamilyMarker,
		familyWindow: window,
	}, nil
}

// FetchCatalogue fetches the application page and returns the eligible models
func (c *htmlCatalogue) FetchCatalogue(ctx context.Context) ([]common.CatalogueEntry, error) {
	body, err := c.fetcher.Fetch(ctx, c.url)
	if err != nil {
		return nil, err
	}

	entries := ExtractCatalogue(string(body), c.familyMarker, c.familyWindow)
	log.Debug("catalogue extracted", "strategy", "html", "length", len(body), "models", len(entries))

	return entries, nil
}

// ExtractCatalogue scans the text for `chute_id:"<id>",name:"<name>"` markers. A model is kept only if the text
// following its marker, up to the next marker or window characters for the last one, contains familyMarker.
// An empty familyMarker keeps every model. Duplicates keep the first occurrence.
func ExtractCatalogue(text string, familyMarker string, window int) []common.CatalogueEntry {
	if window <= 0 {
		window = DefaultFamilyWindow
	}

	matches := catalogueMarkerPattern.FindAllStringSubmatchIndex(text, -1)
	entries := make([]common.CatalogueEntry, 0)
	seen := make(map[string]struct{})
	for i, m := range matches {
		start := m[0]
		end := start + window
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		if end > len(text) {
			end = len(text)
		}

		if len(familyMarker) > 0 && !strings.Contains(text[start:end], familyMarker) {
			continue
		}

		id := text[m[2]:m[3]]
		if _, found := seen[id]; found {
			continue
		}
		seen[id] = struct{}{}

		entries = append(entries, common.CatalogueEntry{
			ID:          id,
			DisplayName: text[m[4]:m[5]],
		})
	}

	log.Trace("catalogue markers scanned", "markers", len(matches), "kept", len(entries))

	return entries
}

// IsInterfaceNil returns true if the value under the interface is nil
func (c *jsonCatalogue) IsInterfaceNil() bool {
	return c == nil
}

// IsInterfaceNil returns true if the value under the interface is nil
func (c *htmlCatalogue) IsInterfaceNil() bool {
	return c == nil
}
