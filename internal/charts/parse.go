package charts

import (
	"fmt"
	"net/url"
	"path"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ChartType groups charts by phase of flight.
type ChartType string

const (
	ChartApproach      ChartType = "APP"
	ChartArrival       ChartType = "ARR"
	ChartDeparture     ChartType = "DEP"
	ChartInformational ChartType = "INF"
)

// Link prefixes, compared case-insensitively against href values.
const (
	routePrefix    = "/Pages/Aeronautical%20Information/Aeronautical-charts.aspx?RootFolder="
	documentPrefix = "/Aeronautical Charts/"
	documentSuffix = ".pdf"
)

var (
	icaoPattern = regexp.MustCompile(`\s-\s+(FA[A-Z]{2})|\((FA[A-Z]{2})\)`)

	approachPattern  = regexp.MustCompile(`(?i)vor|apr|rnav|rnp|ils|ndb|gnss`)
	arrivalPattern   = regexp.MustCompile(`(?i)arr`)
	departurePattern = regexp.MustCompile(`(?i)dep`)

	leadingJunk  = regexp.MustCompile(`(?i)^[^a-z0-9]+`)
	trailingJunk = regexp.MustCompile(`(?i)[^a-z0-9]+$`)
	whitespace   = regexp.MustCompile(`\s+`)
)

// Airport is an airport folder found on an index page.
type Airport struct {
	// Route is the href as it appears in the page, used for fetching.
	Route string
	// Name is the decoded route, used for display and ICAO extraction.
	Name string
	// ICAO is empty when the route carries no FAxx code.
	ICAO string
}

// ExtractRoutes returns the distinct airport hrefs in an index page, in
// document order.
func ExtractRoutes(page string) ([]string, error) {
	return extractLinks(page, isRoute)
}

// ExtractAirports returns the airports linked from an index page.
func ExtractAirports(page string) ([]Airport, error) {
	routes, err := ExtractRoutes(page)
	if err != nil {
		return nil, err
	}
	airports := make([]Airport, 0, len(routes))
	for _, route := range routes {
		name, err := url.PathUnescape(route)
		if err != nil {
			name = route
		}
		airports = append(airports, Airport{
			Route: route,
			Name:  name,
			ICAO:  ExtractICAO(name),
		})
	}
	return airports, nil
}

// ExtractICAO returns the first "- FAxx" or "(FAxx)" code in route.
func ExtractICAO(route string) string {
	m := icaoPattern.FindStringSubmatch(route)
	if m == nil {
		return ""
	}
	if m[1] != "" {
		return m[1]
	}
	return m[2]
}

// ExtractDocuments returns the distinct PDF hrefs in an airport page.
func ExtractDocuments(page string) ([]string, error) {
	return extractLinks(page, isDocument)
}

// ChartName derives a file-safe chart name from a document href by dropping
// the airport code and surrounding punctuation.
func ChartName(doc, icao string) string {
	name := path.Base(doc)
	if icao != "" {
		name = strings.Replace(name, icao+"_", "", 1)
		name = strings.Replace(name, icao, "", 1)
	}
	name = leadingJunk.ReplaceAllString(name, "")
	name = trailingJunk.ReplaceAllString(name, "")
	return whitespace.ReplaceAllString(name, "_")
}

// ClassifyChart returns the chart type implied by a chart name. Approach
// keywords win over arrival, arrival over departure.
func ClassifyChart(name string) ChartType {
	switch {
	case approachPattern.MatchString(name):
		return ChartApproach
	case arrivalPattern.MatchString(name):
		return ChartArrival
	case departurePattern.MatchString(name):
		return ChartDeparture
	default:
		return ChartInformational
	}
}

// FileName is the stored name of a document: "<TYPE>.<name>".
func FileName(doc, icao string) string {
	name := ChartName(doc, icao)
	return string(ClassifyChart(name)) + "." + name
}

func isRoute(href string) bool {
	rest, ok := cutPrefixFold(href, routePrefix)
	return ok && rest != "" && !strings.ContainsFunc(rest, unicode.IsSpace)
}

func isDocument(href string) bool {
	rest, ok := cutPrefixFold(href, documentPrefix)
	return ok && len(rest) > len(documentSuffix) && strings.EqualFold(rest[len(rest)-len(documentSuffix):], documentSuffix)
}

func cutPrefixFold(s, prefix string) (string, bool) {
	if len(s) < len(prefix) || !strings.EqualFold(s[:len(prefix)], prefix) {
		return "", false
	}
	return s[len(prefix):], true
}

// extractLinks parses page and returns the distinct href values of <a>
// elements accepted by keep, in document order. Entities in attribute values
// are decoded by the parser.
func extractLinks(page string, keep func(string) bool) ([]string, error) {
	doc, err := html.Parse(strings.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	var links []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == atom.A {
			for _, attr := range n.Attr {
				if attr.Namespace == "" && attr.Key == "href" && keep(attr.Val) {
					links = append(links, attr.Val)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return distinct(links), nil
}

func distinct(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
