package crawl

import (
	"bufio"
	"context"
	"net/http"
	"net/url"
	"strings"
)

// robotsRules holds the Disallow prefixes that apply to the wildcard agent.
// The check is advisory: the crawler logs disallowed URLs but a missing or
// unreachable robots.txt never blocks a crawl.
type robotsRules struct {
	disallow []string
}

// fetchRobots retrieves and parses robots.txt for the seed's host. A fetch
// or parse failure yields empty rules, never an error.
func fetchRobots(ctx context.Context, client *http.Client, seed *url.URL, userAgent string) *robotsRules {
	robotsURL := &url.URL{Scheme: seed.Scheme, Host: seed.Host, Path: "/robots.txt"}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL.String(), nil)
	if err != nil {
		return &robotsRules{}
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return &robotsRules{}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &robotsRules{}
	}

	return parseRobots(resp)
}

// parseRobots extracts Disallow rules from every group that names the
// wildcard agent. A group may list several User-agent lines; the wildcard
// applies if any of them is "*", and a non-agent line ends the agent list.
func parseRobots(resp *http.Response) *robotsRules {
	rules := &robotsRules{}

	scanner := bufio.NewScanner(resp.Body)
	applies := false
	inAgentList := false
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if i := strings.Index(line, "#"); i >= 0 {
			line = strings.TrimSpace(line[:i])
		}
		if line == "" {
			continue
		}

		field, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		field = strings.ToLower(strings.TrimSpace(field))
		value = strings.TrimSpace(value)

		switch field {
		case "user-agent":
			if !inAgentList {
				applies = false
			}
			inAgentList = true
			if value == "*" {
				applies = true
			}
		case "disallow":
			inAgentList = false
			if applies && value != "" {
				rules.disallow = append(rules.disallow, value)
			}
		default:
			inAgentList = false
		}
	}

	return rules
}

// Disallowed reports whether a path falls under a Disallow prefix.
func (r *robotsRules) Disallowed(path string) bool {
	if path == "" {
		path = "/"
	}
	for _, prefix := range r.disallow {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}
