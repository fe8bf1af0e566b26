package classifier

import "strings"

// Destination routes.
const (
	RouteDashboard = "/dashboard"
	RouteBilling   = "/billing"
	RouteInventory = "/inventory/products"
	RouteProfile   = "/profile"
	RouteAnalytics = "/analytics"
)

// NavigationTriggers are the phrases that make an utterance a navigation
// candidate. "open", "show" and "navigate" are also the canonical forms of
// their spoken variants, so "billing kholo" arrives here as "billing open".
var NavigationTriggers = []string{"take me to", "go to", "navigate", "open", "show"}

type destination struct {
	route    string
	keywords []string
}

// Checked in order; the first destination with a keyword inside the target wins.
var destinations = []destination{
	{RouteDashboard, []string{"dash", "home"}},
	{RouteBilling, []string{"bill"}},
	{RouteInventory, []string{"inventory", "stock", "product"}},
	{RouteProfile, []string{"profile", "account"}},
	{RouteAnalytics, []string{"analytic", "report", "sales"}},
}

var triggerTokens = func() [][]string {
	out := make([][]string, len(NavigationTriggers))
	for i, t := range NavigationTriggers {
		out[i] = strings.Fields(t)
	}
	return out
}()

// Navigate resolves a navigation utterance to a route. The target is the text
// after the first trigger, or the text before it when nothing follows
// ("billing open").
func Navigate(text string) (string, bool) {
	tokens := strings.Fields(strings.ToLower(text))
	for i := range tokens {
		for _, trig := range triggerTokens {
			if !hasPrefix(tokens[i:], trig) {
				continue
			}
			target := strings.Join(tokens[i+len(trig):], " ")
			if target == "" {
				target = strings.Join(tokens[:i], " ")
			}
			return Route(target)
		}
	}
	return "", false
}

// Route maps a free-form target name to a destination route.
func Route(target string) (string, bool) {
	target = strings.ToLower(target)
	if strings.TrimSpace(target) == "" {
		return "", false
	}
	for _, d := range destinations {
		for _, kw := range d.keywords {
			if strings.Contains(target, kw) {
				return d.route, true
			}
		}
	}
	return "", false
}

func hasPrefix(tokens, prefix []string) bool {
	if len(tokens) < len(prefix) {
		return false
	}
	for i, p := range prefix {
		if tokens[i] != p {
			return false
		}
	}
	return true
}
