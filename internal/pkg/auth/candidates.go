package auth

import "strings"

// maxCandidates caps the synthesized list so the verification loop has
// a bounded worst-case CPU cost per request.
const maxCandidates = 12

// DefaultSuffixes is the fixed set of top-level suffixes used when
// synthesizing candidate emails: commercial plus the country codes the
// platform's schools actually use.
var DefaultSuffixes = []string{"com", "fr", "sn", "org"}

// CandidateRule turns a bare username plus the supplied and actual
// tenant domains into zero or more candidate email addresses. The rule
// list is injected into the chain as configuration so new suffixes can
// be added and audited without touching control flow.
type CandidateRule func(username, suppliedDomain, tenantDomain string) []string

// LiteralEmailRule: a username already containing '@' is used as-is
// and suppresses all synthesis.
func LiteralEmailRule(username, _, _ string) []string {
	if strings.Contains(username, "@") {
		return []string{username}
	}
	return nil
}

// SuppliedDomainRule synthesizes username@<suppliedDomain>.<suffix>
// for every configured suffix.
func SuppliedDomainRule(suffixes []string) CandidateRule {
	return func(username, suppliedDomain, _ string) []string {
		return withSuffixes(username, suppliedDomain, suffixes)
	}
}

// TenantDomainRule synthesizes username@<tenantDomain>.<suffix>, but
// only when the tenant's actual domain differs from the supplied one.
func TenantDomainRule(suffixes []string) CandidateRule {
	return func(username, suppliedDomain, tenantDomain string) []string {
		if tenantDomain == "" || strings.EqualFold(tenantDomain, suppliedDomain) {
			return nil
		}
		return withSuffixes(username, tenantDomain, suffixes)
	}
}

// DefaultRules is the production rule list, in evaluation order.
func DefaultRules() []CandidateRule {
	return []CandidateRule{
		LiteralEmailRule,
		SuppliedDomainRule(DefaultSuffixes),
		TenantDomainRule(DefaultSuffixes),
	}
}

// Candidates runs the rules in order and returns a lowercased,
// deduplicated, capped candidate list. A literal email short-circuits
// the synthesis rules entirely.
func Candidates(rules []CandidateRule, username, suppliedDomain, tenantDomain string) []string {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil
	}

	seen := make(map[string]struct{})
	var out []string
	for _, rule := range rules {
		for _, cand := range rule(username, suppliedDomain, tenantDomain) {
			cand = strings.ToLower(strings.TrimSpace(cand))
			if cand == "" {
				continue
			}
			if _, ok := seen[cand]; ok {
				continue
			}
			seen[cand] = struct{}{}
			out = append(out, cand)
			if len(out) >= maxCandidates {
				return out
			}
		}
		// A literal email is authoritative; do not synthesize around it.
		if strings.Contains(username, "@") && len(out) > 0 {
			return out
		}
	}
	return out
}

func withSuffixes(username, domain string, suffixes []string) []string {
	if strings.Contains(username, "@") {
		return nil
	}
	domain = strings.ToLower(strings.TrimSpace(domain))
	if domain == "" {
		return nil
	}
	out := make([]string, 0, len(suffixes))
	for _, suffix := range suffixes {
		out = append(out, username+"@"+domain+"."+suffix)
	}
	return out
}
