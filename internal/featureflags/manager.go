// Package featureflags evaluates runtime switches parsed from FEATURE_FLAGS.
package featureflags

import (
	"hash/fnv"
	"sort"
	"strconv"
	"strings"
)

// Flags understood by the application.
const (
	// BlockSelfFollow rejects a user following themselves.
	BlockSelfFollow = "block_self_follow"
	// AnonymousPublicFeed serves the global recent timeline to anonymous callers
	// instead of an empty feed.
	AnonymousPublicFeed = "anonymous_public_feed"
)

// Known lists every flag the application evaluates.
var Known = []string{BlockSelfFollow, AnonymousPublicFeed}

// rule is a parsed flag value: a percentage of users, where 0 is off and 100 is on.
type rule struct {
	percent int
}

// Manager evaluates flags from a comma separated key=value list, for example
// "block_self_follow=on,anonymous_public_feed=25%".
type Manager struct {
	rules map[string]rule
}

// NewManager parses raw. Pairs that are malformed or carry an unknown value are skipped.
func NewManager(raw string) *Manager {
	rules := make(map[string]rule)
	for _, pair := range strings.Split(raw, ",") {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		key = normalize(key)
		if key == "" {
			continue
		}
		if r, ok := parseRule(normalize(value)); ok {
			rules[key] = r
		}
	}
	return &Manager{rules: rules}
}

func parseRule(value string) (rule, bool) {
	switch value {
	case "on", "true", "1":
		return rule{percent: 100}, true
	case "off", "false", "0":
		return rule{percent: 0}, true
	}
	raw, ok := strings.CutSuffix(value, "%")
	if !ok {
		return rule{}, false
	}
	pct, err := strconv.Atoi(raw)
	if err != nil {
		return rule{}, false
	}
	return rule{percent: min(max(pct, 0), 100)}, true
}

// Enabled reports whether name is on for userID. Partial rollouts hash the
// flag name with the user ID, so a user stays in or out across requests.
// Anonymous callers (userID 0) only see fully enabled flags.
func (m *Manager) Enabled(name string, userID uint) bool {
	if m == nil {
		return false
	}
	r, ok := m.rules[normalize(name)]
	switch {
	case !ok || r.percent == 0:
		return false
	case r.percent == 100:
		return true
	case userID == 0:
		return false
	}
	return bucket(name, userID) < r.percent
}

// Names returns the configured flag names in sorted order.
func (m *Manager) Names() []string {
	if m == nil {
		return nil
	}
	names := make([]string, 0, len(m.rules))
	for k := range m.rules {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Snapshot evaluates every known and configured flag for one user.
func (m *Manager) Snapshot(userID uint) map[string]bool {
	out := make(map[string]bool, len(Known))
	for _, name := range append(append([]string{}, Known...), m.Names()...) {
		out[name] = m.Enabled(name, userID)
	}
	return out
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func bucket(name string, userID uint) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(normalize(name) + ":" + strconv.FormatUint(uint64(userID), 10)))
	return int(h.Sum32() % 100)
}
