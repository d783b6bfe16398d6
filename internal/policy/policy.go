package policy

import (
	"encoding/json"
	"os"
	"strconv"

	"go.uber.org/zap"
)

// Policy holds the set of user IDs allowed to be tracked. It is loaded once
// at startup and never mutated afterwards.
type Policy struct {
	allowed map[int64]struct{}
}

// allowFile mirrors the allow-list file: {"allowed_users": [..]}. IDs may be
// stored as numbers or numeric strings; both forms are accepted. Raw messages
// keep full precision for 64-bit snowflakes.
type allowFile struct {
	AllowedUsers []json.RawMessage `json:"allowed_users"`
}

// Load reads the allow-list from path. A missing or corrupt file degrades to
// an empty policy (every feature disabled) rather than failing startup.
func Load(path string, log *zap.Logger) *Policy {
	p := &Policy{allowed: make(map[int64]struct{})}

	raw, err := os.ReadFile(path)
	if err != nil {
		log.Warn("allow-list not readable, starting with empty policy",
			zap.String("path", path), zap.Error(err))
		return p
	}

	var f allowFile
	if err := json.Unmarshal(raw, &f); err != nil {
		log.Warn("allow-list corrupt, starting with empty policy",
			zap.String("path", path), zap.Error(err))
		return p
	}

	for _, raw := range f.AllowedUsers {
		s := string(raw)
		if unquoted, err := strconv.Unquote(s); err == nil {
			s = unquoted
		}
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			log.Warn("skipping non-numeric allow-list entry", zap.String("entry", s))
			continue
		}
		p.allowed[id] = struct{}{}
	}

	log.Info("allow-list loaded", zap.Int("users", len(p.allowed)))
	return p
}

// IsAllowed reports whether the user may be tracked.
func (p *Policy) IsAllowed(id int64) bool {
	_, ok := p.allowed[id]
	return ok
}

// Size returns the number of allowed users.
func (p *Policy) Size() int { return len(p.allowed) }
