package api

import (
	"strings"

	"overbot/internal/domain"
)

// ResolveName picks the one account name a profile fetch should use.
//
// An empty candidate list returns the username unchanged and lets the
// profile endpoint answer with its own 404. With several candidates only an
// exact, case insensitive tag match on the same platform is accepted; the
// first such candidate in upstream order wins.
func ResolveName(id domain.Identifier, candidates []CandidateAccount) (string, error) {
	switch len(candidates) {
	case 0:
		return id.Username, nil
	case 1:
		tag := candidates[0].Tag()
		if tag == "" {
			return "", domain.ErrInternalServer
		}
		return tag, nil
	}

	for _, c := range candidates {
		if !strings.EqualFold(c.Tag(), id.Username) {
			continue
		}
		if c.Platform != "" && !samePlatform(c.Platform, id.Platform) {
			continue
		}
		return c.Tag(), nil
	}

	return "", domain.NewTooManyAccounts(id.Username, id.Platform, len(candidates))
}

func samePlatform(upstream string, p domain.Platform) bool {
	parsed, err := domain.ParsePlatform(upstream)
	if err != nil {
		return strings.EqualFold(upstream, string(p))
	}
	return parsed == p
}
