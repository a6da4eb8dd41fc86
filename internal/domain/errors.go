package domain

import (
	"errors"
	"fmt"
)

// ErrorKind enumerates every failure a lookup or a command check can end in.
type ErrorKind int

const (
	KindNotFound ErrorKind = iota + 1
	KindBadRequest
	KindValidation
	KindInternalServer
	KindServiceUnavailable
	KindUnknown
	KindTooManyAccounts
	KindNoStats
	KindNoHeroStats
	KindProfileNotLinked
	KindProfileLimitReached
)

func (k ErrorKind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindBadRequest:
		return "bad_request"
	case KindValidation:
		return "validation"
	case KindInternalServer:
		return "internal_server"
	case KindServiceUnavailable:
		return "service_unavailable"
	case KindUnknown:
		return "unknown"
	case KindTooManyAccounts:
		return "too_many_accounts"
	case KindNoStats:
		return "no_stats"
	case KindNoHeroStats:
		return "no_hero_stats"
	case KindProfileNotLinked:
		return "profile_not_linked"
	case KindProfileLimitReached:
		return "profile_limit_reached"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Error is a classified, user displayable failure. Error() is the message
// shown to the user; the optional fields carry the data the message needs.
type Error struct {
	Kind ErrorKind

	Query    string
	Platform Platform
	Count    int
	Hero     string
	Limit    int
	Status   int

	Err error
}

var (
	ErrNotFound           = &Error{Kind: KindNotFound}
	ErrBadRequest         = &Error{Kind: KindBadRequest}
	ErrValidation         = &Error{Kind: KindValidation}
	ErrInternalServer     = &Error{Kind: KindInternalServer}
	ErrServiceUnavailable = &Error{Kind: KindServiceUnavailable}
	ErrUnknown            = &Error{Kind: KindUnknown}
	ErrTooManyAccounts    = &Error{Kind: KindTooManyAccounts}
	ErrNoStats            = &Error{Kind: KindNoStats}
	ErrNoHeroStats        = &Error{Kind: KindNoHeroStats}
	ErrProfileNotLinked   = &Error{Kind: KindProfileNotLinked}
	ErrProfileLimit       = &Error{Kind: KindProfileLimitReached}
)

func (e *Error) Error() string {
	switch e.Kind {
	case KindNotFound:
		return "Player not found."
	case KindBadRequest:
		return "Wrong BattleTag format entered! Correct format: `name#0000`"
	case KindValidation:
		return "Invalid BattleTag or platform entered! Correct format: `name#0000`"
	case KindInternalServer:
		return "The API is having internal server problems. Please be patient and try again later."
	case KindServiceUnavailable:
		return "The API or Blizzard servers are under maintenance. Please be patient and try again later."
	case KindUnknown:
		return "Something went wrong while reaching the API. Please try again later."
	case KindTooManyAccounts:
		if e.Platform == PlatformPC || e.Platform == "" {
			return fmt.Sprintf("**%d** accounts found under the name of `%s`. "+
				"Please be more specific by entering the full BattleTag in the following format: `name#0000`",
				e.Count, e.Query)
		}
		return fmt.Sprintf("**%d** accounts found under the name of `%s` playing on `%s`. Please be more specific.",
			e.Count, e.Query, e.Platform.DisplayName())
	case KindNoStats:
		return "This profile has no quick play nor competitive stats to display."
	case KindNoHeroStats:
		return fmt.Sprintf("This profile has no quick play nor competitive stats for **%s** to display.", e.Hero)
	case KindProfileNotLinked:
		return "You haven't linked a profile yet. Use \"/profile link\" to start."
	case KindProfileLimitReached:
		return fmt.Sprintf("Maximum limit of %d profiles reached.", e.Limit)
	}
	return e.Kind.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports kind equality so callers can write errors.Is(err, domain.ErrNotFound).
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

func NewStatusError(kind ErrorKind, status int) *Error {
	return &Error{Kind: kind, Status: status}
}

func NewTooManyAccounts(query string, platform Platform, count int) *Error {
	return &Error{Kind: KindTooManyAccounts, Query: query, Platform: platform, Count: count}
}

func NewNoHeroStats(hero string) *Error {
	return &Error{Kind: KindNoHeroStats, Hero: hero}
}

func NewProfileLimit(limit int) *Error {
	return &Error{Kind: KindProfileLimitReached, Limit: limit}
}

// WrapUnknown classifies a transport or payload failure.
func WrapUnknown(err error) *Error {
	return &Error{Kind: KindUnknown, Err: err}
}

// KindOf extracts the kind of a classified error.
func KindOf(err error) (ErrorKind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}
