package domain

import (
	"time"
)

type Server struct {
	ID        string
	Premium   bool
	CreatedAt time.Time
}

type Member struct {
	ID        string
	Premium   bool
	CreatedAt time.Time
}

// LinkedProfile is an Overwatch account a Discord member linked to the bot.
type LinkedProfile struct {
	ID        int64
	MemberID  string
	Platform  Platform
	Username  string
	CreatedAt time.Time
}

func (p LinkedProfile) Identifier() Identifier {
	return Identifier{Platform: p.Platform, Username: p.Username}
}

type RatingRecord struct {
	ID        string // nanoid
	ProfileID int64
	Tank      int
	Damage    int
	Support   int
	Date      time.Time // day the ratings were requested, truncated to UTC midnight
	CreatedAt time.Time
}

type Nickname struct {
	MemberID  string
	ServerID  string
	ProfileID int64
	CreatedAt time.Time
}

// Article is one entry of the news page.
type Article struct {
	ID        int64
	Title     string
	Link      string
	Thumbnail string
	Date      string
}

type CommandUsage struct {
	Name     string
	GuildID  string
	MemberID string
	UsedAt   time.Time
}

type GuildUsage struct {
	GuildID  string
	Commands int
}
