package model

// Room slugs
const (
	RoomLounge    = "lounge"
	RoomHopeBank  = "hope-bank"
	RoomBookClub  = "book-club"
	RoomMusic     = "music-room"
	RoomTVMovies  = "tv-movies"
	RoomInspoWall = "inspo-wall"
	RoomDilemmas  = "dilemmas"
)

// Reaction kinds
const (
	ReactionHeart     = "heart"
	ReactionHug       = "hug"
	ReactionSunflower = "sunflower"
	ReactionHope      = "hope"
	ReactionRelate    = "relate"
	ReactionInspired  = "inspired"
)

// Media kinds for the TV & Movies room
const (
	MediaKindTV    = "tv"
	MediaKindMovie = "movie"
)

// Room is a themed discussion space. Rooms are a fixed catalog, not a table.
type Room struct {
	Slug        string   `json:"slug"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Reactions   []string `json:"reactions"`

	// MediaTitleLabel names media_title for rooms that require it ("Book", "Song"...).
	MediaTitleLabel   string `json:"media_title_label,omitempty"`
	MediaCreatorLabel string `json:"media_creator_label,omitempty"`
	RequiresMedia     bool   `json:"requires_media"`
	RequiresMediaKind bool   `json:"requires_media_kind"`
	// BodyOrLink accepts a post with either a body or a link (quotes or images).
	BodyOrLink bool `json:"body_or_link"`
}

var baseReactions = []string{ReactionHeart, ReactionHug, ReactionSunflower}

func withReactions(extra ...string) []string {
	out := make([]string, 0, len(baseReactions)+len(extra))
	out = append(out, baseReactions...)
	return append(out, extra...)
}

var rooms = []Room{
	{
		Slug:        RoomLounge,
		Name:        "Lounge",
		Description: "Pull up a chair. Say hi, share your day, talk about anything.",
		Reactions:   withReactions(),
	},
	{
		Slug:        RoomHopeBank,
		Name:        "Hope Bank",
		Description: "Deposit a little hope for someone who needs it. Withdraw when you need some.",
		Reactions:   withReactions(ReactionHope),
	},
	{
		Slug:              RoomBookClub,
		Name:              "Book Club",
		Description:       "What are you reading? Recommendations, reviews and favourite passages.",
		Reactions:         withReactions(),
		MediaTitleLabel:   "Book",
		MediaCreatorLabel: "Author",
		RequiresMedia:     true,
	},
	{
		Slug:              RoomMusic,
		Name:              "Music Room",
		Description:       "Songs that lift you up, calm you down or keep you company.",
		Reactions:         withReactions(),
		MediaTitleLabel:   "Song",
		MediaCreatorLabel: "Artist",
		RequiresMedia:     true,
	},
	{
		Slug:              RoomTVMovies,
		Name:              "TV & Movies",
		Description:       "Comfort watches, new favourites and what to put on tonight.",
		Reactions:         withReactions(),
		MediaTitleLabel:   "Title",
		MediaCreatorLabel: "Director / Network",
		RequiresMedia:     true,
		RequiresMediaKind: true,
	},
	{
		Slug:        RoomInspoWall,
		Name:        "Inspo Wall",
		Description: "Quotes, images and small things that inspire you.",
		Reactions:   withReactions(ReactionInspired),
		BodyOrLink:  true,
	},
	{
		Slug:        RoomDilemmas,
		Name:        "Dilemmas",
		Description: "Stuck on something? Ask the community for gentle advice.",
		Reactions:   withReactions(ReactionRelate),
	},
}

// Rooms returns the catalog in display order. The slice is a copy.
func Rooms() []Room {
	out := make([]Room, len(rooms))
	copy(out, rooms)
	return out
}

// FindRoom looks a room up by slug.
func FindRoom(slug string) (Room, bool) {
	for _, r := range rooms {
		if r.Slug == slug {
			return r, true
		}
	}
	return Room{}, false
}

// AllowsReaction reports whether kind may be used in the room.
func (r Room) AllowsReaction(kind string) bool {
	for _, k := range r.Reactions {
		if k == kind {
			return true
		}
	}
	return false
}
