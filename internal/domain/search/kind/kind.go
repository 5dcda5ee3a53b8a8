package kind

// Kind is the provider resource type a search is filtered to.
type Kind string

// Result kind constants.
const (
	// Video is the only kind the provider accepts with a location filter.
	Video    Kind = "video"
	Channel  Kind = "channel"
	Playlist Kind = "playlist"
)

// IsValid checks if the kind is one of the supported values.
func (k Kind) IsValid() bool {
	return k == Video || k == Channel || k == Playlist
}

// SupportsLocation reports whether the provider allows location filtering for k.
func (k Kind) SupportsLocation() bool {
	return k == Video
}
