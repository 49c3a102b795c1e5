package model

// Write-time field limits, in characters unless noted.
const (
	EmailLength         = 64
	ClubNameLength      = 128
	ClubAbbrevLength    = 32
	EventTitleLength    = 256
	EventLocationLength = 128
	EventLinkLength     = 512
	SessionIDLength     = 32

	// DescriptionChunkSize is in bytes; rows above ~1MB hit MySQL max_allowed_packet.
	DescriptionChunkSize = 65000
)
