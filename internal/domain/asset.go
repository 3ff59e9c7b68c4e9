package domain

// AssetKind enumerates asset types produced by the upstream resolver.
type AssetKind string

const (
	AssetKindVideo AssetKind = "video"
	AssetKindImage AssetKind = "image"
)

// VideoSources holds the two watermark renditions of a video. At least one
// must be present for a retrieval to succeed.
type VideoSources struct {
	WatermarkURL   string
	NoWatermarkURL string
}

// URL returns the source for the requested rendition, empty when unavailable.
func (s *VideoSources) URL(watermark bool) string {
	if s == nil {
		return ""
	}
	if watermark {
		return s.WatermarkURL
	}
	return s.NoWatermarkURL
}

// ImageSources holds the ordered image URL lists of an image set. When both
// lists are present their elements correspond positionally.
type ImageSources struct {
	Watermarked   []string
	NoWatermarked []string
}

// URLs returns the list matching the requested rendition.
func (s *ImageSources) URLs(watermark bool) []string {
	if s == nil {
		return nil
	}
	if watermark {
		return s.Watermarked
	}
	return s.NoWatermarked
}

// AssetDescriptor is the structured description of a single asset as returned
// by the upstream metadata resolver. Platform, AssetID, Kind and the watermark
// flag together form the cache key for the on-disk artifact.
type AssetDescriptor struct {
	Platform    string
	AssetID     string
	Kind        AssetKind
	Description string
	Video       *VideoSources
	Images      *ImageSources
}

// StoredArtifact describes a deliverable produced by the retrieval pipeline.
// StoragePath is the deduplicated, cache-keyed location on disk and is
// immutable once written. PublicFilename is the name presented to the
// requester; it may differ from the storage basename when a custom name was
// supplied, so repeated custom-named requests reuse one cached file.
type StoredArtifact struct {
	StoragePath    string
	PublicFilename string
	MediaType      string
}
