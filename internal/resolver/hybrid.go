// Package resolver adapts the external hybrid metadata service to the
// domain.Resolver contract.
package resolver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog"

	"mediagrab/internal/domain"
)

// HybridClient resolves share links through the hybrid parsing endpoint of an
// upstream metadata service and maps its minimal payload onto an
// AssetDescriptor.
type HybridClient struct {
	baseURL string
	http    *http.Client
	logger  zerolog.Logger
}

// NewHybridClient returns a client for the resolver service at baseURL.
// Passing a nil httpClient uses http.DefaultClient.
func NewHybridClient(baseURL string, httpClient *http.Client, logger zerolog.Logger) *HybridClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &HybridClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		logger:  logger,
	}
}

type hybridPayload struct {
	Platform  string `json:"platform"`
	AwemeID   string `json:"aweme_id"`
	Type      string `json:"type"`
	Desc      string `json:"desc"`
	VideoData *struct {
		WMVideoURLHQ  string `json:"wm_video_url_HQ"`
		NWMVideoURLHQ string `json:"nwm_video_url_HQ"`
	} `json:"video_data"`
	ImageData *struct {
		WatermarkImageList   []string `json:"watermark_image_list"`
		NoWatermarkImageList []string `json:"no_watermark_image_list"`
	} `json:"image_data"`
}

// Resolve fetches the minimal metadata for sourceURL.
func (c *HybridClient) Resolve(ctx context.Context, sourceURL string) (*domain.AssetDescriptor, error) {
	endpoint := fmt.Sprintf("%s/api/hybrid/video_data?url=%s&minimal=true", c.baseURL, url.QueryEscape(sourceURL))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("resolver: build request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("resolver: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("resolver: upstream returned %d for %s", resp.StatusCode, sourceURL)
	}

	var envelope struct {
		Data hybridPayload `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("resolver: decode response: %w", err)
	}
	desc, err := mapDescriptor(&envelope.Data)
	if err != nil {
		return nil, err
	}
	c.logger.Debug().
		Str("platform", desc.Platform).
		Str("asset_id", desc.AssetID).
		Str("kind", string(desc.Kind)).
		Msg("resolved asset")
	return desc, nil
}

func mapDescriptor(p *hybridPayload) (*domain.AssetDescriptor, error) {
	if p.AwemeID == "" {
		return nil, errors.New("resolver: response missing asset id")
	}
	desc := &domain.AssetDescriptor{
		Platform:    p.Platform,
		AssetID:     p.AwemeID,
		Description: p.Desc,
	}
	switch p.Type {
	case "video":
		desc.Kind = domain.AssetKindVideo
		if p.VideoData != nil {
			desc.Video = &domain.VideoSources{
				WatermarkURL:   p.VideoData.WMVideoURLHQ,
				NoWatermarkURL: p.VideoData.NWMVideoURLHQ,
			}
		}
	case "image":
		desc.Kind = domain.AssetKindImage
		if p.ImageData != nil {
			desc.Images = &domain.ImageSources{
				Watermarked:   p.ImageData.WatermarkImageList,
				NoWatermarked: p.ImageData.NoWatermarkImageList,
			}
		}
	default:
		return nil, fmt.Errorf("resolver: unsupported asset type %q", p.Type)
	}
	return desc, nil
}
