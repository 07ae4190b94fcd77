// Package steamapi queries the Steam Web API for published-file
// metadata. The reconciler only needs one fact from it: when a
// workshop item was last updated. The API being unreachable is an
// expected condition and never an error for callers.
package steamapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/tacticalops/armalaunch/pkg/logging"
)

const publishedFileDetailsURL = "https://api.steampowered.com/ISteamRemoteStorage/GetPublishedFileDetails/v1/"

// requestTimeout bounds every API call; staleness decisions must
// tolerate an unreachable oracle without stalling the sync.
const requestTimeout = 30 * time.Second

// Oracle answers "when was this item last updated upstream".
type Oracle interface {
	// TimeUpdated returns the remote last-update time as epoch
	// seconds. ok is false when the remote state is unknown for any
	// reason (network failure, parse failure, unknown id).
	TimeUpdated(ctx context.Context, itemID int64) (epoch int64, ok bool)
}

// WebAPI is the production Oracle over the public Steam Web API.
type WebAPI struct {
	client   *http.Client
	endpoint string
	log      zerolog.Logger
}

// NewWebAPI builds an Oracle with the default request timeout.
func NewWebAPI() *WebAPI {
	return &WebAPI{
		client:   &http.Client{Timeout: requestTimeout},
		endpoint: publishedFileDetailsURL,
		log:      logging.GetLogger("steamapi"),
	}
}

type detailsResponse struct {
	Response struct {
		ResultCount          int           `json:"resultcount"`
		PublishedFileDetails []fileDetails `json:"publishedfiledetails"`
	} `json:"response"`
}

type fileDetails struct {
	PublishedFileID string `json:"publishedfileid"`
	Title           string `json:"title"`
	TimeUpdated     int64  `json:"time_updated"`
}

// TimeUpdated implements Oracle.
func (w *WebAPI) TimeUpdated(ctx context.Context, itemID int64) (int64, bool) {
	details, err := w.fetchDetails(ctx, []int64{itemID})
	if err != nil {
		w.log.Debug().Err(err).Int64("itemID", itemID).Msg("GetPublishedFileDetails failed")
		return 0, false
	}
	d, found := details[itemID]
	if !found || d.TimeUpdated == 0 {
		return 0, false
	}
	return d.TimeUpdated, true
}

// ResolveNames fetches display titles for a batch of item ids. Items
// the API does not know keep a generated placeholder name. Batches are
// capped at 100 ids per request, the API's documented limit.
func (w *WebAPI) ResolveNames(ctx context.Context, itemIDs []int64) map[int64]string {
	names := make(map[int64]string, len(itemIDs))
	for _, id := range itemIDs {
		names[id] = fmt.Sprintf("Mod %d", id)
	}
	for start := 0; start < len(itemIDs); start += 100 {
		end := start + 100
		if end > len(itemIDs) {
			end = len(itemIDs)
		}
		details, err := w.fetchDetails(ctx, itemIDs[start:end])
		if err != nil {
			w.log.Warn().Err(err).Msg("Failed to resolve workshop names from Steam")
			continue
		}
		for id, d := range details {
			if d.Title != "" {
				names[id] = d.Title
			}
		}
	}
	return names
}

func (w *WebAPI) fetchDetails(ctx context.Context, itemIDs []int64) (map[int64]fileDetails, error) {
	form := url.Values{}
	form.Set("itemcount", strconv.Itoa(len(itemIDs)))
	for i, id := range itemIDs {
		form.Set(fmt.Sprintf("publishedfileids[%d]", i), strconv.FormatInt(id, 10))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		w.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := w.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("steam api returned %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	var parsed detailsResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, err
	}

	out := make(map[int64]fileDetails, len(parsed.Response.PublishedFileDetails))
	for _, d := range parsed.Response.PublishedFileDetails {
		id, err := strconv.ParseInt(d.PublishedFileID, 10, 64)
		if err != nil {
			continue
		}
		out[id] = d
	}
	return out, nil
}
