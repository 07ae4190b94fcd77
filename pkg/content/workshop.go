package content

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/tacticalops/armalaunch/pkg/config"
	"github.com/tacticalops/armalaunch/pkg/errors"
	"github.com/tacticalops/armalaunch/pkg/paths"
	"github.com/tacticalops/armalaunch/pkg/steamcmd"
)

// itemFailure records one failed required item for the aggregated
// batch error.
type itemFailure struct {
	Category string
	Name     string
	ID       int64
	Reason   string
}

// EnsureWorkshopItem makes one workshop item present and current in
// the shared store. It returns nil, nil when an optional item is
// skipped (unavailable upstream or download produced nothing).
func (m *Manager) EnsureWorkshopItem(ctx context.Context, category string, item config.WorkshopItem, validate, dryRun bool) (*InstallResult, error) {
	id := item.ID
	name := item.DisplayName()
	steamID := strconv.FormatInt(id, 10)

	dest := filepath.Join(m.layout.StoreDir(category), steamID)
	marker := markerPath(dest)
	before := pathExists(marker)

	if dryRun {
		return &InstallResult{Kind: category, IDOrApp: steamID, Path: dest, Changed: !before}, nil
	}

	if m.settings.SkipInstall {
		m.log.Info().Str("name", name).Int64("id", id).Str("category", category).
			Msg("SKIP_INSTALL: not downloading workshop item")
		return &InstallResult{Kind: category, IDOrApp: steamID, Path: dest, Changed: !before}, nil
	}

	upToDate, remoteEpoch, remoteKnown := m.isUpToDate(ctx, id, dest, marker, name)
	if upToDate {
		m.log.Info().Str("name", name).Int64("id", id).Str("category", category).
			Msg("Workshop item up-to-date")
		return &InstallResult{Kind: category, IDOrApp: steamID, Path: dest, Changed: false}, nil
	}

	m.log.Warn().Str("name", name).Int64("id", id).Str("category", category).
		Msg("Workshop item not up-to-date, downloading")

	if err := m.downloadWithRetry(ctx, id, name, category, validate); err != nil {
		if kind, unavailable := unavailableKind(err); unavailable {
			msg := fmt.Sprintf("workshop item unavailable: %s (%d) category=%s reason=%s",
				name, id, category, kind)
			if item.Required {
				return nil, errors.Wrap(err, unavailableCode(kind), msg)
			}
			m.log.Warn().Str("name", name).Int64("id", id).Str("category", category).
				Str("reason", kind).Msg(msg + " - skipping optional item")
			return nil, nil
		}
		return nil, err
	}

	cache := paths.WorkshopCacheDir(m.settings, id)
	if !pathExists(cache) {
		msg := fmt.Sprintf("workshop download produced no cache directory: %s (item=%s id=%d category=%s)",
			cache, name, id, category)
		if item.Required {
			return nil, errors.New(errors.ErrCacheMissing, msg)
		}
		m.log.Warn().Str("cache", cache).Str("name", name).Msg(msg + " - skipping optional item")
		return nil, nil
	}

	if err := syncFromCache(cache, dest); err != nil {
		return nil, err
	}
	m.normalizeCase(dest)

	if !remoteKnown {
		if epoch, ok := m.oracle.TimeUpdated(ctx, id); ok {
			remoteEpoch = epoch
		} else {
			// Last resort: stamp with now so the marker still moves
			// forward. The conservative staleness policy re-downloads
			// anyway while the oracle stays unreachable.
			remoteEpoch = m.now().Unix()
		}
	}

	now := formatMarkerTime(m.now())
	if err := WriteMarker(marker, &Marker{
		SteamID:     steamID,
		Name:        name,
		Timestamp:   remoteEpoch,
		SyncedAt:    now,
		LastChecked: now,
	}); err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to write marker for %s", name)
	}

	m.copyKeysFromMod(dest, name, steamID)
	return &InstallResult{Kind: category, IDOrApp: steamID, Path: dest, Changed: true}, nil
}

// downloadWithRetry wraps the tool client's download in the coarser
// outer retry layer for transient classifications that survive the
// client's own retries.
func (m *Manager) downloadWithRetry(ctx context.Context, id int64, name, category string, validate bool) error {
	for attempt := 1; ; attempt++ {
		err := m.tool.WorkshopDownload(ctx, m.settings.ArmaWorkshopGameID, id, validate)
		if err == nil {
			return nil
		}
		te, ok := asTransientTool(err)
		if !ok || attempt >= m.downloadBackoff.MaxAttempts {
			return err
		}
		delay := m.downloadBackoff.Delay(attempt)
		m.log.Warn().
			Str("kind", string(te.Kind)).
			Str("name", name).
			Int64("id", id).
			Str("category", category).
			Int("attempt", attempt).
			Int("maxAttempts", m.downloadBackoff.MaxAttempts).
			Dur("delay", delay).
			Msg("Transient download failure, backing off")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
}

// asTransientTool unwraps err into a transient ToolError, if it is one.
func asTransientTool(err error) (*steamcmd.ToolError, bool) {
	te, ok := steamcmd.AsToolError(err)
	if !ok || !te.Transient() {
		return nil, false
	}
	return te, true
}

// unavailableKind reports whether err means the item cannot be fetched
// at all (removed, private, or never existed).
func unavailableKind(err error) (string, bool) {
	te, ok := steamcmd.AsToolError(err)
	if !ok {
		return "", false
	}
	if te.Kind == steamcmd.ErrNotFound || te.Kind == steamcmd.ErrAccessDenied {
		return string(te.Kind), true
	}
	return "", false
}

func unavailableCode(kind string) errors.ErrorCode {
	if kind == string(steamcmd.ErrAccessDenied) {
		return errors.ErrToolAccessDenied
	}
	return errors.ErrToolNotFound
}

// EnsureWorkshop processes every configured workshop item across all
// categories in configuration order. Required-item failures are
// collected and raised once as an aggregated error after the full
// pass; optional failures are logged and omitted from the results.
func (m *Manager) EnsureWorkshop(ctx context.Context, cfg *config.ResolvedConfig, dryRun bool) ([]InstallResult, error) {
	validate := cfg.Steam.ForceValidate
	var results []InstallResult
	var failures []itemFailure

	for _, pair := range cfg.AllWorkshopItems() {
		item := pair.Item
		m.log.Info().
			Str("name", item.DisplayName()).
			Int64("id", item.ID).
			Str("category", pair.Category).
			Bool("validate", validate).
			Bool("dryRun", dryRun).
			Msg("Ensuring workshop item")

		res, err := m.EnsureWorkshopItem(ctx, pair.Category, item, validate, dryRun)
		if err != nil {
			if item.Required {
				m.log.Error().Err(err).
					Str("name", item.DisplayName()).
					Int64("id", item.ID).
					Str("category", pair.Category).
					Msg("Required workshop item failed")
				failures = append(failures, itemFailure{
					Category: pair.Category,
					Name:     item.DisplayName(),
					ID:       item.ID,
					Reason:   err.Error(),
				})
			} else {
				m.log.Warn().Err(err).
					Str("name", item.DisplayName()).
					Int64("id", item.ID).
					Str("category", pair.Category).
					Msg("Optional workshop item failed")
			}
			continue
		}
		if res != nil {
			results = append(results, *res)
		}
	}

	if len(failures) > 0 {
		return results, aggregateFailures(failures)
	}
	return results, nil
}

// aggregateFailures folds every required-item failure into one error
// so the operator sees the complete damage report, not just the first
// casualty.
func aggregateFailures(failures []itemFailure) error {
	var b strings.Builder
	b.WriteString("required workshop items failed:")
	for _, f := range failures {
		fmt.Fprintf(&b, "\n- %s: %s (%d) :: %s", f.Category, f.Name, f.ID, f.Reason)
	}
	err := errors.New(errors.ErrRequiredItems, b.String())
	err.WithDetail("count", len(failures))
	return err
}
