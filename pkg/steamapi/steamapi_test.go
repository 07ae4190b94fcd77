package steamapi

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tacticalops/armalaunch/pkg/logging"
)

func newTestAPI(handler http.HandlerFunc) (*WebAPI, *httptest.Server) {
	srv := httptest.NewServer(handler)
	api := &WebAPI{
		client:   srv.Client(),
		endpoint: srv.URL,
		log:      logging.GetLogger("steamapi"),
	}
	return api, srv
}

func detailsBody(entries ...string) string {
	out := `{"response":{"resultcount":` + fmt.Sprint(len(entries)) + `,"publishedfiledetails":[`
	for i, e := range entries {
		if i > 0 {
			out += ","
		}
		out += e
	}
	return out + `]}}`
}

func TestTimeUpdated(t *testing.T) {
	api, srv := newTestAPI(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "1", r.Form.Get("itemcount"))
		assert.Equal(t, "450814997", r.Form.Get("publishedfileids[0]"))

		fmt.Fprint(w, detailsBody(
			`{"publishedfileid":"450814997","title":"CBA_A3","time_updated":1700000000}`))
	})
	defer srv.Close()

	epoch, ok := api.TimeUpdated(context.Background(), 450814997)
	require.True(t, ok)
	assert.Equal(t, int64(1700000000), epoch)
}

func TestTimeUpdatedUnknownItem(t *testing.T) {
	api, srv := newTestAPI(func(w http.ResponseWriter, r *http.Request) {
		// the API answers with result 9 and no time_updated for
		// deleted items
		fmt.Fprint(w, detailsBody(`{"publishedfileid":"1","result":9}`))
	})
	defer srv.Close()

	_, ok := api.TimeUpdated(context.Background(), 1)
	assert.False(t, ok)
}

func TestTimeUpdatedServerError(t *testing.T) {
	api, srv := newTestAPI(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	})
	defer srv.Close()

	_, ok := api.TimeUpdated(context.Background(), 1)
	assert.False(t, ok)
}

func TestTimeUpdatedGarbageResponse(t *testing.T) {
	api, srv := newTestAPI(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html>not json</html>")
	})
	defer srv.Close()

	_, ok := api.TimeUpdated(context.Background(), 1)
	assert.False(t, ok)
}

func TestTimeUpdatedUnreachable(t *testing.T) {
	api, srv := newTestAPI(func(w http.ResponseWriter, r *http.Request) {})
	srv.Close() // refuse connections

	_, ok := api.TimeUpdated(context.Background(), 1)
	assert.False(t, ok)
}

func TestTimeUpdatedHonorsContext(t *testing.T) {
	api, srv := newTestAPI(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	})
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, ok := api.TimeUpdated(ctx, 1)
	assert.False(t, ok)
}

func TestResolveNames(t *testing.T) {
	api, srv := newTestAPI(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, detailsBody(
			`{"publishedfileid":"1","title":"Alpha","time_updated":1}`,
			`{"publishedfileid":"2","title":"","time_updated":2}`))
	})
	defer srv.Close()

	names := api.ResolveNames(context.Background(), []int64{1, 2, 3})
	assert.Equal(t, "Alpha", names[1])
	// empty and unknown titles keep the placeholder
	assert.Equal(t, "Mod 2", names[2])
	assert.Equal(t, "Mod 3", names[3])
}

func TestResolveNamesAPIDown(t *testing.T) {
	api, srv := newTestAPI(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	})
	defer srv.Close()

	names := api.ResolveNames(context.Background(), []int64{7})
	assert.Equal(t, "Mod 7", names[7])
}
