package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dmitrijs2005/geoposts/internal/client/models"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.Handler, opts ...Option) (*HTTPClient, *Session) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	s := NewSession()
	c, err := NewHTTPClient(srv.URL, s, opts...)
	require.NoError(t, err)
	return c, s
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func TestNewHTTPClient_InvalidBaseURL(t *testing.T) {
	for _, base := range []string{"", "::", "/relative/only", "localhost"} {
		_, err := NewHTTPClient(base, nil)
		require.ErrorIs(t, err, ErrInvalidRequest, base)
	}
}

func TestQueryMarkers_SendsScopeWithToken(t *testing.T) {
	var (
		gotAuth, gotType, gotReqID string
		gotBody                    map[string]any
	)

	r := chi.NewRouter()
	r.Post("/posts/scope", func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotType = r.Header.Get("Content-Type")
		gotReqID = r.Header.Get(requestIDHeader)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		writeJSON(w, http.StatusOK, `[{"id":1,"latitude":1.5,"longitude":2.5},{"id":2}]`)
	})

	c, s := newTestClient(t, r)
	s.SetToken("tok")

	marks, err := c.QueryMarkers(context.Background(), models.NewScope(models.Region{Latitude: 1, Longitude: 2}, 1000, nil))
	require.NoError(t, err)
	require.Len(t, marks, 2)
	assert.Equal(t, int64(1), *marks[0].ID)
	assert.Nil(t, marks[1].Latitude)

	assert.Equal(t, "Bearer tok", gotAuth)
	assert.Equal(t, "application/json", gotType)
	_, err = uuid.Parse(gotReqID)
	assert.NoError(t, err)
	assert.Equal(t, map[string]any{"latitude": 1.0, "longitude": 2.0, "distance": 1000.0}, gotBody)
}

func TestCall_NoTokenNoAuthorizationHeader(t *testing.T) {
	var present bool
	r := chi.NewRouter()
	r.Get("/posts/previews/{id}", func(w http.ResponseWriter, r *http.Request) {
		_, present = r.Header["Authorization"]
		writeJSON(w, http.StatusOK, `{"text":"hi"}`)
	})

	c, _ := newTestClient(t, r)
	_, err := c.PostPreview(context.Background(), 3)
	require.NoError(t, err)
	assert.False(t, present)
}

func TestErrorClassification(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(t *testing.T, err error)
	}{
		{"unauthorized", http.StatusUnauthorized, `{}`, func(t *testing.T, err error) {
			require.ErrorIs(t, err, ErrUnauthorized)
			require.NotErrorIs(t, err, ErrServer)
		}},
		{"server error", http.StatusInternalServerError, `boom`, func(t *testing.T, err error) {
			var se *ServerError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, 500, se.StatusCode)
			assert.Equal(t, "boom", se.Body)
			require.ErrorIs(t, err, ErrServer)
		}},
		{"not found", http.StatusNotFound, ``, func(t *testing.T, err error) {
			var se *ServerError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, 404, se.StatusCode)
		}},
		{"bad shape", http.StatusOK, `{"text": 12}`, func(t *testing.T, err error) {
			require.ErrorIs(t, err, ErrDecoding)
		}},
		{"empty body", http.StatusOK, ``, func(t *testing.T, err error) {
			require.ErrorIs(t, err, ErrDecoding)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := chi.NewRouter()
			r.Get("/posts/previews/{id}", func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, tt.status, tt.body)
			})
			c, s := newTestClient(t, r)
			s.SetToken("tok")

			_, err := c.PostPreview(context.Background(), 1)
			require.Error(t, err)
			tt.check(t, err)

			tok, ok := s.Token()
			require.True(t, ok, "session must survive any error")
			assert.Equal(t, "tok", tok)
		})
	}
}

func TestNoResponse_ServerGone(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	c, err := NewHTTPClient(base, nil, WithTimeout(time.Second))
	require.NoError(t, err)

	err = c.DeleteContent(context.Background(), 1)
	require.ErrorIs(t, err, ErrNoResponse)
}

func TestInvalidRequest_BadPath(t *testing.T) {
	c, _ := newTestClient(t, http.NotFoundHandler())
	ctx := context.Background()

	require.ErrorIs(t, c.CallVoid(ctx, http.MethodGet, "/posts/%zz", nil), ErrInvalidRequest)
	require.ErrorIs(t, c.CallVoid(ctx, http.MethodGet, "http://elsewhere.example/posts", nil), ErrInvalidRequest)
	require.ErrorIs(t, c.CallVoid(ctx, "BAD METHOD", "/posts", nil), ErrInvalidRequest)
}

func TestCall_GenericDecode(t *testing.T) {
	r := chi.NewRouter()
	r.Put("/custom", func(w http.ResponseWriter, r *http.Request) {
		var in map[string]int
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		writeJSON(w, http.StatusOK, `{"sum":`+jsonInt(in["a"]+in["b"])+`}`)
	})
	c, _ := newTestClient(t, r)

	var out struct {
		Sum int `json:"sum"`
	}
	require.NoError(t, c.Call(context.Background(), http.MethodPut, "/custom", map[string]int{"a": 2, "b": 3}, &out))
	assert.Equal(t, 5, out.Sum)
}

func jsonInt(v int) string {
	b, _ := json.Marshal(v)
	return string(b)
}

func TestExchangeOAuthCode_TokenShapes(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"bare", `abc.def`, "abc.def"},
		{"json string", `"abc.def"`, "abc.def"},
		{"padded json string", " \"abc.def\"\n", "abc.def"},
		{"escaped", `"ab\"c"`, `ab"c`},
		{"unterminated quote", `"abc`, "abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotProvider, gotCode string
			r := chi.NewRouter()
			r.Get("/auth/{provider}", func(w http.ResponseWriter, r *http.Request) {
				gotProvider = chi.URLParam(r, "provider")
				gotCode = r.URL.Query().Get("authCode")
				w.WriteHeader(http.StatusOK)
				_, _ = io.WriteString(w, tt.body)
			})
			c, _ := newTestClient(t, r)

			tok, err := c.ExchangeOAuthCode(context.Background(), "yandex", "c0de")
			require.NoError(t, err)
			assert.Equal(t, tt.want, tok)
			assert.Equal(t, "yandex", gotProvider)
			assert.Equal(t, "c0de", gotCode)
		})
	}
}

func TestExchangeOAuthCode_Errors(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/auth/empty", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `""`)
	})
	r.Get("/auth/denied", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	c, _ := newTestClient(t, r)
	ctx := context.Background()

	_, err := c.ExchangeOAuthCode(ctx, "empty", "x")
	require.ErrorIs(t, err, ErrDecoding)

	_, err = c.ExchangeOAuthCode(ctx, "denied", "x")
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestPostPreview_Decodes(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/posts/previews/{id}", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "9", chi.URLParam(r, "id"))
		writeJSON(w, http.StatusOK, `{
			"created": "2024-02-03T04:05:06",
			"author": "ann",
			"text": "look",
			"category": "EVENT",
			"contents": [3, 1, 2],
			"reactions": [{"author": "bob", "type": "LIKE"}]
		}`)
	})
	c, _ := newTestClient(t, r)

	p, err := c.PostPreview(context.Background(), 9)
	require.NoError(t, err)
	assert.Equal(t, "ann", p.Author)
	assert.Equal(t, models.CategoryEvent, p.Category)
	assert.Equal(t, []int64{3, 1, 2}, p.Contents)
	assert.Equal(t, []models.Reaction{{Author: "bob", Type: "LIKE"}}, p.Reactions)
	require.NotNil(t, p.Created)
	assert.True(t, time.Date(2024, 2, 3, 4, 5, 6, 0, time.UTC).Equal(p.Created.Time))
}

func TestCreateDraft(t *testing.T) {
	body := `{"id": 42, "contents": [], "text": null}`
	r := chi.NewRouter()
	r.Post("/posts", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, body)
	})
	c, _ := newTestClient(t, r)

	d, err := c.CreateDraft(context.Background())
	require.NoError(t, err)
	require.NotNil(t, d.ID)
	assert.Equal(t, int64(42), *d.ID)

	body = `{"contents": []}`
	_, err = c.CreateDraft(context.Background())
	require.ErrorIs(t, err, ErrDecoding)
}

func TestPublishPost_Body(t *testing.T) {
	var got []byte
	r := chi.NewRouter()
	r.Put("/posts", func(w http.ResponseWriter, r *http.Request) {
		got, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusNoContent)
	})
	c, _ := newTestClient(t, r)

	id, lat, lng := int64(42), 55.5, 37.5
	err := c.PublishPost(context.Background(), models.Draft{
		ID: &id, Text: "Hello", Category: models.CategoryFact, Latitude: &lat, Longitude: &lng,
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":42,"text":"Hello","category":"FACT","contents":null,"latitude":55.5,"longitude":37.5}`, string(got))
}

func TestFetchRawContent(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/contents/{id}", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "101", chi.URLParam(r, "id"))
		require.Equal(t, "MEDIUM", r.URL.Query().Get("size"))
		w.Header().Set("Content-Type", "image/jpeg")
		_, _ = w.Write([]byte{0xFF, 0xD8, 0xFF})
	})
	c, _ := newTestClient(t, r)

	data, err := c.FetchRawContent(context.Background(), 101, models.SizeMedium)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xFF, 0xD8, 0xFF}, data)
}

func TestContentURL_IsPure(t *testing.T) {
	c, err := NewHTTPClient("https://api.example.com/v1", nil)
	require.NoError(t, err)

	u, err := c.ContentURL(5, models.SizeSmall)
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com/v1/contents/5?size=SMALL", u.String())
}

func TestUploadContent_Multipart(t *testing.T) {
	var (
		gotPostID, gotType, gotPartType string
		gotData                         []byte
	)
	r := chi.NewRouter()
	r.Post("/contents", func(w http.ResponseWriter, r *http.Request) {
		gotPostID = r.URL.Query().Get("postId")
		gotType = r.URL.Query().Get("type")

		require.NoError(t, r.ParseMultipartForm(1<<20))
		f, hdr, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()
		gotPartType = hdr.Header.Get("Content-Type")
		gotData, _ = io.ReadAll(f)
		w.WriteHeader(http.StatusCreated)
	})
	c, _ := newTestClient(t, r)

	require.NoError(t, c.UploadContent(context.Background(), 42, []byte("jpeg-bytes"), ""))
	assert.Equal(t, "42", gotPostID)
	assert.Equal(t, models.ContentKindImage, gotType)
	assert.Equal(t, models.MIMEJPEG, gotPartType)
	assert.Equal(t, []byte("jpeg-bytes"), gotData)
}

func TestDeleteContent(t *testing.T) {
	var deleted string
	r := chi.NewRouter()
	r.Delete("/contents/{id}", func(w http.ResponseWriter, r *http.Request) {
		deleted = chi.URLParam(r, "id")
		w.WriteHeader(http.StatusOK)
	})
	c, _ := newTestClient(t, r)

	require.NoError(t, c.DeleteContent(context.Background(), 77))
	assert.Equal(t, "77", deleted)
}

func TestMetrics_CountsOutcomes(t *testing.T) {
	calls := 0
	r := chi.NewRouter()
	r.Get("/posts/previews/{id}", func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		writeJSON(w, http.StatusOK, `{}`)
	})

	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	c, _ := newTestClient(t, r, WithMetrics(m))
	ctx := context.Background()

	_, err := c.PostPreview(ctx, 1)
	require.ErrorIs(t, err, ErrUnauthorized)
	_, err = c.PostPreview(ctx, 2)
	require.NoError(t, err)

	route := "/posts/previews/{id}"
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues(http.MethodGet, route, outcomeUnauthorized)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues(http.MethodGet, route, outcomeOK)))
}

func TestRateLimit_HonorsContext(t *testing.T) {
	r := chi.NewRouter()
	r.Delete("/contents/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	c, _ := newTestClient(t, r, WithRateLimit(0.001))

	require.NoError(t, c.DeleteContent(context.Background(), 1))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := c.DeleteContent(ctx, 2)
	require.ErrorIs(t, err, ErrNoResponse)
	require.True(t, errors.Is(err, context.Canceled))
}
