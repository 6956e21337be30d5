package search

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/models"
)

// newFakeES serves h behind the product header the client checks for.
func newFakeES(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		h(w, r)
	}))
	t.Cleanup(srv.Close)

	c, err := NewClient(srv.URL, "", "", "products")
	require.NoError(t, err)
	return c
}

func TestSearch_DecodesHits(t *testing.T) {
	id := uuid.New()
	c := newFakeES(t, func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasPrefix(r.URL.Path, "/products/_search"))

		var q map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&q))
		mm := q["query"].(map[string]any)["multi_match"].(map[string]any)
		assert.Equal(t, "lamp", mm["query"])

		_, _ = w.Write([]byte(`{"hits":{"total":{"value":1},"hits":[{"_source":{"id":"` + id.String() + `","name":"Desk Lamp","price":30}}]}}`))
	})

	total, items, err := c.Search(context.Background(), "lamp", 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, items, 1)
	assert.Equal(t, id, items[0].ID)
	assert.Equal(t, "Desk Lamp", items[0].Name)
}

func TestIndexProduct_UsesProductID(t *testing.T) {
	p := &models.Product{ID: uuid.New(), Name: "Chair", Price: 80}
	c := newFakeES(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/products/_doc/"+p.ID.String(), r.URL.Path)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"result":"created"}`))
	})

	require.NoError(t, c.IndexProduct(context.Background(), p))
}

func TestDeleteProduct_MissingIsNotAnError(t *testing.T) {
	c := newFakeES(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"result":"not_found"}`))
	})

	require.NoError(t, c.DeleteProduct(context.Background(), uuid.NewString()))
}

func TestSearch_ErrorResponse(t *testing.T) {
	c := newFakeES(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"bad query"}`))
	})

	_, _, err := c.Search(context.Background(), "x", 0, 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad query")
}
