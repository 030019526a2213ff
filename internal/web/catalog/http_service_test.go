package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"motoshop.store/moto-web/internal/web/apiclient"
)

func newHTTPService(t *testing.T, handler http.Handler) *HTTPService {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	api, err := apiclient.New(srv.URL, srv.Client())
	require.NoError(t, err)
	return NewHTTPService(api)
}

func TestHTTPServiceListDecodesPageEnvelope(t *testing.T) {
	var gotQuery string
	svc := newHTTPService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/productos", r.URL.Path)
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"content": [
				{
					"idProducto": 7,
					"prodNombre": "Yamaha MT-03",
					"prodDescripcion": "Naked 321cc",
					"prodPrecio": 21000000,
					"prodStock": 2,
					"prodProveedor": "Yamaha Motor",
					"idCategoria": 1,
					"categoriaNombre": "Deportivas",
					"imagenesUrl": ["/public/static/img/mt03.jpg"]
				}
			],
			"number": 1,
			"size": 12,
			"totalPages": 3,
			"totalElements": 30
		}`))
	}))

	page, err := svc.List(context.Background(), Query{Page: 1, Name: "yamaha"})
	require.NoError(t, err)

	assert.Contains(t, gotQuery, "page=1")
	assert.Contains(t, gotQuery, "nombre=yamaha")

	require.Len(t, page.Items, 1)
	p := page.Items[0]
	assert.Equal(t, int64(7), p.ID)
	assert.Equal(t, "Yamaha MT-03", p.Name)
	assert.Equal(t, "Deportivas", p.CategoryName)
	assert.Equal(t, []string{"/public/static/img/mt03.jpg"}, p.Images)
	assert.Equal(t, 1, page.Number)
	assert.Equal(t, 3, page.TotalPages)
	assert.Equal(t, int64(30), page.TotalItems)
}

func TestHTTPServiceGetMapsNotFound(t *testing.T) {
	svc := newHTTPService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"producto no encontrado"}`, http.StatusNotFound)
	}))

	_, err := svc.Get(context.Background(), 42)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestHTTPServiceCategories(t *testing.T) {
	svc := newHTTPService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/categorias", r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"), "catalog reads are public")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"idCategoria":1,"categoriaNombre":"Deportivas"},{"idCategoria":2,"categoriaNombre":"Urbanas"}]`))
	}))

	categories, err := svc.Categories(context.Background())
	require.NoError(t, err)
	require.Len(t, categories, 2)
	assert.Equal(t, Category{ID: 1, Name: "Deportivas"}, categories[0])
}

func TestHTTPServiceServerErrorSurfacesKind(t *testing.T) {
	svc := newHTTPService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"boom"}`, http.StatusInternalServerError)
	}))

	_, err := svc.ListAll(context.Background())
	require.Error(t, err)
	assert.Equal(t, apiclient.KindServer, apiclient.KindOf(err))
}
