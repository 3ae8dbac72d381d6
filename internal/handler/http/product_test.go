package http

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eshoply/catalog-service/internal/domain"
	"github.com/eshoply/catalog-service/internal/repository"
	apperrors "github.com/eshoply/catalog-service/pkg/errors"
)

func TestListProducts(t *testing.T) {
	products := &stubProductRepo{
		list: func(_ context.Context, f repository.ProductFilter) ([]domain.Product, int, error) {
			assert.Equal(t, 2, f.Page)
			assert.Equal(t, 3, f.PerPage)
			require.NotNil(t, f.Keyword)
			assert.Equal(t, "mic", *f.Keyword)
			return []domain.Product{*catalogProduct()}, 7, nil
		},
	}

	srv := newTestServer(t, products, &stubReviewRepo{}, 3)

	resp := doRequest(t, http.MethodGet, srv.URL+"/products/?keyword=mic&page=2", "", "")
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Count      int              `json:"count"`
		ResPerPage int              `json:"resPerPage"`
		Products   []domain.Product `json:"products"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, 7, body.Count)
	assert.Equal(t, 3, body.ResPerPage)
	assert.Len(t, body.Products, 1)
}

func TestListProductsEmptyPage(t *testing.T) {
	products := &stubProductRepo{
		list: func(_ context.Context, f repository.ProductFilter) ([]domain.Product, int, error) {
			return []domain.Product{}, 4, nil
		},
	}

	srv := newTestServer(t, products, &stubReviewRepo{}, 1)

	resp := doRequest(t, http.MethodGet, srv.URL+"/products/?page=99", "", "")
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Count    int               `json:"count"`
		Products []json.RawMessage `json:"products"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, 4, body.Count, "count reflects all matches even past the last page")
	assert.Empty(t, body.Products)
}

func TestListProductsInvalidPriceFilter(t *testing.T) {
	srv := newTestServer(t, &stubProductRepo{}, &stubReviewRepo{}, 1)

	resp := doRequest(t, http.MethodGet, srv.URL+"/products/?min_price=abc", "", "")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetProduct(t *testing.T) {
	products := &stubProductRepo{
		getByID: func(_ context.Context, id string) (*domain.Product, error) {
			assert.Equal(t, testProductID, id)
			return catalogProduct(), nil
		},
	}

	srv := newTestServer(t, products, &stubReviewRepo{}, 1)

	resp := doRequest(t, http.MethodGet, srv.URL+"/products/"+testProductID+"/", "", "")
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Product domain.Product `json:"product"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "USB Microphone", body.Product.Name)
}

func TestGetProductNotFound(t *testing.T) {
	products := &stubProductRepo{
		getByID: func(_ context.Context, id string) (*domain.Product, error) {
			return nil, apperrors.NotFound("product", id)
		},
	}

	srv := newTestServer(t, products, &stubReviewRepo{}, 1)

	resp := doRequest(t, http.MethodGet, srv.URL+"/products/99999999-9999-9999-9999-999999999999/", "", "")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGetProductInvalidID(t *testing.T) {
	srv := newTestServer(t, &stubProductRepo{}, &stubReviewRepo{}, 1)

	resp := doRequest(t, http.MethodGet, srv.URL+"/products/not-a-uuid/", "", "")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCreateProduct(t *testing.T) {
	var createdUserID string
	products := &stubProductRepo{
		create: func(_ context.Context, p *domain.Product) error {
			createdUserID = p.UserID
			return nil
		},
	}

	srv := newTestServer(t, products, &stubReviewRepo{}, 1)

	body := `{"name":"New Camera","description":"Mirrorless","price":259900,"category":"Cameras","brand":"Acme","stock":3}`
	resp := doRequest(t, http.MethodPost, srv.URL+"/products/new/", bearerToken(t, testUserID), body)
	defer resp.Body.Close()

	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, testUserID, createdUserID, "product is owned by the token's user")

	var out struct {
		Product domain.Product `json:"product"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "New Camera", out.Product.Name)
	assert.Zero(t, out.Product.Ratings)
}

func TestCreateProductRequiresAuth(t *testing.T) {
	srv := newTestServer(t, &stubProductRepo{}, &stubReviewRepo{}, 1)

	body := `{"name":"New Camera","description":"Mirrorless","price":259900,"category":"Cameras","brand":"Acme"}`
	resp := doRequest(t, http.MethodPost, srv.URL+"/products/new/", "", body)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestCreateProductRejectsBadToken(t *testing.T) {
	srv := newTestServer(t, &stubProductRepo{}, &stubReviewRepo{}, 1)

	resp := doRequest(t, http.MethodPost, srv.URL+"/products/new/", "Bearer garbage", `{}`)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestCreateProductValidationError(t *testing.T) {
	srv := newTestServer(t, &stubProductRepo{}, &stubReviewRepo{}, 1)

	resp := doRequest(t, http.MethodPost, srv.URL+"/products/new/", bearerToken(t, testUserID), `{"name":"X"}`)
	defer resp.Body.Close()

	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var out struct {
		Error struct {
			Code   string            `json:"code"`
			Fields map[string]string `json:"fields"`
		} `json:"error"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "VALIDATION_ERROR", out.Error.Code)
	assert.NotEmpty(t, out.Error.Fields)
}

func TestUpdateProduct(t *testing.T) {
	existing := catalogProduct()
	var updated *domain.Product
	products := &stubProductRepo{
		getByID: func(_ context.Context, id string) (*domain.Product, error) {
			return existing, nil
		},
		update: func(_ context.Context, p *domain.Product) error {
			updated = p
			return nil
		},
	}

	srv := newTestServer(t, products, &stubReviewRepo{}, 1)

	body := `{"name":"Renamed Mic","description":"Still cardioid","price":11900,"category":"Electronics","brand":"Acme","ratings":0,"stock":4}`
	resp := doRequest(t, http.MethodPut, srv.URL+"/products/"+testProductID+"/update/", bearerToken(t, testUserID), body)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotNil(t, updated)
	assert.Equal(t, "Renamed Mic", updated.Name)
	assert.Zero(t, updated.Ratings)
}

func TestUpdateProductForbiddenForNonOwner(t *testing.T) {
	products := &stubProductRepo{
		getByID: func(_ context.Context, id string) (*domain.Product, error) {
			return catalogProduct(), nil
		},
	}

	srv := newTestServer(t, products, &stubReviewRepo{}, 1)

	otherUser := "99999999-9999-9999-9999-999999999999"
	body := `{"name":"Hijack","description":"nope","price":1,"category":"Electronics","brand":"Acme"}`
	resp := doRequest(t, http.MethodPut, srv.URL+"/products/"+testProductID+"/update/", bearerToken(t, otherUser), body)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestUpdateProductRequiresAuth(t *testing.T) {
	srv := newTestServer(t, &stubProductRepo{}, &stubReviewRepo{}, 1)

	resp := doRequest(t, http.MethodPut, srv.URL+"/products/"+testProductID+"/update/", "", `{}`)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
