package integration

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	httpAPI "github.com/iyhunko/product-catalog/internal/http"
	"github.com/iyhunko/product-catalog/internal/http/controller"
	"github.com/iyhunko/product-catalog/internal/model"
	reposql "github.com/iyhunko/product-catalog/internal/repository/sql"
	"github.com/iyhunko/product-catalog/internal/service"
	sqspkg "github.com/iyhunko/product-catalog/internal/sqs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testQueueURL = "https://sqs.us-east-1.amazonaws.com/123456789/product-notifications"

func newAPI(testDB *TestDB, queue *memoryQueue) *gin.Engine {
	gin.SetMode(gin.TestMode)

	productService := service.NewProductService(
		reposql.NewProductRepository(testDB.DB),
		sqspkg.NewPublisher(queue, testQueueURL),
	)
	return httpAPI.InitRouter(gin.New(), controller.New(testDB.DB), controller.NewProductController(productService))
}

func call(router *gin.Engine, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestProductAPI_Integration(t *testing.T) {
	testDB := SetupTestDB(t)
	defer testDB.Cleanup(t)

	t.Run("health", func(t *testing.T) {
		w := call(newAPI(testDB, newMemoryQueue()), http.MethodGet, "/health", "")

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("product lifecycle", func(t *testing.T) {
		// given
		testDB.TruncateTables(t)
		queue := newMemoryQueue()
		router := newAPI(testDB, queue)

		// when
		created := call(router, http.MethodPost, "/products",
			`{"name":"Fedora","description":"A red hat","price":"12.505","available":true,"category":"CLOTHS"}`)

		// then
		require.Equal(t, http.StatusCreated, created.Code, created.Body.String())
		assert.Equal(t, "/products/1", created.Header().Get("Location"))
		var record model.Record
		require.NoError(t, json.Unmarshal(created.Body.Bytes(), &record))
		assert.Equal(t, "12.51", record.Price)

		fetched := call(router, http.MethodGet, "/products/1", "")
		require.Equal(t, http.StatusOK, fetched.Code)
		assert.JSONEq(t, created.Body.String(), fetched.Body.String())

		updated := call(router, http.MethodPut, "/products/1",
			`{"name":"Fedora","description":"A blue hat","price":12.5,"available":false,"category":"CLOTHS"}`)
		require.Equal(t, http.StatusOK, updated.Code, updated.Body.String())
		require.NoError(t, json.Unmarshal(updated.Body.Bytes(), &record))
		assert.Equal(t, "A blue hat", record.Description)
		assert.Equal(t, "12.50", record.Price)
		assert.False(t, record.Available)

		listed := call(router, http.MethodGet, "/products?available=false", "")
		require.Equal(t, http.StatusOK, listed.Code)
		var page controller.ListProductsResponse
		require.NoError(t, json.Unmarshal(listed.Body.Bytes(), &page))
		require.Len(t, page.Products, 1)
		assert.Equal(t, "A blue hat", page.Products[0].Description)

		assert.Equal(t, http.StatusNoContent, call(router, http.MethodDelete, "/products/1", "").Code)
		assert.Equal(t, http.StatusNotFound, call(router, http.MethodGet, "/products/1", "").Code)

		assert.Equal(t, 3, queue.Len())
	})

	t.Run("invalid product is not stored", func(t *testing.T) {
		testDB.TruncateTables(t)
		queue := newMemoryQueue()
		router := newAPI(testDB, queue)

		w := call(router, http.MethodPost, "/products",
			`{"name":"Fedora","description":"","price":1,"available":"no","category":"CLOTHS"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		count, err := repoCount(testDB)
		require.NoError(t, err)
		assert.Zero(t, count)
		assert.Zero(t, queue.Len())
	})
}

func repoCount(testDB *TestDB) (int, error) {
	var count int
	err := testDB.DB.QueryRowContext(context.Background(), "SELECT COUNT(*) FROM products").Scan(&count)
	return count, err
}
