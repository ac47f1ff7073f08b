package v1

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/shopmind/shopmind/ai/llm"
	"github.com/shopmind/shopmind/assistant"
	"github.com/shopmind/shopmind/catalog"
	"github.com/shopmind/shopmind/internal/profile"
	"github.com/shopmind/shopmind/metrics"
	"github.com/shopmind/shopmind/notifier"
	"github.com/shopmind/shopmind/store"
	"github.com/shopmind/shopmind/store/db"
)

type cannedLLM struct {
	reply string
}

func (c *cannedLLM) Chat(_ context.Context, _ []llm.Message) (string, *llm.CallStats, error) {
	return c.reply, nil, nil
}

func (c *cannedLLM) ChatWithTools(_ context.Context, _ []llm.Message, _ []llm.ToolDescriptor) (*llm.Response, error) {
	return &llm.Response{Content: c.reply}, nil
}

func newTestAPI(t *testing.T) (*APIV1Service, *echo.Echo) {
	t.Helper()

	p := &profile.Profile{
		Mode:   "dev",
		Driver: "sqlite",
		DSN:    filepath.Join(t.TempDir(), "test.db"),
	}
	driver, err := db.NewDBDriver(p)
	require.NoError(t, err)
	st := store.New(driver, p)
	require.NoError(t, st.Migrate(context.Background()))
	require.NoError(t, st.SeedDemoData(context.Background()))
	t.Cleanup(func() {
		_ = st.Close()
	})

	sink := notifier.NewRecorder()
	products := catalog.NewProductService(st, sink)
	categories := catalog.NewCategoryService(st)
	registry := assistant.NewRegistry(products)
	assistantService := assistant.NewService(p, st, &cannedLLM{reply: "Here you go."}, registry, sink, metrics.NewExporter())

	service := NewAPIV1Service(p, st, assistantService, products, categories)
	e := echo.New()
	service.RegisterRoutes(e.Group("/api/v1"))
	return service, e
}

func doRequest(e *echo.Echo, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
	} else {
		reader = strings.NewReader("")
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestChatMessageEndpoint(t *testing.T) {
	t.Run("empty prompt is rejected", func(t *testing.T) {
		_, e := newTestAPI(t)
		rec := doRequest(e, http.MethodPost, "/api/v1/chat/message", `{"prompt": "  "}`, nil)
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})

	t.Run("assistant disabled", func(t *testing.T) {
		service, _ := newTestAPI(t)
		service.Assistant = nil
		e := echo.New()
		service.RegisterRoutes(e.Group("/api/v1"))

		rec := doRequest(e, http.MethodPost, "/api/v1/chat/message", `{"prompt": "hi"}`, nil)
		require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("successful turn", func(t *testing.T) {
		_, e := newTestAPI(t)
		rec := doRequest(e, http.MethodPost, "/api/v1/chat/message", `{"prompt": "list electronics"}`, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var result assistant.ProcessResult
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
		require.NotZero(t, result.ConversationID)
		require.NotNil(t, result.SessionID)
		require.Equal(t, "Here you go.", result.Message)
		require.GreaterOrEqual(t, result.Iterations, 0)
	})

	t.Run("unknown conversation", func(t *testing.T) {
		_, e := newTestAPI(t)
		rec := doRequest(e, http.MethodPost, "/api/v1/chat/message", `{"prompt": "hi", "conversation_id": 999}`, nil)
		require.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("foreign conversation", func(t *testing.T) {
		service, e := newTestAPI(t)
		owner := int32(1)
		conversation, err := service.Store.FindOrCreateActiveConversation(context.Background(), &owner, nil)
		require.NoError(t, err)

		rec := doRequest(e, http.MethodPost, "/api/v1/chat/message",
			`{"prompt": "hi", "conversation_id": `+jsonInt(conversation.ID)+`}`,
			map[string]string{"X-User-ID": "2"})
		require.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func jsonInt(v int32) string {
	b, _ := json.Marshal(v)
	return string(b)
}

func TestConversationEndpoints(t *testing.T) {
	service, e := newTestAPI(t)
	ctx := context.Background()

	userID := int32(10)
	conversation, err := service.Store.FindOrCreateActiveConversation(ctx, &userID, nil)
	require.NoError(t, err)

	headers := map[string]string{"X-User-ID": "10"}

	t.Run("list for owner", func(t *testing.T) {
		rec := doRequest(e, http.MethodGet, "/api/v1/conversations", "", headers)
		require.Equal(t, http.StatusOK, rec.Code)
		var body struct {
			Conversations []json.RawMessage `json:"conversations"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Len(t, body.Conversations, 1)
	})

	t.Run("foreign caller is rejected", func(t *testing.T) {
		rec := doRequest(e, http.MethodGet, "/api/v1/conversations/"+jsonInt(conversation.ID), "", map[string]string{"X-User-ID": "11"})
		require.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("archive", func(t *testing.T) {
		rec := doRequest(e, http.MethodPost, "/api/v1/conversations/"+jsonInt(conversation.ID)+"/archive", "", headers)
		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("soft delete hides from list, keeps direct lookup", func(t *testing.T) {
		rec := doRequest(e, http.MethodDelete, "/api/v1/conversations/"+jsonInt(conversation.ID), "", headers)
		require.Equal(t, http.StatusOK, rec.Code)

		rec = doRequest(e, http.MethodGet, "/api/v1/conversations", "", headers)
		var body struct {
			Conversations []json.RawMessage `json:"conversations"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Empty(t, body.Conversations)

		rec = doRequest(e, http.MethodGet, "/api/v1/conversations/"+jsonInt(conversation.ID), "", headers)
		require.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestProductEndpoints(t *testing.T) {
	_, e := newTestAPI(t)

	t.Run("list", func(t *testing.T) {
		rec := doRequest(e, http.MethodGet, "/api/v1/products", "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var body struct {
			Products []json.RawMessage `json:"products"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Len(t, body.Products, 11)
	})

	t.Run("list filtered by category", func(t *testing.T) {
		rec := doRequest(e, http.MethodGet, "/api/v1/products?category=books", "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var body struct {
			Products []json.RawMessage `json:"products"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Len(t, body.Products, 2)
	})

	t.Run("create requires name and price", func(t *testing.T) {
		rec := doRequest(e, http.MethodPost, "/api/v1/products", `{"name": "Widget"}`, nil)
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})

	t.Run("create, update, delete", func(t *testing.T) {
		rec := doRequest(e, http.MethodPost, "/api/v1/products", `{"name": "Widget", "price": 9.99}`, nil)
		require.Equal(t, http.StatusCreated, rec.Code)
		var created struct {
			Product struct {
				ID    int32   `json:"id"`
				Price float64 `json:"price"`
			} `json:"product"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

		rec = doRequest(e, http.MethodPut, "/api/v1/products/"+jsonInt(created.Product.ID), `{"price": 4.99}`, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var updated struct {
			Product struct {
				Name  string  `json:"name"`
				Price float64 `json:"price"`
			} `json:"product"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
		require.Equal(t, "Widget", updated.Product.Name)
		require.Equal(t, 4.99, updated.Product.Price)

		rec = doRequest(e, http.MethodDelete, "/api/v1/products/"+jsonInt(created.Product.ID), "", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		rec = doRequest(e, http.MethodGet, "/api/v1/products/"+jsonInt(created.Product.ID), "", nil)
		require.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("unknown id", func(t *testing.T) {
		rec := doRequest(e, http.MethodGet, "/api/v1/products/99999", "", nil)
		require.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestCategoryEndpoints(t *testing.T) {
	_, e := newTestAPI(t)

	t.Run("list", func(t *testing.T) {
		rec := doRequest(e, http.MethodGet, "/api/v1/categories", "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var body struct {
			Categories []json.RawMessage `json:"categories"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Len(t, body.Categories, 5)
	})

	t.Run("create requires name and slug", func(t *testing.T) {
		rec := doRequest(e, http.MethodPost, "/api/v1/categories", `{"name": "Toys"}`, nil)
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})

	t.Run("create and fetch", func(t *testing.T) {
		rec := doRequest(e, http.MethodPost, "/api/v1/categories", `{"name": "Toys", "slug": "toys"}`, nil)
		require.Equal(t, http.StatusCreated, rec.Code)
		var created struct {
			Category struct {
				ID int32 `json:"id"`
			} `json:"category"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

		rec = doRequest(e, http.MethodGet, "/api/v1/categories/"+jsonInt(created.Category.ID), "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
	})
}
