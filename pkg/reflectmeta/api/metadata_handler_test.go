package api_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/reflect-metadata/pkg/reflectmeta"
	"github.com/tendant/reflect-metadata/pkg/reflectmeta/api"
)

func setupTestRouter(store *reflectmeta.Store) *chi.Mux {
	r := chi.NewRouter()
	r.Mount("/targets", api.NewMetadataHandler(store).Routes())
	return r
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		buf = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, buf)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func createTarget(t *testing.T, router http.Handler, name, prototypeID string) api.TargetResponse {
	t.Helper()
	rr := doJSON(t, router, http.MethodPost, "/targets", api.CreateTargetRequest{Name: name, PrototypeID: prototypeID})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var resp api.TargetResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp
}

func TestMetadataHandler_RoundTrip(t *testing.T) {
	router := setupTestRouter(reflectmeta.New())
	user := createTarget(t, router, "userObj", "")

	rr := doJSON(t, router, http.MethodPut, "/targets/"+user.ID+"/properties/permissions/metadata/role", api.SetMetadataRequest{Value: "admin"})
	require.Equal(t, http.StatusNoContent, rr.Code, rr.Body.String())

	rr = doJSON(t, router, http.MethodGet, "/targets/"+user.ID+"/properties/permissions/metadata/role", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp api.MetadataResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.True(t, resp.Found)
	assert.Equal(t, "admin", resp.Value)
	assert.Equal(t, "permissions", resp.Property)
	assert.Equal(t, "role", resp.Key)

	rr = doJSON(t, router, http.MethodGet, "/targets/"+user.ID+"/properties/otherProp/metadata/role", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.False(t, resp.Found)
	assert.Nil(t, resp.Value)
}

func TestMetadataHandler_StructuredValuesAndOverwrite(t *testing.T) {
	router := setupTestRouter(reflectmeta.New())
	target := createTarget(t, router, "config", "")
	path := "/targets/" + target.ID + "/properties/limits/metadata/range"

	rr := doJSON(t, router, http.MethodPut, path, api.SetMetadataRequest{Value: map[string]any{"min": 1, "max": 5}})
	require.Equal(t, http.StatusNoContent, rr.Code)
	rr = doJSON(t, router, http.MethodPut, path, api.SetMetadataRequest{Value: []any{"a", "b"}})
	require.Equal(t, http.StatusNoContent, rr.Code)

	rr = doJSON(t, router, http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp api.MetadataResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, []any{"a", "b"}, resp.Value)
}

func TestMetadataHandler_PrototypeFallback(t *testing.T) {
	router := setupTestRouter(reflectmeta.New())
	proto := createTarget(t, router, "Box.prototype", "")
	instance := createTarget(t, router, "box", proto.ID)
	assert.Equal(t, proto.ID, instance.PrototypeID)

	rr := doJSON(t, router, http.MethodPut, "/targets/"+proto.ID+"/properties/length/metadata/unit", api.SetMetadataRequest{Value: "cm"})
	require.Equal(t, http.StatusNoContent, rr.Code)

	rr = doJSON(t, router, http.MethodGet, "/targets/"+instance.ID+"/properties/length/metadata/unit", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp api.MetadataResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "cm", resp.Value)
	assert.Equal(t, instance.ID, resp.TargetID)

	// same name, distinct identity
	twin := createTarget(t, router, "Box.prototype", "")
	rr = doJSON(t, router, http.MethodGet, "/targets/"+twin.ID+"/properties/length/metadata/unit", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestMetadataHandler_Errors(t *testing.T) {
	store := reflectmeta.New(reflectmeta.WithHooks(&reflectmeta.Hooks{
		BeforeDefine: []reflectmeta.BeforeDefineHook{
			func(def *reflectmeta.Definition) error {
				if def.Key == "locked" {
					return errors.New("locked")
				}
				return nil
			},
		},
	}))
	router := setupTestRouter(store)
	target := createTarget(t, router, "t", "")

	tests := []struct {
		name       string
		method     string
		path       string
		body       any
		wantStatus int
	}{
		{"missing name", http.MethodPost, "/targets", api.CreateTargetRequest{}, http.StatusBadRequest},
		{"unknown prototype", http.MethodPost, "/targets", api.CreateTargetRequest{Name: "x", PrototypeID: uuid.NewString()}, http.StatusBadRequest},
		{"bad target id", http.MethodGet, "/targets/not-a-uuid", nil, http.StatusBadRequest},
		{"unknown target", http.MethodGet, "/targets/" + uuid.NewString(), nil, http.StatusNotFound},
		{"define on unknown target", http.MethodPut, "/targets/" + uuid.NewString() + "/properties/p/metadata/k", api.SetMetadataRequest{Value: 1}, http.StatusNotFound},
		{"hook rejection", http.MethodPut, "/targets/" + target.ID + "/properties/p/metadata/locked", api.SetMetadataRequest{Value: 1}, http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := doJSON(t, router, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.wantStatus, rr.Code, rr.Body.String())
		})
	}

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPut, "/targets/"+target.ID+"/properties/p/metadata/k", bytes.NewBufferString("{"))
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestMetadataHandler_GetTarget(t *testing.T) {
	router := setupTestRouter(reflectmeta.New())
	created := createTarget(t, router, "widget", "")

	rr := doJSON(t, router, http.MethodGet, "/targets/"+created.ID, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp api.TargetResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, created.ID, resp.ID)
	assert.Equal(t, "widget", resp.Name)
	assert.Empty(t, resp.PrototypeID)
}
