package admin

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qrmenu-backend/internal/business"
	"qrmenu-backend/internal/catalog"
	"qrmenu-backend/internal/models"
	"qrmenu-backend/internal/notification"
	"qrmenu-backend/internal/qrcode"
)

// --- Setup ---

type fixture struct {
	app   *fiber.App
	store *business.Store
	types *catalog.BusinessTypeRegistry
	log   *notification.Log
}

func setup(t *testing.T) *fixture {
	t.Helper()
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	logger, _ := test.NewNullLogger()
	now := func() time.Time { return time.Date(2024, 2, 1, 8, 0, 0, 0, time.UTC) }

	types := catalog.NewBusinessTypeRegistry()
	qr := qrcode.NewBuilder("https://qr.example.com/create", "https://menu.example.com", 300)
	store, err := business.NewStore(business.StoreOptions{Node: node, Types: types, QR: qr, Now: now, Logger: logger})
	require.NoError(t, err)
	log, err := notification.NewLog(notification.LogOptions{Node: node, Now: now, Logger: logger})
	require.NoError(t, err)

	app := fiber.New()
	app.Get("/businesses", ListBusinessesHandler(store))
	app.Put("/businesses/:id", UpdateBusinessHandler(store))
	app.Post("/businesses", CreateBusinessHandler(store))
	app.Get("/business-types", ListBusinessTypesHandler(types))
	app.Post("/business-types", CreateBusinessTypeHandler(types))
	app.Put("/business-types/:key", UpdateBusinessTypeHandler(types))
	app.Delete("/business-types/:key", DeleteBusinessTypeHandler(types))
	app.Get("/qr-preview", QRPreviewHandler(qr))
	app.Get("/notifications", ListNotificationsHandler(log))
	app.Post("/notifications", CreateNotificationHandler(log))
	app.Put("/notifications/:id/read", MarkAsReadHandler(log))
	app.Delete("/notifications/:id", DeleteNotificationHandler(log))
	app.Post("/notifications/email", SendEmailHandler(log))
	app.Post("/notifications/campaign", CampaignHandler(notification.NewCampaign(log, 2)))
	app.Get("/export.xlsx", ExportXLSXHandler(store, types, logger))
	app.Post("/import", ImportBusinessesHandler(store, logger))

	return &fixture{app: app, store: store, types: types, log: log}
}

func (f *fixture) call(t *testing.T, method, path, body string) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	resp, err := f.app.Test(req)
	require.NoError(t, err)
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

// --- Businesses ---

func TestListBusinesses_Filters(t *testing.T) {
	f := setup(t)
	f.store.Add(models.NewBusiness{Name: "Chez Awa", Owner: "Awa"})
	b := f.store.Add(models.NewBusiness{Name: "Le Baobab", Owner: "Moussa"})
	_, err := f.store.ToggleStatus(b.ID)
	require.NoError(t, err)

	_, data := f.call(t, http.MethodGet, "/businesses?status=Inactif", "")
	var list []BusinessResponse
	require.NoError(t, json.Unmarshal(data, &list))
	require.Len(t, list, 1)
	assert.Equal(t, "Le Baobab", list[0].Name)

	_, data = f.call(t, http.MethodGet, "/businesses?q=awa", "")
	require.NoError(t, json.Unmarshal(data, &list))
	require.Len(t, list, 1)
	assert.Equal(t, "Chez Awa", list[0].Name)
	assert.Equal(t, "Restaurant", list[0].Type.Label)
}

func TestCreateBusiness_Validation(t *testing.T) {
	f := setup(t)

	resp, _ := f.call(t, http.MethodPost, "/businesses", `{"name":"  "}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = f.call(t, http.MethodPost, "/businesses", `{"name":"Chez Awa","email":"not-an-email"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	assert.Empty(t, f.store.List())
}

func TestUpdateBusiness(t *testing.T) {
	f := setup(t)
	b := f.store.Add(models.NewBusiness{Name: "Chez Awa", Phone: "1"})
	path := "/businesses/" + strconv.FormatInt(b.ID, 10)

	resp, _ := f.call(t, http.MethodPut, path, `{"status":"Ferme"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = f.call(t, http.MethodPut, path, `{"name":""}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, data := f.call(t, http.MethodPut, path, `{"address":"Plateau"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var got BusinessResponse
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "Plateau", got.Address)
	assert.Equal(t, "1", got.Phone)

	resp, _ = f.call(t, http.MethodPut, "/businesses/99", `{"address":"x"}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestUpdateBusiness_SuspensionGoesThroughDedicatedRoutes(t *testing.T) {
	f := setup(t)
	b := f.store.Add(models.NewBusiness{Name: "Chez Awa"})
	_, err := f.store.MarkPaid(b.ID)
	require.NoError(t, err)
	path := "/businesses/" + strconv.FormatInt(b.ID, 10)

	resp, _ := f.call(t, http.MethodPut, path, `{"status":"Suspendu"}`)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	got, err := f.store.Get(b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusActive, got.Status)
	assert.Equal(t, models.PaymentPaid, got.PaymentStatus)

	_, err = f.store.SuspendForNonPayment(b.ID, true)
	require.NoError(t, err)

	resp, _ = f.call(t, http.MethodPut, path, `{"status":"Actif","payment_status":"paid"}`)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp, _ = f.call(t, http.MethodPut, path, `{"payment_status":"paid"}`)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	got, err = f.store.Get(b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusSuspended, got.Status)
	assert.Equal(t, models.PaymentPending, got.PaymentStatus)

	resp, _ = f.call(t, http.MethodPut, path, `{"phone":"770000000","status":"Suspendu"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

// --- Catalog ---

func TestBusinessTypes(t *testing.T) {
	f := setup(t)

	resp, _ := f.call(t, http.MethodPost, "/business-types", `{"key":" Traiteur ","label":"Traiteur","icon":"🍱"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	_, ok := f.types.Lookup("traiteur")
	assert.True(t, ok)

	resp, _ = f.call(t, http.MethodPost, "/business-types", `{"key":"traiteur","label":"Encore"}`)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, data := f.call(t, http.MethodPut, "/business-types/traiteur", `{"label":"Service traiteur"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(data), "Service traiteur")

	resp, _ = f.call(t, http.MethodDelete, "/business-types/restaurant", "")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, _ = f.call(t, http.MethodDelete, "/business-types/traiteur", "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp, _ = f.call(t, http.MethodDelete, "/business-types/traiteur", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestQRPreview(t *testing.T) {
	f := setup(t)

	resp, data := f.call(t, http.MethodGet, "/qr-preview?data=hello&size=200&bg=%23ffffff&fg=000000", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]string
	require.NoError(t, json.Unmarshal(data, &body))
	assert.Equal(t, "https://qr.example.com/create?size=200x200&data=hello&bgcolor=ffffff&color=000000", body["url"])

	resp, _ = f.call(t, http.MethodGet, "/qr-preview", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = f.call(t, http.MethodGet, "/qr-preview?data=x&size=5000", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

// --- Notifications ---

func TestNotifications(t *testing.T) {
	f := setup(t)

	resp, data := f.call(t, http.MethodPost, "/notifications", `{"title":"Maintenance","message":"Ce soir","type":"warning"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var n models.Notification
	require.NoError(t, json.Unmarshal(data, &n))
	assert.Equal(t, models.NotificationWarning, n.Type)
	id := strconv.FormatInt(n.ID, 10)

	resp, _ = f.call(t, http.MethodPost, "/notifications", `{"title":"x","message":"y","type":"loud"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = f.call(t, http.MethodPut, "/notifications/"+id+"/read", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 0, f.log.UnreadCount())

	_, data = f.call(t, http.MethodGet, "/notifications?unread=true", "")
	assert.JSONEq(t, "[]", string(data))

	resp, _ = f.call(t, http.MethodDelete, "/notifications/"+id, "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp, _ = f.call(t, http.MethodDelete, "/notifications/"+id, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSendEmailAndCampaign(t *testing.T) {
	f := setup(t)

	resp, _ := f.call(t, http.MethodPost, "/notifications/email", `{"email":"awa@example.com","subject":"Rappel","body":"Bonjour"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = f.call(t, http.MethodPost, "/notifications/email", `{"email":"awa","subject":"Rappel","body":"Bonjour"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, data := f.call(t, http.MethodPost, "/notifications/campaign",
		`{"recipients":[{"email":"a@example.com","name":"A"},{"email":"b@example.com","name":"B"}],"subject":"Promo","body":"Bonjour {{name}}"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var res notification.CampaignResult
	require.NoError(t, json.Unmarshal(data, &res))
	assert.Equal(t, 2, res.Sent)

	resp, _ = f.call(t, http.MethodPost, "/notifications/campaign", `{"recipients":[],"subject":"Promo","body":"x"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	assert.Len(t, f.log.List(), 2)
}

func TestExportXLSX(t *testing.T) {
	f := setup(t)
	f.store.Add(models.NewBusiness{Name: "Chez Awa"})

	resp, data := f.call(t, http.MethodGet, "/export.xlsx", "")

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, xlsxContentType, resp.Header.Get("Content-Type"))
	assert.True(t, len(data) > 0 && data[0] == 'P', "xlsx is a zip archive")
}

func upload(t *testing.T, f *fixture, filename, content string) (*http.Response, []byte) {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/import", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	resp, err := f.app.Test(req)
	require.NoError(t, err)
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func TestImportBusinesses(t *testing.T) {
	f := setup(t)

	resp, data := upload(t, f, "entreprises.csv", "Nom,Type,Email\nChez Awa,bakery,awa@example.com\n,bar,\n")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var res business.ImportResult
	require.NoError(t, json.Unmarshal(data, &res))
	assert.Equal(t, 1, res.Imported)
	assert.Equal(t, 1, res.Skipped)
	assert.Len(t, f.store.List(), 1)

	resp, _ = upload(t, f, "entreprises.txt", "Nom\nX\n")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = upload(t, f, "entreprises.xlsx", "not a zip")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
